package repository

import (
	"context"
	"examprep_backend/internal/model"

	"gorm.io/gorm"
)

type ProctoringRepository struct {
	DB *gorm.DB
}

func NewProctoringRepository(db *gorm.DB) *ProctoringRepository {
	return &ProctoringRepository{DB: db}
}

func (r *ProctoringRepository) Append(ctx context.Context, event *model.ProctoringEvent) error {
	return r.DB.WithContext(ctx).Create(event).Error
}

func (r *ProctoringRepository) ListBySession(ctx context.Context, sessionID uint) ([]model.ProctoringEvent, error) {
	var events []model.ProctoringEvent
	err := r.DB.WithContext(ctx).Where("session_id = ?", sessionID).Order("occurred_at ASC").Find(&events).Error
	return events, err
}
