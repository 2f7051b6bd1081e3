package repository

import (
	"context"
	"examprep_backend/internal/model"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	var s model.Session
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) FindByAttempt(ctx context.Context, attemptID uint) (*model.Session, error) {
	var s model.Session
	if err := r.DB.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

var counterColumns = map[string]bool{
	"tab_switches":     true,
	"screenshot_count": true,
	"violation_count":  true,
}

// IncrementCounter 原子自增，列名只接受白名单
func (r *SessionRepository) IncrementCounter(ctx context.Context, sessionID uint, column string) error {
	if !counterColumns[column] {
		return fmt.Errorf("unknown session counter %q", column)
	}
	return r.DB.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", sessionID).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

func (r *SessionRepository) MarkHeartbeat(ctx context.Context, sessionID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", sessionID).
		UpdateColumn("heartbeat_at", at).Error
}

func (r *SessionRepository) End(ctx context.Context, sessionID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND session_end IS NULL", sessionID).
		Update("session_end", at).Error
}
