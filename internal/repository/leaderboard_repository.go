package repository

import (
	"context"
	"examprep_backend/internal/model"

	"gorm.io/gorm"
)

type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

func (r *LeaderboardRepository) Add(ctx context.Context, entry *model.LeaderboardEntry) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}
