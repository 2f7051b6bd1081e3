package repository

import (
	"context"
	"errors"
	"examprep_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type EntitlementRepository struct {
	DB *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) *EntitlementRepository {
	return &EntitlementRepository{DB: db}
}

// FindActiveSubscription 当前有效订阅，没有时返回 nil, nil
func (r *EntitlementRepository) FindActiveSubscription(ctx context.Context, userID uint, now time.Time) (*model.UserSubscription, error) {
	var sub model.UserSubscription
	err := r.DB.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ? AND status = ? AND starts_at <= ?", userID, model.SubscriptionActive, now).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("starts_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListAttemptUsage 用户自 since 起的每次作答及其试卷类型
func (r *EntitlementRepository) ListAttemptUsage(ctx context.Context, userID uint, since time.Time) ([]model.AttemptUsage, error) {
	var usage []model.AttemptUsage
	err := r.DB.WithContext(ctx).
		Table("attempts").
		Select("attempts.test_id, attempts.status, tests.test_type, tests.metadata").
		Joins("JOIN tests ON tests.id = attempts.test_id").
		Where("attempts.user_id = ? AND attempts.created_at >= ? AND attempts.deleted_at IS NULL", userID, since).
		Order("attempts.id ASC").
		Scan(&usage).Error
	return usage, err
}
