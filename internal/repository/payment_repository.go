package repository

import (
	"context"
	"examprep_backend/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) HasSuccessfulPayment(ctx context.Context, userID, testID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Payment{}).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.PaymentSuccess).
		Count(&count).Error
	return count > 0, err
}
