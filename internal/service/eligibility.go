package service

import (
	"context"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"fmt"
	"time"
)

// checkEligibility 依次校验：已发布、开放时间、付费、额度
func (s *SessionService) checkEligibility(ctx context.Context, test *model.Test, userID uint, now time.Time) error {
	if !test.IsPublished {
		return util.ErrTestNotFound
	}

	if test.StartTime != nil && now.Before(*test.StartTime) {
		return util.ErrTestNotStarted.With("startTime", test.StartTime.Format(time.RFC3339))
	}
	if test.EndTime != nil && now.After(*test.EndTime) {
		return util.ErrTestExpired.With("endTime", test.EndTime.Format(time.RFC3339))
	}

	// 重复开考会先回收旧的进行中作答，额度里不重复计算
	category := test.Category()
	ent, err := s.Entitlements.GetEntitlement(ctx, userID, category, test.ID)
	if err != nil {
		return fmt.Errorf("resolve entitlement: %w", err)
	}

	if !test.IsFree {
		// 绑定套餐的试卷，订阅了对应套餐即视为已购买
		covered := test.RequiredPlan != "" && ent.PlanCode == test.RequiredPlan
		if !covered {
			paid, err := s.Payments.HasSuccessfulPayment(ctx, userID, test.ID)
			if err != nil {
				return fmt.Errorf("check payment: %w", err)
			}
			if !paid {
				e := util.ErrPaymentRequired.With("price", test.Price)
				if test.RequiredPlan != "" {
					e = e.With("requiredPlan", test.RequiredPlan).With("upgradeRequired", true)
				}
				return e
			}
		}
	}

	if !ent.Unlimited() && ent.Remaining <= 0 {
		return util.ErrLimitReached.
			With("limitReached", true).
			With("category", string(category)).
			With("limit", ent.Limit).
			With("used", ent.Used)
	}
	return nil
}
