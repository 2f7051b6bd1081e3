package service

import (
	"context"
	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
	"fmt"
	"time"
)

// SubscriptionSource 订阅与历史作答的只读来源
type SubscriptionSource interface {
	FindActiveSubscription(ctx context.Context, userID uint, now time.Time) (*model.UserSubscription, error)
	ListAttemptUsage(ctx context.Context, userID uint, since time.Time) ([]model.AttemptUsage, error)
}

// EntitlementService 计算用户在某一类别下的额度
type EntitlementService struct {
	Repo SubscriptionSource
	Free config.EntitlementConfig
	Now  func() time.Time
}

func NewEntitlementService(repo SubscriptionSource, free config.EntitlementConfig) *EntitlementService {
	return &EntitlementService{Repo: repo, Free: free, Now: time.Now}
}

func (s *EntitlementService) freeLimit(category model.TestCategory) int {
	switch category {
	case model.CategoryMock:
		return s.Free.FreeMockLimit
	case model.CategorySubject:
		return s.Free.FreeSubjectLimit
	default:
		return s.Free.FreeChapterLimit
	}
}

// GetEntitlement 有效订阅按套餐上限、订阅周期统计；无订阅按免费额度、自然月统计。
// reclaimTestID 非 0 时，该试卷下进行中的作答即将被回收，不计入已用次数
func (s *EntitlementService) GetEntitlement(ctx context.Context, userID uint, category model.TestCategory, reclaimTestID uint) (model.Entitlement, error) {
	now := s.Now()

	sub, err := s.Repo.FindActiveSubscription(ctx, userID, now)
	if err != nil {
		return model.Entitlement{}, fmt.Errorf("find subscription: %w", err)
	}

	limit := s.freeLimit(category)
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	planCode := ""
	if sub != nil {
		limit = sub.Plan.LimitFor(category)
		since = sub.StartsAt
		planCode = sub.Plan.Code
	}

	if limit == model.UnlimitedQuota {
		return model.NewEntitlement(category, limit, 0, planCode), nil
	}

	usage, err := s.Repo.ListAttemptUsage(ctx, userID, since)
	if err != nil {
		return model.Entitlement{}, fmt.Errorf("count attempts: %w", err)
	}
	used := 0
	for _, u := range usage {
		if u.Reclaimable(reclaimTestID) {
			continue
		}
		if u.Category() == category {
			used++
		}
	}
	return model.NewEntitlement(category, limit, used, planCode), nil
}
