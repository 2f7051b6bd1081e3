package service

import (
	"context"
	"errors"
	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"testing"
	"time"

	"gorm.io/datatypes"
)

type stubSubscriptions struct {
	sub   *model.UserSubscription
	usage []model.AttemptUsage
	since time.Time
}

func (s *stubSubscriptions) FindActiveSubscription(ctx context.Context, userID uint, now time.Time) (*model.UserSubscription, error) {
	return s.sub, nil
}

func (s *stubSubscriptions) ListAttemptUsage(ctx context.Context, userID uint, since time.Time) ([]model.AttemptUsage, error) {
	s.since = since
	return s.usage, nil
}

func attemptsOf(types ...string) []model.AttemptUsage {
	out := make([]model.AttemptUsage, 0, len(types))
	for i, tt := range types {
		out = append(out, model.AttemptUsage{TestID: uint(i + 1), Status: model.AttemptCompleted, TestType: tt})
	}
	return out
}

func TestGetEntitlement(t *testing.T) {
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)
	free := config.EntitlementConfig{FreeChapterLimit: 3, FreeSubjectLimit: 1, FreeMockLimit: 0}
	subStart := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	pro := &model.UserSubscription{
		Plan:     model.Plan{Code: "pro", ChapterTestLimit: model.UnlimitedQuota, SubjectTestLimit: 5, MockTestLimit: 2},
		StartsAt: subStart,
	}
	custom := model.AttemptUsage{TestID: 90, Status: model.AttemptCompleted, TestType: "practice", Metadata: datatypes.JSONMap{"category": "mock"}}

	cases := []struct {
		name      string
		sub       *model.UserSubscription
		usage     []model.AttemptUsage
		reclaim   uint
		category  model.TestCategory
		limit     int
		used      int
		remaining int
		planCode  string
	}{
		{
			name:     "free tier chapter",
			usage:    attemptsOf("chapter", "topic", "mock"),
			category: model.CategoryChapter,
			limit:    3, used: 2, remaining: 1,
		},
		{
			name:     "free tier mock is closed",
			category: model.CategoryMock,
			limit:    0, used: 0, remaining: 0,
		},
		{
			name:     "plan unlimited chapter",
			sub:      pro,
			usage:    attemptsOf("chapter", "chapter", "chapter", "chapter"),
			category: model.CategoryChapter,
			limit:    model.UnlimitedQuota, used: 0, remaining: model.UnlimitedQuota, planCode: "pro",
		},
		{
			name:     "plan mock counts metadata category",
			sub:      pro,
			usage:    append(attemptsOf("full_length"), custom),
			category: model.CategoryMock,
			limit:    2, used: 2, remaining: 0, planCode: "pro",
		},
		{
			name: "in-progress attempt on the same test is not counted",
			usage: []model.AttemptUsage{
				{TestID: testID, Status: model.AttemptInProgress, TestType: "chapter"},
				{TestID: testID, Status: model.AttemptCompleted, TestType: "chapter"},
				{TestID: 5, Status: model.AttemptInProgress, TestType: "chapter"},
			},
			reclaim:  testID,
			category: model.CategoryChapter,
			limit:    3, used: 2, remaining: 1,
		},
		{
			name: "in-progress attempt counts without a reclaim test",
			usage: []model.AttemptUsage{
				{TestID: testID, Status: model.AttemptInProgress, TestType: "chapter"},
			},
			category: model.CategoryChapter,
			limit:    3, used: 1, remaining: 2,
		},
		{
			name:     "used above limit never goes negative",
			usage:    attemptsOf("subject", "subject", "subject"),
			category: model.CategorySubject,
			limit:    1, used: 3, remaining: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &stubSubscriptions{sub: tc.sub, usage: tc.usage}
			svc := NewEntitlementService(src, free)
			svc.Now = func() time.Time { return now }

			ent, err := svc.GetEntitlement(context.Background(), studentID, tc.category, tc.reclaim)
			if err != nil {
				t.Fatalf("GetEntitlement: %v", err)
			}
			if ent.Limit != tc.limit || ent.Used != tc.used || ent.Remaining != tc.remaining || ent.PlanCode != tc.planCode {
				t.Fatalf("got %+v", ent)
			}
		})
	}
}

func TestEntitlementPeriodStart(t *testing.T) {
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

	src := &stubSubscriptions{}
	svc := NewEntitlementService(src, config.EntitlementConfig{FreeChapterLimit: 3})
	svc.Now = func() time.Time { return now }
	if _, err := svc.GetEntitlement(context.Background(), studentID, model.CategoryChapter, 0); err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC); !src.since.Equal(want) {
		t.Fatalf("free tier counts from month start, got %v", src.since)
	}

	start := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	src = &stubSubscriptions{sub: &model.UserSubscription{Plan: model.Plan{ChapterTestLimit: 10}, StartsAt: start}}
	svc.Repo = src
	if _, err := svc.GetEntitlement(context.Background(), studentID, model.CategoryChapter, 0); err != nil {
		t.Fatal(err)
	}
	if !src.since.Equal(start) {
		t.Fatalf("subscription counts from its start, got %v", src.since)
	}
}

// memUsage 基于内存作答记录统计额度，和 SQL 实现返回同样的行
type memUsage struct {
	store   *memStore
	content *memContent
}

func (u memUsage) FindActiveSubscription(ctx context.Context, userID uint, now time.Time) (*model.UserSubscription, error) {
	return nil, nil
}

func (u memUsage) ListAttemptUsage(ctx context.Context, userID uint, since time.Time) ([]model.AttemptUsage, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	var out []model.AttemptUsage
	for _, a := range u.store.attempts {
		if a.UserID != userID {
			continue
		}
		t := u.content.tests[a.TestID]
		out = append(out, model.AttemptUsage{TestID: a.TestID, Status: a.Status, TestType: t.TestType, Metadata: t.Metadata})
	}
	return out, nil
}

func TestDuplicateCreateOnLastFreeAttempt(t *testing.T) {
	svc, store, content := newFixture()
	ents := NewEntitlementService(memUsage{store: store, content: content}, config.EntitlementConfig{FreeChapterLimit: 1})
	ents.Now = func() time.Time { return fixedNow }
	svc.Entitlements = ents

	first := mustCreate(t, svc)
	second := mustCreate(t, svc)
	if open := store.inProgress(studentID, testID); len(open) != 1 || open[0].ID != second.AttemptID {
		t.Fatalf("expected the second attempt to replace the first, got %+v", open)
	}
	if first.AttemptID == second.AttemptID {
		t.Fatal("a new attempt should be issued")
	}

	if _, err := svc.SubmitSession(context.Background(), second.SessionToken, studentID); err != nil {
		t.Fatalf("SubmitSession: %v", err)
	}

	// 已完成的作答计入额度
	_, err := svc.CreateSession(context.Background(), studentID, testID)
	if !errors.Is(err, util.ErrLimitReached) {
		t.Fatalf("expected limit reached after a completed attempt, got %v", err)
	}
}
