package service

import (
	"context"
	"examprep_backend/internal/repository"
)

// sqlSessionStore 让 repository.SessionStore 满足 SessionStore，事务内传入同一事务的副本
type sqlSessionStore struct {
	*repository.SessionStore
}

func NewSQLSessionStore(store *repository.SessionStore) SessionStore {
	return sqlSessionStore{SessionStore: store}
}

func (s sqlSessionStore) Transaction(ctx context.Context, fn func(tx SessionStore) error) error {
	return s.WithTx(ctx, func(tx *repository.SessionStore) error {
		return fn(sqlSessionStore{SessionStore: tx})
	})
}

var (
	_ ContentStore       = (*repository.ContentRepository)(nil)
	_ QuestionSource     = (*repository.ContentRepository)(nil)
	_ QuestionCache      = (*repository.QuestionCache)(nil)
	_ PaymentLookup      = (*repository.PaymentRepository)(nil)
	_ SubscriptionSource = (*repository.EntitlementRepository)(nil)
	_ EntitlementLookup  = (*EntitlementService)(nil)
	_ QuestionResolver   = (*QuestionService)(nil)
)
