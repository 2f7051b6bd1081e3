package repository

import (
	"context"
	"examprep_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// SessionStore 会话引擎的可写存储：作答、会话、答案、监考事件与排行榜
type SessionStore struct {
	DB          *gorm.DB
	Attempts    *AttemptRepository
	Sessions    *SessionRepository
	Answers     *AnswerRepository
	Events      *ProctoringRepository
	Leaderboard *LeaderboardRepository
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{
		DB:          db,
		Attempts:    NewAttemptRepository(db),
		Sessions:    NewSessionRepository(db),
		Answers:     NewAnswerRepository(db),
		Events:      NewProctoringRepository(db),
		Leaderboard: NewLeaderboardRepository(db),
	}
}

// WithTx 在同一事务内执行 fn，fn 返回错误即回滚
func (s *SessionStore) WithTx(ctx context.Context, fn func(tx *SessionStore) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewSessionStore(tx))
	})
}

func (s *SessionStore) CreateAttempt(ctx context.Context, a *model.Attempt) error {
	return s.Attempts.Create(ctx, a)
}

func (s *SessionStore) FindAttempt(ctx context.Context, id uint) (*model.Attempt, error) {
	return s.Attempts.FindByID(ctx, id)
}

func (s *SessionStore) LinkSession(ctx context.Context, attemptID, sessionID uint) error {
	return s.Attempts.LinkSession(ctx, attemptID, sessionID)
}

func (s *SessionStore) TouchAttempt(ctx context.Context, attemptID uint, at time.Time) error {
	return s.Attempts.Touch(ctx, attemptID, at)
}

func (s *SessionStore) CompleteAttempt(ctx context.Context, a *model.Attempt) (bool, error) {
	return s.Attempts.Complete(ctx, a)
}

func (s *SessionStore) DeleteInProgressAttempts(ctx context.Context, userID, testID, exceptID uint) (int64, error) {
	return s.Attempts.DeleteInProgress(ctx, userID, testID, exceptID)
}

func (s *SessionStore) ListOverdueAttempts(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]model.Attempt, error) {
	return s.Attempts.ListOverdue(ctx, now, grace, limit)
}

func (s *SessionStore) CreateSession(ctx context.Context, sess *model.Session) error {
	return s.Sessions.Create(ctx, sess)
}

func (s *SessionStore) FindSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	return s.Sessions.FindByToken(ctx, token)
}

func (s *SessionStore) FindSessionByAttempt(ctx context.Context, attemptID uint) (*model.Session, error) {
	return s.Sessions.FindByAttempt(ctx, attemptID)
}

func (s *SessionStore) IncrementCounter(ctx context.Context, sessionID uint, column string) error {
	return s.Sessions.IncrementCounter(ctx, sessionID, column)
}

func (s *SessionStore) MarkHeartbeat(ctx context.Context, sessionID uint, at time.Time) error {
	return s.Sessions.MarkHeartbeat(ctx, sessionID, at)
}

func (s *SessionStore) EndSession(ctx context.Context, sessionID uint, at time.Time) error {
	return s.Sessions.End(ctx, sessionID, at)
}

func (s *SessionStore) UpsertAnswers(ctx context.Context, answers []model.AttemptAnswer, withTime bool) error {
	return s.Answers.Upsert(ctx, answers, withTime)
}

func (s *SessionStore) ListAnswers(ctx context.Context, attemptID uint) ([]model.AttemptAnswer, error) {
	return s.Answers.ListByAttempt(ctx, attemptID)
}

func (s *SessionStore) SaveGrades(ctx context.Context, answers []model.AttemptAnswer) error {
	return s.Answers.SaveGrades(ctx, answers)
}

func (s *SessionStore) AppendEvent(ctx context.Context, event *model.ProctoringEvent) error {
	return s.Events.Append(ctx, event)
}

func (s *SessionStore) AddLeaderboardEntry(ctx context.Context, entry *model.LeaderboardEntry) error {
	return s.Leaderboard.Add(ctx, entry)
}
