package service

import (
	"context"
	"errors"
	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

var errInjected = errors.New("injected failure")

type answerKey struct {
	attemptID  uint
	questionID uint
}

// memStore 内存版 SessionStore，Transaction 失败时整体回滚
type memStore struct {
	mu      sync.Mutex
	content *memContent
	nextID  uint
	failOn  string

	attempts    map[uint]*model.Attempt
	sessions    map[uint]*model.Session
	answers     map[answerKey]*model.AttemptAnswer
	events      []model.ProctoringEvent
	leaderboard []model.LeaderboardEntry
}

func newMemStore(content *memContent) *memStore {
	return &memStore{
		content:  content,
		attempts: map[uint]*model.Attempt{},
		sessions: map[uint]*model.Session{},
		answers:  map[answerKey]*model.AttemptAnswer{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return errInjected
	}
	return nil
}

type memSnapshot struct {
	nextID      uint
	attempts    map[uint]model.Attempt
	sessions    map[uint]model.Session
	answers     map[answerKey]model.AttemptAnswer
	events      int
	leaderboard int
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := memSnapshot{
		nextID:      m.nextID,
		attempts:    map[uint]model.Attempt{},
		sessions:    map[uint]model.Session{},
		answers:     map[answerKey]model.AttemptAnswer{},
		events:      len(m.events),
		leaderboard: len(m.leaderboard),
	}
	for k, v := range m.attempts {
		snap.attempts[k] = *v
	}
	for k, v := range m.sessions {
		snap.sessions[k] = *v
	}
	for k, v := range m.answers {
		snap.answers[k] = *v
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = snap.nextID
	m.attempts = map[uint]*model.Attempt{}
	for k, v := range snap.attempts {
		v := v
		m.attempts[k] = &v
	}
	m.sessions = map[uint]*model.Session{}
	for k, v := range snap.sessions {
		v := v
		m.sessions[k] = &v
	}
	m.answers = map[answerKey]*model.AttemptAnswer{}
	for k, v := range snap.answers {
		v := v
		m.answers[k] = &v
	}
	m.events = m.events[:snap.events]
	m.leaderboard = m.leaderboard[:snap.leaderboard]
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx SessionStore) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) CreateAttempt(ctx context.Context, a *model.Attempt) error {
	if err := m.fail("CreateAttempt"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	cp := *a
	m.attempts[a.ID] = &cp
	return nil
}

func (m *memStore) FindAttempt(ctx context.Context, id uint) (*model.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) LinkSession(ctx context.Context, attemptID, sessionID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attempts[attemptID]; ok {
		sid := sessionID
		a.SessionID = &sid
	}
	return nil
}

func (m *memStore) TouchAttempt(ctx context.Context, attemptID uint, at time.Time) error {
	if err := m.fail("TouchAttempt"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attempts[attemptID]; ok && a.Status == model.AttemptInProgress {
		t := at
		a.EndTime = &t
	}
	return nil
}

func (m *memStore) CompleteAttempt(ctx context.Context, a *model.Attempt) (bool, error) {
	if err := m.fail("CompleteAttempt"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.attempts[a.ID]
	if !ok || cur.Status != model.AttemptInProgress {
		return false, nil
	}
	cp := *a
	cp.Status = model.AttemptCompleted
	m.attempts[a.ID] = &cp
	return true, nil
}

func (m *memStore) DeleteInProgressAttempts(ctx context.Context, userID, testID, exceptID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, a := range m.attempts {
		if a.UserID != userID || a.TestID != testID || a.Status != model.AttemptInProgress || id == exceptID {
			continue
		}
		delete(m.attempts, id)
		for sid, s := range m.sessions {
			if s.AttemptID == id {
				delete(m.sessions, sid)
			}
		}
		for k := range m.answers {
			if k.attemptID == id {
				delete(m.answers, k)
			}
		}
		n++
	}
	return n, nil
}

func (m *memStore) ListOverdueAttempts(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]model.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Attempt
	for _, a := range m.attempts {
		if a.Status != model.AttemptInProgress {
			continue
		}
		t, ok := m.content.tests[a.TestID]
		if !ok || t.DurationMinutes <= 0 {
			continue
		}
		if now.After(a.StartTime.Add(t.Duration() + grace)) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CreateSession(ctx context.Context, s *model.Session) error {
	if err := m.fail("CreateSession"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.id()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memStore) FindSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Token == token {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) FindSessionByAttempt(ctx context.Context, attemptID uint) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.AttemptID == attemptID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) IncrementCounter(ctx context.Context, sessionID uint, column string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	switch column {
	case "tab_switches":
		s.TabSwitches++
	case "screenshot_count":
		s.ScreenshotCount++
	case "violation_count":
		s.ViolationCount++
	default:
		return errors.New("unknown counter " + column)
	}
	return nil
}

func (m *memStore) MarkHeartbeat(ctx context.Context, sessionID uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		t := at
		s.HeartbeatAt = &t
	}
	return nil
}

func (m *memStore) EndSession(ctx context.Context, sessionID uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok && s.SessionEnd == nil {
		t := at
		s.SessionEnd = &t
	}
	return nil
}

func (m *memStore) UpsertAnswers(ctx context.Context, answers []model.AttemptAnswer, withTime bool) error {
	if err := m.fail("UpsertAnswers"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range answers {
		k := answerKey{a.AttemptID, a.QuestionID}
		if cur, ok := m.answers[k]; ok {
			cur.SelectedOptionID = a.SelectedOptionID
			cur.AnswerText = a.AnswerText
			cur.AnsweredAt = a.AnsweredAt
			if withTime {
				cur.TimeSpentSeconds = a.TimeSpentSeconds
			}
			continue
		}
		cp := a
		cp.ID = m.id()
		m.answers[k] = &cp
	}
	return nil
}

func (m *memStore) ListAnswers(ctx context.Context, attemptID uint) ([]model.AttemptAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AttemptAnswer
	for k, a := range m.answers {
		if k.attemptID == attemptID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (m *memStore) SaveGrades(ctx context.Context, answers []model.AttemptAnswer) error {
	if err := m.fail("SaveGrades"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range answers {
		if cur, ok := m.answers[answerKey{a.AttemptID, a.QuestionID}]; ok {
			cur.MarksObtained = a.MarksObtained
			cur.IsCorrect = a.IsCorrect
		}
	}
	return nil
}

func (m *memStore) AppendEvent(ctx context.Context, e *model.ProctoringEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	m.events = append(m.events, *e)
	return nil
}

func (m *memStore) AddLeaderboardEntry(ctx context.Context, e *model.LeaderboardEntry) error {
	if err := m.fail("AddLeaderboardEntry"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.id()
	m.leaderboard = append(m.leaderboard, *e)
	return nil
}

func (m *memStore) inProgress(userID, testID uint) []model.Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Attempt
	for _, a := range m.attempts {
		if a.UserID == userID && a.TestID == testID && a.Status == model.AttemptInProgress {
			out = append(out, *a)
		}
	}
	return out
}

func (m *memStore) session(token string) *model.Session {
	s, _ := m.FindSessionByToken(context.Background(), token)
	return s
}

// memContent 试卷与正确答案
type memContent struct {
	tests        map[uint]*model.Test
	schemes      map[uint][]model.TestQuestion
	correct      map[uint]uint
	correctCalls int
}

func (c *memContent) FindTest(ctx context.Context, id uint) (*model.Test, error) {
	t, ok := c.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (c *memContent) ListSchemes(ctx context.Context, testID uint) ([]model.TestQuestion, error) {
	return c.schemes[testID], nil
}

func (c *memContent) FindCorrectOptions(ctx context.Context, questionIDs []uint) (map[uint]uint, error) {
	c.correctCalls++
	out := map[uint]uint{}
	for _, id := range questionIDs {
		if opt, ok := c.correct[id]; ok {
			out[id] = opt
		}
	}
	return out, nil
}

type stubQuestions struct {
	views []QuestionView
	err   error
}

func (q stubQuestions) ResolveQuestions(ctx context.Context, testID uint) ([]QuestionView, error) {
	return q.views, q.err
}

type stubEntitlements struct {
	ent model.Entitlement
	err error
}

func (e stubEntitlements) GetEntitlement(ctx context.Context, userID uint, category model.TestCategory, reclaimTestID uint) (model.Entitlement, error) {
	ent := e.ent
	ent.Category = category
	return ent, e.err
}

type stubPayments map[[2]uint]bool

func (p stubPayments) HasSuccessfulPayment(ctx context.Context, userID, testID uint) (bool, error) {
	return p[[2]uint{userID, testID}], nil
}

const (
	studentID = uint(7)
	otherID   = uint(8)
	testID    = uint(100)
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

// newFixture 两道 4 分题，答错扣 1 分；q1 正确选项 11，q2 正确选项 21
func newFixture() (*SessionService, *memStore, *memContent) {
	content := &memContent{
		tests: map[uint]*model.Test{
			testID: {
				BaseModel:       model.BaseModel{ID: testID},
				Title:           "Kinematics chapter test",
				TestType:        model.TestTypeChapter,
				IsPublished:     true,
				IsFree:          true,
				DurationMinutes: 30,
				TotalMarks:      8,
				PassPercentage:  35,
				NegativeMarking: true,
			},
		},
		schemes: map[uint][]model.TestQuestion{
			testID: {
				{TestID: testID, QuestionID: 1, Marks: 4, NegativeMarks: 1, QuestionOrder: 1},
				{TestID: testID, QuestionID: 2, Marks: 4, NegativeMarks: 1, QuestionOrder: 2},
			},
		},
		correct: map[uint]uint{1: 11, 2: 21},
	}
	store := newMemStore(content)
	svc := NewSessionService(
		store,
		content,
		stubQuestions{views: []QuestionView{{ID: 1}, {ID: 2}}},
		stubEntitlements{ent: model.NewEntitlement(model.CategoryChapter, model.UnlimitedQuota, 0, "")},
		stubPayments{},
		config.SessionConfig{
			ExpirySweepEnabled:    true,
			ExpiryGrace:           2 * time.Minute,
			ExpirySweepBatch:      50,
			DefaultPassPercentage: 40,
		},
	)
	svc.Now = func() time.Time { return fixedNow }
	return svc, store, content
}
