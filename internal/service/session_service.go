package service

import (
	"context"
	"encoding/json"
	"errors"
	"examprep_backend/internal/config"
	"examprep_backend/internal/model"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
	"examprep_backend/pkg/monitoring"
	"examprep_backend/pkg/tracing"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionStore 作答、会话、答案、监考事件与排行榜的写入端
type SessionStore interface {
	Transaction(ctx context.Context, fn func(tx SessionStore) error) error

	CreateAttempt(ctx context.Context, attempt *model.Attempt) error
	FindAttempt(ctx context.Context, id uint) (*model.Attempt, error)
	LinkSession(ctx context.Context, attemptID, sessionID uint) error
	TouchAttempt(ctx context.Context, attemptID uint, at time.Time) error
	CompleteAttempt(ctx context.Context, attempt *model.Attempt) (bool, error)
	DeleteInProgressAttempts(ctx context.Context, userID, testID, exceptID uint) (int64, error)
	ListOverdueAttempts(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]model.Attempt, error)

	CreateSession(ctx context.Context, session *model.Session) error
	FindSessionByToken(ctx context.Context, token string) (*model.Session, error)
	FindSessionByAttempt(ctx context.Context, attemptID uint) (*model.Session, error)
	IncrementCounter(ctx context.Context, sessionID uint, column string) error
	MarkHeartbeat(ctx context.Context, sessionID uint, at time.Time) error
	EndSession(ctx context.Context, sessionID uint, at time.Time) error

	UpsertAnswers(ctx context.Context, answers []model.AttemptAnswer, withTime bool) error
	ListAnswers(ctx context.Context, attemptID uint) ([]model.AttemptAnswer, error)
	SaveGrades(ctx context.Context, answers []model.AttemptAnswer) error

	AppendEvent(ctx context.Context, event *model.ProctoringEvent) error
	AddLeaderboardEntry(ctx context.Context, entry *model.LeaderboardEntry) error
}

// ContentStore 试卷、评分方案与正确答案，只读
type ContentStore interface {
	FindTest(ctx context.Context, id uint) (*model.Test, error)
	ListSchemes(ctx context.Context, testID uint) ([]model.TestQuestion, error)
	FindCorrectOptions(ctx context.Context, questionIDs []uint) (map[uint]uint, error)
}

type QuestionResolver interface {
	ResolveQuestions(ctx context.Context, testID uint) ([]QuestionView, error)
}

type EntitlementLookup interface {
	GetEntitlement(ctx context.Context, userID uint, category model.TestCategory, reclaimTestID uint) (model.Entitlement, error)
}

type PaymentLookup interface {
	HasSuccessfulPayment(ctx context.Context, userID, testID uint) (bool, error)
}

const (
	triggerUser   = "user"
	triggerExpiry = "expiry"
)

type SessionService struct {
	Store        SessionStore
	Content      ContentStore
	Questions    QuestionResolver
	Entitlements EntitlementLookup
	Payments     PaymentLookup
	Now          func() time.Time

	settings atomic.Pointer[config.SessionConfig]
}

func NewSessionService(
	store SessionStore,
	content ContentStore,
	questions QuestionResolver,
	entitlements EntitlementLookup,
	payments PaymentLookup,
	settings config.SessionConfig,
) *SessionService {
	s := &SessionService{
		Store:        store,
		Content:      content,
		Questions:    questions,
		Entitlements: entitlements,
		Payments:     payments,
		Now:          time.Now,
	}
	s.UpdateSettings(settings)
	return s
}

// UpdateSettings 配置热更新时调用
func (s *SessionService) UpdateSettings(settings config.SessionConfig) {
	s.settings.Store(&settings)
}

func (s *SessionService) Settings() config.SessionConfig {
	return *s.settings.Load()
}

type TestSummary struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	TestType        string             `json:"testType"`
	Category        model.TestCategory `json:"category"`
	DurationMinutes int                `json:"durationMinutes"`
	TotalMarks      float64            `json:"totalMarks"`
	PassPercentage  float64            `json:"passPercentage"`
	NegativeMarking bool               `json:"negativeMarking"`
	QuestionCount   int                `json:"questionCount"`
	EndTime         *time.Time         `json:"endTime,omitempty"`
}

type CreateSessionResult struct {
	SessionToken string         `json:"sessionToken"`
	AttemptID    uint           `json:"attemptId"`
	Test         TestSummary    `json:"test"`
	Questions    []QuestionView `json:"questions"`
}

type AnswerInput struct {
	QuestionID       uint    `json:"questionId" binding:"required"`
	SelectedOptionID *uint   `json:"selectedOptionId"`
	AnswerText       *string `json:"answerText"`
	TimeSpentSeconds *int    `json:"timeSpentSeconds" binding:"omitempty,min=0"`
}

type SubmitResult struct {
	AttemptID        uint    `json:"attemptId"`
	Score            float64 `json:"score"`
	Percentage       float64 `json:"percentage"`
	Correct          int     `json:"correct"`
	Incorrect        int     `json:"incorrect"`
	Unanswered       int     `json:"unanswered"`
	TotalPossible    float64 `json:"totalPossible"`
	IsPassed         bool    `json:"isPassed"`
	AlreadySubmitted bool    `json:"alreadySubmitted"`
}

type SessionView struct {
	Token           string     `json:"token"`
	SessionStart    time.Time  `json:"sessionStart"`
	SessionEnd      *time.Time `json:"sessionEnd,omitempty"`
	TabSwitches     int        `json:"tabSwitches"`
	ScreenshotCount int        `json:"screenshotCount"`
	ViolationCount  int        `json:"violationCount"`
	HeartbeatAt     *time.Time `json:"heartbeatAt,omitempty"`
}

type AttemptView struct {
	ID              uint                `json:"id"`
	TestID          uint                `json:"testId"`
	Status          model.AttemptStatus `json:"status"`
	StartTime       time.Time           `json:"startTime"`
	EndTime         *time.Time          `json:"endTime,omitempty"`
	SubmitTime      *time.Time          `json:"submitTime,omitempty"`
	MarksObtained   float64             `json:"marksObtained"`
	TotalMarks      float64             `json:"totalMarks"`
	Percentage      float64             `json:"percentage"`
	CorrectCount    int                 `json:"correctCount"`
	IncorrectCount  int                 `json:"incorrectCount"`
	UnansweredCount int                 `json:"unansweredCount"`
	IsPassed        bool                `json:"isPassed"`
}

type SessionStatus struct {
	Session SessionView `json:"session"`
	Attempt AttemptView `json:"attempt"`
}

// CreateSession 校验资格后开启新的作答，同一 (user, test) 旧的 in_progress 作答会被替换
func (s *SessionService) CreateSession(ctx context.Context, userID, testID uint) (result *CreateSessionResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "session.create",
		attribute.Int64("user_id", int64(userID)), attribute.Int64("test_id", int64(testID)))
	defer func() { tracing.End(span, err) }()

	if testID == 0 {
		return nil, util.ErrMissingTestID
	}

	test, err := s.Content.FindTest(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, fmt.Errorf("find test: %w", err)
	}

	now := s.Now()
	if err := s.checkEligibility(ctx, test, userID, now); err != nil {
		return nil, err
	}

	questions, err := s.Questions.ResolveQuestions(ctx, test.ID)
	if err != nil {
		return nil, err
	}

	var (
		attempt *model.Attempt
		session *model.Session
	)
	err = s.Store.Transaction(ctx, func(tx SessionStore) error {
		removed, err := tx.DeleteInProgressAttempts(ctx, userID, test.ID, 0)
		if err != nil {
			return fmt.Errorf("delete stale attempts: %w", err)
		}
		if removed > 0 {
			logger.Log.Info("Replaced in-progress attempts",
				zap.Uint("user_id", userID), zap.Uint("test_id", test.ID), zap.Int64("removed", removed))
		}

		attempt = &model.Attempt{
			UserID:    userID,
			TestID:    test.ID,
			Status:    model.AttemptInProgress,
			StartTime: now,
		}
		if err := tx.CreateAttempt(ctx, attempt); err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}

		token, err := NewSessionToken()
		if err != nil {
			return fmt.Errorf("generate session token: %w", err)
		}
		session = &model.Session{
			Token:        token,
			AttemptID:    attempt.ID,
			UserID:       userID,
			SessionStart: now,
		}
		if err := tx.CreateSession(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		if err := tx.LinkSession(ctx, attempt.ID, session.ID); err != nil {
			return fmt.Errorf("link session: %w", err)
		}
		attempt.SessionID = &session.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.SessionsCreated.WithLabelValues(string(test.Category())).Inc()
	logger.Log.Info("Test session created",
		zap.Uint("user_id", userID),
		zap.Uint("test_id", test.ID),
		zap.Uint("attempt_id", attempt.ID),
		zap.Int("questions", len(questions)),
	)

	return &CreateSessionResult{
		SessionToken: session.Token,
		AttemptID:    attempt.ID,
		Test:         summarize(test, len(questions)),
		Questions:    questions,
	}, nil
}

func summarize(t *model.Test, questionCount int) TestSummary {
	return TestSummary{
		ID:              t.ID,
		Title:           t.Title,
		TestType:        t.TestType,
		Category:        t.Category(),
		DurationMinutes: t.DurationMinutes,
		TotalMarks:      t.TotalMarks,
		PassPercentage:  t.PassPercentage,
		NegativeMarking: t.NegativeMarking,
		QuestionCount:   questionCount,
		EndTime:         t.EndTime,
	}
}

// AutosaveAnswers 按题覆盖保存，后写覆盖先写
func (s *SessionService) AutosaveAnswers(ctx context.Context, token string, userID uint, answers []AnswerInput) (err error) {
	ctx, span := tracing.StartSpan(ctx, "session.autosave", attribute.Int("answers", len(answers)))
	defer func() { tracing.End(span, err) }()

	_, attempt, err := s.loadOwned(ctx, token, userID)
	if err != nil {
		return err
	}
	if len(answers) == 0 {
		return util.ErrNoAnswers
	}
	if attempt.IsCompleted() {
		return util.ErrAttemptCompleted
	}

	schemes, err := s.Content.ListSchemes(ctx, attempt.TestID)
	if err != nil {
		return fmt.Errorf("list schemes: %w", err)
	}
	inTest := make(map[uint]bool, len(schemes))
	for _, sc := range schemes {
		inTest[sc.QuestionID] = true
	}

	// 同一请求里重复的题目只保留最后一条
	now := s.Now()
	latest := make(map[uint]int, len(answers))
	order := make([]uint, 0, len(answers))
	for i, a := range answers {
		if a.QuestionID == 0 || !inTest[a.QuestionID] {
			return util.ErrQuestionNotInTest.With("questionId", a.QuestionID)
		}
		if _, seen := latest[a.QuestionID]; !seen {
			order = append(order, a.QuestionID)
		}
		latest[a.QuestionID] = i
	}

	var timed, untimed []model.AttemptAnswer
	for _, qid := range order {
		a := answers[latest[qid]]
		row := model.AttemptAnswer{
			AttemptID:        attempt.ID,
			QuestionID:       qid,
			SelectedOptionID: a.SelectedOptionID,
			AnswerText:       a.AnswerText,
			AnsweredAt:       now,
		}
		if a.TimeSpentSeconds != nil {
			row.TimeSpentSeconds = *a.TimeSpentSeconds
			timed = append(timed, row)
		} else {
			untimed = append(untimed, row)
		}
	}

	return s.Store.Transaction(ctx, func(tx SessionStore) error {
		if err := tx.UpsertAnswers(ctx, timed, true); err != nil {
			return fmt.Errorf("upsert answers: %w", err)
		}
		if err := tx.UpsertAnswers(ctx, untimed, false); err != nil {
			return fmt.Errorf("upsert answers: %w", err)
		}
		if err := tx.TouchAttempt(ctx, attempt.ID, now); err != nil {
			return fmt.Errorf("touch attempt: %w", err)
		}
		return nil
	})
}

// SubmitSession 评分并结束作答；已提交的作答直接返回保存的成绩
func (s *SessionService) SubmitSession(ctx context.Context, token string, userID uint) (result *SubmitResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "session.submit", attribute.Int64("user_id", int64(userID)))
	defer func() { tracing.End(span, err) }()

	session, attempt, err := s.loadOwned(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if attempt.IsCompleted() {
		monitoring.Submissions.WithLabelValues(triggerUser, "already_submitted").Inc()
		return storedResult(attempt, true), nil
	}

	test, err := s.Content.FindTest(ctx, attempt.TestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, fmt.Errorf("find test: %w", err)
	}

	return s.finalize(ctx, test, attempt, session, triggerUser)
}

var errLostSubmitRace = errors.New("attempt already completed")

func (s *SessionService) finalize(ctx context.Context, test *model.Test, attempt *model.Attempt, session *model.Session, trigger string) (*SubmitResult, error) {
	start := time.Now()
	defer func() { monitoring.GradingDuration.Observe(time.Since(start).Seconds()) }()

	links, err := s.Content.ListSchemes(ctx, test.ID)
	if err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	schemes := make([]QuestionScheme, 0, len(links))
	for _, l := range links {
		schemes = append(schemes, QuestionScheme{
			QuestionID:    l.QuestionID,
			Marks:         l.Marks,
			NegativeMarks: l.NegativeMarks,
			Order:         l.QuestionOrder,
		})
	}

	threshold := test.PassPercentage
	if threshold <= 0 {
		threshold = s.Settings().DefaultPassPercentage
	}

	now := s.Now()
	err = s.Store.Transaction(ctx, func(tx SessionStore) error {
		if _, err := tx.DeleteInProgressAttempts(ctx, attempt.UserID, attempt.TestID, attempt.ID); err != nil {
			return fmt.Errorf("delete other attempts: %w", err)
		}

		answers, err := tx.ListAnswers(ctx, attempt.ID)
		if err != nil {
			return fmt.Errorf("list answers: %w", err)
		}

		selected := make(map[uint]*uint, len(answers))
		answered := make([]uint, 0, len(answers))
		for _, a := range answers {
			if a.SelectedOptionID != nil {
				selected[a.QuestionID] = a.SelectedOptionID
				answered = append(answered, a.QuestionID)
			}
		}

		correct := map[uint]uint{}
		if len(answered) > 0 {
			correct, err = s.Content.FindCorrectOptions(ctx, answered)
			if err != nil {
				return fmt.Errorf("find correct options: %w", err)
			}
		}

		bd := Grade(GradeInput{Schemes: schemes, Selected: selected, Correct: correct})

		attempt.Status = model.AttemptCompleted
		attempt.SubmitTime = &now
		attempt.EndTime = &now
		attempt.MarksObtained = bd.Obtained
		attempt.TotalMarks = bd.TotalPossible
		attempt.Percentage = bd.Percentage
		attempt.CorrectCount = bd.Correct
		attempt.IncorrectCount = bd.Incorrect
		attempt.UnansweredCount = bd.Unanswered
		attempt.IsPassed = bd.Passed(threshold)

		ok, err := tx.CompleteAttempt(ctx, attempt)
		if err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}
		if !ok {
			return errLostSubmitRace
		}

		if len(answers) > 0 {
			if err := tx.SaveGrades(ctx, applyGrades(answers, bd)); err != nil {
				return fmt.Errorf("save grades: %w", err)
			}
		}

		if session != nil {
			if err := tx.EndSession(ctx, session.ID, now); err != nil {
				return fmt.Errorf("end session: %w", err)
			}
		}

		entry := &model.LeaderboardEntry{
			TestID:            attempt.TestID,
			UserID:            attempt.UserID,
			AttemptID:         attempt.ID,
			Score:             bd.Obtained,
			Percentage:        bd.Percentage,
			CompletionSeconds: int(now.Sub(attempt.StartTime).Seconds()),
			EntryDate:         time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		}
		if err := tx.AddLeaderboardEntry(ctx, entry); err != nil {
			return fmt.Errorf("add leaderboard entry: %w", err)
		}
		return nil
	})

	if errors.Is(err, errLostSubmitRace) {
		stored, ferr := s.Store.FindAttempt(ctx, attempt.ID)
		if ferr != nil {
			return nil, fmt.Errorf("reload attempt: %w", ferr)
		}
		monitoring.Submissions.WithLabelValues(trigger, "already_submitted").Inc()
		return storedResult(stored, true), nil
	}
	if err != nil {
		monitoring.Submissions.WithLabelValues(trigger, "error").Inc()
		return nil, err
	}

	monitoring.Submissions.WithLabelValues(trigger, "graded").Inc()
	logger.Log.Info("Attempt graded",
		zap.String("trigger", trigger),
		zap.Uint("attempt_id", attempt.ID),
		zap.Uint("user_id", attempt.UserID),
		zap.Float64("score", attempt.MarksObtained),
		zap.Float64("percentage", attempt.Percentage),
	)
	return storedResult(attempt, false), nil
}

// applyGrades 把评分结果写回答案行；无法判分的题目只记 0 分
func applyGrades(answers []model.AttemptAnswer, bd GradeBreakdown) []model.AttemptAnswer {
	byQuestion := make(map[uint]QuestionResult, len(bd.Results))
	for _, r := range bd.Results {
		byQuestion[r.QuestionID] = r
	}
	graded := make([]model.AttemptAnswer, 0, len(answers))
	for _, a := range answers {
		r, ok := byQuestion[a.QuestionID]
		if !ok {
			continue
		}
		marks := r.Marks
		a.MarksObtained = &marks
		switch r.Outcome {
		case OutcomeCorrect:
			v := true
			a.IsCorrect = &v
		case OutcomeIncorrect:
			v := false
			a.IsCorrect = &v
		default:
			a.IsCorrect = nil
		}
		graded = append(graded, a)
	}
	return graded
}

func storedResult(a *model.Attempt, already bool) *SubmitResult {
	return &SubmitResult{
		AttemptID:        a.ID,
		Score:            a.MarksObtained,
		Percentage:       a.Percentage,
		Correct:          a.CorrectCount,
		Incorrect:        a.IncorrectCount,
		Unanswered:       a.UnansweredCount,
		TotalPossible:    a.TotalMarks,
		IsPassed:         a.IsPassed,
		AlreadySubmitted: already,
	}
}

// PostSessionEvent 记录监考事件并累加对应计数
func (s *SessionService) PostSessionEvent(ctx context.Context, token string, userID uint, eventType string, metadata json.RawMessage) (err error) {
	ctx, span := tracing.StartSpan(ctx, "session.event", attribute.String("event_type", eventType))
	defer func() { tracing.End(span, err) }()

	column, known := model.CounterColumn(eventType)
	if !known {
		return util.ErrInvalidEventType.With("eventType", eventType)
	}

	session, attempt, err := s.loadOwned(ctx, token, userID)
	if err != nil {
		return err
	}
	if attempt.IsCompleted() {
		return util.ErrAttemptCompleted
	}

	now := s.Now()
	event := &model.ProctoringEvent{
		SessionID:  session.ID,
		AttemptID:  attempt.ID,
		UserID:     attempt.UserID,
		EventType:  eventType,
		OccurredAt: now,
	}
	if len(metadata) > 0 && string(metadata) != "null" {
		event.Metadata = datatypes.JSON(metadata)
	}

	err = s.Store.Transaction(ctx, func(tx SessionStore) error {
		if err := tx.AppendEvent(ctx, event); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
		if column != "" {
			if err := tx.IncrementCounter(ctx, session.ID, column); err != nil {
				return fmt.Errorf("increment %s: %w", column, err)
			}
		}
		if eventType == model.EventHeartbeat {
			if err := tx.MarkHeartbeat(ctx, session.ID, now); err != nil {
				return fmt.Errorf("mark heartbeat: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	monitoring.ProctoringEvents.WithLabelValues(eventType).Inc()
	if eventType != model.EventHeartbeat {
		logger.Log.Debug("Proctoring event recorded",
			zap.Uint("session_id", session.ID), zap.String("event_type", eventType))
	}
	return nil
}

// GetSessionStatus 只读；userID 为 0 时跳过归属校验（管理端）
func (s *SessionService) GetSessionStatus(ctx context.Context, token string, userID uint) (*SessionStatus, error) {
	session, attempt, err := s.loadOwned(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	return &SessionStatus{
		Session: SessionView{
			Token:           session.Token,
			SessionStart:    session.SessionStart,
			SessionEnd:      session.SessionEnd,
			TabSwitches:     session.TabSwitches,
			ScreenshotCount: session.ScreenshotCount,
			ViolationCount:  session.ViolationCount,
			HeartbeatAt:     session.HeartbeatAt,
		},
		Attempt: AttemptView{
			ID:              attempt.ID,
			TestID:          attempt.TestID,
			Status:          attempt.Status,
			StartTime:       attempt.StartTime,
			EndTime:         attempt.EndTime,
			SubmitTime:      attempt.SubmitTime,
			MarksObtained:   attempt.MarksObtained,
			TotalMarks:      attempt.TotalMarks,
			Percentage:      attempt.Percentage,
			CorrectCount:    attempt.CorrectCount,
			IncorrectCount:  attempt.IncorrectCount,
			UnansweredCount: attempt.UnansweredCount,
			IsPassed:        attempt.IsPassed,
		},
	}, nil
}

// ForceSubmitOverdue 超时未交卷的作答按同一评分流程强制提交，返回提交数量
func (s *SessionService) ForceSubmitOverdue(ctx context.Context) (int, error) {
	settings := s.Settings()
	if !settings.ExpirySweepEnabled {
		return 0, nil
	}

	attempts, err := s.Store.ListOverdueAttempts(ctx, s.Now(), settings.ExpiryGrace, settings.ExpirySweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list overdue attempts: %w", err)
	}

	submitted := 0
	for i := range attempts {
		attempt := &attempts[i]

		test, err := s.Content.FindTest(ctx, attempt.TestID)
		if err != nil {
			logger.Log.Error("Force submit: test lookup failed", zap.Uint("attempt_id", attempt.ID), zap.Error(err))
			continue
		}
		session, err := s.Store.FindSessionByAttempt(ctx, attempt.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error("Force submit: session lookup failed", zap.Uint("attempt_id", attempt.ID), zap.Error(err))
			continue
		}

		res, err := s.finalize(ctx, test, attempt, session, triggerExpiry)
		if err != nil {
			logger.Log.Error("Force submit failed", zap.Uint("attempt_id", attempt.ID), zap.Error(err))
			continue
		}
		if !res.AlreadySubmitted {
			submitted++
		}
	}
	return submitted, nil
}

func (s *SessionService) loadOwned(ctx context.Context, token string, userID uint) (*model.Session, *model.Attempt, error) {
	if !ValidSessionToken(token) {
		return nil, nil, util.ErrSessionNotFound
	}
	session, err := s.Store.FindSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("find session: %w", err)
	}
	attempt, err := s.Store.FindAttempt(ctx, session.AttemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrAttemptNotFound
		}
		return nil, nil, fmt.Errorf("find attempt: %w", err)
	}
	if userID != 0 && attempt.UserID != userID {
		return nil, nil, util.ErrNotAttemptOwner
	}
	return session, attempt, nil
}
