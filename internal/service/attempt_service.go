package service

import (
	"context"
	"errors"
	"time"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"

	"gorm.io/gorm"
)

// Submission triggers, recorded for metrics and returned to the client.
const (
	TriggerManual    = "manual"
	TriggerTimer     = "timer"
	TriggerViolation = "violation"
	TriggerReload    = "reload"
)

// QuizLoader 是 AttemptService 对测验仓储的最小依赖
type QuizLoader interface {
	FindByIDWithQuestions(id uint) (*model.Quiz, error)
}

// AttemptRecorder 是 AttemptService 对结果仓储的最小依赖
type AttemptRecorder interface {
	CountByUserAndQuiz(userID, quizID uint) (int64, error)
	CreateIfBelowLimit(result *model.Result, maxAttempts int) error
}

// AttemptService drives the lifecycle of one quiz attempt: an
// eligibility-gated start, answer and navigation updates against the
// transient session, anti-cheat counters, and a single grading pass at
// submission that persists exactly one Result.
type AttemptService struct {
	Quizzes  QuizLoader
	Results  AttemptRecorder
	Sessions SessionStore
	Cfg      *config.Config
}

func NewAttemptService(quizzes QuizLoader, results AttemptRecorder, sessions SessionStore, cfg *config.Config) *AttemptService {
	return &AttemptService{
		Quizzes:  quizzes,
		Results:  results,
		Sessions: sessions,
		Cfg:      cfg,
	}
}

// AttemptUpdate 是会话操作的统一返回：会话快照，
// 以及当操作触发了自动提交时产生的结果
type AttemptUpdate struct {
	Session       *model.AttemptSession `json:"session"`
	Result        *model.Result         `json:"result,omitempty"`
	AutoSubmitted bool                  `json:"autoSubmitted"`
	Trigger       string                `json:"trigger,omitempty"`
}

func (s *AttemptService) sessionTTL(quiz *model.Quiz) time.Duration {
	grace := s.Cfg.Attempt.SessionGraceSeconds
	if grace <= 0 {
		grace = 300
	}
	return time.Duration(quiz.Duration*60+grace) * time.Second
}

func (s *AttemptService) loadQuiz(quizID uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// Start opens an attempt session. An in-progress session for the same
// (user, quiz) is restored instead of restarted, so a page reload does
// not reset the timer or the recorded answers. Ineligible starts never
// create a session; the caller receives the reason as an error.
func (s *AttemptService) Start(ctx context.Context, userID, quizID uint, now time.Time) (*AttemptUpdate, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.Sessions.Load(ctx, quizID, userID); err == nil && !existing.Terminal() {
		return s.reclock(ctx, existing, quiz, now)
	}

	if err := AvailabilityError(quiz, now); err != nil {
		return nil, err
	}
	prior, err := s.Results.CountByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, err
	}
	if RemainingAttempts(quiz.MaxAttempts, int(prior)) == 0 {
		return nil, &util.MaxAttemptsError{Limit: quiz.MaxAttempts}
	}

	session := model.NewAttemptSession(quizID, userID, quiz.Duration, now)
	if err := s.Sessions.Save(ctx, session, s.sessionTTL(quiz)); err != nil {
		return nil, err
	}
	return &AttemptUpdate{Session: session}, nil
}

// reclock recomputes the authoritative remaining time of a restored
// session from its start timestamp and auto-submits when it ran out
// while the client was away.
func (s *AttemptService) reclock(ctx context.Context, session *model.AttemptSession, quiz *model.Quiz, now time.Time) (*AttemptUpdate, error) {
	allowed := quiz.Duration*60 - int(now.Sub(session.StartedAt).Seconds())
	if allowed < session.TimeRemaining {
		session.TimeRemaining = allowed
	}
	if session.TimeRemaining <= 0 {
		session.TimeRemaining = 0
		return s.forceSubmit(ctx, session, quiz, TriggerTimer, now)
	}
	if err := s.Sessions.Save(ctx, session, s.sessionTTL(quiz)); err != nil {
		return nil, err
	}
	return &AttemptUpdate{Session: session}, nil
}

func (s *AttemptService) loadActive(ctx context.Context, userID, quizID uint) (*model.AttemptSession, *model.Quiz, error) {
	session, err := s.Sessions.Load(ctx, quizID, userID)
	if err != nil {
		return nil, nil, err
	}
	if session.Terminal() {
		return nil, nil, util.ErrSessionTerminal
	}
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, nil, err
	}
	return session, quiz, nil
}

// SelectAnswer upserts the answers for one question. No correctness
// check happens here and the current index does not move.
func (s *AttemptService) SelectAnswer(ctx context.Context, userID, quizID, questionID uint, answers []string) (*AttemptUpdate, error) {
	session, quiz, err := s.loadActive(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	known := false
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			known = true
			break
		}
	}
	if !known {
		return nil, util.Validation("question %d does not belong to quiz %d", questionID, quizID)
	}

	session.SelectedAnswers[questionID] = answers
	if err := s.Sessions.Save(ctx, session, s.sessionTTL(quiz)); err != nil {
		return nil, err
	}
	return &AttemptUpdate{Session: session}, nil
}

// Navigate moves the current question index. Moving forward past an
// unanswered question is rejected only when the forward-gating policy is
// switched on.
func (s *AttemptService) Navigate(ctx context.Context, userID, quizID uint, index int) (*AttemptUpdate, error) {
	session, quiz, err := s.loadActive(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(quiz.Questions) {
		return nil, util.ErrIndexOutOfRange
	}
	if s.Cfg.Attempt.RequireAnswerToAdvance && index > session.CurrentQuestionIndex {
		current := quiz.Questions[session.CurrentQuestionIndex]
		if len(session.SelectedAnswers[current.ID]) == 0 {
			return nil, util.ErrAnswerRequired
		}
	}

	session.CurrentQuestionIndex = index
	if err := s.Sessions.Save(ctx, session, s.sessionTTL(quiz)); err != nil {
		return nil, err
	}
	return &AttemptUpdate{Session: session}, nil
}

// SyncTime reconciles the client countdown with the server clock. The
// stored value only ever decreases; hitting zero force-submits with
// whatever answers are recorded.
func (s *AttemptService) SyncTime(ctx context.Context, userID, quizID uint, reported int, now time.Time) (*AttemptUpdate, error) {
	session, quiz, err := s.loadActive(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	remaining := reported
	if remaining > session.TimeRemaining {
		remaining = session.TimeRemaining
	}
	if allowed := quiz.Duration*60 - int(now.Sub(session.StartedAt).Seconds()); allowed < remaining {
		remaining = allowed
	}
	if remaining < 0 {
		remaining = 0
	}
	session.TimeRemaining = remaining

	if session.TimeRemaining == 0 {
		return s.forceSubmit(ctx, session, quiz, TriggerTimer, now)
	}
	if err := s.Sessions.Save(ctx, session, s.sessionTTL(quiz)); err != nil {
		return nil, err
	}
	return &AttemptUpdate{Session: session}, nil
}

// ReportViolation 记录一次违规信号（切出标签页、退出全屏等，由 UI 上报）
func (s *AttemptService) ReportViolation(ctx context.Context, userID, quizID uint, now time.Time) (*AttemptUpdate, error) {
	session, quiz, err := s.loadActive(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	session.ViolationCount++
	if session.ViolationCount >= model.ViolationThreshold {
		return s.forceSubmit(ctx, session, quiz, TriggerViolation, now)
	}
	if err := s.Sessions.Save(ctx, session, s.sessionTTL(quiz)); err != nil {
		return nil, err
	}
	return &AttemptUpdate{Session: session}, nil
}

// ReportReload 记录一次刷新/离开页面的尝试
func (s *AttemptService) ReportReload(ctx context.Context, userID, quizID uint, now time.Time) (*AttemptUpdate, error) {
	session, quiz, err := s.loadActive(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	session.ReloadCount++
	if session.ReloadCount >= model.ReloadThreshold {
		return s.forceSubmit(ctx, session, quiz, TriggerReload, now)
	}
	if err := s.Sessions.Save(ctx, session, s.sessionTTL(quiz)); err != nil {
		return nil, err
	}
	return &AttemptUpdate{Session: session}, nil
}

// Submit grades the session and persists the result.
func (s *AttemptService) Submit(ctx context.Context, userID, quizID uint, now time.Time) (*AttemptUpdate, error) {
	session, quiz, err := s.loadActive(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	return s.forceSubmit(ctx, session, quiz, TriggerManual, now)
}

// forceSubmit runs the single grading pass and writes one immutable
// Result. The insert re-counts prior attempts under a lock, so two
// concurrent submissions cannot push a user past maxAttempts. On a
// failed write the session stays in submitting and the caller may retry
// by resubmitting; nothing retries automatically.
func (s *AttemptService) forceSubmit(ctx context.Context, session *model.AttemptSession, quiz *model.Quiz, trigger string, now time.Time) (*AttemptUpdate, error) {
	session.State = model.SessionSubmitting
	if err := s.Sessions.Save(ctx, session, s.sessionTTL(quiz)); err != nil {
		return nil, err
	}

	score, _ := CalculateScore(quiz.Questions, session.SelectedAnswers)
	result := &model.Result{
		UserID:         session.UserID,
		QuizID:         session.QuizID,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		CompletedAt:    now,
	}

	if err := s.Results.CreateIfBelowLimit(result, quiz.MaxAttempts); err != nil {
		return nil, err
	}

	session.State = model.SessionSubmitted
	session.TimeRemaining = 0
	if err := s.Sessions.Delete(ctx, session.QuizID, session.UserID); err != nil {
		// 结果已落库，会话清理失败只记录为更新返回，不回滚
		return &AttemptUpdate{Session: session, Result: result, AutoSubmitted: trigger != TriggerManual, Trigger: trigger}, nil
	}

	return &AttemptUpdate{
		Session:       session,
		Result:        result,
		AutoSubmitted: trigger != TriggerManual,
		Trigger:       trigger,
	}, nil
}
