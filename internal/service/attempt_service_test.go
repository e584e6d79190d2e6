package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizhub_backend/internal/config"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"
)

type fakeQuizLoader struct {
	quiz *model.Quiz
}

func (f *fakeQuizLoader) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	if f.quiz == nil || f.quiz.ID != id {
		return nil, util.ErrQuizNotFound
	}
	return f.quiz, nil
}

type fakeRecorder struct {
	results []*model.Result
}

func (f *fakeRecorder) CountByUserAndQuiz(userID, quizID uint) (int64, error) {
	var n int64
	for _, r := range f.results {
		if r.UserID == userID && r.QuizID == quizID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRecorder) CreateIfBelowLimit(result *model.Result, maxAttempts int) error {
	n, _ := f.CountByUserAndQuiz(result.UserID, result.QuizID)
	if maxAttempts > 0 && int(n) >= maxAttempts {
		return &util.MaxAttemptsError{Limit: maxAttempts}
	}
	f.results = append(f.results, result)
	return nil
}

func fiveQuestionQuiz() *model.Quiz {
	quiz := &model.Quiz{
		Title:       "Capitals",
		Duration:    10,
		MaxAttempts: 1,
		Questions: []model.Question{
			question(1, model.MultipleChoice, "A"),
			question(2, model.MultipleChoice, "B"),
			question(3, model.TrueFalse, "True"),
			question(4, model.FillInBlank, "Paris"),
			question(5, model.MultiAnswer, "X", "Y"),
		},
	}
	quiz.ID = 7
	return quiz
}

func newTestAttemptService(quiz *model.Quiz, recorder *fakeRecorder, cfg *config.Config) *AttemptService {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return NewAttemptService(&fakeQuizLoader{quiz: quiz}, recorder, NewMemorySessionStore(), cfg)
}

func TestStartCreatesSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, nil)

	update, err := svc.Start(ctx, 100, 7, now)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if update.Session.TimeRemaining != 600 {
		t.Fatalf("expected 600 seconds, got %d", update.Session.TimeRemaining)
	}
	if update.Session.State != model.SessionInProgress {
		t.Fatalf("expected in_progress, got %s", update.Session.State)
	}
}

func TestStartBeforeWindowRejected(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	quiz := fiveQuestionQuiz()
	start := now.Add(24 * time.Hour)
	quiz.StartDate = &start

	svc := newTestAttemptService(quiz, &fakeRecorder{}, nil)

	_, err := svc.Start(ctx, 100, 7, now)
	if !errors.Is(err, util.ErrNotYetAvailable) {
		t.Fatalf("expected ErrNotYetAvailable, got %v", err)
	}
	if _, err := svc.Sessions.Load(ctx, 7, 100); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("ineligible start must not leave a session, got %v", err)
	}
}

func TestStartRecoversExistingSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, nil)

	first, err := svc.Start(ctx, 100, 7, now)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.SelectAnswer(ctx, 100, 7, 1, []string{"A"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	second, err := svc.Start(ctx, 100, 7, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("recovery start failed: %v", err)
	}
	if second.Session.StartedAt != first.Session.StartedAt {
		t.Fatal("recovery must not reset the session start")
	}
	if got := second.Session.SelectedAnswers[1]; len(got) != 1 || got[0] != "A" {
		t.Fatalf("recovered session lost answers: %v", got)
	}
	if second.Session.TimeRemaining > 600-120 {
		t.Fatalf("recovered timer must account for elapsed time, got %d", second.Session.TimeRemaining)
	}
}

func TestSubmitGradesAndPersists(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	recorder := &fakeRecorder{}
	svc := newTestAttemptService(fiveQuestionQuiz(), recorder, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for id, answers := range map[uint][]string{
		1: {"A"},
		2: {"B"},
		3: {"True"},
		4: {" paris "},
		5: {"Y", "X"},
	} {
		if _, err := svc.SelectAnswer(ctx, 100, 7, id, answers); err != nil {
			t.Fatalf("select %d failed: %v", id, err)
		}
	}

	update, err := svc.Submit(ctx, 100, 7, now.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if update.Result == nil || update.Result.Score != 100.0 {
		t.Fatalf("expected perfect score, got %+v", update.Result)
	}
	if update.AutoSubmitted {
		t.Fatal("manual submit must not be flagged as auto")
	}
	if len(recorder.results) != 1 {
		t.Fatalf("expected one persisted result, got %d", len(recorder.results))
	}
	if _, err := svc.Sessions.Load(ctx, 7, 100); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("session must be gone after submit, got %v", err)
	}
}

func TestSecondAttemptRejectedAtLimit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	recorder := &fakeRecorder{}
	svc := newTestAttemptService(fiveQuestionQuiz(), recorder, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.Submit(ctx, 100, 7, now.Add(time.Minute)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	_, err := svc.Start(ctx, 100, 7, now.Add(2*time.Minute))
	if !util.IsMaxAttempts(err) {
		t.Fatalf("expected max attempts error, got %v", err)
	}
	if err.Error() != "Maximum attempts (1) reached for this quiz" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestTimerZeroForcesSubmit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	recorder := &fakeRecorder{}
	svc := newTestAttemptService(fiveQuestionQuiz(), recorder, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	// 只答对 2/5
	if _, err := svc.SelectAnswer(ctx, 100, 7, 1, []string{"A"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := svc.SelectAnswer(ctx, 100, 7, 3, []string{"True"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	update, err := svc.SyncTime(ctx, 100, 7, 0, now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if update.Result == nil {
		t.Fatal("expected auto-submitted result on timer zero")
	}
	if update.Result.Score != 40.0 {
		t.Fatalf("expected 40.0, got %v", update.Result.Score)
	}
	if !update.AutoSubmitted || update.Trigger != TriggerTimer {
		t.Fatalf("expected timer trigger, got %+v", update)
	}
}

func TestSyncTimeOnlyDecreases(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.SyncTime(ctx, 100, 7, 500, now.Add(time.Minute)); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	// 客户端上报比服务端记录更大的值，必须被钳到已存的 500
	update, err := svc.SyncTime(ctx, 100, 7, 9999, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if update.Session.TimeRemaining > 500 {
		t.Fatalf("time must never increase, got %d", update.Session.TimeRemaining)
	}
}

func TestViolationThresholdForcesSubmit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for i := 1; i < model.ViolationThreshold; i++ {
		update, err := svc.ReportViolation(ctx, 100, 7, now)
		if err != nil {
			t.Fatalf("violation %d failed: %v", i, err)
		}
		if update.Result != nil {
			t.Fatalf("violation %d must not submit yet", i)
		}
	}

	update, err := svc.ReportViolation(ctx, 100, 7, now)
	if err != nil {
		t.Fatalf("final violation failed: %v", err)
	}
	if update.Result == nil || update.Trigger != TriggerViolation {
		t.Fatalf("violation threshold must force submission, got %+v", update)
	}
}

func TestReloadThresholdForcesSubmit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for i := 1; i < model.ReloadThreshold; i++ {
		update, err := svc.ReportReload(ctx, 100, 7, now)
		if err != nil {
			t.Fatalf("reload %d failed: %v", i, err)
		}
		if update.Result != nil {
			t.Fatalf("reload %d must not submit yet", i)
		}
	}

	update, err := svc.ReportReload(ctx, 100, 7, now)
	if err != nil {
		t.Fatalf("final reload failed: %v", err)
	}
	if update.Result == nil || update.Trigger != TriggerReload {
		t.Fatalf("reload threshold must force submission, got %+v", update)
	}
}

func TestNavigateBounds(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if _, err := svc.Navigate(ctx, 100, 7, -1); !errors.Is(err, util.ErrIndexOutOfRange) {
		t.Fatalf("expected out of range for -1, got %v", err)
	}
	if _, err := svc.Navigate(ctx, 100, 7, 5); !errors.Is(err, util.ErrIndexOutOfRange) {
		t.Fatalf("expected out of range for 5, got %v", err)
	}
	update, err := svc.Navigate(ctx, 100, 7, 4)
	if err != nil {
		t.Fatalf("navigate failed: %v", err)
	}
	if update.Session.CurrentQuestionIndex != 4 {
		t.Fatalf("expected index 4, got %d", update.Session.CurrentQuestionIndex)
	}
}

func TestNavigateForwardGating(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	cfg := &config.Config{}
	cfg.Attempt.RequireAnswerToAdvance = true
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, cfg)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if _, err := svc.Navigate(ctx, 100, 7, 1); !errors.Is(err, util.ErrAnswerRequired) {
		t.Fatalf("expected answer-required gate, got %v", err)
	}

	if _, err := svc.SelectAnswer(ctx, 100, 7, 1, []string{"A"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := svc.Navigate(ctx, 100, 7, 1); err != nil {
		t.Fatalf("forward after answering failed: %v", err)
	}

	// 向后跳不受门控限制
	if _, err := svc.Navigate(ctx, 100, 7, 0); err != nil {
		t.Fatalf("backward navigation failed: %v", err)
	}
}

func TestSelectAnswerRejectsForeignQuestion(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.SelectAnswer(ctx, 100, 7, 99, []string{"A"}); !util.IsValidation(err) {
		t.Fatalf("expected validation error for unknown question, got %v", err)
	}
}

func TestTerminalSessionRejectsMutation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestAttemptService(fiveQuestionQuiz(), &fakeRecorder{}, nil)

	if _, err := svc.Start(ctx, 100, 7, now); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.Submit(ctx, 100, 7, now); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// 会话已删除，再操作报 not found
	if _, err := svc.SelectAnswer(ctx, 100, 7, 1, []string{"A"}); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("expected session not found after submit, got %v", err)
	}
}
