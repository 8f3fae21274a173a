package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"quizbank-service/internal/app"
	"quizbank-service/internal/clock"
	"quizbank-service/internal/domain"
	"quizbank-service/internal/infra/memory"
)

func TestSessionEndToEndScoring(t *testing.T) {
	ticker := clock.NewManual()
	recorder := &countingRecorder{AttemptRecorder: memory.NewAttemptStore()}
	session := newTestSession(t, recorder, ticker)

	snap := session.Start(sampleBank().TimeLimitSeconds())
	if snap.State != app.StateActive || snap.TimeRemaining != 1200 || snap.Clock != "20:00" {
		t.Fatalf("unexpected start snapshot %+v", snap)
	}

	answerAll(t, session, map[string]int{"q1": 1, "q2": 0, "q3": 2})
	ticker.Advance(500)

	snap, err := session.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.State != app.StateCompleted || snap.Result == nil {
		t.Fatalf("expected completed result, got %+v", snap)
	}
	attempt := snap.Result.Attempt
	if attempt.Score != 3 || attempt.TotalQuestions != 3 || attempt.TimeSpentSeconds != 500 {
		t.Fatalf("unexpected attempt %+v", attempt)
	}
	if snap.Result.Percentage != 100 || snap.Result.Message != "Outstanding!" {
		t.Fatalf("unexpected result %+v", snap.Result)
	}
	if ticker.Active() != 0 {
		t.Fatalf("expected countdown stopped after submit")
	}
}

func TestSessionNavigationClamps(t *testing.T) {
	session := newTestSession(t, memory.NewAttemptStore(), clock.NewManual())
	session.Start(60)

	if snap := session.Previous(); snap.CurrentQuestionIndex != 0 {
		t.Fatalf("expected to stay on first question, got %d", snap.CurrentQuestionIndex)
	}
	for i := 0; i < 5; i++ {
		session.Next()
	}
	snap := session.Snapshot()
	if snap.CurrentQuestionIndex != 2 || snap.Question.ID != "q3" {
		t.Fatalf("expected to stop on last question, got %d", snap.CurrentQuestionIndex)
	}
	for i := 0; i < 7; i++ {
		if snap := session.Previous(); snap.CurrentQuestionIndex < 0 || snap.CurrentQuestionIndex > 2 {
			t.Fatalf("index out of range: %d", snap.CurrentQuestionIndex)
		}
	}
	if snap := session.Snapshot(); snap.CurrentQuestionIndex != 0 {
		t.Fatalf("expected first question, got %d", snap.CurrentQuestionIndex)
	}
}

func TestSessionHidesCorrectAnswerWhileActive(t *testing.T) {
	session := newTestSession(t, memory.NewAttemptStore(), clock.NewManual())
	snap := session.Start(60)
	if snap.Question.ID != "q1" || len(snap.Question.Options) != 3 {
		t.Fatalf("unexpected question view %+v", snap.Question)
	}
	if snap.Result != nil {
		t.Fatalf("result must not be exposed before submit")
	}
}

func TestSessionSubmitTwiceRecordsOnce(t *testing.T) {
	recorder := &countingRecorder{AttemptRecorder: memory.NewAttemptStore()}
	session := newTestSession(t, recorder, clock.NewManual())
	session.Start(60)

	if _, err := session.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	snap, err := session.Submit(context.Background())
	if err != nil {
		t.Fatalf("second submit should be a no-op, got %v", err)
	}
	if snap.State != app.StateCompleted {
		t.Fatalf("expected completed, got %s", snap.State)
	}
	if calls := recorder.calls.Load(); calls != 1 {
		t.Fatalf("expected one recorded attempt, got %d", calls)
	}
}

func TestSessionConcurrentSubmitsRecordOnce(t *testing.T) {
	release := make(chan struct{})
	recorder := &countingRecorder{AttemptRecorder: memory.NewAttemptStore(), block: release}
	ticker := clock.NewManual()
	session := newTestSession(t, recorder, ticker)
	session.Start(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker.Advance(1) // countdown reaches zero and submits
	}()
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = session.Submit(context.Background())
		}()
	}
	close(release)
	wg.Wait()

	if calls := recorder.calls.Load(); calls != 1 {
		t.Fatalf("expected exactly one recorded attempt, got %d", calls)
	}
	if snap := session.Snapshot(); snap.State != app.StateCompleted {
		t.Fatalf("expected completed, got %s", snap.State)
	}
}

func TestSessionTimeoutSubmitsAutomatically(t *testing.T) {
	ticker := clock.NewManual()
	recorder := &countingRecorder{AttemptRecorder: memory.NewAttemptStore()}
	session := newTestSession(t, recorder, ticker)
	session.Start(30)

	if _, err := session.SelectAnswer("q2", 0); err != nil {
		t.Fatalf("select: %v", err)
	}
	ticker.Advance(29)
	if snap := session.Snapshot(); snap.State != app.StateActive || snap.TimeRemaining != 1 {
		t.Fatalf("expected one second left, got %+v", snap)
	}

	ticker.Advance(10)
	snap := session.Snapshot()
	if snap.State != app.StateCompleted {
		t.Fatalf("expected completed after timeout, got %s", snap.State)
	}
	if snap.Result.Attempt.TimeSpentSeconds != 30 || snap.Result.Score != 1 {
		t.Fatalf("unexpected attempt after timeout %+v", snap.Result.Attempt)
	}
	if snap.TimeRemaining != 0 {
		t.Fatalf("timer must not go below zero, got %d", snap.TimeRemaining)
	}
	if calls := recorder.calls.Load(); calls != 1 {
		t.Fatalf("expected single submission, got %d", calls)
	}
}

func TestSessionAnswerBeforeExpiryIsScored(t *testing.T) {
	ticker := clock.NewManual()
	session := newTestSession(t, memory.NewAttemptStore(), ticker)
	session.Start(2)

	ticker.Advance(1)
	if _, err := session.SelectAnswer("q1", 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	ticker.Advance(1)

	snap := session.Snapshot()
	if snap.Result == nil || snap.Result.Score != 1 {
		t.Fatalf("expected last answer to be scored, got %+v", snap.Result)
	}
}

func TestSessionSelectAnswerRules(t *testing.T) {
	session := newTestSession(t, memory.NewAttemptStore(), clock.NewManual())

	if snap, err := session.SelectAnswer("q1", 0); err != nil || len(snap.Answers) != 0 {
		t.Fatalf("selecting while idle should be ignored, got %v %v", snap.Answers, err)
	}

	session.Start(60)
	if _, err := session.SelectAnswer("nope", 0); !errors.Is(err, domain.ErrUnknownQuestion) {
		t.Fatalf("expected unknown question error, got %v", err)
	}
	if _, err := session.SelectAnswer("q1", 3); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("expected invalid option error, got %v", err)
	}

	_, _ = session.SelectAnswer("q1", 0)
	snap, _ := session.SelectAnswer("q1", 2)
	if snap.Answers["q1"] != 2 || snap.CurrentQuestionIndex != 0 {
		t.Fatalf("expected overwrite without moving, got %+v", snap)
	}

	_, _ = session.Submit(context.Background())
	snap, err := session.SelectAnswer("q2", 1)
	if err != nil {
		t.Fatalf("select after completion: %v", err)
	}
	if _, ok := snap.Answers["q2"]; ok {
		t.Fatalf("answers must not change after completion")
	}
}

func TestSessionRecorderFailureAllowsRetry(t *testing.T) {
	ticker := clock.NewManual()
	recorder := &countingRecorder{AttemptRecorder: memory.NewAttemptStore()}
	recorder.fail.Store(true)
	session := newTestSession(t, recorder, ticker)
	session.Start(60)
	ticker.Advance(10)

	snap, err := session.Submit(context.Background())
	if err == nil {
		t.Fatalf("expected submit error")
	}
	if snap.State != app.StateActive || snap.Error == "" {
		t.Fatalf("expected active session with error, got %+v", snap)
	}

	ticker.Advance(5)
	if snap := session.Snapshot(); snap.TimeRemaining != 45 {
		t.Fatalf("expected countdown to resume, got %d", snap.TimeRemaining)
	}

	recorder.fail.Store(false)
	snap, err = session.Submit(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if snap.State != app.StateCompleted || snap.Error != "" || snap.Result.Attempt.TimeSpentSeconds != 15 {
		t.Fatalf("unexpected snapshot after retry %+v", snap)
	}
}

func TestSessionFailedTimeoutDoesNotRestartCountdown(t *testing.T) {
	ticker := clock.NewManual()
	recorder := &countingRecorder{AttemptRecorder: memory.NewAttemptStore()}
	recorder.fail.Store(true)
	session := newTestSession(t, recorder, ticker)
	session.Start(3)

	ticker.Advance(3)
	snap := session.Snapshot()
	if snap.State != app.StateActive || snap.TimeRemaining != 0 {
		t.Fatalf("expected active session at zero after failed submit, got %+v", snap)
	}
	if ticker.Active() != 0 {
		t.Fatalf("countdown must not resume past zero")
	}

	recorder.fail.Store(false)
	snap, err := session.Submit(context.Background())
	if err != nil || snap.State != app.StateCompleted {
		t.Fatalf("expected retry to complete, got %v %s", err, snap.State)
	}
	if snap.Result.Attempt.TimeSpentSeconds != 3 {
		t.Fatalf("expected 3 seconds spent, got %d", snap.Result.Attempt.TimeSpentSeconds)
	}
}

func TestSessionRetakeResetsState(t *testing.T) {
	ticker := clock.NewManual()
	store := memory.NewAttemptStore()
	session := newTestSession(t, store, ticker)
	session.Start(1200)

	answerAll(t, session, map[string]int{"q1": 1, "q2": 1})
	session.Next()
	ticker.Advance(100)
	done, err := session.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	first := done.Result.Attempt

	if snap := session.Retake(); snap.State != app.StateActive {
		t.Fatalf("expected active after retake, got %s", snap.State)
	}
	snap := session.Snapshot()
	if len(snap.Answers) != 0 || snap.TimeRemaining != 1200 || snap.CurrentQuestionIndex != 0 || snap.Result != nil {
		t.Fatalf("expected fresh state after retake, got %+v", snap)
	}

	_, _ = session.SelectAnswer("q3", 2)
	ticker.Advance(10)
	if _, err := session.Submit(context.Background()); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	stored, ok := store.GetAttempt(context.Background(), first.ID)
	if !ok {
		t.Fatalf("expected first attempt stored")
	}
	if stored.Score != 1 || stored.TimeSpentSeconds != 100 || len(stored.Answers) != 2 {
		t.Fatalf("first attempt changed: %+v", stored)
	}
}

func TestSessionRetakeOnlyFromCompleted(t *testing.T) {
	ticker := clock.NewManual()
	session := newTestSession(t, memory.NewAttemptStore(), ticker)
	session.Start(60)
	ticker.Advance(5)

	if snap := session.Retake(); snap.TimeRemaining != 55 {
		t.Fatalf("retake while active should be ignored, got %+v", snap)
	}
	if snap := session.Start(60); snap.TimeRemaining != 55 {
		t.Fatalf("start while active should be ignored, got %+v", snap)
	}
	if ticker.Active() != 1 {
		t.Fatalf("expected a single countdown, got %d", ticker.Active())
	}
}

func TestSessionEmptyBankRefused(t *testing.T) {
	_, err := app.NewSession(app.SessionConfig{
		ID:       "s",
		Bank:     sampleBank(),
		Recorder: memory.NewAttemptStore(),
	})
	if !errors.Is(err, domain.ErrEmptyBank) {
		t.Fatalf("expected empty bank error, got %v", err)
	}
}

func TestSessionSubscribeReceivesTicks(t *testing.T) {
	ticker := clock.NewManual()
	session := newTestSession(t, memory.NewAttemptStore(), ticker)
	session.Start(10)

	ch, cancel := session.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.TimeRemaining != 10 {
		t.Fatalf("expected initial snapshot, got %+v", initial)
	}
	ticker.Advance(1)
	update := <-ch
	if update.TimeRemaining != 9 {
		t.Fatalf("expected tick update, got %d", update.TimeRemaining)
	}
}

func TestSessionCloseDiscardsWithoutRecording(t *testing.T) {
	ticker := clock.NewManual()
	recorder := &countingRecorder{AttemptRecorder: memory.NewAttemptStore()}
	session := newTestSession(t, recorder, ticker)
	session.Start(5)

	ch, _ := session.Subscribe()
	<-ch
	session.Close()

	if _, ok := <-ch; ok {
		t.Fatalf("expected subscriber channel closed")
	}
	ticker.Advance(10)
	if _, err := session.Submit(context.Background()); err != nil {
		t.Fatalf("submit after close: %v", err)
	}
	if calls := recorder.calls.Load(); calls != 0 {
		t.Fatalf("expected nothing recorded, got %d", calls)
	}
}

type countingRecorder struct {
	app.AttemptRecorder
	calls atomic.Int32
	fail  atomic.Bool
	block chan struct{}
}

func (r *countingRecorder) CreateAttempt(ctx context.Context, in domain.AttemptInput) (domain.QuizAttempt, error) {
	r.calls.Add(1)
	if r.block != nil {
		<-r.block
	}
	if r.fail.Load() {
		return domain.QuizAttempt{}, errors.New("recorder unavailable")
	}
	return r.AttemptRecorder.CreateAttempt(ctx, in)
}

func newTestSession(t *testing.T, recorder app.AttemptRecorder, scheduler clock.Scheduler) *app.Session {
	t.Helper()
	session, err := app.NewSession(app.SessionConfig{
		ID:        "session-1",
		UserID:    "u1",
		Bank:      sampleBank(),
		Questions: sampleQuestions(),
		Recorder:  recorder,
		Scheduler: scheduler,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func answerAll(t *testing.T, session *app.Session, answers map[string]int) {
	t.Helper()
	for id, option := range answers {
		if _, err := session.SelectAnswer(id, option); err != nil {
			t.Fatalf("select %s: %v", id, err)
		}
	}
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID:               "math-class-1-basic",
		SubjectID:        "math",
		ClassLevel:       "class-1",
		Title:            "Basic Concepts",
		Difficulty:       "Beginner",
		TimeLimitMinutes: 20,
		TotalQuestions:   3,
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", QuestionBankID: "math-class-1-basic", Text: "What is 15 + 27?", Options: []string{"41", "42", "43"}, CorrectAnswer: 1},
		{ID: "q2", QuestionBankID: "math-class-1-basic", Text: "What is 2 x 3?", Options: []string{"6", "5", "8"}, CorrectAnswer: 0},
		{ID: "q3", QuestionBankID: "math-class-1-basic", Text: "What is 144 / 12?", Options: []string{"11", "13", "12"}, CorrectAnswer: 2},
	}
}
