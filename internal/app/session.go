package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"quizbank-service/internal/clock"
	"quizbank-service/internal/domain"
)

// State is a step of the quiz session lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateActive     State = "active"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
)

const defaultRecordTimeout = 10 * time.Second

// Snapshot is the render-ready view of a session pushed to the presentation layer.
type Snapshot struct {
	SessionID            string              `json:"sessionId"`
	QuestionBank         domain.QuestionBank `json:"questionBank"`
	State                State               `json:"state"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	TotalQuestions       int                 `json:"totalQuestions"`
	Question             domain.QuestionView `json:"question"`
	Answers              map[string]int      `json:"answers"`
	TimeLimit            int                 `json:"timeLimit"`
	TimeRemaining        int                 `json:"timeRemaining"`
	Clock                string              `json:"clock"`
	LowTime              bool                `json:"lowTime"`
	Error                string              `json:"error,omitempty"`
	Result               *domain.Result      `json:"result,omitempty"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// SessionConfig holds what a session needs before it can start.
type SessionConfig struct {
	ID            string
	UserID        string
	Bank          domain.QuestionBank
	Questions     []domain.Question
	Recorder      AttemptRecorder
	Scheduler     clock.Scheduler
	RecordTimeout time.Duration
	Now           func() time.Time
}

// Session is one participant's transient progress through a question bank.
// Only one transition out of StateActive can succeed, so the countdown and an
// explicit submit never record twice.
type Session struct {
	id            string
	userID        string
	bank          domain.QuestionBank
	questions     []domain.Question
	positions     map[string]int
	recorder      AttemptRecorder
	scheduler     clock.Scheduler
	recordTimeout time.Duration
	now           func() time.Time

	mu          sync.Mutex
	state       State
	current     int
	answers     map[string]int
	timeLimit   int
	remaining   int
	stopTick    func()
	result      *domain.Result
	lastErr     error
	closed      bool
	subscribers map[chan Snapshot]struct{}
}

// NewSession builds an idle session. Banks without questions are refused.
func NewSession(cfg SessionConfig) (*Session, error) {
	if len(cfg.Questions) == 0 {
		return nil, domain.ErrEmptyBank
	}
	if cfg.Recorder == nil {
		return nil, fmt.Errorf("session %s: attempt recorder is required", cfg.ID)
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = clock.Real{}
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = defaultRecordTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	questions := make([]domain.Question, len(cfg.Questions))
	positions := make(map[string]int, len(cfg.Questions))
	for i, q := range cfg.Questions {
		q.Options = append([]string(nil), q.Options...)
		questions[i] = q
		positions[q.ID] = i
	}

	return &Session{
		id:            cfg.ID,
		userID:        cfg.UserID,
		bank:          cfg.Bank,
		questions:     questions,
		positions:     positions,
		recorder:      cfg.Recorder,
		scheduler:     cfg.Scheduler,
		recordTimeout: cfg.RecordTimeout,
		now:           cfg.Now,
		state:         StateIdle,
		answers:       make(map[string]int),
		subscribers:   make(map[chan Snapshot]struct{}),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start resets position, answers and countdown and begins ticking.
// It is a no-op unless the session is idle.
func (s *Session) Start(timeLimitSeconds int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || s.closed || timeLimitSeconds <= 0 {
		return s.snapshotLocked()
	}
	s.startLocked(timeLimitSeconds)
	return s.broadcastLocked()
}

func (s *Session) startLocked(timeLimitSeconds int) {
	s.timeLimit = timeLimitSeconds
	s.remaining = timeLimitSeconds
	s.current = 0
	s.answers = make(map[string]int)
	s.result = nil
	s.lastErr = nil
	s.state = StateActive
	s.stopTick = s.scheduler.Every(time.Second, s.Tick)
}

// Tick consumes one second of the countdown and submits when it runs out.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.state != StateActive || s.closed {
		s.mu.Unlock()
		return
	}
	if s.remaining > 0 {
		s.remaining--
	}
	expired := s.remaining == 0
	if !expired {
		s.broadcastLocked()
	}
	s.mu.Unlock()

	if !expired {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.recordTimeout)
	defer cancel()
	if _, err := s.submit(ctx); err != nil {
		log.Printf("session %s: submit on timeout failed: %v", s.id, err)
	}
}

// SelectAnswer records or overwrites the chosen option for a question.
// Selecting outside StateActive is ignored; unknown questions or options are errors.
func (s *Session) SelectAnswer(questionID string, option int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[questionID]
	if !ok {
		return s.snapshotLocked(), fmt.Errorf("%w: %s", domain.ErrUnknownQuestion, questionID)
	}
	if option < 0 || option >= len(s.questions[pos].Options) {
		return s.snapshotLocked(), fmt.Errorf("%w: %d", domain.ErrInvalidOption, option)
	}
	if s.state != StateActive || s.closed {
		return s.snapshotLocked(), nil
	}
	s.answers[questionID] = option
	return s.broadcastLocked(), nil
}

// Next moves to the following question; it stays put on the last one.
func (s *Session) Next() Snapshot {
	return s.move(1)
}

// Previous moves to the preceding question; it stays put on the first one.
func (s *Session) Previous() Snapshot {
	return s.move(-1)
}

func (s *Session) move(delta int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive || s.closed {
		return s.snapshotLocked()
	}
	next := s.current + delta
	if next < 0 || next >= len(s.questions) {
		return s.snapshotLocked()
	}
	s.current = next
	return s.broadcastLocked()
}

// Submit scores the session and records the attempt. Calls made while the
// session is submitting or completed are no-ops. A recorder failure returns the
// session to StateActive so the participant can retry.
func (s *Session) Submit(ctx context.Context) (Snapshot, error) {
	return s.submit(ctx)
}

func (s *Session) submit(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.state != StateActive || s.closed {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	s.state = StateSubmitting
	stop := s.stopTick
	s.stopTick = nil

	answers := domain.CopyAnswers(s.answers)
	spent := s.timeLimit - s.remaining
	if spent < 0 {
		spent = 0
	}
	input := domain.AttemptInput{
		UserID:           s.userID,
		QuestionBankID:   s.bank.ID,
		Score:            domain.Score(s.questions, answers),
		TotalQuestions:   len(s.questions),
		TimeSpentSeconds: spent,
		Answers:          answers,
	}
	s.broadcastLocked()
	s.mu.Unlock()

	if stop != nil {
		stop()
	}

	attempt, err := s.recorder.CreateAttempt(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateActive
		s.lastErr = err
		if s.remaining > 0 && !s.closed {
			s.stopTick = s.scheduler.Every(time.Second, s.Tick)
		}
		return s.broadcastLocked(), err
	}

	result := domain.NewResult(attempt, s.questions)
	s.result = &result
	s.lastErr = nil
	s.state = StateCompleted
	return s.broadcastLocked(), nil
}

// Retake starts a fresh run with the full time budget. It only applies to
// completed sessions; recorded attempts are left untouched.
func (s *Session) Retake() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted || s.closed {
		return s.snapshotLocked()
	}
	s.state = StateIdle
	s.startLocked(s.timeLimit)
	return s.broadcastLocked()
}

// Close stops the countdown and releases subscribers without recording anything.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot on every change, starting
// with the current one. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	initial := s.snapshotLocked()
	if s.closed {
		s.mu.Unlock()
		ch <- initial
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() Snapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// slow reader: replace the oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:            s.id,
		QuestionBank:         s.bank,
		State:                s.state,
		CurrentQuestionIndex: s.current,
		TotalQuestions:       len(s.questions),
		Question:             s.questions[s.current].View(),
		Answers:              domain.CopyAnswers(s.answers),
		TimeLimit:            s.timeLimit,
		TimeRemaining:        s.remaining,
		Clock:                domain.FormatClock(s.remaining),
		LowTime:              s.state == StateActive && domain.LowTime(s.remaining),
		Result:               s.result,
		UpdatedAt:            s.now(),
	}
	if s.lastErr != nil {
		snap.Error = "failed to submit, please retry"
	}
	return snap
}
