package app

import (
	"context"
	"fmt"
	"time"

	"quizbank-service/internal/clock"
	"quizbank-service/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository abstracts where live sessions are registered (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	catalog       CatalogRepository
	attempts      AttemptRecorder
	sessions      SessionRepository
	scheduler     clock.Scheduler
	recordTimeout time.Duration
}

func NewQuizService(catalog CatalogRepository, attempts AttemptRecorder, sessions SessionRepository, scheduler clock.Scheduler, recordTimeout time.Duration) *QuizService {
	return &QuizService{
		catalog:       catalog,
		attempts:      attempts,
		sessions:      sessions,
		scheduler:     scheduler,
		recordTimeout: recordTimeout,
	}
}

// StartQuiz loads a bank and its questions and starts a countdown session.
// Banks without questions return domain.ErrEmptyBank and no session is created.
func (s *QuizService) StartQuiz(ctx context.Context, bankID, userID string) (Snapshot, error) {
	bank, err := s.catalog.GetQuestionBank(ctx, bankID)
	if err != nil {
		return Snapshot{}, err
	}
	if bank.TimeLimitSeconds() <= 0 {
		return Snapshot{}, fmt.Errorf("%w: %s", domain.ErrInvalidTimeLimit, bank.ID)
	}
	questions, err := s.catalog.ListQuestions(ctx, bankID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load questions: %w", err)
	}

	session, err := NewSession(SessionConfig{
		ID:            uuid.NewString(),
		UserID:        userID,
		Bank:          bank,
		Questions:     questions,
		Recorder:      s.attempts,
		Scheduler:     s.scheduler,
		RecordTimeout: s.recordTimeout,
	})
	if err != nil {
		return Snapshot{}, err
	}

	snap := session.Start(bank.TimeLimitSeconds())
	s.sessions.Save(session)
	return snap, nil
}

func (s *QuizService) SelectAnswer(sessionID, questionID string, option int) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.SelectAnswer(questionID, option)
}

func (s *QuizService) Next(sessionID string) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Next(), nil
}

func (s *QuizService) Previous(sessionID string) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Previous(), nil
}

func (s *QuizService) Submit(ctx context.Context, sessionID string) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Submit(ctx)
}

func (s *QuizService) Retake(sessionID string) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Retake(), nil
}

func (s *QuizService) Snapshot(sessionID string) (Snapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// Subscribe returns a channel that receives snapshots for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan Snapshot, func(), error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Abandon discards a session without recording an attempt.
func (s *QuizService) Abandon(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

func (s *QuizService) session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
