package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizbank-service/internal/domain"

	"github.com/google/uuid"
)

// AttemptStore is a create-only, in-memory attempt recorder.
type AttemptStore struct {
	now   func() time.Time
	newID func() string

	mu       sync.RWMutex
	attempts map[string]domain.QuizAttempt
}

func NewAttemptStore() *AttemptStore {
	return NewAttemptStoreWithClock(time.Now)
}

// NewAttemptStoreWithClock allows deterministic completion times in tests.
func NewAttemptStoreWithClock(now func() time.Time) *AttemptStore {
	return &AttemptStore{
		now:      now,
		newID:    uuid.NewString,
		attempts: make(map[string]domain.QuizAttempt),
	}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, in domain.AttemptInput) (domain.QuizAttempt, error) {
	if err := in.Validate(); err != nil {
		return domain.QuizAttempt{}, err
	}
	attempt := domain.NewAttempt(s.newID(), in, s.now().UTC())

	s.mu.Lock()
	s.attempts[attempt.ID] = attempt
	s.mu.Unlock()

	return withCopiedAnswers(attempt), nil
}

// GetAttempt returns a stored attempt by id.
func (s *AttemptStore) GetAttempt(_ context.Context, id string) (domain.QuizAttempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return domain.QuizAttempt{}, false
	}
	return withCopiedAnswers(attempt), true
}

func (s *AttemptStore) ListAttemptsByUser(_ context.Context, userID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	out := make([]domain.QuizAttempt, 0)
	for _, attempt := range s.attempts {
		if attempt.UserID == userID {
			out = append(out, withCopiedAnswers(attempt))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.After(out[j].CompletedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func withCopiedAnswers(attempt domain.QuizAttempt) domain.QuizAttempt {
	attempt.Answers = domain.CopyAnswers(attempt.Answers)
	return attempt
}
