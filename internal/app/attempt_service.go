package app

import (
	"context"

	"quizbank-service/internal/domain"
)

// AttemptRecorder persists finished attempts. Implementations validate the
// input, assign the id and completion time, and never update a stored attempt.
type AttemptRecorder interface {
	CreateAttempt(ctx context.Context, in domain.AttemptInput) (domain.QuizAttempt, error)
	ListAttemptsByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error)
}

// AttemptService is the command surface for recording attempts directly.
type AttemptService struct {
	recorder AttemptRecorder
}

func NewAttemptService(recorder AttemptRecorder) *AttemptService {
	return &AttemptService{recorder: recorder}
}

func (s *AttemptService) Record(ctx context.Context, in domain.AttemptInput) (domain.QuizAttempt, error) {
	return s.recorder.CreateAttempt(ctx, in)
}

func (s *AttemptService) ListByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	if userID == "" {
		return []domain.QuizAttempt{}, nil
	}
	return s.recorder.ListAttemptsByUser(ctx, userID)
}
