package postgres

import (
	"context"
	"fmt"
	"time"

	"quizbank-service/internal/domain"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AttemptRecorder stores quiz attempts in the quiz_attempts table.
type AttemptRecorder struct {
	db  *bun.DB
	now func() time.Time
}

func NewAttemptRecorder(db *bun.DB) *AttemptRecorder {
	return &AttemptRecorder{db: db, now: time.Now}
}

func (r *AttemptRecorder) CreateAttempt(ctx context.Context, in domain.AttemptInput) (domain.QuizAttempt, error) {
	if err := in.Validate(); err != nil {
		return domain.QuizAttempt{}, err
	}
	attempt := domain.NewAttempt(uuid.NewString(), in, r.now().UTC().Truncate(time.Microsecond))
	row := attemptRow{
		ID:             attempt.ID,
		UserID:         attempt.UserID,
		QuestionBankID: attempt.QuestionBankID,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		TimeSpent:      attempt.TimeSpentSeconds,
		Answers:        attempt.Answers,
		CompletedAt:    attempt.CompletedAt,
	}
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	return attempt, nil
}

func (r *AttemptRecorder) ListAttemptsByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	var rows []attemptRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	attempts := make([]domain.QuizAttempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, row.toDomain())
	}
	return attempts, nil
}
