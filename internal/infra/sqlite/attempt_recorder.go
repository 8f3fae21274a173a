package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"quizbank-service/internal/domain"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const createAttemptsSQL = `CREATE TABLE IF NOT EXISTS quiz_attempts (
    id               TEXT PRIMARY KEY,
    user_id          TEXT,
    question_bank_id TEXT NOT NULL,
    score            INTEGER NOT NULL,
    total_questions  INTEGER NOT NULL,
    time_spent       INTEGER NOT NULL,
    answers          TEXT NOT NULL,
    completed_at     INTEGER NOT NULL
)`

// AttemptRecorder keeps attempts in a single-file SQLite database. Used when
// Postgres is not configured but attempts should survive a restart.
type AttemptRecorder struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*AttemptRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serialises writers anyway
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, createAttemptsSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create quiz_attempts: %w", err)
	}
	return &AttemptRecorder{db: db, now: time.Now}, nil
}

func (r *AttemptRecorder) Close() error {
	return r.db.Close()
}

func (r *AttemptRecorder) CreateAttempt(ctx context.Context, in domain.AttemptInput) (domain.QuizAttempt, error) {
	if err := in.Validate(); err != nil {
		return domain.QuizAttempt{}, err
	}
	attempt := domain.NewAttempt(uuid.NewString(), in, r.now().UTC())
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("marshal answers: %w", err)
	}
	var userID sql.NullString
	if attempt.UserID != "" {
		userID = sql.NullString{String: attempt.UserID, Valid: true}
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO quiz_attempts (id, user_id, question_bank_id, score, total_questions, time_spent, answers, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID, userID, attempt.QuestionBankID, attempt.Score, attempt.TotalQuestions,
		attempt.TimeSpentSeconds, string(answers), attempt.CompletedAt.UnixNano())
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("insert attempt: %w", err)
	}
	return attempt, nil
}

func (r *AttemptRecorder) ListAttemptsByUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, question_bank_id, score, total_questions, time_spent, answers, completed_at
		   FROM quiz_attempts WHERE user_id = ? ORDER BY completed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	attempts := []domain.QuizAttempt{}
	for rows.Next() {
		var (
			a         domain.QuizAttempt
			user      sql.NullString
			answers   string
			completed int64
		)
		if err := rows.Scan(&a.ID, &user, &a.QuestionBankID, &a.Score, &a.TotalQuestions,
			&a.TimeSpentSeconds, &answers, &completed); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.UserID = user.String
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers for %s: %w", a.ID, err)
		}
		a.CompletedAt = time.Unix(0, completed).UTC()
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
