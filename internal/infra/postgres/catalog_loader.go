package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quizbank-service/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const bankColumns = `id, subject_id, class_level, title, description, difficulty, time_limit, total_questions, avg_score`

// CatalogLoader reads the catalog tables through a pgx pool.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, name, display_name, icon, color, description FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := []domain.Subject{}
	for rows.Next() {
		var s domain.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.DisplayName, &s.Icon, &s.Color, &s.Description); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (l *CatalogLoader) GetSubject(ctx context.Context, id string) (domain.Subject, error) {
	var s domain.Subject
	err := l.pool.QueryRow(ctx, `SELECT id, name, display_name, icon, color, description FROM subjects WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.DisplayName, &s.Icon, &s.Color, &s.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Subject{}, domain.ErrSubjectNotFound
	}
	if err != nil {
		return domain.Subject{}, fmt.Errorf("get subject: %w", err)
	}
	return s, nil
}

func (l *CatalogLoader) ListQuestionBanks(ctx context.Context, subjectID, classLevel string) ([]domain.QuestionBank, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT `+bankColumns+` FROM question_banks WHERE subject_id=$1 AND class_level=$2 ORDER BY id`,
		subjectID, classLevel)
	if err != nil {
		return nil, fmt.Errorf("list question banks: %w", err)
	}
	defer rows.Close()

	banks := []domain.QuestionBank{}
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

func (l *CatalogLoader) GetQuestionBank(ctx context.Context, id string) (domain.QuestionBank, error) {
	b, err := scanBank(l.pool.QueryRow(ctx, `SELECT `+bankColumns+` FROM question_banks WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionBank{}, domain.ErrQuestionBankNotFound
	}
	return b, err
}

func (l *CatalogLoader) ListQuestions(ctx context.Context, questionBankID string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, question_bank_id, text, options, correct_answer, explanation
		   FROM questions WHERE question_bank_id=$1 ORDER BY position`, questionBankID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.QuestionBankID, &q.Text, &raw, &q.CorrectAnswer, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options for %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func scanBank(row pgx.Row) (domain.QuestionBank, error) {
	var b domain.QuestionBank
	err := row.Scan(&b.ID, &b.SubjectID, &b.ClassLevel, &b.Title, &b.Description, &b.Difficulty,
		&b.TimeLimitMinutes, &b.TotalQuestions, &b.AvgScore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return b, err
		}
		return b, fmt.Errorf("scan question bank: %w", err)
	}
	return b, nil
}
