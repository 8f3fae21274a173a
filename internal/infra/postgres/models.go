package postgres

import (
	"time"

	"quizbank-service/internal/domain"

	"github.com/uptrace/bun"
)

type subjectRow struct {
	bun.BaseModel `bun:"table:subjects"`

	ID          string `bun:"id,pk"`
	Name        string `bun:"name"`
	DisplayName string `bun:"display_name"`
	Icon        string `bun:"icon"`
	Color       string `bun:"color"`
	Description string `bun:"description"`
}

type questionBankRow struct {
	bun.BaseModel `bun:"table:question_banks"`

	ID             string `bun:"id,pk"`
	SubjectID      string `bun:"subject_id"`
	ClassLevel     string `bun:"class_level"`
	Title          string `bun:"title"`
	Description    string `bun:"description"`
	Difficulty     string `bun:"difficulty"`
	TimeLimit      int    `bun:"time_limit"`
	TotalQuestions int    `bun:"total_questions"`
	AvgScore       int    `bun:"avg_score"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID             string   `bun:"id,pk"`
	QuestionBankID string   `bun:"question_bank_id"`
	Position       int      `bun:"position"`
	Text           string   `bun:"text"`
	Options        []string `bun:"options,type:jsonb"`
	CorrectAnswer  int      `bun:"correct_answer"`
	Explanation    string   `bun:"explanation"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts"`

	ID             string         `bun:"id,pk"`
	UserID         string         `bun:"user_id,nullzero"`
	QuestionBankID string         `bun:"question_bank_id"`
	Score          int            `bun:"score"`
	TotalQuestions int            `bun:"total_questions"`
	TimeSpent      int            `bun:"time_spent"`
	Answers        map[string]int `bun:"answers,type:jsonb"`
	CompletedAt    time.Time      `bun:"completed_at"`
}

func (r attemptRow) toDomain() domain.QuizAttempt {
	return domain.QuizAttempt{
		ID:               r.ID,
		UserID:           r.UserID,
		QuestionBankID:   r.QuestionBankID,
		Score:            r.Score,
		TotalQuestions:   r.TotalQuestions,
		TimeSpentSeconds: r.TimeSpent,
		Answers:          domain.CopyAnswers(r.Answers),
		CompletedAt:      r.CompletedAt.UTC(),
	}
}
