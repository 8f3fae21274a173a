package postgres

import (
	"context"
	"fmt"

	"quizbank-service/internal/domain"

	"github.com/uptrace/bun"
)

// Seed writes a catalog into the catalog tables. Existing rows are left untouched.
func Seed(ctx context.Context, db *bun.DB, catalog domain.Catalog) error {
	subjects := make([]subjectRow, 0, len(catalog.Subjects))
	for _, s := range catalog.Subjects {
		subjects = append(subjects, subjectRow{
			ID: s.ID, Name: s.Name, DisplayName: s.DisplayName,
			Icon: s.Icon, Color: s.Color, Description: s.Description,
		})
	}
	banks := make([]questionBankRow, 0, len(catalog.Banks))
	for _, b := range catalog.Banks {
		banks = append(banks, questionBankRow{
			ID: b.ID, SubjectID: b.SubjectID, ClassLevel: b.ClassLevel, Title: b.Title,
			Description: b.Description, Difficulty: b.Difficulty, TimeLimit: b.TimeLimitMinutes,
			TotalQuestions: b.TotalQuestions, AvgScore: b.AvgScore,
		})
	}
	positions := make(map[string]int)
	questions := make([]questionRow, 0, len(catalog.Questions))
	for _, q := range catalog.Questions {
		if err := domain.ValidateQuestion(q); err != nil {
			return err
		}
		positions[q.QuestionBankID]++
		questions = append(questions, questionRow{
			ID: q.ID, QuestionBankID: q.QuestionBankID, Position: positions[q.QuestionBankID],
			Text: q.Text, Options: q.Options, CorrectAnswer: q.CorrectAnswer, Explanation: q.Explanation,
		})
	}

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(subjects) > 0 {
			if _, err := tx.NewInsert().Model(&subjects).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
				return fmt.Errorf("seed subjects: %w", err)
			}
		}
		if len(banks) > 0 {
			if _, err := tx.NewInsert().Model(&banks).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
				return fmt.Errorf("seed question banks: %w", err)
			}
		}
		// one statement per bank keeps the parameter count bounded
		for start := 0; start < len(questions); {
			end := start + 1
			for end < len(questions) && questions[end].QuestionBankID == questions[start].QuestionBankID {
				end++
			}
			batch := questions[start:end]
			if _, err := tx.NewInsert().Model(&batch).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
				return fmt.Errorf("seed questions: %w", err)
			}
			start = end
		}
		return nil
	})
}
