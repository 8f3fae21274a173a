package memory

import (
	"context"
	"fmt"

	"quizbank-service/internal/domain"
)

type bankKey struct {
	subjectID  string
	classLevel string
}

// CatalogStore is a read-only catalog indexed once at construction.
type CatalogStore struct {
	subjects        []domain.Subject
	subjectByID     map[string]domain.Subject
	bankByID        map[string]domain.QuestionBank
	banksByKey      map[bankKey][]domain.QuestionBank
	questionsByBank map[string][]domain.Question
}

// NewCatalogStore indexes the catalog and rejects dangling references or
// questions whose correct answer does not index their options.
func NewCatalogStore(catalog domain.Catalog) (*CatalogStore, error) {
	s := &CatalogStore{
		subjects:        make([]domain.Subject, 0, len(catalog.Subjects)),
		subjectByID:     make(map[string]domain.Subject, len(catalog.Subjects)),
		bankByID:        make(map[string]domain.QuestionBank, len(catalog.Banks)),
		banksByKey:      make(map[bankKey][]domain.QuestionBank),
		questionsByBank: make(map[string][]domain.Question),
	}

	for _, subject := range catalog.Subjects {
		if _, dup := s.subjectByID[subject.ID]; dup {
			return nil, fmt.Errorf("duplicate subject %q", subject.ID)
		}
		s.subjectByID[subject.ID] = subject
		s.subjects = append(s.subjects, subject)
	}

	for _, bank := range catalog.Banks {
		if _, ok := s.subjectByID[bank.SubjectID]; !ok {
			return nil, fmt.Errorf("bank %q: unknown subject %q", bank.ID, bank.SubjectID)
		}
		if bank.TimeLimitMinutes <= 0 {
			return nil, fmt.Errorf("bank %q: %w", bank.ID, domain.ErrInvalidTimeLimit)
		}
		if _, dup := s.bankByID[bank.ID]; dup {
			return nil, fmt.Errorf("duplicate question bank %q", bank.ID)
		}
		s.bankByID[bank.ID] = bank
		key := bankKey{subjectID: bank.SubjectID, classLevel: bank.ClassLevel}
		s.banksByKey[key] = append(s.banksByKey[key], bank)
	}

	seen := make(map[string]struct{}, len(catalog.Questions))
	for _, q := range catalog.Questions {
		if err := domain.ValidateQuestion(q); err != nil {
			return nil, err
		}
		if _, ok := s.bankByID[q.QuestionBankID]; !ok {
			return nil, fmt.Errorf("question %q: unknown bank %q", q.ID, q.QuestionBankID)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question %q", q.ID)
		}
		seen[q.ID] = struct{}{}
		s.questionsByBank[q.QuestionBankID] = append(s.questionsByBank[q.QuestionBankID], q)
	}

	return s, nil
}

func (s *CatalogStore) ListSubjects(_ context.Context) ([]domain.Subject, error) {
	return append([]domain.Subject{}, s.subjects...), nil
}

func (s *CatalogStore) GetSubject(_ context.Context, id string) (domain.Subject, error) {
	subject, ok := s.subjectByID[id]
	if !ok {
		return domain.Subject{}, domain.ErrSubjectNotFound
	}
	return subject, nil
}

func (s *CatalogStore) ListQuestionBanks(_ context.Context, subjectID, classLevel string) ([]domain.QuestionBank, error) {
	return append([]domain.QuestionBank{}, s.banksByKey[bankKey{subjectID: subjectID, classLevel: classLevel}]...), nil
}

func (s *CatalogStore) GetQuestionBank(_ context.Context, id string) (domain.QuestionBank, error) {
	bank, ok := s.bankByID[id]
	if !ok {
		return domain.QuestionBank{}, domain.ErrQuestionBankNotFound
	}
	return bank, nil
}

func (s *CatalogStore) ListQuestions(_ context.Context, questionBankID string) ([]domain.Question, error) {
	return copyQuestions(s.questionsByBank[questionBankID]), nil
}

func copyQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
