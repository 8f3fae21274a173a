package app

import (
	"context"

	"quizbank-service/internal/domain"
)

// CatalogRepository answers read-only lookups over subjects, banks and questions.
// Listings return an empty slice, not an error, when nothing matches.
type CatalogRepository interface {
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	GetSubject(ctx context.Context, id string) (domain.Subject, error)
	ListQuestionBanks(ctx context.Context, subjectID, classLevel string) ([]domain.QuestionBank, error)
	GetQuestionBank(ctx context.Context, id string) (domain.QuestionBank, error)
	ListQuestions(ctx context.Context, questionBankID string) ([]domain.Question, error)
}

// CatalogService exposes the catalog query surface.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	return s.repo.ListSubjects(ctx)
}

func (s *CatalogService) GetSubject(ctx context.Context, id string) (domain.Subject, error) {
	return s.repo.GetSubject(ctx, id)
}

// ListQuestionBanks requires both filters.
func (s *CatalogService) ListQuestionBanks(ctx context.Context, subjectID, classLevel string) ([]domain.QuestionBank, error) {
	if subjectID == "" || classLevel == "" {
		return nil, domain.ErrMissingFilter
	}
	return s.repo.ListQuestionBanks(ctx, subjectID, classLevel)
}

func (s *CatalogService) GetQuestionBank(ctx context.Context, id string) (domain.QuestionBank, error) {
	return s.repo.GetQuestionBank(ctx, id)
}

func (s *CatalogService) ListQuestions(ctx context.Context, questionBankID string) ([]domain.Question, error) {
	return s.repo.ListQuestions(ctx, questionBankID)
}
