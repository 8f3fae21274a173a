package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizbank-service/internal/app"
	"quizbank-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// CachedCatalog caches question lists with TTL to avoid repeated backing-store hits.
// Other lookups pass through to the wrapped repository.
type CachedCatalog struct {
	app.CatalogRepository

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewCachedCatalog(inner app.CatalogRepository, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		CatalogRepository: inner,
		ttl:               ttl,
		clock:             time.Now,
		rnd:               rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:             make(map[string]cachedQuestions),
	}
}

func (c *CachedCatalog) ListQuestions(ctx context.Context, questionBankID string) ([]domain.Question, error) {
	if questions, ok := c.lookup(questionBankID); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(questionBankID, func() (interface{}, error) {
		if questions, ok := c.lookup(questionBankID); ok {
			return questions, nil
		}

		questions, err := c.CatalogRepository.ListQuestions(ctx, questionBankID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[questionBankID] = cachedQuestions{
			questions: copyQuestions(questions),
			expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

func (c *CachedCatalog) lookup(questionBankID string) ([]domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[questionBankID]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return copyQuestions(entry.questions), true
}

func (c *CachedCatalog) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
