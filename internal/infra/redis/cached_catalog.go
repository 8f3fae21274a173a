package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"quizbank-service/internal/app"
	"quizbank-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedCatalog caches question lists in Redis and falls back to the wrapped
// repository on a miss. Lists are stored as JSON under bank:{bankID}:questions.
type CachedCatalog struct {
	app.CatalogRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCachedCatalog(client *redis.Client, inner app.CatalogRepository, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		CatalogRepository: inner,
		client:            client,
		ttl:               ttl,
		rnd:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CachedCatalog) ListQuestions(ctx context.Context, questionBankID string) ([]domain.Question, error) {
	if questions, ok := c.lookup(ctx, questionBankID); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(questionBankID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.lookup(ctx, questionBankID); ok {
			return questions, nil
		}

		questions, err := c.CatalogRepository.ListQuestions(ctx, questionBankID)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, c.questionsKey(questionBankID), raw, c.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache questions for %s: %v", questionBankID, err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CachedCatalog) lookup(ctx context.Context, questionBankID string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, c.questionsKey(questionBankID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached questions for %s: %v", questionBankID, err)
		}
		return nil, false
	}
	questions := []domain.Question{}
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *CachedCatalog) questionsKey(questionBankID string) string {
	return "bank:" + questionBankID + ":questions"
}

func (c *CachedCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
