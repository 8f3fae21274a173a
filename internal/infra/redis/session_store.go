package redis

import (
	"context"
	"sync"
	"time"

	"quizbank-service/internal/app"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions own a countdown goroutine, so the live objects stay in a local map.
//   - Redis holds a liveness marker per session (value: question bank id) so other
//     instances and operators can see which quizzes are in progress.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Save(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), session.Snapshot().QuestionBank.ID, s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
