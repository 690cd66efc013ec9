package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/wichananm65/easi-backend/internal/product"
)

// SessionStore keeps checkout sessions between requests. Load returns a
// fresh session when the user has none.
type SessionStore interface {
	Load(ctx context.Context, userID int) (Session, error)
	Save(ctx context.Context, userID int, s Session) error
	Delete(ctx context.Context, userID int) error
}

type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[int]Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[int]Session)}
}

func (m *InMemoryStore) Load(_ context.Context, userID int) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return NewSession(), nil
	}
	return s, nil
}

func (m *InMemoryStore) Save(_ context.Context, userID int, s Session) error {
	m.mu.Lock()
	m.sessions[userID] = s
	m.mu.Unlock()
	return nil
}

func (m *InMemoryStore) Delete(_ context.Context, userID int) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// CacheStore keeps sessions as JSON in the shared cache (Redis in
// production) so they survive restarts and expire when abandoned.
type CacheStore struct {
	cache product.Cache
	ttl   time.Duration
}

func NewCacheStore(cache product.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: cache, ttl: ttl}
}

func sessionKey(userID int) string {
	return "checkout:session:" + strconv.Itoa(userID)
}

func (c *CacheStore) Load(ctx context.Context, userID int) (Session, error) {
	b, err := c.cache.Get(ctx, sessionKey(userID))
	if errors.Is(err, product.ErrCacheMiss) {
		return NewSession(), nil
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (c *CacheStore) Save(ctx context.Context, userID int, s Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, sessionKey(userID), b, c.ttl)
}

func (c *CacheStore) Delete(ctx context.Context, userID int) error {
	return c.cache.Del(ctx, sessionKey(userID))
}
