package chess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/Cheese-Coach-bot/internal/domain"
)

var ErrSessionConflict = errors.New("chess session modified concurrently")

// Session is the persisted state of one coaching game.
type Session struct {
	ID           string             `json:"id"`
	Moves        []string           `json:"moves"`
	StartedAt    time.Time          `json:"started_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	LastDecision *domain.Decision   `json:"last_decision,omitempty"`
	Decisions    []*domain.Decision `json:"decisions,omitempty"`
	Persisted    bool               `json:"persisted,omitempty"`
}

// SessionStore keeps sessions keyed by id. Load returns nil, nil when the
// session does not exist or has expired.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	// Update loads, mutates and stores a session atomically. fn sees nil
	// when the session is missing and must not block.
	Update(ctx context.Context, id string, fn func(*Session) (*Session, error)) (*Session, error)
}

const updateAttempts = 3

type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "coach:session:"}
}

func (s *RedisStore) key(id string) string { return s.prefix + strings.TrimSpace(id) }

func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	return s.load(ctx, s.rdb, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c getter, id string) (*Session, error) {
	raw, err := c.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Session) (*Session, error)) (*Session, error) {
	key := s.key(id)
	var out *Session
	txf := func(tx *redis.Tx) error {
		cur, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, raw, s.ttl)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}
	for attempt := 0; attempt < updateAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return out, err
	}
	return nil, ErrSessionConflict
}

type memoryEntry struct {
	sess    Session
	expires time.Time
}

// MemoryStore is the single-process SessionStore used without Redis.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{ttl: ttl, items: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(id), nil
}

func (m *MemoryStore) loadLocked(id string) *Session {
	e, ok := m.items[id]
	if !ok {
		return nil
	}
	if m.now().After(e.expires) {
		delete(m.items, id)
		return nil
	}
	return cloneSession(&e.sess)
}

func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	m.mu.Lock()
	m.items[sess.ID] = memoryEntry{sess: *cloneSession(sess), expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) (*Session, error)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(m.loadLocked(id))
	if err != nil {
		return nil, err
	}
	m.items[next.ID] = memoryEntry{sess: *cloneSession(next), expires: m.now().Add(m.ttl)}
	return next, nil
}

func cloneSession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Moves = append([]string(nil), s.Moves...)
	c.Decisions = append([]*domain.Decision(nil), s.Decisions...)
	return &c
}
