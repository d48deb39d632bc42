package chess

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/park285/Cheese-Coach-bot/internal/domain"
)

// memrepo is the in-memory Repository used when no database is configured.
type memrepo struct {
	mu        sync.RWMutex
	nextID    int64
	games     []*domain.GameRecord
	bySession map[string]*domain.GameRecord
}

func NewMemoryRepository() Repository {
	return &memrepo{bySession: make(map[string]*domain.GameRecord)}
}

func (m *memrepo) InsertGame(_ context.Context, game *domain.GameRecord) (int64, error) {
	if game == nil {
		return 0, ErrDuplicateGame
	}
	key := strings.TrimSpace(game.SessionID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bySession[key]; exists {
		return 0, ErrDuplicateGame
	}
	m.nextID++
	rec := cloneRecord(game)
	rec.ID = m.nextID
	m.games = append(m.games, rec)
	m.bySession[key] = rec
	return rec.ID, nil
}

func (m *memrepo) RecentGames(_ context.Context, limit int) ([]*domain.GameRecord, error) {
	m.mu.RLock()
	items := make([]*domain.GameRecord, 0, len(m.games))
	for _, g := range m.games {
		items = append(items, cloneRecord(g))
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) GameBySession(_ context.Context, sessionID string) (*domain.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.bySession[strings.TrimSpace(sessionID)]; ok {
		return cloneRecord(g), nil
	}
	return nil, nil
}

func cloneRecord(g *domain.GameRecord) *domain.GameRecord {
	c := *g
	c.MovesUCI = append([]string(nil), g.MovesUCI...)
	c.MovesSAN = append([]string(nil), g.MovesSAN...)
	return &c
}
