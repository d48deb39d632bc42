package chess

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/park285/Cheese-Coach-bot/internal/domain"
)

func exerciseRepository(t *testing.T, repo Repository, prefix string) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		rec := &domain.GameRecord{
			SessionID:  prefix + id,
			SkillLevel: 5,
			Result:     "1-0",
			Method:     "checkmate",
			MovesUCI:   []string{"e2e4"},
			MovesSAN:   []string{"e4"},
			StartedAt:  base,
			EndedAt:    base.Add(time.Duration(i) * time.Minute),
			Duration:   time.Duration(i) * time.Minute,
		}
		if _, err := repo.InsertGame(ctx, rec); err != nil {
			t.Fatalf("InsertGame %s: %v", id, err)
		}
	}
	if _, err := repo.InsertGame(ctx, &domain.GameRecord{SessionID: prefix + "a", EndedAt: base}); !errors.Is(err, ErrDuplicateGame) {
		t.Fatalf("duplicate insert err = %v", err)
	}

	recent, err := repo.RecentGames(ctx, 2)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(recent) != 2 || recent[0].SessionID != prefix+"c" || recent[1].SessionID != prefix+"b" {
		t.Fatalf("recent order wrong: %+v", recent)
	}

	got, err := repo.GameBySession(ctx, prefix+"b")
	if err != nil || got == nil || got.Duration != time.Minute || got.MovesSAN[0] != "e4" {
		t.Fatalf("GameBySession = %+v, %v", got, err)
	}
	if got, err := repo.GameBySession(ctx, prefix+"zzz"); err != nil || got != nil {
		t.Fatalf("missing game = %+v, %v", got, err)
	}
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository(), "")
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("COACH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("COACH_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, repo, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer db.Close()
	prefix := NewSessionID() + "-"
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM coach_games WHERE session_id LIKE $1`, prefix+"%")
	})
	exerciseRepository(t, repo, prefix)
}
