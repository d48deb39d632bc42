package settings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/Cheese-Coach-bot/internal/chess"
	"github.com/park285/Cheese-Coach-bot/internal/llm"
)

func TestStoreDefaultsAndReset(t *testing.T) {
	s, err := New(0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := Snapshot{SkillLevel: 5, LearningMode: LearningMode{HintLevel: chess.HintBasic}}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	if err := s.SetSkillLevel(9); err != nil {
		t.Fatalf("SetSkillLevel: %v", err)
	}
	if err := s.SetLearningMode(true, chess.HintAdvanced); err != nil {
		t.Fatalf("SetLearningMode: %v", err)
	}
	s.Reset()
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Fatalf("after reset (-want +got):\n%s", diff)
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	s, _ := New(3)
	for _, lvl := range []int{0, 11} {
		if err := s.SetSkillLevel(lvl); !errors.Is(err, chess.ErrInvalidSkillLevel) {
			t.Fatalf("SetSkillLevel(%d) err = %v", lvl, err)
		}
	}
	if s.SkillLevel() != 3 {
		t.Fatalf("rejected write changed level to %d", s.SkillLevel())
	}
	if err := s.SetLearningMode(true, "expert"); err == nil {
		t.Fatalf("unknown hint level should fail")
	}
	if _, err := New(12); err == nil {
		t.Fatalf("New(12) should fail")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s, _ := New(5)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(level int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.SetSkillLevel(level)
			}
		}(i%10 + 1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if lvl := s.SkillLevel(); lvl < 1 || lvl > 10 {
					t.Errorf("observed invalid level %d", lvl)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestHintLeavesSkillLevelUntouched(t *testing.T) {
	s, _ := New(1)
	var temps []float64
	gen := llm.Func(func(_ context.Context, req llm.Request) (string, error) {
		temps = append(temps, req.Temperature)
		return "e2e4", nil
	})
	coach := chess.NewCoach(chess.NewEngine(gen), nil, nil)

	before := s.SkillLevel()
	if _, err := coach.Hint(context.Background(), chess.NewBoard(), s.LearningMode().HintLevel); err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if after := s.SkillLevel(); after != before {
		t.Fatalf("skill level changed by hint: %d -> %d", before, after)
	}
	if len(temps) != 1 || temps[0] != chess.TemperatureFor(chess.MaxSkillLevel) {
		t.Fatalf("hint sampled at %v, want level 10 temperature", temps)
	}
}
