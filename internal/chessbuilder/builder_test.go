package chessbuilder

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/park285/Cheese-Coach-bot/internal/config"
	"github.com/park285/Cheese-Coach-bot/internal/llm"
	svcchess "github.com/park285/Cheese-Coach-bot/internal/service/chess"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		LLMProvider:   config.ProviderOffline,
		LLMTimeout:    time.Second,
		DefaultSkill:  4,
		SessionTTL:    time.Hour,
		HistoryLimit:  10,
		RandomSeed:    7,
		HasRandomSeed: true,
	}
}

func TestNewInMemory(t *testing.T) {
	deps, err := New(context.Background(), baseConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer deps.Close()

	if _, ok := deps.Store.(*svcchess.MemoryStore); !ok {
		t.Fatalf("store = %T, want memory", deps.Store)
	}
	if deps.Settings.SkillLevel() != 4 {
		t.Fatalf("skill = %d", deps.Settings.SkillLevel())
	}

	// The offline generator fails, so the computer still answers via fallback.
	ctx := context.Background()
	if _, err := deps.Service.NewGame(ctx, "b1"); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	res, err := deps.Service.Play(ctx, "b1", "e2e4", false)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if res.Computer == nil || res.Computer.Path == "model" {
		t.Fatalf("computer decision = %+v", res.Computer)
	}
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	deps, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer deps.Close()

	if _, ok := deps.Store.(*svcchess.RedisStore); !ok {
		t.Fatalf("store = %T, want redis", deps.Store)
	}
	if _, err := deps.Service.NewGame(context.Background(), "r1"); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if !mr.Exists("coach:session:r1") {
		t.Fatalf("session not written to redis; keys=%v", mr.Keys())
	}
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	cfg := baseConfig()
	cfg.RedisURL = "memcached://nope"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected redis url error")
	}
}

func TestNewGenerator(t *testing.T) {
	cfg := baseConfig()

	cfg.LLMProvider = config.ProviderOllama
	cfg.LLMRetry = 2
	gen, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if _, ok := gen.(*llm.Ollama); !ok {
		t.Fatalf("ollama gen = %T", gen)
	}

	cfg.LLMProvider = config.ProviderGemini
	cfg.GeminiAPIKey = "k"
	gen, err = NewGenerator(cfg)
	if err != nil {
		t.Fatalf("gemini: %v", err)
	}
	if g, ok := gen.(*llm.Gemini); !ok || g.Attempts != 3 {
		t.Fatalf("gemini gen = %#v", gen)
	}

	cfg.LLMProvider = "carrier-pigeon"
	if _, err := NewGenerator(cfg); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}
