package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/Cheese-Coach-bot/internal/chess"
)

const (
	ProviderOllama  = "ollama"
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

type AppConfig struct {
	HTTPAddr string

	LLMProvider  string
	OllamaHost   string
	OllamaModel  string
	GeminiAPIKey string
	GeminiModel  string
	LLMTimeout   time.Duration
	LLMRetry     int

	DefaultSkill    int
	StrictShortlist bool
	RandomSeed      int64
	HasRandomSeed   bool

	RedisURL     string
	DatabaseURL  string
	SessionTTL   time.Duration
	HistoryLimit int

	MessagesDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:     ":5000",
		LLMProvider:  ProviderOllama,
		OllamaHost:   "http://localhost:11434",
		OllamaModel:  "llama2",
		GeminiModel:  "gemini-1.5-flash",
		LLMTimeout:   20 * time.Second,
		LLMRetry:     1,
		DefaultSkill: 5,
		SessionTTL:   time.Hour,
		HistoryLimit: 10,
	}

	if v := env("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := env("LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = strings.ToLower(v)
	}
	if v := env("OLLAMA_HOST"); v != "" {
		cfg.OllamaHost = v
	}
	if v := env("OLLAMA_MODEL"); v != "" {
		cfg.OllamaModel = v
	}
	cfg.GeminiAPIKey = env("GEMINI_API_KEY")
	if v := env("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := env("LLM_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("LLM_TIMEOUT_MS: invalid value %q", v)
		}
		cfg.LLMTimeout = time.Duration(n) * time.Millisecond
	}
	if v := env("LLM_RETRY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("LLM_RETRY: invalid value %q", v)
		}
		cfg.LLMRetry = n
	}

	if v := env("COACH_DEFAULT_SKILL"); v != "" {
		n, err := chess.ParseSkillLevel(v)
		if err != nil {
			return nil, fmt.Errorf("COACH_DEFAULT_SKILL: %w", err)
		}
		cfg.DefaultSkill = n
	}
	if v := env("COACH_STRICT_SHORTLIST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.StrictShortlist = b
		}
	}
	if v := env("COACH_RANDOM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("COACH_RANDOM_SEED: invalid value %q", v)
		}
		cfg.RandomSeed, cfg.HasRandomSeed = n, true
	}

	cfg.RedisURL = env("REDIS_URL")
	cfg.DatabaseURL = env("DATABASE_URL")
	if v := env("SESSION_TTL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Second
		}
	}
	if v := env("HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	cfg.MessagesDir = env("MESSAGES_DIR")

	switch cfg.LLMProvider {
	case ProviderOllama, ProviderOffline:
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return nil, fmt.Errorf("LLM_PROVIDER: unknown provider %q", cfg.LLMProvider)
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
