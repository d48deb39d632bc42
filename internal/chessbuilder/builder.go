package chessbuilder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
	"github.com/park285/Cheese-Coach-bot/internal/config"
	"github.com/park285/Cheese-Coach-bot/internal/llm"
	"github.com/park285/Cheese-Coach-bot/internal/msgcat"
	svcchess "github.com/park285/Cheese-Coach-bot/internal/service/chess"
	"github.com/park285/Cheese-Coach-bot/internal/settings"
)

type Deps struct {
	Service   *svcchess.Service
	Coach     *corechess.Coach
	Settings  *settings.Store
	Generator llm.Generator
	Store     svcchess.SessionStore
	Repo      svcchess.Repository

	redis *redis.Client
	db    *sql.DB
}

// Close releases the Redis and Postgres connections, if any were opened.
func (d *Deps) Close() error {
	var firstErr error
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	gen, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}

	opts := []corechess.Option{
		corechess.WithCatalog(catalog),
		corechess.WithLogger(logger),
		corechess.WithGenerateTimeout(cfg.LLMTimeout),
		corechess.WithStrictShortlist(cfg.StrictShortlist),
	}
	if cfg.HasRandomSeed {
		opts = append(opts, corechess.WithRandomSeed(cfg.RandomSeed))
	}
	coach := corechess.NewCoach(corechess.NewEngine(gen, opts...), catalog, logger)

	st, err := settings.New(cfg.DefaultSkill)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	deps := &Deps{Coach: coach, Settings: st, Generator: gen}

	// Sessions (Redis optional)
	if strings.TrimSpace(cfg.RedisURL) != "" {
		ropts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(ropts)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pctx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		deps.redis = rdb
		deps.Store = svcchess.NewRedisStore(rdb, cfg.SessionTTL)
		logger.Info("session_store", zap.String("backend", "redis"), zap.String("addr", ropts.Addr))
	} else {
		deps.Store = svcchess.NewMemoryStore(cfg.SessionTTL)
		logger.Info("session_store", zap.String("backend", "memory"))
	}

	// Game history (Postgres optional)
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		db, repo, err := svcchess.OpenPostgres(pctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
		deps.db = db
		deps.Repo = repo
		logger.Info("history_repository", zap.String("backend", "postgres"))
	} else {
		deps.Repo = svcchess.NewMemoryRepository()
		logger.Info("history_repository", zap.String("backend", "memory"))
	}

	service, err := svcchess.NewService(coach, st, deps.Store, deps.Repo, svcchess.NewSVGBoardRenderer(),
		svcchess.Config{HistoryLimit: cfg.HistoryLimit}, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Service = service
	return deps, nil
}

// NewGenerator picks the text generator named by LLM_PROVIDER.
func NewGenerator(cfg *config.AppConfig) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama, "":
		return llm.NewOllama(cfg.OllamaHost, cfg.OllamaModel,
			llm.WithTimeout(cfg.LLMTimeout),
			llm.WithRetry(cfg.LLMRetry+1),
		), nil
	case config.ProviderGemini:
		g := llm.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
		g.Attempts = cfg.LLMRetry + 1
		return g, nil
	case config.ProviderOffline:
		return llm.Offline{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
