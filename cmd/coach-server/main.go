package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Coach-bot/internal/chessbuilder"
	appcfg "github.com/park285/Cheese-Coach-bot/internal/config"
	"github.com/park285/Cheese-Coach-bot/internal/httpapi"
	"github.com/park285/Cheese-Coach-bot/internal/obslog"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config_error", zap.Error(err))
	}

	ctx := context.Background()
	deps, err := chessbuilder.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("coach_init_error", zap.Error(err))
	}
	defer func() { _ = deps.Close() }()

	logger.Info("coach_ready",
		zap.String("provider", cfg.LLMProvider),
		zap.Int("skill_level", deps.Settings.SkillLevel()),
		zap.Duration("llm_timeout", cfg.LLMTimeout),
	)

	// Fallbacks must still fit inside the request deadline after a generator timeout.
	srv := httpapi.New(deps.Service, deps.Settings,
		httpapi.WithLogger(logger),
		httpapi.WithRequestTimeout(2*cfg.LLMTimeout+5*time.Second),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("http_server_error", zap.Error(err))
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("shutdown_error", zap.Error(err))
	}
}
