package chess

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/park285/Cheese-Coach-bot/internal/domain"
)

var ErrDuplicateGame = errors.New("chess game already exists")

// Repository stores finished games.
type Repository interface {
	InsertGame(ctx context.Context, game *domain.GameRecord) (int64, error)
	RecentGames(ctx context.Context, limit int) ([]*domain.GameRecord, error)
	GameBySession(ctx context.Context, sessionID string) (*domain.GameRecord, error)
}

const Schema = `
CREATE TABLE IF NOT EXISTS coach_games (
	id               BIGSERIAL PRIMARY KEY,
	session_id       TEXT NOT NULL UNIQUE,
	skill_level      SMALLINT NOT NULL,
	result           TEXT NOT NULL,
	method           TEXT NOT NULL,
	moves_uci        TEXT[] NOT NULL,
	moves_san        TEXT[] NOT NULL,
	started_at       TIMESTAMPTZ NOT NULL,
	ended_at         TIMESTAMPTZ NOT NULL,
	duration_ms      BIGINT NOT NULL,
	blunders         INTEGER NOT NULL DEFAULT 0,
	fallbacks        INTEGER NOT NULL DEFAULT 0,
	model_latency_ms BIGINT NOT NULL DEFAULT 0
)`

const selectColumns = `
	id, session_id, skill_level, result, method, moves_uci, moves_san,
	started_at, ended_at, duration_ms, blunders, fallbacks, model_latency_ms`

type repository struct {
	db *sql.DB
}

// OpenPostgres connects through lib/pq and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create schema: %w", err)
	}
	return db, NewRepository(db), nil
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertGame(ctx context.Context, game *domain.GameRecord) (int64, error) {
	if game == nil {
		return 0, fmt.Errorf("nil game record")
	}
	const query = `
		INSERT INTO coach_games (
			session_id, skill_level, result, method, moves_uci, moves_san,
			started_at, ended_at, duration_ms, blunders, fallbacks, model_latency_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (session_id) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err := r.db.QueryRowContext(ctx, query,
		game.SessionID,
		game.SkillLevel,
		game.Result,
		game.Method,
		pq.Array(game.MovesUCI),
		pq.Array(game.MovesSAN),
		game.StartedAt,
		game.EndedAt,
		game.Duration.Milliseconds(),
		game.Blunders,
		game.Fallbacks,
		game.ModelLatency.Milliseconds(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, ErrDuplicateGame
		}
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return id.Int64, nil
}

func (r *repository) RecentGames(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM coach_games ORDER BY ended_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.GameRecord, 0, limit)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *repository) GameBySession(ctx context.Context, sessionID string) (*domain.GameRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM coach_games WHERE session_id = $1`, sessionID)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return g, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*domain.GameRecord, error) {
	var (
		g          domain.GameRecord
		durationMS int64
		latencyMS  int64
	)
	err := s.Scan(
		&g.ID,
		&g.SessionID,
		&g.SkillLevel,
		&g.Result,
		&g.Method,
		pq.Array(&g.MovesUCI),
		pq.Array(&g.MovesSAN),
		&g.StartedAt,
		&g.EndedAt,
		&durationMS,
		&g.Blunders,
		&g.Fallbacks,
		&latencyMS,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.Duration = time.Duration(durationMS) * time.Millisecond
	g.ModelLatency = time.Duration(latencyMS) * time.Millisecond
	return &g, nil
}
