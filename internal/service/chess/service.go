package chess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
	"github.com/park285/Cheese-Coach-bot/internal/domain"
	"github.com/park285/Cheese-Coach-bot/internal/settings"
)

var (
	ErrSessionNotFound = errors.New("chess session not found")
	ErrInvalidMove     = errors.New("invalid chess move")
	ErrGameFinished    = errors.New("chess game already finished")
	ErrNotPlayersTurn  = errors.New("not the player's turn")
)

const (
	DefaultSessionID = "default"
	maxHistoryLimit  = 50
	runningOutcome   = "*"
)

// Coach is the decision core the service drives.
type Coach interface {
	ChooseMove(ctx context.Context, pos corechess.Position, legal []corechess.Move, level int) (corechess.Decision, error)
	Hint(ctx context.Context, pos corechess.Position, level corechess.HintLevel) (corechess.Hint, error)
}

type Config struct {
	HistoryLimit int
}

type Service struct {
	coach    Coach
	settings *settings.Store
	store    SessionStore
	repo     Repository
	renderer BoardRenderer
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

type GameState struct {
	SessionID    string
	FEN          string
	Turn         corechess.Color
	InCheck      bool
	Checkmate    bool
	Stalemate    bool
	GameOver     bool
	Result       string
	Method       string
	LegalMoves   []corechess.Move
	Pieces       map[string]string
	Moves        []string
	SkillLevel   int
	SkillLabel   string
	LastDecision *domain.Decision
	Opening      string
}

type MoveResult struct {
	State      *GameState
	PlayerMove corechess.Move
	PlayerSAN  string
	Computer   *domain.Decision
	Finished   bool
	GameID     int64
}

type HintResult struct {
	Hint  corechess.Hint
	Image []byte
}

func NewService(coach Coach, st *settings.Store, store SessionStore, repo Repository, renderer BoardRenderer, cfg Config, logger *zap.Logger) (*Service, error) {
	if coach == nil {
		return nil, fmt.Errorf("coach is required")
	}
	if st == nil {
		return nil, fmt.Errorf("settings store is required")
	}
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if repo == nil {
		repo = NewMemoryRepository()
	}
	if renderer == nil {
		renderer = NewSVGBoardRenderer()
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		coach:    coach,
		settings: st,
		store:    store,
		repo:     repo,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultSessionID
	}
	return id
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string { return uuid.NewString() }

// NewGame starts a fresh game under id, replacing any existing one.
func (s *Service) NewGame(ctx context.Context, id string) (*GameState, error) {
	now := s.now()
	sess := &Session{ID: normalizeID(id), Moves: []string{}, StartedAt: now, UpdatedAt: now}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("game_started", zap.String("session_id", sess.ID))
	return s.stateFrom(sess, corechess.NewBoard()), nil
}

func (s *Service) Reset(ctx context.Context, id string) (*GameState, error) {
	return s.NewGame(ctx, id)
}

func (s *Service) State(ctx context.Context, id string) (*GameState, error) {
	sess, board, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.stateFrom(sess, board), nil
}

// Open returns the session state, starting a game when none exists.
func (s *Service) Open(ctx context.Context, id string) (*GameState, error) {
	st, err := s.State(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return s.NewGame(ctx, id)
	}
	return st, err
}

func (s *Service) load(ctx context.Context, id string) (*Session, *corechess.Board, error) {
	sess, err := s.store.Load(ctx, normalizeID(id))
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, ErrSessionNotFound
	}
	board, err := replay(sess.Moves)
	if err != nil {
		return nil, nil, err
	}
	return sess, board, nil
}

func replay(moves []string) (*corechess.Board, error) {
	list := make([]corechess.Move, 0, len(moves))
	for _, m := range moves {
		list = append(list, corechess.Move(m))
	}
	board, err := corechess.NewBoardFromMoves(list)
	if err != nil {
		return nil, fmt.Errorf("replay session: %w", err)
	}
	return board, nil
}

func finished(b *corechess.Board) bool {
	outcome, _ := b.Outcome()
	return outcome != runningOutcome || b.Terminal() != corechess.NotTerminal
}

func applyMove(b *corechess.Board, m corechess.Move) (*corechess.Board, error) {
	pos, err := b.Apply(m)
	if err != nil {
		return nil, err
	}
	return pos.(*corechess.Board), nil
}

// Play applies the player's move and, unless testMode is set, the computer's
// reply at the current skill level.
func (s *Service) Play(ctx context.Context, id, moveText string, testMode bool) (*MoveResult, error) {
	id = normalizeID(id)
	if strings.TrimSpace(moveText) == "" {
		return nil, ErrInvalidMove
	}
	sess, board, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if finished(board) {
		return nil, ErrGameFinished
	}
	if !testMode && board.Turn() != corechess.White {
		return nil, ErrNotPlayersTurn
	}
	mv, err := board.DecodeMove(moveText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	result := &MoveResult{PlayerMove: mv, PlayerSAN: board.SAN(mv)}
	next, err := applyMove(board, mv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	moves := append(append([]string(nil), sess.Moves...), string(mv))

	if !testMode && !finished(next) {
		level := s.settings.SkillLevel()
		dec, err := s.coach.ChooseMove(ctx, next, next.LegalMoves(), level)
		if err != nil {
			return nil, err
		}
		result.Computer = &domain.Decision{
			Move:       string(dec.Move),
			SAN:        next.SAN(dec.Move),
			Path:       string(dec.Path),
			Failure:    string(dec.Failure),
			SkillLevel: level,
			Duration:   dec.Duration,
		}
		if next, err = applyMove(next, dec.Move); err != nil {
			return nil, err
		}
		moves = append(moves, string(dec.Move))
	}

	expected := len(sess.Moves)
	updated, err := s.store.Update(ctx, id, func(cur *Session) (*Session, error) {
		if cur == nil {
			return nil, ErrSessionNotFound
		}
		if len(cur.Moves) != expected {
			return nil, ErrSessionConflict
		}
		cur.Moves = moves
		cur.UpdatedAt = s.now()
		if result.Computer != nil {
			cur.LastDecision = result.Computer
			cur.Decisions = append(cur.Decisions, result.Computer)
		}
		return cur, nil
	})
	if err != nil {
		return nil, err
	}

	if finished(next) {
		result.Finished = true
		result.GameID = s.persistFinished(ctx, updated, next)
	}
	result.State = s.stateFrom(updated, next)
	return result, nil
}

func (s *Service) persistFinished(ctx context.Context, sess *Session, board *corechess.Board) int64 {
	if sess.Persisted {
		return 0
	}
	rec := buildRecord(sess, board, s.settings.SkillLevel(), s.now())
	id, err := s.repo.InsertGame(ctx, rec)
	switch {
	case errors.Is(err, ErrDuplicateGame):
	case err != nil:
		s.logger.Warn("persist_game_failed", zap.String("session_id", sess.ID), zap.Error(err))
		return 0
	}
	if _, err := s.store.Update(ctx, sess.ID, func(cur *Session) (*Session, error) {
		if cur == nil {
			return nil, ErrSessionNotFound
		}
		cur.Persisted = true
		return cur, nil
	}); err != nil {
		s.logger.Warn("mark_persisted_failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	s.logger.Info("game_finished",
		zap.String("session_id", sess.ID),
		zap.String("result", rec.Result),
		zap.String("method", rec.Method),
		zap.Int("plies", len(rec.MovesUCI)),
	)
	return id
}

func buildRecord(sess *Session, board *corechess.Board, level int, now time.Time) *domain.GameRecord {
	result, method := board.Outcome()
	if result == runningOutcome {
		switch board.Terminal() {
		case corechess.Checkmate:
			result, method = "1-0", "checkmate"
			if board.Turn() == corechess.White {
				result = "0-1"
			}
		case corechess.Stalemate:
			result, method = "1/2-1/2", "stalemate"
		}
	}
	rec := &domain.GameRecord{
		SessionID:  sess.ID,
		SkillLevel: level,
		Result:     result,
		Method:     method,
		MovesUCI:   append([]string(nil), sess.Moves...),
		MovesSAN:   sanHistory(sess.Moves),
		StartedAt:  sess.StartedAt,
		EndedAt:    now,
		Duration:   now.Sub(sess.StartedAt),
	}
	for _, d := range sess.Decisions {
		switch corechess.Path(d.Path) {
		case corechess.PathBlunder:
			rec.Blunders++
		case corechess.PathHeuristic, corechess.PathRandom:
			rec.Fallbacks++
		}
		rec.ModelLatency += d.Duration
	}
	return rec
}

func sanHistory(moves []string) []string {
	out := make([]string, 0, len(moves))
	b := corechess.NewBoard()
	for _, m := range moves {
		mv := corechess.Move(m)
		out = append(out, b.SAN(mv))
		next, err := applyMove(b, mv)
		if err != nil {
			break
		}
		b = next
	}
	return out
}

// Hint suggests a move for the player. Hints are only offered on White's turn.
func (s *Service) Hint(ctx context.Context, id string, level corechess.HintLevel, withImage bool) (*HintResult, error) {
	_, board, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if finished(board) {
		return nil, ErrGameFinished
	}
	if board.Turn() != corechess.White {
		return nil, ErrNotPlayersTurn
	}
	if strings.TrimSpace(string(level)) == "" {
		level = s.settings.LearningMode().HintLevel
	}
	h, err := s.coach.Hint(ctx, board, level)
	if err != nil {
		return nil, err
	}
	out := &HintResult{Hint: h}
	if withImage {
		img, err := s.renderer.RenderPNG(ctx, board, RenderOptions{Arrow: &Arrow{From: h.From, To: h.To}})
		if err != nil {
			s.logger.Warn("hint_render_failed", zap.Error(err))
		} else {
			out.Image = img
		}
	}
	return out, nil
}

// BoardImage renders the current position with the last move tinted.
func (s *Service) BoardImage(ctx context.Context, id string) ([]byte, error) {
	sess, board, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	var opts RenderOptions
	if n := len(sess.Moves); n > 0 && len(sess.Moves[n-1]) >= 4 {
		last := sess.Moves[n-1]
		opts.LastMove = &Arrow{From: last[0:2], To: last[2:4]}
	}
	return s.renderer.RenderPNG(ctx, board, opts)
}

func (s *Service) History(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	return s.repo.RecentGames(ctx, limit)
}

func (s *Service) stateFrom(sess *Session, board *corechess.Board) *GameState {
	level := s.settings.SkillLevel()
	result, method := board.Outcome()
	st := &GameState{
		SessionID:    sess.ID,
		FEN:          board.FEN(),
		Turn:         board.Turn(),
		InCheck:      board.InCheck(),
		Checkmate:    board.Terminal() == corechess.Checkmate,
		Stalemate:    board.Terminal() == corechess.Stalemate,
		GameOver:     finished(board),
		Result:       result,
		Method:       method,
		LegalMoves:   board.LegalMoves(),
		Pieces:       piecesOf(board),
		Moves:        append([]string(nil), sess.Moves...),
		SkillLevel:   level,
		SkillLabel:   corechess.SkillLabel(level),
		LastDecision: sess.LastDecision,
	}
	if code, name := board.Opening(); code != "" {
		st.Opening = code + " " + name
	}
	return st
}

func piecesOf(b *corechess.Board) map[string]string {
	out := make(map[string]string, 32)
	for rank := 1; rank <= 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := fmt.Sprintf("%c%d", files[file], rank)
			p := b.PieceAt(sq)
			if p.Empty() {
				continue
			}
			out[sq] = pieceCode(p)
		}
	}
	return out
}

func pieceCode(p corechess.Piece) string {
	letter := map[corechess.PieceType]string{
		corechess.King: "k", corechess.Queen: "q", corechess.Rook: "r",
		corechess.Bishop: "b", corechess.Knight: "n", corechess.Pawn: "p",
	}[p.Type]
	if p.Color == corechess.White {
		return strings.ToUpper(letter)
	}
	return letter
}
