// Package httpapi serves the coaching endpoints over fasthttp.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Coach-bot/internal/adapter/chesspresenter"
	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
	svc "github.com/park285/Cheese-Coach-bot/internal/service/chess"
	"github.com/park285/Cheese-Coach-bot/internal/settings"
	"github.com/park285/Cheese-Coach-bot/pkg/chessdto"
)

const SessionHeader = "X-Session-Id"

type Server struct {
	service  *svc.Service
	settings *settings.Store
	logger   *zap.Logger
	timeout  time.Duration
	srv      *fasthttp.Server
}

type Option func(*Server)

// WithRequestTimeout bounds every handler's context. It should exceed the
// generator timeout so fallbacks can still answer.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(service *svc.Service, st *settings.Store, opts ...Option) *Server {
	s := &Server{service: service, settings: st, logger: zap.NewNop(), timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "coach-server",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       s.timeout + 5*time.Second,
		MaxRequestBodySize: 64 << 10,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http_listening", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	case path == "/board" && ctx.IsGet():
		s.handleBoard(ctx)
	case path == "/board.png" && ctx.IsGet():
		s.handleBoardImage(ctx)
	case path == "/move" && ctx.IsPost():
		s.handleMove(ctx)
	case path == "/reset" && ctx.IsPost():
		s.handleReset(ctx)
	case path == "/skill-level" && ctx.IsGet():
		s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToSkillLevel(s.settings.SkillLevel()))
	case path == "/skill-level" && ctx.IsPost():
		s.handleSetSkill(ctx)
	case path == "/hint" && ctx.IsPost():
		s.handleHint(ctx)
	case path == "/learning-mode" && ctx.IsGet():
		s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToLearningMode(s.settings.LearningMode()))
	case path == "/learning-mode" && ctx.IsPost():
		s.handleSetLearning(ctx)
	case path == "/history" && ctx.IsGet():
		s.handleHistory(ctx)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "not_found", fmt.Sprintf("no route for %s %s", method, path))
	}

	s.logger.Debug("http_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (s *Server) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func sessionID(ctx *fasthttp.RequestCtx) string {
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(SessionHeader)))
	if id == "" {
		return svc.DefaultSessionID
	}
	return id
}

func (s *Server) handleBoard(ctx *fasthttp.RequestCtx) {
	c, cancel := s.requestContext(ctx)
	defer cancel()
	st, err := s.service.Open(c, sessionID(ctx))
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToBoard(st))
}

func (s *Server) handleBoardImage(ctx *fasthttp.RequestCtx) {
	c, cancel := s.requestContext(ctx)
	defer cancel()
	img, err := s.service.BoardImage(c, sessionID(ctx))
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	ctx.SetContentType("image/png")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(img)
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx) {
	var req chessdto.MoveRequest
	if !s.decode(ctx, &req) {
		return
	}
	if strings.TrimSpace(req.Move) == "" {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid_move", "move is required")
		return
	}
	c, cancel := s.requestContext(ctx)
	defer cancel()
	res, err := s.service.Play(c, sessionID(ctx), req.Move, req.TestMode)
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToMove(res))
}

func (s *Server) handleReset(ctx *fasthttp.RequestCtx) {
	c, cancel := s.requestContext(ctx)
	defer cancel()
	st, err := s.service.Reset(c, sessionID(ctx))
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToBoard(st))
}

func (s *Server) handleSetSkill(ctx *fasthttp.RequestCtx) {
	var req chessdto.SkillLevelRequest
	if !s.decode(ctx, &req) {
		return
	}
	var raw string
	switch v := req.SkillLevel.(type) {
	case float64:
		if v != float64(int(v)) {
			s.writeError(ctx, fasthttp.StatusBadRequest, "invalid_skill_level", "skill level must be an integer")
			return
		}
		raw = fmt.Sprint(int(v))
	case string:
		raw = v
	default:
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid_skill_level", "invalid skill level format")
		return
	}
	level, err := corechess.ParseSkillLevel(raw)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid_skill_level", "skill level must be between 1 and 10")
		return
	}
	if err := s.settings.SetSkillLevel(level); err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.logger.Info("skill_level_changed", zap.Int("level", level))
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToSkillLevel(level))
}

func (s *Server) handleHint(ctx *fasthttp.RequestCtx) {
	var req chessdto.HintRequest
	if len(ctx.PostBody()) > 0 && !s.decode(ctx, &req) {
		return
	}
	level := corechess.HintLevel("")
	if strings.TrimSpace(req.Level) != "" {
		lvl, err := corechess.ParseHintLevel(req.Level)
		if err != nil {
			s.writeError(ctx, fasthttp.StatusBadRequest, "invalid_hint_level", hintLevelMessage())
			return
		}
		level = lvl
	}
	c, cancel := s.requestContext(ctx)
	defer cancel()
	res, err := s.service.Hint(c, sessionID(ctx), level, req.Image)
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToHint(res))
}

func (s *Server) handleSetLearning(ctx *fasthttp.RequestCtx) {
	var req chessdto.LearningModeRequest
	if !s.decode(ctx, &req) {
		return
	}
	if err := s.settings.SetLearningMode(req.Enabled, corechess.HintLevel(req.HintLevel)); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid_hint_level", hintLevelMessage())
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToLearningMode(s.settings.LearningMode()))
}

func (s *Server) handleHistory(ctx *fasthttp.RequestCtx) {
	limit := ctx.QueryArgs().GetUintOrZero("limit")
	c, cancel := s.requestContext(ctx)
	defer cancel()
	games, err := s.service.History(c, limit)
	if err != nil {
		s.writeServiceError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, chessdto.HistoryResponse{Games: chesspresenter.ToGames(games)})
}

func hintLevelMessage() string {
	names := make([]string, 0, len(corechess.HintLevels))
	for _, l := range corechess.HintLevels {
		names = append(names, string(l))
	}
	return "hint level must be one of: " + strings.Join(names, ", ")
}

func (s *Server) decode(ctx *fasthttp.RequestCtx, dst any) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("encode_response_failed", zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(raw)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, code, msg string) {
	s.writeJSON(ctx, status, chessdto.ErrorResponse{Error: msg, Code: code})
}

func (s *Server) writeServiceError(ctx *fasthttp.RequestCtx, err error) {
	de := mapServiceError(err)
	if de.Status >= fasthttp.StatusInternalServerError {
		s.logger.Error("request_failed", zap.String("path", string(ctx.Path())), zap.Error(err))
	}
	s.writeError(ctx, de.Status, de.Code, de.Message)
}

func mapServiceError(err error) chessdto.DomainError {
	switch {
	case errors.Is(err, svc.ErrInvalidMove):
		return chessdto.DomainError{Code: "invalid_move", Message: "Invalid move", Status: fasthttp.StatusBadRequest}
	case errors.Is(err, svc.ErrNotPlayersTurn):
		return chessdto.DomainError{Code: "not_your_turn", Message: "Hints and moves are only available on your turn (White to move)", Status: fasthttp.StatusBadRequest}
	case errors.Is(err, corechess.ErrInvalidSkillLevel):
		return chessdto.DomainError{Code: "invalid_skill_level", Message: err.Error(), Status: fasthttp.StatusBadRequest}
	case errors.Is(err, svc.ErrSessionNotFound):
		return chessdto.DomainError{Code: "session_not_found", Message: "No game for this session", Status: fasthttp.StatusNotFound}
	case errors.Is(err, svc.ErrGameFinished), errors.Is(err, corechess.ErrTerminalPosition):
		return chessdto.DomainError{Code: "game_over", Message: "The game is over; reset to play again", Status: fasthttp.StatusConflict}
	case errors.Is(err, svc.ErrSessionConflict):
		return chessdto.DomainError{Code: "conflict", Message: "Session changed concurrently; retry", Status: fasthttp.StatusConflict, Retryable: true}
	default:
		return chessdto.DomainError{Code: "internal", Message: "Internal error", Status: fasthttp.StatusInternalServerError}
	}
}
