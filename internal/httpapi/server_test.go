package httpapi

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
	"github.com/park285/Cheese-Coach-bot/internal/llm"
	svc "github.com/park285/Cheese-Coach-bot/internal/service/chess"
	"github.com/park285/Cheese-Coach-bot/internal/settings"
	"github.com/park285/Cheese-Coach-bot/pkg/chessdto"
)

type harness struct {
	client   *fasthttp.Client
	settings *settings.Store
}

func newHarness(t *testing.T, gen llm.Generator) harness {
	t.Helper()
	st, err := settings.New(corechess.MaxSkillLevel)
	if err != nil {
		t.Fatalf("settings.New: %v", err)
	}
	coach := corechess.NewCoach(corechess.NewEngine(gen, corechess.WithRandomSeed(3)), nil, nil)
	service, err := svc.NewService(coach, st, svc.NewMemoryStore(time.Hour), nil, nil, svc.Config{}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	srv := New(service, st, WithRequestTimeout(5*time.Second))

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })

	return harness{client: &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }}, settings: st}
}

func (h harness) do(t *testing.T, method, path, session, body string) (int, []byte) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://coach" + path)
	req.Header.SetMethod(method)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	if err := h.client.DoTimeout(req, resp, 5*time.Second); err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

func decodeInto(t *testing.T, raw []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestBoardAndMove(t *testing.T) {
	h := newHarness(t, llm.Static{Text: "e7e5"})

	status, raw := h.do(t, "GET", "/board", "s1", "")
	if status != fasthttp.StatusOK {
		t.Fatalf("GET /board status = %d body=%s", status, raw)
	}
	var board chessdto.BoardState
	decodeInto(t, raw, &board)
	if board.SessionID != "s1" || board.Turn != "white" || len(board.LegalMoves) != 20 {
		t.Fatalf("board = %+v", board)
	}

	status, raw = h.do(t, "POST", "/move", "s1", `{"move":"e2e4"}`)
	if status != fasthttp.StatusOK {
		t.Fatalf("POST /move status = %d body=%s", status, raw)
	}
	var mv chessdto.MoveResponse
	decodeInto(t, raw, &mv)
	if mv.PlayerSAN != "e4" || mv.Computer == nil || mv.Computer.Move != "e7e5" || mv.Computer.Path != "model" {
		t.Fatalf("move response = %+v computer=%+v", mv, mv.Computer)
	}
	if len(mv.Board.Moves) != 2 || mv.Board.LastDecision == nil {
		t.Fatalf("board after move = %+v", mv.Board)
	}
}

func TestMoveRejections(t *testing.T) {
	h := newHarness(t, llm.Static{Text: "e7e5"})
	h.do(t, "GET", "/board", "rej", "")

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"illegal", `{"move":"e2e5"}`, fasthttp.StatusBadRequest},
		{"garbage", `{"move":"castle please"}`, fasthttp.StatusBadRequest},
		{"empty", `{"move":""}`, fasthttp.StatusBadRequest},
		{"bad json", `{"move":`, fasthttp.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := h.do(t, "POST", "/move", "rej", tc.body)
			if status != tc.status {
				t.Fatalf("status = %d want %d body=%s", status, tc.status, raw)
			}
			var e chessdto.ErrorResponse
			decodeInto(t, raw, &e)
			if e.Error == "" {
				t.Fatalf("error body missing message: %s", raw)
			}
		})
	}
}

func TestMoveOnUnknownSession(t *testing.T) {
	h := newHarness(t, llm.Static{Text: "e7e5"})
	status, raw := h.do(t, "POST", "/move", "never-opened", `{"move":"e2e4"}`)
	if status != fasthttp.StatusNotFound {
		t.Fatalf("status = %d body=%s", status, raw)
	}
}

func TestFinishedGameConflict(t *testing.T) {
	h := newHarness(t, llm.Static{Text: "e7e5"})
	h.do(t, "POST", "/reset", "fm", "")
	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		status, raw := h.do(t, "POST", "/move", "fm", `{"move":"`+m+`","test_mode":true}`)
		if status != fasthttp.StatusOK {
			t.Fatalf("move %s status = %d body=%s", m, status, raw)
		}
	}
	status, raw := h.do(t, "POST", "/move", "fm", `{"move":"e2e4","test_mode":true}`)
	if status != fasthttp.StatusConflict {
		t.Fatalf("status = %d body=%s", status, raw)
	}

	status, raw = h.do(t, "GET", "/history", "", "")
	if status != fasthttp.StatusOK {
		t.Fatalf("history status = %d", status)
	}
	var hist chessdto.HistoryResponse
	decodeInto(t, raw, &hist)
	if len(hist.Games) != 1 || hist.Games[0].Result != "0-1" {
		t.Fatalf("history = %+v", hist)
	}
}

func TestSkillLevelRoutes(t *testing.T) {
	h := newHarness(t, llm.Static{Text: "e7e5"})

	status, raw := h.do(t, "POST", "/skill-level", "", `{"skill_level":3}`)
	if status != fasthttp.StatusOK {
		t.Fatalf("status = %d body=%s", status, raw)
	}
	var sk chessdto.SkillLevelResponse
	decodeInto(t, raw, &sk)
	if sk.SkillLevel != 3 || h.settings.SkillLevel() != 3 {
		t.Fatalf("skill = %+v stored=%d", sk, h.settings.SkillLevel())
	}

	for _, body := range []string{`{"skill_level":11}`, `{"skill_level":0}`, `{"skill_level":2.5}`, `{"skill_level":true}`, `{"skill_level":"grandmaster-ish"}`} {
		if status, raw := h.do(t, "POST", "/skill-level", "", body); status != fasthttp.StatusBadRequest {
			t.Fatalf("%s: status = %d body=%s", body, status, raw)
		}
	}
	if h.settings.SkillLevel() != 3 {
		t.Fatalf("rejected update changed skill to %d", h.settings.SkillLevel())
	}

	status, raw = h.do(t, "GET", "/skill-level", "", "")
	decodeInto(t, raw, &sk)
	if status != fasthttp.StatusOK || sk.SkillLevel != 3 || sk.Label == "" {
		t.Fatalf("GET skill = %d %+v", status, sk)
	}
}

func TestHintAndLearningMode(t *testing.T) {
	h := newHarness(t, llm.Static{Text: "g1f3"})

	status, raw := h.do(t, "POST", "/learning-mode", "", `{"enabled":true,"hint_level":"advanced"}`)
	if status != fasthttp.StatusOK {
		t.Fatalf("learning status = %d body=%s", status, raw)
	}
	var lm chessdto.LearningModeResponse
	decodeInto(t, raw, &lm)
	if !lm.Enabled || lm.HintLevel != "advanced" {
		t.Fatalf("learning = %+v", lm)
	}
	if status, _ := h.do(t, "POST", "/learning-mode", "", `{"enabled":true,"hint_level":"expert"}`); status != fasthttp.StatusBadRequest {
		t.Fatalf("bad hint level status = %d", status)
	}

	h.do(t, "GET", "/board", "hint", "")
	status, raw = h.do(t, "POST", "/hint", "hint", `{"image":true}`)
	if status != fasthttp.StatusOK {
		t.Fatalf("hint status = %d body=%s", status, raw)
	}
	var hint chessdto.HintResponse
	decodeInto(t, raw, &hint)
	if hint.Move != "g1f3" || hint.Level != "advanced" || hint.Explanation == "" || hint.ImagePNG == "" {
		t.Fatalf("hint = %+v", hint)
	}
	if h.settings.SkillLevel() != corechess.MaxSkillLevel {
		t.Fatalf("hint changed skill level to %d", h.settings.SkillLevel())
	}

	if status, _ := h.do(t, "POST", "/hint", "hint", `{"level":"expert"}`); status != fasthttp.StatusBadRequest {
		t.Fatalf("invalid level status = %d", status)
	}
}

func TestHintOnBlackToMove(t *testing.T) {
	h := newHarness(t, llm.Static{Text: "e7e5"})
	h.do(t, "POST", "/reset", "bt", "")
	h.do(t, "POST", "/move", "bt", `{"move":"e2e4","test_mode":true}`)
	status, raw := h.do(t, "POST", "/hint", "bt", "")
	if status != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d body=%s", status, raw)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	h := newHarness(t, llm.Static{Text: "e7e5"})
	if status, raw := h.do(t, "GET", "/healthz", "", ""); status != fasthttp.StatusOK || string(raw) != "ok" {
		t.Fatalf("healthz = %d %s", status, raw)
	}
	if status, _ := h.do(t, "DELETE", "/board", "", ""); status != fasthttp.StatusNotFound {
		t.Fatalf("unknown route status = %d", status)
	}
	status, raw := h.do(t, "GET", "/board.png", "img", "")
	if status != fasthttp.StatusOK || len(raw) < 8 || string(raw[1:4]) != "PNG" {
		t.Fatalf("board.png = %d len=%d", status, len(raw))
	}
}
