package chess

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/park285/Cheese-Coach-bot/internal/llm"
	"github.com/park285/Cheese-Coach-bot/internal/msgcat"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		fen  string
		move Move
		want Category
	}{
		{foolsMateFEN, "d8h4", CategoryCheckmate},
		{rookCheckFEN, "a1a8", CategoryCheck},
		{scandiFEN, "e4d5", CategoryCapture},
		{castleFEN, "e1g1", CategoryCastling},
		{castleFEN, "e1c1", CategoryCastling},
		{promotionFEN, "a7a8q", CategoryPromotion},
		{"", "e2e4", CategoryCenter},
		{"", "g1f3", CategoryDevelopment},
		{"", "a2a3", CategoryGeneral},
	}
	for _, tc := range cases {
		var pos Position = NewBoard()
		if tc.fen != "" {
			pos = mustFEN(t, tc.fen)
		}
		if got := Classify(pos, tc.move); got != tc.want {
			t.Fatalf("Classify(%s) = %s, want %s", tc.move, got, tc.want)
		}
	}
}

func TestExplainSentenceBudget(t *testing.T) {
	cat, err := msgcat.Default()
	if err != nil {
		t.Fatalf("msgcat.Default: %v", err)
	}
	data := explanationData{SAN: "Nf3", Piece: "knight", From: "g1", To: "f3", Captured: "pawn", Side: "white"}
	bounds := map[HintLevel][2]int{
		HintBasic:        {1, 2},
		HintIntermediate: {2, 3},
		HintAdvanced:     {3, 4},
	}
	categories := []Category{
		CategoryCheckmate, CategoryCheck, CategoryCapture, CategoryCastling,
		CategoryPromotion, CategoryCenter, CategoryDevelopment, CategoryGeneral,
	}
	for _, c := range categories {
		for level, b := range bounds {
			out := Explain(cat, c, level, data)
			if !strings.Contains(out, "Nf3") {
				t.Fatalf("%s/%s: explanation lacks the move: %q", c, level, out)
			}
			n := countSentences(out)
			if n < b[0] || n > b[1] {
				t.Fatalf("%s/%s: %d sentences, want %d-%d: %q", c, level, n, b[0], b[1], out)
			}
		}
	}
	if got := Explain(nil, CategoryCapture, HintBasic, data); got != "Consider Nf3." {
		t.Fatalf("nil catalog fallback = %q", got)
	}
}

func countSentences(s string) int {
	n := 0
	for _, r := range s {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	return n
}

func TestCoachHintUsesMaxSkill(t *testing.T) {
	spy := &spyGenerator{reply: "e2e4"}
	coach := NewCoach(NewEngine(spy), nil, nil)
	h, err := coach.Hint(context.Background(), NewBoard(), HintIntermediate)
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	reqs := spy.calls()
	if len(reqs) != 1 || reqs[0].Temperature != TemperatureFor(MaxSkillLevel) {
		t.Fatalf("hint did not request level 10 sampling: %+v", reqs)
	}
	master, _ := GetPreset(MaxSkillLevel)
	if !strings.Contains(reqs[0].Prompt, master.Style) {
		t.Fatalf("hint prompt lacks master style text")
	}
	if h.Move != "e2e4" || h.Category != CategoryCenter || h.From != "e2" || h.To != "e4" || h.SAN != "e4" {
		t.Fatalf("hint = %+v", h)
	}
	if h.Degraded || h.Path != PathModel || h.Explanation == "" {
		t.Fatalf("hint should come from the model: %+v", h)
	}
}

func TestCoachHintDegrades(t *testing.T) {
	coach := NewCoach(NewEngine(llm.Static{Err: llm.ErrTransport}, WithRandomSeed(5)), nil, nil)
	b := NewBoard()
	h, err := coach.Hint(context.Background(), b, HintBasic)
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if !h.Degraded || h.Path != PathRandom {
		t.Fatalf("hint should be degraded: %+v", h)
	}
	if !b.IsLegal(h.Move) || h.Explanation == "" {
		t.Fatalf("degraded hint must still be legal and explained: %+v", h)
	}
}

func TestCoachHintErrors(t *testing.T) {
	coach := NewCoach(NewEngine(llm.Static{Text: "e2e4"}), nil, nil)
	if _, err := coach.Hint(context.Background(), mustFEN(t, matedFEN), HintBasic); !errors.Is(err, ErrTerminalPosition) {
		t.Fatalf("terminal hint err = %v", err)
	}
	if _, err := coach.Hint(context.Background(), NewBoard(), "expert"); err == nil {
		t.Fatalf("unknown hint level should fail")
	}
}

func TestCoachHintOpeningNote(t *testing.T) {
	b, err := NewBoardFromMoves([]Move{"e2e4", "c7c5"})
	if err != nil {
		t.Fatalf("NewBoardFromMoves: %v", err)
	}
	coach := NewCoach(NewEngine(llm.Static{Text: "g1f3"}, WithPresets(noBlunders())), nil, nil)
	h, err := coach.Hint(context.Background(), b, HintAdvanced)
	if err != nil {
		t.Fatalf("Hint: %v", err)
	}
	if h.OpeningCode == "" || !strings.Contains(h.OpeningNote, h.OpeningCode) {
		t.Fatalf("advanced hint should name the opening: %+v", h)
	}
}
