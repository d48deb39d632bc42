package chesspresenter

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
	"github.com/park285/Cheese-Coach-bot/internal/domain"
	svc "github.com/park285/Cheese-Coach-bot/internal/service/chess"
	"github.com/park285/Cheese-Coach-bot/pkg/chessdto"
)

func TestToDecisionDegraded(t *testing.T) {
	cases := []struct {
		path corechess.Path
		want bool
	}{
		{corechess.PathModel, false},
		{corechess.PathBlunder, false},
		{corechess.PathForced, false},
		{corechess.PathHeuristic, true},
		{corechess.PathRandom, true},
	}
	for _, tc := range cases {
		got := ToDecision(&domain.Decision{Move: "e7e5", Path: string(tc.path), Duration: 1500 * time.Millisecond})
		if got.Degraded != tc.want || got.LatencyMS != 1500 {
			t.Fatalf("%s: got %+v", tc.path, got)
		}
	}
	if ToDecision(nil) != nil {
		t.Fatalf("nil decision should map to nil")
	}
}

func TestToHint(t *testing.T) {
	res := &svc.HintResult{
		Hint: corechess.Hint{
			Move:        "g1f3",
			SAN:         "Nf3",
			From:        "g1",
			To:          "f3",
			Category:    corechess.CategoryDevelopment,
			Level:       corechess.HintAdvanced,
			Explanation: "Develop the knight.",
			Path:        corechess.PathModel,
			OpeningCode: "C20",
			OpeningName: "King's Pawn Game",
		},
		Image: []byte{1, 2, 3},
	}
	want := &chessdto.HintResponse{
		Move:        "g1f3",
		SAN:         "Nf3",
		From:        "g1",
		To:          "f3",
		Category:    "development",
		Level:       "advanced",
		Explanation: "Develop the knight.",
		Path:        "model",
		Opening:     "C20 King's Pawn Game",
		ImagePNG:    "AQID",
	}
	if diff := cmp.Diff(want, ToHint(res)); diff != "" {
		t.Fatalf("hint mismatch (-want +got):\n%s", diff)
	}
}

func TestToBoardCopies(t *testing.T) {
	st := &svc.GameState{
		SessionID:  "s",
		Turn:       corechess.Black,
		LegalMoves: []corechess.Move{"e7e5"},
		Pieces:     map[string]string{"e1": "K"},
		Moves:      []string{"e2e4"},
		SkillLevel: 3,
	}
	out := ToBoard(st)
	out.Pieces["e1"] = "Q"
	out.Moves[0] = "d2d4"
	if st.Pieces["e1"] != "K" || st.Moves[0] != "e2e4" {
		t.Fatalf("presenter aliased service state")
	}
	if out.Turn != "black" || len(out.LegalMoves) != 1 || out.LegalMoves[0] != "e7e5" {
		t.Fatalf("board = %+v", out)
	}
}

func TestToSkillLevel(t *testing.T) {
	got := ToSkillLevel(corechess.MaxSkillLevel)
	if got.SkillLevel != 10 || got.Label == "" || got.Description == "" {
		t.Fatalf("skill = %+v", got)
	}
}
