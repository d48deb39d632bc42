package chess

import (
	"fmt"
	"math/rand"
)

const (
	checkmateBonus    = 1000.0
	captureMultiplier = 10.0
	checkBonus        = 15.0
	centerBonus       = 5.0
	developmentBonus  = 3.0
	hangingMultiplier = 10.0
)

var centerSquares = map[string]struct{}{
	"d4": {}, "e4": {}, "d5": {}, "e5": {},
}

// Evaluation is the per-term breakdown of one candidate score.
type Evaluation struct {
	Checkmate bool
	Check     bool
	Captured  PieceType
	Center    bool
	Develops  bool
	Hanging   bool

	Material   float64
	Positional float64
	Penalty    float64
	Jitter     float64
}

// Total sums the terms. The hanging penalty is counted only when asked.
func (e Evaluation) Total(withHanging bool) float64 {
	total := e.Material + e.Positional + e.Jitter
	if e.Checkmate {
		total += checkmateBonus
	}
	if withHanging {
		total -= e.Penalty
	}
	return total
}

// Scorer is not safe for concurrent use; build one per request.
type Scorer struct {
	jitter float64
	rand   *rand.Rand
}

func NewScorer(jitter float64, r *rand.Rand) *Scorer {
	if jitter < 0 {
		jitter = 0
	}
	return &Scorer{jitter: jitter, rand: r}
}

func (s *Scorer) Score(pos Position, m Move) (float64, error) {
	ev, err := s.Evaluate(pos, m)
	if err != nil {
		return 0, err
	}
	return ev.Total(true), nil
}

func (s *Scorer) Evaluate(pos Position, m Move) (Evaluation, error) {
	if !m.Valid() {
		return Evaluation{}, fmt.Errorf("%w: malformed %q", ErrIllegalCandidate, string(m))
	}
	if !pos.IsLegal(m) {
		return Evaluation{}, fmt.Errorf("%w: %s", ErrIllegalCandidate, m)
	}

	var ev Evaluation
	mover := pos.Turn()
	moved := pos.PieceAt(m.From())

	next, err := pos.Apply(m)
	if err != nil {
		return Evaluation{}, err
	}
	ev.Checkmate = next.Terminal() == Checkmate

	if captured, ok := pos.Capture(m); ok {
		ev.Captured = captured
		ev.Material = float64(captured.Value()) * captureMultiplier
	}
	if pos.GivesCheck(m) || next.InCheck() {
		ev.Check = true
		ev.Positional += checkBonus
	}
	if _, ok := centerSquares[m.To()]; ok {
		ev.Center = true
		ev.Positional += centerBonus
	}
	if developsPiece(moved, m) {
		ev.Develops = true
		ev.Positional += developmentBonus
	}

	if !ev.Checkmate {
		landed := next.PieceAt(m.To())
		if landed.Type != King && next.IsAttacked(m.To(), mover.Other()) && !next.IsDefended(m.To(), mover) {
			ev.Hanging = true
			ev.Penalty = float64(landed.Type.Value()) * hangingMultiplier
		}
	}

	if s.jitter > 0 && s.rand != nil {
		ev.Jitter = (s.rand.Float64()*2 - 1) * s.jitter
	}
	return ev, nil
}

func homeRank(c Color) int {
	if c == Black {
		return 8
	}
	return 1
}

func developsPiece(p Piece, m Move) bool {
	switch p.Type {
	case Knight, Bishop, Rook, Queen:
	default:
		return false
	}
	home := homeRank(p.Color)
	return rankOf(m.From()) == home && rankOf(m.To()) != home
}
