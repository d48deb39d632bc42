package chess

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

type Candidate struct {
	Move  Move
	Score float64
	Eval  Evaluation
}

// Shortlist scores every legal move, sorts them best first and keeps the
// share the preset lets the player see. Ties keep their input order.
func Shortlist(pos Position, legal []Move, p SkillPreset, s *Scorer) ([]Candidate, error) {
	if len(legal) == 0 {
		return nil, &TerminalError{State: terminalOf(pos)}
	}
	if s == nil {
		return nil, errors.New("shortlist requires a scorer")
	}

	candidates := make([]Candidate, 0, len(legal))
	for _, mv := range legal {
		ev, err := s.Evaluate(pos, mv)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{
			Move:  mv,
			Score: ev.Total(p.SeesHanging),
			Eval:  ev,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates[:VisibleCount(len(candidates), p.VisibleFraction)], nil
}

// VisibleCount is ceil(n * fraction), never below one and never above n.
func VisibleCount(n int, fraction float64) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Ceil(float64(n)*fraction - 1e-9))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

func pickUniform(moves []Move, r *rand.Rand) Move {
	if len(moves) == 0 {
		return ""
	}
	return moves[r.Intn(len(moves))]
}

func candidateMoves(cands []Candidate) []Move {
	out := make([]Move, len(cands))
	for i, c := range cands {
		out[i] = c.Move
	}
	return out
}

func terminalOf(pos Position) Terminal {
	if pos == nil {
		return Stalemate
	}
	if t := pos.Terminal(); t != NotTerminal {
		return t
	}
	if pos.InCheck() {
		return Checkmate
	}
	return Stalemate
}
