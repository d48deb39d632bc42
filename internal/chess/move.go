package chess

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedMove = errors.New("malformed move token")

// Move is a coordinate token such as "e2e4" or "e7e8q".
// Two moves are equal only when their tokens are byte-identical.
type Move string

func ParseMove(raw string) (Move, error) {
	token := strings.ToLower(strings.TrimSpace(raw))
	mv := Move(token)
	if !mv.Valid() {
		return "", fmt.Errorf("%w: %q", ErrMalformedMove, raw)
	}
	return mv, nil
}

func (m Move) Valid() bool {
	s := string(m)
	if len(s) != 4 && len(s) != 5 {
		return false
	}
	if !isSquare(s[0:2]) || !isSquare(s[2:4]) {
		return false
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}
	return true
}

func (m Move) From() string {
	if len(m) < 4 {
		return ""
	}
	return string(m[0:2])
}

func (m Move) To() string {
	if len(m) < 4 {
		return ""
	}
	return string(m[2:4])
}

// Promotion returns the promotion letter, or 0 for non-promoting moves.
func (m Move) Promotion() byte {
	if len(m) != 5 {
		return 0
	}
	return m[4]
}

func (m Move) String() string { return string(m) }

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

func squareIndex(s string) (int, bool) {
	if !isSquare(s) {
		return 0, false
	}
	return int(s[1]-'1')*8 + int(s[0]-'a'), true
}

func squareName(idx int) string {
	return string([]byte{byte('a' + idx%8), byte('1' + idx/8)})
}

func fileDistance(a, b string) int {
	if len(a) < 1 || len(b) < 1 {
		return 0
	}
	d := int(a[0]) - int(b[0])
	if d < 0 {
		return -d
	}
	return d
}

func rankOf(square string) int {
	if len(square) != 2 {
		return 0
	}
	return int(square[1] - '0')
}

func containsMove(moves []Move, target Move) bool {
	for _, mv := range moves {
		if mv == target {
			return true
		}
	}
	return false
}
