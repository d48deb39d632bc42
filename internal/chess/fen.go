package chess

import (
	"errors"
	"strconv"
	"strings"
)

var errBadPlacement = errors.New("invalid FEN piece placement")

// placement is a mailbox board indexed a1=0 .. h8=63 holding FEN piece letters.
type placement [64]byte

func parsePlacement(fen string) (placement, error) {
	var p placement
	field := fen
	if idx := strings.IndexByte(fen, ' '); idx >= 0 {
		field = fen[:idx]
	}
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return p, errBadPlacement
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if pieceFromLetter(c).Empty() || file > 7 {
				return p, errBadPlacement
			}
			p[rank*8+file] = c
			file++
		}
		if file != 8 {
			return p, errBadPlacement
		}
	}
	return p, nil
}

func (p placement) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			c := p[rank*8+file]
			if c == 0 {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(c)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

func (p placement) piece(idx int) Piece {
	return pieceFromLetter(p[idx])
}

func (p placement) kingSquare(c Color) (int, bool) {
	want := pieceLetter(Piece{Type: King, Color: c})
	for i, v := range p {
		if v == want {
			return i, true
		}
	}
	return 0, false
}

// probeFEN builds a synthetic position with the given side to move and no
// castling or en passant rights. It is only used to enumerate captures.
func (p placement) probeFEN(turn Color) string {
	side := "w"
	if turn == Black {
		side = "b"
	}
	return p.String() + " " + side + " - - 0 1"
}

func pieceFromLetter(c byte) Piece {
	color := White
	if c >= 'a' && c <= 'z' {
		color = Black
		c -= 'a' - 'A'
	}
	var t PieceType
	switch c {
	case 'K':
		t = King
	case 'Q':
		t = Queen
	case 'R':
		t = Rook
	case 'B':
		t = Bishop
	case 'N':
		t = Knight
	case 'P':
		t = Pawn
	default:
		return Piece{}
	}
	return Piece{Type: t, Color: color}
}

func pieceLetter(p Piece) byte {
	var c byte
	switch p.Type {
	case King:
		c = 'K'
	case Queen:
		c = 'Q'
	case Rook:
		c = 'R'
	case Bishop:
		c = 'B'
	case Knight:
		c = 'N'
	case Pawn:
		c = 'P'
	default:
		return 0
	}
	if p.Color == Black {
		c += 'a' - 'A'
	}
	return c
}
