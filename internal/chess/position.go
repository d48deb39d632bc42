package chess

import "errors"

var (
	ErrTerminalPosition = errors.New("position has no legal moves")
	ErrIllegalCandidate = errors.New("move is not legal in this position")
)

type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

type PieceType uint8

const (
	NoPieceType PieceType = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var pieceValues = map[PieceType]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
}

func (p PieceType) Value() int { return pieceValues[p] }

func (p PieceType) String() string {
	switch p {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	default:
		return ""
	}
}

type Piece struct {
	Type  PieceType
	Color Color
}

func (p Piece) Empty() bool { return p.Type == NoPieceType }

type Terminal uint8

const (
	NotTerminal Terminal = iota
	Checkmate
	Stalemate
)

func (t Terminal) String() string {
	switch t {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "none"
	}
}

// TerminalError reports a request against a position with no legal moves.
type TerminalError struct {
	State Terminal
}

func (e *TerminalError) Error() string {
	return ErrTerminalPosition.Error() + ": " + e.State.String()
}

func (e *TerminalError) Unwrap() error { return ErrTerminalPosition }

// Position is the read-only view of the rules engine the core works against.
// Implementations must never mutate themselves; Apply returns a derived copy.
type Position interface {
	Turn() Color
	InCheck() bool
	LegalMoves() []Move
	IsLegal(m Move) bool
	GivesCheck(m Move) bool
	Capture(m Move) (PieceType, bool)
	PieceAt(square string) Piece
	IsAttacked(square string, by Color) bool
	IsDefended(square string, by Color) bool
	Apply(m Move) (Position, error)
	Terminal() Terminal
	FEN() string
	SAN(m Move) string
}

// OpeningNamer is implemented by positions that remember how they were reached.
type OpeningNamer interface {
	Opening() (code, title string)
}
