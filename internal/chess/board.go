package chess

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

type moveInfo struct {
	check     bool
	capture   bool
	enPassant bool
	castle    bool
}

// Board adapts a corentings game to the Position interface.
type Board struct {
	game     *nchess.Game
	fen      string
	turn     Color
	inCheck  bool
	terminal Terminal
	squares  placement
	moves    []Move
	info     map[Move]moveInfo
}

var _ Position = (*Board)(nil)
var _ OpeningNamer = (*Board)(nil)

func NewBoard() *Board {
	return fromGame(nchess.NewGame())
}

func NewBoardFromFEN(fen string) (*Board, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return fromGame(nchess.NewGame(opt)), nil
}

// NewBoardFromMoves replays coordinate moves from the standard start.
func NewBoardFromMoves(moves []Move) (*Board, error) {
	game := nchess.NewGame()
	for i, mv := range moves {
		if err := game.PushNotationMove(string(mv), nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay ply %d (%s): %w", i+1, mv, err)
		}
	}
	return fromGame(game), nil
}

func fromGame(game *nchess.Game) *Board {
	b := &Board{
		game: game,
		fen:  game.FEN(),
		info: make(map[Move]moveInfo),
	}
	pos := game.Position()
	b.turn = colorFromLib(pos.Turn())
	b.squares, _ = parsePlacement(b.fen)

	for _, mv := range game.ValidMoves() {
		token := Move(mv.String())
		b.moves = append(b.moves, token)
		b.info[token] = moveInfo{
			check:     mv.HasTag(nchess.Check),
			capture:   mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant),
			enPassant: mv.HasTag(nchess.EnPassant),
			castle:    mv.HasTag(nchess.KingSideCastle) || mv.HasTag(nchess.QueenSideCastle),
		}
	}
	slices.Sort(b.moves)

	switch pos.Status() {
	case nchess.Checkmate:
		b.terminal = Checkmate
		b.inCheck = true
	case nchess.Stalemate:
		b.terminal = Stalemate
	default:
		if king, ok := b.squares.kingSquare(b.turn); ok {
			b.inCheck = b.squares.reachable(king, b.turn.Other())
		}
		if len(b.moves) == 0 {
			b.terminal = Stalemate
			if b.inCheck {
				b.terminal = Checkmate
			}
		}
	}
	return b
}

func (b *Board) Turn() Color { return b.turn }

func (b *Board) InCheck() bool { return b.inCheck }

func (b *Board) LegalMoves() []Move { return slices.Clone(b.moves) }

func (b *Board) IsLegal(m Move) bool {
	_, ok := b.info[m]
	return ok
}

func (b *Board) GivesCheck(m Move) bool { return b.info[m].check }

func (b *Board) IsCastle(m Move) bool { return b.info[m].castle }

func (b *Board) Capture(m Move) (PieceType, bool) {
	info, ok := b.info[m]
	if !ok || !info.capture {
		return NoPieceType, false
	}
	if info.enPassant {
		return Pawn, true
	}
	idx, ok := squareIndex(m.To())
	if !ok {
		return NoPieceType, false
	}
	return b.squares.piece(idx).Type, true
}

func (b *Board) PieceAt(square string) Piece {
	idx, ok := squareIndex(square)
	if !ok {
		return Piece{}
	}
	return b.squares.piece(idx)
}

// IsAttacked reports whether side by has a legal capture landing on square
// if it were to move now. Pawn pushes do not count.
func (b *Board) IsAttacked(square string, by Color) bool {
	idx, ok := squareIndex(square)
	if !ok {
		return false
	}
	return b.squares.reachable(idx, by)
}

// IsDefended reports whether by could recapture on square, which must hold
// one of by's own non-king pieces.
func (b *Board) IsDefended(square string, by Color) bool {
	idx, ok := squareIndex(square)
	if !ok {
		return false
	}
	p := b.squares.piece(idx)
	if p.Empty() || p.Color != by || p.Type == King {
		return false
	}
	return b.squares.reachable(idx, by)
}

func (b *Board) Apply(m Move) (Position, error) {
	return b.apply(m)
}

func (b *Board) apply(m Move) (*Board, error) {
	if !b.IsLegal(m) {
		return nil, fmt.Errorf("%w: %s", ErrIllegalCandidate, m)
	}
	next := b.game.Clone()
	if err := next.PushNotationMove(string(m), nchess.UCINotation{}, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIllegalCandidate, m, err)
	}
	return fromGame(next), nil
}

func (b *Board) Terminal() Terminal { return b.terminal }

func (b *Board) FEN() string { return b.fen }

func (b *Board) SAN(m Move) string {
	pos := b.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, string(m))
	if err != nil {
		return string(m)
	}
	return nchess.AlgebraicNotation{}.Encode(pos, mv)
}

// DecodeMove accepts coordinate notation first and falls back to SAN.
func (b *Board) DecodeMove(text string) (Move, error) {
	if m, err := ParseMove(text); err == nil && b.IsLegal(m) {
		return m, nil
	}
	pos := b.game.Position()
	mv, err := nchess.AlgebraicNotation{}.Decode(pos, strings.TrimSpace(text))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrIllegalCandidate, text)
	}
	m := Move(mv.String())
	if !b.IsLegal(m) {
		return "", fmt.Errorf("%w: %q", ErrIllegalCandidate, text)
	}
	return m, nil
}

// Outcome reports the game result ("*" while running) and how it ended.
func (b *Board) Outcome() (string, string) {
	outcome := b.game.Outcome()
	if outcome == nchess.NoOutcome {
		return string(outcome), ""
	}
	return string(outcome), strings.ToLower(b.game.Method().String())
}

// History returns the coordinate moves played since the game root.
func (b *Board) History() []Move {
	moves := b.game.Moves()
	out := make([]Move, 0, len(moves))
	for _, mv := range moves {
		out = append(out, Move(mv.String()))
	}
	return out
}

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

func (b *Board) Opening() (string, string) {
	moves := b.game.Moves()
	if len(moves) == 0 {
		return "", ""
	}
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	op := ecoBook.Find(moves)
	if op == nil {
		return "", ""
	}
	return op.Code(), op.Title()
}

// reachable swaps a ghost target onto idx and asks the rules engine whether
// side by has any legal capture onto it.
func (p placement) reachable(idx int, by Color) bool {
	probe := p
	target := probe.piece(idx)
	switch {
	case target.Empty():
		probe[idx] = pieceLetter(Piece{Type: Knight, Color: by.Other()})
	case target.Color == by:
		if target.Type == King {
			return false
		}
		probe[idx] = pieceLetter(Piece{Type: target.Type, Color: by.Other()})
	}

	opt, err := nchess.FEN(probe.probeFEN(by))
	if err != nil {
		return false
	}
	game := nchess.NewGame(opt)
	want := squareName(idx)
	for _, mv := range game.ValidMoves() {
		token := mv.String()
		if len(token) < 4 || token[2:4] != want {
			continue
		}
		from, ok := squareIndex(token[0:2])
		if !ok {
			continue
		}
		if probe.piece(from).Type == Pawn && token[0] == token[2] {
			continue
		}
		return true
	}
	return false
}

func colorFromLib(c nchess.Color) Color {
	switch c {
	case nchess.White:
		return White
	case nchess.Black:
		return Black
	default:
		return NoColor
	}
}
