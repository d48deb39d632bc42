package chess

import (
	"fmt"
	"strings"

	"github.com/park285/Cheese-Coach-bot/internal/msgcat"
)

type Category string

const (
	CategoryCheckmate   Category = "checkmate"
	CategoryCheck       Category = "check"
	CategoryCapture     Category = "capture"
	CategoryCastling    Category = "castling"
	CategoryPromotion   Category = "promotion"
	CategoryCenter      Category = "center"
	CategoryDevelopment Category = "development"
	CategoryGeneral     Category = "general"
)

type HintLevel string

const (
	HintBasic        HintLevel = "basic"
	HintIntermediate HintLevel = "intermediate"
	HintAdvanced     HintLevel = "advanced"
)

var HintLevels = []HintLevel{HintBasic, HintIntermediate, HintAdvanced}

func ParseHintLevel(raw string) (HintLevel, error) {
	lvl := HintLevel(strings.ToLower(strings.TrimSpace(raw)))
	switch lvl {
	case HintBasic, HintIntermediate, HintAdvanced:
		return lvl, nil
	case "":
		return HintBasic, nil
	}
	return "", fmt.Errorf("hint level must be one of: basic, intermediate, advanced (got %q)", raw)
}

// Classify tags a legal move. The first matching rule wins:
// checkmate, check, capture, castling, promotion, center, development, general.
func Classify(pos Position, m Move) Category {
	if next, err := pos.Apply(m); err == nil && next.Terminal() == Checkmate {
		return CategoryCheckmate
	}
	if pos.GivesCheck(m) {
		return CategoryCheck
	}
	if _, ok := pos.Capture(m); ok {
		return CategoryCapture
	}
	moved := pos.PieceAt(m.From())
	if moved.Type == King && fileDistance(m.From(), m.To()) == 2 {
		return CategoryCastling
	}
	if m.Promotion() != 0 {
		return CategoryPromotion
	}
	if _, ok := centerSquares[m.To()]; ok {
		return CategoryCenter
	}
	if !moved.Empty() && moved.Type != King && rankOf(m.From()) == homeRank(moved.Color) {
		return CategoryDevelopment
	}
	return CategoryGeneral
}

type explanationData struct {
	SAN      string
	Piece    string
	From     string
	To       string
	Captured string
	Side     string
}

func (d explanationData) asMap() map[string]any {
	return map[string]any{
		"SAN":      d.SAN,
		"Piece":    d.Piece,
		"From":     d.From,
		"To":       d.To,
		"Captured": d.Captured,
		"Side":     d.Side,
	}
}

func explanationFor(pos Position, m Move) explanationData {
	d := explanationData{
		SAN:   pos.SAN(m),
		Piece: pos.PieceAt(m.From()).Type.String(),
		From:  m.From(),
		To:    m.To(),
		Side:  pos.Turn().String(),
	}
	if d.SAN == "" {
		d.SAN = string(m)
	}
	if d.Piece == "" {
		d.Piece = "piece"
	}
	if captured, ok := pos.Capture(m); ok {
		d.Captured = captured.String()
	}
	return d
}

// Explain renders the (category, level) template. It never fails; a missing
// or broken template degrades to a one-line suggestion.
func Explain(cat *msgcat.Catalog, category Category, level HintLevel, data explanationData) string {
	if cat != nil {
		key := "hint." + string(category) + "." + string(level)
		if out, err := cat.Render(key, data.asMap()); err == nil && out != "" {
			return out
		}
		if out, err := cat.Render("hint.general."+string(level), data.asMap()); err == nil && out != "" {
			return out
		}
	}
	return fmt.Sprintf("Consider %s.", data.SAN)
}
