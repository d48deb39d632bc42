package chess

import (
	"context"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Coach-bot/internal/msgcat"
)

type Hint struct {
	Move        Move
	Category    Category
	Explanation string
	From        string
	To          string
	Level       HintLevel
	SAN         string
	Path        Path
	Degraded    bool
	OpeningCode string
	OpeningName string
	OpeningNote string
}

// Coach is the surface the application talks to: move choice at a given
// skill and hints that always search at full strength.
type Coach struct {
	engine  *Engine
	catalog *msgcat.Catalog
	logger  *zap.Logger
}

func NewCoach(engine *Engine, catalog *msgcat.Catalog, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = engine.catalog
	}
	return &Coach{engine: engine, catalog: catalog, logger: logger}
}

func (c *Coach) Engine() *Engine { return c.engine }

func (c *Coach) ChooseMove(ctx context.Context, pos Position, legal []Move, level int) (Decision, error) {
	return c.engine.ChooseMove(ctx, pos, legal, level)
}

// Hint picks a move at MaxSkillLevel and explains it. The level is passed
// down explicitly so no shared setting is touched.
func (c *Coach) Hint(ctx context.Context, pos Position, level HintLevel) (Hint, error) {
	if _, err := ParseHintLevel(string(level)); err != nil {
		return Hint{}, err
	}
	if level == "" {
		level = HintBasic
	}
	if pos == nil {
		return Hint{}, &TerminalError{State: Stalemate}
	}

	d, err := c.engine.ChooseMove(ctx, pos, pos.LegalMoves(), MaxSkillLevel)
	if err != nil {
		return Hint{}, err
	}

	category := Classify(pos, d.Move)
	data := explanationFor(pos, d.Move)
	h := Hint{
		Move:        d.Move,
		Category:    category,
		Explanation: Explain(c.catalog, category, level, data),
		From:        d.Move.From(),
		To:          d.Move.To(),
		Level:       level,
		SAN:         data.SAN,
		Path:        d.Path,
		Degraded:    d.Degraded(),
	}

	if namer, ok := pos.(OpeningNamer); ok {
		h.OpeningCode, h.OpeningName = namer.Opening()
		if level == HintAdvanced && h.OpeningCode != "" && c.catalog != nil {
			note, err := c.catalog.Render("hint.opening", map[string]any{
				"Code": h.OpeningCode,
				"Name": h.OpeningName,
			})
			if err == nil {
				h.OpeningNote = note
			}
		}
	}

	c.logger.Info("hint_generated",
		zap.String("move", string(h.Move)),
		zap.String("category", string(h.Category)),
		zap.String("level", string(h.Level)),
		zap.String("path", string(h.Path)),
		zap.Bool("degraded", h.Degraded),
	)
	return h, nil
}
