package chess

import (
	"fmt"
	"strings"

	"github.com/park285/Cheese-Coach-bot/internal/msgcat"
)

const promptKey = "prompt.move"

// BuildPrompt renders the move prompt from the catalog, falling back to a
// built-in layout when the catalog is missing or the template fails.
func BuildPrompt(cat *msgcat.Catalog, pos Position, p SkillPreset, shortlist []Candidate) string {
	moves := make([]string, len(shortlist))
	for i, c := range shortlist {
		moves[i] = string(c.Move)
	}
	data := map[string]any{
		"Style":      p.Style,
		"Label":      p.Label,
		"Level":      p.Level,
		"FEN":        pos.FEN(),
		"Side":       pos.Turn().String(),
		"Candidates": strings.Join(moves, ", "),
	}
	if cat != nil {
		if out, err := cat.Render(promptKey, data); err == nil {
			return out
		}
	}
	return fmt.Sprintf(
		"%s\nAnalyze this chess position in FEN notation:\n%s\n\nYou are playing as %s. Candidate moves in UCI notation:\n%s\n\nRespond with only the UCI notation of the move (e.g., 'e2e4').",
		p.Style, data["FEN"], data["Side"], data["Candidates"],
	)
}
