package chesspresenter

import (
	"encoding/base64"
	"strings"
	"time"

	corechess "github.com/park285/Cheese-Coach-bot/internal/chess"
	"github.com/park285/Cheese-Coach-bot/internal/domain"
	svc "github.com/park285/Cheese-Coach-bot/internal/service/chess"
	"github.com/park285/Cheese-Coach-bot/internal/settings"
	"github.com/park285/Cheese-Coach-bot/pkg/chessdto"
)

func ToBoard(s *svc.GameState) *chessdto.BoardState {
	if s == nil {
		return nil
	}
	legal := make([]string, 0, len(s.LegalMoves))
	for _, m := range s.LegalMoves {
		legal = append(legal, string(m))
	}
	pieces := make(map[string]string, len(s.Pieces))
	for sq, p := range s.Pieces {
		pieces[sq] = p
	}
	return &chessdto.BoardState{
		SessionID:    s.SessionID,
		FEN:          s.FEN,
		Turn:         s.Turn.String(),
		InCheck:      s.InCheck,
		Checkmate:    s.Checkmate,
		Stalemate:    s.Stalemate,
		GameOver:     s.GameOver,
		Result:       s.Result,
		Method:       s.Method,
		LegalMoves:   legal,
		Pieces:       pieces,
		Moves:        append([]string{}, s.Moves...),
		SkillLevel:   s.SkillLevel,
		SkillLabel:   s.SkillLabel,
		Opening:      s.Opening,
		LastDecision: ToDecision(s.LastDecision),
	}
}

func ToDecision(d *domain.Decision) *chessdto.Decision {
	if d == nil {
		return nil
	}
	path := corechess.Path(d.Path)
	return &chessdto.Decision{
		Move:       d.Move,
		SAN:        d.SAN,
		Path:       d.Path,
		Failure:    d.Failure,
		Degraded:   path == corechess.PathHeuristic || path == corechess.PathRandom,
		SkillLevel: d.SkillLevel,
		LatencyMS:  d.Duration.Milliseconds(),
	}
}

func ToMove(m *svc.MoveResult) *chessdto.MoveResponse {
	if m == nil {
		return nil
	}
	return &chessdto.MoveResponse{
		Board:      ToBoard(m.State),
		PlayerMove: string(m.PlayerMove),
		PlayerSAN:  m.PlayerSAN,
		Computer:   ToDecision(m.Computer),
		Finished:   m.Finished,
		GameID:     m.GameID,
	}
}

func ToHint(h *svc.HintResult) *chessdto.HintResponse {
	if h == nil {
		return nil
	}
	out := &chessdto.HintResponse{
		Move:        string(h.Hint.Move),
		SAN:         h.Hint.SAN,
		From:        h.Hint.From,
		To:          h.Hint.To,
		Category:    string(h.Hint.Category),
		Level:       string(h.Hint.Level),
		Explanation: h.Hint.Explanation,
		Degraded:    h.Hint.Degraded,
		Path:        string(h.Hint.Path),
	}
	if h.Hint.OpeningCode != "" {
		out.Opening = strings.TrimSpace(h.Hint.OpeningCode + " " + h.Hint.OpeningName)
	}
	if len(h.Image) > 0 {
		out.ImagePNG = base64.StdEncoding.EncodeToString(h.Image)
	}
	return out
}

func ToSkillLevel(level int) *chessdto.SkillLevelResponse {
	out := &chessdto.SkillLevelResponse{SkillLevel: level, Label: corechess.SkillLabel(level)}
	if p, err := corechess.GetPreset(level); err == nil {
		out.Description = p.Style
	}
	return out
}

func ToLearningMode(m settings.LearningMode) *chessdto.LearningModeResponse {
	return &chessdto.LearningModeResponse{Enabled: m.Enabled, HintLevel: string(m.HintLevel)}
}

func ToGames(list []*domain.GameRecord) []*chessdto.GameSummary {
	out := make([]*chessdto.GameSummary, 0, len(list))
	for _, g := range list {
		if g == nil {
			continue
		}
		out = append(out, &chessdto.GameSummary{
			ID:         g.ID,
			SessionID:  g.SessionID,
			SkillLevel: g.SkillLevel,
			Result:     g.Result,
			Method:     g.Method,
			MovesSAN:   append([]string{}, g.MovesSAN...),
			EndedAt:    g.EndedAt.UTC().Format(time.RFC3339),
			DurationMS: g.Duration.Milliseconds(),
			Blunders:   g.Blunders,
			Fallbacks:  g.Fallbacks,
		})
	}
	return out
}
