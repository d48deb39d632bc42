package chessdto

type Decision struct {
	Move       string `json:"move"`
	SAN        string `json:"san"`
	Path       string `json:"path"`
	Failure    string `json:"failure,omitempty"`
	Degraded   bool   `json:"degraded"`
	SkillLevel int    `json:"skill_level"`
	LatencyMS  int64  `json:"latency_ms"`
}

type BoardState struct {
	SessionID    string            `json:"session_id"`
	FEN          string            `json:"fen"`
	Turn         string            `json:"turn"`
	InCheck      bool              `json:"in_check"`
	Checkmate    bool              `json:"checkmate"`
	Stalemate    bool              `json:"stalemate"`
	GameOver     bool              `json:"game_over"`
	Result       string            `json:"result"`
	Method       string            `json:"method,omitempty"`
	LegalMoves   []string          `json:"legal_moves"`
	Pieces       map[string]string `json:"pieces"`
	Moves        []string          `json:"moves"`
	SkillLevel   int               `json:"skill_level"`
	SkillLabel   string            `json:"skill_label"`
	Opening      string            `json:"opening,omitempty"`
	LastDecision *Decision         `json:"last_decision,omitempty"`
}

type MoveRequest struct {
	Move     string `json:"move"`
	TestMode bool   `json:"test_mode"`
}

type MoveResponse struct {
	Board      *BoardState `json:"board"`
	PlayerMove string      `json:"player_move"`
	PlayerSAN  string      `json:"player_san"`
	Computer   *Decision   `json:"computer_move,omitempty"`
	Finished   bool        `json:"finished"`
	GameID     int64       `json:"game_id,omitempty"`
}

type GameSummary struct {
	ID         int64    `json:"id"`
	SessionID  string   `json:"session_id"`
	SkillLevel int      `json:"skill_level"`
	Result     string   `json:"result"`
	Method     string   `json:"method"`
	MovesSAN   []string `json:"moves_san"`
	EndedAt    string   `json:"ended_at"`
	DurationMS int64    `json:"duration_ms"`
	Blunders   int      `json:"blunders"`
	Fallbacks  int      `json:"fallbacks"`
}

type HistoryResponse struct {
	Games []*GameSummary `json:"games"`
}
