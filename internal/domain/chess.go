package domain

import "time"

// GameRecord is a finished coaching game as stored in history.
type GameRecord struct {
	ID         int64
	SessionID  string
	SkillLevel int
	Result     string
	Method     string
	MovesUCI   []string
	MovesSAN   []string
	StartedAt  time.Time
	EndedAt    time.Time
	Duration   time.Duration
	Blunders   int
	Fallbacks  int
	// ModelLatency is the summed generator wall time across computer moves.
	ModelLatency time.Duration
}

// Decision summarizes how the computer picked one move.
type Decision struct {
	Move       string        `json:"move"`
	SAN        string        `json:"san"`
	Path       string        `json:"path"`
	Failure    string        `json:"failure,omitempty"`
	SkillLevel int           `json:"skill_level"`
	Duration   time.Duration `json:"duration"`
}
