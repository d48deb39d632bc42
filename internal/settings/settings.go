// Package settings holds the process-wide skill level and learning mode.
package settings

import (
	"fmt"
	"sync"

	"github.com/park285/Cheese-Coach-bot/internal/chess"
)

const DefaultSkillLevel = 5

type LearningMode struct {
	Enabled   bool            `json:"enabled"`
	HintLevel chess.HintLevel `json:"hint_level"`
}

type Snapshot struct {
	SkillLevel   int          `json:"skill_level"`
	LearningMode LearningMode `json:"learning_mode"`
}

// Store is the single synchronization point for ambient settings.
// Last write wins.
type Store struct {
	mu       sync.RWMutex
	initial  int
	skill    int
	learning LearningMode
}

func New(defaultSkill int) (*Store, error) {
	if defaultSkill == 0 {
		defaultSkill = DefaultSkillLevel
	}
	if _, err := chess.GetPreset(defaultSkill); err != nil {
		return nil, err
	}
	s := &Store{initial: defaultSkill}
	s.Reset()
	return s, nil
}

func (s *Store) SkillLevel() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skill
}

func (s *Store) SetSkillLevel(level int) error {
	if _, err := chess.GetPreset(level); err != nil {
		return err
	}
	s.mu.Lock()
	s.skill = level
	s.mu.Unlock()
	return nil
}

func (s *Store) LearningMode() LearningMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.learning
}

func (s *Store) SetLearningMode(enabled bool, level chess.HintLevel) error {
	lvl, err := chess.ParseHintLevel(string(level))
	if err != nil {
		return fmt.Errorf("set learning mode: %w", err)
	}
	s.mu.Lock()
	s.learning = LearningMode{Enabled: enabled, HintLevel: lvl}
	s.mu.Unlock()
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{SkillLevel: s.skill, LearningMode: s.learning}
}

// Reset restores the startup defaults.
func (s *Store) Reset() {
	s.mu.Lock()
	s.skill = s.initial
	s.learning = LearningMode{Enabled: false, HintLevel: chess.HintBasic}
	s.mu.Unlock()
}
