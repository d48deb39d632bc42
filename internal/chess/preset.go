package chess

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinSkillLevel = 1
	MaxSkillLevel = 10

	temperatureFloor = 0.1
	temperatureScale = 0.9
)

var ErrInvalidSkillLevel = errors.New("skill level out of range 1-10")

type SkillPreset struct {
	Level              int
	Label              string
	Style              string
	Temperature        float64
	TopP               float64
	BlunderProbability float64
	VisibleFraction    float64
	Jitter             float64
	SeesHanging        bool
}

// PresetTable holds one row per level, index 0 being level 1.
type PresetTable [MaxSkillLevel]SkillPreset

var DefaultPresets = PresetTable{
	{
		Level:              1,
		Label:              "Complete Beginner",
		Style:              "You are a complete beginner who just learned how the pieces move. Prefer simple, obvious moves and do not look for tactics.",
		TopP:               0.95,
		BlunderProbability: 0.50,
		VisibleFraction:    0.40,
		Jitter:             40,
	},
	{
		Level:              2,
		Label:              "Novice",
		Style:              "You are a novice player. Move pieces toward the center and grab material when you notice it, but you often miss threats.",
		TopP:               0.95,
		BlunderProbability: 0.50,
		VisibleFraction:    0.40,
		Jitter:             34,
	},
	{
		Level:              3,
		Label:              "Learning",
		Style:              "You are a player who is still learning. Follow basic opening principles and capture undefended pieces.",
		TopP:               0.95,
		BlunderProbability: 0.35,
		VisibleFraction:    0.40,
		Jitter:             28,
	},
	{
		Level:              4,
		Label:              "Improving",
		Style:              "You are an improving casual player. Develop your pieces, keep your king safe and avoid leaving pieces hanging.",
		TopP:               0.90,
		BlunderProbability: 0.35,
		VisibleFraction:    0.65,
		Jitter:             22,
		SeesHanging:        true,
	},
	{
		Level:              5,
		Label:              "Intermediate",
		Style:              "You are an intermediate player. Play solid, sensible moves and take simple tactics when they appear.",
		TopP:               0.90,
		BlunderProbability: 0.20,
		VisibleFraction:    0.65,
		Jitter:             16,
		SeesHanging:        true,
	},
	{
		Level:              6,
		Label:              "Club Player",
		Style:              "You are a club player. Look for forcing moves, control the center and coordinate your pieces.",
		TopP:               0.90,
		BlunderProbability: 0.20,
		VisibleFraction:    0.65,
		Jitter:             12,
		SeesHanging:        true,
	},
	{
		Level:              7,
		Label:              "Strong Player",
		Style:              "You are a strong tournament player. Calculate checks and captures before choosing a plan.",
		TopP:               0.80,
		BlunderProbability: 0.10,
		VisibleFraction:    0.80,
		Jitter:             8,
		SeesHanging:        true,
	},
	{
		Level:              8,
		Label:              "Advanced",
		Style:              "You are an advanced player with sharp tactical vision and good positional understanding.",
		TopP:               0.80,
		BlunderProbability: 0.10,
		VisibleFraction:    0.80,
		Jitter:             4,
		SeesHanging:        true,
	},
	{
		Level:              9,
		Label:              "Expert",
		Style:              "You are an expert player. Choose precise moves and punish every inaccuracy.",
		TopP:               0.80,
		BlunderProbability: 0.05,
		VisibleFraction:    0.80,
		Jitter:             2,
		SeesHanging:        true,
	},
	{
		Level:              10,
		Label:              "Master",
		Style:              "You are a chess master. Play the objectively best move in the position.",
		TopP:               0.70,
		BlunderProbability: 0,
		VisibleFraction:    1.0,
		Jitter:             0,
		SeesHanging:        true,
	},
}

func init() {
	for i := range DefaultPresets {
		DefaultPresets[i].Temperature = TemperatureFor(DefaultPresets[i].Level)
	}
}

// TemperatureFor returns max(0.1, 1 - level/10*0.9) rounded to two decimals.
func TemperatureFor(level int) float64 {
	t := 1 - float64(level)/10*temperatureScale
	t = math.Round(t*100) / 100
	if t < temperatureFloor {
		return temperatureFloor
	}
	return t
}

func GetPreset(level int) (SkillPreset, error) {
	return DefaultPresets.Get(level)
}

func (t PresetTable) Get(level int) (SkillPreset, error) {
	if level < MinSkillLevel || level > MaxSkillLevel {
		return SkillPreset{}, fmt.Errorf("%w: %d", ErrInvalidSkillLevel, level)
	}
	return t[level-1], nil
}

// With returns a copy of the table with one level's row rewritten by fn.
func (t PresetTable) With(level int, fn func(*SkillPreset)) PresetTable {
	if level < MinSkillLevel || level > MaxSkillLevel || fn == nil {
		return t
	}
	fn(&t[level-1])
	t[level-1].Level = level
	return t
}

// WithAll applies fn to every row of a copy of the table.
func (t PresetTable) WithAll(fn func(*SkillPreset)) PresetTable {
	for level := MinSkillLevel; level <= MaxSkillLevel; level++ {
		t = t.With(level, fn)
	}
	return t
}

func SkillLabel(level int) string {
	p, err := GetPreset(level)
	if err != nil {
		return DefaultPresets[4].Label
	}
	return p.Label
}

// ParseSkillLevel accepts a numeric level or a label such as "club player".
func ParseSkillLevel(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		if n < MinSkillLevel || n > MaxSkillLevel {
			return 0, fmt.Errorf("%w: %d", ErrInvalidSkillLevel, n)
		}
		return n, nil
	}
	for _, p := range DefaultPresets {
		if strings.EqualFold(p.Label, s) {
			return p.Level, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSkillLevel, raw)
}

func ValidatePreset(p SkillPreset) error {
	switch {
	case p.Level < MinSkillLevel || p.Level > MaxSkillLevel:
		return fmt.Errorf("%w: %d", ErrInvalidSkillLevel, p.Level)
	case strings.TrimSpace(p.Style) == "":
		return fmt.Errorf("level %d style text must not be empty", p.Level)
	case p.Temperature < temperatureFloor || p.Temperature > 1:
		return fmt.Errorf("level %d temperature %.2f out of range [0.1,1]", p.Level, p.Temperature)
	case p.TopP <= 0 || p.TopP > 1:
		return fmt.Errorf("level %d top-p %.2f out of range (0,1]", p.Level, p.TopP)
	case p.BlunderProbability < 0 || p.BlunderProbability > 1:
		return fmt.Errorf("level %d blunder probability %.2f out of range [0,1]", p.Level, p.BlunderProbability)
	case p.VisibleFraction <= 0 || p.VisibleFraction > 1:
		return fmt.Errorf("level %d visible fraction %.2f out of range (0,1]", p.Level, p.VisibleFraction)
	case p.Jitter < 0 || math.IsNaN(p.Jitter) || math.IsInf(p.Jitter, 0):
		return fmt.Errorf("level %d jitter must be finite and >= 0: %f", p.Level, p.Jitter)
	}
	return nil
}

// Validate checks every row and the ordering between adjacent levels.
func (t PresetTable) Validate() error {
	for i, p := range t {
		if p.Level != i+1 {
			return fmt.Errorf("row %d holds level %d", i, p.Level)
		}
		if err := ValidatePreset(p); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		switch {
		case p.VisibleFraction < prev.VisibleFraction:
			return fmt.Errorf("visible fraction decreases at level %d", p.Level)
		case p.BlunderProbability > prev.BlunderProbability:
			return fmt.Errorf("blunder probability increases at level %d", p.Level)
		case p.Temperature > prev.Temperature:
			return fmt.Errorf("temperature increases at level %d", p.Level)
		case p.Jitter > prev.Jitter:
			return fmt.Errorf("jitter increases at level %d", p.Level)
		}
	}
	return nil
}
