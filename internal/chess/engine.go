package chess

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Coach-bot/internal/llm"
	"github.com/park285/Cheese-Coach-bot/internal/msgcat"
)

const DefaultGenerateTimeout = 20 * time.Second

// Generator is the text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// Path records which branch of the selector produced the final move.
type Path string

const (
	PathModel     Path = "model"
	PathBlunder   Path = "blunder"
	PathHeuristic Path = "heuristic"
	PathRandom    Path = "random"
	PathForced    Path = "forced"
)

type FailureKind string

const (
	FailureNone         FailureKind = ""
	FailureTimeout      FailureKind = "timeout"
	FailureTransport    FailureKind = "transport"
	FailureEmpty        FailureKind = "empty"
	FailureUnparsable   FailureKind = "unparsable"
	FailureIllegal      FailureKind = "illegal"
	FailureOffShortlist FailureKind = "off_shortlist"
)

type Decision struct {
	Move      Move
	Path      Path
	Failure   FailureKind
	Suggested Move
	Shortlist []Candidate
	Preset    SkillPreset
	Response  string
	Duration  time.Duration
}

// Degraded is true when the generator's answer was not used.
func (d Decision) Degraded() bool {
	return d.Path == PathHeuristic || d.Path == PathRandom
}

type Engine struct {
	gen     Generator
	catalog *msgcat.Catalog
	presets PresetTable
	timeout time.Duration
	strict  bool
	logger  *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

type Option func(*Engine)

func WithPresets(t PresetTable) Option {
	return func(e *Engine) { e.presets = t }
}

func WithGenerateTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithStrictShortlist makes legal moves outside the shortlist fall back to
// the heuristic pick instead of being accepted.
func WithStrictShortlist(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

func WithCatalog(c *msgcat.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithRandomSeed(seed int64) Option {
	return func(e *Engine) { e.rand = rand.New(rand.NewSource(seed)) }
}

func NewEngine(gen Generator, opts ...Option) *Engine {
	if gen == nil {
		gen = llm.Offline{}
	}
	e := &Engine{
		gen:     gen,
		presets: DefaultPresets,
		timeout: DefaultGenerateTimeout,
		logger:  zap.NewNop(),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		if cat, err := msgcat.Default(); err == nil {
			e.catalog = cat
		}
	}
	return e
}

// ChooseMove always returns a legal move for a non-terminal position.
// Generator failures are absorbed into the fallback paths.
func (e *Engine) ChooseMove(ctx context.Context, pos Position, legal []Move, level int) (Decision, error) {
	start := time.Now()

	preset, err := e.presets.Get(level)
	if err != nil {
		return Decision{}, err
	}
	if pos == nil {
		return Decision{}, errors.New("choose move: nil position")
	}
	if len(legal) == 0 {
		return Decision{}, &TerminalError{State: terminalOf(pos)}
	}

	randSrc := e.random()

	if len(legal) == 1 {
		if !pos.IsLegal(legal[0]) {
			return Decision{}, fmt.Errorf("%w: %s", ErrIllegalCandidate, legal[0])
		}
		return Decision{
			Move:     legal[0],
			Path:     PathForced,
			Preset:   preset,
			Duration: time.Since(start),
		}, nil
	}

	shortlist, err := Shortlist(pos, legal, preset, NewScorer(preset.Jitter, randSrc))
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Shortlist: shortlist, Preset: preset}
	text, genErr := e.generate(ctx, BuildPrompt(e.catalog, pos, preset, shortlist), preset)
	d.Response = text

	switch {
	case genErr != nil:
		d.Failure = mapGeneratorError(genErr)
		d.Move, d.Path = pickUniform(candidateMoves(shortlist), randSrc), PathRandom
	case strings.TrimSpace(text) == "":
		d.Failure = FailureEmpty
		d.Move, d.Path = pickUniform(candidateMoves(shortlist), randSrc), PathRandom
	default:
		suggested, ok := ExtractMove(text)
		d.Suggested = suggested
		switch {
		case !ok:
			d.Failure = FailureUnparsable
			d.Move, d.Path = pickUniform(candidateMoves(shortlist), randSrc), PathRandom
		case !containsMove(legal, suggested) || !pos.IsLegal(suggested):
			d.Failure = FailureIllegal
			d.Move, d.Path = shortlist[0].Move, PathHeuristic
		case e.strict && !containsMove(candidateMoves(shortlist), suggested):
			d.Failure = FailureOffShortlist
			d.Move, d.Path = shortlist[0].Move, PathHeuristic
		case preset.BlunderProbability > 0 && randSrc.Float64() < preset.BlunderProbability:
			d.Move, d.Path = pickUniform(legal, randSrc), PathBlunder
		default:
			d.Move, d.Path = suggested, PathModel
		}
	}
	d.Duration = time.Since(start)

	fields := []zap.Field{
		zap.Int("level", level),
		zap.String("move", string(d.Move)),
		zap.String("path", string(d.Path)),
		zap.Int("shortlist", len(shortlist)),
		zap.Duration("took", d.Duration),
	}
	if d.Failure != FailureNone {
		fields = append(fields, zap.String("failure", string(d.Failure)))
		if genErr != nil {
			fields = append(fields, zap.Error(genErr))
		}
		e.logger.Warn("move_selector_fallback", fields...)
	} else {
		e.logger.Debug("move_selected", fields...)
	}
	return d, nil
}

func (e *Engine) generate(ctx context.Context, prompt string, p SkillPreset) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.gen.Generate(callCtx, llm.Request{
		Prompt:      prompt,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		Timeout:     e.timeout,
	})
}

func mapGeneratorError(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case llm.IsTimeout(err):
		return FailureTimeout
	case errors.Is(err, llm.ErrEmptyResponse):
		return FailureEmpty
	default:
		return FailureTransport
	}
}

func (e *Engine) random() *rand.Rand {
	e.randMu.Lock()
	seed := e.rand.Int63()
	e.randMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (e *Engine) SetRandomSeed(seed int64) {
	e.randMu.Lock()
	e.rand = rand.New(rand.NewSource(seed))
	e.randMu.Unlock()
}

func (e *Engine) Presets() PresetTable { return e.presets }
