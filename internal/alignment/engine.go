// Package alignment reconciles an original transcript with a generated one.
//
// Two views are produced from the same resolved intervals: a one-to-one
// alignment of segments by temporal overlap, and a lossless timeline of
// slices cut at every segment boundary. Both are pure functions of their
// inputs; results never alias the caller's slices.
package alignment

import (
	"errors"
	"fmt"
	"math"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// DefaultMatchThreshold is the overlap score at which a pair counts as matched.
const DefaultMatchThreshold = 0.5

// ErrInvalidOptions is returned by NewEngine for unusable options.
var ErrInvalidOptions = errors.New("invalid alignment options")

// Options tunes the engine. Zero fields take their defaults.
type Options struct {
	// FallbackSlotSeconds is the synthetic slot width used when timestamps
	// are missing or out of order.
	FallbackSlotSeconds float64 `json:"fallbackSlotSeconds"`
	// MatchThreshold separates matched from partial pairs.
	MatchThreshold float64 `json:"matchThreshold"`
}

// DefaultOptions returns the options used by AlignSegments and NormalizeTimeline.
func DefaultOptions() Options {
	return Options{
		FallbackSlotSeconds: transcript.DefaultSlotSeconds,
		MatchThreshold:      DefaultMatchThreshold,
	}
}

// Engine runs the alignment and timeline algorithms with fixed options.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine validates opts and returns an engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.FallbackSlotSeconds == 0 {
		opts.FallbackSlotSeconds = transcript.DefaultSlotSeconds
	}
	if opts.MatchThreshold == 0 {
		opts.MatchThreshold = DefaultMatchThreshold
	}

	if opts.FallbackSlotSeconds < 0 || math.IsNaN(opts.FallbackSlotSeconds) || math.IsInf(opts.FallbackSlotSeconds, 0) {
		return nil, fmt.Errorf("%w: fallback slot must be a positive number of seconds, got %v", ErrInvalidOptions, opts.FallbackSlotSeconds)
	}
	if opts.MatchThreshold < 0 || opts.MatchThreshold > 1 || math.IsNaN(opts.MatchThreshold) {
		return nil, fmt.Errorf("%w: match threshold must be in (0, 1], got %v", ErrInvalidOptions, opts.MatchThreshold)
	}

	return &Engine{opts: opts}, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

var defaultEngine = &Engine{opts: DefaultOptions()}

// AlignSegments aligns original and generated segments with default options.
func AlignSegments(original, generated []transcript.Segment, critiques []transcript.Critique) AlignmentResult {
	return defaultEngine.Align(original, generated, critiques)
}

// NormalizeTimeline builds the timeline view with default options.
func NormalizeTimeline(original, generated []transcript.Segment, critiques []transcript.Critique) TimelineResult {
	return defaultEngine.Timeline(original, generated, critiques)
}

// owned holds the result's private copies of the inputs.
type owned struct {
	original  []transcript.Segment
	generated []transcript.Segment
	critiques []transcript.Critique
}

func ownInputs(original, generated []transcript.Segment, critiques []transcript.Critique) owned {
	o := owned{
		original:  make([]transcript.Segment, len(original)),
		generated: make([]transcript.Segment, len(generated)),
	}
	copy(o.original, original)
	copy(o.generated, generated)

	// Critiques past the end of the original list have no segment to join.
	n := min(len(critiques), len(original))
	o.critiques = make([]transcript.Critique, n)
	copy(o.critiques, critiques[:n])
	return o
}

// critiqueFor returns the critique joined to original segment i, if any.
func (o owned) critiqueFor(i int) *transcript.Critique {
	if i < 0 || i >= len(o.critiques) {
		return nil
	}
	return &o.critiques[i]
}

func intPtr(v int) *int {
	return &v
}
