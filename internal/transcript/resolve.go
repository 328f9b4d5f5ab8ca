package transcript

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSlotSeconds is the width of a synthetic slot assigned to each
// segment when timestamps cannot be trusted.
const DefaultSlotSeconds = 5.0

// Accepts MM:SS and HH:MM:SS, each with an optional fractional part.
var timestampRe = regexp.MustCompile(`^(?:(\d+):)?(\d+):(\d+(?:[.,]\d+)?)$`)

// ResolveTime converts a TimeValue into seconds.
// Numeric values are returned unchanged. Strings are parsed as MM:SS or
// HH:MM:SS(.sss). The second return value is false for absent values,
// unparsable strings and non-finite numbers.
func ResolveTime(v TimeValue) (float64, bool) {
	switch v.kind {
	case TimeSeconds:
		if math.IsNaN(v.seconds) || math.IsInf(v.seconds, 0) {
			return 0, false
		}
		return v.seconds, true
	case TimeText:
		return parseTimestamp(v.text)
	default:
		return 0, false
	}
}

func parseTimestamp(s string) (float64, bool) {
	m := timestampRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	hasHours := m[1] != ""
	var hours float64
	if hasHours {
		h, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		hours = h
	}

	minutes, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(strings.Replace(m[3], ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}

	// MM:SS allows minutes past the hour; HH:MM:SS does not.
	if seconds >= 60 || (hasHours && minutes >= 60) {
		return 0, false
	}

	return hours*3600 + minutes*60 + seconds, true
}

// Interval is a resolved [Start, End) span in seconds.
// A zero-width interval is a point event. Points are matched against the
// closed [Start, End] (see Contains), so a point on either edge counts.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// IsPoint reports whether the interval has zero width.
func (iv Interval) IsPoint() bool {
	return iv.End == iv.Start
}

// Contains reports whether other lies within iv, edges included. Point
// containment therefore reads iv as closed: a point at End is inside.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

// Reliability is the verdict of AssessReliability.
type Reliability struct {
	Reliable bool
	// Reason describes the first violation found; empty when reliable.
	Reason string
	// Index of the offending segment, -1 when reliable.
	Index int
}

// AssessReliability reports whether every segment has a resolvable start and
// end with end >= start, and starts never decrease across the sequence.
// An empty sequence is reliable.
func AssessReliability(segments []Segment) Reliability {
	prevStart := math.Inf(-1)
	for i, seg := range segments {
		start, ok := ResolveTime(seg.Start)
		if !ok {
			return Reliability{Reason: "missing or unparsable start", Index: i}
		}
		end, ok := ResolveTime(seg.End)
		if !ok {
			return Reliability{Reason: "missing or unparsable end", Index: i}
		}
		if end < start {
			return Reliability{Reason: "end before start", Index: i}
		}
		if start < prevStart {
			return Reliability{Reason: "start out of order", Index: i}
		}
		prevStart = start
	}
	return Reliability{Reliable: true, Index: -1}
}

// ResolveIntervals resolves both sequences into intervals.
// When either sequence is unreliable, both are replaced by synthetic slots
// [i*slot, (i+1)*slot) in list order so the two sides stay comparable, and
// usedFallback is true. A non-positive slot uses DefaultSlotSeconds.
func ResolveIntervals(original, generated []Segment, slot float64) (orig, gen []Interval, usedFallback bool) {
	if slot <= 0 || math.IsNaN(slot) || math.IsInf(slot, 0) {
		slot = DefaultSlotSeconds
	}

	if AssessReliability(original).Reliable && AssessReliability(generated).Reliable {
		return exactIntervals(original), exactIntervals(generated), false
	}

	return syntheticIntervals(len(original), slot), syntheticIntervals(len(generated), slot), true
}

func exactIntervals(segments []Segment) []Interval {
	out := make([]Interval, len(segments))
	for i, seg := range segments {
		start, _ := ResolveTime(seg.Start)
		end, _ := ResolveTime(seg.End)
		out[i] = Interval{Start: start, End: end}
	}
	return out
}

func syntheticIntervals(n int, slot float64) []Interval {
	out := make([]Interval, n)
	for i := range out {
		out[i] = Interval{Start: float64(i) * slot, End: float64(i+1) * slot}
	}
	return out
}
