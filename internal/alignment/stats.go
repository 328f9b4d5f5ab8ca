package alignment

import (
	"fmt"
	"strings"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// SeverityOf returns the severity a row or slice is counted and filtered
// under. A missing critique, an empty severity and an unknown severity are
// all treated as none, i.e. a match.
func SeverityOf(c *transcript.Critique) transcript.Severity {
	if c == nil || !c.Severity.Valid() {
		return transcript.SeverityNone
	}
	return c.Severity
}

// SeverityCounts tallies critiques by severity. Match counts segments with
// no discrepancy.
type SeverityCounts struct {
	Match    int `json:"match"`
	Minor    int `json:"minor"`
	Moderate int `json:"moderate"`
	Critical int `json:"critical"`
}

// Add counts one severity.
func (c *SeverityCounts) Add(s transcript.Severity) {
	switch s {
	case transcript.SeverityMinor:
		c.Minor++
	case transcript.SeverityModerate:
		c.Moderate++
	case transcript.SeverityCritical:
		c.Critical++
	default:
		c.Match++
	}
}

// Total returns the number of counted items.
func (c SeverityCounts) Total() int {
	return c.Match + c.Minor + c.Moderate + c.Critical
}

// Issues returns the number of items with any discrepancy.
func (c SeverityCounts) Issues() int {
	return c.Minor + c.Moderate + c.Critical
}

// AlignmentTypeCounts tallies aligned rows by type.
type AlignmentTypeCounts struct {
	Matched      int `json:"matched"`
	Partial      int `json:"partial"`
	OriginalOnly int `json:"originalOnly"`
	AIOnly       int `json:"aiOnly"`
}

// AlignmentSummary rolls up an AlignmentResult.
type AlignmentSummary struct {
	Rows     int                 `json:"rows"`
	Severity SeverityCounts      `json:"severity"`
	Types    AlignmentTypeCounts `json:"types"`
	// MeanOverlap averages the overlap score of rows holding both sides.
	MeanOverlap float64 `json:"meanOverlap"`
}

// TimelineSummary rolls up a TimelineResult. Severity counts each original
// segment once, on the slice starting its span or as an unplaced segment.
type TimelineSummary struct {
	Stats    TimelineStats  `json:"stats"`
	Severity SeverityCounts `json:"severity"`
	// Coverage ratios are covered duration over total duration, per side.
	OriginalCoverage float64 `json:"originalCoverage"`
	AICoverage       float64 `json:"aiCoverage"`
}

// Summary combines both views for summary badges.
type Summary struct {
	Alignment    AlignmentSummary `json:"alignment"`
	Timeline     TimelineSummary  `json:"timeline"`
	UsedFallback bool             `json:"usedFallback"`
}

// SummarizeAlignment counts rows by type and, for rows that hold an original
// segment, by severity.
func SummarizeAlignment(r AlignmentResult) AlignmentSummary {
	sum := AlignmentSummary{Rows: len(r.Segments)}
	var overlapTotal float64
	paired := 0

	for _, row := range r.Segments {
		switch row.AlignmentType {
		case AlignmentMatched:
			sum.Types.Matched++
		case AlignmentPartial:
			sum.Types.Partial++
		case AlignmentOriginalOnly:
			sum.Types.OriginalOnly++
		case AlignmentAIOnly:
			sum.Types.AIOnly++
		}
		if row.Original != nil {
			sum.Severity.Add(SeverityOf(row.Critique))
		}
		if row.Original != nil && row.AI != nil {
			overlapTotal += row.OverlapScore
			paired++
		}
	}

	if paired > 0 {
		sum.MeanOverlap = overlapTotal / float64(paired)
	}
	return sum
}

// SummarizeTimeline counts severities per original span and computes the
// covered share of the timeline for each side.
func SummarizeTimeline(r TimelineResult) TimelineSummary {
	sum := TimelineSummary{Stats: r.Stats}
	var total, origCovered, aiCovered float64

	for _, s := range r.Slices {
		if s.Original != nil && s.IsOriginalSpanStart {
			sum.Severity.Add(SeverityOf(s.Critique))
		}
		d := s.TimeRange.Duration()
		total += d
		if s.OriginalCoverage == CoverageCovered {
			origCovered += d
		}
		if s.AICoverage == CoverageCovered {
			aiCovered += d
		}
	}

	for _, u := range r.UnplacedOriginals {
		sum.Severity.Add(SeverityOf(u.Critique))
	}

	if total > 0 {
		sum.OriginalCoverage = origCovered / total
		sum.AICoverage = aiCovered / total
	}
	return sum
}

// Summarize combines both views. The fallback flag is set when either view
// fell back to synthetic spacing.
func Summarize(a AlignmentResult, t TimelineResult) Summary {
	return Summary{
		Alignment:    SummarizeAlignment(a),
		Timeline:     SummarizeTimeline(t),
		UsedFallback: a.UsedFallback || t.UsedFallback,
	}
}

// SeverityFilter selects rows and slices by the severity of their critique.
type SeverityFilter string

// Filters. FilterAll keeps everything, including rows without an original
// segment; every other filter keeps only rows holding an original segment.
const (
	FilterAll      SeverityFilter = "all"
	FilterMatch    SeverityFilter = "match"
	FilterIssues   SeverityFilter = "issues"
	FilterMinor    SeverityFilter = "minor"
	FilterModerate SeverityFilter = "moderate"
	FilterCritical SeverityFilter = "critical"
)

// ParseSeverityFilter parses a filter name. An empty name is FilterAll and
// "none" is an alias of "match".
func ParseSeverityFilter(s string) (SeverityFilter, error) {
	switch f := SeverityFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case "none":
		return FilterMatch, nil
	case FilterAll, FilterMatch, FilterIssues, FilterMinor, FilterModerate, FilterCritical:
		return f, nil
	default:
		return "", fmt.Errorf("unknown severity filter %q", s)
	}
}

// MatchesSeverityFilter reports whether an item holding an original segment
// with critique c passes f. It uses the same severity definition as the
// counters, so filtered row counts equal the corresponding summary counts.
func MatchesSeverityFilter(c *transcript.Critique, f SeverityFilter) bool {
	sev := SeverityOf(c)
	switch f {
	case FilterAll, "":
		return true
	case FilterMatch:
		return sev == transcript.SeverityNone
	case FilterIssues:
		return sev != transcript.SeverityNone
	case FilterMinor:
		return sev == transcript.SeverityMinor
	case FilterModerate:
		return sev == transcript.SeverityModerate
	case FilterCritical:
		return sev == transcript.SeverityCritical
	default:
		return false
	}
}

// FilterAlignment returns the rows passing f, keeping their original indexes.
func FilterAlignment(rows []AlignedSegment, f SeverityFilter) []AlignedSegment {
	if f == FilterAll || f == "" {
		return rows
	}
	out := make([]AlignedSegment, 0, len(rows))
	for _, row := range rows {
		if row.Original != nil && MatchesSeverityFilter(row.Critique, f) {
			out = append(out, row)
		}
	}
	return out
}

// FilterTimeline returns the slices passing f, keeping their original indexes.
func FilterTimeline(rows []TimelineSlice, f SeverityFilter) []TimelineSlice {
	if f == FilterAll || f == "" {
		return rows
	}
	out := make([]TimelineSlice, 0, len(rows))
	for _, s := range rows {
		if s.Original != nil && MatchesSeverityFilter(s.Critique, f) {
			out = append(out, s)
		}
	}
	return out
}

// FilterUnplaced returns the unplaced original segments passing f.
func FilterUnplaced(rows []UnplacedSegment, f SeverityFilter) []UnplacedSegment {
	if f == FilterAll || f == "" {
		return rows
	}
	var out []UnplacedSegment
	for _, u := range rows {
		if MatchesSeverityFilter(u.Critique, f) {
			out = append(out, u)
		}
	}
	return out
}
