package alignment

import "github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"

// AlignmentType classifies one row of the aligned view.
type AlignmentType string

// Alignment types.
const (
	AlignmentMatched      AlignmentType = "matched"
	AlignmentPartial      AlignmentType = "partial"
	AlignmentOriginalOnly AlignmentType = "original-only"
	AlignmentAIOnly       AlignmentType = "ai-only"
)

// Coverage tells whether a side has a segment occupying a timeline slice.
type Coverage string

// Coverage values.
const (
	CoverageCovered Coverage = "covered"
	CoverageGap     Coverage = "gap"
)

// TimeRange is a resolved span in seconds.
type TimeRange = transcript.Interval

// AlignedSegment is one row of the aligned view.
// Both Original and AI are set only for matched and partial rows.
type AlignedSegment struct {
	Index         int                  `json:"index"`
	Original      *transcript.Segment  `json:"original,omitempty"`
	AI            *transcript.Segment  `json:"ai,omitempty"`
	OriginalIndex *int                 `json:"originalIndex,omitempty"`
	AIIndex       *int                 `json:"aiIndex,omitempty"`
	Critique      *transcript.Critique `json:"critique,omitempty"`
	AlignmentType AlignmentType        `json:"alignmentType"`
	OverlapScore  float64              `json:"overlapScore"`
	TimeRange     TimeRange            `json:"timeRange"`
}

// AlignmentResult is the output of AlignSegments.
type AlignmentResult struct {
	Segments     []AlignedSegment `json:"segments"`
	UsedFallback bool             `json:"usedFallback"`
}

// TimelineSlice is one row of the unified grid. A segment occupying slices
// [i, i+k) marks slice i as its span start with span length k; the following
// slices carry the same segment as continuations.
type TimelineSlice struct {
	Index               int                  `json:"index"`
	TimeRange           TimeRange            `json:"timeRange"`
	OriginalCoverage    Coverage             `json:"originalCoverage"`
	AICoverage          Coverage             `json:"aiCoverage"`
	Original            *transcript.Segment  `json:"original,omitempty"`
	AI                  *transcript.Segment  `json:"ai,omitempty"`
	OriginalIndex       *int                 `json:"originalIndex,omitempty"`
	AIIndex             *int                 `json:"aiIndex,omitempty"`
	IsOriginalSpanStart bool                 `json:"isOriginalSpanStart"`
	IsAISpanStart       bool                 `json:"isAiSpanStart"`
	OriginalSpanLength  int                  `json:"originalSpanLength"`
	AISpanLength        int                  `json:"aiSpanLength"`
	Critique            *transcript.Critique `json:"critique,omitempty"`
}

// TimelineStats counts slices by coverage.
type TimelineStats struct {
	TotalSlices      int `json:"totalSlices"`
	CoveredBothCount int `json:"coveredBothCount"`
	OriginalGapCount int `json:"originalGapCount"`
	AIGapCount       int `json:"aiGapCount"`
	BothGapCount     int `json:"bothGapCount"`
}

// TimelineResult is the output of NormalizeTimeline.
type TimelineResult struct {
	Slices       []TimelineSlice `json:"slices"`
	Stats        TimelineStats   `json:"stats"`
	Boundaries   []float64       `json:"boundaries"`
	UsedFallback bool            `json:"usedFallback"`
	// UnplacedOriginals holds original segments hidden behind an earlier
	// segment of the same side.
	UnplacedOriginals []UnplacedSegment `json:"unplacedOriginals,omitempty"`
}

// UnplacedSegment is an original segment that occupies no timeline slice.
type UnplacedSegment struct {
	Index     int                  `json:"index"`
	Segment   transcript.Segment   `json:"segment"`
	TimeRange TimeRange            `json:"timeRange"`
	Critique  *transcript.Critique `json:"critique,omitempty"`
}
