package alignment

import (
	"cmp"
	"slices"
	"sort"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// Timeline cuts the combined time range at every segment boundary of both
// sides and reports, per slice, which segment occupies it on each side.
//
// A slice is covered on a side when a segment of that side contains it.
// When several segments contain a slice, the one with the earliest start
// (then the lowest input index) occupies it. A point event occupies the slice
// starting at its time, or the last slice when it sits on the final boundary.
// Original segments left without a slice are reported in UnplacedOriginals
// so their critiques still count.
func (e *Engine) Timeline(original, generated []transcript.Segment, critiques []transcript.Critique) TimelineResult {
	origIv, genIv, usedFallback := transcript.ResolveIntervals(original, generated, e.opts.FallbackSlotSeconds)
	in := ownInputs(original, generated, critiques)

	boundaries := collectBoundaries(origIv, genIv)
	result := TimelineResult{
		Slices:       []TimelineSlice{},
		Boundaries:   boundaries,
		UsedFallback: usedFallback,
	}

	ranges := sliceRanges(boundaries)
	if len(ranges) == 0 {
		return result
	}

	origOcc := occupants(origIv, boundaries, len(ranges))
	genOcc := occupants(genIv, boundaries, len(ranges))

	out := make([]TimelineSlice, len(ranges))
	for k, r := range ranges {
		s := TimelineSlice{
			Index:            k,
			TimeRange:        r,
			OriginalCoverage: CoverageGap,
			AICoverage:       CoverageGap,
		}
		if i := origOcc[k]; i >= 0 {
			s.OriginalCoverage = CoverageCovered
			s.Original = &in.original[i]
			s.OriginalIndex = intPtr(i)
			s.Critique = in.critiqueFor(i)
		}
		if j := genOcc[k]; j >= 0 {
			s.AICoverage = CoverageCovered
			s.AI = &in.generated[j]
			s.AIIndex = intPtr(j)
		}
		out[k] = s
	}

	markSpans(origOcc, func(k int, start bool, length int) {
		out[k].IsOriginalSpanStart = start
		out[k].OriginalSpanLength = length
	})
	markSpans(genOcc, func(k int, start bool, length int) {
		out[k].IsAISpanStart = start
		out[k].AISpanLength = length
	})

	result.Slices = out
	result.Stats = computeStats(out)
	result.UnplacedOriginals = unplaced(origOcc, len(in.original), func(i int) UnplacedSegment {
		return UnplacedSegment{
			Index:     i,
			Segment:   in.original[i],
			TimeRange: origIv[i],
			Critique:  in.critiqueFor(i),
		}
	})
	return result
}

// unplaced lists, in input order, the segments that occupy no slice.
func unplaced(occ []int, count int, describe func(i int) UnplacedSegment) []UnplacedSegment {
	placed := make([]bool, count)
	for _, i := range occ {
		if i >= 0 {
			placed[i] = true
		}
	}
	var out []UnplacedSegment
	for i, ok := range placed {
		if !ok {
			out = append(out, describe(i))
		}
	}
	return out
}

// collectBoundaries returns the sorted, de-duplicated starts and ends of all
// intervals on both sides.
func collectBoundaries(origIv, genIv []transcript.Interval) []float64 {
	points := make([]float64, 0, 2*(len(origIv)+len(genIv)))
	for _, iv := range origIv {
		points = append(points, iv.Start, iv.End)
	}
	for _, iv := range genIv {
		points = append(points, iv.Start, iv.End)
	}
	slices.Sort(points)
	return slices.Compact(points)
}

// sliceRanges turns boundaries into consecutive slices. A single boundary
// (every segment is the same point event) yields one zero-width slice.
func sliceRanges(boundaries []float64) []TimeRange {
	switch len(boundaries) {
	case 0:
		return nil
	case 1:
		return []TimeRange{{Start: boundaries[0], End: boundaries[0]}}
	}

	ranges := make([]TimeRange, len(boundaries)-1)
	for k := range ranges {
		ranges[k] = TimeRange{Start: boundaries[k], End: boundaries[k+1]}
	}
	return ranges
}

// occupants returns, per slice, the index of the occupying interval or -1.
//
// Intervals are visited by (start, index); each claims the still-free slices
// inside it. A skip list of the next free slice keeps every slice from being
// visited more than once after it is claimed.
func occupants(ivs []transcript.Interval, boundaries []float64, n int) []int {
	occ := make([]int, n)
	for k := range occ {
		occ[k] = -1
	}
	if len(ivs) == 0 {
		return occ
	}

	order := make([]int, len(ivs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(ivs[a].Start, ivs[b].Start)
	})

	next := make([]int, n+1)
	for k := range next {
		next[k] = k
	}
	free := func(k int) int {
		for next[k] != k {
			next[k] = next[next[k]]
			k = next[k]
		}
		return k
	}

	for _, i := range order {
		first, last := slotSpan(ivs[i], boundaries, n)
		for k := free(first); k <= last && k < n; k = free(k) {
			occ[k] = i
			next[k] = k + 1
		}
	}

	return occ
}

// slotSpan returns the inclusive range of the n slices contained in iv.
// A point event gets the single slice starting at its time, clamped to the
// last slice.
func slotSpan(iv transcript.Interval, boundaries []float64, n int) (first, last int) {
	if len(boundaries) == 1 {
		return 0, 0
	}
	first = sort.SearchFloat64s(boundaries, iv.Start)
	if iv.IsPoint() {
		first = min(first, n-1)
		return first, first
	}
	last = sort.SearchFloat64s(boundaries, iv.End) - 1
	return first, last
}

// markSpans reports each slice as a span start (with the run length) or a
// continuation of the previous slice's segment. Gap slices are left alone.
func markSpans(occ []int, mark func(k int, start bool, length int)) {
	for k := 0; k < len(occ); {
		if occ[k] < 0 {
			k++
			continue
		}
		end := k + 1
		for end < len(occ) && occ[end] == occ[k] {
			end++
		}
		mark(k, true, end-k)
		for c := k + 1; c < end; c++ {
			mark(c, false, 0)
		}
		k = end
	}
}

func computeStats(rows []TimelineSlice) TimelineStats {
	stats := TimelineStats{TotalSlices: len(rows)}
	for _, s := range rows {
		origCovered := s.OriginalCoverage == CoverageCovered
		aiCovered := s.AICoverage == CoverageCovered
		switch {
		case origCovered && aiCovered:
			stats.CoveredBothCount++
		case !origCovered && aiCovered:
			stats.OriginalGapCount++
		case origCovered && !aiCovered:
			stats.AIGapCount++
		default:
			stats.BothGapCount++
		}
	}
	return stats
}
