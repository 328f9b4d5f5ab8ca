package alignment

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// candidate is a scored (original, generated) pair with positive overlap.
type candidate struct {
	orig, gen int
	score     float64
	startDiff float64
}

// Align pairs original and generated segments one-to-one by temporal overlap.
//
// Every pair with a positive overlap score is a candidate. Candidates are
// accepted greedily from the highest score down, breaking ties by the
// smallest start-time difference, then original order, then generated order.
// A pair is accepted only if neither segment is already paired. Unpaired
// segments become original-only or ai-only rows.
func (e *Engine) Align(original, generated []transcript.Segment, critiques []transcript.Critique) AlignmentResult {
	origIv, genIv, usedFallback := transcript.ResolveIntervals(original, generated, e.opts.FallbackSlotSeconds)
	in := ownInputs(original, generated, critiques)

	origMatch := make([]int, len(origIv))
	for i := range origMatch {
		origMatch[i] = -1
	}
	genUsed := make([]bool, len(genIv))
	scores := make([]float64, len(origIv))

	for _, c := range candidatePairs(origIv, genIv) {
		if origMatch[c.orig] >= 0 || genUsed[c.gen] {
			continue
		}
		origMatch[c.orig] = c.gen
		genUsed[c.gen] = true
		scores[c.orig] = c.score
	}

	type keyed struct {
		row      AlignedSegment
		orig     int
		gen      int
		hasOrig  bool
		sortFrom float64
	}
	rows := make([]keyed, 0, len(origIv)+len(genIv))

	for i, oiv := range origIv {
		row := AlignedSegment{
			Original:      &in.original[i],
			OriginalIndex: intPtr(i),
			Critique:      in.critiqueFor(i),
			AlignmentType: AlignmentOriginalOnly,
			TimeRange:     oiv,
		}
		j := origMatch[i]
		if j >= 0 {
			row.AI = &in.generated[j]
			row.AIIndex = intPtr(j)
			row.OverlapScore = scores[i]
			row.TimeRange = union(oiv, genIv[j])
			if scores[i] >= e.opts.MatchThreshold {
				row.AlignmentType = AlignmentMatched
			} else {
				row.AlignmentType = AlignmentPartial
			}
		}
		rows = append(rows, keyed{row: row, orig: i, gen: j, hasOrig: true, sortFrom: row.TimeRange.Start})
	}

	for j, giv := range genIv {
		if genUsed[j] {
			continue
		}
		row := AlignedSegment{
			AI:            &in.generated[j],
			AIIndex:       intPtr(j),
			AlignmentType: AlignmentAIOnly,
			TimeRange:     giv,
		}
		rows = append(rows, keyed{row: row, orig: -1, gen: j, sortFrom: giv.Start})
	}

	// Chronological order; rows holding an original segment come first at
	// equal start times.
	slices.SortStableFunc(rows, func(a, b keyed) int {
		if c := cmp.Compare(a.sortFrom, b.sortFrom); c != 0 {
			return c
		}
		if a.hasOrig != b.hasOrig {
			if a.hasOrig {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.orig, b.orig); c != 0 {
			return c
		}
		return cmp.Compare(a.gen, b.gen)
	})

	segments := make([]AlignedSegment, len(rows))
	for i, r := range rows {
		r.row.Index = i
		segments[i] = r.row
	}

	return AlignmentResult{
		Segments:     segments,
		UsedFallback: usedFallback,
	}
}

// candidatePairs returns every pair with a positive overlap score, ordered
// for greedy acceptance.
func candidatePairs(origIv, genIv []transcript.Interval) []candidate {
	if len(origIv) == 0 || len(genIv) == 0 {
		return nil
	}

	// Generated segments by start time so each original only scans the
	// generated segments that begin before it ends.
	byStart := make([]int, len(genIv))
	for j := range byStart {
		byStart[j] = j
	}
	slices.SortStableFunc(byStart, func(a, b int) int {
		return cmp.Compare(genIv[a].Start, genIv[b].Start)
	})

	var pairs []candidate
	for i, o := range origIv {
		limit := sort.Search(len(byStart), func(k int) bool {
			return genIv[byStart[k]].Start > o.End
		})
		for _, j := range byStart[:limit] {
			g := genIv[j]
			if g.End < o.Start {
				continue
			}
			score := overlapScore(o, g)
			if score <= 0 {
				continue
			}
			pairs = append(pairs, candidate{
				orig:      i,
				gen:       j,
				score:     score,
				startDiff: math.Abs(o.Start - g.Start),
			})
		}
	}

	slices.SortFunc(pairs, func(a, b candidate) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.startDiff, b.startDiff); c != 0 {
			return c
		}
		if c := cmp.Compare(a.orig, b.orig); c != 0 {
			return c
		}
		return cmp.Compare(a.gen, b.gen)
	})

	return pairs
}

// overlapScore is the intersection length divided by the shorter duration,
// in [0, 1]. A point event scores 1 against any interval containing it,
// edges included.
func overlapScore(a, b transcript.Interval) float64 {
	switch {
	case a.IsPoint() && b.IsPoint():
		if a.Start == b.Start {
			return 1
		}
		return 0
	case a.IsPoint():
		if b.Contains(a) {
			return 1
		}
		return 0
	case b.IsPoint():
		if a.Contains(b) {
			return 1
		}
		return 0
	}

	intersection := math.Min(a.End, b.End) - math.Max(a.Start, b.Start)
	if intersection <= 0 {
		return 0
	}
	shorter := math.Min(a.Duration(), b.Duration())
	return math.Min(1, intersection/shorter)
}

func union(a, b transcript.Interval) transcript.Interval {
	return transcript.Interval{
		Start: math.Min(a.Start, b.Start),
		End:   math.Max(a.End, b.End),
	}
}
