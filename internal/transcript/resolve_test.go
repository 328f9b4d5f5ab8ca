package transcript

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTime(t *testing.T) {
	tests := []struct {
		name  string
		in    TimeValue
		want  float64
		valid bool
	}{
		{"absent", TimeValue{}, 0, false},
		{"seconds", Seconds(12.5), 12.5, true},
		{"negative seconds pass through", Seconds(-3), -3, true},
		{"zero", Seconds(0), 0, true},
		{"NaN", Seconds(math.NaN()), 0, false},
		{"infinity", Seconds(math.Inf(1)), 0, false},
		{"MM:SS", Timestamp("01:30"), 90, true},
		{"MM:SS over an hour", Timestamp("75:00"), 4500, true},
		{"HH:MM:SS", Timestamp("01:02:03"), 3723, true},
		{"HH:MM:SS.sss", Timestamp("00:00:01.250"), 1.25, true},
		{"comma fraction", Timestamp("00:01,5"), 1.5, true},
		{"surrounding whitespace", Timestamp("  00:10 "), 10, true},
		{"single digit parts", Timestamp("1:2:3"), 3723, true},
		{"bare number string", Timestamp("12"), 0, false},
		{"seconds out of range", Timestamp("00:61"), 0, false},
		{"minutes out of range with hours", Timestamp("01:60:00"), 0, false},
		{"garbage", Timestamp("soon"), 0, false},
		{"empty string", Timestamp(""), 0, false},
		{"too many parts", Timestamp("1:2:3:4"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveTime(tt.in)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func seg(start, end float64) Segment {
	return Segment{Speaker: "A", Text: "x", Start: Seconds(start), End: Seconds(end)}
}

func TestAssessReliability(t *testing.T) {
	t.Run("empty is reliable", func(t *testing.T) {
		r := AssessReliability(nil)
		assert.True(t, r.Reliable)
		assert.Equal(t, -1, r.Index)
	})

	t.Run("ordered segments", func(t *testing.T) {
		r := AssessReliability([]Segment{seg(0, 2), seg(2, 4), seg(2, 3)})
		assert.True(t, r.Reliable)
	})

	t.Run("mixed representations", func(t *testing.T) {
		r := AssessReliability([]Segment{
			{Start: Timestamp("00:00"), End: Seconds(1.5)},
			{Start: Seconds(1.5), End: Timestamp("00:00:03.000")},
		})
		assert.True(t, r.Reliable)
	})

	t.Run("missing start", func(t *testing.T) {
		r := AssessReliability([]Segment{seg(0, 1), {End: Seconds(3)}})
		assert.False(t, r.Reliable)
		assert.Equal(t, 1, r.Index)
		assert.Contains(t, r.Reason, "start")
	})

	t.Run("missing end", func(t *testing.T) {
		r := AssessReliability([]Segment{{Start: Seconds(0)}})
		assert.False(t, r.Reliable)
		assert.Contains(t, r.Reason, "end")
	})

	t.Run("end before start", func(t *testing.T) {
		r := AssessReliability([]Segment{seg(5, 4)})
		assert.False(t, r.Reliable)
		assert.Equal(t, "end before start", r.Reason)
	})

	t.Run("decreasing starts", func(t *testing.T) {
		r := AssessReliability([]Segment{seg(4, 6), seg(1, 2)})
		assert.False(t, r.Reliable)
		assert.Equal(t, 1, r.Index)
	})
}

func TestResolveIntervals_Exact(t *testing.T) {
	orig, gen, fallback := ResolveIntervals(
		[]Segment{seg(0, 2)},
		[]Segment{{Start: Timestamp("00:01"), End: Timestamp("00:03")}},
		DefaultSlotSeconds,
	)

	assert.False(t, fallback)
	assert.Equal(t, []Interval{{Start: 0, End: 2}}, orig)
	assert.Equal(t, []Interval{{Start: 1, End: 3}}, gen)
}

func TestResolveIntervals_FallbackAppliesToBothSides(t *testing.T) {
	original := []Segment{seg(0, 2), seg(2, 4)}
	generated := []Segment{{Speaker: "B", Text: "no times"}, seg(10, 12), seg(12, 14)}

	orig, gen, fallback := ResolveIntervals(original, generated, 5)

	require.True(t, fallback)
	assert.Equal(t, []Interval{{0, 5}, {5, 10}}, orig)
	assert.Equal(t, []Interval{{0, 5}, {5, 10}, {10, 15}}, gen)
}

func TestResolveIntervals_NonPositiveSlotUsesDefault(t *testing.T) {
	_, gen, fallback := ResolveIntervals(nil, []Segment{{}}, 0)

	require.True(t, fallback)
	assert.Equal(t, []Interval{{0, DefaultSlotSeconds}}, gen)
}

func TestInterval(t *testing.T) {
	iv := Interval{Start: 1, End: 4}
	assert.Equal(t, 3.0, iv.Duration())
	assert.False(t, iv.IsPoint())
	assert.True(t, iv.Contains(Interval{Start: 1, End: 1}))
	assert.True(t, iv.Contains(Interval{Start: 4, End: 4}), "a point on End is inside")
	assert.True(t, iv.Contains(Interval{Start: 2, End: 4}))
	assert.False(t, iv.Contains(Interval{Start: 0, End: 2}))
	assert.True(t, Interval{Start: 2, End: 2}.IsPoint())
}
