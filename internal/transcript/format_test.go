package transcript

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{5, "00:00:05"},
		{90.5, "00:01:30.500"},
		{3723, "01:02:03"},
		{36000.001, "10:00:00.001"},
		{-1.5, "-00:00:01.500"},
		{math.NaN(), "--:--:--"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.in), "FormatTimestamp(%v)", tt.in)
	}
}

func TestFormatTimestamp_RoundTripsThroughResolveTime(t *testing.T) {
	for _, s := range []float64{0, 1.25, 59.999, 3599, 7322.5} {
		got, ok := ResolveTime(Timestamp(FormatTimestamp(s)))
		assert.True(t, ok)
		assert.InDelta(t, s, got, 1e-9)
	}
}

func TestNormalizeSpeaker(t *testing.T) {
	assert.Equal(t, "dr. smith", NormalizeSpeaker("  Dr.   Smith "))
	assert.Equal(t, NormalizeSpeaker("Jos\u00e9"), NormalizeSpeaker("JOSE\u0301"))
	assert.Equal(t, "", NormalizeSpeaker("   "))
}
