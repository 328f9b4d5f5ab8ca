package transcript

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FormatTimestamp renders seconds as HH:MM:SS, adding .mmm when the value
// has a fractional millisecond part. Negative values keep a leading minus.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "--:--:--"
	}

	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	totalMs := int64(math.Round(seconds * 1000))
	h := totalMs / 3_600_000
	m := (totalMs / 60_000) % 60
	s := (totalMs / 1000) % 60
	ms := totalMs % 1000

	if ms == 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, h, m, s, ms)
}

// NormalizeSpeaker folds a speaker label into a canonical form so that
// "Dr. Smith", " dr.  smith" and the decomposed-accent variants compare equal.
func NormalizeSpeaker(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}
