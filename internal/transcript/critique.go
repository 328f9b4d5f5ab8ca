package transcript

import (
	"encoding/json"
	"fmt"
)

// Severity grades how far a generated segment diverges from the original.
type Severity string

// Severity levels, from no discrepancy to a critical one.
const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity in ascending order.
var Severities = []Severity{SeverityNone, SeverityMinor, SeverityModerate, SeverityCritical}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityNone, SeverityMinor, SeverityModerate, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities for comparisons; unknown severities rank as none.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// UnmarshalJSON rejects unknown severity strings. An empty string means none.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: severity must be a string", ErrInvalidInput)
	}
	if raw == "" {
		*s = SeverityNone
		return nil
	}
	v := Severity(raw)
	if !v.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, raw)
	}
	*s = v
	return nil
}

// Verdict names which side the judge believes is correct.
type Verdict string

// Verdicts.
const (
	VerdictOriginal Verdict = "original"
	VerdictJudge    Verdict = "judge"
	VerdictBoth     Verdict = "both"
	VerdictUnclear  Verdict = "unclear"
)

// Critique is an externally produced judgment for one original segment.
// Critiques are joined to segments by their position in the original list.
type Critique struct {
	Severity      Severity   `json:"severity"`
	Discrepancy   string     `json:"discrepancy"`
	LikelyCorrect Verdict    `json:"likelyCorrect"`
	Category      string     `json:"category,omitempty"`
	Confidence    Confidence `json:"confidence,omitempty"`
}

// Confidence is the judge's self-reported confidence. Judges emit either a
// label ("high") or a number (0.9); both are kept as text.
type Confidence string

// UnmarshalJSON accepts a string, a number or null.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Confidence(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: confidence must be a string or number", ErrInvalidInput)
	}
	*c = Confidence(n.String())
	return nil
}
