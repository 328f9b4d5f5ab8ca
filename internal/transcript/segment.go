// Package transcript defines the transcript data model shared by the
// alignment engine and the storage/API layers, and resolves heterogeneous
// segment timestamps into comparable seconds.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidInput marks structurally invalid transcript data: a value of the
// wrong JSON kind, a missing segment list, or an unknown enum string.
// Missing or unparsable timestamps are not invalid input.
var ErrInvalidInput = errors.New("invalid transcript input")

// TimeKind discriminates the representations a TimeValue can hold.
type TimeKind uint8

// Time representations.
const (
	TimeAbsent TimeKind = iota
	TimeSeconds
	TimeText
)

// TimeValue is a segment timestamp as supplied by the producer: numeric
// seconds, a formatted timestamp string, or nothing at all.
// The zero value is absent.
type TimeValue struct {
	kind    TimeKind
	seconds float64
	text    string
}

// Seconds returns a numeric TimeValue.
func Seconds(s float64) TimeValue {
	return TimeValue{kind: TimeSeconds, seconds: s}
}

// Timestamp returns a TimeValue holding a formatted timestamp string.
func Timestamp(s string) TimeValue {
	return TimeValue{kind: TimeText, text: s}
}

// Kind reports which representation v holds.
func (v TimeValue) Kind() TimeKind {
	return v.kind
}

// IsZero reports whether v is absent. Used by the omitzero JSON option.
func (v TimeValue) IsZero() bool {
	return v.kind == TimeAbsent
}

// String renders v for logs and CLI output.
func (v TimeValue) String() string {
	switch v.kind {
	case TimeSeconds:
		return strconv.FormatFloat(v.seconds, 'f', -1, 64)
	case TimeText:
		return strconv.Quote(v.text)
	default:
		return "<absent>"
	}
}

// MarshalJSON writes numbers as numbers and strings as strings.
// Absent and non-finite values are written as null.
func (v TimeValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case TimeSeconds:
		if math.IsNaN(v.seconds) || math.IsInf(v.seconds, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.seconds)
	case TimeText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string or null.
// Any other JSON kind is rejected with ErrInvalidInput.
func (v *TimeValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*v = TimeValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		*v = Timestamp(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		*v = Seconds(f)
		return nil
	}

	return fmt.Errorf("%w: timestamp must be a number, string or null, got %s", ErrInvalidInput, truncate(data, 32))
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}

// Segment is one timestamped utterance.
type Segment struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	Start   TimeValue `json:"start,omitzero"`
	End     TimeValue `json:"end,omitzero"`
}
