package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is the engine input as it arrives over the wire or from a file.
type Payload struct {
	Original  []Segment  `json:"original"`
	Generated []Segment  `json:"generated"`
	Critiques []Critique `json:"critiques,omitempty"`
}

// DecodePayload decodes a JSON payload. Both segment lists must be present as
// arrays (possibly empty); critiques are optional. Every failure wraps
// ErrInvalidInput.
func DecodePayload(data []byte) (*Payload, error) {
	var raw struct {
		Original  *[]Segment  `json:"original"`
		Generated *[]Segment  `json:"generated"`
		Critiques *[]Critique `json:"critiques"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, invalid(err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrInvalidInput)
	}

	if raw.Original == nil {
		return nil, fmt.Errorf("%w: original must be an array", ErrInvalidInput)
	}
	if raw.Generated == nil {
		return nil, fmt.Errorf("%w: generated must be an array", ErrInvalidInput)
	}

	p := &Payload{
		Original:  *raw.Original,
		Generated: *raw.Generated,
	}
	if raw.Critiques != nil {
		p.Critiques = *raw.Critiques
	}
	return p, nil
}

// DecodeSegments decodes a JSON array of segments. null is rejected.
func DecodeSegments(data []byte) ([]Segment, error) {
	var segs *[]Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return nil, invalid(err)
	}
	if segs == nil {
		return nil, fmt.Errorf("%w: segments must be an array", ErrInvalidInput)
	}
	return *segs, nil
}

func invalid(err error) error {
	if errors.Is(err, ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
