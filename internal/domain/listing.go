package domain

import (
	"slices"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// Listing is a stored transcript pair: the reference transcript and the one
// produced by the model under evaluation.
type Listing struct {
	Syncable
	Name      string               `json:"name"`
	Source    string               `json:"source,omitempty"` // where it came from, e.g. "api" or an import file name
	Original  []transcript.Segment `json:"original"`
	Generated []transcript.Segment `json:"generated"`
	Tags      []string             `json:"tags"`
}

// Speakers returns the distinct normalized speaker labels across both
// transcripts in first-seen order.
func (l *Listing) Speakers() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, segs := range [][]transcript.Segment{l.Original, l.Generated} {
		for _, s := range segs {
			name := transcript.NormalizeSpeaker(s.Speaker)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Payload assembles the engine input for this listing with the given critiques.
// The returned payload shares no slices with the listing.
func (l *Listing) Payload(critiques []transcript.Critique) *transcript.Payload {
	return &transcript.Payload{
		Original:  slices.Clone(l.Original),
		Generated: slices.Clone(l.Generated),
		Critiques: slices.Clone(critiques),
	}
}

// ListingPatch holds the optional fields of a listing update.
type ListingPatch struct {
	Name      *string
	Source    *string
	Original  []transcript.Segment
	Generated []transcript.Segment
	Tags      []string
}

// IsEmpty reports whether the patch changes nothing.
func (p ListingPatch) IsEmpty() bool {
	return p.Name == nil && p.Source == nil && p.Original == nil && p.Generated == nil && p.Tags == nil
}

// Apply copies the set fields onto l. It does not touch timestamps.
func (p ListingPatch) Apply(l *Listing) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Original != nil {
		l.Original = p.Original
	}
	if p.Generated != nil {
		l.Generated = p.Generated
	}
	if p.Tags != nil {
		l.Tags = p.Tags
	}
}
