// Package search provides full-text search over stored listings using Bleve.
// Each listing is indexed as one document carrying its name, both transcript
// texts, the normalized speaker labels and its tags.
package search

import (
	"strings"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// ListingDocument is the indexed form of a domain.Listing.
type ListingDocument struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Source        string   `json:"source,omitempty"`
	OriginalText  string   `json:"original_text,omitempty"`
	GeneratedText string   `json:"generated_text,omitempty"`
	Speakers      []string `json:"speakers,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	SegmentCount  int      `json:"segment_count"`
	CreatedAt     int64    `json:"created_at"` // Unix ms
	UpdatedAt     int64    `json:"updated_at"` // Unix ms
}

// NewListingDocument builds the search document for a listing.
func NewListingDocument(l *domain.Listing) *ListingDocument {
	return &ListingDocument{
		ID:            l.ID,
		Name:          l.Name,
		Source:        l.Source,
		OriginalText:  joinText(l.Original),
		GeneratedText: joinText(l.Generated),
		Speakers:      l.Speakers(),
		Tags:          l.Tags,
		SegmentCount:  len(l.Original) + len(l.Generated),
		CreatedAt:     l.CreatedAt.UnixMilli(),
		UpdatedAt:     l.UpdatedAt.UnixMilli(),
	}
}

// ToMap converts the document to the field layout the mapping expects.
// Empty fields are left out so they do not produce empty terms.
func (d *ListingDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":            d.ID,
		"name":          d.Name,
		"segment_count": float64(d.SegmentCount),
		"created_at":    float64(d.CreatedAt),
		"updated_at":    float64(d.UpdatedAt),
	}
	if d.Source != "" {
		m["source"] = d.Source
	}
	if d.OriginalText != "" {
		m["original_text"] = d.OriginalText
	}
	if d.GeneratedText != "" {
		m["generated_text"] = d.GeneratedText
	}
	if len(d.Speakers) > 0 {
		m["speakers"] = d.Speakers
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

func joinText(segs []transcript.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}
	return b.String()
}
