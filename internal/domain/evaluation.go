package domain

import (
	"time"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// Evaluation is one judge run over a listing. Critiques are positional:
// Critiques[i] describes Original[i] of the listing at the time of the run.
type Evaluation struct {
	ID        string                `json:"id"`
	ListingID string                `json:"listing_id"`
	Model     string                `json:"model,omitempty"`
	Critiques []transcript.Critique `json:"critiques"`
	CreatedAt time.Time             `json:"created_at"`
}

// SeverityCounts tallies the critiques by severity. A critique with no
// severity counts as a match.
func (e *Evaluation) SeverityCounts() map[transcript.Severity]int {
	counts := make(map[transcript.Severity]int, len(transcript.Severities))
	for _, sev := range transcript.Severities {
		counts[sev] = 0
	}
	for _, c := range e.Critiques {
		sev := c.Severity
		if sev == "" {
			sev = transcript.SeverityNone
		}
		counts[sev]++
	}
	return counts
}
