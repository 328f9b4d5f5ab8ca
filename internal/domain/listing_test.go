package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

func TestListing_Speakers(t *testing.T) {
	l := &Listing{
		Original: []transcript.Segment{
			{Speaker: "Doctor", Text: "hello"},
			{Speaker: "  patient ", Text: "hi"},
			{Speaker: "", Text: "(noise)"},
		},
		Generated: []transcript.Segment{
			{Speaker: "DOCTOR", Text: "hello"},
			{Speaker: "Nurse", Text: "hi"},
		},
	}

	assert.Equal(t, []string{"doctor", "patient", "nurse"}, l.Speakers())
}

func TestListing_PayloadIsIndependent(t *testing.T) {
	l := &Listing{
		Original:  []transcript.Segment{{Speaker: "A", Text: "one"}},
		Generated: []transcript.Segment{{Speaker: "A", Text: "uno"}},
	}
	critiques := []transcript.Critique{{Severity: transcript.SeverityMinor}}

	p := l.Payload(critiques)
	p.Original[0].Text = "changed"
	p.Critiques[0].Severity = transcript.SeverityCritical

	assert.Equal(t, "one", l.Original[0].Text)
	assert.Equal(t, transcript.SeverityMinor, critiques[0].Severity)
	assert.Len(t, p.Generated, 1)
}

func TestListingPatch(t *testing.T) {
	assert.True(t, ListingPatch{}.IsEmpty())

	name := "renamed"
	patch := ListingPatch{Name: &name, Tags: []string{"clinic"}}
	require.False(t, patch.IsEmpty())

	l := &Listing{Name: "original", Source: "api", Tags: []string{"old"}}
	patch.Apply(l)

	assert.Equal(t, "renamed", l.Name)
	assert.Equal(t, "api", l.Source)
	assert.Equal(t, []string{"clinic"}, l.Tags)
}

func TestSyncable_TouchIsMonotonic(t *testing.T) {
	var s Syncable
	s.InitTimestamps()
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	// Pretend the clock is behind the stored version.
	future := time.Now().Add(time.Hour)
	s.UpdatedAt = future
	s.Touch()

	assert.True(t, s.UpdatedAt.After(future))
}

func TestEvaluation_SeverityCounts(t *testing.T) {
	e := &Evaluation{Critiques: []transcript.Critique{
		{Severity: transcript.SeverityNone},
		{},
		{Severity: transcript.SeverityMinor},
		{Severity: transcript.SeverityCritical},
		{Severity: transcript.SeverityCritical},
	}}

	assert.Equal(t, map[transcript.Severity]int{
		transcript.SeverityNone:     2,
		transcript.SeverityMinor:    1,
		transcript.SeverityModerate: 0,
		transcript.SeverityCritical: 2,
	}, e.SeverityCounts())
}
