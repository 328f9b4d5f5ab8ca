package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/alignment"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/cache"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/logger"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/search"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store/sqlite"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// testServices wires every service over temporary storage.
type testServices struct {
	store       *sqlite.Store
	index       *search.SearchIndex
	listings    *ListingService
	evaluations *EvaluationService
	comparison  *ComparisonService
	search      *SearchService
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	dir := t.TempDir()
	log := logger.Discard().Logger

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search"), Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	st.SetSearchIndexer(index)

	c, err := cache.New(cache.Options{MaxEntries: 100, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	engine, err := alignment.NewEngine(alignment.DefaultOptions())
	require.NoError(t, err)

	return &testServices{
		store:       st,
		index:       index,
		listings:    NewListingService(st, log),
		evaluations: NewEvaluationService(st, log),
		comparison:  NewComparisonService(engine, c, st, log),
		search:      NewSearchService(index, st, log),
	}
}

func timed(speaker, text string, start, end float64) transcript.Segment {
	return transcript.Segment{
		Speaker: speaker,
		Text:    text,
		Start:   transcript.Seconds(start),
		End:     transcript.Seconds(end),
	}
}

// consult is a two-turn exchange where the model misheard the dose.
func consult() CreateListingRequest {
	return CreateListingRequest{
		Name:   "Cardiology consult",
		Source: "api",
		Original: []transcript.Segment{
			timed("Doctor", "Take five milligrams daily.", 0, 4),
			timed("Patient", "Okay, with food?", 4, 6),
		},
		Generated: []transcript.Segment{
			timed("Doctor", "Take fifty milligrams daily.", 0, 4),
			timed("Patient", "Okay, with food?", 4, 6),
		},
		Tags: []string{"Cardiology", "Dosage Error"},
	}
}

func critiques(sevs ...transcript.Severity) []transcript.Critique {
	out := make([]transcript.Critique, len(sevs))
	for i, s := range sevs {
		out[i] = transcript.Critique{Severity: s, LikelyCorrect: transcript.VerdictOriginal}
	}
	return out
}
