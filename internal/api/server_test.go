package api

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/alignment"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/cache"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/config"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/logger"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/search"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type testServer struct {
	*Server
	api humatest.TestAPI
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:               "0",
			ReadTimeout:        time.Second,
			WriteTimeout:       time.Second,
			IdleTimeout:        time.Second,
			CORSAllowedOrigins: []string{"*"},
		},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
}

// setupTestServer wires a server over temporary storage.
func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithConfig(t, testConfig())
}

func setupTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
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

	services := &Services{
		Listing:    service.NewListingService(st, log),
		Evaluation: service.NewEvaluationService(st, log),
		Comparison: service.NewComparisonService(engine, c, st, log),
		Search:     service.NewSearchService(index, st, log),
	}

	s := NewServer(st, services, cfg, log)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

func decodeEnvelope[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

func segment(speaker, text string, start, end any) map[string]any {
	return map[string]any{"speaker": speaker, "text": text, "start": start, "end": end}
}

// consultBody is a two-turn exchange where the model misheard the dose.
func consultBody() map[string]any {
	return map[string]any{
		"original": []any{
			segment("Doctor", "Take five milligrams daily.", 0, 4),
			segment("Patient", "Okay, with food?", "00:04", "00:06"),
		},
		"generated": []any{
			segment("Doctor", "Take fifty milligrams daily.", 0, 4),
			segment("Patient", "Okay, with food?", 4, 6),
		},
		"critiques": []any{
			map[string]any{"severity": "critical", "discrepancy": "five vs fifty", "likelyCorrect": "original", "confidence": 0.9},
			map[string]any{"severity": "none", "discrepancy": "", "likelyCorrect": "both"},
		},
	}
}
