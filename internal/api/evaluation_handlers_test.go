package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

func TestRecordEvaluation(t *testing.T) {
	ts := setupTestServer(t)
	listingID := ts.createListing(t)

	first := ts.recordEvaluation(t, listingID, "none", "none")
	second := ts.recordEvaluation(t, listingID, "moderate", "none")

	resp := ts.api.Get("/api/v1/listings/" + listingID + "/evaluations")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[ListEvaluationsResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Evaluations, 2)
	assert.Equal(t, second, env.Data.Evaluations[0].ID)
	assert.Equal(t, first, env.Data.Evaluations[1].ID)

	resp = ts.api.Get("/api/v1/listings/" + listingID + "/evaluations/" + second)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	got := decodeEnvelope[domain.Evaluation](t, resp.Body.Bytes())
	assert.Equal(t, listingID, got.Data.ListingID)
	assert.Equal(t, "judge-v1", got.Data.Model)
	require.Len(t, got.Data.Critiques, 2)
	assert.Equal(t, transcript.SeverityModerate, got.Data.Critiques[0].Severity)
}

func TestRecordEvaluation_Errors(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/listings/lst-missing/evaluations", map[string]any{
		"critiques": []any{},
	})
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())

	listingID := ts.createListing(t)

	resp = ts.api.Post("/api/v1/listings/"+listingID+"/evaluations", map[string]any{"model": "judge-v1"})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "critiques are required")

	resp = ts.api.Post("/api/v1/listings/"+listingID+"/evaluations", map[string]any{
		"critiques": []any{map[string]any{"severity": "severe"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/api/v1/listings/" + listingID + "/evaluations/evl-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
