package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"
)

func (s *Server) registerEvaluationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "recordEvaluation",
		Method:        http.MethodPost,
		Path:          "/api/v1/listings/{id}/evaluations",
		Summary:       "Record evaluation",
		Description:   "Stores the critiques of one judge run. Body: {model?, critiques}",
		Tags:          []string{"Evaluations"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRecordEvaluation)

	huma.Register(s.api, huma.Operation{
		OperationID: "listEvaluations",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}/evaluations",
		Summary:     "List evaluations",
		Description: "Returns the evaluations of a listing, newest first",
		Tags:        []string{"Evaluations"},
	}, s.handleListEvaluations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEvaluation",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}/evaluations/{evaluationId}",
		Summary:     "Get evaluation",
		Description: "Returns one evaluation of a listing",
		Tags:        []string{"Evaluations"},
	}, s.handleGetEvaluation)
}

// === DTOs ===

// RecordEvaluationInput carries a raw evaluation body.
type RecordEvaluationInput struct {
	ID      string `path:"id" doc:"Listing ID"`
	RawBody []byte
}

// EvaluationOutput wraps an evaluation for Huma.
type EvaluationOutput struct {
	Body *domain.Evaluation
}

// GetEvaluationInput identifies one evaluation.
type GetEvaluationInput struct {
	ID           string `path:"id" doc:"Listing ID"`
	EvaluationID string `path:"evaluationId" doc:"Evaluation ID"`
}

// ListEvaluationsResponse contains the evaluations of a listing.
type ListEvaluationsResponse struct {
	Evaluations []*domain.Evaluation `json:"evaluations" doc:"Evaluations, newest first"`
}

// ListEvaluationsOutput wraps the evaluation list for Huma.
type ListEvaluationsOutput struct {
	Body ListEvaluationsResponse
}

// === Handlers ===

func (s *Server) handleRecordEvaluation(ctx context.Context, input *RecordEvaluationInput) (*EvaluationOutput, error) {
	var req service.RecordEvaluationRequest
	if err := decodeBody(input.RawBody, &req); err != nil {
		return nil, err
	}

	e, err := s.services.Evaluation.RecordEvaluation(ctx, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &EvaluationOutput{Body: e}, nil
}

func (s *Server) handleListEvaluations(ctx context.Context, input *ListingIDInput) (*ListEvaluationsOutput, error) {
	evals, err := s.services.Evaluation.ListEvaluations(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListEvaluationsOutput{Body: ListEvaluationsResponse{Evaluations: evals}}, nil
}

func (s *Server) handleGetEvaluation(ctx context.Context, input *GetEvaluationInput) (*EvaluationOutput, error) {
	e, err := s.services.Evaluation.GetEvaluation(ctx, input.ID, input.EvaluationID)
	if err != nil {
		return nil, err
	}
	return &EvaluationOutput{Body: e}, nil
}
