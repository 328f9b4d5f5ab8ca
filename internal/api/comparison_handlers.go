package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/devops-tatvacare/ai-evals-platform-sub003/internal/errors"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

func (s *Server) registerComparisonRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "alignTranscripts",
		Method:      http.MethodPost,
		Path:        "/api/v1/align",
		Summary:     "Align transcripts",
		Description: "Pairs original and generated segments by temporal overlap. Body: {original, generated, critiques?}",
		Tags:        []string{"Comparison"},
	}, s.handleAlign)

	huma.Register(s.api, huma.Operation{
		OperationID: "normalizeTimeline",
		Method:      http.MethodPost,
		Path:        "/api/v1/timeline",
		Summary:     "Build timeline",
		Description: "Cuts both transcripts at every segment boundary into a lossless timeline",
		Tags:        []string{"Comparison"},
	}, s.handleTimeline)

	huma.Register(s.api, huma.Operation{
		OperationID: "summarizeComparison",
		Method:      http.MethodPost,
		Path:        "/api/v1/summary",
		Summary:     "Summarize comparison",
		Description: "Computes both views and returns their statistics",
		Tags:        []string{"Comparison"},
	}, s.handleSummary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListingAlignment",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}/alignment",
		Summary:     "Align listing",
		Description: "Aligns a stored listing using the critiques of an evaluation (latest by default)",
		Tags:        []string{"Comparison"},
	}, s.handleListingAlignment)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListingTimeline",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}/timeline",
		Summary:     "Listing timeline",
		Description: "Builds the timeline of a stored listing",
		Tags:        []string{"Comparison"},
	}, s.handleListingTimeline)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListingSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}/summary",
		Summary:     "Listing summary",
		Description: "Summarizes both views of a stored listing",
		Tags:        []string{"Comparison"},
	}, s.handleListingSummary)
}

// === DTOs ===

// ComparisonInput carries an ad hoc payload.
type ComparisonInput struct {
	Severity string `query:"severity" doc:"Keep only rows of this severity: all, match, issues, minor, moderate, critical"`
	RawBody  []byte
}

// SummaryInput carries an ad hoc payload for the summary.
type SummaryInput struct {
	RawBody []byte
}

// ListingComparisonInput selects a stored listing and evaluation.
type ListingComparisonInput struct {
	ID         string `path:"id" doc:"Listing ID"`
	Evaluation string `query:"evaluation" doc:"Evaluation ID; defaults to the latest"`
	Severity   string `query:"severity" doc:"Keep only rows of this severity: all, match, issues, minor, moderate, critical"`
}

// ListingSummaryInput selects a stored listing and evaluation for the summary.
type ListingSummaryInput struct {
	ID         string `path:"id" doc:"Listing ID"`
	Evaluation string `query:"evaluation" doc:"Evaluation ID; defaults to the latest"`
}

// AlignmentOutput wraps the aligned rows for Huma.
type AlignmentOutput struct {
	Body *service.AlignmentView
}

// TimelineOutput wraps the timeline for Huma.
type TimelineOutput struct {
	Body *service.TimelineView
}

// SummaryOutput wraps the summary for Huma.
type SummaryOutput struct {
	Body *service.SummaryView
}

// === Handlers ===

func decodePayload(raw []byte) (*transcript.Payload, error) {
	p, err := transcript.DecodePayload(raw)
	if err != nil {
		return nil, domainerrors.Validation(err.Error()).WithCause(err)
	}
	return p, nil
}

func (s *Server) handleAlign(ctx context.Context, input *ComparisonInput) (*AlignmentOutput, error) {
	filter, err := parseSeverity(input.Severity)
	if err != nil {
		return nil, err
	}
	p, err := decodePayload(input.RawBody)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Comparison.Align(ctx, p, filter)
	if err != nil {
		return nil, err
	}
	return &AlignmentOutput{Body: view}, nil
}

func (s *Server) handleTimeline(ctx context.Context, input *ComparisonInput) (*TimelineOutput, error) {
	filter, err := parseSeverity(input.Severity)
	if err != nil {
		return nil, err
	}
	p, err := decodePayload(input.RawBody)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Comparison.Timeline(ctx, p, filter)
	if err != nil {
		return nil, err
	}
	return &TimelineOutput{Body: view}, nil
}

func (s *Server) handleSummary(ctx context.Context, input *SummaryInput) (*SummaryOutput, error) {
	p, err := decodePayload(input.RawBody)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Comparison.Summary(ctx, p)
	if err != nil {
		return nil, err
	}
	return &SummaryOutput{Body: view}, nil
}

func (s *Server) handleListingAlignment(ctx context.Context, input *ListingComparisonInput) (*AlignmentOutput, error) {
	filter, err := parseSeverity(input.Severity)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Comparison.ListingAlignment(ctx, input.ID, input.Evaluation, filter)
	if err != nil {
		return nil, err
	}
	return &AlignmentOutput{Body: view}, nil
}

func (s *Server) handleListingTimeline(ctx context.Context, input *ListingComparisonInput) (*TimelineOutput, error) {
	filter, err := parseSeverity(input.Severity)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Comparison.ListingTimeline(ctx, input.ID, input.Evaluation, filter)
	if err != nil {
		return nil, err
	}
	return &TimelineOutput{Body: view}, nil
}

func (s *Server) handleListingSummary(ctx context.Context, input *ListingSummaryInput) (*SummaryOutput, error) {
	view, err := s.services.Comparison.ListingSummary(ctx, input.ID, input.Evaluation)
	if err != nil {
		return nil, err
	}
	return &SummaryOutput{Body: view}, nil
}
