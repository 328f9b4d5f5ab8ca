package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	domainerrors "github.com/devops-tatvacare/ai-evals-platform-sub003/internal/errors"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/id"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/validation"
)

// EvaluationService records judge runs against stored listings.
type EvaluationService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewEvaluationService creates a new evaluation service.
func NewEvaluationService(store store.Store, logger *slog.Logger) *EvaluationService {
	return &EvaluationService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// RecordEvaluationRequest contains the output of one judge run.
type RecordEvaluationRequest struct {
	Model     string                `json:"model" validate:"max=100"`
	Critiques []transcript.Critique `json:"critiques" validate:"required"`
}

// RecordEvaluation stores a judge run for an existing listing.
// Critiques beyond the listing's original segment count are kept but never
// joined to a segment.
func (s *EvaluationService) RecordEvaluation(ctx context.Context, listingID string, req RecordEvaluationRequest) (*domain.Evaluation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateCritiques(req.Critiques); err != nil {
		return nil, err
	}

	l, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	evalID, err := id.Generate(id.PrefixEvaluation)
	if err != nil {
		return nil, fmt.Errorf("generate evaluation id: %w", err)
	}

	e := &domain.Evaluation{
		ID:        evalID,
		ListingID: l.ID,
		Model:     req.Model,
		Critiques: req.Critiques,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateEvaluation(ctx, e); err != nil {
		return nil, err
	}

	if extra := len(e.Critiques) - len(l.Original); extra > 0 {
		s.logger.Warn("evaluation has more critiques than original segments",
			"listing_id", l.ID,
			"evaluation_id", e.ID,
			"extra", extra,
		)
	}
	s.logger.Info("evaluation recorded",
		"listing_id", l.ID,
		"evaluation_id", e.ID,
		"critiques", len(e.Critiques),
	)
	return e, nil
}

// ListEvaluations returns the evaluations of a listing, newest first.
func (s *EvaluationService) ListEvaluations(ctx context.Context, listingID string) ([]*domain.Evaluation, error) {
	if _, err := s.store.GetListing(ctx, listingID); err != nil {
		return nil, err
	}
	evals, err := s.store.ListEvaluations(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if evals == nil {
		evals = []*domain.Evaluation{}
	}
	return evals, nil
}

// LatestEvaluation returns the most recent evaluation of a listing.
func (s *EvaluationService) LatestEvaluation(ctx context.Context, listingID string) (*domain.Evaluation, error) {
	return s.store.LatestEvaluation(ctx, listingID)
}

// GetEvaluation returns one evaluation of a listing.
func (s *EvaluationService) GetEvaluation(ctx context.Context, listingID, evaluationID string) (*domain.Evaluation, error) {
	return s.store.GetEvaluation(ctx, listingID, evaluationID)
}

// validateCritiques catches severities that bypassed JSON decoding.
func validateCritiques(critiques []transcript.Critique) error {
	details := make(map[string]string)
	for i, c := range critiques {
		if c.Severity != "" && !c.Severity.Valid() {
			details["critiques["+strconv.Itoa(i)+"].severity"] = fmt.Sprintf("unknown severity %q", c.Severity)
		}
	}
	if len(details) == 0 {
		return nil
	}
	return domainerrors.ValidationWithDetails("validation failed: critiques", details)
}
