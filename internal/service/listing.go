package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/id"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/util"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/validation"
)

// ListingService manages stored transcript pairs.
type ListingService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewListingService creates a new listing service.
func NewListingService(store store.Store, logger *slog.Logger) *ListingService {
	return &ListingService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateListingRequest contains fields for creating a listing.
type CreateListingRequest struct {
	Name      string               `json:"name" validate:"nonblank,max=200"`
	Source    string               `json:"source" validate:"max=200"`
	Original  []transcript.Segment `json:"original" validate:"required"`
	Generated []transcript.Segment `json:"generated" validate:"required"`
	Tags      []string             `json:"tags" validate:"max=20,dive,max=50"`
}

// CreateListing validates and persists a new listing.
func (s *ListingService) CreateListing(ctx context.Context, req CreateListingRequest) (*domain.Listing, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	listingID, err := id.Generate(id.PrefixListing)
	if err != nil {
		return nil, fmt.Errorf("generate listing id: %w", err)
	}

	l := &domain.Listing{
		Syncable:  domain.Syncable{ID: listingID},
		Name:      req.Name,
		Source:    req.Source,
		Original:  req.Original,
		Generated: req.Generated,
		Tags:      util.Slugs(req.Tags),
	}
	l.InitTimestamps()

	if err := s.store.CreateListing(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("listing created",
		"listing_id", l.ID,
		"original_segments", len(l.Original),
		"generated_segments", len(l.Generated),
	)
	return l, nil
}

// GetListing returns a single listing.
func (s *ListingService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return s.store.GetListing(ctx, id)
}

// ListListings returns a page of listings, newest first.
func (s *ListingService) ListListings(ctx context.Context, opts store.ListOptions) (store.Page[*domain.Listing], error) {
	return s.store.ListListings(ctx, opts)
}

// UpdateListingRequest contains the optional fields of a listing update.
// Nil fields are left unchanged.
type UpdateListingRequest struct {
	Name      *string              `json:"name,omitempty" validate:"omitnil,nonblank,max=200"`
	Source    *string              `json:"source,omitempty" validate:"omitnil,max=200"`
	Original  []transcript.Segment `json:"original,omitempty"`
	Generated []transcript.Segment `json:"generated,omitempty"`
	Tags      []string             `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateListing applies a partial update. Changing either transcript moves
// UpdatedAt forward, which retires any memoized comparison of the old version.
func (s *ListingService) UpdateListing(ctx context.Context, id string, req UpdateListingRequest) (*domain.Listing, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	l, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := domain.ListingPatch{
		Name:      req.Name,
		Source:    req.Source,
		Original:  req.Original,
		Generated: req.Generated,
	}
	if req.Tags != nil {
		patch.Tags = util.Slugs(req.Tags)
	}
	if patch.IsEmpty() {
		return l, nil
	}

	patch.Apply(l)
	l.Touch()

	if err := s.store.UpdateListing(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("listing updated", "listing_id", l.ID)
	return l, nil
}

// DeleteListing removes a listing together with its evaluations.
func (s *ListingService) DeleteListing(ctx context.Context, id string) error {
	if err := s.store.DeleteListing(ctx, id); err != nil {
		return err
	}
	s.logger.Info("listing deleted", "listing_id", id)
	return nil
}
