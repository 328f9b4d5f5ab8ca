package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/service"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

func (s *Server) registerListingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createListing",
		Method:        http.MethodPost,
		Path:          "/api/v1/listings",
		Summary:       "Create listing",
		Description:   "Stores a transcript pair. Body: {name, source?, original, generated, tags?}",
		Tags:          []string{"Listings"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateListing)

	huma.Register(s.api, huma.Operation{
		OperationID: "listListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings",
		Summary:     "List listings",
		Description: "Returns a page of listings, newest first",
		Tags:        []string{"Listings"},
	}, s.handleListListings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListing",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{id}",
		Summary:     "Get listing",
		Description: "Returns a listing with both transcripts",
		Tags:        []string{"Listings"},
	}, s.handleGetListing)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateListing",
		Method:      http.MethodPatch,
		Path:        "/api/v1/listings/{id}",
		Summary:     "Update listing",
		Description: "Updates the given fields of a listing",
		Tags:        []string{"Listings"},
	}, s.handleUpdateListing)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteListing",
		Method:      http.MethodDelete,
		Path:        "/api/v1/listings/{id}",
		Summary:     "Delete listing",
		Description: "Deletes a listing and its evaluations",
		Tags:        []string{"Listings"},
	}, s.handleDeleteListing)
}

// === DTOs ===

// ListingSummary describes a listing without its transcripts.
type ListingSummary struct {
	ID                string    `json:"id" doc:"Listing ID"`
	Name              string    `json:"name" doc:"Display name"`
	Source            string    `json:"source,omitempty" doc:"Where the listing came from"`
	Tags              []string  `json:"tags" doc:"Tag slugs"`
	Speakers          []string  `json:"speakers" doc:"Normalized speaker labels"`
	OriginalSegments  int       `json:"original_segments" doc:"Number of original segments"`
	GeneratedSegments int       `json:"generated_segments" doc:"Number of generated segments"`
	CreatedAt         time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt         time.Time `json:"updated_at" doc:"Last update time"`
}

// ListingResponse contains a full listing.
type ListingResponse struct {
	ListingSummary
	Original  []transcript.Segment `json:"original" doc:"Reference transcript"`
	Generated []transcript.Segment `json:"generated" doc:"Transcript under evaluation"`
}

// ListingOutput wraps a listing for Huma.
type ListingOutput struct {
	Body ListingResponse
}

// ListingBodyInput carries a raw listing body.
type ListingBodyInput struct {
	RawBody []byte
}

// ListingIDInput identifies a listing.
type ListingIDInput struct {
	ID string `path:"id" doc:"Listing ID"`
}

// UpdateListingInput carries a raw partial update.
type UpdateListingInput struct {
	ID      string `path:"id" doc:"Listing ID"`
	RawBody []byte
}

// ListListingsInput contains pagination parameters.
type ListListingsInput struct {
	Limit  int `query:"limit" minimum:"0" maximum:"500" doc:"Page size (default 50)"`
	Offset int `query:"offset" minimum:"0" doc:"Items to skip"`
}

// ListListingsResponse contains a page of listings.
type ListListingsResponse struct {
	Listings []ListingSummary `json:"listings" doc:"Listings on this page"`
	Total    int              `json:"total" doc:"Total number of listings"`
	HasMore  bool             `json:"has_more" doc:"Whether more pages follow"`
}

// ListListingsOutput wraps the listing page for Huma.
type ListListingsOutput struct {
	Body ListListingsResponse
}

func toListingSummary(l *domain.Listing) ListingSummary {
	speakers := l.Speakers()
	if speakers == nil {
		speakers = []string{}
	}
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	return ListingSummary{
		ID:                l.ID,
		Name:              l.Name,
		Source:            l.Source,
		Tags:              tags,
		Speakers:          speakers,
		OriginalSegments:  len(l.Original),
		GeneratedSegments: len(l.Generated),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func toListingResponse(l *domain.Listing) ListingResponse {
	resp := ListingResponse{
		ListingSummary: toListingSummary(l),
		Original:       l.Original,
		Generated:      l.Generated,
	}
	if resp.Original == nil {
		resp.Original = []transcript.Segment{}
	}
	if resp.Generated == nil {
		resp.Generated = []transcript.Segment{}
	}
	return resp
}

// === Handlers ===

func (s *Server) handleCreateListing(ctx context.Context, input *ListingBodyInput) (*ListingOutput, error) {
	var req service.CreateListingRequest
	if err := decodeBody(input.RawBody, &req); err != nil {
		return nil, err
	}
	if req.Source == "" {
		req.Source = "api"
	}

	l, err := s.services.Listing.CreateListing(ctx, req)
	if err != nil {
		return nil, err
	}
	return &ListingOutput{Body: toListingResponse(l)}, nil
}

func (s *Server) handleListListings(ctx context.Context, input *ListListingsInput) (*ListListingsOutput, error) {
	page, err := s.services.Listing.ListListings(ctx, store.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	listings := make([]ListingSummary, len(page.Items))
	for i, l := range page.Items {
		listings[i] = toListingSummary(l)
	}

	return &ListListingsOutput{
		Body: ListListingsResponse{
			Listings: listings,
			Total:    page.Total,
			HasMore:  page.HasMore,
		},
	}, nil
}

func (s *Server) handleGetListing(ctx context.Context, input *ListingIDInput) (*ListingOutput, error) {
	l, err := s.services.Listing.GetListing(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListingOutput{Body: toListingResponse(l)}, nil
}

func (s *Server) handleUpdateListing(ctx context.Context, input *UpdateListingInput) (*ListingOutput, error) {
	var req service.UpdateListingRequest
	if err := decodeBody(input.RawBody, &req); err != nil {
		return nil, err
	}

	l, err := s.services.Listing.UpdateListing(ctx, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &ListingOutput{Body: toListingResponse(l)}, nil
}

func (s *Server) handleDeleteListing(ctx context.Context, input *ListingIDInput) (*MessageOutput, error) {
	if err := s.services.Listing.DeleteListing(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Listing deleted"}}, nil
}
