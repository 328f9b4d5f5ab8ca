// Package store defines persistence contracts for listings and evaluations.
package store

import (
	"context"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
)

// Store is the persistence surface the services depend on.
type Store interface {
	SetSearchIndexer(indexer SearchIndexer)

	// Listings
	CreateListing(ctx context.Context, l *domain.Listing) error
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context, opts ListOptions) (Page[*domain.Listing], error)
	UpdateListing(ctx context.Context, l *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
	AllListings(ctx context.Context, fn func(*domain.Listing) error) error

	// Evaluations
	CreateEvaluation(ctx context.Context, e *domain.Evaluation) error
	GetEvaluation(ctx context.Context, listingID, id string) (*domain.Evaluation, error)
	ListEvaluations(ctx context.Context, listingID string) ([]*domain.Evaluation, error)
	LatestEvaluation(ctx context.Context, listingID string) (*domain.Evaluation, error)

	Ping(ctx context.Context) error
	Close() error
}

// SearchIndexer is the interface for updating the search index.
type SearchIndexer interface {
	IndexListing(ctx context.Context, l *domain.Listing) error
	DeleteListing(ctx context.Context, listingID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

func (NoopSearchIndexer) IndexListing(context.Context, *domain.Listing) error { return nil }
func (NoopSearchIndexer) DeleteListing(context.Context, string) error         { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer { return NoopSearchIndexer{} }
