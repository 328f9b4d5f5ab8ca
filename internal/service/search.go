package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/search"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store"
)

// maxSearchLimit bounds a single page of search hits.
const maxSearchLimit = 100

// SearchService bridges the listing store and the full-text index.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query against the listing index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Limit <= 0 {
		params.Limit = search.DefaultSearchParams().Limit
	}
	params.Limit = min(params.Limit, maxSearchLimit)
	params.Offset = max(params.Offset, 0)
	if params.SortBy == "" {
		params.SortBy = search.SortRelevance
	}
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// NeedsReindex reports whether the index holds a different number of
// documents than the store holds listings, which happens after a mapping
// version change or a crash between a write and its index update.
func (s *SearchService) NeedsReindex(ctx context.Context) (bool, error) {
	page, err := s.store.ListListings(ctx, store.ListOptions{Limit: 1})
	if err != nil {
		return false, fmt.Errorf("count listings: %w", err)
	}
	count, err := s.index.DocumentCount()
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	return uint64(page.Total) != count, nil
}

// ReindexAll rebuilds the index from every stored listing.
// This is a heavy operation - use sparingly.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	const flushAt = 500
	batch := make([]*domain.Listing, 0, flushAt)
	indexed := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.index.IndexListings(ctx, batch); err != nil {
			return fmt.Errorf("index listings: %w", err)
		}
		indexed += len(batch)
		batch = batch[:0]
		return nil
	}

	err := s.store.AllListings(ctx, func(l *domain.Listing) error {
		batch = append(batch, l)
		if len(batch) == flushAt {
			return flush()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("list listings: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	s.logger.Info("full reindex complete", "listings", indexed)
	return nil
}

// TriggerReindexIfNeeded runs ReindexAll in the background when the index
// is out of step with the store.
func (s *SearchService) TriggerReindexIfNeeded(ctx context.Context) {
	needed, err := s.NeedsReindex(ctx)
	if err != nil {
		s.logger.Warn("failed to check search index", "error", err)
		return
	}
	if !needed {
		return
	}

	go func() {
		if err := s.ReindexAll(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("background reindex failed", "error", err)
		}
	}()
}
