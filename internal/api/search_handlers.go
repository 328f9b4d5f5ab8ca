package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search listings",
		Description: "Full-text search over listing names and transcripts with tag, speaker and source filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID:   "reindexSearch",
		Method:        http.MethodPost,
		Path:          "/api/v1/search/reindex",
		Summary:       "Rebuild search index",
		Description:   "Rebuilds the search index from every stored listing",
		Tags:          []string{"Search"},
		DefaultStatus: http.StatusAccepted,
	}, s.handleReindex)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query   string   `query:"q" doc:"Search query"`
	Tags    []string `query:"tags" doc:"Match listings carrying any of these tags"`
	Speaker string   `query:"speaker" doc:"Match listings with this speaker"`
	Source  string   `query:"source" doc:"Match listings from this source"`
	Sort    string   `query:"sort" enum:"relevance,recent" doc:"Result order (default relevance)"`
	Limit   int      `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset  int      `query:"offset" minimum:"0" doc:"Results to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	res, err := s.services.Search.Search(ctx, search.SearchParams{
		Query:     input.Query,
		Tags:      input.Tags,
		Speaker:   input.Speaker,
		Source:    input.Source,
		SortBy:    input.Sort,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Highlight: true,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: res}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	go func() {
		if err := s.services.Search.ReindexAll(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("reindex failed", "error", err)
		}
	}()
	return &MessageOutput{Body: MessageResponse{Message: "Reindex started"}}, nil
}
