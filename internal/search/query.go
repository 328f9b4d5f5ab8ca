package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// Sort orders.
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // free text; empty matches everything

	// Filters
	Tags    []string // listing must carry at least one of these tags
	Speaker string   // listing must include this speaker (normalized before matching)
	Source  string   // exact source

	Limit  int
	Offset int
	SortBy string // relevance (default) or recent

	Highlight bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		SortBy:    SortRelevance,
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets []FacetCount `json:"tag_facets,omitempty"`
}

// SearchHit represents a single matching listing.
type SearchHit struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Name         string            `json:"name"`
	Source       string            `json:"source,omitempty"`
	Speakers     []string          `json:"speakers,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	SegmentCount int               `json:"segment_count"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)

	if params.SortBy == SortRecent {
		req.SortBy([]string{"-created_at", "-_score"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
	}

	req.AddFacet("tags", bleve.NewFacetRequest("tags", 20))

	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
		req.Highlight.AddField("original_text")
		req.Highlight.AddField("generated_text")
	}

	req.Fields = []string{"id", "name", "source", "speakers", "tags", "segment_count"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{
			ID:       hit.ID,
			Score:    hit.Score,
			Speakers: stringsField(hit.Fields["speakers"]),
			Tags:     stringsField(hit.Fields["tags"]),
		}
		if n, ok := hit.Fields["name"].(string); ok {
			h.Name = n
		}
		if src, ok := hit.Fields["source"].(string); ok {
			h.Source = src
		}
		if c, ok := hit.Fields["segment_count"].(float64); ok {
			h.SegmentCount = int(c)
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	if facet, ok := res.Facets["tags"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Facets = append(result.Facets, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// Text matches on the name rank above matches inside the transcripts.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		originalMatch := bleve.NewMatchQuery(q)
		originalMatch.SetField("original_text")

		generatedMatch := bleve.NewMatchQuery(q)
		generatedMatch.SetField("generated_text")

		// Typo tolerance on names.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, originalMatch, generatedMatch, fuzzy}

		// Prefix for autocomplete (minimum 2 chars)
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, tag := range params.Tags {
			tq := bleve.NewTermQuery(tag)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	if speaker := transcript.NormalizeSpeaker(params.Speaker); speaker != "" {
		sq := bleve.NewTermQuery(speaker)
		sq.SetField("speakers")
		queries = append(queries, sq)
	}

	if params.Source != "" {
		sq := bleve.NewTermQuery(params.Source)
		sq.SetField("source")
		queries = append(queries, sq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// stringsField reads a stored multi-value field. Bleve returns a single
// value as a string and several as []any.
func stringsField(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
