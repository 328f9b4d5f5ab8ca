package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/alignment"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/cache"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// View names a comparison output. It is also the cache key namespace.
type View string

// Views.
const (
	ViewAlignment View = "alignment"
	ViewTimeline  View = "timeline"
	ViewSummary   View = "summary"
)

// AlignmentView is the aligned rows of one comparison after filtering.
type AlignmentView struct {
	alignment.AlignmentResult
	Filter       alignment.SeverityFilter `json:"filter"`
	TotalRows    int                      `json:"totalRows"`
	ListingID    string                   `json:"listingId,omitempty"`
	EvaluationID string                   `json:"evaluationId,omitempty"`
}

// TimelineView is the timeline of one comparison after filtering. Stats
// always describe the unfiltered timeline.
type TimelineView struct {
	alignment.TimelineResult
	Filter       alignment.SeverityFilter `json:"filter"`
	ListingID    string                   `json:"listingId,omitempty"`
	EvaluationID string                   `json:"evaluationId,omitempty"`
}

// SummaryView is the combined statistics of one comparison.
type SummaryView struct {
	alignment.Summary
	ListingID    string `json:"listingId,omitempty"`
	EvaluationID string `json:"evaluationId,omitempty"`
}

// ComparisonService runs the alignment engine over ad hoc payloads and
// stored listings, memoizing every computed view.
type ComparisonService struct {
	engine *alignment.Engine
	cache  *cache.Cache
	store  store.Store
	logger *slog.Logger
}

// NewComparisonService creates a new comparison service.
func NewComparisonService(engine *alignment.Engine, c *cache.Cache, store store.Store, logger *slog.Logger) *ComparisonService {
	return &ComparisonService{
		engine: engine,
		cache:  c,
		store:  store,
		logger: logger,
	}
}

// subject is one resolved comparison input with its cache identity.
type subject struct {
	payload      *transcript.Payload
	keyParts     []any
	listingID    string
	evaluationID string
}

func (s *ComparisonService) adHoc(p *transcript.Payload) subject {
	return subject{
		payload:  p,
		keyParts: []any{p.Original, p.Generated, p.Critiques, s.engine.Options()},
	}
}

// stored resolves a listing and the evaluation supplying its critiques. An
// empty evaluationID selects the latest evaluation; a listing with no
// evaluations is compared without critiques.
func (s *ComparisonService) stored(ctx context.Context, listingID, evaluationID string) (subject, error) {
	l, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return subject{}, err
	}

	var eval *domain.Evaluation
	if evaluationID != "" {
		eval, err = s.store.GetEvaluation(ctx, listingID, evaluationID)
	} else {
		eval, err = s.store.LatestEvaluation(ctx, listingID)
		if errors.Is(err, store.ErrNotFound) {
			eval, err = nil, nil
		}
	}
	if err != nil {
		return subject{}, err
	}

	var critiques []transcript.Critique
	if eval != nil {
		critiques = eval.Critiques
		evaluationID = eval.ID
	}

	return subject{
		payload:      l.Payload(critiques),
		keyParts:     []any{l.ID, l.UpdatedAt, evaluationID, s.engine.Options()},
		listingID:    l.ID,
		evaluationID: evaluationID,
	}, nil
}

func (s *ComparisonService) key(view View, subj subject) (cache.Key, error) {
	key, err := cache.NewKey(string(view), subj.keyParts...)
	if err != nil {
		return "", fmt.Errorf("derive %s cache key: %w", view, err)
	}
	return key, nil
}

func (s *ComparisonService) alignResult(ctx context.Context, subj subject) (alignment.AlignmentResult, error) {
	key, err := s.key(ViewAlignment, subj)
	if err != nil {
		return alignment.AlignmentResult{}, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(context.Context) (alignment.AlignmentResult, error) {
		p := subj.payload
		res := s.engine.Align(p.Original, p.Generated, p.Critiques)
		if res.UsedFallback {
			s.warnFallback(ViewAlignment, subj)
		}
		return res, nil
	})
}

func (s *ComparisonService) timelineResult(ctx context.Context, subj subject) (alignment.TimelineResult, error) {
	key, err := s.key(ViewTimeline, subj)
	if err != nil {
		return alignment.TimelineResult{}, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(context.Context) (alignment.TimelineResult, error) {
		p := subj.payload
		res := s.engine.Timeline(p.Original, p.Generated, p.Critiques)
		if res.UsedFallback {
			s.warnFallback(ViewTimeline, subj)
		}
		return res, nil
	})
}

func (s *ComparisonService) summaryResult(ctx context.Context, subj subject) (alignment.Summary, error) {
	key, err := s.key(ViewSummary, subj)
	if err != nil {
		return alignment.Summary{}, err
	}
	return cache.GetOrLoad(ctx, s.cache, key, func(ctx context.Context) (alignment.Summary, error) {
		var (
			a alignment.AlignmentResult
			t alignment.TimelineResult
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			a, err = s.alignResult(gctx, subj)
			return err
		})
		g.Go(func() error {
			var err error
			t, err = s.timelineResult(gctx, subj)
			return err
		})
		if err := g.Wait(); err != nil {
			return alignment.Summary{}, err
		}
		return alignment.Summarize(a, t), nil
	})
}

// warnFallback logs why synthetic slots replaced the real timestamps.
func (s *ComparisonService) warnFallback(view View, subj subject) {
	reason := transcript.AssessReliability(subj.payload.Original)
	side := "original"
	if reason.Reliable {
		reason = transcript.AssessReliability(subj.payload.Generated)
		side = "generated"
	}
	s.logger.Warn("timestamps unreliable, using synthetic slots",
		"view", string(view),
		"listing_id", subj.listingID,
		"side", side,
		"segment", reason.Index,
		"reason", reason.Reason,
	)
}

func (s *ComparisonService) alignmentView(ctx context.Context, subj subject, filter alignment.SeverityFilter) (*AlignmentView, error) {
	res, err := s.alignResult(ctx, subj)
	if err != nil {
		return nil, err
	}
	total := len(res.Segments)
	res.Segments = alignment.FilterAlignment(res.Segments, filter)
	return &AlignmentView{
		AlignmentResult: res,
		Filter:          normalizeFilter(filter),
		TotalRows:       total,
		ListingID:       subj.listingID,
		EvaluationID:    subj.evaluationID,
	}, nil
}

func (s *ComparisonService) timelineView(ctx context.Context, subj subject, filter alignment.SeverityFilter) (*TimelineView, error) {
	res, err := s.timelineResult(ctx, subj)
	if err != nil {
		return nil, err
	}
	res.Slices = alignment.FilterTimeline(res.Slices, filter)
	res.UnplacedOriginals = alignment.FilterUnplaced(res.UnplacedOriginals, filter)
	return &TimelineView{
		TimelineResult: res,
		Filter:         normalizeFilter(filter),
		ListingID:      subj.listingID,
		EvaluationID:   subj.evaluationID,
	}, nil
}

func (s *ComparisonService) summaryView(ctx context.Context, subj subject) (*SummaryView, error) {
	sum, err := s.summaryResult(ctx, subj)
	if err != nil {
		return nil, err
	}
	return &SummaryView{
		Summary:      sum,
		ListingID:    subj.listingID,
		EvaluationID: subj.evaluationID,
	}, nil
}

// Align aligns an ad hoc payload.
func (s *ComparisonService) Align(ctx context.Context, p *transcript.Payload, filter alignment.SeverityFilter) (*AlignmentView, error) {
	return s.alignmentView(ctx, s.adHoc(p), filter)
}

// Timeline builds the timeline of an ad hoc payload.
func (s *ComparisonService) Timeline(ctx context.Context, p *transcript.Payload, filter alignment.SeverityFilter) (*TimelineView, error) {
	return s.timelineView(ctx, s.adHoc(p), filter)
}

// Summary computes both views of an ad hoc payload and summarizes them.
func (s *ComparisonService) Summary(ctx context.Context, p *transcript.Payload) (*SummaryView, error) {
	return s.summaryView(ctx, s.adHoc(p))
}

// ListingAlignment aligns a stored listing against the critiques of
// evaluationID, or of its latest evaluation when evaluationID is empty.
func (s *ComparisonService) ListingAlignment(ctx context.Context, listingID, evaluationID string, filter alignment.SeverityFilter) (*AlignmentView, error) {
	subj, err := s.stored(ctx, listingID, evaluationID)
	if err != nil {
		return nil, err
	}
	return s.alignmentView(ctx, subj, filter)
}

// ListingTimeline builds the timeline of a stored listing.
func (s *ComparisonService) ListingTimeline(ctx context.Context, listingID, evaluationID string, filter alignment.SeverityFilter) (*TimelineView, error) {
	subj, err := s.stored(ctx, listingID, evaluationID)
	if err != nil {
		return nil, err
	}
	return s.timelineView(ctx, subj, filter)
}

// ListingSummary summarizes a stored listing.
func (s *ComparisonService) ListingSummary(ctx context.Context, listingID, evaluationID string) (*SummaryView, error) {
	subj, err := s.stored(ctx, listingID, evaluationID)
	if err != nil {
		return nil, err
	}
	return s.summaryView(ctx, subj)
}

// CacheStats reports memoization effectiveness.
func (s *ComparisonService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

func normalizeFilter(f alignment.SeverityFilter) alignment.SeverityFilter {
	if f == "" {
		return alignment.FilterAll
	}
	return f
}
