package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/transcript"
)

// makeTestListing creates a domain.Listing with sensible defaults for testing.
func makeTestListing(id, name string, created time.Time) *domain.Listing {
	l := &domain.Listing{
		Name:   name,
		Source: "test",
		Original: []transcript.Segment{
			{Speaker: "Doctor", Text: "How are you feeling?", Start: transcript.Seconds(0), End: transcript.Seconds(2.5)},
			{Speaker: "Patient", Text: "Better today.", Start: transcript.Timestamp("00:00:03"), End: transcript.Timestamp("00:00:05.250")},
		},
		Generated: []transcript.Segment{
			{Speaker: "Doctor", Text: "How are you feeling", Start: transcript.Seconds(0.1), End: transcript.Seconds(2.4)},
			{Speaker: "Patient", Text: "Better today"},
		},
		Tags: []string{"clinic"},
	}
	l.ID = id
	l.CreatedAt = created
	l.UpdatedAt = created
	return l
}

func TestCreateAndGetListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)
	l := makeTestListing("lst-1", "Consult 1", created)

	if err := s.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	got, err := s.GetListing(ctx, "lst-1")
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}

	if got.Name != l.Name || got.Source != l.Source {
		t.Errorf("got name=%q source=%q, want %q %q", got.Name, got.Source, l.Name, l.Source)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created) {
		t.Errorf("timestamps did not round-trip: %v %v", got.CreatedAt, got.UpdatedAt)
	}
	if len(got.Original) != 2 || len(got.Generated) != 2 {
		t.Fatalf("segments: got %d/%d", len(got.Original), len(got.Generated))
	}

	// Time values keep their representation.
	if got.Original[1].Start != transcript.Timestamp("00:00:03") {
		t.Errorf("textual start lost: %v", got.Original[1].Start)
	}
	if sec, ok := transcript.ResolveTime(got.Original[0].End); !ok || sec != 2.5 {
		t.Errorf("numeric end: got %v %v", sec, ok)
	}
	if !got.Generated[1].Start.IsZero() {
		t.Errorf("absent start should stay absent, got %v", got.Generated[1].Start)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "clinic" {
		t.Errorf("tags: got %v", got.Tags)
	}
}

func TestCreateListing_Duplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	l := makeTestListing("lst-dup", "Dup", time.Now())
	if err := s.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	err := s.CreateListing(ctx, l)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetListing_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetListing(context.Background(), "lst-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListListings_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		// Sub-second offsets check chronological rather than lexical ordering.
		created := base.Add(time.Duration(i) * 100 * time.Millisecond)
		l := makeTestListing(fmt.Sprintf("lst-%d", i), fmt.Sprintf("Listing %d", i), created)
		if err := s.CreateListing(ctx, l); err != nil {
			t.Fatalf("CreateListing %d: %v", i, err)
		}
	}

	page, err := s.ListListings(ctx, store.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if page.Total != 5 || !page.HasMore {
		t.Errorf("total=%d hasMore=%v, want 5 true", page.Total, page.HasMore)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "lst-4" || page.Items[1].ID != "lst-3" {
		t.Errorf("first page order wrong: %v", ids(page.Items))
	}

	page, err = s.ListListings(ctx, store.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "lst-0" || page.HasMore {
		t.Errorf("last page wrong: %v hasMore=%v", ids(page.Items), page.HasMore)
	}
}

func TestListListings_Empty(t *testing.T) {
	s := newTestStore(t)

	page, err := s.ListListings(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatalf("ListListings: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 || page.Total != 0 {
		t.Errorf("expected empty non-nil page, got %+v", page)
	}
}

func TestAllListings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := range 3 {
		l := makeTestListing(fmt.Sprintf("lst-%d", i), "n", base.Add(time.Duration(i)*time.Second))
		if err := s.CreateListing(ctx, l); err != nil {
			t.Fatalf("CreateListing: %v", err)
		}
	}

	var seen []string
	err := s.AllListings(ctx, func(l *domain.Listing) error {
		seen = append(seen, l.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("AllListings: %v", err)
	}
	if fmt.Sprint(seen) != "[lst-0 lst-1 lst-2]" {
		t.Errorf("got %v", seen)
	}

	stop := errors.New("stop")
	err = s.AllListings(ctx, func(*domain.Listing) error { return stop })
	if !errors.Is(err, stop) {
		t.Errorf("expected callback error, got %v", err)
	}
}

func TestUpdateListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	l := makeTestListing("lst-u", "Before", time.Now().UTC())
	if err := s.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	l.Name = "After"
	l.Tags = nil
	l.Generated = []transcript.Segment{{Speaker: "AI", Text: "only"}}
	l.Touch()
	if err := s.UpdateListing(ctx, l); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}

	got, err := s.GetListing(ctx, "lst-u")
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Name != "After" || len(got.Generated) != 1 || len(got.Tags) != 0 || got.Tags == nil {
		t.Errorf("update not applied: %+v", got)
	}
	if !got.UpdatedAt.Equal(l.UpdatedAt) {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, l.UpdatedAt)
	}

	missing := makeTestListing("lst-none", "x", time.Now())
	if err := s.UpdateListing(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteListing_CascadesAndUnindexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	idx := &recordingIndexer{}
	s.SetSearchIndexer(idx)

	l := makeTestListing("lst-d", "Delete me", time.Now())
	if err := s.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	ev := &domain.Evaluation{ID: "evl-d", ListingID: "lst-d", CreatedAt: time.Now()}
	if err := s.CreateEvaluation(ctx, ev); err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}

	if err := s.DeleteListing(ctx, "lst-d"); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}

	if _, err := s.GetListing(ctx, "lst-d"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("listing still present: %v", err)
	}
	evals, err := s.ListEvaluations(ctx, "lst-d")
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(evals) != 0 {
		t.Errorf("evaluations not cascaded: %d left", len(evals))
	}

	if fmt.Sprint(idx.indexed) != "[lst-d]" || fmt.Sprint(idx.deleted) != "[lst-d]" {
		t.Errorf("indexer calls: indexed=%v deleted=%v", idx.indexed, idx.deleted)
	}

	if err := s.DeleteListing(ctx, "lst-d"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func ids(items []*domain.Listing) []string {
	out := make([]string, len(items))
	for i, l := range items {
		out[i] = l.ID
	}
	return out
}
