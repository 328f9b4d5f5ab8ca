package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/domain"
	"github.com/devops-tatvacare/ai-evals-platform-sub003/internal/store"
)

// listingColumns is the ordered list of columns selected in listing queries.
// Must match the scan order in scanListing.
const listingColumns = `id, name, source, original_json, generated_json, tags_json, created_at, updated_at`

// scanListing scans a sql.Row (or sql.Rows via its Scan method) into a domain.Listing.
func scanListing(scanner interface{ Scan(dest ...any) error }) (*domain.Listing, error) {
	var l domain.Listing

	var (
		source        sql.NullString
		originalJSON  string
		generatedJSON string
		tagsJSON      string
		createdAt     string
		updatedAt     string
	)

	err := scanner.Scan(
		&l.ID,
		&l.Name,
		&source,
		&originalJSON,
		&generatedJSON,
		&tagsJSON,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Source = source.String

	if err := json.Unmarshal([]byte(originalJSON), &l.Original); err != nil {
		return nil, fmt.Errorf("decode original transcript of %s: %w", l.ID, err)
	}
	if err := json.Unmarshal([]byte(generatedJSON), &l.Generated); err != nil {
		return nil, fmt.Errorf("decode generated transcript of %s: %w", l.ID, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &l.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", l.ID, err)
	}
	if l.Tags == nil {
		l.Tags = []string{}
	}

	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &l, nil
}

type listingJSON struct {
	original, generated, tags string
}

func encodeListing(l *domain.Listing) (listingJSON, error) {
	var out listingJSON

	original, err := json.Marshal(nonNil(l.Original))
	if err != nil {
		return out, fmt.Errorf("encode original transcript: %w", err)
	}
	generated, err := json.Marshal(nonNil(l.Generated))
	if err != nil {
		return out, fmt.Errorf("encode generated transcript: %w", err)
	}
	tags, err := json.Marshal(nonNil(l.Tags))
	if err != nil {
		return out, fmt.Errorf("encode tags: %w", err)
	}

	out.original, out.generated, out.tags = string(original), string(generated), string(tags)
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// CreateListing inserts a new listing and indexes it for search.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateListing(ctx context.Context, l *domain.Listing) error {
	enc, err := encodeListing(l)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO listings (id, name, source, original_json, generated_json, tags_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.Name,
		nullString(l.Source),
		enc.original,
		enc.generated,
		enc.tags,
		formatTime(l.CreatedAt),
		formatTime(l.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert listing: %w", err)
	}

	s.reindex(ctx, l)
	return nil
}

// GetListing retrieves a listing by its ID.
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *Store) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)

	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListListings returns a page of listings, newest first.
func (s *Store) ListListings(ctx context.Context, opts store.ListOptions) (store.Page[*domain.Listing], error) {
	opts.Normalize()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&total); err != nil {
		return store.Page[*domain.Listing]{}, fmt.Errorf("count listings: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+listingColumns+` FROM listings
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, opts.Limit, opts.Offset)
	if err != nil {
		return store.Page[*domain.Listing]{}, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var items []*domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return store.Page[*domain.Listing]{}, err
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return store.Page[*domain.Listing]{}, err
	}

	return store.NewPage(items, total, opts), nil
}

// AllListings streams every listing to fn in creation order. Iteration stops
// at the first error fn returns.
func (s *Store) AllListings(ctx context.Context, fn func(*domain.Listing) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	return rows.Err()
}

// UpdateListing replaces the stored listing with l and reindexes it.
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *Store) UpdateListing(ctx context.Context, l *domain.Listing) error {
	enc, err := encodeListing(l)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE listings
		SET name = ?, source = ?, original_json = ?, generated_json = ?, tags_json = ?, updated_at = ?
		WHERE id = ?`,
		l.Name,
		nullString(l.Source),
		enc.original,
		enc.generated,
		enc.tags,
		formatTime(l.UpdatedAt),
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrListingNotFound
	}

	s.reindex(ctx, l)
	return nil
}

// DeleteListing removes a listing and, through the foreign key, its evaluations.
// Returns store.ErrListingNotFound if the listing does not exist.
func (s *Store) DeleteListing(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrListingNotFound
	}

	if err := s.indexer().DeleteListing(ctx, id); err != nil {
		s.logger.Warn("failed to remove listing from search index", "listing_id", id, "error", err)
	}
	return nil
}

// reindex pushes l to the search index. The row is already committed, so
// index failures are logged rather than returned.
func (s *Store) reindex(ctx context.Context, l *domain.Listing) {
	if err := s.indexer().IndexListing(ctx, l); err != nil {
		s.logger.Warn("failed to index listing", "listing_id", l.ID, "error", err)
	}
}
