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

const evaluationColumns = `id, listing_id, model, critiques_json, created_at`

func scanEvaluation(scanner interface{ Scan(dest ...any) error }) (*domain.Evaluation, error) {
	var (
		e             domain.Evaluation
		model         sql.NullString
		critiquesJSON string
		createdAt     string
	)

	if err := scanner.Scan(&e.ID, &e.ListingID, &model, &critiquesJSON, &createdAt); err != nil {
		return nil, err
	}

	e.Model = model.String
	if err := json.Unmarshal([]byte(critiquesJSON), &e.Critiques); err != nil {
		return nil, fmt.Errorf("decode critiques of %s: %w", e.ID, err)
	}
	e.Critiques = nonNil(e.Critiques)

	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvaluation inserts an evaluation for an existing listing.
// Returns store.ErrListingNotFound when the listing is missing and
// store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateEvaluation(ctx context.Context, e *domain.Evaluation) error {
	critiques, err := json.Marshal(nonNil(e.Critiques))
	if err != nil {
		return fmt.Errorf("encode critiques: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, listing_id, model, critiques_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID,
		e.ListingID,
		nullString(e.Model),
		string(critiques),
		formatTime(e.CreatedAt),
	)
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return store.ErrListingNotFound
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	default:
		return fmt.Errorf("insert evaluation: %w", err)
	}
}

// GetEvaluation retrieves one evaluation of a listing.
// Returns store.ErrEvaluationNotFound if it does not exist or belongs to another listing.
func (s *Store) GetEvaluation(ctx context.Context, listingID, id string) (*domain.Evaluation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations WHERE id = ? AND listing_id = ?`, id, listingID)

	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrEvaluationNotFound
	}
	return e, err
}

// ListEvaluations returns every evaluation of a listing, newest first.
func (s *Store) ListEvaluations(ctx context.Context, listingID string) ([]*domain.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+evaluationColumns+` FROM evaluations
		WHERE listing_id = ?
		ORDER BY created_at DESC, rowid DESC`, listingID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []*domain.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

// LatestEvaluation returns the most recent evaluation of a listing.
// Returns store.ErrEvaluationNotFound when the listing has none.
func (s *Store) LatestEvaluation(ctx context.Context, listingID string) (*domain.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+evaluationColumns+` FROM evaluations
		WHERE listing_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, listingID)

	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrEvaluationNotFound
	}
	return e, err
}
