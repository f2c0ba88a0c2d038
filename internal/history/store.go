package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/unt-prep/backend/internal/models"
)

// Store persists finished exam results. Results are append-only: nothing
// here updates or deletes a row.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts one finished result. Scores and predictions are stored as
// JSONB documents; the scalar columns exist for the percentile and trend
// queries.
func (s *Store) Append(ctx context.Context, r *models.Result) error {
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	predictions, err := json.Marshal(r.Predictions)
	if err != nil {
		return fmt.Errorf("marshal predictions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO exam_results
			(id, user_id, variant, scores, overall_score, overall_max,
			 overall_percent, percentile, predictions, elapsed_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.UserID, r.Variant, scores, r.OverallScore, r.OverallMax,
		r.OverallPercent, r.Percentile, predictions, r.ElapsedSeconds, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListByUser returns the user's results, newest first. limit <= 0 means no
// limit.
func (s *Store) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Result, error) {
	query := `
		SELECT id, user_id, variant, scores, overall_score, overall_max,
		       overall_percent, percentile, predictions, elapsed_seconds, created_at
		FROM exam_results
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Get fetches one result, scoped to its owner.
func (s *Store) Get(ctx context.Context, id uuid.UUID, userID int64) (*models.Result, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, variant, scores, overall_score, overall_max,
		       overall_percent, percentile, predictions, elapsed_seconds, created_at
		FROM exam_results
		WHERE id = $1 AND user_id = $2`, id, userID)

	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LatestDiagnostics returns the user's most recent diagnostic results,
// newest first, up to limit.
func (s *Store) LatestDiagnostics(ctx context.Context, userID int64, limit int) ([]models.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, variant, scores, overall_score, overall_max,
		       overall_percent, percentile, predictions, elapsed_seconds, created_at
		FROM exam_results
		WHERE user_id = $1 AND variant = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, userID, models.VariantDiagnostic, limit)
	if err != nil {
		return nil, fmt.Errorf("list diagnostics: %w", err)
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// PercentileFor places an overall percentage among all stored results of the
// same variant, counting the new result itself in the population. 0 when the
// student is alone and worst, climbing toward 100 as more stored attempts
// fall strictly below.
func (s *Store) PercentileFor(ctx context.Context, variant models.Variant, overallPercent int) (int, error) {
	var below, total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE overall_percent < $2), COUNT(*)
		FROM exam_results
		WHERE variant = $1`, variant, overallPercent).Scan(&below, &total)
	if err != nil {
		return 0, fmt.Errorf("percentile query: %w", err)
	}
	return placement(below, total), nil
}

// placement converts (results strictly below, stored results) into a
// percentile, counting the new result itself in the population. A first-ever
// result lands at 0.
func placement(below, stored int) int {
	return int(math.Round(100 * float64(below) / float64(stored+1)))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (models.Result, error) {
	var r models.Result
	var scores, predictions []byte
	err := row.Scan(&r.ID, &r.UserID, &r.Variant, &scores, &r.OverallScore,
		&r.OverallMax, &r.OverallPercent, &r.Percentile, &predictions,
		&r.ElapsedSeconds, &r.CreatedAt)
	if err != nil {
		return models.Result{}, err
	}
	if err := json.Unmarshal(scores, &r.Scores); err != nil {
		return models.Result{}, fmt.Errorf("unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(predictions, &r.Predictions); err != nil {
		return models.Result{}, fmt.Errorf("unmarshal predictions: %w", err)
	}
	return r, nil
}
