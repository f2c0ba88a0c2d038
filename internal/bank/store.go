package bank

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/unt-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadAll reads the full question catalog, ordered by id so block assembly
// is deterministic across restarts.
func (s *Store) LoadAll(ctx context.Context) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, topic, prompt, options, correct_option, explanation, block_tag, created_at
		 FROM questions ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Subject, &q.Topic, &q.Prompt,
			pq.Array(&q.Options), &q.CorrectOption, &q.Explanation, &q.BlockTag, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// InsertQuestions adds imported questions in one transaction and returns
// how many were written.
func (s *Store) InsertQuestions(ctx context.Context, questions []models.ExportQuestion) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, q := range questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (subject, topic, prompt, options, correct_option, explanation, block_tag)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.Subject, q.Topic, q.Prompt, pq.Array(q.Options), q.CorrectOption, q.Explanation, q.BlockTag,
		)
		if err != nil {
			return 0, fmt.Errorf("insert question: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ExistingPrompts returns the set of (subject, prompt) pairs already stored,
// used to skip duplicates on import.
func (s *Store) ExistingPrompts(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT subject, prompt FROM questions`)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var subject, prompt string
		if err := rows.Scan(&subject, &prompt); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		existing[subject+"||"+prompt] = true
	}
	return existing, rows.Err()
}
