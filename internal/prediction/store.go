package prediction

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

// LoadPrograms reads the full institution/program catalog in insertion
// order. The order matters: it is the tiebreaker for equal probabilities.
func (s *Store) LoadPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.institution_id, i.name, p.name, p.required_subjects, p.min_score_percent
		 FROM programs p
		 JOIN institutions i ON i.id = p.institution_id
		 ORDER BY p.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}
	defer rows.Close()

	var programs []models.Program
	for rows.Next() {
		var p models.Program
		var subjects []string
		if err := rows.Scan(&p.ID, &p.InstitutionID, &p.InstitutionName, &p.Name,
			pq.Array(&subjects), &p.MinScorePercent); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		p.RequiredSubjects = make([]models.Subject, len(subjects))
		for i, s := range subjects {
			p.RequiredSubjects[i] = models.Subject(s)
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}
