package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "unt_user")
	password := getEnv("DB_PASSWORD", "unt_password")
	dbname := getEnv("DB_NAME", "unt_prep")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS questions (
		id             BIGSERIAL PRIMARY KEY,
		subject        VARCHAR(50) NOT NULL,
		topic          VARCHAR(100) NOT NULL,
		prompt         TEXT NOT NULL,
		options        TEXT[] NOT NULL,
		correct_option INT NOT NULL CHECK (correct_option >= 0),
		explanation    TEXT NOT NULL,
		block_tag      VARCHAR(50) NOT NULL DEFAULT '',
		created_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject);
	CREATE INDEX IF NOT EXISTS idx_questions_subject_topic ON questions(subject, topic);

	CREATE TABLE IF NOT EXISTS institutions (
		id   BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) UNIQUE NOT NULL,
		city VARCHAR(100)
	);

	CREATE TABLE IF NOT EXISTS programs (
		id                BIGSERIAL PRIMARY KEY,
		institution_id    BIGINT NOT NULL REFERENCES institutions(id) ON DELETE CASCADE,
		name              VARCHAR(255) NOT NULL,
		required_subjects TEXT[] NOT NULL,
		min_score_percent INT NOT NULL CHECK (min_score_percent >= 0 AND min_score_percent <= 100),
		UNIQUE(institution_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_programs_institution ON programs(institution_id);

	CREATE TABLE IF NOT EXISTS exam_results (
		id              UUID PRIMARY KEY,
		user_id         BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		variant         VARCHAR(20) NOT NULL,
		scores          JSONB NOT NULL,
		overall_score   INT NOT NULL,
		overall_max     INT NOT NULL,
		overall_percent INT NOT NULL,
		percentile      INT NOT NULL,
		predictions     JSONB,
		elapsed_seconds INT NOT NULL DEFAULT 0,
		created_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_results_user ON exam_results(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_results_user_variant ON exam_results(user_id, variant, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_results_variant_percent ON exam_results(variant, overall_percent);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := seedCatalog(db); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	return nil
}

// seedCatalog inserts the default institution/program catalog. Idempotent:
// program cutoffs already in the table are left untouched so operators can
// retune them in place.
func seedCatalog(db *sql.DB) error {
	type seedProgram struct {
		name     string
		subjects string // postgres array literal
		minScore int
	}
	type seedInstitution struct {
		name     string
		city     string
		programs []seedProgram
	}

	catalog := []seedInstitution{
		{"Al-Farabi Kazakh National University", "Almaty", []seedProgram{
			{"Computer Science", `{mathematics,informatics}`, 85},
			{"Applied Mathematics", `{mathematics,physics}`, 80},
			{"Chemical Engineering", `{chemistry,physics}`, 75},
		}},
		{"Nazarbayev University", "Astana", []seedProgram{
			{"Engineering Sciences", `{mathematics,physics}`, 90},
			{"Biological Sciences", `{biology,chemistry}`, 88},
		}},
		{"Satbayev University", "Almaty", []seedProgram{
			{"Software Engineering", `{mathematics,informatics}`, 78},
			{"Petroleum Engineering", `{mathematics,physics}`, 72},
			{"Geology", `{geography,physics}`, 65},
		}},
		{"Eurasian National University", "Astana", []seedProgram{
			{"International Law", `{world_history,law_basics}`, 70},
			{"Economics", `{mathematics,geography}`, 68},
		}},
		{"Asfendiyarov Kazakh National Medical University", "Almaty", []seedProgram{
			{"General Medicine", `{biology,chemistry}`, 85},
			{"Pharmacy", `{biology,chemistry}`, 75},
		}},
		{"Abai Kazakh National Pedagogical University", "Almaty", []seedProgram{
			{"Mathematics Education", `{mathematics,physics}`, 60},
			{"Philology", `{kazakh_literature,world_history}`, 55},
		}},
		{"Karaganda Technical University", "Karaganda", []seedProgram{
			{"Mining Engineering", `{mathematics,physics}`, 55},
			{"Information Systems", `{mathematics,informatics}`, 58},
		}},
	}

	for _, inst := range catalog {
		var instID int64
		err := db.QueryRow(
			`INSERT INTO institutions (name, city) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET city = EXCLUDED.city
			 RETURNING id`,
			inst.name, inst.city,
		).Scan(&instID)
		if err != nil {
			return fmt.Errorf("seed institution %q: %w", inst.name, err)
		}

		for _, p := range inst.programs {
			_, err := db.Exec(
				`INSERT INTO programs (institution_id, name, required_subjects, min_score_percent)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (institution_id, name) DO NOTHING`,
				instID, p.name, p.subjects, p.minScore,
			)
			if err != nil {
				return fmt.Errorf("seed program %q: %w", p.name, err)
			}
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
