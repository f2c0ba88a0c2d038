package models

import (
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// SubjectScore is the scored outcome of one answer group. The same shape
// serves per-subject scores (diagnostic) and per-block scores (trial exam);
// for blocks, Block carries the block name and Subject the block's subject.
type SubjectScore struct {
	Subject      Subject  `json:"subject"`
	Block        string   `json:"block,omitempty"`
	Score        int      `json:"score"`
	Max          int      `json:"max"`
	Percentage   int      `json:"percentage"`
	Level        Level    `json:"level"`
	WeakTopics   []string `json:"weak_topics"`
	StrongTopics []string `json:"strong_topics"`
}

// UniversityPrediction is a heuristic admission forecast for one program.
type UniversityPrediction struct {
	InstitutionID   int64  `json:"institution_id"`
	InstitutionName string `json:"institution_name"`
	ProgramID       int64  `json:"program_id"`
	ProgramName     string `json:"program_name"`
	Probability     int    `json:"probability"`
	ScoreGap        int    `json:"score_gap"`
}

// Result is the immutable record of one completed attempt. Retakes append
// new Results; existing ones are never edited.
type Result struct {
	ID             uuid.UUID              `json:"id"`
	UserID         int64                  `json:"user_id"`
	Variant        Variant                `json:"variant"`
	Scores         []SubjectScore         `json:"scores"`
	OverallScore   int                    `json:"overall_score"`
	OverallMax     int                    `json:"overall_max"`
	OverallPercent int                    `json:"overall_percent"`
	Percentile     int                    `json:"percentile"`
	Predictions    []UniversityPrediction `json:"predictions,omitempty"`
	ElapsedSeconds int                    `json:"elapsed_seconds"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ── Institution Catalog ──────────────────────────────────

type Institution struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// Program is one admissible program with its subject requirements.
// MinScorePercent is the aggregate percentage cutoff over RequiredSubjects.
type Program struct {
	ID               int64     `json:"id"`
	InstitutionID    int64     `json:"institution_id"`
	InstitutionName  string    `json:"institution_name"`
	Name             string    `json:"name"`
	RequiredSubjects []Subject `json:"required_subjects"`
	MinScorePercent  int       `json:"min_score_percent"`
}

type ProgramListResponse struct {
	Programs []Program `json:"programs"`
	Total    int       `json:"total"`
}

// ── History Types ────────────────────────────────────────

type ResultListResponse struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
}

// SubjectDelta is the score movement for one subject between two attempts.
type SubjectDelta struct {
	Subject        Subject `json:"subject"`
	PrevPercentage int     `json:"prev_percentage"`
	Percentage     int     `json:"percentage"`
	Delta          int     `json:"delta"`
}

// TrendResponse compares the two most recent diagnostic attempts.
type TrendResponse struct {
	Latest        uuid.UUID      `json:"latest_result_id"`
	Previous      uuid.UUID      `json:"previous_result_id"`
	OverallDelta  int            `json:"overall_delta"`
	SubjectDeltas []SubjectDelta `json:"subject_deltas"`
}
