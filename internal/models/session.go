package models

import "github.com/google/uuid"

// Phase is the session lifecycle state. Transitions are owned by the exam
// state machine; operations invoked in the wrong phase are rejected no-ops.
type Phase string

const (
	PhaseSelecting  Phase = "selecting"
	PhaseInProgress Phase = "in_progress"
	PhaseScored     Phase = "scored"
	PhaseReviewing  Phase = "reviewing"
)

// AnswerRecord tracks one question inside a session. A record exists for
// every question from start() on, so "unanswered" is Selected == nil, never
// a missing entry.
type AnswerRecord struct {
	QuestionID int64 `json:"question_id"`
	Selected   *int  `json:"selected,omitempty"`
	Flagged    bool  `json:"flagged"`
}

func (a AnswerRecord) Answered() bool { return a.Selected != nil }

// ── Session Command Payloads ─────────────────────────────

type ConfigureSessionRequest struct {
	Variant  Variant   `json:"variant"`
	Subjects []Subject `json:"subjects"`
}

type SetAnswerRequest struct {
	QuestionID  int64 `json:"question_id"`
	OptionIndex *int  `json:"option_index"`
}

type ToggleFlagRequest struct {
	QuestionID int64 `json:"question_id"`
}

type NavigateRequest struct {
	BlockIndex    int `json:"block_index"`
	QuestionIndex int `json:"question_index"`
}

type ReviewRequest struct {
	BlockIndex    int `json:"block_index"`
	QuestionIndex int `json:"question_index"`
}

// DiagnosticAnswer is one (question, selection) pair of a one-shot
// diagnostic submission. A nil OptionIndex means unanswered.
type DiagnosticAnswer struct {
	QuestionID  int64 `json:"question_id"`
	OptionIndex *int  `json:"option_index"`
}

type DiagnosticRequest struct {
	Answers        []DiagnosticAnswer `json:"answers"`
	ElapsedSeconds int                `json:"elapsed_seconds"`
}

// ── Session Snapshots ────────────────────────────────────

// BlockSnapshot describes one block without answer keys.
type BlockSnapshot struct {
	Name             string           `json:"name"`
	Subject          Subject          `json:"subject"`
	TimeLimitSeconds int              `json:"time_limit_seconds"`
	Questions        []ServedQuestion `json:"questions"`
}

// SessionSnapshot is the wire view of a live session. Correct answers and
// explanations never appear here; review exposes them per question once the
// session is scored.
type SessionSnapshot struct {
	ID            uuid.UUID       `json:"id"`
	Phase         Phase           `json:"phase"`
	Variant       Variant         `json:"variant"`
	Blocks        []BlockSnapshot `json:"blocks,omitempty"`
	Answers       []AnswerRecord  `json:"answers,omitempty"`
	BlockIndex    int             `json:"block_index"`
	QuestionIndex int             `json:"question_index"`
	TimeRemaining int             `json:"time_remaining"`
	Result        *Result         `json:"result,omitempty"`
}

// ReviewResponse exposes one question's answer key and explanation after
// the session has been scored.
type ReviewResponse struct {
	Phase         Phase        `json:"phase"`
	BlockIndex    int          `json:"block_index"`
	QuestionIndex int          `json:"question_index"`
	Question      Question     `json:"question"`
	Answer        AnswerRecord `json:"answer"`
	Correct       bool         `json:"correct"`
}
