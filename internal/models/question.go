package models

import "time"

type Subject string

// Mandatory trial-exam subjects. Every full mock includes these blocks.
const (
	SubjectHistoryKZ       Subject = "history_of_kazakhstan"
	SubjectMathLiteracy    Subject = "math_literacy"
	SubjectReadingLiteracy Subject = "reading_literacy"
)

// Profile subjects. A trial exam adds exactly two of these; a diagnostic
// may test any non-empty selection.
const (
	SubjectMathematics   Subject = "mathematics"
	SubjectPhysics       Subject = "physics"
	SubjectChemistry     Subject = "chemistry"
	SubjectBiology       Subject = "biology"
	SubjectGeography     Subject = "geography"
	SubjectWorldHistory  Subject = "world_history"
	SubjectEnglish       Subject = "english"
	SubjectInformatics   Subject = "informatics"
	SubjectKazakhLit     Subject = "kazakh_literature"
	SubjectLawBasics     Subject = "law_basics"
)

var MandatorySubjects = []Subject{
	SubjectHistoryKZ,
	SubjectMathLiteracy,
	SubjectReadingLiteracy,
}

var ValidProfileSubjects = map[Subject]bool{
	SubjectMathematics:  true,
	SubjectPhysics:      true,
	SubjectChemistry:    true,
	SubjectBiology:      true,
	SubjectGeography:    true,
	SubjectWorldHistory: true,
	SubjectEnglish:      true,
	SubjectInformatics:  true,
	SubjectKazakhLit:    true,
	SubjectLawBasics:    true,
}

// ValidSubject reports whether s is any known subject, mandatory or profile.
func ValidSubject(s Subject) bool {
	if ValidProfileSubjects[s] {
		return true
	}
	for _, m := range MandatorySubjects {
		if s == m {
			return true
		}
	}
	return false
}

type Variant string

const (
	VariantDiagnostic Variant = "diagnostic"
	VariantTrial      Variant = "trial"
)

// Question is one multiple-choice item from the bank. Immutable once loaded;
// options are ordered and CorrectOption is a zero-based index into them.
type Question struct {
	ID            int64     `json:"id"`
	Subject       Subject   `json:"subject"`
	Topic         string    `json:"topic"`
	Prompt        string    `json:"prompt"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correct_option"`
	Explanation   string    `json:"explanation"`
	BlockTag      string    `json:"block_tag,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ServedQuestion is a Question stripped of the correct index and explanation,
// the only shape handed to a client while a session is in progress.
type ServedQuestion struct {
	ID       int64    `json:"id"`
	Subject  Subject  `json:"subject"`
	Topic    string   `json:"topic"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	BlockTag string   `json:"block_tag,omitempty"`
}

func (q Question) Serve() ServedQuestion {
	return ServedQuestion{
		ID:       q.ID,
		Subject:  q.Subject,
		Topic:    q.Topic,
		Prompt:   q.Prompt,
		Options:  q.Options,
		BlockTag: q.BlockTag,
	}
}

// ── Subject Listing ──────────────────────────────────────

type SubjectInfo struct {
	Subject       Subject  `json:"subject"`
	Mandatory     bool     `json:"mandatory"`
	QuestionCount int      `json:"question_count"`
	Topics        []string `json:"topics"`
}

type SubjectListResponse struct {
	Subjects []SubjectInfo `json:"subjects"`
}

// ── Export/Import Types ──────────────────────────────────

type ExportEnvelope struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Questions  []ExportQuestion `json:"questions"`
}

type ExportQuestion struct {
	Subject       Subject  `json:"subject"`
	Topic         string   `json:"topic"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Explanation   string   `json:"explanation"`
	BlockTag      string   `json:"block_tag,omitempty"`
}

type ImportResult struct {
	TotalInPayload int `json:"total_in_payload"`
	Imported       int `json:"imported"`
	Skipped        int `json:"skipped"`
}
