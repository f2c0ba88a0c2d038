package exam

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/unt-prep/backend/internal/bank"
	"github.com/unt-prep/backend/internal/models"
)

// Operation errors. ErrInvalidTransition is the no-op signal for commands
// invoked in the wrong phase: the session is left untouched and the caller
// re-checks the phase.
var (
	ErrInvalidTransition    = errors.New("operation not valid in current session phase")
	ErrNotConfigured        = errors.New("session has no configured blocks")
	ErrQuestionNotInSession = errors.New("question is not part of this session")
	ErrInvalidOption        = errors.New("option index out of range")
	ErrInvalidConfiguration = errors.New("invalid session configuration")
)

// Block time allotments and question counts per variant.
const (
	diagnosticQuestionsPerSubject = 10
	diagnosticBlockSeconds        = 600

	trialHistorySeconds  = 2400
	trialLiteracySeconds = 1800
	trialProfileSeconds  = 4200

	trialHistoryQuestions  = 20
	trialLiteracyQuestions = 10
	trialProfileQuestions  = 40

	trialProfileSubjects = 2
)

// Block is one named partition of a session with its own question order and
// time allotment.
type Block struct {
	Name             string
	Subject          models.Subject
	TimeLimitSeconds int
	Questions        []models.Question
}

// Session is one live attempt. All mutation goes through the phase-checked
// operations below; the Manager serializes them per session id.
type Session struct {
	ID      uuid.UUID
	UserID  int64
	Variant models.Variant
	Phase   models.Phase

	Blocks  []Block
	Answers map[int64]*models.AnswerRecord

	BlockIndex    int
	QuestionIndex int

	TimeRemaining int
	TotalSeconds  int

	// Result is set exactly once, when the session finishes.
	Result *models.Result
}

func newSession(userID int64) *Session {
	return &Session{
		ID:      uuid.New(),
		UserID:  userID,
		Phase:   models.PhaseSelecting,
		Answers: make(map[int64]*models.AnswerRecord),
	}
}

// Configure builds the block list from the bank for the requested variant.
// Valid only in selecting; on validation failure the session keeps its phase
// and any previously configured blocks are discarded only on success.
func (s *Session) Configure(variant models.Variant, subjects []models.Subject, b *bank.Bank) error {
	if s.Phase != models.PhaseSelecting {
		return ErrInvalidTransition
	}

	var blocks []Block
	var err error
	switch variant {
	case models.VariantDiagnostic:
		blocks, err = buildDiagnosticBlocks(subjects, b)
	case models.VariantTrial:
		blocks, err = buildTrialBlocks(subjects, b)
	default:
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidConfiguration, variant)
	}
	if err != nil {
		return err
	}

	s.Variant = variant
	s.Blocks = blocks
	return nil
}

func buildDiagnosticBlocks(subjects []models.Subject, b *bank.Bank) ([]Block, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: at least one subject is required", ErrInvalidConfiguration)
	}

	seen := make(map[models.Subject]bool)
	var blocks []Block
	for _, subject := range subjects {
		if !models.ValidSubject(subject) {
			return nil, fmt.Errorf("%w: unknown subject %q", ErrInvalidConfiguration, subject)
		}
		if seen[subject] {
			return nil, fmt.Errorf("%w: subject %q selected twice", ErrInvalidConfiguration, subject)
		}
		seen[subject] = true

		questions := b.Subject(subject, diagnosticQuestionsPerSubject)
		if len(questions) == 0 {
			return nil, fmt.Errorf("%w: no questions available for %q", ErrInvalidConfiguration, subject)
		}
		blocks = append(blocks, Block{
			Name:             string(subject),
			Subject:          subject,
			TimeLimitSeconds: diagnosticBlockSeconds,
			Questions:        questions,
		})
	}
	return blocks, nil
}

func buildTrialBlocks(profile []models.Subject, b *bank.Bank) ([]Block, error) {
	if len(profile) != trialProfileSubjects {
		return nil, fmt.Errorf("%w: a trial exam needs exactly %d profile subjects, got %d",
			ErrInvalidConfiguration, trialProfileSubjects, len(profile))
	}
	if profile[0] == profile[1] {
		return nil, fmt.Errorf("%w: profile subjects must differ", ErrInvalidConfiguration)
	}
	for _, subject := range profile {
		if !models.ValidProfileSubjects[subject] {
			return nil, fmt.Errorf("%w: %q is not a profile subject", ErrInvalidConfiguration, subject)
		}
	}

	type blockSpec struct {
		subject models.Subject
		count   int
		seconds int
	}
	specs := []blockSpec{
		{models.SubjectHistoryKZ, trialHistoryQuestions, trialHistorySeconds},
		{models.SubjectMathLiteracy, trialLiteracyQuestions, trialLiteracySeconds},
		{models.SubjectReadingLiteracy, trialLiteracyQuestions, trialLiteracySeconds},
		{profile[0], trialProfileQuestions, trialProfileSeconds},
		{profile[1], trialProfileQuestions, trialProfileSeconds},
	}

	var blocks []Block
	for _, spec := range specs {
		questions := b.Subject(spec.subject, spec.count)
		if len(questions) == 0 {
			return nil, fmt.Errorf("%w: no questions available for %q", ErrInvalidConfiguration, spec.subject)
		}
		blocks = append(blocks, Block{
			Name:             string(spec.subject),
			Subject:          spec.subject,
			TimeLimitSeconds: spec.seconds,
			Questions:        questions,
		})
	}
	return blocks, nil
}

// Start moves selecting → in_progress. It pre-creates one unanswered,
// unflagged AnswerRecord per question so "unanswered" is a queryable state,
// points at the first question, and arms the countdown with the sum of the
// block allotments.
func (s *Session) Start() error {
	if s.Phase != models.PhaseSelecting {
		return ErrInvalidTransition
	}
	if len(s.Blocks) == 0 {
		return ErrNotConfigured
	}

	total := 0
	answers := make(map[int64]*models.AnswerRecord)
	for _, block := range s.Blocks {
		total += block.TimeLimitSeconds
		for _, q := range block.Questions {
			answers[q.ID] = &models.AnswerRecord{QuestionID: q.ID}
		}
	}

	s.Answers = answers
	s.TotalSeconds = total
	s.TimeRemaining = total
	s.BlockIndex = 0
	s.QuestionIndex = 0
	s.Phase = models.PhaseInProgress
	return nil
}

// Tick decrements the countdown by one second and reports whether the hard
// deadline was reached; the caller must then finish the session. Outside
// in_progress it is a no-op, which makes a scheduler firing after finish
// harmless.
func (s *Session) Tick() bool {
	if s.Phase != models.PhaseInProgress {
		return false
	}
	if s.TimeRemaining > 0 {
		s.TimeRemaining--
	}
	return s.TimeRemaining == 0
}

// SetAnswer overwrites the record's selection. Passing nil deselects.
// Never advances the position; re-selection is allowed until finish.
func (s *Session) SetAnswer(questionID int64, optionIndex *int) error {
	if s.Phase != models.PhaseInProgress {
		return ErrInvalidTransition
	}
	record, ok := s.Answers[questionID]
	if !ok {
		return ErrQuestionNotInSession
	}
	if optionIndex != nil {
		q, found := s.question(questionID)
		if !found {
			return ErrQuestionNotInSession
		}
		if *optionIndex < 0 || *optionIndex >= len(q.Options) {
			return ErrInvalidOption
		}
	}
	record.Selected = optionIndex
	return nil
}

// ToggleFlag flips the flagged-for-review marker without touching anything
// else.
func (s *Session) ToggleFlag(questionID int64) error {
	if s.Phase != models.PhaseInProgress {
		return ErrInvalidTransition
	}
	record, ok := s.Answers[questionID]
	if !ok {
		return ErrQuestionNotInSession
	}
	record.Flagged = !record.Flagged
	return nil
}

// Next advances the pointer one question, crossing block boundaries, and
// stays put at the last question of the session. Answering first is never
// required.
func (s *Session) Next() error {
	if s.Phase != models.PhaseInProgress && s.Phase != models.PhaseReviewing {
		return ErrInvalidTransition
	}
	if s.QuestionIndex+1 < len(s.Blocks[s.BlockIndex].Questions) {
		s.QuestionIndex++
		return nil
	}
	if s.BlockIndex+1 < len(s.Blocks) {
		s.BlockIndex++
		s.QuestionIndex = 0
	}
	return nil
}

// Prev moves the pointer one question back, staying put at the very first
// question.
func (s *Session) Prev() error {
	if s.Phase != models.PhaseInProgress && s.Phase != models.PhaseReviewing {
		return ErrInvalidTransition
	}
	if s.QuestionIndex > 0 {
		s.QuestionIndex--
		return nil
	}
	if s.BlockIndex > 0 {
		s.BlockIndex--
		s.QuestionIndex = len(s.Blocks[s.BlockIndex].Questions) - 1
	}
	return nil
}

// NavigateTo jumps the pointer, clamping both indexes into range.
func (s *Session) NavigateTo(blockIndex, questionIndex int) error {
	if s.Phase != models.PhaseInProgress && s.Phase != models.PhaseReviewing {
		return ErrInvalidTransition
	}
	s.moveClamped(blockIndex, questionIndex)
	return nil
}

func (s *Session) moveClamped(blockIndex, questionIndex int) {
	blockIndex = clamp(blockIndex, 0, len(s.Blocks)-1)
	questionIndex = clamp(questionIndex, 0, len(s.Blocks[blockIndex].Questions)-1)
	s.BlockIndex = blockIndex
	s.QuestionIndex = questionIndex
}

// Review enters the reviewing phase (from scored or reviewing) and moves the
// pointer to the indicated question. The handler exposes the answer key only
// through this path.
func (s *Session) Review(blockIndex, questionIndex int) error {
	if s.Phase != models.PhaseScored && s.Phase != models.PhaseReviewing {
		return ErrInvalidTransition
	}
	s.Phase = models.PhaseReviewing
	s.moveClamped(blockIndex, questionIndex)
	return nil
}

// EndReview returns a reviewing session to scored.
func (s *Session) EndReview() error {
	if s.Phase != models.PhaseReviewing {
		return ErrInvalidTransition
	}
	s.Phase = models.PhaseScored
	return nil
}

// Reset discards the attempt from any phase and returns to selecting.
// Session history is untouched; any Result already appended stays appended.
func (s *Session) Reset() {
	s.Phase = models.PhaseSelecting
	s.Variant = ""
	s.Blocks = nil
	s.Answers = make(map[int64]*models.AnswerRecord)
	s.BlockIndex = 0
	s.QuestionIndex = 0
	s.TimeRemaining = 0
	s.TotalSeconds = 0
	s.Result = nil
}

// ElapsedSeconds is how long the attempt ran, derived from the countdown.
func (s *Session) ElapsedSeconds() int {
	return s.TotalSeconds - s.TimeRemaining
}

func (s *Session) question(id int64) (models.Question, bool) {
	for _, block := range s.Blocks {
		for _, q := range block.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return models.Question{}, false
}

// CurrentQuestion returns the question under the pointer.
func (s *Session) CurrentQuestion() (models.Question, bool) {
	if s.BlockIndex < 0 || s.BlockIndex >= len(s.Blocks) {
		return models.Question{}, false
	}
	block := s.Blocks[s.BlockIndex]
	if s.QuestionIndex < 0 || s.QuestionIndex >= len(block.Questions) {
		return models.Question{}, false
	}
	return block.Questions[s.QuestionIndex], true
}

// Snapshot renders the wire view. Correct options and explanations are
// withheld; review exposes them per question once scored.
func (s *Session) Snapshot() models.SessionSnapshot {
	snap := models.SessionSnapshot{
		ID:            s.ID,
		Phase:         s.Phase,
		Variant:       s.Variant,
		BlockIndex:    s.BlockIndex,
		QuestionIndex: s.QuestionIndex,
		TimeRemaining: s.TimeRemaining,
		Result:        s.Result,
	}

	for _, block := range s.Blocks {
		bs := models.BlockSnapshot{
			Name:             block.Name,
			Subject:          block.Subject,
			TimeLimitSeconds: block.TimeLimitSeconds,
		}
		for _, q := range block.Questions {
			bs.Questions = append(bs.Questions, q.Serve())
		}
		snap.Blocks = append(snap.Blocks, bs)

		// Emit answers in question order so clients render deterministically.
		for _, q := range block.Questions {
			if record, ok := s.Answers[q.ID]; ok {
				snap.Answers = append(snap.Answers, *record)
			}
		}
	}
	return snap
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
