package exam

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/unt-prep/backend/internal/bank"
	"github.com/unt-prep/backend/internal/models"
	"github.com/unt-prep/backend/internal/prediction"
	"github.com/unt-prep/backend/internal/scoring"
)

// ProgramCatalog supplies the program list used for admission predictions.
type ProgramCatalog interface {
	LoadPrograms(ctx context.Context) ([]models.Program, error)
}

// ResultArchive is the slice of the history store the finish pipeline needs.
type ResultArchive interface {
	Append(ctx context.Context, r *models.Result) error
	PercentileFor(ctx context.Context, variant models.Variant, overallPercent int) (int, error)
}

// Service owns the live sessions and the finish pipeline: score the blocks,
// rank programs for diagnostics, place the result among stored attempts, and
// append it to history.
type Service struct {
	manager *Manager
	bank    *bank.Bank
	catalog ProgramCatalog
	history ResultArchive
}

func NewService(manager *Manager, b *bank.Bank, catalog ProgramCatalog, archive ResultArchive) *Service {
	return &Service{manager: manager, bank: b, catalog: catalog, history: archive}
}

// CreateSession opens a fresh session in selecting for the user, replacing
// any live one.
func (s *Service) CreateSession(userID int64) models.SessionSnapshot {
	return s.manager.Create(userID).Snapshot()
}

// Do runs one state-machine operation under the session lock and returns the
// post-operation snapshot.
func (s *Service) Do(id uuid.UUID, userID int64, op func(*Session) error) (models.SessionSnapshot, error) {
	var snap models.SessionSnapshot
	err := s.manager.Do(id, userID, func(sess *Session) error {
		if err := op(sess); err != nil {
			return err
		}
		snap = sess.Snapshot()
		return nil
	})
	return snap, err
}

// Snapshot reads the session without mutating it.
func (s *Service) Snapshot(id uuid.UUID, userID int64) (models.SessionSnapshot, error) {
	return s.Do(id, userID, func(*Session) error { return nil })
}

// Finish closes the session and produces its Result. Finishing twice yields
// an invalid transition, so exactly one Result per attempt reaches history.
func (s *Service) Finish(ctx context.Context, id uuid.UUID, userID int64) (models.SessionSnapshot, error) {
	return s.Do(id, userID, func(sess *Session) error {
		return s.finishLocked(ctx, sess)
	})
}

// finishLocked runs the scoring pipeline. The caller holds the session lock.
func (s *Service) finishLocked(ctx context.Context, sess *Session) error {
	if sess.Phase != models.PhaseInProgress {
		return ErrInvalidTransition
	}

	var scores []models.SubjectScore
	overallScore, overallMax := 0, 0
	for _, block := range sess.Blocks {
		questions := make(map[int64]models.Question, len(block.Questions))
		answers := make([]scoring.Answer, 0, len(block.Questions))
		for _, q := range block.Questions {
			questions[q.ID] = q
			record := sess.Answers[q.ID]
			answers = append(answers, scoring.Answer{QuestionID: q.ID, Selected: record.Selected})
		}

		score := scoring.ScoreGroup(block.Subject, block.Name, answers, questions)
		scores = append(scores, score)
		overallScore += score.Score
		overallMax += score.Max
	}

	result := &models.Result{
		ID:             uuid.New(),
		UserID:         sess.UserID,
		Variant:        sess.Variant,
		Scores:         scores,
		OverallScore:   overallScore,
		OverallMax:     overallMax,
		OverallPercent: scoring.Percentage(overallScore, overallMax),
		ElapsedSeconds: sess.ElapsedSeconds(),
		CreatedAt:      time.Now().UTC(),
	}

	s.enrich(ctx, result)

	sess.Phase = models.PhaseScored
	sess.Result = result
	return nil
}

// SubmitDiagnostic scores a one-shot diagnostic submission with no live
// session. Answers for unknown question ids are skipped.
func (s *Service) SubmitDiagnostic(ctx context.Context, userID int64, req models.DiagnosticRequest) (*models.Result, error) {
	ids := make([]int64, 0, len(req.Answers))
	answers := make([]scoring.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		ids = append(ids, a.QuestionID)
		answers = append(answers, scoring.Answer{QuestionID: a.QuestionID, Selected: a.OptionIndex})
	}

	questions := s.bank.QuestionsByID(ids)
	scores, overallScore, overallMax := scoring.ScoreSubjects(answers, questions)

	result := &models.Result{
		ID:             uuid.New(),
		UserID:         userID,
		Variant:        models.VariantDiagnostic,
		Scores:         scores,
		OverallScore:   overallScore,
		OverallMax:     overallMax,
		OverallPercent: scoring.Percentage(overallScore, overallMax),
		ElapsedSeconds: req.ElapsedSeconds,
		CreatedAt:      time.Now().UTC(),
	}

	s.enrich(ctx, result)
	return result, nil
}

// enrich adds predictions and the percentile, then appends the result to
// history. Catalog or history failures degrade the result instead of losing
// it: a scored attempt is worth more than a complete one.
func (s *Service) enrich(ctx context.Context, result *models.Result) {
	if result.Variant == models.VariantDiagnostic {
		programs, err := s.catalog.LoadPrograms(ctx)
		if err != nil {
			log.Printf("[exam] WARN: skipping predictions, catalog unavailable: %v", err)
		} else {
			result.Predictions = prediction.Predict(result.Scores, programs)
		}
	}

	percentile, err := s.history.PercentileFor(ctx, result.Variant, result.OverallPercent)
	if err != nil {
		log.Printf("[exam] WARN: percentile unavailable: %v", err)
	} else {
		result.Percentile = percentile
	}

	if err := s.history.Append(ctx, result); err != nil {
		log.Printf("[exam] ERROR appending result %s: %v", result.ID, err)
	}
}

// RunTicker drives every in-progress session's countdown once per second
// until ctx is cancelled. A session that hits zero is finished in place, on
// this goroutine, under its own lock.
func (s *Service) RunTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.manager.Each(func(sess *Session) {
				if sess.Tick() {
					if err := s.finishLocked(ctx, sess); err != nil {
						log.Printf("[exam] ERROR auto-finishing session %s: %v", sess.ID, err)
					}
				}
			})
		}
	}
}
