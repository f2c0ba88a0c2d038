package exam

import (
	"context"
	"errors"
	"testing"

	"github.com/unt-prep/backend/internal/models"
)

type fakeCatalog struct {
	programs []models.Program
}

func (f *fakeCatalog) LoadPrograms(ctx context.Context) ([]models.Program, error) {
	return f.programs, nil
}

type fakeArchive struct {
	appended   []*models.Result
	percentile int
}

func (f *fakeArchive) Append(ctx context.Context, r *models.Result) error {
	f.appended = append(f.appended, r)
	return nil
}

func (f *fakeArchive) PercentileFor(ctx context.Context, variant models.Variant, overallPercent int) (int, error) {
	return f.percentile, nil
}

func testService(t *testing.T) (*Service, *fakeArchive) {
	t.Helper()
	archive := &fakeArchive{percentile: 60}
	catalog := &fakeCatalog{programs: []models.Program{
		{
			ID:               1,
			InstitutionName:  "Al-Farabi KazNU",
			Name:             "Computer Science",
			RequiredSubjects: []models.Subject{models.SubjectMathematics, models.SubjectPhysics},
			MinScorePercent:  70,
		},
	}}
	return NewService(NewManager(), testBank(), catalog, archive), archive
}

// startedSnapshot drives a session from creation into in_progress through the
// service, the way the handlers do.
func startedSnapshot(t *testing.T, svc *Service, userID int64) models.SessionSnapshot {
	t.Helper()
	snap := svc.CreateSession(userID)
	snap, err := svc.Do(snap.ID, userID, func(s *Session) error {
		return s.Configure(models.VariantDiagnostic,
			[]models.Subject{models.SubjectMathematics, models.SubjectPhysics}, svc.bank)
	})
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	snap, err = svc.Do(snap.ID, userID, (*Session).Start)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return snap
}

func TestFinishProducesOneResult(t *testing.T) {
	svc, archive := testService(t)
	snap := startedSnapshot(t, svc, 7)

	// Answer the first question correctly.
	correct := 1
	qid := snap.Blocks[0].Questions[0].ID
	if _, err := svc.Do(snap.ID, 7, func(s *Session) error {
		return s.SetAnswer(qid, &correct)
	}); err != nil {
		t.Fatalf("answer: %v", err)
	}

	finished, err := svc.Finish(context.Background(), snap.ID, 7)
	if err != nil {
		t.Fatalf("Finish = %v", err)
	}
	if finished.Phase != models.PhaseScored {
		t.Errorf("phase = %s, want scored", finished.Phase)
	}
	if finished.Result == nil {
		t.Fatal("snapshot has no result after finish")
	}
	if finished.Result.OverallScore != 1 {
		t.Errorf("OverallScore = %d, want 1", finished.Result.OverallScore)
	}
	if finished.Result.Percentile != 60 {
		t.Errorf("Percentile = %d, want 60 from archive", finished.Result.Percentile)
	}
	if len(finished.Result.Predictions) == 0 {
		t.Error("diagnostic result has no predictions")
	}
	if len(archive.appended) != 1 {
		t.Fatalf("archive holds %d results, want 1", len(archive.appended))
	}

	// A second finish is a rejected no-op and appends nothing.
	if _, err := svc.Finish(context.Background(), snap.ID, 7); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Finish = %v, want ErrInvalidTransition", err)
	}
	if len(archive.appended) != 1 {
		t.Errorf("archive holds %d results after double finish, want 1", len(archive.appended))
	}
}

func TestTickToZeroAutoFinishes(t *testing.T) {
	svc, archive := testService(t)
	snap := startedSnapshot(t, svc, 3)

	if _, err := svc.Do(snap.ID, 3, func(s *Session) error {
		s.TimeRemaining = 1
		return nil
	}); err != nil {
		t.Fatalf("arm countdown: %v", err)
	}

	// One scheduler pass, as RunTicker does each second.
	svc.manager.Each(func(s *Session) {
		if s.Tick() {
			if err := svc.finishLocked(context.Background(), s); err != nil {
				t.Errorf("auto finish: %v", err)
			}
		}
	})

	after, err := svc.Snapshot(snap.ID, 3)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if after.Phase != models.PhaseScored {
		t.Errorf("phase = %s after expiry, want scored", after.Phase)
	}
	if after.TimeRemaining != 0 {
		t.Errorf("TimeRemaining = %d, want 0", after.TimeRemaining)
	}
	if len(archive.appended) != 1 {
		t.Errorf("archive holds %d results, want 1", len(archive.appended))
	}
}

func TestUnansweredQuestionsScoreIncorrect(t *testing.T) {
	svc, archive := testService(t)
	snap := startedSnapshot(t, svc, 5)

	if _, err := svc.Finish(context.Background(), snap.ID, 5); err != nil {
		t.Fatalf("Finish = %v", err)
	}

	result := archive.appended[0]
	if result.OverallScore != 0 {
		t.Errorf("OverallScore = %d with no answers, want 0", result.OverallScore)
	}
	total := 0
	for _, block := range snap.Blocks {
		total += len(block.Questions)
	}
	if result.OverallMax != total {
		t.Errorf("OverallMax = %d, want %d", result.OverallMax, total)
	}
}

func TestReviewExposesAnswerKeyAfterScoring(t *testing.T) {
	svc, _ := testService(t)
	snap := startedSnapshot(t, svc, 9)
	if _, err := svc.Finish(context.Background(), snap.ID, 9); err != nil {
		t.Fatalf("Finish = %v", err)
	}

	reviewed, err := svc.Do(snap.ID, 9, func(s *Session) error {
		return s.Review(0, 1)
	})
	if err != nil {
		t.Fatalf("Review = %v", err)
	}
	if reviewed.Phase != models.PhaseReviewing {
		t.Errorf("phase = %s, want reviewing", reviewed.Phase)
	}
	if reviewed.BlockIndex != 0 || reviewed.QuestionIndex != 1 {
		t.Errorf("position = (%d,%d), want (0,1)", reviewed.BlockIndex, reviewed.QuestionIndex)
	}

	back, err := svc.Do(snap.ID, 9, (*Session).EndReview)
	if err != nil {
		t.Fatalf("EndReview = %v", err)
	}
	if back.Phase != models.PhaseScored {
		t.Errorf("phase = %s after EndReview, want scored", back.Phase)
	}
}

func TestSessionOwnershipIsEnforced(t *testing.T) {
	svc, _ := testService(t)
	snap := svc.CreateSession(1)

	if _, err := svc.Snapshot(snap.ID, 2); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign snapshot = %v, want ErrSessionNotFound", err)
	}
}

func TestCreateSessionReplacesLiveSession(t *testing.T) {
	svc, _ := testService(t)
	first := svc.CreateSession(4)
	second := svc.CreateSession(4)

	if _, err := svc.Snapshot(first.ID, 4); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("first session still reachable: %v", err)
	}
	if _, err := svc.Snapshot(second.ID, 4); err != nil {
		t.Errorf("second session unreachable: %v", err)
	}
}

func TestSubmitDiagnosticSkipsUnknownQuestions(t *testing.T) {
	svc, archive := testService(t)

	one := 1
	result, err := svc.SubmitDiagnostic(context.Background(), 11, models.DiagnosticRequest{
		Answers: []models.DiagnosticAnswer{
			{QuestionID: 11, OptionIndex: &one},    // mathematics, correct
			{QuestionID: 99999, OptionIndex: &one}, // not in the bank
		},
		ElapsedSeconds: 120,
	})
	if err != nil {
		t.Fatalf("SubmitDiagnostic = %v", err)
	}

	if result.OverallMax != 1 {
		t.Errorf("OverallMax = %d, want 1 with the unknown id skipped", result.OverallMax)
	}
	if result.OverallScore != 1 {
		t.Errorf("OverallScore = %d, want 1", result.OverallScore)
	}
	if result.ElapsedSeconds != 120 {
		t.Errorf("ElapsedSeconds = %d, want 120", result.ElapsedSeconds)
	}
	if len(archive.appended) != 1 {
		t.Errorf("archive holds %d results, want 1", len(archive.appended))
	}
}
