package prediction

import (
	"math"
	"testing"

	"github.com/unt-prep/backend/internal/models"
)

func subjectScore(subject models.Subject, score, max int) models.SubjectScore {
	return models.SubjectScore{Subject: subject, Score: score, Max: max}
}

func TestProbabilityAtRequirement(t *testing.T) {
	// Exactly meeting the requirement lands on the ratio=1.0 branch: 75.
	got := Probability(80, 80)
	if got != 75 {
		t.Errorf("Probability(80, 80) = %d, want 75", got)
	}
}

func TestProbabilityZeroRequirement(t *testing.T) {
	// A zero cutoff is automatically satisfied; never divides.
	got := Probability(0, 0)
	if got != 75 {
		t.Errorf("Probability(0, 0) = %d, want 75", got)
	}
	got = Probability(42, 0)
	if got != 75 {
		t.Errorf("Probability(42, 0) = %d, want 75", got)
	}
}

func TestProbabilityBounds(t *testing.T) {
	tests := []struct {
		student, required float64
		want              int
	}{
		{200, 50, 98},  // self-limited high end
		{0, 100, 2},    // self-limited low end
		{1, 100, 2},    // deep below requirement
	}
	for _, tt := range tests {
		got := Probability(tt.student, tt.required)
		if got != tt.want {
			t.Errorf("Probability(%g, %g) = %d, want %d", tt.student, tt.required, got, tt.want)
		}
	}
}

func TestProbabilityCurveContinuity(t *testing.T) {
	// After rounding, adjacent branches may differ by at most 1 point at
	// each breakpoint.
	const eps = 1e-9
	for _, boundary := range []float64{0.60, 0.85, 1.0} {
		left := Probability((boundary-eps)*100, 100)
		right := Probability(boundary*100, 100)
		if diff := right - left; diff < 0 || diff > 1 {
			t.Errorf("curve jump at ratio=%.2f: left=%d right=%d", boundary, left, right)
		}
	}
}

func TestProbabilityMonotonic(t *testing.T) {
	// Non-decreasing over the whole domain, strictly increasing between the
	// low clamp and the 98 cap.
	prev := -1
	prevStrict := -1
	for pct := 0; pct <= 150; pct++ {
		got := Probability(float64(pct), 100)
		if got < prev {
			t.Fatalf("Probability(%d, 100) = %d dropped below %d", pct, got, prev)
		}
		prev = got

		if pct >= 15 && pct <= 115 && pct%10 == 5 {
			if got <= prevStrict {
				t.Errorf("Probability(%d, 100) = %d not strictly above %d", pct, got, prevStrict)
			}
			prevStrict = got
		}
	}
}

func TestPredictExcludesZeroOverlap(t *testing.T) {
	scores := []models.SubjectScore{subjectScore(models.SubjectMathematics, 8, 10)}
	programs := []models.Program{
		{ID: 1, Name: "General Medicine", RequiredSubjects: []models.Subject{models.SubjectBiology, models.SubjectChemistry}, MinScorePercent: 85},
	}

	got := Predict(scores, programs)
	if len(got) != 0 {
		t.Errorf("Predict with zero overlap emitted %d predictions, want 0", len(got))
	}
}

func TestPredictExampleScenario(t *testing.T) {
	// Program requires {math} at 80; student scores 80% in math.
	scores := []models.SubjectScore{subjectScore(models.SubjectMathematics, 8, 10)}
	programs := []models.Program{
		{ID: 7, InstitutionID: 3, Name: "Applied Mathematics",
			RequiredSubjects: []models.Subject{models.SubjectMathematics}, MinScorePercent: 80},
	}

	got := Predict(scores, programs)
	if len(got) != 1 {
		t.Fatalf("len(predictions) = %d, want 1", len(got))
	}
	if got[0].Probability != 75 {
		t.Errorf("Probability = %d, want 75", got[0].Probability)
	}
	if got[0].ScoreGap != 0 {
		t.Errorf("ScoreGap = %d, want 0", got[0].ScoreGap)
	}
}

func TestPredictScoreGap(t *testing.T) {
	// 6/10 = 60% against a 75% cutoff: 15 points short.
	scores := []models.SubjectScore{subjectScore(models.SubjectChemistry, 6, 10)}
	programs := []models.Program{
		{ID: 1, Name: "Pharmacy", RequiredSubjects: []models.Subject{models.SubjectChemistry}, MinScorePercent: 75},
	}

	got := Predict(scores, programs)
	if len(got) != 1 {
		t.Fatalf("len(predictions) = %d, want 1", len(got))
	}
	if got[0].ScoreGap != 15 {
		t.Errorf("ScoreGap = %d, want 15", got[0].ScoreGap)
	}
}

func TestPredictAggregatesAsRatioOfSums(t *testing.T) {
	// 1/2 in math and 9/10 in physics: aggregate is 10/12 ≈ 83.3%, not the
	// 70% an average of percentages would give.
	scores := []models.SubjectScore{
		subjectScore(models.SubjectMathematics, 1, 2),
		subjectScore(models.SubjectPhysics, 9, 10),
	}
	programs := []models.Program{
		{ID: 1, Name: "Engineering", RequiredSubjects: []models.Subject{models.SubjectMathematics, models.SubjectPhysics}, MinScorePercent: 80},
	}

	got := Predict(scores, programs)
	if len(got) != 1 {
		t.Fatalf("len(predictions) = %d, want 1", len(got))
	}

	wantStudent := 100 * 10.0 / 12.0
	want := Probability(wantStudent, 80)
	if got[0].Probability != want {
		t.Errorf("Probability = %d, want %d (ratio of sums)", got[0].Probability, want)
	}
	// Above the requirement: no gap.
	if got[0].ScoreGap != 0 {
		t.Errorf("ScoreGap = %d, want 0", got[0].ScoreGap)
	}
}

func TestPredictStableOrdering(t *testing.T) {
	scores := []models.SubjectScore{subjectScore(models.SubjectMathematics, 9, 10)}
	// Identical requirements: equal probability, catalog order preserved.
	programs := []models.Program{
		{ID: 1, Name: "First", RequiredSubjects: []models.Subject{models.SubjectMathematics}, MinScorePercent: 70},
		{ID: 2, Name: "Second", RequiredSubjects: []models.Subject{models.SubjectMathematics}, MinScorePercent: 70},
		{ID: 3, Name: "Harder", RequiredSubjects: []models.Subject{models.SubjectMathematics}, MinScorePercent: 99},
	}

	got := Predict(scores, programs)
	if len(got) != 3 {
		t.Fatalf("len(predictions) = %d, want 3", len(got))
	}
	if got[0].ProgramID != 1 || got[1].ProgramID != 2 {
		t.Errorf("tie order = [%d %d], want [1 2] (catalog order)", got[0].ProgramID, got[1].ProgramID)
	}
	if got[2].ProgramID != 3 {
		t.Errorf("lowest probability last: got program %d", got[2].ProgramID)
	}
	if !sortedDesc(got) {
		t.Errorf("predictions not sorted by probability descending: %+v", got)
	}
}

func sortedDesc(ps []models.UniversityPrediction) bool {
	for i := 1; i < len(ps); i++ {
		if ps[i].Probability > ps[i-1].Probability {
			return false
		}
	}
	return true
}

func TestProbabilityNeverThrowsOnExtremes(t *testing.T) {
	for _, student := range []float64{0, 0.0001, 50, 100, 1000} {
		for _, required := range []float64{0, 1, 50, 100} {
			got := Probability(student, required)
			if got < 0 || got > 100 {
				t.Errorf("Probability(%g, %g) = %d, out of [0, 100]", student, required, got)
			}
		}
	}
	if math.IsNaN(probabilityCurve(0)) {
		t.Error("probabilityCurve(0) is NaN")
	}
}
