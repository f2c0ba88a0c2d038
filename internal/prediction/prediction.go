package prediction

import (
	"math"
	"sort"

	"github.com/unt-prep/backend/internal/models"
)

// Predict ranks every catalog program against the student's subject scores.
// Programs whose required subjects share nothing with the tested subjects are
// excluded entirely; the rest are sorted by probability descending, ties kept
// in catalog order.
func Predict(scores []models.SubjectScore, programs []models.Program) []models.UniversityPrediction {
	tested := make(map[models.Subject]models.SubjectScore, len(scores))
	for _, s := range scores {
		tested[s.Subject] = s
	}

	var predictions []models.UniversityPrediction
	for _, p := range programs {
		sumScore, sumMax := 0, 0
		for _, subject := range p.RequiredSubjects {
			if s, ok := tested[subject]; ok {
				sumScore += s.Score
				sumMax += s.Max
			}
		}
		if sumMax == 0 {
			// No overlap with what the student actually took: nothing to
			// forecast from.
			continue
		}

		// Ratio of sums, not an average of percentages, so subjects with few
		// questions don't dominate.
		studentPct := 100 * float64(sumScore) / float64(sumMax)
		probability := Probability(studentPct, float64(p.MinScorePercent))
		gap := int(math.Round(float64(p.MinScorePercent) - studentPct))
		if gap < 0 {
			gap = 0
		}

		predictions = append(predictions, models.UniversityPrediction{
			InstitutionID:   p.InstitutionID,
			InstitutionName: p.InstitutionName,
			ProgramID:       p.ID,
			ProgramName:     p.Name,
			Probability:     probability,
			ScoreGap:        gap,
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})
	return predictions
}

// Probability maps the student/required percentage pair to an integer
// admission probability. A zero requirement is automatically satisfied.
func Probability(studentPct, requiredPct float64) int {
	ratio := 1.0
	if requiredPct > 0 {
		ratio = studentPct / requiredPct
	}
	p := int(math.Round(probabilityCurve(ratio)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// probabilityCurve is the piecewise admission heuristic. The breakpoints and
// coefficients are product-calibrated and each branch meets its neighbor at
// the boundary (0.60, 0.85, 1.0), so the curve is continuous; keep it that
// way if the numbers are ever retuned.
func probabilityCurve(ratio float64) float64 {
	switch {
	case ratio >= 1.0:
		return math.Min(98, 75+(ratio-1)*100)
	case ratio >= 0.85:
		return 40 + (ratio-0.85)*(35/0.15)
	case ratio >= 0.60:
		return 10 + (ratio-0.60)*(30/0.25)
	default:
		return math.Max(2, ratio*16)
	}
}
