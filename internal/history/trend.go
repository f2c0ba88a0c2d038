package history

import (
	"sort"

	"github.com/unt-prep/backend/internal/models"
)

// ComputeTrend diffs the two most recent diagnostic attempts. Only subjects
// present in both attempts get a delta; a subject dropped or newly added
// between attempts has no meaningful movement to report.
func ComputeTrend(latest, previous models.Result) models.TrendResponse {
	prevBySubject := make(map[models.Subject]int)
	for _, score := range previous.Scores {
		prevBySubject[score.Subject] = score.Percentage
	}

	var deltas []models.SubjectDelta
	for _, score := range latest.Scores {
		prev, ok := prevBySubject[score.Subject]
		if !ok {
			continue
		}
		deltas = append(deltas, models.SubjectDelta{
			Subject:        score.Subject,
			PrevPercentage: prev,
			Percentage:     score.Percentage,
			Delta:          score.Percentage - prev,
		})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Subject < deltas[j].Subject })

	return models.TrendResponse{
		Latest:        latest.ID,
		Previous:      previous.ID,
		OverallDelta:  latest.OverallPercent - previous.OverallPercent,
		SubjectDeltas: deltas,
	}
}
