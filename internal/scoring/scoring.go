package scoring

import (
	"math"
	"sort"

	"github.com/unt-prep/backend/internal/models"
)

// Answer is one (question, selection) pair. Selected == nil means the
// question was never answered; it can never match the correct option, so
// unanswered always scores as incorrect.
type Answer struct {
	QuestionID int64
	Selected   *int
}

// Level cut points for a group's percentage.
const (
	levelHighCut   = 75
	levelMediumCut = 50
)

// topicStrongCut is the correct-rate cut for classifying a topic as strong.
// Intentionally different from the level cuts.
const topicStrongCut = 0.70

// ScoreSubjects groups answers by their question's subject and scores each
// group. Answers referencing a question id absent from questions are skipped:
// historical answer sets must stay scoreable after bank edits, so the
// mismatch is a tolerated inconsistency, not an error. Returns the per-subject
// scores sorted by subject plus the overall (score, max) across all groups.
func ScoreSubjects(answers []Answer, questions map[int64]models.Question) ([]models.SubjectScore, int, int) {
	groups := make(map[models.Subject][]Answer)
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		groups[q.Subject] = append(groups[q.Subject], a)
	}

	scores := make([]models.SubjectScore, 0, len(groups))
	overallScore, overallMax := 0, 0
	for subject, group := range groups {
		s := ScoreGroup(subject, "", group, questions)
		overallScore += s.Score
		overallMax += s.Max
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].Subject < scores[j].Subject })
	return scores, overallScore, overallMax
}

// ScoreGroup scores one pre-formed group of answers (one subject or one exam
// block). Unknown question ids are skipped here too, so the group's Max can
// be smaller than len(answers).
func ScoreGroup(subject models.Subject, block string, answers []Answer, questions map[int64]models.Question) models.SubjectScore {
	type topicTally struct {
		correct  int
		answered int
		total    int
	}
	topics := make(map[string]*topicTally)

	score, max := 0, 0
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		max++

		correct := a.Selected != nil && *a.Selected == q.CorrectOption
		if correct {
			score++
		}

		t := topics[q.Topic]
		if t == nil {
			t = &topicTally{}
			topics[q.Topic] = t
		}
		t.total++
		if a.Selected != nil {
			t.answered++
		}
		if correct {
			t.correct++
		}
	}

	// A topic the student never touched is left unclassified; one answer is
	// enough to classify, with unanswered questions still dragging the rate
	// down.
	var weak, strong []string
	for topic, t := range topics {
		if t.answered == 0 {
			continue
		}
		if float64(t.correct)/float64(t.total) >= topicStrongCut {
			strong = append(strong, topic)
		} else {
			weak = append(weak, topic)
		}
	}
	sort.Strings(weak)
	sort.Strings(strong)

	pct := Percentage(score, max)
	return models.SubjectScore{
		Subject:      subject,
		Block:        block,
		Score:        score,
		Max:          max,
		Percentage:   pct,
		Level:        LevelFor(pct),
		WeakTopics:   weak,
		StrongTopics: strong,
	}
}

// Percentage returns round(100 * score / max), or 0 when max is 0.
func Percentage(score, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(max)))
}

// LevelFor maps a percentage to its qualitative level: high at 75 and above,
// medium at 50 and above, low otherwise.
func LevelFor(percentage int) models.Level {
	if percentage >= levelHighCut {
		return models.LevelHigh
	}
	if percentage >= levelMediumCut {
		return models.LevelMedium
	}
	return models.LevelLow
}
