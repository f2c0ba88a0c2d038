package scoring

import (
	"reflect"
	"testing"

	"github.com/unt-prep/backend/internal/models"
)

func intPtr(v int) *int { return &v }

func question(id int64, subject models.Subject, topic string, correct int) models.Question {
	return models.Question{
		ID:            id,
		Subject:       subject,
		Topic:         topic,
		Prompt:        "q",
		Options:       []string{"a", "b", "c", "d"},
		CorrectOption: correct,
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, max int
		want       int
	}{
		{0, 0, 0},  // zero max never divides
		{5, 0, 0},
		{0, 10, 0},
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{10, 10, 100},
	}

	for _, tt := range tests {
		got := Percentage(tt.score, tt.max)
		if got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.score, tt.max, got, tt.want)
		}
		if got < 0 || got > 100 {
			t.Errorf("Percentage(%d, %d) = %d, out of [0, 100]", tt.score, tt.max, got)
		}
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		pct  int
		want models.Level
	}{
		{0, models.LevelLow},
		{49, models.LevelLow},
		{50, models.LevelMedium},
		{74, models.LevelMedium},
		{75, models.LevelHigh},
		{100, models.LevelHigh},
	}

	for _, tt := range tests {
		got := LevelFor(tt.pct)
		if got != tt.want {
			t.Errorf("LevelFor(%d) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestScoreSubjectsExampleScenario(t *testing.T) {
	// 2 math questions (topic algebra), 2 physics questions (topic mechanics).
	// 1/2 math correct, 2/2 physics correct.
	questions := map[int64]models.Question{
		1: question(1, models.SubjectMathematics, "algebra", 0),
		2: question(2, models.SubjectMathematics, "algebra", 1),
		3: question(3, models.SubjectPhysics, "mechanics", 2),
		4: question(4, models.SubjectPhysics, "mechanics", 3),
	}
	answers := []Answer{
		{QuestionID: 1, Selected: intPtr(0)}, // correct
		{QuestionID: 2, Selected: intPtr(3)}, // wrong
		{QuestionID: 3, Selected: intPtr(2)}, // correct
		{QuestionID: 4, Selected: intPtr(3)}, // correct
	}

	scores, overall, max := ScoreSubjects(answers, questions)

	if overall != 3 || max != 4 {
		t.Errorf("overall = %d/%d, want 3/4", overall, max)
	}
	if len(scores) != 2 {
		t.Fatalf("len(scores) = %d, want 2", len(scores))
	}

	math := scores[0]
	if math.Subject != models.SubjectMathematics {
		t.Fatalf("scores[0].Subject = %q, want mathematics (sorted order)", math.Subject)
	}
	if math.Score != 1 || math.Max != 2 || math.Percentage != 50 || math.Level != models.LevelMedium {
		t.Errorf("math = {score:%d max:%d pct:%d level:%q}, want {1 2 50 medium}",
			math.Score, math.Max, math.Percentage, math.Level)
	}
	if !reflect.DeepEqual(math.WeakTopics, []string{"algebra"}) {
		t.Errorf("math.WeakTopics = %v, want [algebra]", math.WeakTopics)
	}
	if len(math.StrongTopics) != 0 {
		t.Errorf("math.StrongTopics = %v, want empty", math.StrongTopics)
	}

	physics := scores[1]
	if physics.Score != 2 || physics.Max != 2 || physics.Percentage != 100 || physics.Level != models.LevelHigh {
		t.Errorf("physics = {score:%d max:%d pct:%d level:%q}, want {2 2 100 high}",
			physics.Score, physics.Max, physics.Percentage, physics.Level)
	}
	if !reflect.DeepEqual(physics.StrongTopics, []string{"mechanics"}) {
		t.Errorf("physics.StrongTopics = %v, want [mechanics]", physics.StrongTopics)
	}
}

func TestScoreSubjectsSkipsUnknownQuestions(t *testing.T) {
	questions := map[int64]models.Question{
		1: question(1, models.SubjectPhysics, "optics", 0),
	}
	answers := []Answer{
		{QuestionID: 1, Selected: intPtr(0)},
		{QuestionID: 999, Selected: intPtr(0)}, // absent from the bank
	}

	scores, overall, max := ScoreSubjects(answers, questions)
	if overall != 1 || max != 1 {
		t.Errorf("overall = %d/%d, want 1/1 (unknown id skipped)", overall, max)
	}
	if len(scores) != 1 || scores[0].Max != 1 {
		t.Errorf("scores = %+v, want single physics group with max 1", scores)
	}
}

func TestScoreSubjectsEmptyInput(t *testing.T) {
	scores, overall, max := ScoreSubjects(nil, map[int64]models.Question{})
	if len(scores) != 0 || overall != 0 || max != 0 {
		t.Errorf("empty input: scores=%v overall=%d max=%d, want all zero", scores, overall, max)
	}
}

func TestScoreGroupUnansweredCountsIncorrect(t *testing.T) {
	questions := map[int64]models.Question{
		1: question(1, models.SubjectChemistry, "acids", 1),
		2: question(2, models.SubjectChemistry, "acids", 2),
	}
	answers := []Answer{
		{QuestionID: 1, Selected: nil}, // unanswered
		{QuestionID: 2, Selected: intPtr(2)},
	}

	s := ScoreGroup(models.SubjectChemistry, "", answers, questions)
	if s.Score != 1 || s.Max != 2 {
		t.Errorf("score = %d/%d, want 1/2 (unanswered is incorrect)", s.Score, s.Max)
	}
	// 1/2 on the only topic is below the 70% cut.
	if !reflect.DeepEqual(s.WeakTopics, []string{"acids"}) {
		t.Errorf("WeakTopics = %v, want [acids]", s.WeakTopics)
	}
}

func TestScoreGroupUntouchedTopicUnclassified(t *testing.T) {
	questions := map[int64]models.Question{
		1: question(1, models.SubjectPhysics, "optics", 0),
		2: question(2, models.SubjectPhysics, "waves", 0),
	}
	answers := []Answer{
		{QuestionID: 1, Selected: intPtr(0)}, // optics answered
		{QuestionID: 2, Selected: nil},       // waves never touched
	}

	s := ScoreGroup(models.SubjectPhysics, "", answers, questions)
	if s.Score != 1 || s.Max != 2 {
		t.Errorf("score = %d/%d, want 1/2", s.Score, s.Max)
	}
	if !reflect.DeepEqual(s.StrongTopics, []string{"optics"}) {
		t.Errorf("StrongTopics = %v, want [optics]", s.StrongTopics)
	}
	for _, topic := range s.WeakTopics {
		if topic == "waves" {
			t.Error("waves classified despite zero answered questions")
		}
	}
}

func TestScoreGroupTopicCutAt70(t *testing.T) {
	// 7/10 correct on one topic sits exactly on the strong cut.
	questions := make(map[int64]models.Question)
	var answers []Answer
	for i := int64(1); i <= 10; i++ {
		questions[i] = question(i, models.SubjectBiology, "genetics", 0)
		sel := 0
		if i > 7 {
			sel = 1 // wrong
		}
		s := sel
		answers = append(answers, Answer{QuestionID: i, Selected: &s})
	}

	s := ScoreGroup(models.SubjectBiology, "", answers, questions)
	if !reflect.DeepEqual(s.StrongTopics, []string{"genetics"}) {
		t.Errorf("StrongTopics = %v, want [genetics] at exactly 70%%", s.StrongTopics)
	}
	if len(s.WeakTopics) != 0 {
		t.Errorf("WeakTopics = %v, want empty", s.WeakTopics)
	}
}

func TestScoreGroupFullyCorrectRoundTrip(t *testing.T) {
	const m = 6
	questions := make(map[int64]models.Question)
	var answers []Answer
	for i := int64(1); i <= m; i++ {
		questions[i] = question(i, models.SubjectGeography, "maps", 3)
		sel := 3
		answers = append(answers, Answer{QuestionID: i, Selected: &sel})
	}

	s := ScoreGroup(models.SubjectGeography, "geo block", answers, questions)
	if s.Score != m || s.Percentage != 100 || s.Level != models.LevelHigh {
		t.Errorf("fully correct: {score:%d pct:%d level:%q}, want {%d 100 high}",
			s.Score, s.Percentage, s.Level, m)
	}
	if s.Block != "geo block" {
		t.Errorf("Block = %q, want %q", s.Block, "geo block")
	}
}
