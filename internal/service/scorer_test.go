package service

import (
	"testing"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

func TestScore(t *testing.T) {
	questions := []entities.Question{
		{ID: 1, Section: "A", Stem: "multi", CorrectAnswers: []string{"A", "C"}, Multiple: true},
		{ID: 2, Section: "A", Stem: "single", CorrectAnswers: []string{"X"}},
		{ID: 3, Section: "B", Stem: "other", CorrectAnswers: []string{"Y"}},
	}

	tests := []struct {
		name      string
		submitted map[string][]string
		score     int
		correct   []bool
	}{
		{
			name:      "order independent",
			submitted: map[string][]string{"1": {"C", "A"}, "2": {"X"}, "3": {"Y"}},
			score:     3,
			correct:   []bool{true, true, true},
		},
		{
			name:      "subset is wrong",
			submitted: map[string][]string{"1": {"A"}, "2": {"X"}},
			score:     1,
			correct:   []bool{false, true, false},
		},
		{
			name:      "superset is wrong",
			submitted: map[string][]string{"1": {"A", "C", "D"}},
			score:     0,
			correct:   []bool{false, false, false},
		},
		{
			name:      "duplicates and whitespace ignored",
			submitted: map[string][]string{"1": {" A", "C ", "A", ""}, "3": {"Y"}},
			score:     2,
			correct:   []bool{true, false, true},
		},
		{
			name:      "unknown ids ignored",
			submitted: map[string][]string{"42": {"X"}},
			score:     0,
			correct:   []bool{false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Score(questions, tt.submitted)

			if report.Score != tt.score || report.Total != len(questions) {
				t.Fatalf("score %d/%d, want %d/%d", report.Score, report.Total, tt.score, len(questions))
			}
			for i, res := range report.Results {
				if res.IsCorrect != tt.correct[i] {
					t.Errorf("question %d correct = %v, want %v", res.ID, res.IsCorrect, tt.correct[i])
				}
			}
		})
	}
}

func TestScore_Percentages(t *testing.T) {
	questions := []entities.Question{
		{ID: 1, Section: "A", CorrectAnswers: []string{"x"}},
		{ID: 2, Section: "A", CorrectAnswers: []string{"x"}},
		{ID: 3, Section: "B", CorrectAnswers: []string{"x"}},
	}

	report := Score(questions, map[string][]string{"1": {"x"}})

	if report.Percentage != 33.33 {
		t.Errorf("percentage = %v, want 33.33", report.Percentage)
	}
	if a := report.PerSection["A"]; a.Correct != 1 || a.Total != 2 || a.Percentage != 50 {
		t.Errorf("section A = %+v", a)
	}
	if b := report.PerSection["B"]; b.Correct != 0 || b.Total != 1 || b.Percentage != 0 {
		t.Errorf("section B = %+v", b)
	}
}

func TestScore_EmptyQuiz(t *testing.T) {
	report := Score(nil, map[string][]string{"1": {"x"}})
	if report.Total != 0 || report.Score != 0 || report.Percentage != 0 {
		t.Fatalf("empty quiz report = %+v", report)
	}
}
