package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

// Score compares submitted option texts with the answer keys. A question counts only
// when the submitted set equals the correct set; order and duplicates are ignored.
// submitted is keyed by the string form of the question ID.
func Score(questions []entities.Question, submitted map[string][]string) *entities.ScoreReport {
	report := &entities.ScoreReport{
		Total:      len(questions),
		Results:    make([]entities.QuestionResult, 0, len(questions)),
		PerSection: make(map[string]entities.SectionScore),
	}

	for _, q := range questions {
		given := normalizeAnswers(submitted[strconv.Itoa(q.ID)])
		correct := normalizeAnswers(q.CorrectAnswers)
		ok := sameSet(correct, given)

		sec := report.PerSection[q.Section]
		sec.Total++
		if ok {
			report.Score++
			sec.Correct++
		}
		report.PerSection[q.Section] = sec

		report.Results = append(report.Results, entities.QuestionResult{
			ID:             q.ID,
			Section:        q.Section,
			Question:       q.Stem,
			Options:        append([]entities.Option(nil), q.Options...),
			CorrectAnswers: correct,
			UserAnswers:    given,
			IsCorrect:      ok,
		})
	}

	report.Percentage = percentage(report.Score, report.Total)
	for name, sec := range report.PerSection {
		sec.Percentage = percentage(sec.Correct, sec.Total)
		report.PerSection[name] = sec
	}

	return report
}

// normalizeAnswers trims answers, drops empty ones and removes duplicates, keeping order.
func normalizeAnswers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, x := range a {
		set[x] = struct{}{}
	}
	for _, x := range b {
		if _, ok := set[x]; !ok {
			return false
		}
	}
	return true
}

// percentage returns correct/total*100 rounded to two decimals, 0 for an empty quiz.
func percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
