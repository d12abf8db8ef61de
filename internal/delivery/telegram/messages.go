// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/service"
)

const (
	msgWelcome = "<b>Quiz Bank</b>\n\n" +
		"Practice multiple-choice questions section by section or from the whole bank.\n\n" +
		"Log in with /login <i>username password</i> to begin. /help lists every command."
	msgHelp = "<b>Commands</b>\n\n" +
		"/login username password - log in\n" +
		"/logout - log out and drop the running quiz\n" +
		"/sections - sections and your progress\n" +
		"/quiz - quiz from the whole bank\n" +
		"/quiz <i>section</i> - quiz on one section\n" +
		"/results - your latest results\n" +
		"/reset - clear your results and progress"
	msgUseCommands       = "Use the buttons or a command. /help lists them."
	msgUnknownCommand    = "Unknown command. /help lists the available ones."
	msgLoginUsage        = "Usage: /login username password"
	msgLoginRequired     = "Log in first: /login username password"
	msgLoggedOut         = "Logged out."
	msgInvalidCredential = "Invalid username or password."
	msgCredentialUsed    = "These credentials have already been used."
	msgSectionNotAllowed = "This section is not available for your account."
	msgSectionNotFound   = "No such section. /sections lists them."
	msgQuizUnavailable   = "No questions are available right now. Try again later."
	msgQuizNotFound      = "This quiz is no longer running. Start a new one with /quiz."
	msgQuizExpired       = "Time is up: the quiz was not scored. Start a new one with /quiz."
	msgNoResults         = "No results yet. Take a quiz with /quiz."
	msgResetConfirm      = "Delete all your results and section progress?"
	msgResetDone         = "Your results and progress were cleared."
	msgResetCancelled    = "Nothing was deleted."
	msgInternalError     = "Something went wrong. Please try again later."
)

// resultsShown is how many past results /results lists.
const resultsShown = 10

// userMessage maps service errors that the user can act on to a reply.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return msgInvalidCredential, true
	case errors.Is(err, service.ErrCredentialUsed):
		return msgCredentialUsed, true
	case errors.Is(err, service.ErrSectionNotAllowed):
		return msgSectionNotAllowed, true
	case errors.Is(err, service.ErrSectionNotFound):
		return msgSectionNotFound, true
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		return msgQuizUnavailable, true
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionNotActive):
		return msgQuizNotFound, true
	case errors.Is(err, service.ErrSessionExpired):
		return msgQuizExpired, true
	default:
		return "", false
	}
}

func loggedInText(user *entities.User) string {
	text := fmt.Sprintf("Logged in as %s.", bold(user.Username))
	if len(user.Sections) > 0 {
		text += "\nAvailable sections: " + esc(strings.Join(user.Sections, ", "))
	}
	return text + "\n\n/sections to pick a section, /quiz to start."
}

// questionText renders the question at index with its options numbered from 1.
func questionText(s *entities.QuizSession, index int, selected []int, now time.Time) string {
	q := s.Questions[index]

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Question %d/%d</b>", index+1, len(s.Questions))
	if q.Section != "" {
		fmt.Fprintf(&sb, " · %s", esc(q.Section))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "⏱ %s left\n\n", formatRemaining(s.Deadline.Sub(now)))

	sb.WriteString(esc(q.Stem))
	sb.WriteString("\n")
	if q.Multiple {
		sb.WriteString("<i>Select all that apply.</i>\n")
	}
	sb.WriteString("\n")

	for i, opt := range q.Options {
		mark := "▫️"
		if containsInt(selected, i) {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %d. %s\n", mark, i+1, esc(opt.Text))
	}

	return sb.String()
}

func sectionsText(overview []entities.SectionOverview) string {
	if len(overview) == 0 {
		return msgQuizUnavailable
	}

	var sb strings.Builder
	sb.WriteString("<b>Sections</b>\n\n")
	for i, sec := range overview {
		status := "not started"
		switch {
		case sec.Completed:
			status = fmt.Sprintf("✅ passed, best %.2f%%", sec.BestPercentage)
		case sec.Attempts > 0:
			status = fmt.Sprintf("best %.2f%% in %d attempts", sec.BestPercentage, sec.Attempts)
		}
		fmt.Fprintf(&sb, "%d. %s (%d questions): %s\n", i+1, esc(sec.Name), sec.Questions, status)
	}
	return sb.String()
}

func scoreText(outcome *service.SubmitOutcome) string {
	r := outcome.Report

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Score: %d/%d (%.2f%%)</b>\n", r.Score, r.Total, r.Percentage)
	fmt.Fprintf(&sb, "Time: %s\n", formatRemaining(outcome.TimeTaken))

	if len(r.PerSection) > 1 {
		sb.WriteString("\n")
		for _, name := range sortedKeys(r.PerSection) {
			sc := r.PerSection[name]
			fmt.Fprintf(&sb, "%s: %d/%d (%.2f%%)\n", esc(name), sc.Correct, sc.Total, sc.Percentage)
		}
	}

	var wrong []entities.QuestionResult
	for _, res := range r.Results {
		if !res.IsCorrect {
			wrong = append(wrong, res)
		}
	}
	if len(wrong) > 0 {
		sb.WriteString("\n<b>Review</b>\n")
		for _, res := range wrong {
			fmt.Fprintf(&sb, "\n%d. %s\n", res.ID, esc(res.Question))
			fmt.Fprintf(&sb, "Your answer: %s\n", esc(answerList(res.UserAnswers)))
			fmt.Fprintf(&sb, "Correct: %s\n", esc(answerList(res.CorrectAnswers)))
		}
	}

	return sb.String()
}

func resultsText(results []*entities.QuizResult) string {
	if len(results) == 0 {
		return msgNoResults
	}

	var sb strings.Builder
	sb.WriteString("<b>Latest results</b>\n\n")
	for _, r := range results {
		scope := "whole bank"
		if r.Section != "" {
			scope = r.Section
		}
		fmt.Fprintf(&sb, "%s · %s: %d/%d (%.2f%%) in %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			esc(scope),
			r.Score, r.Total, r.Percentage,
			formatRemaining(r.TimeTaken),
		)
	}
	return sb.String()
}

func answerList(answers []string) string {
	if len(answers) == 0 {
		return "—"
	}
	return strings.Join(answers, "; ")
}

// formatRemaining renders d as mm:ss, clamping negatives to zero.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
