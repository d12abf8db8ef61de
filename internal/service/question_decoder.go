package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

var (
	ErrMissingStem    = errors.New("question has no text")
	ErrMissingOptions = errors.New("question has no options")
	ErrMissingAnswer  = errors.New("question has no answer key")
)

var (
	questionLinePattern = regexp.MustCompile(`^QUESTION\s+(\d+)\.\s*(.*)$`)
	optionLinePattern   = regexp.MustCompile(`^(\d+)\.\s*(.*)$`)

	// Options that refer to other options by position or number. Any match keeps the
	// original order. "N and M" also matches unrelated numeric ranges such as "between 1 and 100".
	crossReferencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bboth\b.+\band\b`),
		regexp.MustCompile(`\b\d+\s+and\s+\d+\b`),
	}

	// Catch-all options are always rendered after the regular ones.
	catchAllPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(all|none)\s+of\s+the\s+(above|options|choices)\b`),
		regexp.MustCompile(`\b(all|none)\s+of\s+these\b`),
		regexp.MustCompile(`\b(all|none)\s+the\s+above\b`),
		regexp.MustCompile(`\bnone\s+of\s+them\b`),
		regexp.MustCompile(`\b(both|neither)\s+of\s+the\s+above\b`),
	}
)

// QuestionDecoder turns raw question blocks into structured questions.
type QuestionDecoder struct {
	rnd    Randomizer
	logger *zap.Logger
}

// NewQuestionDecoder creates a decoder that shuffles options with rnd.
func NewQuestionDecoder(rnd Randomizer, logger *zap.Logger) *QuestionDecoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionDecoder{
		rnd:    rnd,
		logger: logger,
	}
}

// decodeState is the part of the block being read.
type decodeState int

const (
	stateStem decodeState = iota
	stateOptions
	stateDone
)

// Decode parses one block. It fails when the block has no stem, no options or no
// ANSWER line; the caller drops such blocks. Answer labels that match no option are
// dropped, which may leave a question without correct answers.
func (d *QuestionDecoder) Decode(block entities.RawQuestionBlock) (*entities.Question, error) {
	var (
		number    int
		stem      []string
		options   []entities.Option
		answer    string
		hasAnswer bool
		state     = stateStem
	)

	for _, line := range strings.Split(block.Text, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case state == stateDone:
			// Text after the answer key is not part of the question.

		case strings.HasPrefix(trimmed, markerQuestion) && len(stem) == 0:
			if m := questionLinePattern.FindStringSubmatch(trimmed); m != nil {
				number, _ = strconv.Atoi(m[1])
				stem = append(stem, m[2])
			} else {
				stem = append(stem, strings.TrimSpace(trimmed[len(markerQuestion):]))
			}

		case strings.HasPrefix(trimmed, markerOptions):
			state = stateOptions
			if rest := strings.TrimSpace(trimmed[len(markerOptions):]); rest != "" {
				options = appendOption(options, rest)
			}

		case strings.HasPrefix(trimmed, markerAnswer):
			answer = strings.TrimSpace(trimmed[len(markerAnswer):])
			hasAnswer = true
			state = stateDone

		case state == stateOptions:
			if trimmed != "" {
				options = appendOption(options, trimmed)
			}

		default:
			stem = append(stem, strings.TrimRight(line, " \t\r"))
		}
	}

	text := strings.TrimSpace(strings.Join(stem, "\n"))
	if text == "" {
		return nil, fmt.Errorf("block %d: %w", block.Index, ErrMissingStem)
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("block %d: %w", block.Index, ErrMissingOptions)
	}
	if !hasAnswer || answer == "" {
		return nil, fmt.Errorf("block %d: %w", block.Index, ErrMissingAnswer)
	}

	correct := d.resolveAnswers(block, options, answer)

	return &entities.Question{
		Number:         number,
		Section:        block.Section,
		Stem:           text,
		Options:        d.arrangeOptions(options),
		CorrectAnswers: correct,
		Multiple:       len(correct) > 1,
	}, nil
}

// appendOption adds a "<label>. <text>" option, or continues the previous option's
// text when the line carries no label.
func appendOption(options []entities.Option, line string) []entities.Option {
	if m := optionLinePattern.FindStringSubmatch(line); m != nil {
		return append(options, entities.Option{
			Label: m[1],
			Text:  strings.TrimSpace(m[2]),
		})
	}

	if len(options) == 0 {
		return options
	}
	last := &options[len(options)-1]
	last.Text = strings.TrimSpace(last.Text + " " + line)
	return options
}

// resolveAnswers maps answer-key labels to option texts. The first option with a
// label wins; unknown labels are dropped.
func (d *QuestionDecoder) resolveAnswers(block entities.RawQuestionBlock, options []entities.Option, answer string) []string {
	byLabel := make(map[string]string, len(options))
	for _, o := range options {
		if _, ok := byLabel[o.Label]; !ok {
			byLabel[o.Label] = o.Text
		}
	}

	labels := strings.FieldsFunc(answer, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})

	seen := make(map[string]struct{}, len(labels))
	correct := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSuffix(label, ".")
		text, ok := byLabel[label]
		if !ok {
			d.logger.Debug("answer label matches no option",
				zap.Int("block", block.Index),
				zap.String("label", label),
			)
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		correct = append(correct, text)
	}

	return correct
}

// arrangeOptions applies the shuffle policy. Options that cross-reference other
// options keep the original order. Otherwise regular options are permuted and
// catch-all options follow in their original relative order.
func (d *QuestionDecoder) arrangeOptions(options []entities.Option) []entities.Option {
	out := make([]entities.Option, 0, len(options))

	if hasCrossReference(options) {
		return append(out, options...)
	}

	var special []entities.Option
	for _, o := range options {
		if isCatchAll(o.Text) {
			special = append(special, o)
			continue
		}
		out = append(out, o)
	}

	d.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	return append(out, special...)
}

func hasCrossReference(options []entities.Option) bool {
	for _, o := range options {
		text := strings.ToLower(o.Text)
		for _, p := range crossReferencePatterns {
			if p.MatchString(text) {
				return true
			}
		}
	}
	return false
}

func isCatchAll(text string) bool {
	text = strings.ToLower(text)
	for _, p := range catchAllPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
