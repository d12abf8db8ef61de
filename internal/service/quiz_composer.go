package service

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/metrics"
)

// weightTolerance is how far supplied weights may sum away from 1.0.
const weightTolerance = 0.01

// QuizComposer samples a quiz from a parsed bank.
type QuizComposer struct {
	rnd     Randomizer
	decoder *QuestionDecoder
	logger  *zap.Logger
}

// NewQuizComposer creates a composer. The same randomizer drives block sampling,
// option shuffling and the final question order.
func NewQuizComposer(rnd Randomizer, logger *zap.Logger) *QuizComposer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizComposer{
		rnd:     rnd,
		decoder: NewQuestionDecoder(rnd, logger),
		logger:  logger,
	}
}

// Compose selects up to targetCount questions across all sections of the bank,
// honoring weights when they are usable and falling back to equal shares otherwise.
// The result may be shorter than targetCount when sections run out of blocks or
// blocks fail to decode. An empty bank gives an empty quiz.
func (c *QuizComposer) Compose(bank *entities.Bank, targetCount int, weights entities.DistributionTarget) []entities.Question {
	if bank.IsEmpty() || targetCount <= 0 {
		return nil
	}

	targets := SectionTargets(bank.Sections, targetCount, weights)

	var selected []entities.RawQuestionBlock
	for i, sec := range bank.Sections {
		selected = append(selected, c.draw(bank, sec, targets[i])...)
	}

	return c.finalize(selected)
}

// ComposeSection selects up to targetCount questions from one section only.
// An unknown section gives an empty quiz.
func (c *QuizComposer) ComposeSection(bank *entities.Bank, section string, targetCount int) []entities.Question {
	if bank.IsEmpty() || targetCount <= 0 {
		return nil
	}

	sec, ok := bank.Section(section)
	if !ok {
		return nil
	}

	return c.finalize(c.draw(bank, *sec, targetCount))
}

// draw picks min(n, available) blocks of the section without replacement.
func (c *QuizComposer) draw(bank *entities.Bank, sec entities.Section, n int) []entities.RawQuestionBlock {
	picks := c.rnd.Sample(len(sec.BlockIndices), n)

	out := make([]entities.RawQuestionBlock, 0, len(picks))
	for _, p := range picks {
		out = append(out, bank.Blocks[sec.BlockIndices[p]])
	}
	return out
}

// finalize shuffles the selection, decodes it and numbers the survivors 1..N.
func (c *QuizComposer) finalize(selected []entities.RawQuestionBlock) []entities.Question {
	c.rnd.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	questions := make([]entities.Question, 0, len(selected))
	for _, block := range selected {
		q, err := c.decoder.Decode(block)
		if err != nil {
			metrics.DecodeFailures.Inc()
			c.logger.Warn("dropping undecodable question",
				zap.Int("block", block.Index),
				zap.String("section", block.Section),
				zap.Error(err),
			)
			continue
		}

		q.ID = len(questions) + 1
		questions = append(questions, *q)
	}

	return questions
}

// SectionTargets returns how many questions each section should contribute so that
// the targets sum to targetCount.
func SectionTargets(sections []entities.Section, targetCount int, weights entities.DistributionTarget) []int {
	targets := make([]int, len(sections))
	if len(sections) == 0 || targetCount <= 0 {
		return targets
	}

	w := ResolveWeights(sections, weights)

	sum := 0
	for i := range sections {
		targets[i] = int(math.Round(float64(targetCount) * w[i]))
		sum += targets[i]
	}

	byWeightDesc := orderByWeight(w, true)
	for sum < targetCount {
		for _, i := range byWeightDesc {
			if sum >= targetCount {
				break
			}
			targets[i]++
			sum++
		}
	}

	byWeightAsc := orderByWeight(w, false)
	for sum > targetCount {
		removed := false
		for _, i := range byWeightAsc {
			if sum <= targetCount {
				break
			}
			if targets[i] > 0 {
				targets[i]--
				sum--
				removed = true
			}
		}
		if !removed {
			break
		}
	}

	return targets
}

// ResolveWeights returns one weight per section, in section order. Supplied weights
// are used only when they name every section, are non-negative and sum to 1 within
// tolerance; otherwise every section gets an equal share.
func ResolveWeights(sections []entities.Section, weights entities.DistributionTarget) []float64 {
	n := len(sections)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	if usableWeights(sections, weights) {
		for i, s := range sections {
			out[i] = weights[s.Name]
		}
		return out
	}

	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}

func usableWeights(sections []entities.Section, weights entities.DistributionTarget) bool {
	if len(weights) == 0 || len(weights) != len(sections) {
		return false
	}

	total := 0.0
	for _, s := range sections {
		w, ok := weights[s.Name]
		if !ok || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return false
		}
		total += w
	}

	return math.Abs(total-1) <= weightTolerance
}

// orderByWeight returns section indices sorted by weight; ties keep section order.
func orderByWeight(w []float64, desc bool) []int {
	idx := make([]int, len(w))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if desc {
			return w[idx[a]] > w[idx[b]]
		}
		return w[idx[a]] < w[idx[b]]
	})
	return idx
}
