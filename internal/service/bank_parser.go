package service

import (
	"regexp"
	"strings"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

// Bank syntax markers.
const (
	markerSection  = "SECTION:"
	markerQuestion = "QUESTION "
	markerOptions  = "OPTIONS:"
	markerAnswer   = "ANSWER:"
)

var (
	sectionSplitPattern  = regexp.MustCompile(`SECTION:`)
	questionStartPattern = regexp.MustCompile(`QUESTION\s+\d+\.`)
	inlineOptionPattern  = regexp.MustCompile(`(^|\s)(\d+)\.\s+`)
)

// ParseBank splits question-bank text into sections and raw question blocks.
// Malformed text yields fewer blocks, never an error. When the line scan finds no
// closed blocks, a marker-based split is tried for text whose line breaks were lost.
func ParseBank(text string) *entities.Bank {
	bank := scanBank(text)
	if len(bank.Blocks) > 0 {
		return bank
	}

	return splitBank(text)
}

// bankBuilder accumulates sections and blocks in parse order.
type bankBuilder struct {
	bank    entities.Bank
	current int // index of the open section, -1 when none

	block  strings.Builder
	inside bool
}

func newBankBuilder() *bankBuilder {
	return &bankBuilder{current: -1}
}

// openSection starts a new section, flushing the in-progress block into the previous one.
// A repeated section name reopens the earlier section so names stay unique.
func (b *bankBuilder) openSection(name string) {
	b.flushBlock()
	if name != "" {
		for i := range b.bank.Sections {
			if b.bank.Sections[i].Name == name {
				b.current = i
				return
			}
		}
	}
	b.openSectionKeepBlock(name)
}

func (b *bankBuilder) openBlock(line string) {
	b.flushBlock()
	b.block.WriteString(line)
	b.inside = true
}

func (b *bankBuilder) appendLine(line string) {
	b.block.WriteByte('\n')
	b.block.WriteString(line)
}

// flushBlock closes the open block, if any, and files it under the current section.
// Blocks that appear before any section header go to DefaultSectionName.
func (b *bankBuilder) flushBlock() {
	if !b.inside {
		return
	}
	b.inside = false

	text := strings.TrimSpace(b.block.String())
	b.block.Reset()
	if text == "" {
		return
	}

	if b.current < 0 || b.bank.Sections[b.current].Name == "" {
		b.useDefaultSection()
	}

	sec := &b.bank.Sections[b.current]
	idx := len(b.bank.Blocks)
	b.bank.Blocks = append(b.bank.Blocks, entities.RawQuestionBlock{
		Index:   idx,
		Section: sec.Name,
		Text:    text,
	})
	sec.BlockIndices = append(sec.BlockIndices, idx)
	sec.Count++
}

func (b *bankBuilder) useDefaultSection() {
	for i := range b.bank.Sections {
		if b.bank.Sections[i].Name == entities.DefaultSectionName {
			b.current = i
			return
		}
	}
	b.openSectionKeepBlock(entities.DefaultSectionName)
}

// openSectionKeepBlock adds a section without touching the open block.
func (b *bankBuilder) openSectionKeepBlock(name string) {
	b.bank.Sections = append(b.bank.Sections, entities.Section{
		Name:    name,
		Ordinal: len(b.bank.Sections),
	})
	b.current = len(b.bank.Sections) - 1
}

// finish discards a block still open at end of input, since a block only ends on
// its ANSWER line, and drops unnamed sections.
func (b *bankBuilder) finish() *entities.Bank {
	b.inside = false
	b.block.Reset()

	sections := b.bank.Sections[:0]
	for _, s := range b.bank.Sections {
		if s.Name == "" {
			continue
		}
		s.Ordinal = len(sections)
		sections = append(sections, s)
	}
	b.bank.Sections = sections

	return &b.bank
}

// scanBank is the primary line classifier.
func scanBank(text string) *entities.Bank {
	b := newBankBuilder()
	if strings.TrimSpace(text) == "" {
		return b.finish()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, markerSection):
			b.openSection(strings.TrimSpace(trimmed[len(markerSection):]))

		case strings.HasPrefix(trimmed, markerQuestion):
			b.openBlock(line)

		case b.inside:
			b.appendLine(line)
			if strings.HasPrefix(trimmed, markerAnswer) {
				b.flushBlock()
			}
		}
	}

	return b.finish()
}

// splitBank recovers blocks from text whose line structure is broken.
// Only candidates carrying both an OPTIONS and an ANSWER marker are kept.
func splitBank(text string) *entities.Bank {
	b := newBankBuilder()
	if strings.TrimSpace(text) == "" {
		return b.finish()
	}

	parts := sectionSplitPattern.Split(text, -1)
	for i, part := range parts {
		starts := questionStartPattern.FindAllStringIndex(part, -1)

		if i > 0 {
			head := part
			if len(starts) > 0 {
				head = part[:starts[0][0]]
			}
			b.openSection(firstLine(head))
		}

		for j, loc := range starts {
			end := len(part)
			if j+1 < len(starts) {
				end = starts[j+1][0]
			}

			candidate := part[loc[0]:end]
			if !strings.Contains(candidate, markerOptions) || !strings.Contains(candidate, markerAnswer) {
				continue
			}

			b.openBlock(normalizeBlock(candidate))
			b.flushBlock()
		}
	}

	return b.finish()
}

// normalizeBlock restores the line layout the decoder expects:
// markers and option labels each start a new line.
func normalizeBlock(candidate string) string {
	optIdx := strings.Index(candidate, markerOptions)
	ansIdx := strings.LastIndex(candidate, markerAnswer)
	if optIdx < 0 || ansIdx < optIdx {
		return strings.TrimSpace(candidate)
	}

	stem := strings.TrimSpace(candidate[:optIdx])
	options := candidate[optIdx+len(markerOptions) : ansIdx]
	answer := strings.TrimSpace(candidate[ansIdx+len(markerAnswer):])
	if nl := strings.IndexByte(answer, '\n'); nl >= 0 {
		answer = answer[:nl]
	}

	options = inlineOptionPattern.ReplaceAllString(options, "\n$2. ")

	var sb strings.Builder
	sb.WriteString(stem)
	sb.WriteString("\n")
	sb.WriteString(markerOptions)
	for _, line := range strings.Split(options, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sb.WriteString("\n")
			sb.WriteString(line)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(markerAnswer)
	sb.WriteString(" ")
	sb.WriteString(strings.TrimSpace(answer))

	return sb.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
