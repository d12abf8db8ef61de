package entities

// DefaultSectionName names the section that owns questions appearing before any SECTION header.
const DefaultSectionName = "General"

// Section is a named group of question blocks inside one parsed bank.
type Section struct {
	Name         string // section name, unique within a bank
	Ordinal      int    // 0-based position in the bank
	Count        int    // number of blocks owned by the section
	BlockIndices []int  // indices into Bank.Blocks
}

// RawQuestionBlock is one unparsed QUESTION ... ANSWER: unit.
type RawQuestionBlock struct {
	Index   int    // position in parse order
	Section string // name of the owning section
	Text    string // block text, QUESTION line through ANSWER line
}

// Bank is the result of parsing one question-bank text.
type Bank struct {
	Sections []Section
	Blocks   []RawQuestionBlock
}

// IsEmpty reports whether the bank holds no question blocks.
func (b *Bank) IsEmpty() bool {
	return b == nil || len(b.Blocks) == 0
}

// Section returns the section with the given name.
func (b *Bank) Section(name string) (*Section, bool) {
	if b == nil {
		return nil, false
	}
	for i := range b.Sections {
		if b.Sections[i].Name == name {
			return &b.Sections[i], true
		}
	}
	return nil, false
}

// SectionNames returns section names in bank order.
func (b *Bank) SectionNames() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.Sections))
	for _, s := range b.Sections {
		names = append(names, s.Name)
	}
	return names
}

// DistributionTarget maps a section name to its share of a composed quiz.
type DistributionTarget map[string]float64
