package entities

import "time"

// DefaultPassPercentage is the score a single-section quiz needs to complete the section.
const DefaultPassPercentage = 70.0

// SectionProgress tracks one user's work on one section of a bank.
type SectionProgress struct {
	Username       string
	Bank           string
	Section        string
	Attempts       int        // scored attempts that included the section
	BestPercentage float64    // best per-section percentage so far
	Completed      bool       // set once a single-section quiz reached the pass mark
	CompletedAt    *time.Time // nullable
	UpdatedAt      time.Time
}

// NewSectionProgress creates an empty progress record.
func NewSectionProgress(username, bank, section string) *SectionProgress {
	return &SectionProgress{
		Username: username,
		Bank:     bank,
		Section:  section,
	}
}

// Record folds one attempt's section score into the progress.
// dedicated is true when the attempt was a single-section quiz on this section.
// A non-positive passMark means DefaultPassPercentage.
func (p *SectionProgress) Record(score SectionScore, dedicated bool, passMark float64, at time.Time) {
	if passMark <= 0 {
		passMark = DefaultPassPercentage
	}
	p.Attempts++
	if score.Percentage > p.BestPercentage {
		p.BestPercentage = score.Percentage
	}
	if dedicated && !p.Completed && score.Total > 0 && score.Percentage >= passMark {
		p.Completed = true
		p.CompletedAt = &at
	}
	p.UpdatedAt = at
}

// SectionOverview is a section of the current bank with the caller's progress on it.
type SectionOverview struct {
	Name           string  `json:"name"`
	Questions      int     `json:"questions"`
	Attempts       int     `json:"attempts"`
	BestPercentage float64 `json:"best_percentage"`
	Completed      bool    `json:"completed"`
}
