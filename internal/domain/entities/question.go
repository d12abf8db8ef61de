package entities

// Option is one answer choice of a decoded question.
type Option struct {
	Label string `json:"-"`    // numeral from the bank, used to resolve the answer key
	Text  string `json:"text"` // display text
}

// Question is a decoded question with its answer key.
type Question struct {
	ID             int      // 1-based position in a composed quiz
	Number         int      // number from the QUESTION line
	Section        string   // section the block was drawn from
	Stem           string   // question text, line breaks preserved
	Options        []Option // options in presentation order
	CorrectAnswers []string // texts of the correct options
	Multiple       bool     // true when more than one option is correct
}

// PublicQuestion is the projection of a Question that is safe to send to a quiz taker.
type PublicQuestion struct {
	ID       int      `json:"id"`
	Section  string   `json:"section"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
	Multiple bool     `json:"multiple"`
}

// Public strips the answer key.
func (q *Question) Public() PublicQuestion {
	opts := make([]Option, len(q.Options))
	copy(opts, q.Options)
	return PublicQuestion{
		ID:       q.ID,
		Section:  q.Section,
		Question: q.Stem,
		Options:  opts,
		Multiple: q.Multiple,
	}
}

// PublicQuestions projects a composition for delivery.
func PublicQuestions(qs []Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(qs))
	for i := range qs {
		out = append(out, qs[i].Public())
	}
	return out
}
