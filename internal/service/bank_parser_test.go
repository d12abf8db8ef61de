package service

import (
	"strings"
	"testing"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

func TestParseBank_Empty(t *testing.T) {
	for _, text := range []string{"", "   \n\t\n"} {
		bank := ParseBank(text)
		if !bank.IsEmpty() || len(bank.Sections) != 0 || len(bank.Blocks) != 0 {
			t.Fatalf("ParseBank(%q) = %d sections, %d blocks, want none", text, len(bank.Sections), len(bank.Blocks))
		}
	}
}

func TestParseBank_SectionsAndBlocks(t *testing.T) {
	bank := ParseBank(sampleBank)

	wantSections := []struct {
		name  string
		count int
	}{
		{"Basics", 2},
		{"Advanced", 1},
		{"Empty", 0},
	}
	if len(bank.Sections) != len(wantSections) {
		t.Fatalf("got %d sections, want %d: %+v", len(bank.Sections), len(wantSections), bank.Sections)
	}
	for i, want := range wantSections {
		got := bank.Sections[i]
		if got.Name != want.name || got.Count != want.count || len(got.BlockIndices) != want.count {
			t.Errorf("section %d = %q count %d, want %q count %d", i, got.Name, got.Count, want.name, want.count)
		}
		if got.Ordinal != i {
			t.Errorf("section %q ordinal = %d, want %d", got.Name, got.Ordinal, i)
		}
	}

	if len(bank.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(bank.Blocks))
	}
	first := bank.Blocks[0]
	if !strings.HasPrefix(first.Text, "QUESTION 1.") || !strings.HasSuffix(first.Text, "ANSWER: 2") {
		t.Errorf("block 0 text = %q", first.Text)
	}
	if bank.Blocks[2].Section != "Advanced" {
		t.Errorf("block 2 section = %q, want Advanced", bank.Blocks[2].Section)
	}
}

func TestParseBank_BlocksBeforeSectionGoToDefault(t *testing.T) {
	text := "QUESTION 1. Orphan?\nOPTIONS:\n1. yes\n2. no\nANSWER: 1\nSECTION: Named\nQUESTION 2. Owned?\nOPTIONS:\n1. yes\nANSWER: 1\n"
	bank := ParseBank(text)

	if len(bank.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(bank.Sections))
	}
	if bank.Sections[0].Name != entities.DefaultSectionName || bank.Sections[0].Count != 1 {
		t.Errorf("first section = %+v, want %q with 1 block", bank.Sections[0], entities.DefaultSectionName)
	}
	if bank.Sections[1].Name != "Named" || bank.Sections[1].Count != 1 {
		t.Errorf("second section = %+v", bank.Sections[1])
	}
}

func TestParseBank_RepeatedSectionMerges(t *testing.T) {
	text := "SECTION: A\nQUESTION 1. x\nOPTIONS:\n1. a\nANSWER: 1\nSECTION: B\nQUESTION 2. y\nOPTIONS:\n1. b\nANSWER: 1\nSECTION: A\nQUESTION 3. z\nOPTIONS:\n1. c\nANSWER: 1\n"
	bank := ParseBank(text)

	if len(bank.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(bank.Sections))
	}
	a, ok := bank.Section("A")
	if !ok || a.Count != 2 {
		t.Fatalf("section A = %+v, want 2 blocks", a)
	}
}

func TestParseBank_UnclosedBlockAtEOF(t *testing.T) {
	text := "SECTION: S\nQUESTION 1. Kept\nOPTIONS:\n1. a\nANSWER: 1\nQUESTION 2. Dangling\nOPTIONS:\n1. a\n"
	bank := ParseBank(text)

	if len(bank.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(bank.Blocks))
	}
	if !strings.Contains(bank.Blocks[0].Text, "Kept") {
		t.Errorf("kept block = %q", bank.Blocks[0].Text)
	}
	s, ok := bank.Section("S")
	if !ok || s.Count != 1 {
		t.Errorf("section S = %+v, want 1 block", s)
	}
}

func TestParseBank_OnlyUnclosedBlock(t *testing.T) {
	bank := ParseBank("SECTION: S\nQUESTION 1. Dangling\nOPTIONS:\n1. a\n")
	if len(bank.Blocks) != 0 {
		t.Fatalf("got %d blocks, want 0", len(bank.Blocks))
	}
}

func TestParseBank_FallbackAfterHeaderLine(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		section string
	}{
		{
			name: "header then collapsed questions",
			text: "SECTION: Networks\nQUESTION 1. Which layer routes? OPTIONS: 1. Network 2. Session ANSWER: 1 " +
				"QUESTION 2. Which layer is lowest? OPTIONS: 1. Physical 2. Transport ANSWER: 1",
			section: "Networks",
		},
		{
			name: "collapsed questions without header",
			text: "QUESTION 1. Which layer routes? OPTIONS: 1. Network 2. Session ANSWER: 1 " +
				"QUESTION 2. Which layer is lowest? OPTIONS: 1. Physical 2. Transport ANSWER: 1",
			section: entities.DefaultSectionName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := ParseBank(tt.text)
			if len(bank.Blocks) != 2 {
				t.Fatalf("got %d blocks, want 2: %+v", len(bank.Blocks), bank.Blocks)
			}
			if s, ok := bank.Section(tt.section); !ok || s.Count != 2 {
				t.Errorf("section %q = %+v, want 2 blocks", tt.section, s)
			}

			questions := NewQuizComposer(orderedRandomizer{}, nil).Compose(bank, 10, nil)
			if len(questions) != 2 {
				t.Fatalf("composed %d questions, want 2", len(questions))
			}
			for _, q := range questions {
				if len(q.Options) != 2 || len(q.CorrectAnswers) != 1 {
					t.Errorf("question %+v", q)
				}
			}
		})
	}
}

func TestParseBank_FallbackOnCollapsedText(t *testing.T) {
	// Line breaks lost: the whole bank on one line.
	text := "SECTION: Networks QUESTION 1. Which layer routes? OPTIONS: 1. Network 2. Session 3. Physical ANSWER: 1 " +
		"QUESTION 2. Broken block without markers " +
		"SECTION: Math QUESTION 3. Pick evens OPTIONS: 1. 2 2. 3 3. 4 ANSWER: 1, 3"

	bank := ParseBank(text)

	if len(bank.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(bank.Blocks), bank.Blocks)
	}

	dec := NewQuestionDecoder(orderedRandomizer{}, nil)

	q1, err := dec.Decode(bank.Blocks[0])
	if err != nil {
		t.Fatalf("decode block 0: %v", err)
	}
	if q1.Stem != "Which layer routes?" || len(q1.Options) != 3 {
		t.Errorf("q1 = %+v", q1)
	}
	if len(q1.CorrectAnswers) != 1 || q1.CorrectAnswers[0] != "Network" {
		t.Errorf("q1 correct = %v, want [Network]", q1.CorrectAnswers)
	}

	q3, err := dec.Decode(bank.Blocks[1])
	if err != nil {
		t.Fatalf("decode block 1: %v", err)
	}
	if !q3.Multiple || len(q3.CorrectAnswers) != 2 {
		t.Errorf("q3 correct = %v, want two answers", q3.CorrectAnswers)
	}
}

func TestParseBank_NoRecoverableBlocks(t *testing.T) {
	bank := ParseBank("just some prose without any markers")
	if !bank.IsEmpty() {
		t.Fatalf("want empty bank, got %+v", bank)
	}
}
