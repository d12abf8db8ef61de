package entities

import (
	"testing"
	"time"
)

func TestSectionProgress_Record(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		scores        []SectionScore
		dedicated     bool
		wantBest      float64
		wantCompleted bool
	}{
		{
			name:          "dedicated pass completes",
			scores:        []SectionScore{{Correct: 7, Total: 10, Percentage: 70}},
			dedicated:     true,
			wantBest:      70,
			wantCompleted: true,
		},
		{
			name:      "dedicated below pass mark",
			scores:    []SectionScore{{Correct: 6, Total: 10, Percentage: 60}},
			dedicated: true,
			wantBest:  60,
		},
		{
			name:     "mixed quiz never completes",
			scores:   []SectionScore{{Correct: 3, Total: 3, Percentage: 100}},
			wantBest: 100,
		},
		{
			name:          "best is kept across attempts",
			scores:        []SectionScore{{Correct: 9, Total: 10, Percentage: 90}, {Correct: 2, Total: 10, Percentage: 20}},
			dedicated:     true,
			wantBest:      90,
			wantCompleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSectionProgress("alice", "bank", "S")
			for _, s := range tt.scores {
				p.Record(s, tt.dedicated, 0, at)
			}

			if p.Attempts != len(tt.scores) {
				t.Errorf("attempts = %d, want %d", p.Attempts, len(tt.scores))
			}
			if p.BestPercentage != tt.wantBest {
				t.Errorf("best = %v, want %v", p.BestPercentage, tt.wantBest)
			}
			if p.Completed != tt.wantCompleted {
				t.Errorf("completed = %v, want %v", p.Completed, tt.wantCompleted)
			}
			if tt.wantCompleted && (p.CompletedAt == nil || !p.CompletedAt.Equal(at)) {
				t.Errorf("completed at = %v", p.CompletedAt)
			}
		})
	}
}
