package repository

import (
	"context"
	"fmt"

	"github.com/aliskhannn/quizbank/internal/infra/postgres"
)

type ResetRepository struct {
	db postgres.DBTX
}

func NewResetRepository(db postgres.DBTX) *ResetRepository {
	return &ResetRepository{db: db}
}

// ResetUser forgets the user's results and section progress.
func (s *ResetRepository) ResetUser(ctx context.Context, username string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM quiz_results WHERE username = $1`, username); err != nil {
		return fmt.Errorf("delete quiz_results: %w", err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM section_progress WHERE username = $1`, username); err != nil {
		return fmt.Errorf("delete section_progress: %w", err)
	}

	return nil
}
