package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quizbank/internal/infra/postgres/repository"
)

// ResetService wipes a user's recorded history.
type ResetService struct {
	tr Transactor
}

func NewResetService(
	tr Transactor,
) *ResetService {
	return &ResetService{
		tr: tr,
	}
}

// ResetUser deletes the user's results and section progress in one transaction.
func (s *ResetService) ResetUser(ctx context.Context, username string) error {
	return s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return repository.NewResetRepository(tx).ResetUser(ctx, username)
	})
}
