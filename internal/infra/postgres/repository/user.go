package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quizbank/internal/infra/postgres"
)

// CredentialRepository records which single-use credentials have been consumed.
type CredentialRepository struct {
	db postgres.DBTX
}

// NewCredentialRepository creates a new CredentialRepository.
func NewCredentialRepository(db postgres.DBTX) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Consume marks the credential as used. It returns false when it had already been used.
func (r *CredentialRepository) Consume(ctx context.Context, username string, at time.Time) (bool, error) {
	query := `
		INSERT INTO credential_uses (username, used_at)
		VALUES ($1, $2)
		ON CONFLICT (username) DO NOTHING
		RETURNING username
	`

	var got string
	err := r.db.QueryRow(ctx, query, username, at).Scan(&got)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("consume credential: %w", err)
	}

	return true, nil
}
