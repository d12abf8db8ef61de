package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/infra/postgres"
)

var ErrProgressNotFound = errors.New("progress not found")

// ProgressRepository stores per-user section progress.
type ProgressRepository struct {
	db postgres.DBTX
}

func NewProgressRepository(db postgres.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetForUpdate retrieves one progress record and locks its row until the transaction ends.
// Returns ErrProgressNotFound if the record doesn't exist.
func (r *ProgressRepository) GetForUpdate(ctx context.Context, username, bank, section string) (*entities.SectionProgress, error) {
	query := `
		SELECT username, bank, section, attempts, best_percentage,
		       completed, completed_at, updated_at
		FROM section_progress
		WHERE username = $1 AND bank = $2 AND section = $3
		FOR UPDATE
	`

	var p entities.SectionProgress
	err := r.db.QueryRow(ctx, query, username, bank, section).Scan(
		&p.Username,
		&p.Bank,
		&p.Section,
		&p.Attempts,
		&p.BestPercentage,
		&p.Completed,
		&p.CompletedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}

	return &p, nil
}

// Upsert creates or updates a progress record.
func (r *ProgressRepository) Upsert(ctx context.Context, p *entities.SectionProgress) error {
	query := `
		INSERT INTO section_progress (
			username, bank, section, attempts, best_percentage,
			completed, completed_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (username, bank, section)
		DO UPDATE SET
			attempts = excluded.attempts,
			best_percentage = excluded.best_percentage,
			completed = excluded.completed,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(
		ctx, query,
		p.Username,
		p.Bank,
		p.Section,
		p.Attempts,
		p.BestPercentage,
		p.Completed,
		p.CompletedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}

	return nil
}

// ListByUser returns every progress record the user has for a bank.
func (r *ProgressRepository) ListByUser(ctx context.Context, username, bank string) ([]*entities.SectionProgress, error) {
	query := `
		SELECT username, bank, section, attempts, best_percentage,
		       completed, completed_at, updated_at
		FROM section_progress
		WHERE username = $1 AND bank = $2
		ORDER BY section
	`

	rows, err := r.db.Query(ctx, query, username, bank)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []*entities.SectionProgress
	for rows.Next() {
		var p entities.SectionProgress
		err = rows.Scan(
			&p.Username,
			&p.Bank,
			&p.Section,
			&p.Attempts,
			&p.BestPercentage,
			&p.Completed,
			&p.CompletedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	return out, nil
}
