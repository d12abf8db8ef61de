package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/infra/postgres"
)

// ResultRepository provides access to submitted quiz results in the database.
type ResultRepository struct {
	db postgres.DBTX
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(db postgres.DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save inserts a quiz result and returns its ID.
func (r *ResultRepository) Save(ctx context.Context, result *entities.QuizResult) (int64, error) {
	query := `
		INSERT INTO quiz_results (
			session_id, username, bank, section,
			score, total, percentage, time_taken_seconds, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(
		ctx,
		query,
		result.SessionID,
		result.Username,
		result.Bank,
		result.Section,
		result.Score,
		result.Total,
		result.Percentage,
		int64(result.TimeTaken/time.Second),
		result.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save quiz result: %w", err)
	}

	return id, nil
}

// ListByUsername returns the user's most recent results, newest first.
func (r *ResultRepository) ListByUsername(ctx context.Context, username string, limit int) ([]*entities.QuizResult, error) {
	query := `
		SELECT id, session_id, username, bank, section,
		       score, total, percentage, time_taken_seconds, created_at
		FROM quiz_results
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	defer rows.Close()

	var results []*entities.QuizResult
	for rows.Next() {
		var (
			res     entities.QuizResult
			seconds int64
		)
		err = rows.Scan(
			&res.ID,
			&res.SessionID,
			&res.Username,
			&res.Bank,
			&res.Section,
			&res.Score,
			&res.Total,
			&res.Percentage,
			&seconds,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		res.TimeTaken = time.Duration(seconds) * time.Second
		results = append(results, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}

	return results, nil
}
