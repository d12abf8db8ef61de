package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/infra/postgres"
)

// SubmissionRepository persists a scored attempt and the section progress it produces
// in one transaction.
type SubmissionRepository struct {
	tr *postgres.Transactor
}

func NewSubmissionRepository(tr *postgres.Transactor) *SubmissionRepository {
	return &SubmissionRepository{tr: tr}
}

// SaveSubmission stores the result and folds every section score of the report into
// the user's progress. The attempt's own section, if any, can be completed by it.
func (r *SubmissionRepository) SaveSubmission(
	ctx context.Context,
	result *entities.QuizResult,
	report *entities.ScoreReport,
	passMark float64,
) error {
	return r.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		resultRepo := NewResultRepository(tx)
		progressRepo := NewProgressRepository(tx)

		id, err := resultRepo.Save(ctx, result)
		if err != nil {
			return err
		}
		result.ID = id

		sections := make([]string, 0, len(report.PerSection))
		for name := range report.PerSection {
			sections = append(sections, name)
		}
		sort.Strings(sections) // stable lock order

		for _, name := range sections {
			p, err := progressRepo.GetForUpdate(ctx, result.Username, result.Bank, name)
			if errors.Is(err, ErrProgressNotFound) {
				p = entities.NewSectionProgress(result.Username, result.Bank, name)
			} else if err != nil {
				return err
			}

			p.Record(report.PerSection[name], name == result.Section, passMark, result.CreatedAt)
			if err := progressRepo.Upsert(ctx, p); err != nil {
				return err
			}
		}

		return nil
	})
}
