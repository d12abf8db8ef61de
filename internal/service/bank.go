package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/metrics"
)

// BankService fetches files from the bank source. Every fetch failure degrades to
// empty text so callers see an empty bank instead of an error.
type BankService struct {
	source  BankSource
	timeout time.Duration
	logger  *zap.Logger
}

// NewBankService creates a BankService. A zero timeout means no per-fetch limit.
func NewBankService(source BankSource, timeout time.Duration, logger *zap.Logger) *BankService {
	return &BankService{
		source:  source,
		timeout: timeout,
		logger:  logger,
	}
}

// FetchText returns the named file's content, or "" when it cannot be fetched.
func (s *BankService) FetchText(ctx context.Context, name string) string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.source.Fetch(ctx, name)
	if err != nil {
		metrics.BankFetchErrors.WithLabelValues(s.source.Name()).Inc()
		s.logger.Error("failed to fetch bank file",
			zap.String("source", s.source.Name()),
			zap.String("file", name),
			zap.Error(err),
		)
		return ""
	}

	return text
}

// Load fetches and parses the named question bank.
func (s *BankService) Load(ctx context.Context, name string) *entities.Bank {
	bank := ParseBank(s.FetchText(ctx, name))
	s.logger.Debug("bank loaded",
		zap.String("bank", name),
		zap.Int("sections", len(bank.Sections)),
		zap.Int("blocks", len(bank.Blocks)),
	)
	return bank
}
