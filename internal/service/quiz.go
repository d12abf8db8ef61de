package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/metrics"
)

const (
	maxQuestionCount    = 200 // cap on the size of a requested quiz
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

var (
	ErrNoQuestionsAvailable = errors.New("no questions available")
	ErrSectionNotFound      = errors.New("section not found")
	ErrSectionNotAllowed    = errors.New("section not allowed for this user")
	ErrSessionNotFound      = errors.New("quiz session not found")
	ErrSessionNotActive     = errors.New("quiz session is not active")
	ErrSessionExpired       = errors.New("quiz time limit exceeded")
)

// QuizConfig holds quiz composition and timing parameters.
type QuizConfig struct {
	Database       string                      // bank name passed to the source
	QuestionCount  int                         // default size of a whole-bank quiz
	SectionCount   int                         // default size of a single-section quiz
	Duration       time.Duration               // time limit per attempt
	Grace          time.Duration               // late submissions accepted within this window
	SessionTTL     time.Duration               // attempts older than this are evicted
	PassPercentage float64                     // section completion threshold
	Weights        entities.DistributionTarget // section shares of a whole-bank quiz
}

// SubmitOutcome is what a quiz taker gets back after submitting.
type SubmitOutcome struct {
	Report    *entities.ScoreReport
	TimeTaken time.Duration
}

// SectionTarget is the planned contribution of one section to a whole-bank quiz.
type SectionTarget struct {
	Section   string  `json:"section"`
	Weight    float64 `json:"weight"`
	Target    int     `json:"target"`
	Available int     `json:"available"`
}

// QuizService runs quiz attempts: compose, hand out, score and record.
type QuizService struct {
	banks       *BankService
	composer    *QuizComposer
	store       SessionStore
	submissions SubmissionRepository
	results     ResultRepository
	progress    ProgressRepository
	cfg         QuizConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewQuizService(
	banks *BankService,
	composer *QuizComposer,
	store SessionStore,
	submissions SubmissionRepository,
	results ResultRepository,
	progress ProgressRepository,
	cfg QuizConfig,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		banks:       banks,
		composer:    composer,
		store:       store,
		submissions: submissions,
		results:     results,
		progress:    progress,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// StartQuiz composes a new attempt for the user. An empty section asks for a
// whole-bank quiz; count <= 0 uses the configured default size.
func (s *QuizService) StartQuiz(ctx context.Context, user *entities.User, section string, count int) (*entities.QuizSession, error) {
	if !user.AllowsSection(section) {
		return nil, ErrSectionNotAllowed
	}

	bank := s.banks.Load(ctx, s.cfg.Database)
	if bank.IsEmpty() {
		return nil, ErrNoQuestionsAvailable
	}

	var (
		questions []entities.Question
		mode      string
	)
	if section == "" {
		mode = "bank"
		questions = s.composer.Compose(bank, s.questionCount(count, s.cfg.QuestionCount), s.cfg.Weights)
	} else {
		if _, ok := bank.Section(section); !ok {
			return nil, ErrSectionNotFound
		}
		mode = "section"
		questions = s.composer.ComposeSection(bank, section, s.questionCount(count, s.cfg.SectionCount))
	}

	if len(questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	session := entities.NewQuizSession(uuid.NewString(), user.Username, s.cfg.Database, section, questions, s.now(), s.cfg.Duration)
	s.store.Put(session)

	metrics.QuizzesComposed.WithLabelValues(mode).Inc()
	metrics.QuestionsServed.Observe(float64(len(questions)))
	s.logger.Info("quiz started",
		zap.String("session_id", session.ID),
		zap.String("username", user.Username),
		zap.String("section", section),
		zap.Int("questions", len(questions)),
	)

	return session, nil
}

func (s *QuizService) questionCount(requested, fallback int) int {
	if requested <= 0 {
		requested = fallback
	}
	if requested > maxQuestionCount {
		requested = maxQuestionCount
	}
	return requested
}

// GetQuiz returns the user's active attempt.
func (s *QuizService) GetQuiz(_ context.Context, username, id string) (*entities.QuizSession, error) {
	session, ok := s.store.Get(id)
	if !ok || session.Username != username {
		return nil, ErrSessionNotFound
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

// SubmitQuiz scores the attempt and records the result. answers maps the string form
// of question IDs to the chosen option texts. The attempt leaves the store before it is
// scored, so it is scored at most once. Submissions past the deadline plus the grace
// period are rejected and the attempt is discarded.
func (s *QuizService) SubmitQuiz(ctx context.Context, username, id string, answers map[string][]string) (*SubmitOutcome, error) {
	session, ok := s.store.Take(id, username)
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := s.now()
	if now.After(session.Deadline.Add(s.cfg.Grace)) {
		metrics.Submissions.WithLabelValues("expired").Inc()
		s.logger.Info("late quiz submission rejected",
			zap.String("session_id", id),
			zap.String("username", username),
		)
		return nil, ErrSessionExpired
	}

	report := Score(session.Questions, answers)
	timeTaken := session.Elapsed(now)
	session = session.Completed(now)

	result := entities.NewQuizResult(session, report, timeTaken, now)
	if err := s.submissions.SaveSubmission(ctx, result, report, s.cfg.PassPercentage); err != nil {
		// The taker still gets the score; only the record is lost.
		s.logger.Error("failed to save quiz result",
			zap.String("session_id", id),
			zap.String("username", username),
			zap.Error(err),
		)
	}

	metrics.Submissions.WithLabelValues("scored").Inc()
	metrics.ScorePercentage.Observe(report.Percentage)
	s.logger.Info("quiz submitted",
		zap.String("session_id", id),
		zap.String("username", username),
		zap.Int("score", report.Score),
		zap.Int("total", report.Total),
		zap.Duration("time_taken", timeTaken),
	)

	return &SubmitOutcome{Report: report, TimeTaken: timeTaken}, nil
}

// Distribution previews how a whole-bank quiz of count questions would be split.
func (s *QuizService) Distribution(ctx context.Context, count int) []SectionTarget {
	bank := s.banks.Load(ctx, s.cfg.Database)
	count = s.questionCount(count, s.cfg.QuestionCount)

	weights := ResolveWeights(bank.Sections, s.cfg.Weights)
	targets := SectionTargets(bank.Sections, count, s.cfg.Weights)

	out := make([]SectionTarget, 0, len(bank.Sections))
	for i, sec := range bank.Sections {
		out = append(out, SectionTarget{
			Section:   sec.Name,
			Weight:    weights[i],
			Target:    targets[i],
			Available: sec.Count,
		})
	}
	return out
}

// Sections lists the bank's sections with the user's progress on each.
func (s *QuizService) Sections(ctx context.Context, user *entities.User) ([]entities.SectionOverview, error) {
	bank := s.banks.Load(ctx, s.cfg.Database)

	records, err := s.progress.ListByUser(ctx, user.Username, s.cfg.Database)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*entities.SectionProgress, len(records))
	for _, p := range records {
		byName[p.Section] = p
	}

	out := make([]entities.SectionOverview, 0, len(bank.Sections))
	for _, sec := range bank.Sections {
		if !user.AllowsSection(sec.Name) {
			continue
		}
		ov := entities.SectionOverview{Name: sec.Name, Questions: sec.Count}
		if p, ok := byName[sec.Name]; ok {
			ov.Attempts = p.Attempts
			ov.BestPercentage = p.BestPercentage
			ov.Completed = p.Completed
		}
		out = append(out, ov)
	}
	return out, nil
}

// Results returns the user's latest results.
func (s *QuizService) Results(ctx context.Context, username string, limit int) ([]*entities.QuizResult, error) {
	switch {
	case limit <= 0:
		limit = defaultResultsLimit
	case limit > maxResultsLimit:
		limit = maxResultsLimit
	}
	return s.results.ListByUsername(ctx, username, limit)
}

// EndSessions drops every in-flight attempt of the user.
func (s *QuizService) EndSessions(username string) int {
	return s.store.DeleteByUser(username)
}

// EvictStale drops attempts older than the session TTL.
func (s *QuizService) EvictStale() int {
	n := s.store.EvictOlderThan(s.cfg.SessionTTL)
	if n > 0 {
		s.logger.Info("evicted stale quiz sessions", zap.Int("count", n))
	}
	return n
}
