package http

import (
	"context"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*entities.User, error)
}

type QuizService interface {
	StartQuiz(ctx context.Context, user *entities.User, section string, count int) (*entities.QuizSession, error)
	GetQuiz(ctx context.Context, username, id string) (*entities.QuizSession, error)
	SubmitQuiz(ctx context.Context, username, id string, answers map[string][]string) (*service.SubmitOutcome, error)
	Distribution(ctx context.Context, count int) []service.SectionTarget
	Sections(ctx context.Context, user *entities.User) ([]entities.SectionOverview, error)
	Results(ctx context.Context, username string, limit int) ([]*entities.QuizResult, error)
	EndSessions(username string) int
}

type ResetService interface {
	ResetUser(ctx context.Context, username string) error
}
