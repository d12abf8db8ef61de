package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCredentialUsed     = errors.New("credential has already been used")
)

// AuthService checks logins against the users file stored next to the question bank.
type AuthService struct {
	banks     *BankService
	usersFile string
	creds     CredentialRepository
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(banks *BankService, usersFile string, creds CredentialRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		banks:     banks,
		usersFile: usersFile,
		creds:     creds,
		logger:    logger,
	}
}

// Login verifies the password and consumes single-use credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	cred := s.find(ctx, username)
	if cred == nil || !passwordMatches(cred.Password, password) {
		metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	if cred.SingleUse {
		fresh, err := s.creds.Consume(ctx, cred.Username, time.Now())
		if err != nil {
			return nil, fmt.Errorf("consume credential: %w", err)
		}
		if !fresh {
			metrics.Logins.WithLabelValues("used").Inc()
			return nil, ErrCredentialUsed
		}
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	s.logger.Info("user logged in",
		zap.String("username", cred.Username),
		zap.Bool("single_use", cred.SingleUse),
	)

	return entities.NewUser(cred), nil
}

// find loads the users file and returns the matching credential, or nil.
// A missing or malformed users file means nobody can log in.
func (s *AuthService) find(ctx context.Context, username string) *entities.Credential {
	text := s.banks.FetchText(ctx, s.usersFile)
	if text == "" {
		return nil
	}

	var file struct {
		Users []entities.Credential `json:"users"`
	}
	if err := json.Unmarshal([]byte(text), &file); err != nil {
		s.logger.Error("failed to decode users file",
			zap.String("file", s.usersFile),
			zap.Error(err),
		)
		return nil
	}

	for i := range file.Users {
		if file.Users[i].Username == username {
			return &file.Users[i]
		}
	}
	return nil
}

// passwordMatches compares against a bcrypt hash when the stored value is one,
// and as plain text otherwise.
func passwordMatches(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}
