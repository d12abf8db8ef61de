// Package telegram runs the quiz as a Telegram bot.
package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/service"
	"github.com/aliskhannn/quizbank/internal/storage"
)

// Bot is the part of the Telegram client the handler uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*entities.User, error)
}

type QuizService interface {
	StartQuiz(ctx context.Context, user *entities.User, section string, count int) (*entities.QuizSession, error)
	GetQuiz(ctx context.Context, username, id string) (*entities.QuizSession, error)
	SubmitQuiz(ctx context.Context, username, id string, answers map[string][]string) (*service.SubmitOutcome, error)
	Sections(ctx context.Context, user *entities.User) ([]entities.SectionOverview, error)
	Results(ctx context.Context, username string, limit int) ([]*entities.QuizResult, error)
	EndSessions(username string) int
}

type ResetService interface {
	ResetUser(ctx context.Context, username string) error
}

type ChatStorage interface {
	Get(chatID int64) (storage.ChatState, bool)
	Update(chatID int64, fn func(st *storage.ChatState)) storage.ChatState
	Delete(chatID int64)
}

type Handler struct {
	bot          Bot
	logger       *zap.Logger
	authService  AuthService
	quizService  QuizService
	resetService ResetService
	chats        ChatStorage
	now          func() time.Time
}

func NewHandler(
	bot Bot,
	logger *zap.Logger,
	authService AuthService,
	quizService QuizService,
	resetService ResetService,
	chats ChatStorage,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		bot:          bot,
		logger:       logger,
		authService:  authService,
		quizService:  quizService,
		resetService: resetService,
		chats:        chats,
		now:          time.Now,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	chatID := update.Message.Chat.ID
	h.logger.Debug("update received", zap.Int64("chat_id", chatID))

	if !update.Message.IsCommand() {
		h.send(newHTMLMessage(chatID, msgUseCommands))
		return
	}

	switch update.Message.Command() {
	case "start":
		h.send(newHTMLMessage(chatID, msgWelcome))

	case "help":
		h.send(newHTMLMessage(chatID, msgHelp))

	case "login":
		_ = h.withErrorHandling(h.loginHandler(update.Message))(ctx, chatID)

	case "logout":
		_ = h.withErrorHandling(h.logoutHandler())(ctx, chatID)

	case "sections":
		_ = h.withErrorHandling(h.requireUser(h.sectionsHandler))(ctx, chatID)

	case "quiz":
		_ = h.withErrorHandling(h.requireUser(h.quizHandler(update.Message.CommandArguments())))(ctx, chatID)

	case "results":
		_ = h.withErrorHandling(h.requireUser(h.resultsHandler))(ctx, chatID)

	case "reset":
		_ = h.withErrorHandling(h.requireUser(h.resetHandler))(ctx, chatID)

	default:
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
	}
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newHTMLMessage(chatID, err)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}

// request performs a call whose result carries no message, such as a delete or a callback answer.
func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.bot.Request(c); err != nil {
		h.logger.Warn("telegram request failed",
			zap.Error(err),
		)
	}
}
