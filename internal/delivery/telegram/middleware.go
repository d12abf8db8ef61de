package telegram

import (
	"context"

	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// UserHandlerFunc handles an update from a logged-in chat.
type UserHandlerFunc func(ctx context.Context, chatID int64, user *entities.User) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			if text, ok := userMessage(err); ok {
				h.sendError(chatID, text)
				return nil
			}
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
			return nil
		}
		return nil
	}
}

// requireUser runs fn only for chats that have logged in.
func (h *Handler) requireUser(fn UserHandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		st, ok := h.chats.Get(chatID)
		if !ok || st.User == nil {
			h.send(newHTMLMessage(chatID, msgLoginRequired))
			return nil
		}
		return fn(ctx, chatID, st.User)
	}
}
