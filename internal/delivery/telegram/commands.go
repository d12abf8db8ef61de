package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/storage"
)

func (h *Handler) loginHandler(msg *tgbotapi.Message) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		args := strings.Fields(msg.CommandArguments())

		// The message carries a password; remove it from the chat either way.
		h.request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID))

		if len(args) != 2 {
			h.send(newHTMLMessage(chatID, msgLoginUsage))
			return nil
		}

		user, err := h.authService.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		prev, _ := h.chats.Get(chatID)
		if prev.User != nil && prev.User.Username != user.Username {
			h.quizService.EndSessions(prev.User.Username)
		}
		h.clearQuizKeyboard(chatID, prev)

		h.chats.Update(chatID, func(st *storage.ChatState) {
			st.User = user
			st.ResetQuiz()
		})

		h.logger.Info("telegram login",
			zap.Int64("chat_id", chatID),
			zap.String("username", user.Username),
		)
		h.send(newHTMLMessage(chatID, loggedInText(user)))
		return nil
	}
}

func (h *Handler) logoutHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if st, ok := h.chats.Get(chatID); ok {
			if st.User != nil {
				h.quizService.EndSessions(st.User.Username)
			}
			h.clearQuizKeyboard(chatID, st)
		}
		h.chats.Delete(chatID)

		h.send(newHTMLMessage(chatID, msgLoggedOut))
		return nil
	}
}

func (h *Handler) sectionsHandler(ctx context.Context, chatID int64, user *entities.User) error {
	overview, err := h.quizService.Sections(ctx, user)
	if err != nil {
		return err
	}

	msg := newHTMLMessage(chatID, sectionsText(overview))
	if len(overview) > 0 {
		msg.ReplyMarkup = buildSectionsKeyboard(overview, user.AllowsSection(""))
	}
	h.send(msg)
	return nil
}

// quizHandler starts a quiz on the named section, or on the whole bank when args is empty.
func (h *Handler) quizHandler(args string) UserHandlerFunc {
	section := strings.TrimSpace(args)
	return func(ctx context.Context, chatID int64, user *entities.User) error {
		return h.startQuiz(ctx, chatID, user, section)
	}
}

func (h *Handler) resultsHandler(ctx context.Context, chatID int64, user *entities.User) error {
	results, err := h.quizService.Results(ctx, user.Username, resultsShown)
	if err != nil {
		return err
	}

	h.send(newHTMLMessage(chatID, resultsText(results)))
	return nil
}

func (h *Handler) resetHandler(_ context.Context, chatID int64, _ *entities.User) error {
	msg := newHTMLMessage(chatID, msgResetConfirm)
	msg.ReplyMarkup = buildResetKeyboard()
	h.send(msg)
	return nil
}

// startQuiz composes an attempt and shows its first question.
func (h *Handler) startQuiz(ctx context.Context, chatID int64, user *entities.User, section string) error {
	session, err := h.quizService.StartQuiz(ctx, user, section, 0)
	if err != nil {
		return err
	}

	// An abandoned attempt stays in the session store until evicted.
	prev, _ := h.chats.Get(chatID)
	h.clearQuizKeyboard(chatID, prev)

	h.chats.Update(chatID, func(st *storage.ChatState) {
		st.ResetQuiz()
		st.QuizID = session.ID
		st.Selected = make(map[int][]int)
	})

	q := &session.Questions[0]
	msg := newHTMLMessage(chatID, questionText(session, 0, nil, h.now()))
	msg.ReplyMarkup = buildQuestionKeyboard(q, 0, len(session.Questions), nil)

	sent, err := h.bot.Send(msg)
	if err != nil {
		return err
	}

	h.chats.Update(chatID, func(st *storage.ChatState) {
		if st.QuizID == session.ID {
			st.MessageID = sent.MessageID
		}
	})
	return nil
}

// clearQuizKeyboard removes the buttons from the question message of an abandoned attempt.
func (h *Handler) clearQuizKeyboard(chatID int64, st storage.ChatState) {
	if st.MessageID == 0 {
		return
	}
	h.request(tgbotapi.NewEditMessageReplyMarkup(chatID, st.MessageID, emptyKeyboard()))
}
