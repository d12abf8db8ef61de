package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
	"github.com/aliskhannn/quizbank/internal/service"
	"github.com/aliskhannn/quizbank/internal/storage"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Remove the user's "clock".
	defer h.request(tgbotapi.NewCallback(cb.ID, ""))

	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	data := decodeCallback(cb.Data)

	switch data.Action {
	case actionQuiz:
		_ = h.withErrorHandling(h.requireUser(h.quizCallback(cb.Message.MessageID, data)))(ctx, chatID)
	case actionReset:
		_ = h.withErrorHandling(h.requireUser(h.resetCallback(cb.Message.MessageID, data)))(ctx, chatID)
	default:
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
	}
}

func (h *Handler) quizCallback(msgID int, data callbackData) UserHandlerFunc {
	return func(ctx context.Context, chatID int64, user *entities.User) error {
		switch data.param(0) {
		case quizStart:
			return h.startFromCallback(ctx, chatID, user, data)
		case quizSections:
			return h.sectionsHandler(ctx, chatID, user)
		case quizToggle:
			return h.toggleOption(ctx, chatID, msgID, user, data)
		case quizMove:
			return h.moveTo(ctx, chatID, msgID, user, data)
		case quizSubmit:
			return h.submit(ctx, chatID, msgID, user)
		default:
			h.logger.Debug("unknown quiz callback", zap.String("data", data.Raw))
			return nil
		}
	}
}

func (h *Handler) startFromCallback(ctx context.Context, chatID int64, user *entities.User, data callbackData) error {
	if data.param(1) == "" {
		return h.startQuiz(ctx, chatID, user, "")
	}

	index, ok := data.intParam(1)
	if !ok {
		return nil
	}
	overview, err := h.quizService.Sections(ctx, user)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(overview) {
		return service.ErrSectionNotFound
	}
	return h.startQuiz(ctx, chatID, user, overview[index].Name)
}

// activeQuiz loads the chat's running attempt; it clears the chat's quiz state when the attempt is gone.
func (h *Handler) activeQuiz(ctx context.Context, chatID int64, user *entities.User) (*entities.QuizSession, storage.ChatState, error) {
	st, _ := h.chats.Get(chatID)
	if !st.InQuiz() {
		return nil, st, service.ErrSessionNotFound
	}

	session, err := h.quizService.GetQuiz(ctx, user.Username, st.QuizID)
	if err != nil {
		h.chats.Update(chatID, func(st *storage.ChatState) { st.ResetQuiz() })
		return nil, st, err
	}
	return session, st, nil
}

func (h *Handler) toggleOption(ctx context.Context, chatID int64, msgID int, user *entities.User, data callbackData) error {
	questionID, ok1 := data.intParam(1)
	option, ok2 := data.intParam(2)
	if !ok1 || !ok2 {
		return nil
	}

	session, st, err := h.activeQuiz(ctx, chatID, user)
	if err != nil {
		return err
	}

	index := st.Current
	if index >= len(session.Questions) || session.Questions[index].ID != questionID {
		// Stale button from a question no longer on screen.
		return nil
	}
	q := &session.Questions[index]
	if option < 0 || option >= len(q.Options) {
		return nil
	}

	st = h.chats.Update(chatID, func(st *storage.ChatState) {
		if st.Selected == nil {
			st.Selected = make(map[int][]int)
		}
		st.Selected[questionID] = toggle(st.Selected[questionID], option, q.Multiple)
	})

	h.showQuestion(chatID, msgID, session, index, st.Selected[questionID])
	return nil
}

func (h *Handler) moveTo(ctx context.Context, chatID int64, msgID int, user *entities.User, data callbackData) error {
	index, ok := data.intParam(1)
	if !ok {
		return nil
	}

	session, _, err := h.activeQuiz(ctx, chatID, user)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(session.Questions) {
		return nil
	}

	st := h.chats.Update(chatID, func(st *storage.ChatState) {
		st.Current = index
		st.MessageID = msgID
	})

	h.showQuestion(chatID, msgID, session, index, st.Selected[session.Questions[index].ID])
	return nil
}

func (h *Handler) submit(ctx context.Context, chatID int64, msgID int, user *entities.User) error {
	session, st, err := h.activeQuiz(ctx, chatID, user)
	if err != nil {
		return err
	}

	outcome, err := h.quizService.SubmitQuiz(ctx, user.Username, st.QuizID, collectAnswers(session.Questions, st.Selected))
	h.chats.Update(chatID, func(st *storage.ChatState) { st.ResetQuiz() })
	h.request(tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, emptyKeyboard()))
	if err != nil {
		return err
	}

	msg := newHTMLMessage(chatID, scoreText(outcome))
	msg.ReplyMarkup = buildQuizResultKeyboard(session.Section)
	h.send(msg)
	return nil
}

func (h *Handler) resetCallback(msgID int, data callbackData) UserHandlerFunc {
	return func(ctx context.Context, chatID int64, user *entities.User) error {
		switch data.param(0) {
		case resetConfirm:
			if err := h.resetService.ResetUser(ctx, user.Username); err != nil {
				return err
			}
			h.send(newHTMLEdit(chatID, msgID, msgResetDone, nil))
		case resetCancel:
			h.send(newHTMLEdit(chatID, msgID, msgResetCancelled, nil))
		}
		return nil
	}
}

func (h *Handler) showQuestion(chatID int64, msgID int, session *entities.QuizSession, index int, selected []int) {
	q := &session.Questions[index]
	kb := buildQuestionKeyboard(q, index, len(session.Questions), selected)
	h.send(newHTMLEdit(chatID, msgID, questionText(session, index, selected, h.now()), &kb))
}

// toggle flips option in selected. Single-answer questions keep at most one selection.
func toggle(selected []int, option int, multiple bool) []int {
	for i, v := range selected {
		if v == option {
			return append(selected[:i:i], selected[i+1:]...)
		}
	}
	if !multiple {
		return []int{option}
	}
	return append(selected, option)
}

// collectAnswers turns selected option indices into the answer texts the scorer expects.
func collectAnswers(questions []entities.Question, selected map[int][]int) map[string][]string {
	answers := make(map[string][]string, len(selected))
	for i := range questions {
		q := &questions[i]
		for _, idx := range selected[q.ID] {
			if idx < 0 || idx >= len(q.Options) {
				continue
			}
			key := strconv.Itoa(q.ID)
			answers[key] = append(answers[key], q.Options[idx].Text)
		}
	}
	return answers
}
