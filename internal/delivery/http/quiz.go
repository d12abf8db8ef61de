package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

type startQuizRequest struct {
	Section string `json:"section"`
	Count   int    `json:"count"`
}

type quizResponse struct {
	ID               string                    `json:"quiz_id"`
	Section          string                    `json:"section,omitempty"`
	Deadline         time.Time                 `json:"deadline"`
	RemainingSeconds int                       `json:"remaining_seconds"`
	Questions        []entities.PublicQuestion `json:"questions"`
}

type submitRequest struct {
	Answers map[string][]string `json:"answers"`
}

type submitResponse struct {
	*entities.ScoreReport
	TimeTaken string `json:"time_taken"`
}

func newQuizResponse(s *entities.QuizSession, now time.Time) quizResponse {
	remaining := int(s.Deadline.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return quizResponse{
		ID:               s.ID,
		Section:          s.Section,
		Deadline:         s.Deadline,
		RemainingSeconds: remaining,
		Questions:        entities.PublicQuestions(s.Questions),
	}
}

func (h *Handler) startQuiz(c *gin.Context) {
	var req startQuizRequest
	// An empty body asks for a default whole-bank quiz. Chunked bodies have no length,
	// so emptiness is detected by the decoder hitting EOF.
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "Invalid request body")
			return
		}
	}
	if req.Count < 0 {
		badRequest(c, "Count must not be negative")
		return
	}

	session, err := h.quiz.StartQuiz(c.Request.Context(), userFromContext(c), req.Section, req.Count)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	created(c, newQuizResponse(session, time.Now()))
}

func (h *Handler) getQuiz(c *gin.Context) {
	user := userFromContext(c)
	session, err := h.quiz.GetQuiz(c.Request.Context(), user.Username, c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}

	success(c, newQuizResponse(session, time.Now()))
}

func (h *Handler) submitQuiz(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid answers format")
		return
	}
	if req.Answers == nil {
		req.Answers = map[string][]string{}
	}

	user := userFromContext(c)
	outcome, err := h.quiz.SubmitQuiz(c.Request.Context(), user.Username, c.Param("id"), req.Answers)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	success(c, submitResponse{
		ScoreReport: outcome.Report,
		TimeTaken:   formatDuration(outcome.TimeTaken),
	})
}

func (h *Handler) sections(c *gin.Context) {
	overview, err := h.quiz.Sections(c.Request.Context(), userFromContext(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	success(c, overview)
}

func (h *Handler) results(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, "Invalid limit")
		return
	}

	results, err := h.quiz.Results(c.Request.Context(), userFromContext(c).Username, limit)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	success(c, results)
}

func (h *Handler) distribution(c *gin.Context) {
	count, err := queryInt(c, "count")
	if err != nil || count < 0 {
		badRequest(c, "Invalid count")
		return
	}
	success(c, h.quiz.Distribution(c.Request.Context(), count))
}

func (h *Handler) resetProgress(c *gin.Context) {
	if err := h.reset.ResetUser(c.Request.Context(), userFromContext(c).Username); err != nil {
		h.serviceError(c, err)
		return
	}
	success(c, nil)
}

// queryInt reads an optional integer query parameter; missing means 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// formatDuration renders d as mm:ss.
func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
