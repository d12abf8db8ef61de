package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Username  string    `json:"username"`
	Sections  []string  `json:"sections,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	token, err := issueToken(user, h.cfg.JWTSecret, h.cfg.TokenTTL)
	if err != nil {
		h.logger.Error("failed to sign session token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, int(h.cfg.TokenTTL.Seconds()), "/", "", h.cfg.SecureCookie, true)

	success(c, loginResponse{
		Username:  user.Username,
		Sections:  user.Sections,
		ExpiresAt: time.Now().Add(h.cfg.TokenTTL),
	})
}

func (h *Handler) logout(c *gin.Context) {
	if user, ok := h.currentUser(c); ok {
		ended := h.quiz.EndSessions(user.Username)
		h.logger.Info("user logged out",
			zap.String("username", user.Username),
			zap.Int("ended_sessions", ended),
		)
	}

	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.SecureCookie, true)
	success(c, nil)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
