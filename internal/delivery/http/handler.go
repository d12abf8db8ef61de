// Package http exposes the quiz over a JSON API served by gin.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config holds the HTTP-facing auth settings.
type Config struct {
	JWTSecret    string
	CookieName   string
	TokenTTL     time.Duration
	SecureCookie bool
	LoginRate    float64
	LoginBurst   int
}

// Handler serves the quiz API.
type Handler struct {
	auth    AuthService
	quiz    QuizService
	reset   ResetService
	limiter *loginLimiter
	cfg     Config
	logger  *zap.Logger
}

func NewHandler(auth AuthService, quiz QuizService, reset ResetService, cfg Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		auth:    auth,
		quiz:    quiz,
		reset:   reset,
		limiter: newLoginLimiter(cfg.LoginRate, cfg.LoginBurst),
		cfg:     cfg,
		logger:  logger,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/login", h.limiter.middleware(), h.login)
	r.POST("/logout", h.logout)

	api := r.Group("/api", h.authMiddleware())
	{
		api.POST("/quiz", h.startQuiz)
		api.GET("/quiz/:id", h.getQuiz)
		api.POST("/quiz/:id/submit", h.submitQuiz)
		api.GET("/sections", h.sections)
		api.GET("/results", h.results)
		api.GET("/distribution", h.distribution)
		api.DELETE("/progress", h.resetProgress)
	}

	return r
}
