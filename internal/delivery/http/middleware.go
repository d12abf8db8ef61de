package http

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aliskhannn/quizbank/internal/domain/entities"
)

const userContextKey = "user"

var errInvalidToken = errors.New("invalid session token")

// sessionClaims is the content of the signed session cookie.
type sessionClaims struct {
	Username  string   `json:"username"`
	Sections  []string `json:"sections,omitempty"`
	SingleUse bool     `json:"single_use,omitempty"`
	jwt.StandardClaims
}

// issueToken signs a session token for the user.
func issueToken(user *entities.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username:  user.Username,
		Sections:  user.Sections,
		SingleUse: user.SingleUse,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.Username,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// parseToken verifies a session token and returns the user it carries.
func parseToken(token, secret string) (*entities.User, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if !parsed.Valid || claims.Username == "" {
		return nil, errInvalidToken
	}

	return &entities.User{
		Username:  claims.Username,
		Sections:  claims.Sections,
		SingleUse: claims.SingleUse,
		LoggedAt:  time.Unix(claims.IssuedAt, 0),
	}, nil
}

// authMiddleware resolves the session cookie (or a bearer token) into a user.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := h.currentUser(c)
		if !ok {
			unauthorized(c)
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

func (h *Handler) currentUser(c *gin.Context) (*entities.User, bool) {
	token, err := c.Cookie(h.cfg.CookieName)
	if err != nil || token == "" {
		if auth := c.GetHeader("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
			token = auth[7:]
		}
	}
	if token == "" {
		return nil, false
	}

	user, err := parseToken(token, h.cfg.JWTSecret)
	if err != nil {
		h.logger.Debug("rejected session token", zap.Error(err))
		return nil, false
	}
	return user, true
}

func userFromContext(c *gin.Context) *entities.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*entities.User)
	return user
}

// loginLimiter throttles login attempts per client address.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLoginLimiter(perSecond float64, burst int) *loginLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *loginLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *loginLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			fail(c, http.StatusTooManyRequests, "Too many login attempts")
			return
		}
		c.Next()
	}
}

// requestLogger logs every request with zap.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
