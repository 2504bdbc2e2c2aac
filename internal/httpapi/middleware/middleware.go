package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goaccelovate/ai-chat-backend/internal/auth"
	"github.com/goaccelovate/ai-chat-backend/internal/common"
	"github.com/goaccelovate/ai-chat-backend/internal/settings"
	"github.com/goaccelovate/ai-chat-backend/internal/store/redisstore"
)

const RequestIDHeader = "X-Request-ID"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// AuthRequired guards admin routes with a bearer token.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if err := auth.VerifyAdminToken(token, jwtSecret); err != nil {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

const WidgetKeyHeader = "X-Widget-Key"

// WidgetKeyRequired checks the embed key on every widget call. The key
// is read from the settings store each time so a regenerated key takes
// effect immediately.
func WidgetKeyRequired(st *settings.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := st.Load(c.Request.Context())
		if err != nil {
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
			c.Abort()
			return
		}
		got := c.GetHeader(WidgetKeyHeader)
		if cfg.WidgetKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(cfg.WidgetKey)) != 1 {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid widget key")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit caps widget sends per client IP in a one-minute window. A
// nil store disables the limiter; a redis outage fails open.
func RateLimit(rds *redisstore.Store, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rds == nil || perMinute <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("chat:rl:%s", c.ClientIP())
		n, err := rds.IncrWindow(c.Request.Context(), key, time.Minute)
		if err == nil && n > int64(perMinute) {
			common.Fail(c, http.StatusTooManyRequests, 42901, "too many messages, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
