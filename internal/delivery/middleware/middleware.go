package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/zlog"
)

const (
	userIDHeader = "X-User-ID"
	userIDKey    = "user_id"
)

// RequestIDMiddleware добавляет уникальный ID для каждого запроса.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggingMiddleware логирует входящие HTTP запросы и ответы.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID, exists := c.Get("request_id")
		if !exists {
			requestID = "unknown"
		}

		zlog.Logger.Info().
			Str("request_id", requestID.(string)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("user_agent", c.Request.UserAgent()).
			Str("remote_addr", c.ClientIP()).
			Int("content_length", int(c.Request.ContentLength)).
			Time("start_time", start).
			Msg("HTTP request started")

		c.Next()

		status := c.Writer.Status()
		var (
			event *zerolog.Event
			msg   string
		)
		switch {
		case status >= 500:
			event = zlog.Logger.Error().Str("error", c.Errors.String())
			msg = "HTTP request completed with error"
		case status >= 400:
			event = zlog.Logger.Warn()
			msg = "HTTP request completed with warning"
		default:
			event = zlog.Logger.Info()
			msg = "HTTP request completed successfully"
		}

		event.
			Str("request_id", requestID.(string)).
			Int64("user_id", c.GetInt64(userIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status_code", status).
			Int("response_size", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Msg(msg)
	}
}

// UserIDMiddleware читает ID пользователя из заголовка X-User-ID, который выставляет шлюз.
func UserIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.GetHeader(userIDHeader), 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user id is required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID возвращает ID пользователя, сохраненный UserIDMiddleware.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
