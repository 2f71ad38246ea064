// Package middleware holds the Gin middleware shared by the news API.
//
// Recommended order: RequestID, RedactingLogger, Recovery. That way every log
// line and every error body carries the same correlation id.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey stores the correlation id in the Gin context.
	requestIDKey = "requestID"
	// loggerKey stores the request-scoped *zerolog.Logger.
	loggerKey = "logger"
	// HeaderRequestID propagates the correlation id in both directions.
	HeaderRequestID = "X-Request-ID"
)

// RequestID reuses the caller's X-Request-ID or mints a UUIDv4, echoes it on
// the response and stores it in the context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation id stored by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return c.Writer.Header().Get(HeaderRequestID)
}

// Recovery turns a panic into the standard 500 error body and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(HeaderRequestID, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(c, "internal_error", "internal server error"))
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, falling back to the global one.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// errorBody mirrors handlers.ErrorResponse for middleware that aborts before
// a handler runs.
func errorBody(c *gin.Context, code, msg string) gin.H {
	return gin.H{
		"request_id": RequestIDFrom(c),
		"code":       code,
		"msg":        msg,
	}
}
