// Package logging builds the process logger and the per-request gin logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yukikurage/earth-fighter-api/internal/constants"
)

const contextKeyLogger = "logger"

// New returns a JSON logger in production and a console logger otherwise.
func New(production bool) zerolog.Logger {
	return NewWithWriter(production, os.Stderr)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(production bool, out io.Writer) zerolog.Logger {
	if production {
		return zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// RequestLogger assigns a request ID, exposes a request-scoped logger through
// FromContext and writes one line per request.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(constants.HeaderRequestID, requestID)

		reqLog := base.With().Str("request_id", requestID).Logger()
		c.Set(contextKeyLogger, reqLog)

		c.Next()

		status := c.Writer.Status()
		event := reqLog.Info()
		switch {
		case status >= 500:
			event = reqLog.Error()
		case status >= 400:
			event = reqLog.Warn()
		}

		if userID, ok := c.Get(constants.ContextKeyUserID); ok {
			event = event.Interface("user_id", userID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// FromContext returns the request logger, or a disabled logger outside RequestLogger.
func FromContext(c *gin.Context) zerolog.Logger {
	if v, ok := c.Get(contextKeyLogger); ok {
		if l, ok := v.(zerolog.Logger); ok {
			return l
		}
	}
	return zerolog.Nop()
}
