package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// HeaderRequestID carries the request ID back to the client.
	HeaderRequestID = "X-Request-Id"

	logFieldRequestID = "request_id"
	logFieldMethod    = "method"
	logFieldPath      = "path"
	logFieldStatus    = "status"
	logFieldDuration  = "duration_ms"
)

// RequestLogger logs every request with a generated request ID and timing.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, requestID)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			slog.Info("request",
				logFieldRequestID, requestID,
				logFieldMethod, c.Request().Method,
				logFieldPath, c.Request().URL.Path,
				logFieldStatus, c.Response().Status,
				logFieldDuration, time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}
