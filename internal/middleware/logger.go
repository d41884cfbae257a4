package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request: method, route, status, latency and
// the request id. Handler errors are logged here and re-raised for the
// error handler.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			ev := logger.Info()
			if err != nil {
				ev = logger.Warn().Err(err)
			}
			ev.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("request_id", GetRequestID(c)).
				Msg("request")

			return nil
		}
	}
}
