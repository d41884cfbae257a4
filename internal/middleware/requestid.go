// Package middleware carries the HTTP cross-cutting concerns: request ids,
// request-scoped logging and Prometheus metrics.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header name for the request ID.
const RequestIDHeader = "X-Request-ID"

const requestIDContextKey = "request_id"

// RequestID tags every request with a unique ID. An X-Request-ID supplied by
// the caller (load balancer, retry layer) is kept; otherwise one is generated.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			c.Response().Header().Set(RequestIDHeader, requestID)
			c.Set(requestIDContextKey, requestID)
			return next(c)
		}
	}
}

// GetRequestID retrieves the request ID set by RequestID.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}
