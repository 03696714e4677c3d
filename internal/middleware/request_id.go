package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/murmur-app/murmur-backend/internal/reqctx"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with a correlation id, reusing the client's
// X-Request-ID when present, and propagates it through the request context.
func RequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Request().Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Response().Header().Set(requestIDHeader, rid)
		ctx := reqctx.WithRID(c.Request().Context(), rid)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
