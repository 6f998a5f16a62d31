package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/adeiltonpessini/vet-care-infinity-sub000/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id, honoring one the
// client already sent. The id is echoed on the response and stamped onto
// the request-scoped logger, which ties a tenant's support ticket to the
// exact log lines it produced.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(requestIDHeader, requestID)
			}
			c.Response().Header().Set(requestIDHeader, requestID)

			logger.ToEcho(c, logger.GetLogger().With(zap.String("request_id", requestID)))
			return next(c)
		}
	}
}
