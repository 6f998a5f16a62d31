package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// echoKey is where the request middleware stashes the request-scoped
// logger. Handlers read it back through FromEcho so every line they log
// carries the request id.
const echoKey = "logger"

// WithContext attaches a request-scoped logger to a context. The stores
// use it when an operation outlives the request, such as saga
// compensation.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger attached by WithContext, falling back to
// the process logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}

// ToEcho attaches a request-scoped logger to an Echo context.
func ToEcho(c echo.Context, l *zap.Logger) {
	c.Set(echoKey, l)
}

// FromEcho returns the logger attached by ToEcho, falling back to the
// process logger so a handler outside the middleware chain still logs.
func FromEcho(c echo.Context) *zap.Logger {
	if l, ok := c.Get(echoKey).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}
