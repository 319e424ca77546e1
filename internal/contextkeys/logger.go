package contextkeys

import (
	"context"

	"github.com/horse37/corretores-sub000/internal/core/port"
)

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

// ContextWithLogger places the request-scoped logger into the context.
func ContextWithLogger(ctx context.Context, logger port.LoggerPort) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger, falling back to a no-op
// implementation so call sites never have to nil-check.
func LoggerFromContext(ctx context.Context) port.LoggerPort {
	if logger, ok := ctx.Value(loggerKey).(port.LoggerPort); ok {
		return logger
	}
	return &noopLogger{}
}

type noopLogger struct{}

func (n *noopLogger) Debug(msg string, fields port.Fields)             {}
func (n *noopLogger) Info(msg string, fields port.Fields)              {}
func (n *noopLogger) Warn(msg string, fields port.Fields)              {}
func (n *noopLogger) Error(msg string, err error, fields port.Fields)  {}
func (n *noopLogger) WithFields(fields port.Fields) port.LoggerPort    { return n }
