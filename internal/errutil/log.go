// Package errutil logs and asserts oops-wrapped errors.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context if it carries an oops error.
// For oops errors it extracts the code and context. Other errors are logged
// by their string.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	if logger == nil || err == nil {
		return
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", err.Error(),
			"cause", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil && code != "" {
			attrs = append(attrs, "code", code)
		}
		if c := oopsErr.Context(); len(c) > 0 {
			attrs = append(attrs, "context", c)
		}
		logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	logger.ErrorContext(ctx, msg, "error", err)
}
