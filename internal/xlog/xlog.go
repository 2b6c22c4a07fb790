// Package xlog provides the process-wide structured logger, a thin
// log/slog wrapper gated by DVZ_LOG_LEVEL. The teacher repo has no
// logging package of its own; slog is used here in stdlib form because
// none of the example corpus's own loggers (cogentcore's glog wrapper,
// oxy-go's logger) add behavior beyond what slog already provides —
// see DESIGN.md for the full justification.
package xlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/datoviz/scene/internal/config"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// L returns the process-wide logger, initialized lazily from
// DVZ_LOG_LEVEL.
func L() *slog.Logger {
	once.Do(func() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level()}))
	})
	return logger
}

func level() slog.Level {
	switch config.LogLevel() {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Warnf logs a formatted warning, matching the "warn, fall back to the
// next backend" policy of spec.md §7 item 3.
func Warnf(ctx context.Context, format string, args ...any) {
	L().WarnContext(ctx, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error, matching spec.md §7 item 4's "log,
// tear down affected subresource" policy.
func Errorf(ctx context.Context, format string, args ...any) {
	L().ErrorContext(ctx, fmt.Sprintf(format, args...))
}
