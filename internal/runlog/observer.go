package runlog

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Flyrell/clockfill/internal/attendance"
)

// Observer forwards attendance events to a slog logger.
type Observer struct {
	Logger *slog.Logger
}

func NewObserver(logger *slog.Logger) Observer {
	return Observer{Logger: logger}
}

func (o Observer) Observe(e attendance.Event) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]string, 0, len(e.Counts))
	for k := range e.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Int(k, e.Counts[k]))
	}
	logger.LogAttrs(context.Background(), slogLevel(e.Level), e.Message, attrs...)
}

func slogLevel(l attendance.Level) slog.Level {
	switch l {
	case attendance.LevelDebug:
		return slog.LevelDebug
	case attendance.LevelInfo:
		return slog.LevelInfo
	case attendance.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Success logs msg at LevelSuccess.
func Success(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelSuccess, msg, args...)
}
