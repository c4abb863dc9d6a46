package logging

import (
	"context"
	"log/slog"
)

const defaultLimiterKeys = 64

// FrameLimiter rate-limits log entries raised from the frame loop. Each key
// logs at most once every Every ticks. It is not safe for concurrent use;
// the owner calls it from its tick.
type FrameLimiter struct {
	logger  *slog.Logger
	every   uint64
	maxKeys int
	last    map[string]uint64
}

// NewFrameLimiter creates a limiter writing to logger. A zero every logs
// every call.
func NewFrameLimiter(logger *slog.Logger, every uint64) *FrameLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameLimiter{
		logger:  logger,
		every:   every,
		maxKeys: defaultLimiterKeys,
		last:    map[string]uint64{},
	}
}

// Log emits msg for key unless key already logged within the last Every
// ticks before tick.
func (l *FrameLimiter) Log(ctx context.Context, tick uint64, key string, level slog.Level, msg string, attrs ...slog.Attr) {
	if !l.logger.Enabled(ctx, level) {
		return
	}
	if key != "" && l.every > 0 {
		if last, ok := l.last[key]; ok && tick-last < l.every {
			return
		}
		l.last[key] = tick
		if len(l.last) > l.maxKeys {
			l.prune(tick)
		}
	}
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// prune drops keys whose window has passed. If every key is still live the
// table is cleared.
func (l *FrameLimiter) prune(tick uint64) {
	for key, last := range l.last {
		if tick-last >= l.every {
			delete(l.last, key)
		}
	}
	if len(l.last) > l.maxKeys {
		clear(l.last)
	}
}
