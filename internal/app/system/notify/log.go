package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log writes notifications to a zap logger: successes at info, errors at
// warn.
type Log struct {
	L *zap.Logger
}

// NewLog returns a Log sink. A nil logger yields a no-op sink.
func NewLog(l *zap.Logger) Log {
	if l == nil {
		l = zap.NewNop()
	}
	return Log{L: l}
}

// Notify logs the message.
func (s Log) Notify(_ context.Context, kind Kind, message string) {
	if s.L == nil {
		return
	}
	if kind == Error {
		s.L.Warn("notification", zap.String("kind", string(kind)), zap.String("message", message))
		return
	}
	s.L.Info("notification", zap.String("kind", string(kind)), zap.String("message", message))
}
