package adminlog

import (
	"context"

	"go.uber.org/zap"
)

// Logger records administrative actions to the service log. It is a
// best-effort audit sink; callers never check its outcome.
type Logger struct {
	log *zap.Logger
}

func New(logger *zap.Logger) *Logger {
	return &Logger{log: logger.With(zap.String("component", "admin_audit"))}
}

func (l *Logger) Log(ctx context.Context, adminID, action string) {
	_ = ctx
	l.log.Info("admin_action",
		zap.String("admin_id", adminID),
		zap.String("action", action),
	)
}
