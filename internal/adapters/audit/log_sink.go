package audit

import (
	"context"
	"log/slog"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
)

// LogSink writes audit events as structured log lines.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{logger: logger.Resolve(log).With("component", "audit")}
}

func (s *LogSink) Record(ctx context.Context, event domain.AuditEvent) error {
	attrs := []any{
		"event", "audit",
		"actor", event.Actor,
		"action", string(event.Action),
		"occurred_at", event.OccurredAt,
	}
	if len(event.Details) > 0 {
		attrs = append(attrs, "details", event.Details)
	}
	s.logger.InfoContext(ctx, "audit event", attrs...)
	return nil
}

var _ ports.AuditTrail = (*LogSink)(nil)
