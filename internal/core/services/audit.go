package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/metrics"
)

const auditTimeout = 2 * time.Second

// auditor writes best-effort audit events. A failed write is logged and
// dropped; it never changes the outcome of the operation being audited.
type auditor struct {
	trail   ports.AuditTrail
	clock   ports.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func newAuditor(opts Options) auditor {
	return auditor{trail: opts.Audit, clock: opts.Clock, logger: opts.Logger, metrics: opts.Metrics}
}

func (a auditor) record(ctx context.Context, actor string, action domain.AuditAction, details map[string]any) {
	if a.trail == nil {
		return
	}
	if !action.Valid() {
		a.metrics.IncAuditFailures()
		a.logger.ErrorContext(ctx, "unknown audit action rejected",
			"event", "audit_action_invalid",
			"action", string(action),
		)
		return
	}
	if actor == "" {
		actor = domain.AnonymousActor
	}
	event := domain.AuditEvent{
		Actor:      actor,
		Action:     action,
		Details:    details,
		OccurredAt: a.clock.Now(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := a.trail.Record(ctx, event); err != nil {
		a.metrics.IncAuditFailures()
		a.logger.WarnContext(ctx, "audit event dropped",
			"event", "audit_record_failed",
			"action", string(action),
			"error", err.Error(),
		)
	}
}
