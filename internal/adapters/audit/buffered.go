package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
	"github.com/vncsmyrnk/ballot/internal/platform/metrics"
)

// Buffered decouples callers from a slow sink. Record never blocks: when
// the buffer is full the event is dropped and counted.
type Buffered struct {
	sink    ports.AuditTrail
	inbox   chan domain.AuditEvent
	logger  *slog.Logger
	metrics *metrics.Metrics

	// mu orders Record sends against shutdown so nothing lands in inbox
	// after the final flush.
	mu     sync.RWMutex
	closed bool
}

func NewBuffered(sink ports.AuditTrail, size int, log *slog.Logger, m *metrics.Metrics) *Buffered {
	if size < 1 {
		size = 1
	}
	return &Buffered{
		sink:    sink,
		inbox:   make(chan domain.AuditEvent, size),
		logger:  logger.Resolve(log),
		metrics: m,
	}
}

func (b *Buffered) Record(_ context.Context, event domain.AuditEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.metrics.IncAuditDropped()
		b.logger.Warn("audit trail closed, event dropped",
			"event", "audit_dropped",
			"action", string(event.Action),
		)
		return nil
	}
	select {
	case b.inbox <- event:
	default:
		b.metrics.IncAuditDropped()
		b.logger.Warn("audit buffer full, event dropped",
			"event", "audit_dropped",
			"action", string(event.Action),
		)
	}
	return nil
}

// Run drains the buffer into the sink until ctx is cancelled, then flushes
// what is left with a detached context.
func (b *Buffered) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			b.closed = true
			b.mu.Unlock()
			b.flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case event := <-b.inbox:
			b.write(ctx, event)
		}
	}
}

func (b *Buffered) flush(ctx context.Context) {
	for {
		select {
		case event := <-b.inbox:
			b.write(ctx, event)
		default:
			return
		}
	}
}

func (b *Buffered) write(ctx context.Context, event domain.AuditEvent) {
	if err := b.sink.Record(ctx, event); err != nil {
		b.metrics.IncAuditFailures()
		b.logger.WarnContext(ctx, "audit sink write failed",
			"event", "audit_sink_failed",
			"action", string(event.Action),
			"error", err.Error(),
		)
	}
}

var _ ports.AuditTrail = (*Buffered)(nil)
