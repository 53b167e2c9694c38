package ports

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

// AuditTrail is write-only. Callers treat failures as non-fatal.
type AuditTrail interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}
