package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) ports.AuditTrail {
	return &auditRepository{
		db: db,
	}
}

func (r *auditRepository) Record(ctx context.Context, event domain.AuditEvent) error {
	var details sql.NullString
	if len(event.Details) > 0 {
		b, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = sql.NullString{String: string(b), Valid: true}
	}

	query := `
		INSERT INTO audit_log (id, actor, action, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := execer(ctx, r.db).ExecContext(ctx, query, uuid.New(), event.Actor, string(event.Action), details, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}
