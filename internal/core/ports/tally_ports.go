package ports

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type TallyService interface {
	RunTally(ctx context.Context, caller domain.Identity, electionID string) (*domain.TallyResult, error)
	ViewResults(ctx context.Context, electionID string) (*domain.TallyResult, error)
}

type ReconcileService interface {
	Check(ctx context.Context, caller domain.Identity, electionID string) (*domain.ReconcileReport, error)
	CheckAll(ctx context.Context, caller domain.Identity) ([]domain.ReconcileReport, error)
}
