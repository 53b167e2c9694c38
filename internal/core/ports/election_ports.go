package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type ElectionRepository interface {
	// Current returns the newest election snapshot or domain.ErrNotFound.
	Current(ctx context.Context) (*domain.Election, error)
	// Save appends a snapshot. It fails with domain.ErrConflict unless
	// election.Version is exactly one more than the stored version.
	Save(ctx context.Context, election *domain.Election) error
}

type ContestInput struct {
	ID            string
	Title         string
	MaxSelections int
	Candidates    []CandidateInput
}

type CandidateInput struct {
	ID   string
	Name string
}

type SetupElectionInput struct {
	ID          string
	Name        string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Contests    []ContestInput
}

type ElectionService interface {
	Current(ctx context.Context) (*domain.Election, error)
	Setup(ctx context.Context, caller domain.Identity, input SetupElectionInput) (*domain.Election, error)
	Open(ctx context.Context, caller domain.Identity, electionID string) (*domain.Election, error)
	Close(ctx context.Context, caller domain.Identity, electionID string) (*domain.Election, error)
	Publish(ctx context.Context, caller domain.Identity, electionID string) (*domain.Election, error)
}
