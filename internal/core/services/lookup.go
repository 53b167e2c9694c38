package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

// activeElection loads the current snapshot and checks that it is the
// election the caller addressed.
func activeElection(ctx context.Context, repo ports.ElectionRepository, op, electionID string) (*domain.Election, error) {
	election, err := repo.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(op, "no election is configured")
		}
		return nil, fmt.Errorf("failed to load election: %w", err)
	}
	if electionID != "" && election.ID != electionID {
		return nil, domain.NotFound(op, "election not found")
	}
	return election, nil
}

func requireAdmin(caller domain.Identity, op string) error {
	if !caller.IsAdmin() {
		return domain.NotAuthorized(op, "administrator role required")
	}
	return nil
}

func requireVoter(caller domain.Identity, op string) error {
	if caller.ID == "" {
		return domain.NotAuthorized(op, "a verified voter identity is required")
	}
	return nil
}
