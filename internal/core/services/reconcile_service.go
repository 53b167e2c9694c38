package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const reconcileConcurrency = 4

type reconcileService struct {
	ledger ports.BallotLedger
	votes  ports.VoteStore
	clock  ports.Clock
	logger *slog.Logger
}

// NewReconcileService detects votes recorded without a completed
// assignment, and the reverse. With a transactional store both counts
// always agree; a mismatch means a partial write needs manual review.
func NewReconcileService(ledger ports.BallotLedger, votes ports.VoteStore, opts Options) ports.ReconcileService {
	opts = opts.withDefaults()
	return &reconcileService{
		ledger: ledger,
		votes:  votes,
		clock:  opts.Clock,
		logger: opts.Logger,
	}
}

func (s *reconcileService) Check(ctx context.Context, caller domain.Identity, electionID string) (*domain.ReconcileReport, error) {
	const op = "reconcile.check"
	if err := requireAdmin(caller, op); err != nil {
		return nil, err
	}
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return nil, domain.Validation(op, "election id is required")
	}
	return s.check(ctx, electionID)
}

// CheckAll reconciles every election the ledger knows about.
func (s *reconcileService) CheckAll(ctx context.Context, caller domain.Identity) ([]domain.ReconcileReport, error) {
	if err := requireAdmin(caller, "reconcile.check_all"); err != nil {
		return nil, err
	}
	ids, err := s.ledger.ElectionIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}

	var (
		mu      sync.Mutex
		reports = make([]domain.ReconcileReport, 0, len(ids))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			report, err := s.check(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			reports = append(reports, *report)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *reconcileService) check(ctx context.Context, electionID string) (*domain.ReconcileReport, error) {
	voted, err := s.ledger.CountVoted(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed assignments for %s: %w", electionID, err)
	}
	recorded, err := s.votes.Count(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes for %s: %w", electionID, err)
	}

	report := domain.NewReconcileReport(electionID, voted, recorded, s.clock.Now())
	if !report.Consistent {
		s.logger.WarnContext(ctx, "ledger and vote store disagree",
			"event", "reconcile_mismatch",
			"election_id", electionID,
			"voted_assignments", voted,
			"recorded_votes", recorded,
		)
	}
	return &report, nil
}
