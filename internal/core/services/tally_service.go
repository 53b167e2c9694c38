package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/metrics"
)

type tallyService struct {
	elections ports.ElectionRepository
	votes     ports.VoteStore
	audit     auditor
	clock     ports.Clock
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewTallyService(elections ports.ElectionRepository, votes ports.VoteStore, opts Options) ports.TallyService {
	opts = opts.withDefaults()
	return &tallyService{
		elections: elections,
		votes:     votes,
		audit:     newAuditor(opts),
		clock:     opts.Clock,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// RunTally computes the current counts and records the tally time on a new
// election snapshot, which publishing later requires.
func (s *tallyService) RunTally(ctx context.Context, caller domain.Identity, electionID string) (*domain.TallyResult, error) {
	const op = "tally.run"
	if err := requireAdmin(caller, op); err != nil {
		return nil, err
	}
	election, err := activeElection(ctx, s.elections, op, electionID)
	if err != nil {
		return nil, err
	}

	result, err := s.compute(ctx, election)
	if err != nil {
		return nil, err
	}

	if err := s.elections.Save(ctx, election.MarkTallied(result.ComputedAt)); err != nil {
		return nil, fmt.Errorf("failed to record tally: %w", err)
	}

	s.logger.InfoContext(ctx, "tally computed",
		"event", "tally_run",
		"election_id", election.ID,
		"ballots_counted", result.BallotsCounted,
	)
	s.audit.record(ctx, caller.Actor(), domain.ActionTallyRun, map[string]any{
		"election_id":     election.ID,
		"ballots_counted": result.BallotsCounted,
	})
	return result, nil
}

func (s *tallyService) ViewResults(ctx context.Context, electionID string) (*domain.TallyResult, error) {
	const op = "tally.view_results"
	election, err := activeElection(ctx, s.elections, op, electionID)
	if err != nil {
		return nil, err
	}
	if !election.IsPublished {
		return nil, domain.Precondition(op, "results have not been published")
	}
	return s.compute(ctx, election)
}

func (s *tallyService) compute(ctx context.Context, election *domain.Election) (*domain.TallyResult, error) {
	start := time.Now()
	defer s.metrics.ObserveTally(start)

	tally := domain.NewTally(election)
	for vote, err := range s.votes.ListByElection(ctx, election.ID) {
		if err != nil {
			return nil, fmt.Errorf("failed to read votes for election %s: %w", election.ID, err)
		}
		tally.Add(vote)
	}
	result := tally.Result(s.clock.Now())
	return &result, nil
}
