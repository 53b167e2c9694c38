package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/metrics"
)

type ballotService struct {
	elections   ports.ElectionRepository
	ledger      ports.BallotLedger
	votes       ports.VoteStore
	tx          ports.Transactor
	audit       auditor
	clock       ports.Clock
	logger      *slog.Logger
	metrics     *metrics.Metrics
	granularity time.Duration
}

// NewBallotService serves voters. elections may be a cached read path; a
// few seconds of staleness on the open flag is acceptable here.
func NewBallotService(
	elections ports.ElectionRepository,
	ledger ports.BallotLedger,
	votes ports.VoteStore,
	tx ports.Transactor,
	opts Options,
) ports.BallotService {
	opts = opts.withDefaults()
	return &ballotService{
		elections:   elections,
		ledger:      ledger,
		votes:       votes,
		tx:          tx,
		audit:       newAuditor(opts),
		clock:       opts.Clock,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		granularity: opts.VoteTimeGranularity,
	}
}

func (s *ballotService) RequestBallot(ctx context.Context, caller domain.Identity, electionID string) (*domain.Ballot, error) {
	const op = "ballot.request"
	if err := requireVoter(caller, op); err != nil {
		return nil, err
	}

	election, now, err := s.eligibleElection(ctx, op, electionID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.ensureAssigned(ctx, caller.ID, election.ID, now)
	if err != nil {
		return nil, err
	}
	if err := assignment.CheckNotVoted(); err != nil {
		return nil, err
	}

	s.audit.record(ctx, caller.Actor(), domain.ActionBallotRequested, map[string]any{
		"election_id": election.ID,
	})

	return &domain.Ballot{
		ElectionID: election.ID,
		Name:       election.Name,
		EndAt:      election.EndAt,
		Contests:   election.Contests,
		Assignment: assignment,
	}, nil
}

// SubmitVote completes the voter's assignment and records the anonymous
// vote in one transaction. MarkVoted runs first so a lost completion race
// rolls back before any vote is written.
func (s *ballotService) SubmitVote(ctx context.Context, caller domain.Identity, input ports.SubmitVoteInput) (string, error) {
	const op = "ballot.submit"
	start := time.Now()
	defer s.metrics.ObserveSubmit(start)

	if err := requireVoter(caller, op); err != nil {
		return "", err
	}

	election, now, err := s.eligibleElection(ctx, op, input.ElectionID)
	if err != nil {
		return "", err
	}
	selections := normalizeSelections(input.Selections)
	if err := election.ValidateSelections(selections); err != nil {
		return "", err
	}

	assignment, err := s.ensureAssigned(ctx, caller.ID, election.ID, now)
	if err != nil {
		return "", err
	}
	if err := assignment.CheckNotVoted(); err != nil {
		return "", err
	}

	var receipt string
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.MarkVoted(ctx, assignment, now); err != nil {
			return err
		}
		r, err := s.votes.Record(ctx, election.ID, selections, domain.CoarsenSubmittedAt(now, s.granularity))
		if err != nil {
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.IncVoteConflicts()
			s.logger.InfoContext(ctx, "concurrent submission lost completion race",
				"event", "ballot_submit_conflict",
				"election_id", election.ID,
			)
			return "", domain.AlreadyVoted(op, "a vote has already been submitted for this election")
		}
		s.logger.ErrorContext(ctx, "vote submission failed",
			"event", "ballot_submit_failed",
			"election_id", election.ID,
			"error", err.Error(),
		)
		return "", fmt.Errorf("failed to submit vote: %w", err)
	}

	s.metrics.IncVotesSubmitted()
	s.audit.record(ctx, caller.Actor(), domain.ActionVoteSubmitted, map[string]any{
		"election_id": election.ID,
	})
	return receipt, nil
}

func (s *ballotService) VerifyReceipt(ctx context.Context, electionID, receipt string) (bool, error) {
	const op = "ballot.verify_receipt"
	electionID = strings.TrimSpace(electionID)
	receipt = strings.TrimSpace(receipt)
	if electionID == "" || receipt == "" {
		return false, domain.Validation(op, "election id and receipt are required")
	}
	found, err := s.votes.Exists(ctx, electionID, receipt)
	if err != nil {
		return false, fmt.Errorf("failed to look up receipt: %w", err)
	}
	return found, nil
}

func (s *ballotService) eligibleElection(ctx context.Context, op, electionID string) (*domain.Election, time.Time, error) {
	election, err := activeElection(ctx, s.elections, op, electionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	now := s.clock.Now()
	if !election.IsAcceptingBallots(now) {
		return nil, time.Time{}, domain.NotEligible(op, "the election is not accepting ballots")
	}
	return election, now, nil
}

func (s *ballotService) ensureAssigned(ctx context.Context, voterID, electionID string, now time.Time) (domain.BallotAssignment, error) {
	assignment, created, err := s.ledger.EnsureAssigned(ctx, voterID, electionID, now)
	if err != nil {
		return domain.BallotAssignment{}, fmt.Errorf("failed to assign ballot: %w", err)
	}
	if created {
		s.metrics.IncBallotsIssued()
	}
	return assignment, nil
}

func normalizeSelections(in []domain.Selection) []domain.Selection {
	out := make([]domain.Selection, 0, len(in))
	for _, sel := range in {
		ids := make([]string, 0, len(sel.SelectedCandidateIDs))
		for _, id := range sel.SelectedCandidateIDs {
			ids = append(ids, strings.TrimSpace(id))
		}
		out = append(out, domain.Selection{
			ContestID:            strings.TrimSpace(sel.ContestID),
			SelectedCandidateIDs: ids,
		})
	}
	return out
}
