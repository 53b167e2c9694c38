package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

// BallotLedger enforces one assignment per (voter, election) through
// storage constraints, so it holds across processes.
type BallotLedger interface {
	// EnsureAssigned returns the existing assignment or creates one. A
	// concurrent loser reads the winner's record instead of failing.
	EnsureAssigned(ctx context.Context, voterID, electionID string, now time.Time) (domain.BallotAssignment, bool, error)
	// MarkVoted sets voted_at only while it is still null, returning
	// domain.ErrConflict when another submission completed first.
	MarkVoted(ctx context.Context, assignment domain.BallotAssignment, now time.Time) (domain.BallotAssignment, error)
	CountVoted(ctx context.Context, electionID string) (int64, error)
	// ElectionIDs lists every election that has ledger entries.
	ElectionIDs(ctx context.Context) ([]string, error)
}

type SubmitVoteInput struct {
	ElectionID string
	Selections []domain.Selection
}

type BallotService interface {
	RequestBallot(ctx context.Context, caller domain.Identity, electionID string) (*domain.Ballot, error)
	SubmitVote(ctx context.Context, caller domain.Identity, input SubmitVoteInput) (string, error)
	VerifyReceipt(ctx context.Context, electionID, receipt string) (bool, error)
}
