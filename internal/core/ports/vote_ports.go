package ports

import (
	"context"
	"iter"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

// VoteStore is append-only. Records carry no voter identity.
type VoteStore interface {
	// Record persists an anonymous vote under a fresh receipt and returns
	// the receipt, regenerating it on the rare uniqueness collision.
	Record(ctx context.Context, electionID string, selections []domain.Selection, submittedAt time.Time) (string, error)
	// ListByElection streams a consistent snapshot of the election's votes.
	ListByElection(ctx context.Context, electionID string) iter.Seq2[domain.AnonymousVote, error]
	Exists(ctx context.Context, electionID, receipt string) (bool, error)
	Count(ctx context.Context, electionID string) (int64, error)
}

// ReceiptGenerator produces vote receipts. domain.NewReceipt is the
// default.
type ReceiptGenerator func() (string, error)
