package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type voteRepository struct {
	db         *sql.DB
	newReceipt ports.ReceiptGenerator
}

func NewVoteRepository(db *sql.DB) ports.VoteStore {
	return NewVoteRepositoryWithReceipts(db, domain.NewReceipt)
}

func NewVoteRepositoryWithReceipts(db *sql.DB, gen ports.ReceiptGenerator) ports.VoteStore {
	return &voteRepository{
		db:         db,
		newReceipt: gen,
	}
}

// Record retries with a fresh receipt on collision. ON CONFLICT keeps the
// enclosing transaction usable between attempts.
func (r *voteRepository) Record(ctx context.Context, electionID string, selections []domain.Selection, submittedAt time.Time) (string, error) {
	payload, err := json.Marshal(selections)
	if err != nil {
		return "", fmt.Errorf("failed to encode selections: %w", err)
	}

	query := `
		INSERT INTO anonymous_votes (receipt, election_id, selections, submitted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (receipt) DO NOTHING
	`
	db := execer(ctx, r.db)
	for attempt := 0; attempt < domain.MaxReceiptAttempts; attempt++ {
		receipt, err := r.newReceipt()
		if err != nil {
			return "", fmt.Errorf("failed to generate receipt: %w", err)
		}
		res, err := db.ExecContext(ctx, query, receipt, electionID, string(payload), submittedAt)
		if err != nil {
			return "", fmt.Errorf("failed to save vote: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("failed to save vote: %w", err)
		}
		if n == 1 {
			return receipt, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique receipt after %d attempts", domain.MaxReceiptAttempts)
}

// ListByElection streams rows from one statement, which Postgres evaluates
// against a single snapshot.
func (r *voteRepository) ListByElection(ctx context.Context, electionID string) iter.Seq2[domain.AnonymousVote, error] {
	return func(yield func(domain.AnonymousVote, error) bool) {
		query := `
			SELECT receipt, election_id, selections, submitted_at
			FROM anonymous_votes
			WHERE election_id = $1
		`
		rows, err := execer(ctx, r.db).QueryContext(ctx, query, electionID)
		if err != nil {
			yield(domain.AnonymousVote{}, fmt.Errorf("failed to list votes: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				v       domain.AnonymousVote
				payload []byte
			)
			if err := rows.Scan(&v.Receipt, &v.ElectionID, &payload, &v.SubmittedAt); err != nil {
				yield(domain.AnonymousVote{}, fmt.Errorf("failed to scan vote: %w", err))
				return
			}
			if err := json.Unmarshal(payload, &v.Selections); err != nil {
				yield(domain.AnonymousVote{}, fmt.Errorf("failed to decode selections: %w", err))
				return
			}
			v.SubmittedAt = v.SubmittedAt.UTC()
			if !yield(v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.AnonymousVote{}, fmt.Errorf("error iterating votes: %w", err))
		}
	}
}

func (r *voteRepository) Exists(ctx context.Context, electionID, receipt string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM anonymous_votes WHERE election_id = $1 AND receipt = $2)`
	var exists bool
	if err := execer(ctx, r.db).QueryRowContext(ctx, query, electionID, receipt).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check receipt: %w", err)
	}
	return exists, nil
}

func (r *voteRepository) Count(ctx context.Context, electionID string) (int64, error) {
	query := `SELECT COUNT(*) FROM anonymous_votes WHERE election_id = $1`
	var n int64
	if err := execer(ctx, r.db).QueryRowContext(ctx, query, electionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}
