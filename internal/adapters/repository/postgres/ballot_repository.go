package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type ballotRepository struct {
	db *sql.DB
}

func NewBallotRepository(db *sql.DB) ports.BallotLedger {
	return &ballotRepository{
		db: db,
	}
}

// EnsureAssigned relies on the (voter_id, election_id) primary key: racing
// callers all reach the SELECT and read the single winning row.
func (r *ballotRepository) EnsureAssigned(ctx context.Context, voterID, electionID string, now time.Time) (domain.BallotAssignment, bool, error) {
	db := execer(ctx, r.db)

	insert := `
		INSERT INTO ballot_assignments (voter_id, election_id, issued_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (voter_id, election_id) DO NOTHING
	`
	res, err := db.ExecContext(ctx, insert, voterID, electionID, now)
	if err != nil {
		return domain.BallotAssignment{}, false, fmt.Errorf("failed to insert ballot assignment: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return domain.BallotAssignment{}, false, fmt.Errorf("failed to insert ballot assignment: %w", err)
	}

	a, err := r.get(ctx, db, voterID, electionID)
	if err != nil {
		return domain.BallotAssignment{}, false, err
	}
	return a, inserted == 1, nil
}

func (r *ballotRepository) MarkVoted(ctx context.Context, assignment domain.BallotAssignment, now time.Time) (domain.BallotAssignment, error) {
	db := execer(ctx, r.db)

	query := `
		UPDATE ballot_assignments
		SET voted_at = $3
		WHERE voter_id = $1 AND election_id = $2 AND voted_at IS NULL
	`
	res, err := db.ExecContext(ctx, query, assignment.VoterID, assignment.ElectionID, now)
	if err != nil {
		return domain.BallotAssignment{}, fmt.Errorf("failed to mark ballot voted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.BallotAssignment{}, fmt.Errorf("failed to mark ballot voted: %w", err)
	}
	if n == 0 {
		if _, err := r.get(ctx, db, assignment.VoterID, assignment.ElectionID); err != nil {
			return domain.BallotAssignment{}, err
		}
		return domain.BallotAssignment{}, domain.Conflict("ledger.mark_voted", "assignment already completed")
	}

	votedAt := now
	assignment.VotedAt = &votedAt
	return assignment, nil
}

func (r *ballotRepository) CountVoted(ctx context.Context, electionID string) (int64, error) {
	query := `SELECT COUNT(*) FROM ballot_assignments WHERE election_id = $1 AND voted_at IS NOT NULL`
	var n int64
	if err := execer(ctx, r.db).QueryRowContext(ctx, query, electionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count completed assignments: %w", err)
	}
	return n, nil
}

func (r *ballotRepository) ElectionIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT election_id FROM ballot_assignments ORDER BY election_id`
	rows, err := execer(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list elections: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan election id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating elections: %w", err)
	}
	return ids, nil
}

func (r *ballotRepository) get(ctx context.Context, db dbExecutor, voterID, electionID string) (domain.BallotAssignment, error) {
	query := `
		SELECT voter_id, election_id, issued_at, voted_at
		FROM ballot_assignments
		WHERE voter_id = $1 AND election_id = $2
	`
	var (
		a       domain.BallotAssignment
		votedAt sql.NullTime
	)
	err := db.QueryRowContext(ctx, query, voterID, electionID).Scan(&a.VoterID, &a.ElectionID, &a.IssuedAt, &votedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BallotAssignment{}, domain.NotFound("ledger.get", "ballot assignment not found")
		}
		return domain.BallotAssignment{}, fmt.Errorf("failed to get ballot assignment: %w", err)
	}
	a.IssuedAt = a.IssuedAt.UTC()
	if votedAt.Valid {
		t := votedAt.Time.UTC()
		a.VotedAt = &t
	}
	return a, nil
}
