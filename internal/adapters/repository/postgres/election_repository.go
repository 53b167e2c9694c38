package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type electionRepository struct {
	db *sql.DB
}

// NewElectionRepository stores each election snapshot as its own row keyed
// by version, so a stale write hits the primary key.
func NewElectionRepository(db *sql.DB) ports.ElectionRepository {
	return &electionRepository{
		db: db,
	}
}

func (r *electionRepository) Current(ctx context.Context) (*domain.Election, error) {
	query := `
		SELECT payload
		FROM election_snapshots
		ORDER BY version DESC
		LIMIT 1
	`
	var payload []byte
	err := execer(ctx, r.db).QueryRowContext(ctx, query).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get current election: %w", err)
	}

	var election domain.Election
	if err := json.Unmarshal(payload, &election); err != nil {
		return nil, fmt.Errorf("failed to decode election snapshot: %w", err)
	}
	return &election, nil
}

func (r *electionRepository) Save(ctx context.Context, election *domain.Election) error {
	payload, err := json.Marshal(election)
	if err != nil {
		return fmt.Errorf("failed to encode election snapshot: %w", err)
	}

	query := `
		INSERT INTO election_snapshots (version, election_id, payload)
		SELECT $1::bigint, $2::text, $3::jsonb
		WHERE COALESCE((SELECT MAX(version) FROM election_snapshots), 0) = $1::bigint - 1
	`
	res, err := execer(ctx, r.db).ExecContext(ctx, query, election.Version, election.ID, string(payload))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("election.save", "election was modified concurrently")
		}
		return fmt.Errorf("failed to save election: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save election: %w", err)
	}
	if n == 0 {
		return domain.Conflict("election.save", fmt.Sprintf("stale election version %d", election.Version))
	}
	return nil
}
