//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type PostgresSuite struct {
	suite.Suite
	container testcontainers.Container
	db        *sql.DB

	elections ports.ElectionRepository
	ledger    ports.BallotLedger
	votes     ports.VoteStore
	audit     ports.AuditTrail
	tx        *Transactor
	now       time.Time
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = sql.Open("postgres", connStr)
	s.Require().NoError(err)
	s.Require().NoError(Migrate(ctx, s.db))

	s.elections = NewElectionRepository(s.db)
	s.ledger = NewBallotRepository(s.db)
	s.votes = NewVoteRepository(s.db)
	s.audit = NewAuditRepository(s.db)
	s.tx = NewTransactor(s.db)
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE election_snapshots, ballot_assignments, anonymous_votes, audit_log`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) election(version int64) *domain.Election {
	return &domain.Election{
		ID:      "E1",
		Name:    "Board",
		StartAt: s.now.Add(-time.Hour),
		EndAt:   s.now.Add(time.Hour),
		IsOpen:  true,
		Version: version,
		Contests: []domain.Contest{{
			ID: "C1", Title: "Chair", MaxSelections: 1,
			Candidates: []domain.Candidate{{ID: "A", Name: "Ada"}, {ID: "B", Name: "Bo"}},
		}},
	}
}

func (s *PostgresSuite) TestElectionSnapshots() {
	ctx := context.Background()

	_, err := s.elections.Current(ctx)
	s.ErrorIs(err, domain.ErrNotFound)

	s.Require().NoError(s.elections.Save(ctx, s.election(1)))
	s.ErrorIs(s.elections.Save(ctx, s.election(1)), domain.ErrConflict)
	s.ErrorIs(s.elections.Save(ctx, s.election(5)), domain.ErrConflict)

	current, err := s.elections.Current(ctx)
	s.Require().NoError(err)
	s.Equal("E1", current.ID)
	s.Equal(int64(1), current.Version)
	s.True(current.IsOpen)
	s.Equal([]string{"A", "B"}, []string{current.Contests[0].Candidates[0].ID, current.Contests[0].Candidates[1].ID})
}

func (s *PostgresSuite) TestEnsureAssigned_ConcurrentCreatesOne() {
	ctx := context.Background()
	const goroutines = 20

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.ledger.EnsureAssigned(ctx, "v1", "E1", s.now)
			s.NoError(err)
			if ok {
				created.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), created.Load())
}

func (s *PostgresSuite) TestSubmitTransaction_ExactlyOneWins() {
	ctx := context.Background()
	assignment, _, err := s.ledger.EnsureAssigned(ctx, "v1", "E1", s.now)
	s.Require().NoError(err)

	const goroutines = 10
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	sel := []domain.Selection{{ContestID: "C1", SelectedCandidateIDs: []string{"A"}}}
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
				if _, err := s.ledger.MarkVoted(ctx, assignment, s.now); err != nil {
					return err
				}
				_, err := s.votes.Record(ctx, "E1", sel, s.now.Truncate(time.Hour))
				return err
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrConflict):
				conflicts.Add(1)
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())

	voted, err := s.ledger.CountVoted(ctx, "E1")
	s.Require().NoError(err)
	recorded, err := s.votes.Count(ctx, "E1")
	s.Require().NoError(err)
	s.Equal(int64(1), voted)
	s.Equal(int64(1), recorded)
}

func (s *PostgresSuite) TestRunInTx_RollsBackBothWrites() {
	ctx := context.Background()
	assignment, _, err := s.ledger.EnsureAssigned(ctx, "v1", "E1", s.now)
	s.Require().NoError(err)

	boom := errors.New("boom")
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.MarkVoted(ctx, assignment, s.now); err != nil {
			return err
		}
		if _, err := s.votes.Record(ctx, "E1", nil, s.now); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	voted, err := s.ledger.CountVoted(ctx, "E1")
	s.Require().NoError(err)
	s.Zero(voted)
	recorded, err := s.votes.Count(ctx, "E1")
	s.Require().NoError(err)
	s.Zero(recorded)
}

func (s *PostgresSuite) TestRecord_RetriesReceiptCollisionInsideTx() {
	ctx := context.Background()
	receipts := []string{"taken", "taken", "fresh"}
	var calls int
	votes := NewVoteRepositoryWithReceipts(s.db, func() (string, error) {
		r := receipts[calls]
		calls++
		return r, nil
	})

	_, err := votes.Record(ctx, "E1", nil, s.now)
	s.Require().NoError(err)

	var receipt string
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		receipt, err = votes.Record(ctx, "E1", nil, s.now)
		return err
	})
	s.Require().NoError(err)
	s.Equal("fresh", receipt)

	found, err := votes.Exists(ctx, "E1", "fresh")
	s.Require().NoError(err)
	s.True(found)
}

func (s *PostgresSuite) TestListByElection_DecodesSelections() {
	ctx := context.Background()
	sel := []domain.Selection{{ContestID: "C1", SelectedCandidateIDs: []string{"A", "B"}}}
	for i := 0; i < 3; i++ {
		_, err := s.votes.Record(ctx, "E1", sel, s.now)
		s.Require().NoError(err)
	}
	_, err := s.votes.Record(ctx, "E2", sel, s.now)
	s.Require().NoError(err)

	var got []domain.AnonymousVote
	for v, err := range s.votes.ListByElection(ctx, "E1") {
		s.Require().NoError(err)
		got = append(got, v)
	}
	s.Require().Len(got, 3)
	s.Equal(sel, got[0].Selections)
	s.True(got[0].SubmittedAt.Equal(s.now))
}

func (s *PostgresSuite) TestElectionIDs() {
	ctx := context.Background()
	for _, id := range []string{"E2", "E1", "E2"} {
		_, _, err := s.ledger.EnsureAssigned(ctx, "v-"+id, id, s.now)
		s.Require().NoError(err)
	}
	ids, err := s.ledger.ElectionIDs(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"E1", "E2"}, ids)
}

func (s *PostgresSuite) TestAuditRecord() {
	ctx := context.Background()
	err := s.audit.Record(ctx, domain.AuditEvent{
		Actor:      "admin-1",
		Action:     domain.ActionElectionOpened,
		Details:    map[string]any{"election_id": "E1"},
		OccurredAt: s.now,
	})
	s.Require().NoError(err)

	var action string
	s.Require().NoError(s.db.QueryRow(`SELECT action FROM audit_log WHERE actor = 'admin-1'`).Scan(&action))
	s.Equal(string(domain.ActionElectionOpened), action)
}
