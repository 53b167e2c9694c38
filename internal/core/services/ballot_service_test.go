package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/vncsmyrnk/ballot/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/core/ports/mocks"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
	"github.com/vncsmyrnk/ballot/internal/platform/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var (
	admin  = domain.Identity{ID: "admin-1", Role: domain.RoleAdmin}
	voterA = domain.Identity{ID: "v1", Role: domain.RoleVoter}
	voterB = domain.Identity{ID: "v2", Role: domain.RoleVoter}

	windowStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
)

func boardElection() ports.SetupElectionInput {
	return ports.SetupElectionInput{
		ID:      "E1",
		Name:    "Board",
		StartAt: windowStart,
		EndAt:   windowEnd,
		Contests: []ports.ContestInput{{
			ID: "C1", Title: "Chair", MaxSelections: 1,
			Candidates: []ports.CandidateInput{{ID: "A", Name: "Ada"}, {ID: "B", Name: "Bo"}},
		}},
	}
}

func choose(candidate string) ports.SubmitVoteInput {
	return ports.SubmitVoteInput{
		ElectionID: "E1",
		Selections: []domain.Selection{{ContestID: "C1", SelectedCandidateIDs: []string{candidate}}},
	}
}

type BallotServiceSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *fakeClock
	store     *memory.Store
	audit     *memory.AuditLog
	metrics   *metrics.Metrics
	elections ports.ElectionService
	ballots   ports.BallotService
	tally     ports.TallyService
}

func TestBallotServiceSuite(t *testing.T) {
	suite.Run(t, new(BallotServiceSuite))
}

func (s *BallotServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &fakeClock{now: windowStart.Add(12 * time.Hour)}
	s.store = memory.NewStore()
	s.audit = s.store.AuditLog()
	s.metrics = metrics.New(prometheus.NewRegistry())

	opts := Options{Clock: s.clock, Audit: s.audit, Metrics: s.metrics, VoteTimeGranularity: time.Hour}
	s.elections = NewElectionService(s.store, opts)
	s.ballots = NewBallotService(s.store, s.store, s.store, s.store, opts)
	s.tally = NewTallyService(s.store, s.store, opts)
}

func (s *BallotServiceSuite) openElection() {
	_, err := s.elections.Setup(s.ctx, admin, boardElection())
	s.Require().NoError(err)
	_, err = s.elections.Open(s.ctx, admin, "E1")
	s.Require().NoError(err)
}

func (s *BallotServiceSuite) TestRequestBallot_IsIdempotent() {
	s.openElection()

	first, err := s.ballots.RequestBallot(s.ctx, voterA, "E1")
	s.Require().NoError(err)
	s.Equal("E1", first.ElectionID)
	s.Len(first.Contests, 1)

	s.clock.Set(s.clock.Now().Add(time.Minute))
	second, err := s.ballots.RequestBallot(s.ctx, voterA, "E1")
	s.Require().NoError(err)
	s.Equal(first.Assignment.IssuedAt, second.Assignment.IssuedAt)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.BallotsIssued))
}

func (s *BallotServiceSuite) TestRequestBallot_OutsideWindowIsNotEligible() {
	s.openElection()

	s.clock.Set(windowEnd.Add(time.Second))
	_, err := s.ballots.RequestBallot(s.ctx, voterA, "E1")
	s.ErrorIs(err, domain.ErrNotEligible)

	s.clock.Set(windowStart.Add(-time.Second))
	_, err = s.ballots.RequestBallot(s.ctx, voterA, "E1")
	s.ErrorIs(err, domain.ErrNotEligible)
}

func (s *BallotServiceSuite) TestRequestBallot_ClosedElectionIsNotEligible() {
	_, err := s.elections.Setup(s.ctx, admin, boardElection())
	s.Require().NoError(err)

	_, err = s.ballots.RequestBallot(s.ctx, voterA, "E1")
	s.ErrorIs(err, domain.ErrNotEligible)
}

func (s *BallotServiceSuite) TestRequestBallot_UnknownElection() {
	_, err := s.ballots.RequestBallot(s.ctx, voterA, "E1")
	s.ErrorIs(err, domain.ErrNotFound)

	s.openElection()
	_, err = s.ballots.RequestBallot(s.ctx, voterA, "other")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *BallotServiceSuite) TestRequestBallot_AfterVotingIsAlreadyVoted() {
	s.openElection()
	_, err := s.ballots.SubmitVote(s.ctx, voterA, choose("A"))
	s.Require().NoError(err)

	_, err = s.ballots.RequestBallot(s.ctx, voterA, "E1")
	s.ErrorIs(err, domain.ErrAlreadyVoted)
}

func (s *BallotServiceSuite) TestRequestBallot_RequiresIdentity() {
	s.openElection()
	_, err := s.ballots.RequestBallot(s.ctx, domain.Identity{}, "E1")
	s.ErrorIs(err, domain.ErrNotAuthorized)
}

func (s *BallotServiceSuite) TestSubmitVote_SecondSubmissionRejected() {
	s.openElection()

	receipt, err := s.ballots.SubmitVote(s.ctx, voterA, choose("A"))
	s.Require().NoError(err)
	s.NotEmpty(receipt)

	_, err = s.ballots.SubmitVote(s.ctx, voterA, choose("B"))
	s.ErrorIs(err, domain.ErrAlreadyVoted)

	n, err := s.store.Count(s.ctx, "E1")
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *BallotServiceSuite) TestSubmitVote_InvalidSelectionsWriteNothing() {
	s.openElection()

	_, err := s.ballots.SubmitVote(s.ctx, voterA, ports.SubmitVoteInput{
		ElectionID: "E1",
		Selections: []domain.Selection{{ContestID: "C1", SelectedCandidateIDs: []string{"A", "B"}}},
	})
	s.ErrorIs(err, domain.ErrValidation)

	voted, err := s.store.CountVoted(s.ctx, "E1")
	s.Require().NoError(err)
	s.Zero(voted)
}

func (s *BallotServiceSuite) TestSubmitVote_ConcurrentSubmissionsRecordOne() {
	s.openElection()

	const attempts = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		receipts []string
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := s.ballots.SubmitVote(s.ctx, voterA, choose("A"))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.ErrorIs(err, domain.ErrAlreadyVoted)
				rejected++
				return
			}
			receipts = append(receipts, receipt)
		}()
	}
	wg.Wait()

	s.Len(receipts, 1)
	s.Equal(attempts-1, rejected)
	n, err := s.store.Count(s.ctx, "E1")
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *BallotServiceSuite) TestSubmitVote_StoresCoarseTimestampAndNoVoter() {
	s.openElection()
	s.clock.Set(windowStart.Add(12*time.Hour + 34*time.Minute))

	receipt, err := s.ballots.SubmitVote(s.ctx, voterA, choose("A"))
	s.Require().NoError(err)

	for v, err := range s.store.ListByElection(s.ctx, "E1") {
		s.Require().NoError(err)
		s.Equal(receipt, v.Receipt)
		s.Equal(windowStart.Add(12*time.Hour), v.SubmittedAt)
	}

	for _, event := range s.audit.Events() {
		if event.Action == domain.ActionVoteSubmitted {
			s.NotContains(event.Details, "receipt")
			for _, value := range event.Details {
				s.NotEqual(receipt, value)
			}
		}
	}
}

func (s *BallotServiceSuite) TestVerifyReceipt() {
	s.openElection()
	receipt, err := s.ballots.SubmitVote(s.ctx, voterA, choose("A"))
	s.Require().NoError(err)

	found, err := s.ballots.VerifyReceipt(s.ctx, "E1", receipt)
	s.Require().NoError(err)
	s.True(found)

	found, err = s.ballots.VerifyReceipt(s.ctx, "E1", "unknown")
	s.Require().NoError(err)
	s.False(found)

	_, err = s.ballots.VerifyReceipt(s.ctx, "E1", " ")
	s.ErrorIs(err, domain.ErrValidation)
}

// Two voters, one contest: A gets one vote and B gets one.
func (s *BallotServiceSuite) TestEndToEndScenario() {
	s.openElection()

	_, err := s.ballots.RequestBallot(s.ctx, voterA, "E1")
	s.Require().NoError(err)
	_, err = s.ballots.RequestBallot(s.ctx, voterB, "E1")
	s.Require().NoError(err)
	_, err = s.ballots.SubmitVote(s.ctx, voterA, choose("A"))
	s.Require().NoError(err)
	_, err = s.ballots.SubmitVote(s.ctx, voterB, choose("B"))
	s.Require().NoError(err)

	_, err = s.tally.ViewResults(s.ctx, "E1")
	s.ErrorIs(err, domain.ErrPrecondition)

	_, err = s.elections.Close(s.ctx, admin, "E1")
	s.Require().NoError(err)
	_, err = s.elections.Publish(s.ctx, admin, "E1")
	s.ErrorIs(err, domain.ErrPrecondition)

	_, err = s.tally.RunTally(s.ctx, voterA, "E1")
	s.ErrorIs(err, domain.ErrNotAuthorized)

	result, err := s.tally.RunTally(s.ctx, admin, "E1")
	s.Require().NoError(err)
	s.Equal(map[string]map[string]int64{"C1": {"A": 1, "B": 1}}, result.Counts)

	// A tally run does not disclose results before publication.
	_, err = s.tally.ViewResults(s.ctx, "E1")
	s.ErrorIs(err, domain.ErrPrecondition)

	_, err = s.elections.Publish(s.ctx, admin, "E1")
	s.Require().NoError(err)

	published, err := s.tally.ViewResults(s.ctx, "E1")
	s.Require().NoError(err)
	s.Equal(result.Counts, published.Counts)
	s.Equal(int64(2), published.BallotsCounted)

	_, err = s.ballots.SubmitVote(s.ctx, domain.Identity{ID: "late"}, choose("A"))
	s.ErrorIs(err, domain.ErrNotEligible)

	actions := make([]domain.AuditAction, 0)
	for _, e := range s.audit.Events() {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, domain.ActionElectionSetup)
	s.Contains(actions, domain.ActionBallotRequested)
	s.Contains(actions, domain.ActionVoteSubmitted)
	s.Contains(actions, domain.ActionTallyRun)
	s.Contains(actions, domain.ActionResultsPublished)
}

func TestSubmitVote_AuditFailureDoesNotFailVote(t *testing.T) {
	ctrl := gomock.NewController(t)
	trail := mocks.NewMockAuditTrail(ctrl)
	trail.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("audit down")).AnyTimes()

	var logs bytes.Buffer
	store := memory.NewStore()
	opts := Options{
		Clock:  &fakeClock{now: windowStart.Add(time.Hour)},
		Audit:  trail,
		Logger: logger.NewWithWriter(&logs, "info"),
	}
	elections := NewElectionService(store, opts)
	ballots := NewBallotService(store, store, store, store, opts)

	ctx := context.Background()
	_, err := elections.Setup(ctx, admin, boardElection())
	require.NoError(t, err)
	_, err = elections.Open(ctx, admin, "E1")
	require.NoError(t, err)

	receipt, err := ballots.SubmitVote(ctx, voterA, choose("A"))
	require.NoError(t, err)
	assert.NotEmpty(t, receipt)
	assert.Contains(t, logs.String(), "audit_record_failed")
}

func TestSubmitVote_RecordFailureRollsBackCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	votes := mocks.NewMockVoteStore(ctrl)
	votes.EXPECT().Record(gomock.Any(), "E1", gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))

	opts := Options{Clock: &fakeClock{now: windowStart.Add(time.Hour)}}
	elections := NewElectionService(store, opts)
	ballots := NewBallotService(store, store, votes, store, opts)

	ctx := context.Background()
	_, err := elections.Setup(ctx, admin, boardElection())
	require.NoError(t, err)
	_, err = elections.Open(ctx, admin, "E1")
	require.NoError(t, err)

	_, err = ballots.SubmitVote(ctx, voterA, choose("A"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	voted, err := store.CountVoted(ctx, "E1")
	require.NoError(t, err)
	assert.Zero(t, voted, "the completion must roll back with the failed vote")
}

func TestRequestBallot_ConcurrentCallersShareAssignment(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := memory.NewStore()
	ledger := mocks.NewMockBallotLedger(ctrl)
	ledger.EXPECT().
		EnsureAssigned(gomock.Any(), "v1", "E1", gomock.Any()).
		DoAndReturn(store.EnsureAssigned).
		Times(8)

	opts := Options{Clock: &fakeClock{now: windowStart.Add(time.Hour)}}
	elections := NewElectionService(store, opts)
	ballots := NewBallotService(store, ledger, store, store, opts)

	ctx := context.Background()
	_, err := elections.Setup(ctx, admin, boardElection())
	require.NoError(t, err)
	_, err = elections.Open(ctx, admin, "E1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	issued := make(chan time.Time, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := ballots.RequestBallot(ctx, voterA, "E1")
			assert.NoError(t, err)
			if b != nil {
				issued <- b.Assignment.IssuedAt
			}
		}()
	}
	wg.Wait()
	close(issued)

	var first time.Time
	for at := range issued {
		if first.IsZero() {
			first = at
		}
		assert.Equal(t, first, at)
	}
	ids, err := store.ElectionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"E1"}, ids)
}
