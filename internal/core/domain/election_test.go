package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0    = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	t1    = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	setup = SetupElectionInput{
		ID:      "E1",
		Name:    "Board",
		StartAt: t0,
		EndAt:   t1,
		Contests: []Contest{{
			ID: "C1", Title: "Chair", MaxSelections: 1,
			Candidates: []Candidate{{ID: "A", Name: "Ada"}, {ID: "B", Name: "Bo"}},
		}},
	}
)

func mustElection(t *testing.T) *Election {
	t.Helper()
	e, err := NewElection(setup, nil, t0)
	require.NoError(t, err)
	return e
}

func TestNewElection_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *SetupElectionInput)
	}{
		{"missing id", func(in *SetupElectionInput) { in.ID = " " }},
		{"missing name", func(in *SetupElectionInput) { in.Name = "" }},
		{"empty window", func(in *SetupElectionInput) { in.EndAt = in.StartAt }},
		{"no contests", func(in *SetupElectionInput) { in.Contests = nil }},
		{"zero max selections", func(in *SetupElectionInput) {
			in.Contests = []Contest{{ID: "C1", MaxSelections: 0, Candidates: []Candidate{{ID: "A"}}}}
		}},
		{"no candidates", func(in *SetupElectionInput) {
			in.Contests = []Contest{{ID: "C1", MaxSelections: 1}}
		}},
		{"duplicate contest", func(in *SetupElectionInput) {
			c := Contest{ID: "C1", MaxSelections: 1, Candidates: []Candidate{{ID: "A"}}}
			in.Contests = []Contest{c, c}
		}},
		{"duplicate candidate", func(in *SetupElectionInput) {
			in.Contests = []Contest{{ID: "C1", MaxSelections: 1, Candidates: []Candidate{{ID: "A"}, {ID: "A"}}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := setup
			tt.mutate(&in)
			_, err := NewElection(in, nil, t0)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNewElection_VersionContinuesPrevious(t *testing.T) {
	first := mustElection(t)
	assert.Equal(t, int64(1), first.Version)
	assert.False(t, first.IsOpen)

	second, err := NewElection(setup, first, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)

	open, err := second.Open(t0)
	require.NoError(t, err)
	_, err = NewElection(setup, open, t0)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestIsAcceptingBallots_Boundaries(t *testing.T) {
	e, err := mustElection(t).Open(t0)
	require.NoError(t, err)

	assert.False(t, e.IsAcceptingBallots(t0.Add(-time.Nanosecond)))
	assert.True(t, e.IsAcceptingBallots(t0))
	assert.True(t, e.IsAcceptingBallots(t1))
	assert.False(t, e.IsAcceptingBallots(t1.Add(time.Nanosecond)))

	closed := mustElection(t)
	assert.False(t, closed.IsAcceptingBallots(t0.Add(time.Hour)))
}

func TestValidateSelections(t *testing.T) {
	e := mustElection(t)
	tests := []struct {
		name    string
		sel     []Selection
		wantErr bool
	}{
		{"single choice", []Selection{{ContestID: "C1", SelectedCandidateIDs: []string{"A"}}}, false},
		{"abstain in contest", []Selection{{ContestID: "C1"}}, false},
		{"abstain entirely", nil, false},
		{"too many", []Selection{{ContestID: "C1", SelectedCandidateIDs: []string{"A", "B"}}}, true},
		{"unknown contest", []Selection{{ContestID: "C9", SelectedCandidateIDs: []string{"A"}}}, true},
		{"unknown candidate", []Selection{{ContestID: "C1", SelectedCandidateIDs: []string{"Z"}}}, true},
		{"repeated contest", []Selection{{ContestID: "C1"}, {ContestID: "C1"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.ValidateSelections(tt.sel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTransitions(t *testing.T) {
	e := mustElection(t)

	_, err := e.Close(t0)
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = e.Publish(t0)
	assert.ErrorIs(t, err, ErrPrecondition)

	open, err := e.Open(t0)
	require.NoError(t, err)
	assert.Equal(t, e.Version+1, open.Version)
	assert.False(t, e.IsOpen, "transitions must not mutate the receiver")

	_, err = open.Open(t0)
	assert.ErrorIs(t, err, ErrPrecondition)

	closedAt := t0.Add(2 * time.Hour)
	closed, err := open.Close(closedAt)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)

	_, err = closed.Publish(closedAt)
	assert.ErrorIs(t, err, ErrPrecondition, "publishing needs a tally")

	stale := closed.MarkTallied(closedAt.Add(-time.Minute))
	_, err = stale.Publish(closedAt)
	assert.ErrorIs(t, err, ErrPrecondition, "a tally from before closing does not count")

	tallied := closed.MarkTallied(closedAt)
	published, err := tallied.Publish(closedAt)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	_, err = published.Open(closedAt)
	assert.ErrorIs(t, err, ErrPrecondition)
	_, err = published.Publish(closedAt)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestOpen_ClearsTallyMarker(t *testing.T) {
	open, err := mustElection(t).Open(t0)
	require.NoError(t, err)
	closed, err := open.Close(t0)
	require.NoError(t, err)
	tallied := closed.MarkTallied(t0)

	reopened, err := tallied.Open(t0)
	require.NoError(t, err)
	assert.Nil(t, reopened.TalliedAt)
	assert.Nil(t, reopened.ClosedAt)
}
