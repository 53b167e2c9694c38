package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", AlreadyVoted("ballot.submit", "already voted"))

	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, KindAlreadyVoted, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "wrapped: ballot.submit: already_voted: already voted", err.Error())
}

func TestAuditActionValid(t *testing.T) {
	assert.True(t, ActionVoteSubmitted.Valid())
	assert.False(t, AuditAction("vote_changed").Valid())
}

func TestBallotAssignment_CheckNotVoted(t *testing.T) {
	a := BallotAssignment{VoterID: "v1", ElectionID: "E1"}
	assert.NoError(t, a.CheckNotVoted())

	votedAt := t0
	a.VotedAt = &votedAt
	assert.ErrorIs(t, a.CheckNotVoted(), ErrAlreadyVoted)
}
