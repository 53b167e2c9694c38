package domain

import "time"

// BallotAssignment records that a voter may vote once in an election.
// VotedAt is set exactly once and never cleared.
type BallotAssignment struct {
	VoterID    string     `json:"voter_id"`
	ElectionID string     `json:"election_id"`
	IssuedAt   time.Time  `json:"issued_at"`
	VotedAt    *time.Time `json:"voted_at,omitempty"`
}

func (a BallotAssignment) HasVoted() bool {
	return a.VotedAt != nil
}

func (a BallotAssignment) CheckNotVoted() error {
	if a.HasVoted() {
		return AlreadyVoted("ballot.check_not_voted", "a vote has already been submitted for this election")
	}
	return nil
}

// Ballot is what a voter receives from a ballot request: the contest schema
// and their assignment.
type Ballot struct {
	ElectionID string           `json:"election_id"`
	Name       string           `json:"name"`
	EndAt      time.Time        `json:"end_at"`
	Contests   []Contest        `json:"contests"`
	Assignment BallotAssignment `json:"assignment"`
}
