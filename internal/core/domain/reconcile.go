package domain

import "time"

// ReconcileReport compares completed ballot assignments with stored votes
// for one election. Orphaned counts votes with no completed assignment,
// Missing counts completed assignments with no vote.
type ReconcileReport struct {
	ElectionID       string    `json:"election_id"`
	VotedAssignments int64     `json:"voted_assignments"`
	RecordedVotes    int64     `json:"recorded_votes"`
	Orphaned         int64     `json:"orphaned"`
	Missing          int64     `json:"missing"`
	Consistent       bool      `json:"consistent"`
	CheckedAt        time.Time `json:"checked_at"`
}

func NewReconcileReport(electionID string, voted, recorded int64, now time.Time) ReconcileReport {
	r := ReconcileReport{
		ElectionID:       electionID,
		VotedAssignments: voted,
		RecordedVotes:    recorded,
		CheckedAt:        now,
	}
	if recorded > voted {
		r.Orphaned = recorded - voted
	}
	if voted > recorded {
		r.Missing = voted - recorded
	}
	r.Consistent = r.Orphaned == 0 && r.Missing == 0
	return r
}
