package domain

import "time"

// AuditAction is the closed vocabulary of security-relevant actions.
type AuditAction string

const (
	ActionLoginFailed      AuditAction = "login_failed"
	ActionLoginSuccess     AuditAction = "login_success"
	ActionBallotRequested  AuditAction = "ballot_requested"
	ActionVoteSubmitted    AuditAction = "vote_submitted"
	ActionElectionSetup    AuditAction = "election_setup"
	ActionElectionOpened   AuditAction = "election_opened"
	ActionElectionClosed   AuditAction = "election_closed"
	ActionTallyRun         AuditAction = "tally_run"
	ActionResultsPublished AuditAction = "results_published"
	ActionAuthFailed       AuditAction = "auth_failed"
)

var auditActions = map[AuditAction]struct{}{
	ActionLoginFailed:      {},
	ActionLoginSuccess:     {},
	ActionBallotRequested:  {},
	ActionVoteSubmitted:    {},
	ActionElectionSetup:    {},
	ActionElectionOpened:   {},
	ActionElectionClosed:   {},
	ActionTallyRun:         {},
	ActionResultsPublished: {},
	ActionAuthFailed:       {},
}

func (a AuditAction) Valid() bool {
	_, ok := auditActions[a]
	return ok
}

// AnonymousActor is recorded when no verified identity is available.
const AnonymousActor = "anonymous"

type AuditEvent struct {
	Actor      string         `json:"actor"`
	Action     AuditAction    `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
