package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the ballot and tally paths. A nil *Metrics is valid and
// records nothing, which keeps tests free of registry setup.
type Metrics struct {
	BallotsIssued  prometheus.Counter
	VotesSubmitted prometheus.Counter
	VoteConflicts  prometheus.Counter
	SubmitDuration prometheus.Histogram
	TallyDuration  prometheus.Histogram
	AuditDropped   prometheus.Counter
	AuditFailures  prometheus.Counter
}

// New registers all metrics with reg. Pass prometheus.DefaultRegisterer in
// main and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BallotsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_assignments_created_total",
			Help: "Total number of ballot assignments created",
		}),
		VotesSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_votes_submitted_total",
			Help: "Total number of anonymous votes recorded",
		}),
		VoteConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_vote_conflicts_total",
			Help: "Submissions that lost the vote-completion race",
		}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballot_submit_duration_seconds",
			Help:    "Duration of SubmitVote calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		TallyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballot_tally_duration_seconds",
			Help:    "Duration of tally computations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		}),
		AuditFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_audit_write_failures_total",
			Help: "Audit events the sink failed to persist",
		}),
	}
}

func (m *Metrics) IncBallotsIssued() {
	if m == nil {
		return
	}
	m.BallotsIssued.Inc()
}

func (m *Metrics) IncVotesSubmitted() {
	if m == nil {
		return
	}
	m.VotesSubmitted.Inc()
}

func (m *Metrics) IncVoteConflicts() {
	if m == nil {
		return
	}
	m.VoteConflicts.Inc()
}

func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropped.Inc()
}

func (m *Metrics) IncAuditFailures() {
	if m == nil {
		return
	}
	m.AuditFailures.Inc()
}

// ObserveSubmit records the duration since start.
func (m *Metrics) ObserveSubmit(start time.Time) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveTally(start time.Time) {
	if m == nil {
		return
	}
	m.TallyDuration.Observe(time.Since(start).Seconds())
}
