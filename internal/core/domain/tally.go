package domain

import (
	"iter"
	"time"
)

// TallyResult maps contest id to candidate id to vote count. It is derived
// from stored votes and never persisted.
type TallyResult struct {
	ElectionID     string                      `json:"election_id"`
	Counts         map[string]map[string]int64 `json:"counts"`
	BallotsCounted int64                       `json:"ballots_counted"`
	ComputedAt     time.Time                   `json:"computed_at"`
}

// Tally accumulates votes against a fixed contest schema. Counts are plain
// sums, so the result does not depend on the order votes are added.
type Tally struct {
	electionID string
	contests   map[string]map[string]struct{}
	counts     map[string]map[string]int64
	seen       map[string]struct{}
	ballots    int64
}

func NewTally(e *Election) *Tally {
	t := &Tally{
		electionID: e.ID,
		contests:   make(map[string]map[string]struct{}, len(e.Contests)),
		counts:     make(map[string]map[string]int64, len(e.Contests)),
		seen:       make(map[string]struct{}),
	}
	for _, c := range e.Contests {
		known := make(map[string]struct{}, len(c.Candidates))
		zero := make(map[string]int64, len(c.Candidates))
		for _, cand := range c.Candidates {
			known[cand.ID] = struct{}{}
			zero[cand.ID] = 0
		}
		t.contests[c.ID] = known
		t.counts[c.ID] = zero
	}
	return t
}

// Add counts one vote. Votes for another election, repeated receipts,
// unknown contests and unknown candidates are skipped.
func (t *Tally) Add(v AnonymousVote) {
	if v.ElectionID != t.electionID {
		return
	}
	if _, dup := t.seen[v.Receipt]; dup {
		return
	}
	t.seen[v.Receipt] = struct{}{}
	t.ballots++

	for _, sel := range v.Selections {
		known, ok := t.contests[sel.ContestID]
		if !ok {
			continue
		}
		counted := make(map[string]struct{}, len(sel.SelectedCandidateIDs))
		for _, id := range sel.SelectedCandidateIDs {
			if _, ok := known[id]; !ok {
				continue
			}
			if _, dup := counted[id]; dup {
				continue
			}
			counted[id] = struct{}{}
			t.counts[sel.ContestID][id]++
		}
	}
}

func (t *Tally) Result(computedAt time.Time) TallyResult {
	counts := make(map[string]map[string]int64, len(t.counts))
	for contestID, byCandidate := range t.counts {
		c := make(map[string]int64, len(byCandidate))
		for candidateID, n := range byCandidate {
			c[candidateID] = n
		}
		counts[contestID] = c
	}
	return TallyResult{
		ElectionID:     t.electionID,
		Counts:         counts,
		BallotsCounted: t.ballots,
		ComputedAt:     computedAt,
	}
}

// ComputeTally aggregates votes against e's contests. It never mutates e.
func ComputeTally(e *Election, votes iter.Seq[AnonymousVote], computedAt time.Time) TallyResult {
	t := NewTally(e)
	for v := range votes {
		t.Add(v)
	}
	return t.Result(computedAt)
}
