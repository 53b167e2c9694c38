package domain

import (
	"fmt"
	"strings"
	"time"
)

// Election is an immutable snapshot of the single active election. Every
// state transition returns a new snapshot with Version incremented by one;
// stores reject snapshots that skip or repeat a version.
type Election struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       time.Time  `json:"end_at"`
	IsOpen      bool       `json:"is_open"`
	IsPublished bool       `json:"is_published"`
	Contests    []Contest  `json:"contests"`
	Version     int64      `json:"version"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	TalliedAt   *time.Time `json:"tallied_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Contest struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	MaxSelections int         `json:"max_selections"`
	Candidates    []Candidate `json:"candidates"`
}

type Candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Selection is a voter's choice within one contest. An empty
// SelectedCandidateIDs is an abstention.
type Selection struct {
	ContestID            string   `json:"contest_id"`
	SelectedCandidateIDs []string `json:"selected_candidate_ids"`
}

type SetupElectionInput struct {
	ID          string
	Name        string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Contests    []Contest
}

// NewElection validates the input and builds a closed, unpublished snapshot
// that supersedes previous, whose version it continues. previous may be nil.
func NewElection(input SetupElectionInput, previous *Election, now time.Time) (*Election, error) {
	const op = "election.setup"

	if strings.TrimSpace(input.ID) == "" {
		return nil, Validation(op, "election id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, Validation(op, "name is required")
	}
	if !input.StartAt.Before(input.EndAt) {
		return nil, Validation(op, "start_at must be before end_at")
	}
	if len(input.Contests) == 0 {
		return nil, Validation(op, "at least one contest is required")
	}

	contests := make([]Contest, 0, len(input.Contests))
	seenContests := make(map[string]struct{}, len(input.Contests))
	for _, c := range input.Contests {
		if strings.TrimSpace(c.ID) == "" {
			return nil, Validation(op, "contest id is required")
		}
		if _, dup := seenContests[c.ID]; dup {
			return nil, Validation(op, fmt.Sprintf("duplicate contest id %q", c.ID))
		}
		seenContests[c.ID] = struct{}{}

		if c.MaxSelections < 1 {
			return nil, Validation(op, fmt.Sprintf("contest %q: max_selections must be positive", c.ID))
		}
		if len(c.Candidates) == 0 {
			return nil, Validation(op, fmt.Sprintf("contest %q: at least one candidate is required", c.ID))
		}
		seenCandidates := make(map[string]struct{}, len(c.Candidates))
		for _, cand := range c.Candidates {
			if strings.TrimSpace(cand.ID) == "" {
				return nil, Validation(op, fmt.Sprintf("contest %q: candidate id is required", c.ID))
			}
			if _, dup := seenCandidates[cand.ID]; dup {
				return nil, Validation(op, fmt.Sprintf("contest %q: duplicate candidate id %q", c.ID, cand.ID))
			}
			seenCandidates[cand.ID] = struct{}{}
		}

		candidates := make([]Candidate, len(c.Candidates))
		copy(candidates, c.Candidates)
		c.Candidates = candidates
		contests = append(contests, c)
	}

	var version int64 = 1
	if previous != nil {
		if previous.IsOpen {
			return nil, Precondition(op, "the current election is open; close it before replacing it")
		}
		version = previous.Version + 1
	}

	return &Election{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
		StartAt:     input.StartAt,
		EndAt:       input.EndAt,
		Contests:    contests,
		Version:     version,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsAcceptingBallots reports whether the election is open and now falls
// inside [StartAt, EndAt].
func (e *Election) IsAcceptingBallots(now time.Time) bool {
	return e.IsOpen && !now.Before(e.StartAt) && !now.After(e.EndAt)
}

// ValidateSelections checks a submission against the contest schema.
// Contests absent from selections are abstentions.
func (e *Election) ValidateSelections(selections []Selection) error {
	const op = "election.validate_selections"

	seen := make(map[string]struct{}, len(selections))
	for _, sel := range selections {
		contest, ok := e.Contest(sel.ContestID)
		if !ok {
			return Validation(op, fmt.Sprintf("unknown contest %q", sel.ContestID))
		}
		if _, dup := seen[sel.ContestID]; dup {
			return Validation(op, fmt.Sprintf("contest %q appears more than once", sel.ContestID))
		}
		seen[sel.ContestID] = struct{}{}

		if len(sel.SelectedCandidateIDs) > contest.MaxSelections {
			return Validation(op, fmt.Sprintf("contest %q allows at most %d selections", contest.ID, contest.MaxSelections))
		}
		picked := make(map[string]struct{}, len(sel.SelectedCandidateIDs))
		for _, id := range sel.SelectedCandidateIDs {
			if !contest.HasCandidate(id) {
				return Validation(op, fmt.Sprintf("contest %q: unknown candidate %q", contest.ID, id))
			}
			if _, dup := picked[id]; dup {
				return Validation(op, fmt.Sprintf("contest %q: candidate %q selected twice", contest.ID, id))
			}
			picked[id] = struct{}{}
		}
	}
	return nil
}

func (e *Election) Contest(id string) (Contest, bool) {
	for _, c := range e.Contests {
		if c.ID == id {
			return c, true
		}
	}
	return Contest{}, false
}

func (c Contest) HasCandidate(id string) bool {
	for _, cand := range c.Candidates {
		if cand.ID == id {
			return true
		}
	}
	return false
}

// Open starts accepting ballots. Reopening a closed election discards the
// previous tally marker.
func (e *Election) Open(now time.Time) (*Election, error) {
	const op = "election.open"
	if e.IsPublished {
		return nil, Precondition(op, "results are already published")
	}
	if e.IsOpen {
		return nil, Precondition(op, "election is already open")
	}
	next := e.next(now)
	next.IsOpen = true
	next.ClosedAt = nil
	next.TalliedAt = nil
	return next, nil
}

func (e *Election) Close(now time.Time) (*Election, error) {
	if !e.IsOpen {
		return nil, Precondition("election.close", "election is not open")
	}
	next := e.next(now)
	next.IsOpen = false
	closedAt := now
	next.ClosedAt = &closedAt
	return next, nil
}

// MarkTallied records that a tally has been computed at now.
func (e *Election) MarkTallied(now time.Time) *Election {
	next := e.next(now)
	talliedAt := now
	next.TalliedAt = &talliedAt
	return next
}

// Publish requires a closed election whose tally was run after closing.
func (e *Election) Publish(now time.Time) (*Election, error) {
	const op = "election.publish"
	if e.IsPublished {
		return nil, Precondition(op, "results are already published")
	}
	if e.IsOpen || e.ClosedAt == nil {
		return nil, Precondition(op, "election must be closed before publishing")
	}
	if e.TalliedAt == nil || e.TalliedAt.Before(*e.ClosedAt) {
		return nil, Precondition(op, "run a tally after closing before publishing")
	}
	next := e.next(now)
	next.IsPublished = true
	return next, nil
}

func (e *Election) next(now time.Time) *Election {
	next := *e
	next.Contests = make([]Contest, len(e.Contests))
	copy(next.Contests, e.Contests)
	next.Version = e.Version + 1
	next.UpdatedAt = now
	return &next
}
