package memory

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

// Store keeps elections, the ballot ledger, anonymous votes and audit
// events in process. Map writes under mu play the role of the storage
// constraints; transactions are serialized and rolled back by replaying an
// undo journal. It backs STORAGE_DRIVER=memory and the service tests.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	elections   []domain.Election
	assignments map[assignmentKey]domain.BallotAssignment
	votes       map[string]domain.AnonymousVote
	audit       []domain.AuditEvent

	newReceipt ports.ReceiptGenerator
}

type assignmentKey struct {
	voterID    string
	electionID string
}

type Option func(*Store)

func WithReceiptGenerator(gen ports.ReceiptGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newReceipt = gen
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		assignments: make(map[assignmentKey]domain.BallotAssignment),
		votes:       make(map[string]domain.AnonymousVote),
		newReceipt:  domain.NewReceipt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type txKey struct{}

type memTx struct {
	undo []func()
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*memTx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// onRollback registers an undo step; mu is held when it runs.
func onRollback(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(txKey{}).(*memTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

func (s *Store) Current(_ context.Context) (*domain.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.elections) == 0 {
		return nil, domain.ErrNotFound
	}
	e := cloneElection(s.elections[len(s.elections)-1])
	return &e, nil
}

func (s *Store) Save(ctx context.Context, election *domain.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored int64
	if n := len(s.elections); n > 0 {
		stored = s.elections[n-1].Version
	}
	if election.Version != stored+1 {
		return domain.Conflict("election.save", fmt.Sprintf("stale election version %d, current is %d", election.Version, stored))
	}
	s.elections = append(s.elections, cloneElection(*election))
	onRollback(ctx, func() { s.elections = s.elections[:len(s.elections)-1] })
	return nil
}

func (s *Store) EnsureAssigned(ctx context.Context, voterID, electionID string, now time.Time) (domain.BallotAssignment, bool, error) {
	key := assignmentKey{voterID: voterID, electionID: electionID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.assignments[key]; ok {
		return cloneAssignment(existing), false, nil
	}
	a := domain.BallotAssignment{VoterID: voterID, ElectionID: electionID, IssuedAt: now}
	s.assignments[key] = a
	onRollback(ctx, func() { delete(s.assignments, key) })
	return a, true, nil
}

func (s *Store) MarkVoted(ctx context.Context, assignment domain.BallotAssignment, now time.Time) (domain.BallotAssignment, error) {
	key := assignmentKey{voterID: assignment.VoterID, electionID: assignment.ElectionID}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.assignments[key]
	if !ok {
		return domain.BallotAssignment{}, domain.NotFound("ledger.mark_voted", "ballot assignment not found")
	}
	if current.VotedAt != nil {
		return domain.BallotAssignment{}, domain.Conflict("ledger.mark_voted", "assignment already completed")
	}
	votedAt := now
	updated := current
	updated.VotedAt = &votedAt
	s.assignments[key] = updated
	onRollback(ctx, func() { s.assignments[key] = current })
	return cloneAssignment(updated), nil
}

func (s *Store) CountVoted(_ context.Context, electionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for key, a := range s.assignments {
		if key.electionID == electionID && a.VotedAt != nil {
			n++
		}
	}
	return n, nil
}

func (s *Store) ElectionIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for key := range s.assignments {
		seen[key.electionID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Record(ctx context.Context, electionID string, selections []domain.Selection, submittedAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < domain.MaxReceiptAttempts; attempt++ {
		receipt, err := s.newReceipt()
		if err != nil {
			return "", fmt.Errorf("failed to generate receipt: %w", err)
		}
		if _, taken := s.votes[receipt]; taken {
			continue
		}
		s.votes[receipt] = domain.AnonymousVote{
			Receipt:     receipt,
			ElectionID:  electionID,
			Selections:  cloneSelections(selections),
			SubmittedAt: submittedAt,
		}
		onRollback(ctx, func() { delete(s.votes, receipt) })
		return receipt, nil
	}
	return "", fmt.Errorf("failed to generate a unique receipt after %d attempts", domain.MaxReceiptAttempts)
}

// ListByElection copies the election's votes when iteration starts, so one
// pass sees a fixed set.
func (s *Store) ListByElection(_ context.Context, electionID string) iter.Seq2[domain.AnonymousVote, error] {
	return func(yield func(domain.AnonymousVote, error) bool) {
		s.mu.RLock()
		snapshot := make([]domain.AnonymousVote, 0, len(s.votes))
		for _, v := range s.votes {
			if v.ElectionID == electionID {
				v.Selections = cloneSelections(v.Selections)
				snapshot = append(snapshot, v)
			}
		}
		s.mu.RUnlock()

		for _, v := range snapshot {
			if !yield(v, nil) {
				return
			}
		}
	}
}

func (s *Store) Exists(_ context.Context, electionID, receipt string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.votes[receipt]
	return ok && v.ElectionID == electionID, nil
}

func (s *Store) Count(_ context.Context, electionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, v := range s.votes {
		if v.ElectionID == electionID {
			n++
		}
	}
	return n, nil
}

// AuditLog returns an audit trail kept alongside the store's data.
func (s *Store) AuditLog() *AuditLog {
	return &AuditLog{store: s}
}

type AuditLog struct {
	store *Store
}

func (l *AuditLog) Record(_ context.Context, event domain.AuditEvent) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.audit = append(l.store.audit, event)
	return nil
}

func (l *AuditLog) Events() []domain.AuditEvent {
	l.store.mu.RLock()
	defer l.store.mu.RUnlock()
	return append([]domain.AuditEvent(nil), l.store.audit...)
}

func cloneElection(e domain.Election) domain.Election {
	contests := make([]domain.Contest, len(e.Contests))
	for i, c := range e.Contests {
		c.Candidates = append([]domain.Candidate(nil), c.Candidates...)
		contests[i] = c
	}
	e.Contests = contests
	return e
}

func cloneAssignment(a domain.BallotAssignment) domain.BallotAssignment {
	if a.VotedAt != nil {
		t := *a.VotedAt
		a.VotedAt = &t
	}
	return a
}

func cloneSelections(in []domain.Selection) []domain.Selection {
	out := make([]domain.Selection, len(in))
	for i, sel := range in {
		out[i] = domain.Selection{
			ContestID:            sel.ContestID,
			SelectedCandidateIDs: append([]string(nil), sel.SelectedCandidateIDs...),
		}
	}
	return out
}

var (
	_ ports.ElectionRepository = (*Store)(nil)
	_ ports.BallotLedger       = (*Store)(nil)
	_ ports.VoteStore          = (*Store)(nil)
	_ ports.Transactor         = (*Store)(nil)
	_ ports.AuditTrail         = (*AuditLog)(nil)
)
