package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type electionService struct {
	repo   ports.ElectionRepository
	audit  auditor
	clock  ports.Clock
	logger *slog.Logger
}

// NewElectionService serves administrative reads and writes; repo must
// give read-your-writes consistency.
func NewElectionService(repo ports.ElectionRepository, opts Options) ports.ElectionService {
	opts = opts.withDefaults()
	return &electionService{
		repo:   repo,
		audit:  newAuditor(opts),
		clock:  opts.Clock,
		logger: opts.Logger,
	}
}

func (s *electionService) Current(ctx context.Context) (*domain.Election, error) {
	return activeElection(ctx, s.repo, "election.current", "")
}

func (s *electionService) Setup(ctx context.Context, caller domain.Identity, input ports.SetupElectionInput) (*domain.Election, error) {
	const op = "election.setup"
	if err := requireAdmin(caller, op); err != nil {
		return nil, err
	}

	previous, err := activeElection(ctx, s.repo, op, "")
	if err != nil && domain.KindOf(err) != domain.KindNotFound {
		return nil, err
	}

	electionID := strings.TrimSpace(input.ID)
	if electionID == "" {
		electionID = uuid.NewString()
	}

	election, err := domain.NewElection(toDomainSetup(electionID, input), previous, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, election); err != nil {
		return nil, fmt.Errorf("failed to save election: %w", err)
	}

	s.logger.InfoContext(ctx, "election configured",
		"event", "election_setup",
		"election_id", election.ID,
		"version", election.Version,
		"contests", len(election.Contests),
	)
	s.audit.record(ctx, caller.Actor(), domain.ActionElectionSetup, map[string]any{
		"election_id": election.ID,
		"version":     election.Version,
	})
	return election, nil
}

func (s *electionService) Open(ctx context.Context, caller domain.Identity, electionID string) (*domain.Election, error) {
	return s.transition(ctx, caller, "election.open", electionID, domain.ActionElectionOpened,
		func(e *domain.Election) (*domain.Election, error) { return e.Open(s.clock.Now()) })
}

func (s *electionService) Close(ctx context.Context, caller domain.Identity, electionID string) (*domain.Election, error) {
	return s.transition(ctx, caller, "election.close", electionID, domain.ActionElectionClosed,
		func(e *domain.Election) (*domain.Election, error) { return e.Close(s.clock.Now()) })
}

func (s *electionService) Publish(ctx context.Context, caller domain.Identity, electionID string) (*domain.Election, error) {
	return s.transition(ctx, caller, "election.publish", electionID, domain.ActionResultsPublished,
		func(e *domain.Election) (*domain.Election, error) { return e.Publish(s.clock.Now()) })
}

func (s *electionService) transition(
	ctx context.Context,
	caller domain.Identity,
	op string,
	electionID string,
	action domain.AuditAction,
	apply func(*domain.Election) (*domain.Election, error),
) (*domain.Election, error) {
	if err := requireAdmin(caller, op); err != nil {
		return nil, err
	}
	current, err := activeElection(ctx, s.repo, op, electionID)
	if err != nil {
		return nil, err
	}
	next, err := apply(current)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save election: %w", err)
	}

	s.logger.InfoContext(ctx, "election state changed",
		"event", string(action),
		"election_id", next.ID,
		"version", next.Version,
	)
	s.audit.record(ctx, caller.Actor(), action, map[string]any{
		"election_id": next.ID,
		"version":     next.Version,
	})
	return next, nil
}

func toDomainSetup(electionID string, input ports.SetupElectionInput) domain.SetupElectionInput {
	contests := make([]domain.Contest, 0, len(input.Contests))
	for _, c := range input.Contests {
		candidates := make([]domain.Candidate, 0, len(c.Candidates))
		for _, cand := range c.Candidates {
			candidates = append(candidates, domain.Candidate{
				ID:   strings.TrimSpace(cand.ID),
				Name: strings.TrimSpace(cand.Name),
			})
		}
		contests = append(contests, domain.Contest{
			ID:            strings.TrimSpace(c.ID),
			Title:         strings.TrimSpace(c.Title),
			MaxSelections: c.MaxSelections,
			Candidates:    candidates,
		})
	}
	return domain.SetupElectionInput{
		ID:          electionID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		StartAt:     input.StartAt.UTC(),
		EndAt:       input.EndAt.UTC(),
		Contests:    contests,
	}
}
