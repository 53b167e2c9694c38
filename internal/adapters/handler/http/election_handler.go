package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
)

type ElectionHandler struct {
	service ports.ElectionService
	logger  *slog.Logger
}

func NewElectionHandler(service ports.ElectionService, log *slog.Logger) *ElectionHandler {
	return &ElectionHandler{
		service: service,
		logger:  logger.Resolve(log),
	}
}

type candidateRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type contestRequest struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	MaxSelections int                `json:"max_selections"`
	Candidates    []candidateRequest `json:"candidates"`
}

type setupElectionRequest struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	StartAt     time.Time        `json:"start_at"`
	EndAt       time.Time        `json:"end_at"`
	Contests    []contestRequest `json:"contests"`
}

func (req setupElectionRequest) toInput() ports.SetupElectionInput {
	contests := make([]ports.ContestInput, 0, len(req.Contests))
	for _, c := range req.Contests {
		candidates := make([]ports.CandidateInput, 0, len(c.Candidates))
		for _, cand := range c.Candidates {
			candidates = append(candidates, ports.CandidateInput{ID: cand.ID, Name: cand.Name})
		}
		contests = append(contests, ports.ContestInput{
			ID:            c.ID,
			Title:         c.Title,
			MaxSelections: c.MaxSelections,
			Candidates:    candidates,
		})
	}
	return ports.SetupElectionInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Contests:    contests,
	}
}

// CurrentElection godoc
// @Summary      Returns the configured election
// @Tags         elections
// @Produce      json
// @Success      200
// @Failure      404
// @Router       /elections/current [get]
func (h *ElectionHandler) CurrentElection(w http.ResponseWriter, r *http.Request) {
	election, err := h.service.Current(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, election)
}

// Setup godoc
// @Summary      Configures the election
// @Description  Replaces the configured election while it is not open. Requires the admin role.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Failure      403
// @Failure      412
// @Router       /admin/elections [post]
func (h *ElectionHandler) Setup(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing identity", http.StatusUnauthorized)
		return
	}

	var req setupElectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, domain.Validation("election.setup", "invalid request body"))
		return
	}

	election, err := h.service.Setup(r.Context(), caller, req.toInput())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, election)
}

func (h *ElectionHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Open)
}

func (h *ElectionHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Close)
}

func (h *ElectionHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Publish)
}

func (h *ElectionHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, domain.Identity, string) (*domain.Election, error)) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing identity", http.StatusUnauthorized)
		return
	}
	election, err := apply(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, election)
}
