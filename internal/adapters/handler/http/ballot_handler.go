package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
)

type BallotHandler struct {
	service ports.BallotService
	logger  *slog.Logger
}

func NewBallotHandler(service ports.BallotService, log *slog.Logger) *BallotHandler {
	return &BallotHandler{
		service: service,
		logger:  logger.Resolve(log),
	}
}

type submitVoteRequest struct {
	Selections []domain.Selection `json:"selections"`
}

type receiptResponse struct {
	Receipt string `json:"receipt"`
}

type verifyReceiptRequest struct {
	Receipt string `json:"receipt"`
}

type verifyReceiptResponse struct {
	Recorded bool `json:"recorded"`
}

// RequestBallot godoc
// @Summary      Issues the caller's ballot
// @Description  Creates the caller's ballot assignment on first request and returns the same ballot afterwards.
// @Tags         ballots
// @Produce      json
// @Success      200
// @Failure      403
// @Failure      404
// @Failure      409
// @Router       /elections/{id}/ballot [post]
func (h *BallotHandler) RequestBallot(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing identity", http.StatusUnauthorized)
		return
	}

	ballot, err := h.service.RequestBallot(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ballot)
}

// SubmitVote godoc
// @Summary      Casts the caller's vote
// @Description  Records an anonymous vote and returns its receipt. A second submission is rejected.
// @Tags         ballots
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Failure      403
// @Failure      409
// @Router       /elections/{id}/votes [post]
func (h *BallotHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing identity", http.StatusUnauthorized)
		return
	}

	var req submitVoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, domain.Validation("ballot.submit", "invalid request body"))
		return
	}

	receipt, err := h.service.SubmitVote(r.Context(), caller, ports.SubmitVoteInput{
		ElectionID: chi.URLParam(r, "id"),
		Selections: req.Selections,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, receiptResponse{Receipt: receipt})
}

// VerifyReceipt godoc
// @Summary      Checks that a receipt was recorded
// @Description  The receipt travels in the body so it never shows up in request paths or access logs.
// @Tags         ballots
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Router       /elections/{id}/receipts/verify [post]
func (h *BallotHandler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	var req verifyReceiptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, domain.Validation("ballot.verify_receipt", "invalid request body"))
		return
	}

	found, err := h.service.VerifyReceipt(r.Context(), chi.URLParam(r, "id"), req.Receipt)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyReceiptResponse{Recorded: found})
}
