package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
)

type TallyHandler struct {
	tally     ports.TallyService
	reconcile ports.ReconcileService
	logger    *slog.Logger
}

func NewTallyHandler(tally ports.TallyService, reconcile ports.ReconcileService, log *slog.Logger) *TallyHandler {
	return &TallyHandler{
		tally:     tally,
		reconcile: reconcile,
		logger:    logger.Resolve(log),
	}
}

// RunTally godoc
// @Summary      Computes the current counts
// @Description  Requires the admin role. Publishing needs a tally run after the election closed.
// @Tags         admin
// @Produce      json
// @Success      200
// @Failure      403
// @Failure      404
// @Router       /admin/elections/{id}/tally [post]
func (h *TallyHandler) RunTally(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing identity", http.StatusUnauthorized)
		return
	}
	result, err := h.tally.RunTally(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ViewResults godoc
// @Summary      Returns published results
// @Tags         elections
// @Produce      json
// @Success      200
// @Failure      404
// @Failure      412
// @Router       /elections/{id}/results [get]
func (h *TallyHandler) ViewResults(w http.ResponseWriter, r *http.Request) {
	result, err := h.tally.ViewResults(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TallyHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing identity", http.StatusUnauthorized)
		return
	}
	report, err := h.reconcile.Check(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
