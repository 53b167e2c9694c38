package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

var statusByKind = map[domain.Kind]int{
	domain.KindNotEligible:   http.StatusForbidden,
	domain.KindAlreadyVoted:  http.StatusConflict,
	domain.KindValidation:    http.StatusBadRequest,
	domain.KindConflict:      http.StatusConflict,
	domain.KindNotFound:      http.StatusNotFound,
	domain.KindPrecondition:  http.StatusPreconditionFailed,
	domain.KindNotAuthorized: http.StatusForbidden,
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError maps core error kinds to status codes. Internal errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		logger.ErrorContext(r.Context(), "request failed",
			"event", "http_internal_error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: domain.KindInternal.String()})
		return
	}

	message := err.Error()
	var de *domain.Error
	if errors.As(err, &de) && de.Detail != "" {
		message = de.Detail
	}
	writeJSON(w, status, errorResponse{Error: kind.String(), Message: message})
}
