package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

type contextKey string

const IdentityKey contextKey = "identity"

const accessTokenCookie = "access_token"

func identityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(domain.Identity)
	return id, ok && id.ID != ""
}

// RequireAuth verifies the access_token cookie or a Bearer header and puts
// the identity on the request context.
func RequireAuth(verifier ports.IdentityVerifier, audit ports.AuditTrail, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized: missing access token", http.StatusUnauthorized)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				recordAuthFailure(r, audit, logger, err)
				http.Error(w, "Unauthorized: invalid access token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func recordAuthFailure(r *http.Request, audit ports.AuditTrail, logger *slog.Logger, cause error) {
	logger.InfoContext(r.Context(), "token rejected",
		"event", "auth_failed",
		"path", r.URL.Path,
		"error", cause.Error(),
	)
	if audit == nil {
		return
	}
	event := domain.AuditEvent{
		Actor:      domain.AnonymousActor,
		Action:     domain.ActionAuthFailed,
		Details:    map[string]any{"path": r.URL.Path},
		OccurredAt: time.Now().UTC(),
	}
	if err := audit.Record(context.WithoutCancel(r.Context()), event); err != nil {
		logger.WarnContext(r.Context(), "audit event dropped",
			"event", "audit_record_failed",
			"action", string(domain.ActionAuthFailed),
			"error", err.Error(),
		)
	}
}
