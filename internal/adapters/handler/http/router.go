package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
)

type Handlers struct {
	Elections *ElectionHandler
	Ballots   *BallotHandler
	Tally     *TallyHandler
}

type RouterConfig struct {
	Verifier ports.IdentityVerifier
	Audit    ports.AuditTrail
	Logger   *slog.Logger
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

func NewHandler(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth(cfg.Verifier, cfg.Audit, logger.Resolve(cfg.Logger)))

		r.Route("/elections", func(r chi.Router) {
			r.Get("/current", h.Elections.CurrentElection)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/ballot", h.Ballots.RequestBallot)
				r.Post("/votes", h.Ballots.SubmitVote)
				r.Post("/receipts/verify", h.Ballots.VerifyReceipt)
				r.Get("/results", h.Tally.ViewResults)
			})
		})

		r.Route("/admin/elections", func(r chi.Router) {
			r.Post("/", h.Elections.Setup)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/open", h.Elections.Open)
				r.Post("/close", h.Elections.Close)
				r.Post("/publish", h.Elections.Publish)
				r.Post("/tally", h.Tally.RunTally)
				r.Get("/reconciliation", h.Tally.Reconcile)
			})
		})
	})

	return r
}
