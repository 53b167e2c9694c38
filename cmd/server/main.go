package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/vncsmyrnk/ballot/internal/adapters/audit"
	"github.com/vncsmyrnk/ballot/internal/adapters/audit/kafka"
	jwtauth "github.com/vncsmyrnk/ballot/internal/adapters/auth/jwt"
	rediscache "github.com/vncsmyrnk/ballot/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/ballot/internal/adapters/handler/http"
	"github.com/vncsmyrnk/ballot/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/core/services"
	"github.com/vncsmyrnk/ballot/internal/platform/config"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
	"github.com/vncsmyrnk/ballot/internal/platform/metrics"
)

type storage struct {
	elections ports.ElectionRepository
	ledger    ports.BallotLedger
	votes     ports.VoteStore
	tx        ports.Transactor
	audit     ports.AuditTrail
	db        *sql.DB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	if store.db != nil {
		defer store.db.Close()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	sink, closeSink, err := openAuditSink(ctx, cfg, store, log)
	if err != nil {
		return err
	}
	defer closeSink()
	trail := audit.NewBuffered(sink, cfg.AuditBufferSize, log, m)

	// Voter reads may be a few seconds stale; admin paths stay consistent.
	voterElections, adminElections := store.elections, store.elections
	if cfg.Redis.URL != "" {
		client, err := rediscache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		cache := rediscache.NewElectionCache(store.elections, client, cfg.Redis.ElectionTTL, log)
		voterElections, adminElections = cache, cache.Consistent()
	}

	opts := services.Options{
		Logger:              log,
		Metrics:             m,
		Audit:               trail,
		VoteTimeGranularity: cfg.VoteTimeGranularity,
	}
	electionService := services.NewElectionService(adminElections, opts)
	ballotService := services.NewBallotService(voterElections, store.ledger, store.votes, store.tx, opts)
	tallyService := services.NewTallyService(adminElections, store.votes, opts)
	reconcileService := services.NewReconcileService(store.ledger, store.votes, opts)

	handler := http.NewHandler(http.Handlers{
		Elections: http.NewElectionHandler(electionService, log),
		Ballots:   http.NewBallotHandler(ballotService, log),
		Tally:     http.NewTallyHandler(tallyService, reconcileService, log),
	}, http.RouterConfig{
		Verifier: jwtauth.NewVerifier(cfg.JWTSecret),
		Audit:    trail,
		Logger:   log,
		Gatherer: registry,
	})

	server := &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := trail.Run(auditCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("server listening", "event", "server_started", "addr", cfg.Addr, "storage", cfg.StorageDriver, "audit_sink", cfg.AuditSink)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer stopAudit()
		<-gctx.Done()
		log.Info("gracefully shutting down", "event", "server_stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		return storage{elections: store, ledger: store, votes: store, tx: store, audit: store.AuditLog()}, nil
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		return storage{}, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return storage{}, fmt.Errorf("failed to reach database: %w", err)
	}
	return storage{
		elections: postgres.NewElectionRepository(db),
		ledger:    postgres.NewBallotRepository(db),
		votes:     postgres.NewVoteRepository(db),
		tx:        postgres.NewTransactor(db),
		audit:     postgres.NewAuditRepository(db),
		db:        db,
	}, nil
}

func openAuditSink(ctx context.Context, cfg config.Config, store storage, log *slog.Logger) (ports.AuditTrail, func(), error) {
	switch cfg.AuditSink {
	case config.AuditSinkPostgres:
		return store.audit, func() {}, nil
	case config.AuditSinkKafka:
		pub, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, nil, err
		}
		if err := pub.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("could not ensure audit topic", "event", "audit_topic_unavailable", "error", err.Error())
		}
		return pub, pub.Close, nil
	default:
		return audit.NewLogSink(log), func() {}, nil
	}
}
