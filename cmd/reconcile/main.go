package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/ballot/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/services"
	"github.com/vncsmyrnk/ballot/internal/platform/config"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
)

// systemIdentity is the caller recorded for scheduled checks.
var systemIdentity = domain.Identity{ID: "system:reconcile", Role: domain.RoleAdmin}

// Compares completed ballot assignments with stored votes for every
// election and exits 2 when any election is inconsistent.
func main() {
	_ = godotenv.Load()

	pg := config.PostgresFromEnv()
	var (
		logLevel   string
		electionID string
		timeout    time.Duration
	)
	flag.StringVar(&pg.Host, "db-host", pg.Host, "Database host")
	flag.StringVar(&pg.Port, "db-port", pg.Port, "Database port")
	flag.StringVar(&pg.User, "db-user", pg.User, "Database user")
	flag.StringVar(&pg.Password, "db-pass", pg.Password, "Database password")
	flag.StringVar(&pg.DBName, "db-name", pg.DBName, "Database name")
	flag.StringVar(&electionID, "election", "", "Check a single election id")
	flag.StringVar(&logLevel, "log-level", os.Getenv("LOG_LEVEL"), "Log level")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Job timeout")
	flag.Parse()

	log := logger.New(logLevel)

	db, err := sql.Open("postgres", pg.ConnString())
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	svc := services.NewReconcileService(
		postgres.NewBallotRepository(db),
		postgres.NewVoteRepository(db),
		services.Options{Logger: log},
	)

	log.Info("starting reconciliation", "event", "reconcile_started")

	var reports []domain.ReconcileReport
	if electionID != "" {
		report, err := svc.Check(ctx, systemIdentity, electionID)
		if err != nil {
			log.Error("reconciliation failed", "error", err)
			os.Exit(1)
		}
		reports = append(reports, *report)
	} else {
		reports, err = svc.CheckAll(ctx, systemIdentity)
		if err != nil {
			log.Error("reconciliation failed", "error", err)
			os.Exit(1)
		}
	}

	inconsistent, err := writeReports(os.Stdout, reports)
	if err != nil {
		log.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	log.Info("reconciliation completed", "event", "reconcile_completed", "elections", len(reports), "inconsistent", inconsistent)
	if inconsistent > 0 {
		os.Exit(2)
	}
}

// writeReports emits one JSON line per report and counts the inconsistent ones.
func writeReports(w io.Writer, reports []domain.ReconcileReport) (int, error) {
	enc := json.NewEncoder(w)
	inconsistent := 0
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return 0, fmt.Errorf("failed to encode report for %s: %w", r.ElectionID, err)
		}
		if !r.Consistent {
			inconsistent++
		}
	}
	return inconsistent, nil
}
