package services

import (
	"log/slog"
	"time"

	"github.com/vncsmyrnk/ballot/internal/core/ports"
	"github.com/vncsmyrnk/ballot/internal/platform/logger"
	"github.com/vncsmyrnk/ballot/internal/platform/metrics"
)

// Options carries the ambient collaborators shared by all services. Zero
// values are replaced with working defaults.
type Options struct {
	Clock   ports.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Audit   ports.AuditTrail
	// VoteTimeGranularity truncates stored vote timestamps.
	VoteTimeGranularity time.Duration
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = ports.SystemClock{}
	}
	o.Logger = logger.Resolve(o.Logger)
	if o.VoteTimeGranularity == 0 {
		o.VoteTimeGranularity = time.Hour
	}
	return o
}
