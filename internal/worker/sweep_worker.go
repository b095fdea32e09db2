// Package worker holds background loops started by the server.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/boletim/internal/logger"
)

// DefaultSweepInterval is how often expired artifacts are evicted.
const DefaultSweepInterval = time.Minute

// Sweeper drops expired entries and reports how many were removed.
type Sweeper interface {
	Sweep() int
}

// SweepWorker evicts expired artifacts from an in-memory store.
type SweepWorker struct {
	store    Sweeper
	interval time.Duration
	log      zerolog.Logger
}

// NewSweepWorker creates a new SweepWorker.
func NewSweepWorker(store Sweeper, interval time.Duration, log zerolog.Logger) *SweepWorker {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SweepWorker{
		store:    store,
		interval: interval,
		log:      logger.Component(log, "sweep_worker"),
	}
}

// Start runs until ctx is cancelled. Call in a goroutine.
func (w *SweepWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final pass so shutdown leaves nothing stale behind.
			w.sweepOnce()
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweepOnce()
		}
	}
}

func (w *SweepWorker) sweepOnce() int {
	n := w.store.Sweep()
	if n > 0 {
		w.log.Debug().Int("removed", n).Msg("Expired artifacts swept")
	}
	return n
}
