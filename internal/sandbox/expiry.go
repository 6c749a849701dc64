package sandbox

import (
	"fmt"
	"time"

	"cinefund/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultExpirySchedule runs the pending-investment sweep every minute
const DefaultExpirySchedule = "@every 1m"

// Expirer cancels PENDING investments that were never confirmed
type Expirer struct {
	store *Store
	ttl   time.Duration
	log   *zap.Logger
	cron  *cron.Cron
}

// NewExpirer creates an expirer for investments older than ttl
func NewExpirer(store *Store, ttl time.Duration, log *zap.Logger) *Expirer {
	return &Expirer{
		store: store,
		ttl:   ttl,
		log:   logger.OrNop(log),
		cron:  cron.New(),
	}
}

// Start schedules the sweep. schedule is a cron spec; empty uses DefaultExpirySchedule.
func (e *Expirer) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultExpirySchedule
	}
	if _, err := e.cron.AddFunc(schedule, func() { e.Sweep() }); err != nil {
		return fmt.Errorf("invalid expiry schedule %q: %w", schedule, err)
	}
	e.cron.Start()
	e.log.Info("🚀 pending investment expiry started", zap.String("schedule", schedule), zap.Duration("ttl", e.ttl))
	return nil
}

// Stop waits for a running sweep to finish
func (e *Expirer) Stop() {
	<-e.cron.Stop().Done()
	e.log.Info("🛑 pending investment expiry stopped")
}

// Sweep runs one expiry pass and returns how many investments were cancelled
func (e *Expirer) Sweep() int {
	n := e.store.ExpirePending(e.ttl)
	if n > 0 {
		e.log.Info("🗑️ cancelled expired pending investments", zap.Int("count", n))
	}
	return n
}
