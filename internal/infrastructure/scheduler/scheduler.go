package scheduler

import (
	"context"
	"time"

	"floristeria-calendar-sync/internal/application"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSchedule ticks the poll cycle every minute; individual
// integrations gate themselves on their refresh interval.
const DefaultSchedule = "@every 1m"

// DefaultCycleBudget bounds one whole poll cycle.
const DefaultCycleBudget = 10 * time.Minute

// PollScheduler drives the periodic sync pass with a cron entry.
// Integrations are processed sequentially inside the cycle; overlapping
// ticks are prevented by cron's default single-goroutine job execution
// per entry with a skip-if-running wrapper.
type PollScheduler struct {
	cron     *cron.Cron
	sync     *application.SyncService
	schedule string
	budget   time.Duration
	logger   zerolog.Logger
}

// New creates a poll scheduler. Empty schedule or non-positive budget
// fall back to the defaults.
func New(sync *application.SyncService, schedule string, budget time.Duration, logger zerolog.Logger) *PollScheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if budget <= 0 {
		budget = DefaultCycleBudget
	}
	return &PollScheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sync:     sync,
		schedule: schedule,
		budget:   budget,
		logger:   logger,
	}
}

// Start registers the poll job and starts the cron loop.
func (s *PollScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.budget)
		defer cancel()
		s.sync.RunDueSync(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Dur("budget", s.budget).Msg("Poll scheduler started")
	return nil
}

// Stop halts scheduling and returns a context that is done once any
// in-flight cycle finishes.
func (s *PollScheduler) Stop() context.Context {
	return s.cron.Stop()
}
