package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/leadpulse/leadpulse/pkg/logger"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron    *cron.Cron
	sweeper *NoResponseSweeper
	log     logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(sweeper *NoResponseSweeper, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Default()
	}
	return &CronManager{
		cron:    cron.New(),
		sweeper: sweeper,
		log:     log,
	}
}

// SetupJobs configures all scheduled jobs. schedule is a standard cron
// expression, e.g. "0 3 * * *" for daily at 3 AM.
func (cm *CronManager) SetupJobs(schedule string) error {
	_, err := cm.cron.AddFunc(schedule, func() {
		cm.log.Info("running no-response sweep")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		flipped, err := cm.sweeper.Sweep(ctx)
		if err != nil {
			cm.log.Error("no-response sweep failed", "error", err)
			return
		}
		cm.log.Info("no-response sweep completed", "flipped", flipped)
	})
	if err != nil {
		return err
	}

	cm.log.Info("cron jobs configured", "no_response_sweep", schedule)
	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.cron.Stop()
}
