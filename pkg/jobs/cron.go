// Package jobs runs optional background work on a cron schedule.
package jobs

import (
	"context"
	"time"

	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron *cron.Cron
	log  logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(log logger.Logger) *CronManager {
	return &CronManager{
		cron: cron.New(),
		log:  log.With("component", "cron"),
	}
}

// AddArtworkReminders schedules the artwork reminder job with a standard 5-field cron spec
func (cm *CronManager) AddArtworkReminders(spec string, job *ArtworkReminderJob) error {
	_, err := cm.cron.AddFunc(spec, func() {
		cm.log.Info("running artwork reminder job")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		sent, err := job.Run(ctx)
		if err != nil {
			cm.log.Error("artwork reminder job failed", "sent", sent, "error", err)
			return
		}
		cm.log.Info("artwork reminder job completed", "sent", sent)
	})
	if err != nil {
		return err
	}

	cm.log.Info("cron job configured", "job", "artwork_reminder", "schedule", spec)
	return nil
}

// Entries returns the number of scheduled jobs
func (cm *CronManager) Entries() int {
	return len(cm.cron.Entries())
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.log.Info("starting cron scheduler")
	cm.cron.Start()
}

// Stop stops the scheduler and returns a context that is done once running jobs finish
func (cm *CronManager) Stop() context.Context {
	cm.log.Info("stopping cron scheduler")
	return cm.cron.Stop()
}
