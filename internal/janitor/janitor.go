// Package janitor periodically removes expired sessions and OAuth states.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger is implemented by *authform.Store.
type Purger interface {
	PurgeExpiredSessions(ctx context.Context) error
	PurgeExpiredOAuthStates(ctx context.Context) error
}

type Janitor struct {
	cron    *cron.Cron
	purger  Purger
	logger  *slog.Logger
	timeout time.Duration
}

func New(purger Purger, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		cron:    cron.New(),
		purger:  purger,
		logger:  logger,
		timeout: time.Minute,
	}
}

// Start schedules Run on spec, a cron expression or descriptor such as
// "@every 10m".
func (j *Janitor) Start(spec string) error {
	if _, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		if err := j.Run(ctx); err != nil {
			j.logger.Error("purge expired records", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	j.cron.Start()
	j.logger.Info("janitor started", "schedule", spec)
	return nil
}

// Stop waits for a running purge to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("janitor stopped")
}

// Run purges once. Both purges are attempted even when the first fails.
func (j *Janitor) Run(ctx context.Context) error {
	return errors.Join(
		j.purger.PurgeExpiredSessions(ctx),
		j.purger.PurgeExpiredOAuthStates(ctx),
	)
}
