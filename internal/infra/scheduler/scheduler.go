package scheduler

import (
	"context"
	"time"

	"immunization_reminder_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DispatchScheduler fires the daily reminder run on a cron spec.
type DispatchScheduler struct {
	cronEngine       *cron.Cron
	dispatch         *app.DispatchService
	logger           *logrus.Entry
	cronSpecDispatch string
	runTimeout       time.Duration
}

func NewDispatchScheduler(
	dispatch *app.DispatchService,
	logger *logrus.Entry,
	cronSpecDispatch string, // e.g. "0 9 * * *" (9 AM daily)
	runTimeout time.Duration,
) *DispatchScheduler {
	return &DispatchScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)), // server's local time
		dispatch:         dispatch,
		logger:           logger,
		cronSpecDispatch: cronSpecDispatch,
		runTimeout:       runTimeout,
	}
}

func (s *DispatchScheduler) Start() error {
	s.logger.Info("Starting dispatch scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDispatch, func() {
		s.logger.Info("Cron trigger fired for daily dispatch")
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		if err := s.dispatch.RunOnce(ctx); err != nil {
			if err == app.ErrRunSkipped {
				s.logger.Warn("Daily dispatch skipped: previous run still active")
				return
			}
			s.logger.WithError(err).Error("Daily dispatch run failed")
			return
		}
		s.logger.Info("Daily dispatch run finished")
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Dispatch scheduler started")
	return nil
}

func (s *DispatchScheduler) Stop() {
	s.logger.Info("Stopping dispatch scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Dispatch scheduler gracefully stopped")
}
