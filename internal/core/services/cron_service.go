package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService runs the background maintenance jobs
type CronService struct {
	cron     *cron.Cron
	payments *PaymentService
	auth     *AuthService
	spec     string
	sweep    bool
	now      Clock
}

// NewCronService creates the scheduler. spec is a standard five field
// cron expression or a descriptor such as "@daily".
func NewCronService(payments *PaymentService, auth *AuthService, spec string, sweep bool) *CronService {
	return &CronService{
		cron:     cron.New(cron.WithLocation(time.Local)),
		payments: payments,
		auth:     auth,
		spec:     spec,
		sweep:    sweep,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if s.sweep {
		if _, err := s.cron.AddFunc(s.spec, s.SweepOverdue); err != nil {
			return err
		}
	}
	if _, err := s.cron.AddFunc("@hourly", s.PurgeTokens); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("cron started", "overdue_sweep", s.sweep, "schedule", s.spec)
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("cron stopped")
}

// SweepOverdue stores overdue on pending rows past their due date
func (s *CronService) SweepOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.payments.MarkOverdue(ctx, s.now()); err != nil {
		slog.Error("overdue sweep failed", "error", err)
	}
}

// PurgeTokens removes expired refresh tokens
func (s *CronService) PurgeTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.auth.PurgeExpiredTokens(ctx)
	if err != nil {
		slog.Error("token purge failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired refresh tokens purged", "count", n)
	}
}
