// Package janitor runs periodic housekeeping against the store on a cron
// schedule.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"github.com/ErlanBelekov/jobbee-api/internal/metrics"
)

// ResetTokenSweeper is satisfied by the user repository.
type ResetTokenSweeper interface {
	ClearExpiredResetTokens(ctx context.Context) (int, error)
}

type Janitor struct {
	users   ResetTokenSweeper
	logger  *slog.Logger
	timeout time.Duration
}

// New returns a janitor whose every cycle is bounded by timeout.
func New(users ResetTokenSweeper, logger *slog.Logger, timeout time.Duration) *Janitor {
	return &Janitor{
		users:   users,
		logger:  logger.With("component", "janitor"),
		timeout: timeout,
	}
}

// Start runs RunOnce on spec until ctx is cancelled, then waits for a
// running cycle to finish. Overlapping cycles are skipped.
func (j *Janitor) Start(ctx context.Context, spec string) error {
	l := cronLogger{j.logger}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	if _, err := c.AddFunc(spec, func() { _, _ = j.RunOnce(ctx) }); err != nil {
		return errors.Wrapf(err, "janitor schedule %q", spec)
	}

	j.logger.Info("janitor started", "schedule", spec)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("janitor shut down")
	return nil
}

// RunOnce clears expired password reset tokens and returns how many were
// cleared.
func (j *Janitor) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.JanitorCycleDuration.Observe(time.Since(start).Seconds()) }()

	n, err := j.users.ClearExpiredResetTokens(ctx)
	if err != nil {
		metrics.JanitorRunsTotal.WithLabelValues("error").Inc()
		j.logger.ErrorContext(ctx, "clear expired reset tokens", "error", err)
		return 0, err
	}

	metrics.JanitorRunsTotal.WithLabelValues("ok").Inc()
	metrics.JanitorClearedTotal.Add(float64(n))
	if n > 0 {
		j.logger.InfoContext(ctx, "cleared expired reset tokens", "count", n)
	}
	return n, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
