// Package autoplan runs schedule optimization on a timer so plans stay
// current without anyone calling the optimize endpoint.
package autoplan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	obserrors "github.com/taskdog/taskdog/internal/observability/errors"
	"github.com/taskdog/taskdog/internal/observability/metrics"
	"github.com/taskdog/taskdog/internal/observability/notify"
	"github.com/taskdog/taskdog/internal/observability/statsd"
	"github.com/taskdog/taskdog/internal/service"
	"github.com/taskdog/taskdog/internal/service/failurenotifier"
)

// Optimizer is the slice of OptimizeService the runner needs.
type Optimizer interface {
	Run(ctx context.Context, req service.OptimizeRequest) (*service.OptimizeResult, error)
}

// Runner triggers an optimization run at a fixed interval. Each run uses
// the configured defaults and logs the outcome. Failed ticks do not stop
// the loop.
type Runner struct {
	optimizer Optimizer
	interval  time.Duration
	logger    *slog.Logger
	metrics   statsd.Sink
	notifier  *failurenotifier.Service
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Optimizer Optimizer
	Interval  time.Duration
	Logger    *slog.Logger
	Metrics   statsd.Sink
	Notifier  *failurenotifier.Service
}

// NewRunner creates a new autoplan runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Optimizer == nil {
		return nil, errors.New("optimizer is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		optimizer: opts.Optimizer,
		interval:  opts.Interval,
		logger:    logger.With("component", "autoplan"),
		metrics:   opts.Metrics,
		notifier:  opts.Notifier,
	}, nil
}

// Run starts the autoplan loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting autoplan runner", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "autoplan runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs one optimization pass. Errors are logged and counted; the loop
// keeps running.
func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	result, err := r.optimizer.Run(ctx, service.OptimizeRequest{})
	elapsed := time.Since(start)

	r.emitTickMetrics(result, elapsed, err)

	switch {
	case err != nil:
		r.logger.ErrorContext(ctx, "autoplan run failed", "error", err)
		r.notifyFailure(ctx, err)
	case result.ScheduledCount > 0 || result.FailedCount > 0:
		r.logger.InfoContext(ctx, "autoplan run finished",
			"algorithm", result.Algorithm,
			"scheduled", result.ScheduledCount,
			"failed", result.FailedCount,
			"duration", elapsed,
		)
	}
}

func (r *Runner) notifyFailure(ctx context.Context, err error) {
	if r.notifier == nil || !r.notifier.Enabled() {
		return
	}

	r.notifier.NotifyFailure(ctx, notify.FailurePayload{
		Component:  "autoplan",
		Operation:  "optimize_schedule",
		Subject:    "scheduled optimization run failed",
		Error:      err.Error(),
		ErrorClass: obserrors.Classify(err),
		OccurredAt: time.Now().UTC(),
	})
}

func (r *Runner) emitTickMetrics(result *service.OptimizeResult, elapsed time.Duration, err error) {
	if r.metrics == nil {
		return
	}

	tickResult := metrics.ResultSuccess
	if err != nil {
		tickResult = metrics.ResultError
	} else if result.ScheduledCount == 0 && result.FailedCount == 0 {
		tickResult = metrics.ResultNoop
	}

	tags := map[string]string{
		"result": tickResult,
	}
	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	r.metrics.Count("autoplan.tick", 1, tags)
	if result != nil && result.ScheduledCount > 0 {
		r.metrics.Count("autoplan.tasks_scheduled", int64(result.ScheduledCount), tags)
	}
	if elapsed > 0 {
		r.metrics.Timing("autoplan.tick_duration", elapsed, metrics.CloneTags(tags))
	}
	if err == nil {
		r.metrics.Gauge("autoplan.last_success_epoch", float64(time.Now().Unix()), nil)
	}
}
