package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/taskdog/taskdog/internal/bootstrap"
	"github.com/taskdog/taskdog/internal/core"
	"github.com/taskdog/taskdog/internal/data"
	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/util"
)

type auditStatsOptions struct {
	Operation string
	Timeout   time.Duration
}

type clearGanttCacheOptions struct {
	Yes bool
}

func runAuditStats(cmdCtx *commandContext, args []string) error {
	opts, err := parseAuditStatsFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		repo := data.NewAuditLogRepo(db)

		var operation *string
		if opts.Operation != "" {
			operation = &opts.Operation
		}

		started := time.Now()
		stats, statsErr := repo.Stats(ctx, operation)
		if statsErr != nil {
			return fmt.Errorf("fetch audit stats: %w", statsErr)
		}
		elapsed := time.Since(started)

		return renderAuditStats(os.Stdout, opts, stats, elapsed)
	})
}

func renderAuditStats(w io.Writer, opts auditStatsOptions, stats *model.AuditStats, elapsed time.Duration) error {
	if stats == nil {
		return errors.New("audit stats response is empty")
	}

	scope := "all operations"
	if opts.Operation != "" {
		scope = fmt.Sprintf("operation %q", opts.Operation)
	}
	if err := writef(w, "\nAudit Trail Summary (%s)\n\n", scope); err != nil {
		return fmt.Errorf("print audit stats header: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "Total\t%d\n", stats.Total); err != nil {
		return fmt.Errorf("print audit stats total: %w", err)
	}
	if err := writef(tw, "Succeeded\t%d\n", stats.Succeeded); err != nil {
		return fmt.Errorf("print audit stats succeeded: %w", err)
	}
	if err := writef(tw, "Failed\t%d\n", stats.Failed); err != nil {
		return fmt.Errorf("print audit stats failed: %w", err)
	}
	if stats.Total > 0 {
		rate := float64(stats.Succeeded) / float64(stats.Total) * 100
		if err := writef(tw, "Success rate\t%.1f%%\n", rate); err != nil {
			return fmt.Errorf("print audit stats success rate: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush audit stats table: %w", err)
	}

	if err := writef(w, "\nQuery time: %s\n", util.FormatProcessingDuration(elapsed)); err != nil {
		return fmt.Errorf("print audit stats query time: %w", err)
	}
	return nil
}

func runClearGanttCache(cmdCtx *commandContext, args []string) error {
	opts, err := parseClearGanttCacheFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultQueryTimeout)
	defer cancel()

	redisClient, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cmdCtx.Config.Redis,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient == nil {
		if writeErr := writeln(os.Stderr, "Redis is not enabled; nothing to clear"); writeErr != nil {
			return fmt.Errorf("print redis availability: %w", writeErr)
		}
		return nil
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	cache := core.NewGanttCacheService(data.NewRedisCacheRepo(redisClient), core.DefaultGanttCacheConfig())

	cached, err := cache.GetCachedView(ctx)
	if err != nil {
		return fmt.Errorf("inspect gantt cache: %w", err)
	}
	if len(cached) == 0 {
		if writeErr := writeln(os.Stdout, "No cached gantt payload found"); writeErr != nil {
			return fmt.Errorf("print empty cache notice: %w", writeErr)
		}
		return nil
	}

	confirmOpts := ganttCacheConfirmOptions{yes: opts.Yes, bytes: len(cached)}
	if confirmErr := confirmAction(confirmOpts, "clear the gantt payload cache"); confirmErr != nil {
		return confirmErr
	}

	if err := cache.InvalidateView(ctx); err != nil {
		return fmt.Errorf("clear gantt cache: %w", err)
	}

	cmdCtx.Logger.Info("gantt cache cleared", "payload_bytes", len(cached))
	return nil
}

func parseAuditStatsFlags(args []string) (auditStatsOptions, error) {
	fs := flag.NewFlagSet("audit-stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := auditStatsOptions{
		Timeout: defaultQueryTimeout,
	}

	fs.StringVar(
		&opts.Operation,
		"operation",
		"",
		"Restrict the summary to a single audit operation (e.g. create_task)",
	)
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultQueryTimeout,
		"Maximum duration to wait for the stats query",
	)

	if err := fs.Parse(args); err != nil {
		return auditStatsOptions{}, err
	}

	if opts.Timeout <= 0 {
		return auditStatsOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseClearGanttCacheFlags(args []string) (clearGanttCacheOptions, error) {
	fs := flag.NewFlagSet("clear-gantt-cache", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := clearGanttCacheOptions{}

	fs.BoolVar(
		&opts.Yes,
		"yes",
		false,
		"Skip confirmation prompt",
	)

	if err := fs.Parse(args); err != nil {
		return clearGanttCacheOptions{}, err
	}

	return opts, nil
}

type ganttCacheConfirmOptions struct {
	yes   bool
	bytes int
}

func (g ganttCacheConfirmOptions) IsYes() bool { return g.yes }
func (g ganttCacheConfirmOptions) GetWarning() string {
	return "WARNING: the next gantt request will re-render the view from the database."
}

func (g ganttCacheConfirmOptions) GetTarget() string {
	return fmt.Sprintf("cached gantt payload (%d bytes)", g.bytes)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
