package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/taskdog/taskdog/internal/data"
	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/service"
)

const defaultQueryTimeout = 2 * time.Minute

type listTasksOptions struct {
	All     bool
	Status  string
	Tags    string
	Sort    string
	Reverse bool
	Timeout time.Duration
}

type optimizeRunOptions struct {
	Algorithm      string
	StartDate      string
	MaxHours       float64
	ForceOverride  bool
	IncludeAllDays bool
	Timeout        time.Duration
	AllowRemote    bool
}

type auditFeedOptions struct {
	Limit     int
	BeforeID  int64
	TaskID    int64
	Operation string
	Timeout   time.Duration
}

type taskStatsOptions struct {
	Timeout time.Duration
}

func runListTasks(cmdCtx *commandContext, args []string) error {
	opts, err := parseListTasksFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		svc := service.MustNewTaskService(service.TaskServiceOptions{
			Repo:   data.NewTaskRepo(db),
			Config: cmdCtx.Config.Tasks,
		})

		listOpts := model.TasksListOptions{
			IncludeArchived: opts.All,
			Sort:            opts.Sort,
			Reverse:         opts.Reverse,
		}
		if opts.Status != "" {
			status, ok := model.ParseTaskStatus(opts.Status)
			if !ok {
				return fmt.Errorf("unknown status %q", opts.Status)
			}
			listOpts.Status = &status
		}
		if opts.Tags != "" {
			listOpts.Tags = splitTags(opts.Tags)
		}

		tasks, listErr := svc.List(ctx, listOpts)
		if listErr != nil {
			return fmt.Errorf("list tasks: %w", listErr)
		}

		return renderTaskList(os.Stdout, tasks)
	})
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func renderTaskList(w io.Writer, tasks []*model.Task) error {
	if len(tasks) == 0 {
		if err := writeln(w, "No tasks found"); err != nil {
			return fmt.Errorf("print empty task list: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "ID\tNAME\tSTATUS\tPRIORITY\tESTIMATE\tDEADLINE\tPLANNED\n"); err != nil {
		return fmt.Errorf("print task list header: %w", err)
	}
	for _, t := range tasks {
		if err := writef(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			taskDisplayName(t),
			t.Status,
			renderIntPtr(t.Priority),
			renderHoursPtr(t.EstimatedDuration),
			renderDatePtr(t.Deadline),
			renderPlannedWindow(t),
		); err != nil {
			return fmt.Errorf("print task row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush task list table: %w", err)
	}

	return writef(w, "\nTotal: %d\n", len(tasks))
}

func taskDisplayName(t *model.Task) string {
	name := t.Name
	if t.IsArchived {
		name += " (archived)"
	}
	if t.IsFixed {
		name += " (fixed)"
	}
	return name
}

func renderIntPtr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func renderHoursPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fh", *v)
}

func renderDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func renderPlannedWindow(t *model.Task) string {
	if t.PlannedStart == nil && t.PlannedEnd == nil {
		return "-"
	}
	return renderDatePtr(t.PlannedStart) + ".." + renderDatePtr(t.PlannedEnd)
}

func runOptimize(cmdCtx *commandContext, args []string) error {
	opts, err := parseOptimizeFlags(args)
	if err != nil {
		return err
	}

	if _, guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "rewrite planned schedules on the configured database"); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		svc := service.MustNewOptimizeService(service.OptimizeServiceOptions{
			Repo:         data.NewTaskRepo(db),
			Audit:        data.NewAuditLogRepo(db),
			Holidays:     cmdCtx.Config.Region.Holidays(),
			Location:     cmdCtx.Config.Time.Location(),
			Logger:       cmdCtx.Logger,
			Time:         cmdCtx.Config.Time,
			Optimization: cmdCtx.Config.Optimization,
		})

		req := service.OptimizeRequest{
			Algorithm:      opts.Algorithm,
			StartDate:      opts.StartDate,
			ForceOverride:  opts.ForceOverride,
			IncludeAllDays: opts.IncludeAllDays,
		}
		if opts.MaxHours > 0 {
			req.MaxHoursPerDay = &opts.MaxHours
		}

		result, runErr := svc.Run(ctx, req)
		if runErr != nil {
			return fmt.Errorf("run optimization: %w", runErr)
		}

		return renderOptimizeResult(os.Stdout, result)
	})
}

func renderOptimizeResult(w io.Writer, result *service.OptimizeResult) error {
	if result == nil {
		return errors.New("optimize result is empty")
	}

	if err := writef(w, "\nOptimization run (%s)\n\n", result.Algorithm); err != nil {
		return fmt.Errorf("print optimize header: %w", err)
	}
	if err := writef(w, "Scheduled: %d\nFailed: %d\n", result.ScheduledCount, result.FailedCount); err != nil {
		return fmt.Errorf("print optimize counts: %w", err)
	}

	if len(result.Failed) == 0 {
		return nil
	}

	if err := writeln(w); err != nil {
		return fmt.Errorf("print optimize separator: %w", err)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "TASK\tNAME\tREASON\n"); err != nil {
		return fmt.Errorf("print optimize failure header: %w", err)
	}
	for _, f := range result.Failed {
		if err := writef(tw, "%d\t%s\t%s\n", f.TaskID, f.TaskName, f.Reason); err != nil {
			return fmt.Errorf("print optimize failure row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush optimize failure table: %w", err)
	}
	return nil
}

func runAuditFeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseAuditFeedFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		repo := data.NewAuditLogRepo(db)

		listOpts := model.AuditListOptions{
			BeforeID:  opts.BeforeID,
			Limit:     opts.Limit,
			Operation: opts.Operation,
		}
		if opts.TaskID > 0 {
			listOpts.TaskID = &opts.TaskID
		}

		entries, listErr := repo.List(ctx, listOpts)
		if listErr != nil {
			return fmt.Errorf("list audit entries: %w", listErr)
		}

		return renderAuditFeed(os.Stdout, entries)
	})
}

func renderAuditFeed(w io.Writer, entries []*model.AuditEntry) error {
	if len(entries) == 0 {
		if err := writeln(w, "No audit entries found"); err != nil {
			return fmt.Errorf("print empty audit feed: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "ID\tTIMESTAMP\tOPERATION\tTASK\tRESULT\tDETAIL\n"); err != nil {
		return fmt.Errorf("print audit feed header: %w", err)
	}
	for _, e := range entries {
		result := "ok"
		detail := ""
		if !e.Success {
			result = "failed"
			detail = e.ErrorMessage
		}
		taskCol := "-"
		if e.TaskID != nil {
			taskCol = fmt.Sprintf("%d %s", *e.TaskID, e.TaskName)
		} else if e.TaskName != "" {
			taskCol = e.TaskName
		}
		if err := writef(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Timestamp.Format(time.RFC3339),
			e.Operation,
			taskCol,
			result,
			detail,
		); err != nil {
			return fmt.Errorf("print audit feed row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush audit feed table: %w", err)
	}
	return nil
}

func runTaskStats(cmdCtx *commandContext, args []string) error {
	opts, err := parseTaskStatsFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		tasks, listErr := data.NewTaskRepo(db).GetAll(ctx)
		if listErr != nil {
			return fmt.Errorf("load tasks: %w", listErr)
		}

		return renderTaskStats(os.Stdout, tasks)
	})
}

func renderTaskStats(w io.Writer, tasks []*model.Task) error {
	byStatus := map[model.TaskStatus]int{}
	archived := 0
	var plannedHours, actualHours float64
	for _, t := range tasks {
		byStatus[t.Status]++
		if t.IsArchived {
			archived++
		}
		for _, h := range t.DailyAllocations {
			plannedHours += h
		}
		for _, h := range t.ActualDailyHours {
			actualHours += h
		}
	}

	if err := writef(w, "\nTask Statistics\n\n"); err != nil {
		return fmt.Errorf("print task stats header: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "Total\t%d\n", len(tasks)); err != nil {
		return fmt.Errorf("print task stats total: %w", err)
	}
	statuses := make([]string, 0, len(byStatus))
	for s := range byStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		if err := writef(tw, "%s\t%d\n", s, byStatus[model.TaskStatus(s)]); err != nil {
			return fmt.Errorf("print task stats status: %w", err)
		}
	}
	if err := writef(tw, "archived\t%d\n", archived); err != nil {
		return fmt.Errorf("print task stats archived: %w", err)
	}
	if err := writef(tw, "planned hours\t%.1f\n", plannedHours); err != nil {
		return fmt.Errorf("print task stats planned hours: %w", err)
	}
	if err := writef(tw, "logged hours\t%.1f\n", actualHours); err != nil {
		return fmt.Errorf("print task stats logged hours: %w", err)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush task stats table: %w", err)
	}
	return nil
}

func parseListTasksFlags(args []string) (listTasksOptions, error) {
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := listTasksOptions{
		Timeout: defaultQueryTimeout,
	}

	fs.BoolVar(&opts.All, "all", false, "Include archived tasks")
	fs.StringVar(&opts.Status, "status", "", "Filter by status (pending, in_progress, completed, canceled)")
	fs.StringVar(&opts.Tags, "tags", "", "Comma-separated tags; tasks must carry all of them")
	fs.StringVar(&opts.Sort, "sort", "", "Sort field (id, name, priority, deadline, status, created_at)")
	fs.BoolVar(&opts.Reverse, "reverse", false, "Reverse the sort order")
	fs.DurationVar(&opts.Timeout, "timeout", defaultQueryTimeout, "Maximum duration to wait for the query")

	if err := fs.Parse(args); err != nil {
		return listTasksOptions{}, err
	}

	if opts.Timeout <= 0 {
		return listTasksOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseOptimizeFlags(args []string) (optimizeRunOptions, error) {
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := optimizeRunOptions{
		Timeout: defaultQueryTimeout,
	}

	fs.StringVar(&opts.Algorithm, "algorithm", "", "Strategy to run (defaults to the configured algorithm)")
	fs.StringVar(&opts.StartDate, "start-date", "", "First bookable day (YYYY-MM-DD, defaults to today)")
	fs.Float64Var(&opts.MaxHours, "max-hours", 0, "Override the daily capacity in hours")
	fs.BoolVar(&opts.ForceOverride, "force", false, "Reschedule tasks that already carry allocations")
	fs.BoolVar(&opts.IncludeAllDays, "include-all-days", false, "Make weekends and holidays bookable")
	fs.DurationVar(&opts.Timeout, "timeout", defaultQueryTimeout, "Maximum duration to wait for the run")
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")

	if err := fs.Parse(args); err != nil {
		return optimizeRunOptions{}, err
	}

	if opts.Timeout <= 0 {
		return optimizeRunOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseAuditFeedFlags(args []string) (auditFeedOptions, error) {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := auditFeedOptions{
		Limit:   50,
		Timeout: defaultQueryTimeout,
	}

	fs.IntVar(&opts.Limit, "limit", 50, "Maximum number of entries to show")
	fs.Int64Var(&opts.BeforeID, "before-id", 0, "Only show entries with a smaller id (pagination cursor)")
	fs.Int64Var(&opts.TaskID, "task-id", 0, "Restrict the feed to one task")
	fs.StringVar(&opts.Operation, "operation", "", "Restrict the feed to one operation (e.g. create_task)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultQueryTimeout, "Maximum duration to wait for the query")

	if err := fs.Parse(args); err != nil {
		return auditFeedOptions{}, err
	}

	if opts.Timeout <= 0 {
		return auditFeedOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.Limit <= 0 {
		return auditFeedOptions{}, errors.New("--limit must be greater than zero")
	}

	return opts, nil
}

func parseTaskStatsFlags(args []string) (taskStatsOptions, error) {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := taskStatsOptions{
		Timeout: defaultQueryTimeout,
	}

	fs.DurationVar(&opts.Timeout, "timeout", defaultQueryTimeout, "Maximum duration to wait for the query")

	if err := fs.Parse(args); err != nil {
		return taskStatsOptions{}, err
	}

	if opts.Timeout <= 0 {
		return taskStatsOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}
