package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/taskdog/taskdog/config"
	"github.com/taskdog/taskdog/internal/core"
	"github.com/taskdog/taskdog/internal/data"
	"github.com/taskdog/taskdog/internal/domain/auth"
	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/domain/schedule"
	apperrors "github.com/taskdog/taskdog/internal/errors"
	"github.com/taskdog/taskdog/internal/observability/metrics"
	"github.com/taskdog/taskdog/internal/observability/statsd"
	"github.com/taskdog/taskdog/internal/service/failurenotifier"
)

// optimizeRunLockKey is the cross-instance single-flight lock for schedule
// runs. The TTL is a crash backstop; a completed run releases the key.
const (
	optimizeRunLockKey = "taskdog:optimize:lock"
	optimizeRunLockTTL = time.Minute
)

// OptimizeRequest carries one optimization run's inputs. Unset fields fall
// back to the configured defaults.
type OptimizeRequest struct {
	// Algorithm names the strategy to run.
	Algorithm string `json:"algorithm,omitempty"`

	// StartDate is the first bookable day (YYYY-MM-DD). Unset means today.
	StartDate string `json:"start_date,omitempty"`

	// MaxHoursPerDay overrides the configured daily capacity.
	MaxHoursPerDay *float64 `json:"max_hours_per_day,omitempty"`

	// ForceOverride reschedules tasks that already carry allocations.
	ForceOverride bool `json:"force_override,omitempty"`

	// TaskIDs restricts the run to the named tasks. Ids that name no task
	// fail validation.
	TaskIDs []int64 `json:"task_ids,omitempty"`

	// IncludeAllDays makes weekends and holidays bookable.
	IncludeAllDays bool `json:"include_all_days,omitempty"`
}

// OptimizeFailure describes one task the run could not place.
type OptimizeFailure struct {
	TaskID   int64  `json:"task_id"`
	TaskName string `json:"task_name"`
	Reason   string `json:"reason"`
}

// OptimizeResult is the run summary returned to the caller. Scheduled tasks
// are already persisted when it is built.
type OptimizeResult struct {
	Algorithm      string            `json:"algorithm"`
	ScheduledCount int               `json:"scheduled_count"`
	FailedCount    int               `json:"failed_count"`
	Scheduled      []*model.Task     `json:"scheduled"`
	Failed         []OptimizeFailure `json:"failed"`
}

// OptimizeServiceOptions groups dependencies for OptimizeService.
type OptimizeServiceOptions struct {
	Repo         core.TaskRepository      // Required: task storage
	Audit        core.AuditLogRepository  // Optional: audit trail storage
	Broadcaster  core.EventBroadcaster    // Optional: event fan-out to listeners
	GanttCache   *core.GanttCacheService  // Optional: cached gantt payload
	Cache        core.CacheRepository     // Optional: cross-instance run lock
	Holidays     schedule.HolidayChecker  // Optional: public-holiday calendar
	TimeProvider data.TimeProvider        // Optional: defaults to the real clock
	Location     *time.Location           // Optional: zone for date bucketing, defaults to UTC
	Metrics      statsd.Sink              // Optional: metrics sink (StatsD-compatible)
	Notifier     *failurenotifier.Service // Optional: failure notification fan-out
	Logger       *slog.Logger             // Optional: structured logger
	Time         config.TimeConfig        // Working-day bounds
	Optimization config.OptimizationConfig
}

// OptimizeService runs schedule optimization: it selects the candidate
// tasks, hands them to the requested strategy together with a grid of
// everyone else's allocations, and persists the produced plan atomically.
// Runs are single-flight per deployment; a concurrent request gets a
// conflict instead of a second run.
type OptimizeService struct {
	repo        core.TaskRepository
	audit       *auditTrail
	broadcaster core.EventBroadcaster
	ganttCache  *core.GanttCacheService
	cache       core.CacheRepository
	holidays    schedule.HolidayChecker
	clock       data.TimeProvider
	location    *time.Location
	metrics     statsd.Sink
	logger      *slog.Logger
	timeCfg     config.TimeConfig
	optCfg      config.OptimizationConfig

	runMu sync.Mutex
}

// NewOptimizeService constructs a new OptimizeService.
func NewOptimizeService(opts OptimizeServiceOptions) (*OptimizeService, error) {
	if opts.Repo == nil {
		return nil, errors.New("TaskRepository is required")
	}

	clock := opts.TimeProvider
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}

	location := opts.Location
	if location == nil {
		location = time.UTC
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "optimize_service")
	}

	return &OptimizeService{
		repo:        opts.Repo,
		broadcaster: opts.Broadcaster,
		ganttCache:  opts.GanttCache,
		cache:       opts.Cache,
		holidays:    opts.Holidays,
		clock:       clock,
		location:    location,
		metrics:     opts.Metrics,
		logger:      logger,
		timeCfg:     opts.Time,
		optCfg:      opts.Optimization,
		audit: &auditTrail{
			repo:     opts.Audit,
			logger:   logger,
			metrics:  opts.Metrics,
			notifier: opts.Notifier,
		},
	}, nil
}

// MustNewOptimizeService constructs a new OptimizeService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewOptimizeService(opts OptimizeServiceOptions) *OptimizeService {
	svc, err := NewOptimizeService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

// Run executes one optimization run and returns its summary. Scheduled
// tasks are saved in a single transaction before the summary is built, so a
// returned plan is always the persisted plan.
func (s *OptimizeService) Run(ctx context.Context, req OptimizeRequest) (*OptimizeResult, error) {
	algorithm, params, err := s.prepareRun(req)
	if err != nil {
		s.recordRunRejected(ctx, req.Algorithm, req, err)
		return nil, err
	}

	release, err := s.acquireRunLock(ctx)
	if err != nil {
		s.recordRunRejected(ctx, string(algorithm), req, err)
		return nil, err
	}
	defer release()

	started := time.Now()

	tasks, err := s.repo.GetAll(ctx)
	if err != nil {
		err = fmt.Errorf("load tasks: %w", err)
		s.recordRunError(ctx, algorithm, req, time.Since(started), err)
		return nil, err
	}

	candidates, others, err := selectOptimizeCandidates(tasks, req)
	if err != nil {
		s.recordRunRejected(ctx, string(algorithm), req, err)
		return nil, err
	}

	if len(candidates) == 0 {
		metrics.EmitOptimizeRun(s.metrics, metrics.OptimizeMetric{
			Algorithm: string(algorithm),
			Result:    metrics.ResultNoop,
			Duration:  time.Since(started),
		})
		s.audit.success(ctx, model.AuditOpOptimizeSchedule, nil, nil,
			runAuditValues(algorithm, 0, 0))
		if s.logger != nil {
			s.logger.InfoContext(ctx, "optimization run had no candidates", "algorithm", algorithm)
		}
		return emptyOptimizeResult(algorithm), nil
	}

	strategy, err := schedule.New(algorithm)
	if err != nil {
		s.recordRunRejected(ctx, string(algorithm), req, err)
		return nil, err
	}

	grid := schedule.NewGrid(others)
	runResult := strategy.Run(ctx, candidates, grid, params)

	if len(runResult.Scheduled) > 0 {
		if err := s.repo.SaveAll(ctx, runResult.Scheduled); err != nil {
			err = fmt.Errorf("save scheduled tasks: %w", err)
			s.recordRunError(ctx, algorithm, req, time.Since(started), err)
			return nil, err
		}
	}

	scheduled, failed := runResult.Counts()
	duration := time.Since(started)

	metrics.EmitOptimizeRun(s.metrics, metrics.OptimizeMetric{
		Algorithm: string(algorithm),
		Result:    metrics.ResultSuccess,
		Scheduled: scheduled,
		Failed:    failed,
		Duration:  duration,
	})
	s.audit.success(ctx, model.AuditOpOptimizeSchedule, nil, nil,
		runAuditValues(algorithm, scheduled, failed))
	s.invalidateGantt(ctx)
	s.broadcastOptimized(scheduled, failed, algorithm, auth.ActorSource(ctx))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "optimization run finished",
			"algorithm", algorithm,
			"scheduled", scheduled,
			"failed", failed,
			"duration", duration,
		)
	}
	return buildOptimizeResult(algorithm, runResult), nil
}

// prepareRun resolves the request against the configured defaults into
// strategy parameters.
func (s *OptimizeService) prepareRun(req OptimizeRequest) (schedule.Algorithm, schedule.Params, error) {
	name := req.Algorithm
	if name == "" {
		name = s.optCfg.DefaultAlgorithm
	}
	algorithm, ok := schedule.ParseAlgorithm(name)
	if !ok {
		return "", schedule.Params{}, apperrors.ValidationField("algorithm",
			fmt.Sprintf("unknown algorithm %q", name))
	}

	maxHours := s.optCfg.MaxHoursPerDay
	if req.MaxHoursPerDay != nil {
		maxHours = *req.MaxHoursPerDay
	}
	if maxHours <= 0 || maxHours > 24 {
		return "", schedule.Params{}, apperrors.ValidationField("max_hours_per_day",
			"must be between 0 and 24")
	}

	now := s.clock.Now().In(s.location)
	startDate := s.clock.Today(s.location)
	if req.StartDate != "" {
		parsed, err := model.ParseDate(req.StartDate)
		if err != nil {
			return "", schedule.Params{}, apperrors.ValidationField("start_date",
				"must be a YYYY-MM-DD date")
		}
		startDate = parsed
	}

	params := schedule.Params{
		StartDate:      startDate,
		MaxHoursPerDay: maxHours,
		IncludeAllDays: req.IncludeAllDays,
		Holidays:       s.holidays,
		StartHour:      s.timeCfg.DefaultStartHour,
		EndHour:        s.timeCfg.DefaultEndHour,
		Location:       s.location,
		HorizonDays:    s.optCfg.HorizonDays,
		Trials:         s.optCfg.MonteCarloTrials,
		Population:     s.optCfg.GeneticPopulation,
		Generations:    s.optCfg.GeneticGenerations,
		TimeBudget:     s.optCfg.TimeBudget,
		Logger:         s.logger,
	}
	if startDate == s.clock.Today(s.location) {
		params.CurrentTime = &now
	}
	return algorithm, params, nil
}

// acquireRunLock makes runs single-flight. The in-process mutex always
// guards; when a cache is wired, a SetNX key extends the guard across
// instances. A cache outage degrades to the process-local lock instead of
// blocking runs.
func (s *OptimizeService) acquireRunLock(ctx context.Context) (func(), error) {
	if !s.runMu.TryLock() {
		return nil, apperrors.Conflict("a schedule optimization run is already in progress")
	}
	if s.cache == nil {
		return s.runMu.Unlock, nil
	}

	ok, err := s.cache.SetIfNotExists(ctx, optimizeRunLockKey, []byte("1"), optimizeRunLockTTL)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "optimize run lock unavailable, using process-local lock", "error", err)
		}
		return s.runMu.Unlock, nil
	}
	if !ok {
		s.runMu.Unlock()
		return nil, apperrors.Conflict("a schedule optimization run is already in progress")
	}

	return func() {
		releaseCtx := context.WithoutCancel(ctx)
		if _, err := s.cache.Delete(releaseCtx, optimizeRunLockKey); err != nil && s.logger != nil {
			s.logger.Warn("failed to release optimize run lock", "error", err)
		}
		s.runMu.Unlock()
	}, nil
}

// selectOptimizeCandidates splits the task list into run candidates and the
// context tasks whose allocations seed the grid. Archived tasks count for
// neither. Explicitly requested tasks skip the fixed and estimate
// pre-filters so the strategy reports why they cannot be placed; bulk runs
// drop those tasks silently.
func selectOptimizeCandidates(tasks []*model.Task, req OptimizeRequest) (candidates, others []*model.Task, err error) {
	var explicit map[int64]bool
	if len(req.TaskIDs) > 0 {
		explicit = make(map[int64]bool, len(req.TaskIDs))
		known := make(map[int64]bool, len(tasks))
		for _, t := range tasks {
			known[t.ID] = true
		}
		var unknown []int64
		for _, id := range req.TaskIDs {
			if explicit[id] {
				continue
			}
			if !known[id] {
				unknown = append(unknown, id)
				continue
			}
			explicit[id] = true
		}
		if len(unknown) > 0 {
			slices.Sort(unknown)
			return nil, nil, apperrors.ValidationField("task_ids",
				fmt.Sprintf("unknown task ids %v", unknown))
		}
	}

	for _, t := range tasks {
		if t.IsArchived {
			continue
		}
		if isOptimizeCandidate(t, req, explicit) {
			candidates = append(candidates, t)
		} else {
			others = append(others, t)
		}
	}
	return candidates, others, nil
}

func isOptimizeCandidate(t *model.Task, req OptimizeRequest, explicit map[int64]bool) bool {
	if t.Status != model.TaskStatusPending && t.Status != model.TaskStatusInProgress {
		return false
	}
	if t.HasAllocations() && !req.ForceOverride {
		return false
	}
	if explicit != nil {
		return explicit[t.ID]
	}
	return !t.IsFixed && t.EstimatedDuration != nil && *t.EstimatedDuration > 0
}

func (s *OptimizeService) broadcastOptimized(scheduled, failed int, algorithm schedule.Algorithm, source *string) {
	if s.broadcaster == nil {
		return
	}
	event := model.NewScheduleOptimized(scheduled, failed, string(algorithm), source)
	go func(e model.Event) {
		defer func() {
			if r := recover(); r != nil && s.logger != nil {
				s.logger.Error("panic in event broadcast", "event_type", e.Type, "panic", r)
			}
		}()
		s.broadcaster.Broadcast(e)
	}(event)
}

func (s *OptimizeService) invalidateGantt(ctx context.Context) {
	if s.ganttCache == nil {
		return
	}
	if err := s.ganttCache.InvalidateView(ctx); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to invalidate gantt cache", "error", err)
	}
}

// recordRunRejected audits a run that never started (validation failures
// and lock conflicts).
func (s *OptimizeService) recordRunRejected(ctx context.Context, algorithm string, req OptimizeRequest, cause error) {
	metrics.EmitOptimizeRun(s.metrics, metrics.OptimizeMetric{
		Algorithm: algorithm,
		Result:    metrics.ResultError,
		Err:       cause,
	})
	s.audit.failure(ctx, model.AuditOpOptimizeSchedule, nil, "", requestedRunValues(algorithm, req), cause)
}

// recordRunError audits a run that started and then failed.
func (s *OptimizeService) recordRunError(ctx context.Context, algorithm schedule.Algorithm, req OptimizeRequest, duration time.Duration, cause error) {
	metrics.EmitOptimizeRun(s.metrics, metrics.OptimizeMetric{
		Algorithm: string(algorithm),
		Result:    metrics.ResultError,
		Duration:  duration,
		Err:       cause,
	})
	s.audit.failure(ctx, model.AuditOpOptimizeSchedule, nil, "", requestedRunValues(string(algorithm), req), cause)
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "optimization run failed",
			"algorithm", algorithm, "error", cause)
	}
}

func runAuditValues(algorithm schedule.Algorithm, scheduled, failed int) map[string]any {
	return map[string]any{
		"algorithm":       string(algorithm),
		"scheduled_count": scheduled,
		"failed_count":    failed,
	}
}

func requestedRunValues(algorithm string, req OptimizeRequest) map[string]any {
	values := map[string]any{"algorithm": algorithm}
	if req.StartDate != "" {
		values["start_date"] = req.StartDate
	}
	if req.MaxHoursPerDay != nil {
		values["max_hours_per_day"] = *req.MaxHoursPerDay
	}
	if req.ForceOverride {
		values["force_override"] = true
	}
	if len(req.TaskIDs) > 0 {
		values["task_ids"] = req.TaskIDs
	}
	if req.IncludeAllDays {
		values["include_all_days"] = true
	}
	return values
}

func emptyOptimizeResult(algorithm schedule.Algorithm) *OptimizeResult {
	return &OptimizeResult{
		Algorithm: string(algorithm),
		Scheduled: []*model.Task{},
		Failed:    []OptimizeFailure{},
	}
}

func buildOptimizeResult(algorithm schedule.Algorithm, run schedule.Result) *OptimizeResult {
	scheduled, failed := run.Counts()
	out := &OptimizeResult{
		Algorithm:      string(algorithm),
		ScheduledCount: scheduled,
		FailedCount:    failed,
		Scheduled:      run.Scheduled,
		Failed:         make([]OptimizeFailure, 0, len(run.Failed)),
	}
	if out.Scheduled == nil {
		out.Scheduled = []*model.Task{}
	}
	for _, f := range run.Failed {
		out.Failed = append(out.Failed, OptimizeFailure{
			TaskID:   f.Task.ID,
			TaskName: f.Task.Name,
			Reason:   f.Reason,
		})
	}
	return out
}
