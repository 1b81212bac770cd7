package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskdog/taskdog/config"
	"github.com/taskdog/taskdog/internal/core"
	"github.com/taskdog/taskdog/internal/data"
	"github.com/taskdog/taskdog/internal/domain/auth"
	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/domain/schedule"
	"github.com/taskdog/taskdog/internal/domain/validate"
	apperrors "github.com/taskdog/taskdog/internal/errors"
	"github.com/taskdog/taskdog/internal/observability/statsd"
	"github.com/taskdog/taskdog/internal/service/failurenotifier"
)

// TaskServiceOptions groups dependencies for TaskService.
type TaskServiceOptions struct {
	Repo         core.TaskRepository       // Required: task storage
	Audit        core.AuditLogRepository   // Optional: audit trail storage
	Broadcaster  core.EventBroadcaster     // Optional: event fan-out to listeners
	GanttCache   *core.GanttCacheService   // Optional: cached gantt payload
	Validators   *validate.Registry        // Optional: defaults to the standard registry
	Holidays     schedule.HolidayChecker   // Optional: public-holiday calendar
	TimeProvider data.TimeProvider         // Optional: defaults to the real clock
	Location     *time.Location            // Optional: zone for date bucketing, defaults to UTC
	Metrics      statsd.Sink               // Optional: metrics sink (StatsD-compatible)
	Notifier     *failurenotifier.Service  // Optional: failure notification fan-out
	Logger       *slog.Logger              // Optional: structured logger
	Config       config.TaskConfig         // Task creation defaults
}

// TaskService implements the task use-cases. Every write follows the same
// skeleton: load, validate, mutate, persist, audit, broadcast. Audit entries
// are written synchronously before the call returns; events go out
// asynchronously so slow listeners never block a write. Writes to the same
// task are serialized through striped locks.
type TaskService struct {
	repo        core.TaskRepository
	audit       *auditTrail
	broadcaster core.EventBroadcaster
	ganttCache  *core.GanttCacheService
	validators  *validate.Registry
	holidays    schedule.HolidayChecker
	clock       data.TimeProvider
	location    *time.Location
	metrics     statsd.Sink
	logger      *slog.Logger
	config      config.TaskConfig
	locks       taskLocks
}

// NewTaskService constructs a new TaskService.
func NewTaskService(opts TaskServiceOptions) (*TaskService, error) {
	if opts.Repo == nil {
		return nil, errors.New("TaskRepository is required")
	}

	validators := opts.Validators
	if validators == nil {
		validators = validate.NewRegistry()
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
		logger = opts.Logger.With("component", "task_service")
	}

	return &TaskService{
		repo:        opts.Repo,
		broadcaster: opts.Broadcaster,
		ganttCache:  opts.GanttCache,
		validators:  validators,
		holidays:    opts.Holidays,
		clock:       clock,
		location:    location,
		metrics:     opts.Metrics,
		logger:      logger,
		config:      opts.Config,
		audit: &auditTrail{
			repo:     opts.Audit,
			logger:   logger,
			metrics:  opts.Metrics,
			notifier: opts.Notifier,
		},
	}, nil
}

// MustNewTaskService constructs a new TaskService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewTaskService(opts TaskServiceOptions) *TaskService {
	svc, err := NewTaskService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

// Create validates the request and stores a new task. Tasks created without
// a priority get the configured default; a planned period with an estimate
// gets daily allocations spread over it immediately.
func (s *TaskService) Create(ctx context.Context, req *model.CreateTaskRequest) (*model.Task, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	req.Normalize()

	if err := s.validateCreate(ctx, req); err != nil {
		s.audit.failure(ctx, model.AuditOpCreateTask, nil, req.Name, createRequestValues(req), err)
		return nil, err
	}

	task := s.buildTask(req)
	created, err := s.repo.Create(ctx, task)
	if err != nil {
		err = fmt.Errorf("create task: %w", err)
		s.audit.failure(ctx, model.AuditOpCreateTask, nil, req.Name, createRequestValues(req), err)
		return nil, err
	}

	s.audit.success(ctx, model.AuditOpCreateTask, created, nil, taskSnapshot(created))
	s.afterWrite(ctx, model.NewTaskCreated(created, auth.ActorSource(ctx)))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "task created", "task_id", created.ID, "name", created.Name)
	}
	return created, nil
}

func (s *TaskService) validateCreate(ctx context.Context, req *model.CreateTaskRequest) error {
	if err := req.Validate(); err != nil {
		return asValidationError(err)
	}
	return validate.CheckDependencies(ctx, 0, req.DependsOn, s.repo)
}

func (s *TaskService) buildTask(req *model.CreateTaskRequest) *model.Task {
	task := &model.Task{
		Name:              req.Name,
		Priority:          req.Priority,
		EstimatedDuration: req.EstimatedDuration,
		Deadline:          req.Deadline,
		Status:            model.TaskStatusPending,
		PlannedStart:      req.PlannedStart,
		PlannedEnd:        req.PlannedEnd,
		Notes:             req.Notes,
		IsFixed:           req.IsFixed,
		Tags:              append([]string(nil), req.Tags...),
		DependsOn:         append([]int64(nil), req.DependsOn...),
	}
	if task.Priority == nil {
		priority := s.config.DefaultPriority
		task.Priority = &priority
	}
	s.respread(task)
	return task
}

// Get returns the task with the given id.
func (s *TaskService) Get(ctx context.Context, id int64) (*model.Task, error) {
	return s.loadTask(ctx, id)
}

// List returns the tasks passing the filter, ordered per the options.
// Archived tasks are excluded unless the options include them.
func (s *TaskService) List(ctx context.Context, opts model.TasksListOptions) ([]*model.Task, error) {
	tasks, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	filtered := make([]*model.Task, 0, len(tasks))
	for _, task := range tasks {
		if opts.Matches(task) {
			filtered = append(filtered, task)
		}
	}
	model.SortTasks(filtered, opts)
	return filtered, nil
}

// Gantt renders the allocation view for the tasks passing the filter. The
// unfiltered view is served from the cross-instance cache when present;
// filtered views are computed per request.
func (s *TaskService) Gantt(ctx context.Context, opts model.TasksListOptions) (model.GanttView, error) {
	cacheable := s.ganttCache != nil && defaultGanttFilter(opts)
	if cacheable {
		if view, ok := s.cachedGantt(ctx); ok {
			return view, nil
		}
	}

	tasks, err := s.List(ctx, opts)
	if err != nil {
		return model.GanttView{}, err
	}

	view := model.NewGanttView(tasks, func(t *model.Task) model.HoursByDate {
		return schedule.SpreadActualSchedule(t, s.holidays, s.location)
	})

	if cacheable {
		s.storeGantt(ctx, view)
	}
	return view, nil
}

// defaultGanttFilter reports whether the filter portion of the options is
// the default. Sort and direction never change gantt content, so only the
// filter decides cacheability.
func defaultGanttFilter(opts model.TasksListOptions) bool {
	return !opts.IncludeArchived &&
		opts.Status == nil &&
		len(opts.Tags) == 0 &&
		opts.StartDate.IsZero() &&
		opts.EndDate.IsZero()
}

func (s *TaskService) cachedGantt(ctx context.Context) (model.GanttView, bool) {
	payload, err := s.ganttCache.GetCachedView(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to read cached gantt view", "error", err)
		}
		return model.GanttView{}, false
	}
	if len(payload) == 0 {
		return model.GanttView{}, false
	}
	var view model.GanttView
	if err := json.Unmarshal(payload, &view); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "discarding malformed cached gantt view", "error", err)
		}
		return model.GanttView{}, false
	}
	if s.metrics != nil {
		s.metrics.Count("gantt.cache_hits", 1, nil)
	}
	return view, true
}

func (s *TaskService) storeGantt(ctx context.Context, view model.GanttView) {
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.ganttCache.CacheView(ctx, payload); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to cache gantt view", "error", err)
	}
}

// Update applies a partial update. Status changes go through the lifecycle
// transitions so time tracking stays consistent; changes to the planned
// period or the estimate recompute the daily allocations. One TaskUpdated
// event carries the changed field list; a status move adds a
// TaskStatusChanged event.
func (s *TaskService) Update(ctx context.Context, id int64, req *model.UpdateTaskRequest) (*model.Task, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}

	defer s.locks.lock(id).Unlock()

	task, err := s.loadTask(ctx, id)
	if err != nil {
		s.audit.failure(ctx, model.AuditOpUpdateTask, &id, "", requestedUpdateValues(req), err)
		return nil, err
	}

	if err := s.validateUpdate(ctx, req, task); err != nil {
		s.audit.failure(ctx, model.AuditOpUpdateTask, &id, task.Name, requestedUpdateValues(req), err)
		return nil, err
	}

	updated := task.Clone()
	oldStatus := task.Status
	if err := s.applyUpdate(updated, req); err != nil {
		s.audit.failure(ctx, model.AuditOpUpdateTask, &id, task.Name, requestedUpdateValues(req), err)
		return nil, err
	}
	if req.TouchesSchedule() {
		s.respread(updated)
	}

	if err := updated.Validate(); err != nil {
		err = asValidationError(err)
		s.audit.failure(ctx, model.AuditOpUpdateTask, &id, task.Name, requestedUpdateValues(req), err)
		return nil, err
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		err = fmt.Errorf("save task %d: %w", id, err)
		s.audit.failure(ctx, model.AuditOpUpdateTask, &id, task.Name, requestedUpdateValues(req), err)
		return nil, err
	}

	fields := req.Fields()
	s.audit.success(ctx, model.AuditOpUpdateTask, updated,
		taskFieldValues(task, fields...), taskFieldValues(updated, fields...))

	source := auth.ActorSource(ctx)
	s.afterWrite(ctx, model.NewTaskUpdated(updated, fields, source))
	if updated.Status != oldStatus {
		s.broadcastAsync(model.NewTaskStatusChanged(updated, oldStatus, source))
	}
	return updated, nil
}

func (s *TaskService) validateUpdate(ctx context.Context, req *model.UpdateTaskRequest, task *model.Task) error {
	if err := req.Validate(); err != nil {
		return asValidationError(err)
	}
	return s.validators.ValidateFields(ctx, req, task, s.repo)
}

// applyUpdate copies the present request fields onto the task. The request
// was validated already, so the lifecycle delegation is not expected to
// fail; its error is still propagated rather than swallowed.
func (s *TaskService) applyUpdate(task *model.Task, req *model.UpdateTaskRequest) error {
	for _, field := range req.Fields() {
		switch field {
		case model.FieldName:
			task.Name = strings.TrimSpace(*req.Name)
		case model.FieldPriority:
			task.Priority = updatedPtr(req.Clears(field), req.Priority)
		case model.FieldEstimatedDuration:
			task.EstimatedDuration = updatedPtr(req.Clears(field), req.EstimatedDuration)
		case model.FieldDeadline:
			task.Deadline = updatedPtr(req.Clears(field), req.Deadline)
		case model.FieldPlannedStart:
			task.PlannedStart = updatedPtr(req.Clears(field), req.PlannedStart)
		case model.FieldPlannedEnd:
			task.PlannedEnd = updatedPtr(req.Clears(field), req.PlannedEnd)
		case model.FieldIsFixed:
			task.IsFixed = *req.IsFixed
		case model.FieldStatus:
			if err := s.applyStatus(task, *req.Status); err != nil {
				return err
			}
		case model.FieldNotes:
			task.Notes = updatedPtr(req.Clears(field), req.Notes)
		case model.FieldTags:
			if req.Clears(field) {
				task.Tags = nil
			} else {
				task.Tags = append([]string(nil), req.Tags...)
			}
		case model.FieldDependsOn:
			if req.Clears(field) {
				task.DependsOn = nil
			} else {
				task.DependsOn = append([]int64(nil), req.DependsOn...)
			}
		}
	}
	return nil
}

// applyStatus delegates a status change to the matching lifecycle
// transition.
func (s *TaskService) applyStatus(task *model.Task, target model.TaskStatus) error {
	if target == task.Status {
		return nil
	}
	now := s.clock.Now()
	switch target {
	case model.TaskStatusPending:
		task.Reopen()
		return nil
	case model.TaskStatusInProgress:
		return task.Start(now)
	case model.TaskStatusCompleted:
		return task.Complete(now)
	case model.TaskStatusCanceled:
		return task.Cancel(now)
	default:
		return apperrors.ValidationField(model.FieldStatus, fmt.Sprintf("unsupported status %q", target))
	}
}

func updatedPtr[T any](cleared bool, value *T) *T {
	if cleared {
		return nil
	}
	return value
}

// Delete removes the task permanently. Absent ids return not_found; the
// audit entry keeps the last snapshot of the deleted row.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	defer s.locks.lock(id).Unlock()

	task, err := s.loadTask(ctx, id)
	if err != nil {
		s.audit.failure(ctx, model.AuditOpDeleteTask, &id, "", nil, err)
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		err = fmt.Errorf("delete task %d: %w", id, err)
		s.audit.failure(ctx, model.AuditOpDeleteTask, &id, task.Name, nil, err)
		return err
	}

	s.audit.success(ctx, model.AuditOpDeleteTask, task, taskSnapshot(task), nil)
	s.afterWrite(ctx, model.NewTaskDeleted(task, auth.ActorSource(ctx)))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "task deleted", "task_id", id, "name", task.Name)
	}
	return nil
}

// Archive soft-deletes the task. Archiving an archived task is a no-op.
func (s *TaskService) Archive(ctx context.Context, id int64) (*model.Task, error) {
	return s.setArchived(ctx, id, true, model.AuditOpArchiveTask)
}

// Restore clears the archive flag. Restoring an active task is a no-op.
func (s *TaskService) Restore(ctx context.Context, id int64) (*model.Task, error) {
	return s.setArchived(ctx, id, false, model.AuditOpRestoreTask)
}

func (s *TaskService) setArchived(ctx context.Context, id int64, archived bool, op string) (*model.Task, error) {
	defer s.locks.lock(id).Unlock()

	task, err := s.loadTask(ctx, id)
	if err != nil {
		s.audit.failure(ctx, op, &id, "", nil, err)
		return nil, err
	}
	if task.IsArchived == archived {
		return task, nil
	}

	updated := task.Clone()
	updated.IsArchived = archived
	if err := s.repo.Save(ctx, updated); err != nil {
		err = fmt.Errorf("save task %d: %w", id, err)
		s.audit.failure(ctx, op, &id, task.Name, nil, err)
		return nil, err
	}

	s.audit.success(ctx, op, updated,
		map[string]any{model.FieldIsArchived: task.IsArchived},
		map[string]any{model.FieldIsArchived: archived})
	s.afterWrite(ctx, model.NewTaskUpdated(updated, []string{model.FieldIsArchived}, auth.ActorSource(ctx)))
	return updated, nil
}

// LogHours records actual time spent on a date. Zero hours remove the
// entry; the derived actual_duration is recomputed either way.
func (s *TaskService) LogHours(ctx context.Context, id int64, date model.Date, hours float64) (*model.Task, error) {
	defer s.locks.lock(id).Unlock()

	requested := map[string]any{"date": string(date), "hours": hours}

	if err := validateLoggedHours(date, hours); err != nil {
		s.audit.failure(ctx, model.AuditOpLogHours, &id, "", requested, err)
		return nil, err
	}

	task, err := s.loadTask(ctx, id)
	if err != nil {
		s.audit.failure(ctx, model.AuditOpLogHours, &id, "", requested, err)
		return nil, err
	}

	updated := task.Clone()
	previous := updated.ActualDailyHours[date]
	if hours == 0 {
		delete(updated.ActualDailyHours, date)
	} else {
		if updated.ActualDailyHours == nil {
			updated.ActualDailyHours = model.HoursByDate{}
		}
		updated.ActualDailyHours[date] = hours
	}
	updated.RecomputeActualDuration()

	if err := s.repo.Save(ctx, updated); err != nil {
		err = fmt.Errorf("save task %d: %w", id, err)
		s.audit.failure(ctx, model.AuditOpLogHours, &id, task.Name, requested, err)
		return nil, err
	}

	s.audit.success(ctx, model.AuditOpLogHours, updated,
		map[string]any{"date": string(date), "hours": previous}, requested)
	s.afterWrite(ctx, model.NewTaskUpdated(updated, []string{"actual_daily_hours"}, auth.ActorSource(ctx)))
	return updated, nil
}

func validateLoggedHours(date model.Date, hours float64) error {
	if date.IsZero() {
		return apperrors.ValidationField("date", "date is required")
	}
	if _, err := model.ParseDate(string(date)); err != nil {
		return apperrors.ValidationField("date", "must be a YYYY-MM-DD date")
	}
	if hours < 0 {
		return apperrors.ValidationField("hours", "must be zero or positive")
	}
	if hours > 24 {
		return apperrors.ValidationField("hours", "cannot exceed 24")
	}
	return nil
}

// UpdateNotes replaces the free-text notes. Nil clears them.
func (s *TaskService) UpdateNotes(ctx context.Context, id int64, notes *string) (*model.Task, error) {
	defer s.locks.lock(id).Unlock()

	task, err := s.loadTask(ctx, id)
	if err != nil {
		s.audit.failure(ctx, model.AuditOpUpdateTask, &id, "", nil, err)
		return nil, err
	}

	updated := task.Clone()
	updated.Notes = notes

	if err := s.repo.Save(ctx, updated); err != nil {
		err = fmt.Errorf("save task %d: %w", id, err)
		s.audit.failure(ctx, model.AuditOpUpdateTask, &id, task.Name, nil, err)
		return nil, err
	}

	s.audit.success(ctx, model.AuditOpUpdateTask, updated,
		map[string]any{model.FieldNotes: derefValue(task.Notes)},
		map[string]any{model.FieldNotes: derefValue(notes)})
	s.afterWrite(ctx, model.NewTaskNotesUpdated(updated, auth.ActorSource(ctx)))
	return updated, nil
}

// loadTask fetches a task or reports not_found.
func (s *TaskService) loadTask(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	if task == nil {
		return nil, apperrors.TaskNotFound(id)
	}
	return task, nil
}

// respread recomputes the daily allocations from the planned period and the
// estimate, clearing them when either input is absent.
func (s *TaskService) respread(task *model.Task) {
	if !task.HasPlannedPeriod() || task.EstimatedDuration == nil {
		task.DailyAllocations = nil
		return
	}
	task.DailyAllocations = schedule.SpreadActualSchedule(task, s.holidays, s.location)
}

// afterWrite runs the shared post-persist tail: the gantt cache is
// invalidated and the event goes out asynchronously.
func (s *TaskService) afterWrite(ctx context.Context, event model.Event) {
	s.invalidateGantt(ctx)
	s.broadcastAsync(event)
}

func (s *TaskService) invalidateGantt(ctx context.Context) {
	if s.ganttCache == nil {
		return
	}
	if err := s.ganttCache.InvalidateView(ctx); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to invalidate gantt cache", "error", err)
	}
}

// broadcastAsync hands the event to the broadcaster on its own goroutine.
// The hub enqueues without blocking, but a panicking listener path must
// never take a write down with it.
func (s *TaskService) broadcastAsync(event model.Event) {
	if s.broadcaster == nil {
		return
	}
	go func(e model.Event) {
		defer s.recoverBroadcastPanic(e)
		s.broadcaster.Broadcast(e)
	}(event)
}

func (s *TaskService) recoverBroadcastPanic(event model.Event) {
	if r := recover(); r != nil && s.logger != nil {
		s.logger.Error("panic in event broadcast",
			"event_type", event.Type,
			"panic", r)
	}
}

// asValidationError converts model validation failures into the validation
// error shape the HTTP layer maps to 400s.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErr *model.FieldError
	if errors.As(err, &fieldErr) {
		return apperrors.ValidationField(fieldErr.Field, fieldErr.Reason)
	}
	return apperrors.Validation(err.Error())
}

// createRequestValues captures the requested payload for failed-create audit
// entries.
func createRequestValues(req *model.CreateTaskRequest) map[string]any {
	if req == nil {
		return nil
	}
	values := map[string]any{
		model.FieldName:    req.Name,
		model.FieldIsFixed: req.IsFixed,
	}
	if req.Priority != nil {
		values[model.FieldPriority] = *req.Priority
	}
	if req.EstimatedDuration != nil {
		values[model.FieldEstimatedDuration] = *req.EstimatedDuration
	}
	if req.Deadline != nil {
		values[model.FieldDeadline] = *req.Deadline
	}
	if req.PlannedStart != nil {
		values[model.FieldPlannedStart] = *req.PlannedStart
	}
	if req.PlannedEnd != nil {
		values[model.FieldPlannedEnd] = *req.PlannedEnd
	}
	if req.Notes != nil {
		values[model.FieldNotes] = *req.Notes
	}
	if len(req.Tags) > 0 {
		values[model.FieldTags] = req.Tags
	}
	if len(req.DependsOn) > 0 {
		values[model.FieldDependsOn] = req.DependsOn
	}
	return values
}

// requestedUpdateValues captures the requested changes for failed-update
// audit entries. Cleared fields show as nil.
func requestedUpdateValues(req *model.UpdateTaskRequest) map[string]any {
	if req == nil || !req.HasUpdates() {
		return nil
	}
	values := make(map[string]any, len(req.Fields()))
	for _, field := range req.Fields() {
		if req.Clears(field) {
			values[field] = nil
			continue
		}
		switch field {
		case model.FieldName:
			values[field] = derefValue(req.Name)
		case model.FieldPriority:
			values[field] = derefValue(req.Priority)
		case model.FieldEstimatedDuration:
			values[field] = derefValue(req.EstimatedDuration)
		case model.FieldDeadline:
			values[field] = derefValue(req.Deadline)
		case model.FieldPlannedStart:
			values[field] = derefValue(req.PlannedStart)
		case model.FieldPlannedEnd:
			values[field] = derefValue(req.PlannedEnd)
		case model.FieldIsFixed:
			values[field] = derefValue(req.IsFixed)
		case model.FieldStatus:
			if req.Status != nil {
				values[field] = string(*req.Status)
			}
		case model.FieldNotes:
			values[field] = derefValue(req.Notes)
		case model.FieldTags:
			values[field] = req.Tags
		case model.FieldDependsOn:
			values[field] = req.DependsOn
		}
	}
	return values
}
