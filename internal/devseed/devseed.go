package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskdog/taskdog/config"
	"github.com/taskdog/taskdog/internal/data"
	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	DB       *sql.DB
	tasks    *service.TaskService
	webhooks *service.WebhookService
}

// NewServices constructs all required services for seeding using the provided DB.
func NewServices(db *sql.DB) Services {
	taskService := service.MustNewTaskService(service.TaskServiceOptions{
		Repo:   data.NewTaskRepo(db),
		Config: config.TaskConfig{DefaultPriority: 10},
	})

	webhookService := service.MustNewWebhookService(service.WebhookServiceOptions{
		Repo:   data.NewWebhookSinkRepo(db),
		Config: config.WebhookConfig{},
	})

	return Services{
		DB:       db,
		tasks:    taskService,
		webhooks: webhookService,
	}
}

// Run executes the full development seeding workflow against the provided DB.
// Seeding is idempotent by name: tasks and sinks that already exist are left
// untouched.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	failures := 0
	failures += seedTasks(ctx, svcs.tasks, logger)
	failures += seedWebhookSinks(ctx, svcs.webhooks, logger)
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

type taskSeedSpec struct {
	name      string
	priority  int
	estimate  float64
	deadline  *time.Time
	isFixed   bool
	start     *time.Time
	end       *time.Time
	tags      []string
	notes     string
	dependsOn []string
}

func defaultTaskSeedSpecs() []taskSeedSpec {
	nextMonday := upcomingWeekday(time.Monday)
	return []taskSeedSpec{
		{
			name:     "draft quarterly report",
			priority: 3,
			estimate: 6,
			deadline: timePtr(nextMonday.AddDate(0, 0, 11)),
			tags:     []string{"reporting"},
			notes:    "numbers come from the finance export",
		},
		{
			name:      "review quarterly report",
			priority:  4,
			estimate:  2,
			deadline:  timePtr(nextMonday.AddDate(0, 0, 13)),
			tags:      []string{"reporting"},
			dependsOn: []string{"draft quarterly report"},
		},
		{
			name:      "send quarterly report",
			priority:  5,
			estimate:  0.5,
			deadline:  timePtr(nextMonday.AddDate(0, 0, 14)),
			tags:      []string{"reporting"},
			dependsOn: []string{"review quarterly report"},
		},
		{
			name:     "team planning meeting",
			priority: 1,
			estimate: 1.5,
			isFixed:  true,
			start:    timePtr(nextMonday.Add(10 * time.Hour)),
			end:      timePtr(nextMonday.Add(11*time.Hour + 30*time.Minute)),
			tags:     []string{"meetings"},
		},
		{
			name:     "refresh staging environment",
			priority: 8,
			estimate: 3,
			tags:     []string{"infra", "maintenance"},
			notes:    "coordinate with whoever is on call",
		},
		{
			name:     "clear code review queue",
			priority: 2,
			estimate: 2,
			tags:     []string{"reviews"},
		},
	}
}

func seedTasks(ctx context.Context, svc *service.TaskService, logger *slog.Logger) int {
	existing, err := indexTasksByName(ctx, svc)
	if err != nil {
		if logger != nil {
			logger.ErrorContext(ctx, "failed to list tasks for seeding", "error", err)
		}
		return 1
	}

	failures := 0
	for _, spec := range defaultTaskSeedSpecs() {
		if id, ok := existing[spec.name]; ok {
			if logger != nil {
				logger.InfoContext(ctx, "task already exists", "name", spec.name, "task_id", id)
			}
			continue
		}
		req, err := buildTaskRequest(spec, existing)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to prepare task", "name", spec.name, "error", err)
			}
			failures++
			continue
		}
		created, err := svc.Create(ctx, req)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create task", "name", spec.name, "error", err)
			}
			failures++
			continue
		}
		existing[created.Name] = created.ID
		if logger != nil {
			logger.InfoContext(ctx, "created task", "name", created.Name, "task_id", created.ID)
		}
	}
	return failures
}

func buildTaskRequest(spec taskSeedSpec, idsByName map[string]int64) (*model.CreateTaskRequest, error) {
	req := &model.CreateTaskRequest{
		Name:              spec.name,
		Priority:          intPtr(spec.priority),
		EstimatedDuration: float64Ptr(spec.estimate),
		Deadline:          spec.deadline,
		PlannedStart:      spec.start,
		PlannedEnd:        spec.end,
		IsFixed:           spec.isFixed,
		Tags:              spec.tags,
	}
	if spec.notes != "" {
		req.Notes = stringPtr(spec.notes)
	}
	for _, dep := range spec.dependsOn {
		id, ok := idsByName[dep]
		if !ok {
			return nil, fmt.Errorf("dependency %q not seeded yet", dep)
		}
		req.DependsOn = append(req.DependsOn, id)
	}
	return req, nil
}

func indexTasksByName(ctx context.Context, svc *service.TaskService) (map[string]int64, error) {
	tasks, err := svc.List(ctx, model.TasksListOptions{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(tasks))
	for _, t := range tasks {
		out[t.Name] = t.ID
	}
	return out, nil
}

func defaultWebhookSinkSeeds() []*model.CreateWebhookSinkRequest {
	return []*model.CreateWebhookSinkRequest{
		{
			Name:    "all-events-log",
			URL:     "https://hooks.example.com/taskdog/dev",
			Secret:  "whsec_dev_12345",
			Enabled: boolPtr(false),
		},
		{
			Name:        "completed-tasks-slack",
			URL:         "https://hooks.slack.com/services/dev/taskdog",
			EventFilter: "type == 'task_status_changed' && new_status == 'completed'",
			Enabled:     boolPtr(true),
		},
		{
			Name:        "schedule-changes",
			URL:         "https://hooks.example.com/taskdog/schedule",
			EventFilter: "type == 'schedule_optimized'",
			Enabled:     boolPtr(true),
		},
	}
}

func seedWebhookSinks(ctx context.Context, svc *service.WebhookService, logger *slog.Logger) int {
	existing, err := indexSinksByName(ctx, svc)
	if err != nil {
		if logger != nil {
			logger.ErrorContext(ctx, "failed to list webhook sinks for seeding", "error", err)
		}
		return 1
	}

	failures := 0
	for _, req := range defaultWebhookSinkSeeds() {
		if _, ok := existing[req.Name]; ok {
			if logger != nil {
				logger.InfoContext(ctx, "webhook sink already exists", "name", req.Name)
			}
			continue
		}
		if _, err := svc.Create(ctx, req); err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create webhook sink", "name", req.Name, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			logger.InfoContext(ctx, "created webhook sink", "name", req.Name)
		}
	}
	return failures
}

func indexSinksByName(ctx context.Context, svc *service.WebhookService) (map[string]string, error) {
	const pageSize = 100
	offset := 0
	out := make(map[string]string)
	for {
		page, err := svc.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, s := range page {
			out[s.Name] = s.ID
		}
		offset += len(page)
		if len(page) < pageSize {
			break
		}
	}
	return out, nil
}

func upcomingWeekday(day time.Weekday) time.Time {
	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for date.Weekday() != day {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

func boolPtr(b bool) *bool           { return &b }
func stringPtr(s string) *string     { return &s }
func intPtr(i int) *int              { return &i }
func float64Ptr(f float64) *float64  { return &f }
func timePtr(t time.Time) *time.Time { return &t }
