package core

import (
	"context"

	"github.com/taskdog/taskdog/internal/domain/model"
)

// Repository interfaces (ports in hexagonal architecture). The service layer
// depends on these contracts; the data layer provides the pgx and redis
// implementations behind them.

// TaskRepository defines the interface for task persistence.
type TaskRepository interface {
	// GetAll returns every task, archived included, ordered by id.
	GetAll(ctx context.Context) ([]*model.Task, error)

	// GetByID returns the task, or nil without an error when no task has
	// the id.
	GetByID(ctx context.Context, id int64) (*model.Task, error)

	// GetByIDs returns the subset of the requested ids that exist, keyed
	// by id.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Task, error)

	// Create assigns the next free id when the task has none and stores
	// the task. The stored task is returned.
	Create(ctx context.Context, task *model.Task) (*model.Task, error)

	// Save upserts a single task and refreshes its updated_at stamp.
	Save(ctx context.Context, task *model.Task) error

	// SaveAll upserts the tasks in one transaction. Either every task is
	// written or none are; schedule runs rely on this.
	SaveAll(ctx context.Context, tasks []*model.Task) error

	// Delete removes a task. Deleting an id that does not exist is not an
	// error.
	Delete(ctx context.Context, id int64) error

	// GenerateNextID returns max(id)+1 across all tasks, starting at 1.
	GenerateNextID(ctx context.Context) (int64, error)

	// Reload drops any cached state so the next read hits storage.
	Reload(ctx context.Context) error
}

// AuditLogRepository defines the interface for the append-only audit trail.
type AuditLogRepository interface {
	// Append stores one entry. The store fills in ID and Timestamp when
	// they are zero.
	Append(ctx context.Context, entry *model.AuditEntry) error

	// List returns entries newest first, honoring the cursor and filters
	// in the options.
	List(ctx context.Context, opts model.AuditListOptions) ([]*model.AuditEntry, error)
}

// WebhookSinkRepository defines the interface for webhook sink data
// operations.
type WebhookSinkRepository interface {
	Create(ctx context.Context, req *model.CreateWebhookSinkRequest) (*model.WebhookSink, error)
	GetByID(ctx context.Context, id string) (*model.WebhookSink, error)
	GetByName(ctx context.Context, name string) (*model.WebhookSink, error)
	List(ctx context.Context, limit, offset int) ([]*model.WebhookSink, error)
	// ListEnabled returns every sink the dispatcher should deliver to.
	ListEnabled(ctx context.Context) ([]*model.WebhookSink, error)
	Update(ctx context.Context, id string, req *model.UpdateWebhookSinkRequest) (*model.WebhookSink, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// AuditStatsProvider is an optional AuditLogRepository extension for admin
// reporting. Implementations that lack it simply have no stats.
type AuditStatsProvider interface {
	Stats(ctx context.Context, operation *string) (*model.AuditStats, error)
}

// EventBroadcaster fans a domain event out to connected listeners. Delivery
// is best effort and must never block the caller.
type EventBroadcaster interface {
	Broadcast(event model.Event)
}
