package data

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/taskdog/taskdog/internal/data/pgxutil"
	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
	"github.com/jackc/pgx/v5"
)

// TaskRepo provides database operations for tasks. A process-local snapshot
// of the full list backs GetAll; every write clears it, so reads after a
// write in the same process always observe that write.
type TaskRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider

	mu       sync.Mutex
	snapshot []*model.Task
}

// NewTaskRepo creates a new TaskRepo with real time provider.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewTaskRepoWithTimeProvider creates a new TaskRepo with a custom time provider (useful for tests).
func NewTaskRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *TaskRepo {
	return &TaskRepo{DB: db, timeProvider: tp}
}

const taskColumns = `
	id, name, priority, estimated_duration, deadline, status,
	planned_start, planned_end, actual_start, actual_end, actual_duration, notes,
	is_fixed, is_archived, tags_json, depends_on_json,
	daily_allocations_json, actual_daily_hours_json, created_at, updated_at`

// SQL query constants for static queries (no dynamic WHERE/ORDER BY).
const (
	taskGetAllQuery = `SELECT ` + taskColumns + ` FROM tasks ORDER BY id`

	taskGetByIDQuery = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	taskGetByIDsQuery = `SELECT ` + taskColumns + ` FROM tasks WHERE id = ANY($1::bigint[])`

	taskNextIDQuery = `SELECT COALESCE(MAX(id), 0) + 1 FROM tasks`

	taskInsertQuery = `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	// created_at keeps its stored value on conflict.
	taskUpsertQuery = taskInsertQuery + `
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			priority = EXCLUDED.priority,
			estimated_duration = EXCLUDED.estimated_duration,
			deadline = EXCLUDED.deadline,
			status = EXCLUDED.status,
			planned_start = EXCLUDED.planned_start,
			planned_end = EXCLUDED.planned_end,
			actual_start = EXCLUDED.actual_start,
			actual_end = EXCLUDED.actual_end,
			actual_duration = EXCLUDED.actual_duration,
			notes = EXCLUDED.notes,
			is_fixed = EXCLUDED.is_fixed,
			is_archived = EXCLUDED.is_archived,
			tags_json = EXCLUDED.tags_json,
			depends_on_json = EXCLUDED.depends_on_json,
			daily_allocations_json = EXCLUDED.daily_allocations_json,
			actual_daily_hours_json = EXCLUDED.actual_daily_hours_json,
			updated_at = EXCLUDED.updated_at`
)

// GetAll returns every task ordered by id, archived included. Callers
// receive clones; the snapshot is never handed out directly.
func (r *TaskRepo) GetAll(ctx context.Context) ([]*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snapshot == nil {
		tasks, err := r.fetchAll(ctx)
		if err != nil {
			return nil, err
		}
		r.snapshot = tasks
	}

	out := make([]*model.Task, len(r.snapshot))
	for i, t := range r.snapshot {
		out[i] = t.Clone()
	}
	return out, nil
}

func (r *TaskRepo) fetchAll(ctx context.Context) ([]*model.Task, error) {
	var result []*model.Task
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, taskGetAllQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Task])
		if err != nil {
			return err
		}
		result = vals
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if result == nil {
		result = []*model.Task{}
	}
	return result, nil
}

// GetByID retrieves a task by id. Absent ids return (nil, nil).
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, taskGetByIDQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		task, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Task])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task by id: %w", err)
	}
	return &task, nil
}

// GetByIDs retrieves the tasks found for ids, keyed by id. Absent ids are
// simply missing from the map.
func (r *TaskRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Task, error) {
	out := make(map[int64]*model.Task, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var result []*model.Task
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, taskGetByIDsQuery, ids)
		if err != nil {
			return err
		}
		defer rows.Close()
		vals, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Task])
		if err != nil {
			return err
		}
		result = vals
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to get tasks by ids: %w", err)
	}

	for _, t := range result {
		out[t.ID] = t
	}
	return out, nil
}

// Create inserts the task, allocating the next free id when task.ID is zero.
// Allocation and insert share one transaction; an advisory lock on the id
// allocator keeps concurrent creators from racing max(id)+1.
func (r *TaskRepo) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task == nil {
		return nil, ErrTaskRequired
	}

	created := task.Clone()
	stampForWrite(created, r.timeProvider.Now().UTC())

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		if created.ID == 0 {
			if err := pgxutil.AcquireTxLock(ctx, tx, pgxutil.TaskLockKey(0)); err != nil {
				return err
			}
			if err := tx.QueryRow(ctx, taskNextIDQuery).Scan(&created.ID); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, taskInsertQuery, taskWriteArgs(created)...); err != nil {
			return err
		}
		return r.replaceTagsTx(ctx, tx, created.ID, created.Tags)
	}})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	r.invalidate()
	return created, nil
}

// Save upserts the full row and refreshes updated_at.
func (r *TaskRepo) Save(ctx context.Context, task *model.Task) error {
	if task == nil {
		return ErrTaskRequired
	}
	if task.ID <= 0 {
		return ErrTaskIDRequired
	}

	stampForWrite(task, r.timeProvider.Now().UTC())

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, taskUpsertQuery, taskWriteArgs(task)...); err != nil {
			return err
		}
		return r.replaceTagsTx(ctx, tx, task.ID, task.Tags)
	}})
	if err != nil {
		return apperrors.MapDBError(err)
	}

	r.invalidate()
	return nil
}

// SaveAll upserts every task in one transaction; either all rows land or
// none do. Rows are written in id order so concurrent batches cannot
// deadlock on overlapping ids.
func (r *TaskRepo) SaveAll(ctx context.Context, tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ordered := make([]*model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task == nil {
			return ErrTaskRequired
		}
		if task.ID <= 0 {
			return ErrTaskIDRequired
		}
		ordered = append(ordered, task)
	}
	slices.SortFunc(ordered, func(a, b *model.Task) int { return cmp.Compare(a.ID, b.ID) })

	now := r.timeProvider.Now().UTC()
	for _, task := range ordered {
		stampForWrite(task, now)
	}

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		for _, task := range ordered {
			if _, err := tx.Exec(ctx, taskUpsertQuery, taskWriteArgs(task)...); err != nil {
				return err
			}
			if err := r.replaceTagsTx(ctx, tx, task.ID, task.Tags); err != nil {
				return err
			}
		}
		return nil
	}})
	if err != nil {
		return apperrors.MapDBError(err)
	}

	r.invalidate()
	return nil
}

// Delete removes a task. Deleting an absent id is not an error; tag
// associations go with the row via ON DELETE CASCADE.
func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}

	r.invalidate()
	return nil
}

// GenerateNextID returns max(id)+1, starting at 1 on an empty table. Racing
// callers can observe the same value; Create takes the allocator lock when
// it needs a unique one.
func (r *TaskRepo) GenerateNextID(ctx context.Context) (int64, error) {
	var next int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, taskNextIDQuery).Scan(&next)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to generate next task id: %w", err)
	}
	return next, nil
}

// Reload drops the snapshot so the next read hits storage.
func (r *TaskRepo) Reload(_ context.Context) error {
	r.invalidate()
	return nil
}

func (r *TaskRepo) invalidate() {
	r.mu.Lock()
	r.snapshot = nil
	r.mu.Unlock()
}

// stampForWrite refreshes bookkeeping fields and normalizes nil collections
// so the JSONB columns always store [] / {} rather than JSON null.
func stampForWrite(t *model.Task, now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.DependsOn == nil {
		t.DependsOn = []int64{}
	}
	if t.DailyAllocations == nil {
		t.DailyAllocations = model.HoursByDate{}
	}
	if t.ActualDailyHours == nil {
		t.ActualDailyHours = model.HoursByDate{}
	}
}

func taskWriteArgs(t *model.Task) []any {
	return []any{
		t.ID, t.Name, t.Priority, t.EstimatedDuration, t.Deadline, t.Status,
		t.PlannedStart, t.PlannedEnd, t.ActualStart, t.ActualEnd, t.ActualDuration, t.Notes,
		t.IsFixed, t.IsArchived, t.Tags, t.DependsOn,
		t.DailyAllocations, t.ActualDailyHours, t.CreatedAt, t.UpdatedAt,
	}
}

// replaceTagsTx rewrites the normalized tag associations for a task to
// exactly the given set.
func (r *TaskRepo) replaceTagsTx(ctx context.Context, tx pgx.Tx, taskID int64, tags []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	if err := r.ensureTagsExistTx(ctx, tx, tags); err != nil {
		return err
	}
	return r.associateTagsTx(ctx, tx, taskID, tags)
}

func (r *TaskRepo) ensureTagsExistTx(ctx context.Context, tx pgx.Tx, names []string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO tags (name)
		SELECT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING
	`, names)
	return err
}

func (r *TaskRepo) associateTagsTx(ctx context.Context, tx pgx.Tx, taskID int64, names []string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO task_tags (task_id, tag_id)
		SELECT $1, t.id
		FROM tags t
		WHERE t.name = ANY($2::text[])
		ON CONFLICT (task_id, tag_id) DO NOTHING
	`, taskID, names)
	return err
}
