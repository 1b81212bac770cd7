package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/taskdog/taskdog/internal/data/database"
	"github.com/taskdog/taskdog/internal/data/pgxutil"
	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

// AuditLogRepo provides database operations for the append-only audit trail.
type AuditLogRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAuditLogRepo creates a new AuditLogRepo instance with the given database connection.
func NewAuditLogRepo(db *sql.DB) *AuditLogRepo {
	return &AuditLogRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewAuditLogRepoWithTimeProvider creates a new AuditLogRepo with a custom time provider (useful for tests).
func NewAuditLogRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AuditLogRepo {
	return &AuditLogRepo{DB: db, timeProvider: tp}
}

// auditColumns defines the column list for AuditEntry SELECT queries to ensure consistent field mapping.
const auditColumns = `id, timestamp, operation, task_id, task_name, client_name, old_values, new_values, success, error_message`

// getAuditColumnList returns a slice of audit_log column names for use with the query builder.
func getAuditColumnList() []string {
	return []string{
		"id", "timestamp", "operation", "task_id", "task_name", "client_name",
		"old_values", "new_values", "success", "error_message",
	}
}

// Append stores one entry. The id comes from the sequence; a zero Timestamp
// is filled from the time provider. The entry is updated in place with the
// stored row.
func (r *AuditLogRepo) Append(ctx context.Context, entry *model.AuditEntry) error {
	if entry == nil {
		return ErrAuditEntryRequired
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.timeProvider.Now().UTC()
	}

	query := `
		INSERT INTO audit_log (timestamp, operation, task_id, task_name, client_name, old_values, new_values, success, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + auditColumns

	var stored model.AuditEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query,
			entry.Timestamp, entry.Operation, entry.TaskID, entry.TaskName, entry.ClientName,
			entry.OldValues, entry.NewValues, entry.Success, entry.ErrorMessage,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		stored, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AuditEntry])
		return err
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}

	*entry = stored
	return nil
}

// normalizeLimit normalizes the page size for audit listing.
func (r *AuditLogRepo) normalizeLimit(limit int) int {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	return limit
}

// List retrieves audit entries newest first using the query builder. BeforeID
// is a cursor: only entries with a smaller id are returned, so pages stay
// stable while new entries keep arriving.
func (r *AuditLogRepo) List(ctx context.Context, opts model.AuditListOptions) ([]*model.AuditEntry, error) {
	limit := r.normalizeLimit(opts.Limit)

	queryOpts := []database.ListQueryOption{
		database.WithColumns(getAuditColumnList()...),
		database.WithOrderBy("id", "DESC"),
		database.WithLimit(limit),
	}

	if opts.Operation != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("operation", database.Equal, opts.Operation),
		))
	}
	if opts.TaskID != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("task_id", database.Equal, *opts.TaskID),
		))
	}
	if opts.BeforeID > 0 {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("id", database.LessThan, opts.BeforeID),
		))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("audit_log", queryOpts...))

	var entries []*model.AuditEntry
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		entries, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.AuditEntry])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	if entries == nil {
		entries = []*model.AuditEntry{}
	}
	return entries, nil
}

// Stats retrieves audit trail statistics, optionally filtered by operation.
func (r *AuditLogRepo) Stats(ctx context.Context, operation *string) (*model.AuditStats, error) {
	whereClause := ""
	var args []any
	if operation != nil {
		whereClause = "WHERE operation = $1"
		args = append(args, *operation)
	}

	query := `SELECT
		COUNT(*) as total,
		COUNT(CASE WHEN success THEN 1 END) as succeeded,
		COUNT(CASE WHEN NOT success THEN 1 END) as failed
	FROM audit_log ` + whereClause

	var stats model.AuditStats
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&stats.Total, &stats.Succeeded, &stats.Failed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit stats: %w", err)
	}

	return &stats, nil
}
