package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskdog/taskdog/internal/data/pgxutil"
	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

// WebhookSinkRepo provides database operations for webhook sink management.
type WebhookSinkRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewWebhookSinkRepo creates a new WebhookSinkRepo.
func NewWebhookSinkRepo(db *sql.DB) *WebhookSinkRepo {
	return &WebhookSinkRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewWebhookSinkRepoWithTimeProvider creates a new WebhookSinkRepo with a custom time provider.
func NewWebhookSinkRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *WebhookSinkRepo {
	return &WebhookSinkRepo{
		DB:           db,
		timeProvider: tp,
	}
}

// webhookSinkColumns defines the column list for WebhookSink SELECT queries to ensure consistent field mapping.
const webhookSinkColumns = `id, name, url, event_filter, secret, enabled, created_at, updated_at`

// webhookSinkQueryParams holds parameters for query operations.
type webhookSinkQueryParams struct {
	query    string
	arg      any
	errorMsg string
}

// Create creates a new webhook sink with the given request parameters.
// Enabled defaults to true when the request leaves it unset.
func (r *WebhookSinkRepo) Create(
	ctx context.Context,
	req *model.CreateWebhookSinkRequest,
) (*model.WebhookSink, error) {
	if req == nil {
		return nil, ErrSinkRequestRequired
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	if req.ID != nil {
		id = *req.ID
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	now := r.timeProvider.Now().UTC()

	query := `
		INSERT INTO webhook_sinks (id, name, url, event_filter, secret, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + webhookSinkColumns

	var sink model.WebhookSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query,
			id, req.Name, req.URL, req.EventFilter, req.Secret, enabled, now, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		sink, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.WebhookSink])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	return &sink, nil
}

// getWebhookSinkByQuery is a helper function to reduce duplication between GetByID and GetByName.
func (r *WebhookSinkRepo) getWebhookSinkByQuery(
	ctx context.Context,
	params webhookSinkQueryParams,
) (*model.WebhookSink, error) {
	var sink model.WebhookSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, params.query, params.arg)
		if err != nil {
			return err
		}
		defer rows.Close()

		sink, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.WebhookSink])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSinkNotFound
		}
		return nil, fmt.Errorf("%s: %w", params.errorMsg, err)
	}

	return &sink, nil
}

// GetByID retrieves a webhook sink by its ID.
func (r *WebhookSinkRepo) GetByID(ctx context.Context, id string) (*model.WebhookSink, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSinkNotFound
	}

	return r.getWebhookSinkByQuery(ctx, webhookSinkQueryParams{
		query:    `SELECT ` + webhookSinkColumns + ` FROM webhook_sinks WHERE id = $1`,
		arg:      id,
		errorMsg: "failed to get webhook sink by id",
	})
}

// GetByName retrieves a webhook sink by its unique name.
func (r *WebhookSinkRepo) GetByName(ctx context.Context, name string) (*model.WebhookSink, error) {
	return r.getWebhookSinkByQuery(ctx, webhookSinkQueryParams{
		query:    `SELECT ` + webhookSinkColumns + ` FROM webhook_sinks WHERE name = $1`,
		arg:      name,
		errorMsg: "failed to get webhook sink by name",
	})
}

// List retrieves a list of webhook sinks with pagination.
func (r *WebhookSinkRepo) List(ctx context.Context, limit, offset int) ([]*model.WebhookSink, error) {
	if limit <= 0 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + webhookSinkColumns + `
		FROM webhook_sinks
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	var sinks []*model.WebhookSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		sinks, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.WebhookSink])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook sinks: %w", err)
	}

	return sinks, nil
}

// ListEnabled returns every enabled sink in name order. The event dispatcher
// calls this per delivery round, so the result reflects toggles immediately.
func (r *WebhookSinkRepo) ListEnabled(ctx context.Context) ([]*model.WebhookSink, error) {
	query := `SELECT ` + webhookSinkColumns + ` FROM webhook_sinks WHERE enabled ORDER BY name`

	var sinks []*model.WebhookSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		sinks, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.WebhookSink])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled webhook sinks: %w", err)
	}

	return sinks, nil
}

// buildSinkUpdateParts builds the dynamic SET clause for Update.
func (r *WebhookSinkRepo) buildSinkUpdateParts(req *model.UpdateWebhookSinkRequest) ([]string, []any) {
	var setParts []string
	var args []any
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, *req.Name)
	}
	if req.URL != nil {
		setParts = append(setParts, fmt.Sprintf("url = $%d", nextIdx()))
		args = append(args, *req.URL)
	}
	if req.EventFilter != nil {
		setParts = append(setParts, fmt.Sprintf("event_filter = $%d", nextIdx()))
		args = append(args, *req.EventFilter)
	}
	if req.Secret != nil {
		setParts = append(setParts, fmt.Sprintf("secret = $%d", nextIdx()))
		args = append(args, *req.Secret)
	}
	if req.Enabled != nil {
		setParts = append(setParts, fmt.Sprintf("enabled = $%d", nextIdx()))
		args = append(args, *req.Enabled)
	}

	return setParts, args
}

// Update applies a partial update and returns the stored sink.
func (r *WebhookSinkRepo) Update(
	ctx context.Context,
	id string,
	req *model.UpdateWebhookSinkRequest,
) (*model.WebhookSink, error) {
	if req == nil {
		return nil, ErrSinkRequestRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSinkNotFound
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts, args := r.buildSinkUpdateParts(req)
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, r.timeProvider.Now().UTC())
	args = append(args, id)

	query := `UPDATE webhook_sinks SET ` + strings.Join(setParts, ", ") +
		fmt.Sprintf(` WHERE id = $%d RETURNING `, len(args)) + webhookSinkColumns

	var sink model.WebhookSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		sink, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.WebhookSink])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSinkNotFound
		}
		return nil, apperrors.MapDBError(err)
	}

	return &sink, nil
}

// Delete deletes a webhook sink by its ID.
func (r *WebhookSinkRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	query := `DELETE FROM webhook_sinks WHERE id = $1`

	var rowsAffected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, query, id)
		if err != nil {
			return err
		}
		rowsAffected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete webhook sink: %w", err)
	}

	return rowsAffected > 0, nil
}
