package httpx

import (
	"net/http"
	"strconv"

	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/service"
)

// AuditHandlers provides HTTP handlers for the audit trail feed.
type AuditHandlers struct {
	Svc *service.AuditService
}

const (
	defaultAuditListLimit = 50  // Default number of entries returned when limit is not specified
	maxAuditListLimit     = 200 // Maximum number of entries that can be requested in one call
)

// List handles GET /api/v1/audit. Entries come newest first; before_id is
// the pagination cursor, task_id and operation filter the feed.
func (h *AuditHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := ParseLimitOffset(r, defaultAuditListLimit, maxAuditListLimit)
	opts := model.AuditListOptions{
		Limit:     limit,
		Operation: r.URL.Query().Get("operation"),
	}

	if raw := r.URL.Query().Get("before_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			opts.BeforeID = id
		}
	}
	if raw := r.URL.Query().Get("task_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			opts.TaskID = &id
		}
	}

	entries, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"limit":   limit,
	})
}

// Stats handles GET /api/v1/audit/stats.
func (h *AuditHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	var operation *string
	if raw := r.URL.Query().Get("operation"); raw != "" {
		operation = &raw
	}

	stats, err := h.Svc.Stats(r.Context(), operation)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
