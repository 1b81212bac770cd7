package httpx

import (
	"errors"
	"net/http"

	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/service"
)

// WebhookSinkHandlers provides HTTP handlers for webhook sink operations.
type WebhookSinkHandlers struct {
	Svc *service.WebhookService
}

const (
	defaultWebhookSinkListLimit = 50  // Default number of sinks returned when limit is not specified
	maxWebhookSinkListLimit     = 100 // Maximum number of sinks that can be requested in one call
)

// Create handles POST /api/v1/webhook-sinks.
func (h *WebhookSinkHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateWebhookSinkRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sink, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, sink)
}

// List handles GET /api/v1/webhook-sinks with pagination.
func (h *WebhookSinkHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultWebhookSinkListLimit, maxWebhookSinkListLimit)

	sinks, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"webhook_sinks": sinks,
		"limit":         limit,
		"offset":        offset,
	})
}

// GetByID handles GET /api/v1/webhook-sinks/{id}.
func (h *WebhookSinkHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("webhook sink id is required"),
		})
		return
	}

	sink, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, sink)
}

// Update handles PATCH /api/v1/webhook-sinks/{id}.
func (h *WebhookSinkHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("webhook sink id is required"),
		})
		return
	}

	var req *model.UpdateWebhookSinkRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sink, err := h.Svc.Update(r.Context(), id, req)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, sink)
}

// Delete handles DELETE /api/v1/webhook-sinks/{id}.
func (h *WebhookSinkHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_path",
			Err:     errors.New("webhook sink id is required"),
		})
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
