package httpx

import (
	"context"
	"net/http"

	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

// Lifecycle transitions all share one shape: parse the id, call the service,
// return the updated task. The service maps illegal transitions onto typed
// errors, so the handlers only render.

func (h *TaskHandlers) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Start)
}

func (h *TaskHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Complete)
}

func (h *TaskHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Cancel)
}

func (h *TaskHandlers) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Reopen)
}

func (h *TaskHandlers) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Archive)
}

func (h *TaskHandlers) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Svc.Restore)
}

func (h *TaskHandlers) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, int64) (*model.Task, error),
) {
	id, err := taskIDFromPath(r)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	task, err := op(r.Context(), id)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, task)
}

// logHoursRequest carries one actual-hours entry. Hours of zero delete the
// day's entry.
type logHoursRequest struct {
	Date  model.Date `json:"date"`
	Hours float64    `json:"hours"`
}

// LogHours handles POST /api/v1/tasks/{id}/hours.
func (h *TaskHandlers) LogHours(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromPath(r)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	var req logHoursRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Date.Validate(); err != nil {
		RenderAppError(w, apperrors.ValidationField("date", err.Error()))
		return
	}

	task, err := h.Svc.LogHours(r.Context(), id, req.Date, req.Hours)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, task)
}

// updateNotesRequest replaces the task notes; null clears them.
type updateNotesRequest struct {
	Notes *string `json:"notes"`
}

// UpdateNotes handles PUT /api/v1/tasks/{id}/notes.
func (h *TaskHandlers) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromPath(r)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	var req updateNotesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	task, err := h.Svc.UpdateNotes(r.Context(), id, req.Notes)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, task)
}
