package httpx

import (
	"net/http"

	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/service"
)

// TaskHandlers provides HTTP handlers for task CRUD and listing.
type TaskHandlers struct {
	Svc *service.TaskService
}

// Create handles POST /api/v1/tasks.
func (h *TaskHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	task, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, task)
}

// List handles GET /api/v1/tasks. With include_gantt=true the response also
// carries the rendered gantt view for the same filter.
func (h *TaskHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseTaskListOptions(r)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	tasks, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	body := map[string]any{
		"tasks": tasks,
		"count": len(tasks),
	}

	if r.URL.Query().Get("include_gantt") == "true" {
		gantt, ganttErr := h.Svc.Gantt(r.Context(), opts)
		if ganttErr != nil {
			RenderAppError(w, ganttErr)
			return
		}
		body["gantt"] = gantt
	}

	WriteJSON(w, http.StatusOK, body)
}

// Get handles GET /api/v1/tasks/{id}.
func (h *TaskHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromPath(r)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	task, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, task)
}

// Update handles PATCH /api/v1/tasks/{id}. Unspecified fields stay unchanged.
func (h *TaskHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromPath(r)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	var req model.UpdateTaskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	task, err := h.Svc.Update(r.Context(), id, &req)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/v1/tasks/{id} (hard delete).
func (h *TaskHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDFromPath(r)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Gantt handles GET /api/v1/gantt: the allocation view without the task list.
func (h *TaskHandlers) Gantt(w http.ResponseWriter, r *http.Request) {
	opts, err := ParseTaskListOptions(r)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	gantt, err := h.Svc.Gantt(r.Context(), opts)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, gantt)
}
