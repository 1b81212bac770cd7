package httpx

import (
	"net/http"

	"github.com/taskdog/taskdog/internal/service"
)

// OptimizeHandlers provides HTTP handlers for schedule optimization runs.
type OptimizeHandlers struct {
	Svc *service.OptimizeService
}

// Run handles POST /api/v1/optimize. The run is synchronous: when the
// response arrives the produced plan is already persisted.
func (h *OptimizeHandlers) Run(w http.ResponseWriter, r *http.Request) {
	var req service.OptimizeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.Run(r.Context(), req)
	if err != nil {
		RenderAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
