package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/taskdog/taskdog/internal/domain/auth"
	"github.com/taskdog/taskdog/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Tasks    *service.TaskService
	Optimize *service.OptimizeService
	Audit    *service.AuditService
	Webhooks *service.WebhookService
	Auth     *service.AuthService
	// WS handles websocket upgrade requests for the event stream.
	WS http.Handler
	// DB backs the /readyz readiness probe; the route is omitted when nil.
	DB           Pinger
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	taskHandlers := &TaskHandlers{Svc: services.Tasks}
	optimizeHandlers := &OptimizeHandlers{Svc: services.Optimize}
	auditHandlers := &AuditHandlers{Svc: services.Audit}
	sinkHandlers := &WebhookSinkHandlers{Svc: services.Webhooks}

	var auth AuthServiceInterface
	if services.Auth != nil {
		auth = services.Auth
	}

	registerTaskRoutes(mux, taskHandlers, auth)
	registerOptimizeRoutes(mux, optimizeHandlers, auth)
	registerAuditRoutes(mux, auditHandlers, auth)
	registerWebhookSinkRoutes(mux, sinkHandlers, auth)

	mux.Handle("GET /healthz", http.HandlerFunc(Health))
	mux.Handle("HEAD /healthz", http.HandlerFunc(Health))

	if services.DB != nil {
		ready := &ReadyHandlers{DB: services.DB}
		mux.Handle("GET /readyz", http.HandlerFunc(ready.Ready))
	}

	if services.WS != nil {
		mux.Handle("GET /ws", services.WS)
	}

	if auth != nil {
		authHandlers := &AuthHandlers{Svc: auth, CookieDomain: services.CookieDomain, Logger: services.Logger}
		registerAuthRoutes(mux, authHandlers)
	}

	return mux
}

// authWrap returns a middleware requiring authentication, or a no-op when auth is disabled.
func authWrap(auth AuthServiceInterface) func(http.Handler) http.Handler {
	if auth == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return RequireAuth(auth)
}

// adminWrap returns a middleware requiring the admin role, or a no-op when auth is disabled.
func adminWrap(auth AuthServiceInterface) func(http.Handler) http.Handler {
	if auth == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return RequireRole(auth, domainauth.RoleAdmin)
}

// optionalWrap attaches session information when present without requiring it.
func optionalWrap(auth AuthServiceInterface) func(http.Handler) http.Handler {
	if auth == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return OptionalAuth(auth)
}

func registerTaskRoutes(mux *http.ServeMux, h *TaskHandlers, auth AuthServiceInterface) {
	read := optionalWrap(auth)
	write := authWrap(auth)

	mux.Handle("POST /api/v1/tasks", write(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/v1/tasks", read(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/v1/tasks/{id}", read(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH /api/v1/tasks/{id}", write(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/v1/tasks/{id}", write(http.HandlerFunc(h.Delete)))

	mux.Handle("POST /api/v1/tasks/{id}/start", write(http.HandlerFunc(h.Start)))
	mux.Handle("POST /api/v1/tasks/{id}/complete", write(http.HandlerFunc(h.Complete)))
	mux.Handle("POST /api/v1/tasks/{id}/cancel", write(http.HandlerFunc(h.Cancel)))
	mux.Handle("POST /api/v1/tasks/{id}/reopen", write(http.HandlerFunc(h.Reopen)))
	mux.Handle("POST /api/v1/tasks/{id}/archive", write(http.HandlerFunc(h.Archive)))
	mux.Handle("POST /api/v1/tasks/{id}/restore", write(http.HandlerFunc(h.Restore)))
	mux.Handle("POST /api/v1/tasks/{id}/hours", write(http.HandlerFunc(h.LogHours)))
	mux.Handle("PUT /api/v1/tasks/{id}/notes", write(http.HandlerFunc(h.UpdateNotes)))

	mux.Handle("GET /api/v1/gantt", read(http.HandlerFunc(h.Gantt)))
}

func registerOptimizeRoutes(mux *http.ServeMux, h *OptimizeHandlers, auth AuthServiceInterface) {
	write := authWrap(auth)
	mux.Handle("POST /api/v1/optimize", write(http.HandlerFunc(h.Run)))
}

func registerAuditRoutes(mux *http.ServeMux, h *AuditHandlers, auth AuthServiceInterface) {
	read := optionalWrap(auth)
	admin := adminWrap(auth)

	mux.Handle("GET /api/v1/audit", read(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/v1/audit/stats", admin(http.HandlerFunc(h.Stats)))
}

func registerWebhookSinkRoutes(mux *http.ServeMux, h *WebhookSinkHandlers, auth AuthServiceInterface) {
	admin := adminWrap(auth)

	mux.Handle("POST /api/v1/webhook-sinks", admin(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/v1/webhook-sinks", admin(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/v1/webhook-sinks/{id}", admin(http.HandlerFunc(h.GetByID)))
	mux.Handle("PATCH /api/v1/webhook-sinks/{id}", admin(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/v1/webhook-sinks/{id}", admin(http.HandlerFunc(h.Delete)))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}
