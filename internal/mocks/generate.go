// Package mocks provides mock implementations for testing the taskdog services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockTaskRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(task, nil)
package mocks

// Generate mock for TaskRepository interface from internal/core package.
// This creates MockTaskRepository with methods for all TaskRepository interface methods:
// GetAll, GetByID, GetByIDs, Create, Save, SaveAll, Delete, GenerateNextID, Reload
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=task_repository_mock.go github.com/taskdog/taskdog/internal/core TaskRepository

// Generate mock for AuditLogRepository interface from internal/core package.
// This creates MockAuditLogRepository with methods for all AuditLogRepository interface methods:
// Append, List
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_log_repository_mock.go github.com/taskdog/taskdog/internal/core AuditLogRepository

// Generate mock for AuditStatsProvider interface from internal/core package.
// This creates MockAuditStatsProvider with methods for all AuditStatsProvider interface methods:
// Stats
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_stats_provider_mock.go github.com/taskdog/taskdog/internal/core AuditStatsProvider

// Generate mock for WebhookSinkRepository interface from internal/core package.
// This creates MockWebhookSinkRepository with methods for all WebhookSinkRepository interface methods:
// Create, GetByID, GetByName, List, ListEnabled, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=webhook_sink_repository_mock.go github.com/taskdog/taskdog/internal/core WebhookSinkRepository

// Generate mock for EventBroadcaster interface from internal/core package.
// This creates MockEventBroadcaster with methods for all EventBroadcaster interface methods:
// Broadcast
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_broadcaster_mock.go github.com/taskdog/taskdog/internal/core EventBroadcaster
