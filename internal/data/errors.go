package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Task repository sentinels.
	ErrTaskRequired   = errors.New("task is required")
	ErrTaskIDRequired = errors.New("task id is required")

	// Audit log repository sentinels.
	ErrAuditEntryRequired = errors.New("audit entry is required")

	// Webhook sink repository sentinels.
	ErrSinkRequestRequired = errors.New("webhook sink request is required")
	ErrSinkNotFound        = errors.New("webhook sink not found")
)
