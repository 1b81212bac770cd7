package service

import (
	"context"
	"errors"

	"github.com/taskdog/taskdog/internal/core"
	"github.com/taskdog/taskdog/internal/domain/model"
)

// AuditServiceOptions groups dependencies for AuditService.
type AuditServiceOptions struct {
	Repo core.AuditLogRepository // Required: audit trail storage
}

// AuditService serves the read side of the audit trail. Writes happen
// inside the task and optimize services, entry by entry; this service only
// pages through what they recorded.
type AuditService struct {
	repo core.AuditLogRepository
}

// NewAuditService constructs a new AuditService.
func NewAuditService(opts AuditServiceOptions) (*AuditService, error) {
	if opts.Repo == nil {
		return nil, errors.New("AuditLogRepository is required")
	}
	return &AuditService{repo: opts.Repo}, nil
}

// MustNewAuditService constructs a new AuditService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewAuditService(opts AuditServiceOptions) *AuditService {
	svc, err := NewAuditService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

// List returns audit entries newest first. The repository normalizes the
// page size and applies the cursor.
func (s *AuditService) List(ctx context.Context, opts model.AuditListOptions) ([]*model.AuditEntry, error) {
	return s.repo.List(ctx, opts)
}

// Stats summarizes the trail when the repository supports it; otherwise it
// reports empty stats.
func (s *AuditService) Stats(ctx context.Context, operation *string) (*model.AuditStats, error) {
	provider, ok := any(s.repo).(core.AuditStatsProvider)
	if !ok {
		return &model.AuditStats{}, nil
	}
	return provider.Stats(ctx, operation)
}
