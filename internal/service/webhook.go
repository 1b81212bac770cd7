package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/taskdog/taskdog/config"
	"github.com/taskdog/taskdog/internal/core"
	"github.com/taskdog/taskdog/internal/data"
	"github.com/taskdog/taskdog/internal/domain/model"
	apperrors "github.com/taskdog/taskdog/internal/errors"
)

// WebhookServiceOptions groups dependencies for WebhookService.
type WebhookServiceOptions struct {
	Repo      core.WebhookSinkRepository // Required: sink storage
	Evaluator JMESPathEvaluator          // Optional: defaults to the library evaluator
	Logger    *slog.Logger               // Optional: structured logger
	Config    config.WebhookConfig       // Delivery limits and the domain allowlist
}

// WebhookService manages outbound webhook sinks. Writes validate the filter
// expression (syntax only) and the target URL against the configured domain
// allowlist; delivery itself is the dispatcher's job.
type WebhookService struct {
	repo      core.WebhookSinkRepository
	evaluator JMESPathEvaluator
	logger    *slog.Logger
	config    config.WebhookConfig
}

// NewWebhookService constructs a new WebhookService.
func NewWebhookService(opts WebhookServiceOptions) (*WebhookService, error) {
	if opts.Repo == nil {
		return nil, errors.New("WebhookSinkRepository is required")
	}

	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = jmespathLibEvaluator{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "webhook_service")
	}

	return &WebhookService{
		repo:      opts.Repo,
		evaluator: evaluator,
		logger:    logger,
		config:    opts.Config,
	}, nil
}

// MustNewWebhookService constructs a new WebhookService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewWebhookService(opts WebhookServiceOptions) *WebhookService {
	svc, err := NewWebhookService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

// Create registers a new sink.
func (s *WebhookService) Create(ctx context.Context, req *model.CreateWebhookSinkRequest) (*model.WebhookSink, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.checkFilter(req.EventFilter); err != nil {
		return nil, err
	}
	if err := s.checkTargetURL(req.URL); err != nil {
		return nil, err
	}

	sink, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create webhook sink: %w", err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "webhook sink created", "sink_id", sink.ID, "name", sink.Name)
	}
	return sink, nil
}

// Get returns the sink with the given id.
func (s *WebhookService) Get(ctx context.Context, id string) (*model.WebhookSink, error) {
	sink, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, sinkError(err)
	}
	return sink, nil
}

// List returns a page of sinks.
func (s *WebhookService) List(ctx context.Context, limit, offset int) ([]*model.WebhookSink, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies a partial sink update.
func (s *WebhookService) Update(ctx context.Context, id string, req *model.UpdateWebhookSinkRequest) (*model.WebhookSink, error) {
	if req == nil {
		return nil, apperrors.Validation("request body is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if req.EventFilter != nil {
		if err := s.checkFilter(*req.EventFilter); err != nil {
			return nil, err
		}
	}
	if req.URL != nil {
		if err := s.checkTargetURL(*req.URL); err != nil {
			return nil, err
		}
	}

	sink, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, sinkError(err)
	}
	return sink, nil
}

// Delete removes a sink. Deleting an absent id reports not_found.
func (s *WebhookService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return sinkError(err)
	}
	if !deleted {
		return apperrors.NotFound("webhook sink not found")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "webhook sink deleted", "sink_id", id)
	}
	return nil
}

// checkFilter validates JMESPath syntax. Empty filters are valid and match
// every event.
func (s *WebhookService) checkFilter(expr string) error {
	if err := s.evaluator.Validate(expr); err != nil {
		return apperrors.ValidationField("event_filter",
			fmt.Sprintf("invalid JMESPath expression: %v", err))
	}
	return nil
}

// checkTargetURL enforces the domain allowlist. A host is allowed when it
// equals an entry or shares its registrable domain (eTLD+1) with one. An
// empty allowlist allows any target.
func (s *WebhookService) checkTargetURL(raw string) error {
	if len(s.config.AllowedDomains) == 0 {
		return nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return apperrors.ValidationField("url", "url must be a valid URL")
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return apperrors.ValidationField("url", "url must have a valid host")
	}

	hostETLD := registrableDomain(host)
	for _, entry := range s.config.AllowedDomains {
		if host == entry {
			return nil
		}
		if hostETLD != "" && hostETLD == registrableDomain(entry) {
			return nil
		}
	}
	return apperrors.ValidationField("url",
		fmt.Sprintf("host %q is not in the allowed domains", host))
}

// registrableDomain extracts the eTLD+1 using the public suffix list.
// Unresolvable hosts (IPs, single labels) return "".
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return etld1
}

// sinkError maps the repository's not-found sentinel onto the coded error
// the HTTP layer turns into a 404.
func sinkError(err error) error {
	if errors.Is(err, data.ErrSinkNotFound) {
		return apperrors.NotFound("webhook sink not found")
	}
	return err
}
