package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/taskdog/taskdog/config"
	"github.com/taskdog/taskdog/internal/core"
	"github.com/taskdog/taskdog/internal/domain/model"
	"github.com/taskdog/taskdog/internal/observability/statsd"
)

// webhookErrorBodyLimit bounds how much of an error response is read for
// the log line.
const webhookErrorBodyLimit = 2048

// WebhookDispatcherOptions groups dependencies for WebhookDispatcher.
type WebhookDispatcherOptions struct {
	Repo      core.WebhookSinkRepository // Required: sink storage
	Evaluator JMESPathEvaluator          // Optional: defaults to the library evaluator
	Client    *http.Client               // Optional: HTTP client for deliveries
	Logger    *slog.Logger               // Optional: structured logger
	Metrics   statsd.Sink                // Optional: metrics sink (StatsD-compatible)
	Config    config.WebhookConfig       // Delivery limits
}

// WebhookDispatcher delivers broadcast events to the registered sinks. It
// implements core.EventBroadcaster so it can sit in the same fan-out as the
// WebSocket hub: each event is marshaled once, matched against every
// enabled sink's filter, and POSTed with bounded linear-backoff retries.
// Delivery failures are logged and counted, never surfaced to the write
// that produced the event.
type WebhookDispatcher struct {
	repo      core.WebhookSinkRepository
	evaluator JMESPathEvaluator
	client    *http.Client
	logger    *slog.Logger
	metrics   statsd.Sink
	config    config.WebhookConfig
}

// NewWebhookDispatcher constructs a new WebhookDispatcher.
func NewWebhookDispatcher(opts WebhookDispatcherOptions) (*WebhookDispatcher, error) {
	if opts.Repo == nil {
		return nil, errors.New("WebhookSinkRepository is required")
	}

	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = jmespathLibEvaluator{}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Config.Timeout}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "webhook_dispatcher")
	}

	return &WebhookDispatcher{
		repo:      opts.Repo,
		evaluator: evaluator,
		client:    client,
		logger:    logger,
		metrics:   opts.Metrics,
		config:    opts.Config,
	}, nil
}

// MustNewWebhookDispatcher constructs a new WebhookDispatcher and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewWebhookDispatcher(opts WebhookDispatcherOptions) *WebhookDispatcher {
	d, err := NewWebhookDispatcher(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return d
}

// Broadcast implements core.EventBroadcaster. Delivery runs on its own
// goroutine; the caller returns immediately.
func (d *WebhookDispatcher) Broadcast(event model.Event) {
	go d.deliver(event)
}

func (d *WebhookDispatcher) deliver(event model.Event) {
	defer func() {
		if r := recover(); r != nil && d.logger != nil {
			d.logger.Error("panic in webhook delivery", "event_type", event.Type, "panic", r)
		}
	}()

	ctx := context.Background()

	body, err := json.Marshal(event)
	if err != nil {
		d.logDeliveryError(event, "", fmt.Errorf("marshal event: %w", err))
		return
	}
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		d.logDeliveryError(event, "", fmt.Errorf("decode event envelope: %w", err))
		return
	}

	sinks, err := d.repo.ListEnabled(ctx)
	if err != nil {
		d.logDeliveryError(event, "", fmt.Errorf("list enabled sinks: %w", err))
		d.count("webhooks.list_errors", nil)
		return
	}
	if len(sinks) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, sink := range sinks {
		matched, err := eventMatchesFilter(d.evaluator, sink.EventFilter, envelope)
		if err != nil {
			if d.logger != nil {
				d.logger.Warn("webhook filter failed to evaluate",
					"sink_id", sink.ID, "sink_name", sink.Name, "error", err)
			}
			d.count("webhooks.filter_errors", map[string]string{"sink": sink.Name})
			continue
		}
		if !matched {
			continue
		}

		wg.Add(1)
		go func(sink *model.WebhookSink) {
			defer wg.Done()
			if err := d.post(ctx, sink, body); err != nil {
				d.logDeliveryError(event, sink.Name, err)
				d.count("webhooks.delivery_errors", map[string]string{"sink": sink.Name})
				return
			}
			d.count("webhooks.deliveries", map[string]string{"sink": sink.Name})
		}(sink)
	}
	wg.Wait()
}

// post sends the event to one sink, retrying with linear backoff: attempt n
// waits n * RetryBackoff first.
func (d *WebhookDispatcher) post(ctx context.Context, sink *model.WebhookSink, body []byte) error {
	attempts := d.config.RetryLimit
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			delay := time.Duration(attempt) * d.config.RetryBackoff
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err := d.attempt(ctx, sink, body); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("webhook delivery failed after %d attempts: %w", attempts, lastErr)
}

func (d *WebhookDispatcher) attempt(ctx context.Context, sink *model.WebhookSink, body []byte) error {
	attemptCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, sink.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sink.Secret != "" {
		req.Header.Set("X-Taskdog-Token", sink.Secret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return handleWebhookErrorResponse(resp)
	}
	return drainWebhookSuccess(resp)
}

func drainWebhookSuccess(resp *http.Response) error {
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return errors.Join(
				fmt.Errorf("drain webhook response body: %w", err),
				fmt.Errorf("close response body: %w", closeErr),
			)
		}
		return fmt.Errorf("drain webhook response body: %w", err)
	}
	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}

func handleWebhookErrorResponse(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, webhookErrorBodyLimit))
	closeErr := resp.Body.Close()

	err := fmt.Errorf("webhook endpoint returned status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	if readErr != nil {
		err = fmt.Errorf("webhook endpoint returned status %d (body unreadable: %v)", resp.StatusCode, readErr)
	}
	if closeErr != nil {
		return errors.Join(err, fmt.Errorf("close response body: %w", closeErr))
	}
	return err
}

func (d *WebhookDispatcher) logDeliveryError(event model.Event, sinkName string, err error) {
	if d.logger == nil {
		return
	}
	args := []any{"event_type", event.Type, "error", err}
	if sinkName != "" {
		args = append(args, "sink_name", sinkName)
	}
	d.logger.Error("webhook delivery failed", args...)
}

func (d *WebhookDispatcher) count(name string, tags map[string]string) {
	if d.metrics == nil {
		return
	}
	d.metrics.Count(name, 1, tags)
}

// EventFanout broadcasts each event to every wired broadcaster. It lets the
// WebSocket hub and the webhook dispatcher hang off task writes as one
// core.EventBroadcaster.
type EventFanout struct {
	broadcasters []core.EventBroadcaster
}

// NewEventFanout builds a fan-out over the non-nil broadcasters.
func NewEventFanout(broadcasters ...core.EventBroadcaster) *EventFanout {
	fanout := &EventFanout{}
	for _, b := range broadcasters {
		if b != nil {
			fanout.broadcasters = append(fanout.broadcasters, b)
		}
	}
	return fanout
}

// Broadcast implements core.EventBroadcaster.
func (f *EventFanout) Broadcast(event model.Event) {
	for _, b := range f.broadcasters {
		b.Broadcast(event)
	}
}
