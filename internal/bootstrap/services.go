package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taskdog/taskdog/config"
	"github.com/taskdog/taskdog/internal/adapters/autoplan"
	"github.com/taskdog/taskdog/internal/adapters/ws"
	"github.com/taskdog/taskdog/internal/core"
	"github.com/taskdog/taskdog/internal/data"
	"github.com/taskdog/taskdog/internal/observability/notify/pagerduty"
	"github.com/taskdog/taskdog/internal/observability/notify/slack"
	"github.com/taskdog/taskdog/internal/observability/statsd"
	"github.com/taskdog/taskdog/internal/service"
	"github.com/taskdog/taskdog/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Tasks         *service.TaskService
	Optimize      *service.OptimizeService
	Audit         *service.AuditService
	Webhooks      *service.WebhookService
	Auth          *service.AuthService
	Hub           *ws.Hub
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB              *sql.DB
	Redis           redis.UniversalClient
	TaskRepo        *data.TaskRepo
	AuditRepo       *data.AuditLogRepo
	WebhookSinkRepo *data.WebhookSinkRepo
	CacheRepo       *data.RedisCacheRepo
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "taskdog",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	failureNotifier := buildFailureNotifier(obsLogger, cfg.Notifications)

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: failureNotifier,
		NotifierConfig:  cfg.Notifications,
	}
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient) *serviceRepositories {
	repos := &serviceRepositories{
		DB:              db,
		Redis:           redisClient,
		TaskRepo:        data.NewTaskRepo(db),
		AuditRepo:       data.NewAuditLogRepo(db),
		WebhookSinkRepo: data.NewWebhookSinkRepo(db),
	}
	// Leave CacheRepo nil without Redis so downstream wiring sees a true nil.
	if redisClient != nil {
		repos.CacheRepo = data.NewRedisCacheRepo(redisClient)
	}
	return repos
}

func newGanttCacheService(repos *serviceRepositories) *core.GanttCacheService {
	if repos.CacheRepo == nil {
		return nil
	}
	return core.NewGanttCacheService(repos.CacheRepo, core.DefaultGanttCacheConfig())
}

// broadcastBundle groups the event fan-out pieces: the WebSocket hub, the
// webhook dispatcher, and the fanout that feeds both.
type broadcastBundle struct {
	hub     *ws.Hub
	fanout  *service.EventFanout
	metrics statsd.Sink
}

type broadcastOptions struct {
	Repos         *serviceRepositories
	Broadcast     config.BroadcastConfig
	Webhooks      config.WebhookConfig
	Observability ObservabilityContainer
	Logger        *slog.Logger
}

func newBroadcastBundle(opts broadcastOptions) broadcastBundle {
	var metrics statsd.Sink
	if opts.Observability.MetricsSink != nil {
		metrics = opts.Observability.MetricsSink
	}

	hub := ws.NewHub(ws.HubOptions{
		QueueSize:    opts.Broadcast.QueueSize,
		WriteTimeout: opts.Broadcast.WriteTimeout,
		Metrics:      metrics,
		Logger:       opts.Logger,
	})

	dispatcher := service.MustNewWebhookDispatcher(service.WebhookDispatcherOptions{
		Repo:    opts.Repos.WebhookSinkRepo,
		Logger:  opts.Logger,
		Metrics: metrics,
		Config:  opts.Webhooks,
	})

	return broadcastBundle{
		hub:     hub,
		fanout:  service.NewEventFanout(hub, dispatcher),
		metrics: metrics,
	}
}

func newAuthService(cfg config.AuthConfig, redisClient redis.UniversalClient, logger *slog.Logger) *service.AuthService {
	return BuildAuthService(AuthConfig{
		Auth:        cfg,
		RedisClient: redisClient,
		Logger:      logger,
	})
}

type DomainServicesOptions struct {
	Repos         *serviceRepositories
	Observability ObservabilityContainer
	Config        *config.AppConfig
	Logger        *slog.Logger
}

// buildDomainServices wires business services using repositories and observability adapters.
func buildDomainServices(opts *DomainServicesOptions) ServiceContainer {
	if opts == nil {
		return ServiceContainer{}
	}
	svcLogger := opts.Logger
	if svcLogger == nil {
		svcLogger = slog.Default()
	}

	appCfg := opts.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	ganttCache := newGanttCacheService(opts.Repos)
	broadcast := newBroadcastBundle(broadcastOptions{
		Repos:         opts.Repos,
		Broadcast:     appCfg.Broadcast,
		Webhooks:      appCfg.Webhooks,
		Observability: opts.Observability,
		Logger:        svcLogger,
	})

	holidays := appCfg.Region.Holidays()
	location := appCfg.Time.Location()

	taskService := service.MustNewTaskService(service.TaskServiceOptions{
		Repo:        opts.Repos.TaskRepo,
		Audit:       opts.Repos.AuditRepo,
		Broadcaster: broadcast.fanout,
		GanttCache:  ganttCache,
		Holidays:    holidays,
		Location:    location,
		Metrics:     broadcast.metrics,
		Notifier:    opts.Observability.FailureNotifier,
		Logger:      svcLogger,
		Config:      appCfg.Tasks,
	})

	optimizeOpts := service.OptimizeServiceOptions{
		Repo:         opts.Repos.TaskRepo,
		Audit:        opts.Repos.AuditRepo,
		Broadcaster:  broadcast.fanout,
		GanttCache:   ganttCache,
		Holidays:     holidays,
		Location:     location,
		Metrics:      broadcast.metrics,
		Notifier:     opts.Observability.FailureNotifier,
		Logger:       svcLogger,
		Time:         appCfg.Time,
		Optimization: appCfg.Optimization,
	}
	if opts.Repos.CacheRepo != nil {
		optimizeOpts.Cache = opts.Repos.CacheRepo
	}
	optimizeService := service.MustNewOptimizeService(optimizeOpts)

	auditService := service.MustNewAuditService(service.AuditServiceOptions{
		Repo: opts.Repos.AuditRepo,
	})

	webhookService := service.MustNewWebhookService(service.WebhookServiceOptions{
		Repo:   opts.Repos.WebhookSinkRepo,
		Logger: svcLogger,
		Config: appCfg.Webhooks,
	})

	authService := newAuthService(appCfg.Auth, opts.Repos.Redis, svcLogger)

	return ServiceContainer{
		Tasks:         taskService,
		Optimize:      optimizeService,
		Audit:         auditService,
		Webhooks:      webhookService,
		Auth:          authService,
		Hub:           broadcast.hub,
		Observability: opts.Observability,
	}
}

func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var obsCfg config.ObservabilityConfig
	if deps.Config != nil {
		obsCfg = deps.Config.Observability
	}
	observability := buildObservability(logger, obsCfg)
	repos := buildRepositories(deps.DB, deps.RedisClient)
	return buildDomainServices(&DomainServicesOptions{
		Repos:         repos,
		Observability: observability,
		Config:        deps.Config,
		Logger:        logger,
	})
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger.With("component", "failure_notifier"),
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
			Username:   cfg.Slack.Username,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "pagerduty",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: baseLogger.With("component", "failure_notifier"),
		Sinks:  sinks,
	})
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		DB:       deps.cfg.DB,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				if deps.logger != nil {
					deps.logger.WarnContext(
						ctx,
						"dropping background service error",
						"service",
						descriptor.name,
						"error",
						errMsg,
					)
				} else {
					slog.Default().WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
				}
			}
		}
	}()

	if deps.logger != nil {
		deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	} else {
		slog.Default().InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	}

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newAutoplanBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeAutoplan,
		name: "autoplan",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			interval := time.Duration(0)
			if deps.cfg.Config != nil {
				interval = deps.cfg.Config.Autoplan.Interval
			}
			var metrics statsd.Sink
			if deps.cfg.Services.Observability.MetricsSink != nil {
				metrics = deps.cfg.Services.Observability.MetricsSink
			}
			runner, err := autoplan.NewRunner(autoplan.RunnerOptions{
				Optimizer: deps.cfg.Services.Optimize,
				Interval:  interval,
				Logger:    deps.logger,
				Metrics:   metrics,
				Notifier:  deps.cfg.Services.Observability.FailureNotifier,
			})
			if err != nil {
				return err
			}
			return runner.Run(ctx)
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newAutoplanBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx := context.Background()
	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	// Start all enabled services
	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		hub:         cfg.Services.Hub,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	modes := []config.ServiceMode{
		config.ServiceModeHTTP,
		config.ServiceModeAutoplan,
	}

	count := 0
	for _, mode := range modes {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	size := errorChannelCapacity(enabled) + 1
	if size < 1 {
		return 1
	}
	return size
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	hub         *ws.Hub
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	// Gracefully stop HTTP server if running
	if cfg.httpServer != nil {
		// Create a timeout context for HTTP shutdown
		shutdownCtx, cancel := context.WithTimeout(cfg.ctx, shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Hub:     cfg.hub,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	// Wait for background services to finish
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
