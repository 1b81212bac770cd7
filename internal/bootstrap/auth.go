package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/taskdog/taskdog/config"
	"github.com/taskdog/taskdog/internal/adapters/authroles"
	"github.com/taskdog/taskdog/internal/adapters/devauth"
	"github.com/taskdog/taskdog/internal/adapters/memsession"
	"github.com/taskdog/taskdog/internal/adapters/oidc"
	redisadapter "github.com/taskdog/taskdog/internal/adapters/redis"
	"github.com/taskdog/taskdog/internal/ports"
	"github.com/taskdog/taskdog/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is disabled, not configured, or configuration is invalid.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	if !cfg.Auth.Enabled {
		return nil
	}

	// Session store and role mapper are shared by both modes. Without Redis
	// sessions live in process memory and vanish on restart.
	var sessionStore ports.SessionStore
	if cfg.RedisClient != nil {
		sessionStore = redisadapter.NewSessionStore(cfg.RedisClient)
	} else {
		if cfg.Logger != nil {
			cfg.Logger.Info("redis not configured, using in-memory session store", "mode", cfg.Auth.Mode)
		}
		sessionStore = memsession.NewStore()
	}

	roleMapper := authroles.StaticRoleMapper{
		AdminGroup: cfg.Auth.AdminGroup,
		UserGroup:  cfg.Auth.UserGroup,
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuthService(cfg, sessionStore, roleMapper)

	case config.AuthModeOAuth:
		return buildOAuthService(cfg, sessionStore, roleMapper)

	default:
		return nil
	}
}

func buildDevAuthService(
	cfg AuthConfig,
	sessionStore ports.SessionStore,
	roleMapper authroles.StaticRoleMapper,
) *service.AuthService {
	// Explicitly enabled dev auth mode; build a local provider.
	prov, err := devauth.NewProvider(devauth.Config{
		UserID: cfg.Auth.DevAuth.UserID,
		Email:  cfg.Auth.DevAuth.Email,
		Groups: cfg.Auth.DevAuth.Groups,
		// session duration defaults inside provider
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		}
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:   prov,
		Sessions:   sessionStore,
		Roles:      roleMapper,
		SessionTTL: cfg.Auth.SessionTTL,
	})
}

func buildOAuthService(
	cfg AuthConfig,
	sessionStore ports.SessionStore,
	roleMapper authroles.StaticRoleMapper,
) *service.AuthService {
	// Only enable when fully configured
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		}
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:   prov,
		Sessions:   sessionStore,
		Roles:      roleMapper,
		SessionTTL: cfg.Auth.SessionTTL,
	})
}
