package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/config"
	httpapi "github.com/aibuilder/aibuilder-backend/internal/api/http"
	"github.com/aibuilder/aibuilder-backend/internal/auth"
	authhttp "github.com/aibuilder/aibuilder-backend/internal/auth/http"
	authmw "github.com/aibuilder/aibuilder-backend/internal/auth/middleware"
	"github.com/aibuilder/aibuilder-backend/internal/auth/oidc"
	authservice "github.com/aibuilder/aibuilder-backend/internal/auth/service"
	"github.com/aibuilder/aibuilder-backend/internal/auth/session"
	"github.com/aibuilder/aibuilder-backend/internal/cronjob"
	"github.com/aibuilder/aibuilder-backend/internal/generation"
	"github.com/aibuilder/aibuilder-backend/internal/generation/llm"
	projectservice "github.com/aibuilder/aibuilder-backend/internal/projects/service"
	"github.com/aibuilder/aibuilder-backend/internal/publish"
)

const discoveryRefreshSpec = "@every 1h"

// App owns every long-lived resource of the API process.
type App struct {
	Router *gin.Engine

	log       *zap.Logger
	storage   *Storage
	redis     *redis.Client
	scheduler *cronjob.Scheduler
}

// NewApp wires the server from configuration. Optional collaborators
// (Redis, Firebase, Gemini, S3, OIDC) degrade to local fallbacks when they
// are not configured or cannot be reached.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("warning", w))
	}

	st, err := OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app := &App{log: log, storage: st, scheduler: cronjob.NewScheduler(log)}

	health := map[string]httpapi.Checker{"db": nil, "redis": nil}
	if st.Pool != nil {
		health["db"] = func(ctx context.Context) error { return st.Pool.Ping(ctx) }
	}

	var sessions session.Store = session.NewMemoryStore()
	if cfg.Redis.URL != "" {
		client, err := OpenRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("redis unavailable, sessions kept in memory", zap.Error(err))
		} else {
			app.redis = client
			sessions = session.NewRedisStore(client)
			health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}

	secret := cfg.Auth.SessionSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	cookies := session.NewCookies(secret, cfg.Auth.SessionTTL, cfg.Auth.CookieSecure)

	var verifier auth.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		fb, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			log.Warn("firebase disabled", zap.Error(err))
		} else {
			verifier = fb
		}
	}

	authOpts := authhttp.Options{
		LocalAuth:   cfg.LocalAuth(),
		RedirectURL: cfg.Auth.RedirectURL,
		Sessions:    sessions,
		Cookies:     cookies,
		Log:         log,
	}
	mwOpts := authmw.Options{
		LocalAuth: cfg.LocalAuth(),
		Verifier:  verifier,
		Sessions:  sessions,
		Cookies:   cookies,
		Log:       log,
	}
	if cfg.LocalAuth() {
		log.Info("local authentication enabled", zap.String("user_id", "local_user_123"))
	} else {
		provider := oidc.NewProvider(oidc.Config{
			IssuerURL:    cfg.Auth.IssuerURL,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
		}, &http.Client{Timeout: 10 * time.Second}, log)

		if _, err := provider.Discover(ctx); err != nil {
			log.Warn("oidc discovery failed, will retry on demand", zap.Error(err))
		}
		err := app.scheduler.Every(discoveryRefreshSpec, "oidc-discovery", 30*time.Second, func(ctx context.Context) error {
			_, err := provider.Refresh(ctx)
			return err
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		authOpts.Provider = provider
		mwOpts.Refresher = provider
	}

	var model generation.LLM
	if cfg.AI.HasValidKey() {
		gemini, err := llm.NewGemini(ctx, cfg.AI, log)
		if err != nil {
			log.Warn("gemini disabled, using template generation", zap.Error(err))
		} else {
			model = gemini
		}
	} else {
		log.Info("no Gemini API key, using template generation")
	}

	var publisher publish.Publisher = publish.NewLocalPublisher(cfg.Publish.BaseURL)
	if cfg.Publish.Bucket != "" {
		s3pub, err := publish.NewS3PublisherFromConfig(ctx, cfg.Publish, log)
		if err != nil {
			log.Warn("s3 publishing disabled", zap.Error(err))
		} else {
			publisher = s3pub
		}
	}

	app.Router = BuildRouter(RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
		Health:         health,
		Authenticator:  authmw.NewAuthenticator(mwOpts),
		AuthService:    authservice.NewAuthService(st),
		AuthOptions:    authOpts,
		Projects:       projectservice.NewProjectService(st, st, publisher, log),
		Generator:      generation.New(model, log),
	})

	app.scheduler.Start()
	return app, nil
}

// Close stops background jobs and releases connections.
func (a *App) Close() {
	a.scheduler.Stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
	a.storage.Close()
}
