package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dealtracker/internal/caching"
	"dealtracker/internal/handlers"
	"dealtracker/internal/logger"
	"dealtracker/internal/middleware"
	"dealtracker/internal/observability/tracing"
	"dealtracker/internal/repositories"
	"dealtracker/internal/server"
	"dealtracker/internal/services"
	"dealtracker/internal/tenancy"
	"dealtracker/pkg/database"
)

type ServeCmd struct {
	Listen string `help:"HTTP listen address, overrides the config file" default:"" env:"HTTP_ADDR"`
	// ShutdownTimeout bounds graceful shutdown, including draining queued activity records.
	ShutdownTimeout time.Duration `help:"graceful shutdown timeout" default:"15s" env:"SHUTDOWN_TIMEOUT"`
}

func (c *ServeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	cfg, err := loadConfig(ctx, globals)
	if err != nil {
		return err
	}
	if c.Listen != "" {
		cfg.HTTP.Addr = c.Listen
	}

	log.Info().Str("version", globals.Version).Str("environment", cfg.Environment).Msg("starting server")

	shutdownTracing, err := tracing.Init(ctx, log, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, cfg.Environment)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialise tracing, continuing without it")
		shutdownTracing = func(context.Context) error { return nil }
	}

	pool, err := database.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if _, err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	redisClient, err := caching.NewRedisClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	sessions := caching.NewRedisCacheService(redisClient)

	storage, err := services.NewMinioService(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
	if err != nil {
		return fmt.Errorf("failed to initialise object storage: %w", err)
	}
	if err := storage.EnsureBucketExists(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket %s: %w", cfg.Storage.Bucket, err)
	}

	externalKeys, closeKeys, err := externalKeyfunc(log, cfg.Auth.JWKSURL)
	if err != nil {
		return err
	}
	defer closeKeys()

	accountRepo := repositories.NewAccountRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	startupRepo := repositories.NewStartupRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	prospectRepo := repositories.NewProspectRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	scriptRepo := repositories.NewSalesScriptRepo(pool)
	materialRepo := repositories.NewMaterialRepo(pool)
	activityRepo := repositories.NewActivityRepo(pool)
	inviteRepo := repositories.NewInviteRepo(pool)

	selector := tenancy.NewSelector(membershipRepo, startupRepo)

	activity := services.NewActivityService(activityRepo, log, services.ActivityOptions{
		BufferSize:   cfg.Activity.BufferSize,
		Workers:      cfg.Activity.Workers,
		WriteTimeout: cfg.Activity.WriteTimeout,
	})
	identity := services.NewIdentityService(accountRepo, sessions, services.IdentityOptions{
		JWTSecret:       cfg.Auth.JWTSecret,
		Issuer:          cfg.Auth.Issuer,
		SessionTTL:      cfg.Auth.SessionTTL,
		ExternalKeyfunc: externalKeys,
	})
	profiles := services.NewProfileService(profileRepo, membershipRepo)
	tenants := services.NewTenantService(startupRepo, membershipRepo, profileRepo, identity, activity)
	invites := services.NewInviteService(inviteRepo, startupRepo, membershipRepo, profileRepo, identity, selector, activity, cfg.Invites.TTL)
	prospects := services.NewProspectService(prospectRepo, profileRepo, activity)
	products := services.NewProductService(productRepo, activity)
	scripts := services.NewSalesScriptService(scriptRepo, activity)
	materials := services.NewMaterialService(materialRepo, storage, activity)
	dashboard := services.NewDashboardService(prospectRepo, activity)

	secure := cfg.IsProduction()
	opts := server.Options{
		Logger:      log,
		Session:     middleware.Session(identity),
		Tenant:      middleware.NewTenantMiddleware(profiles, selector, secure).Resolve(),
		CORSOrigins: cfg.HTTP.CORSOrigins,
		BodyLimit:   cfg.HTTP.BodyLimit,
		Metrics:     promhttp.Handler(),
	}
	if cfg.HTTP.CSRFEnabled {
		csrf, err := middleware.CrossOriginProtection(cfg.HTTP.TrustedOrigins)
		if err != nil {
			return err
		}
		opts.CSRF = csrf
	}

	e := server.New(server.Handlers{
		Auth:      handlers.NewAuthHandlers(identity, secure),
		Account:   handlers.NewAccountHandlers(profiles, selector, secure),
		Tenants:   handlers.NewTenantHandlers(tenants, profiles, invites),
		Invites:   handlers.NewInviteHandlers(invites),
		Prospects: handlers.NewProspectHandlers(prospects),
		Products:  handlers.NewProductHandlers(products, scripts),
		Materials: handlers.NewMaterialHandlers(materials, cfg.HTTP.MaxUploadBytes),
		Activity:  handlers.NewActivityHandlers(activity, dashboard),
		Health:    handlers.NewHealthHandlers(pool, sessions, storage, globals.Version),
	}, opts)

	srv := configureHTTPServer(cfg.HTTP.Addr, otelhttp.NewHandler(e, cfg.Telemetry.ServiceName))
	srv.BaseContext = baseContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(log.WithContext(context.Background()), c.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := activity.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("activity drain: %w", err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// externalKeyfunc loads the JWKS of an external identity provider when one is configured.
func externalKeyfunc(log zerolog.Logger, jwksURL string) (jwt.Keyfunc, func(), error) {
	if jwksURL == "" {
		return nil, func() {}, nil
	}
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Warn().Err(err).Str("jwks_url", jwksURL).Msg("failed to refresh JWKS")
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return jwks.Keyfunc, jwks.EndBackground, nil
}

// baseContext carries the process logger into every request context. Requests
// are not cancelled by the shutdown signal; srv.Shutdown lets them finish.
func baseContext(ctx context.Context) func(net.Listener) context.Context {
	base := context.WithoutCancel(ctx)
	return func(net.Listener) context.Context { return base }
}
