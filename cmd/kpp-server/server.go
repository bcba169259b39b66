package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/icap-ethiopia/kpp/internal/config"
	"github.com/icap-ethiopia/kpp/internal/domain/forms"
	"github.com/icap-ethiopia/kpp/internal/domain/ledger"
	"github.com/icap-ethiopia/kpp/internal/domain/summary"
	"github.com/icap-ethiopia/kpp/internal/domain/workspace"
	"github.com/icap-ethiopia/kpp/internal/platform/auth"
	"github.com/icap-ethiopia/kpp/internal/platform/cache"
	"github.com/icap-ethiopia/kpp/internal/platform/db"
	"github.com/icap-ethiopia/kpp/internal/platform/middleware"
	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
	"github.com/icap-ethiopia/kpp/internal/platform/validate"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg != nil && cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newServer builds the echo instance with the middleware chain and routes.
func newServer(cfg *config.Config, logger zerolog.Logger, h *workspace.Handler, checks []db.Check) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", db.HealthHandler(checks...))

	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		SigningKey: []byte(cfg.AuthSigningKey),
		Skipper:    auth.Skipper,
		Defaults: auth.Session{
			ProviderUUID:      cfg.DefaultProviderUUID,
			EncounterRoleUUID: cfg.DefaultEncounterRoleUUID,
			Roles:             cfg.WriteRoles,
		},
	}

	api := e.Group("/api/v1")
	if cfg.IsDev() {
		api.Use(auth.DevSessionMiddleware(jwtCfg))
	} else {
		api.Use(auth.SessionMiddleware(jwtCfg))
	}
	api.Use(middleware.RateLimit(rateLimitConfig(cfg)))
	h.RegisterRoutes(api)

	return e
}

// rateLimitConfig keeps the default idle eviction and takes rates from cfg.
func rateLimitConfig(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	rl.RequestsPerSecond = cfg.RateLimitRPS
	rl.BurstSize = cfg.RateLimitBurst
	return rl
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger(nil)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	loc, _ := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := openmrs.NewClient(cfg.OpenMRSBaseURL,
		openmrs.WithBasicAuth(cfg.OpenMRSUsername, cfg.OpenMRSPassword),
		openmrs.WithTimeout(cfg.OpenMRSTimeout),
		openmrs.WithRateLimit(cfg.OpenMRSRPS, cfg.OpenMRSBurst),
		openmrs.WithLogger(logger.With().Str("component", "openmrs").Logger()),
	)
	checks := []db.Check{{Name: "openmrs", Ping: client.Ping}}

	// Ledger
	var repo ledger.Repository = ledger.NewMemoryRepo()
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		repo = ledger.NewRepo(pool)
		checks = append(checks, db.PoolCheck(pool))
		logger.Info().Msg("connected to database")
	} else {
		logger.Warn().Msg("DATABASE_URL not set, submission ledger is kept in memory")
	}

	// Encounter cache
	var store cache.Store
	if cfg.RedisURL != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.RedisURL, "kpp:")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rs.Close()
		store = rs
		checks = append(checks, db.Check{Name: "redis", Ping: rs.Ping})
		logger.Info().Msg("connected to redis")
	} else {
		ms := cache.NewMemoryStore()
		ms.StartCleanup(ctx, time.Minute)
		store = ms
	}

	reg := forms.NewRegistry(cfg.EncounterTypes)
	if _, err := reg.CheckConcepts(); err != nil {
		logger.Fatal().Err(err).Msg("invalid concept map")
	}
	catalog, err := summary.NewCatalog(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build summary tables")
	}

	svc := workspace.NewService(client, reg, catalog,
		cache.NewRevalidator(store, cfg.CacheTTL, logger),
		repo,
		workspace.Config{
			FacilityLocationTag:   cfg.FacilityLocationTag,
			FollowUpEncounterType: cfg.EncounterTypes.FollowUp,
			Location:              loc,
		},
		logger,
	)

	e := newServer(cfg, logger, workspace.NewHandler(svc, cfg.WriteRoles...), checks)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("openmrs", cfg.OpenMRSBaseURL).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
