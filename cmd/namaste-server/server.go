package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ehr/namaste/internal/config"
	"github.com/ehr/namaste/internal/domain/diagnosis"
	"github.com/ehr/namaste/internal/domain/terminology"
	"github.com/ehr/namaste/internal/platform/auth"
	"github.com/ehr/namaste/internal/platform/db"
	"github.com/ehr/namaste/internal/platform/metrics"
	"github.com/ehr/namaste/internal/platform/middleware"
	"github.com/ehr/namaste/internal/platform/validate"
)

type serverDeps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	db       db.Pinger
	resolver auth.IdentityResolver
	store    diagnosis.Store
	terms    *terminology.Service
}

func newServer(d serverDeps) *echo.Echo {
	cfg := d.cfg

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()

	e.Use(middleware.Recovery(d.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(d.logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader, auth.DevIdentityHeader},
		ExposeHeaders: []string{terminology.SourceHeader, middleware.RequestIDHeader},
	}))

	registry := "fallback"
	if cfg.RegistryConfigured() {
		registry = "configured"
	}
	e.GET("/health", db.HealthHandler(d.db, map[string]string{"registry": registry}))
	e.GET("/metrics", metrics.Handler())

	var authMW echo.MiddlewareFunc
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware(d.resolver, cfg.DevPrincipal)
	} else {
		authMW = auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			SigningKey: []byte(cfg.AuthSigningKey),
			Resolver:   d.resolver,
		})
	}

	api := e.Group("/api/v1", authMW)
	if cfg.RateLimitRPS > 0 {
		api.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}))
	}
	api.GET("/me", auth.Me)

	terminology.NewHandler(d.terms, terminology.NewSearchGuard()).RegisterRoutes(api)

	coord := diagnosis.NewCoordinator(d.store, d.terms, 2*cfg.TerminologyTimeout, d.logger)
	diagnosis.NewHandler(diagnosis.NewBuilder(), coord, d.store, d.terms).RegisterRoutes(api)

	return e
}
