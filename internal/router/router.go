package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/securehealth/record-exchange/internal/config"
	"github.com/securehealth/record-exchange/internal/handler"
	"github.com/securehealth/record-exchange/internal/middleware"
	"github.com/securehealth/record-exchange/internal/session"
)

// RegisterRoutes wires every endpoint of the service onto the provided
// Echo instance. Patient endpoints are open (patients authenticate by
// knowing their own credentials in the request body); hospital search is
// gated by the session middleware and rate limited per hospital.
func RegisterRoutes(
	e *echo.Echo,
	rlCfg config.RateLimitConfig,
	rdb *redis.Client,
	store session.Store,
	patients *handler.PatientHandler,
	hospitals *handler.HospitalHandler,
	bootstrap *handler.BootstrapHandler,
) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Development-only bootstrap of the demo hospital accounts.
	api.POST("/init", bootstrap.Init)

	p := api.Group("/patient")
	p.POST("/register", patients.Register)
	p.POST("/login", patients.Login)
	p.POST("/lookup", patients.Lookup)
	p.GET("/:id/access-logs", patients.AccessLogs)

	hos := api.Group("/hospital")
	hos.POST("/login", hospitals.Login)
	hos.POST("/logout", hospitals.Logout)
	hos.GET("/session", hospitals.Session)

	// The search endpoint requires an authenticated hospital session; the
	// rate limiter runs after auth so buckets are keyed per hospital.
	hos.POST("/search", hospitals.DoSearch,
		middleware.HospitalAuth(store),
		middleware.SearchRateLimit(rlCfg, rdb))
}
