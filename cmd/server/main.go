package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/securehealth/record-exchange/internal/config"
	"github.com/securehealth/record-exchange/internal/database"
	"github.com/securehealth/record-exchange/internal/handler"
	"github.com/securehealth/record-exchange/internal/queue"
	"github.com/securehealth/record-exchange/internal/repository"
	"github.com/securehealth/record-exchange/internal/router"
	"github.com/securehealth/record-exchange/internal/scoring"
	"github.com/securehealth/record-exchange/internal/search"
	queue_publisher "github.com/securehealth/record-exchange/internal/service"
	"github.com/securehealth/record-exchange/internal/session"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis backs sessions and rate limiting. When it is unreachable the
	// service still starts: sessions fall back to the in-memory store and
	// the rate limiter becomes a pass-through.
	rdb := config.NewRedisClient()
	var store session.Store
	if rdb != nil {
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		log.Printf("redis unavailable; using in-memory session store")
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	patients := repository.NewPatientRepo(db)
	hospitals := repository.NewHospitalRepo(db)
	accessLogs := repository.NewAccessLogRepo(db)
	rewards := repository.NewRewardRepo(db)

	scorer := scoring.NewClient(cfg.ScorerURL, cfg.ScorerAPIKey, cfg.ScorerTimeout)
	publisher := queue_publisher.NewAuditPublisher("")
	orchestrator := search.NewOrchestrator(patients, rewards, accessLogs, scorer, publisher)

	// Background consumer turns audit events into logs/access.log lines.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e,
		config.LoadRateLimitConfig(), rdb, store,
		handler.NewPatientHandler(patients, accessLogs),
		handler.NewHospitalHandler(cfg, hospitals, store, orchestrator),
		handler.NewBootstrapHandler(cfg, hospitals),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
