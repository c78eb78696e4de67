package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/kagisomabe/luma-events/internal/config"
	"github.com/kagisomabe/luma-events/internal/database"
	"github.com/kagisomabe/luma-events/internal/handler"
	"github.com/kagisomabe/luma-events/internal/integration"
	"github.com/kagisomabe/luma-events/internal/queue"
	"github.com/kagisomabe/luma-events/internal/repository"
	"github.com/kagisomabe/luma-events/internal/router"
	"github.com/kagisomabe/luma-events/internal/service"
	"github.com/kagisomabe/luma-events/internal/subscription"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: caching, rate limiting and the cross-process
	// change feed all degrade gracefully without it.
	rdb := config.NewRedisClient(cfg)

	providers, err := integration.New(cfg)
	if err != nil {
		log.Fatalf("integrations: %v", err)
	}

	subs := subscription.NewManager(rdb)
	defer subs.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	regs := repository.NewRegistrationRepo(db)
	payments := repository.NewPaymentRepo(db)

	// A nil *redis.Client inside a non-nil interface would defeat the
	// service's nil checks, so the conversion is explicit.
	var cache service.Cache
	if rdb != nil {
		cache = rdb
	}

	eventSvc := service.NewEventService(events, cache, cfg.EventCacheTTL, providers, subs)
	regSvc := service.NewRegistrationService(events, regs, payments, providers, subs,
		queue.PublishRegistrationConfirmed)

	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Events:        handler.NewEventHandler(eventSvc),
		Registrations: handler.NewRegistrationHandler(regSvc),
		Admin:         handler.NewAdminHandler(eventSvc, events, regs, payments, users, subs),
		Live:          handler.NewLiveHandler(subs),
	}

	// The consumer reconnects on its own; a missing broker only costs
	// the fan-out log, never a registration.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, rdb, h)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, mock integrations=%t)", addr, cfg.Env, cfg.UseMockAPIs)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
