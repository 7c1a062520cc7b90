package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/gymdesk/gym-booking-api/internal/config"
	"github.com/gymdesk/gym-booking-api/internal/database"
	"github.com/gymdesk/gym-booking-api/internal/handler"
	"github.com/gymdesk/gym-booking-api/internal/queue"
	"github.com/gymdesk/gym-booking-api/internal/repository"
	"github.com/gymdesk/gym-booking-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Optional: nil when Redis is not reachable, and the cache and rate
	// limiter middlewares degrade to pass-through.
	rdb := config.NewRedisClient()

	accounts := repository.NewAccountRepo(db)
	tokens := repository.NewTokenRepo(db)
	classes := repository.NewClassRepo(db)
	bookings := repository.NewBookingRepo(db)
	programs := repository.NewProgramRepo(db)
	stats := repository.NewStatsRepo(db)

	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, accounts, tokens),
		Booking: handler.NewBookingHandler(bookings, classes),
		Trainer: handler.NewTrainerHandler(classes, bookings, stats),
		Admin:   handler.NewAdminHandler(accounts, classes, programs, stats),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, h, cfg, accounts, rdb)

	// The registration feed consumer reconnects forever in the background;
	// a missing broker never blocks the HTTP server.
	go func() {
		if err := queue.StartMemberConsumer(); err != nil {
			log.Printf("member-consumer: stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
