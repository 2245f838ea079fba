package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/lensbook/booking-api/internal/config"
	"github.com/lensbook/booking-api/internal/database"
	"github.com/lensbook/booking-api/internal/handler"
	"github.com/lensbook/booking-api/internal/logger"
	"github.com/lensbook/booking-api/internal/queue"
	"github.com/lensbook/booking-api/internal/repository"
	"github.com/lensbook/booking-api/internal/router"
	"github.com/lensbook/booking-api/internal/validation"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins

	cfg := config.Load()
	log := logger.New("server")

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	publisher := queue.NewPublisher(cfg.AMQPURL, log)
	go queue.StartConsumer(cfg.AMQPURL, logger.New("booking-consumer"))

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	router.Register(e, router.Deps{
		Cfg:      cfg,
		Users:    users,
		Auth:     handler.NewAuthHandler(cfg, users, log),
		UserH:    handler.NewUserHandler(users, log),
		Bookings: handler.NewBookingHandler(bookings, publisher, log),
		Redis:    rdb,
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
