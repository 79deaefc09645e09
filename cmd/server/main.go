package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-booking/internal/clock"
	"github.com/iliyamo/event-seat-booking/internal/config"
	"github.com/iliyamo/event-seat-booking/internal/database"
	"github.com/iliyamo/event-seat-booking/internal/handler"
	"github.com/iliyamo/event-seat-booking/internal/lock"
	"github.com/iliyamo/event-seat-booking/internal/queue"
	"github.com/iliyamo/event-seat-booking/internal/repository"
	"github.com/iliyamo/event-seat-booking/internal/router"
	"github.com/iliyamo/event-seat-booking/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// The admission lock cannot degrade gracefully: without Redis no
	// claim can be serialized safely, so a missing connection is fatal.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis connect failed: the seat admission lock requires redis")
	}
	defer rdb.Close()

	seatRepo := repository.NewSeatRepo(db)
	holdRepo := repository.NewHoldRepo(db)
	allocationRepo := repository.NewAllocationRepo(db)

	locker := lock.NewRedisLocker(rdb)
	clk := clock.Real{}

	var publisher service.ConfirmedPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL)
	}

	reservations := service.NewReservationService(locker, seatRepo, holdRepo, clk, cfg.HoldTTL, cfg.LockTTL)
	confirmations := service.NewConfirmationService(holdRepo, allocationRepo, clk, publisher)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SweepInterval > 0 {
		sweeper := service.NewSweeper(holdRepo, clk, cfg.SweepInterval, cfg.SweepBatch)
		go sweeper.Run(rootCtx)
	}
	if cfg.RabbitURL != "" {
		go queue.StartPaymentConsumer(rootCtx, cfg.RabbitURL, confirmations)
	}

	reservationHandler := handler.NewReservationHandler(reservations, seatRepo)
	bookingHandler := handler.NewBookingHandler(confirmations, allocationRepo)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, reservationHandler)
	router.RegisterAPI(e, reservationHandler, bookingHandler, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, hold_ttl=%s, lock_ttl=%s)", addr, cfg.Env, cfg.HoldTTL, cfg.LockTTL)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server startup failed: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exiting")
}
