package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/greenleaf/club-reservation/internal/availability"
	"github.com/greenleaf/club-reservation/internal/booking"
	"github.com/greenleaf/club-reservation/internal/clock"
	"github.com/greenleaf/club-reservation/internal/config"
	"github.com/greenleaf/club-reservation/internal/database"
	"github.com/greenleaf/club-reservation/internal/handler"
	"github.com/greenleaf/club-reservation/internal/queue"
	"github.com/greenleaf/club-reservation/internal/quota"
	"github.com/greenleaf/club-reservation/internal/repository"
	"github.com/greenleaf/club-reservation/internal/router"
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

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	clk := clock.NewSystem()

	schedules := repository.NewScheduleRepo(db)
	limits := repository.NewLimitRepo(db)
	products := repository.NewProductRepo(db)
	counters := repository.NewSlotCounterRepo(db)
	reservations := repository.NewReservationRepo(db)
	store := repository.NewBookingStore(db, products, counters, reservations)

	calc := availability.NewCalculator(schedules, counters, clk)
	tracker := quota.NewTracker(limits, reservations)
	ledger := booking.NewLedger(store, calc, tracker, clk)
	lifecycle := booking.NewLifecycle(store)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Deps{
		Schedule:     handler.NewScheduleHandler(schedules),
		Availability: handler.NewAvailabilityHandler(calc),
		Reservation:  handler.NewReservationHandler(ledger, reservations),
		Lifecycle:    handler.NewLifecycleHandler(lifecycle, reservations),
		JWTSecret:    cfg.JWTSecret,
		Redis:        rdb,
	})

	// Reservation events are consumed in-process and appended to
	// logs/reservation.log.
	go func() {
		if err := queue.StartReservationConsumer(cfg.QueueURL); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
