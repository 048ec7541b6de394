package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/sittara/table-reservation/internal/availability"
	"github.com/sittara/table-reservation/internal/booking"
	"github.com/sittara/table-reservation/internal/config"
	"github.com/sittara/table-reservation/internal/database"
	"github.com/sittara/table-reservation/internal/handler"
	"github.com/sittara/table-reservation/internal/middleware"
	"github.com/sittara/table-reservation/internal/payment"
	"github.com/sittara/table-reservation/internal/queue"
	"github.com/sittara/table-reservation/internal/repository"
	"github.com/sittara/table-reservation/internal/review"
	"github.com/sittara/table-reservation/internal/router"
	queue_publisher "github.com/sittara/table-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environments set vars directly

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: without it the response cache and rate limiter
	// disable themselves and the rating markers fall back to memory.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache, rate limiting and durable rating markers disabled")
	}

	restaurantRepo := repository.NewRestaurantRepo(db)
	tableRepo := repository.NewTableRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	engine := availability.New(availability.Config{
		OccupancyMinutes:    cfg.Booking.OccupancyMinutes,
		SlotIntervalMinutes: cfg.Booking.SlotIntervalMinutes,
		MaxAdvanceDays:      cfg.Booking.MaxAdvanceDays,
	}, restaurantRepo, tableRepo, reservationRepo)

	payTimeout := time.Duration(cfg.Payment.TimeoutSec) * time.Second
	var gateway payment.Gateway = payment.StubGateway{}
	if cfg.Payment.BaseURL != "" {
		gateway = payment.NewHTTPGateway(cfg.Payment.BaseURL, payTimeout)
	} else {
		log.Println("no payment gateway configured; deposit-gated reservations stay pending")
	}

	var markers review.MarkerStore
	if rdb != nil {
		markers = review.NewRedisMarkerStore(rdb)
	} else {
		markers = review.NewMemoryMarkerStore()
	}
	tracker := review.NewTracker(markers, queue_publisher.Notifier{},
		time.Duration(cfg.Booking.RatingGraceSeconds)*time.Second)

	arrival := booking.ArrivalWindow{
		Early: time.Duration(cfg.Booking.ArrivalEarlyMinutes) * time.Minute,
		Grace: time.Duration(cfg.Booking.ArrivalGraceMinutes) * time.Minute,
	}

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	publicHandler := &handler.PublicHandler{RestaurantRepo: restaurantRepo, TableRepo: tableRepo}
	availabilityHandler := handler.NewAvailabilityHandler(engine, restaurantRepo)
	reservationHandler := handler.NewReservationHandler(cfg.Booking, restaurantRepo, tableRepo, reservationRepo, gateway, tracker, payTimeout)
	staffHandler := handler.NewStaffHandler(restaurantRepo, tableRepo, reservationRepo, gateway, arrival, payTimeout)
	reviewHandler := handler.NewReviewHandler(reviewRepo, reservationRepo, restaurantRepo)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, availabilityHandler, reviewHandler, cacheMW)
	router.RegisterCustomer(e, reservationHandler, reviewHandler, cfg.JWTSecret)
	router.RegisterStaff(e, staffHandler, cfg.JWTSecret)

	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
