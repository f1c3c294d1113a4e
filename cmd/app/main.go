package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/courtbooking/config"
	"github.com/Domenick1991/courtbooking/internal/bootstrap"
	"github.com/Domenick1991/courtbooking/internal/cache"
	"github.com/Domenick1991/courtbooking/internal/kafka"
	"github.com/Domenick1991/courtbooking/internal/logger"
	"github.com/Domenick1991/courtbooking/internal/payment"
	"github.com/Domenick1991/courtbooking/internal/repository"
	"github.com/Domenick1991/courtbooking/internal/service/availability"
	"github.com/Domenick1991/courtbooking/internal/service/checkout"
	"github.com/Domenick1991/courtbooking/internal/service/hold"
	"github.com/Domenick1991/courtbooking/internal/service/pricing"
	"github.com/Domenick1991/courtbooking/internal/service/recurring"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		logger.Fatal("run migrations", "error", err)
	}

	durations, err := cfg.Booking.DurationPolicy()
	if err != nil {
		logger.Fatal("duration policy", "error", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.CourtsCacheDuration())
	defer redisCache.Close()
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	paymentClient := payment.NewClient(payment.Config{
		BaseURL:         cfg.Payment.BaseURL,
		MerchantID:      cfg.Payment.MerchantID,
		Password:        cfg.Payment.Password,
		Currency:        cfg.Payment.Currency,
		SuccessURL:      cfg.Payment.SuccessURL,
		FailURL:         cfg.Payment.FailURL,
		NotificationURL: cfg.Payment.NotificationURL,
		Timeout:         cfg.Payment.Timeout(),
	})

	clubRepo := repository.NewClubRepository(pool)
	courtRepo := repository.NewCourtRepository(pool)
	closureRepo := repository.NewClosureRepository(pool)
	tariffRepo := repository.NewTariffRepository(pool)
	draftRepo := repository.NewDraftRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	availabilityService := availability.NewAvailabilityService(clubRepo, courtRepo, closureRepo, reservationRepo, redisCache, durations)
	pricingService := pricing.NewPricingService(courtRepo, tariffRepo)
	holdService := hold.NewHoldService(
		availabilityService,
		pricingService,
		draftRepo,
		redisCache,
		cfg.Booking.SlotLockTTL(),
		cfg.Booking.DraftIdleTTL(),
	)
	checkoutService := checkout.NewCheckoutService(
		draftRepo,
		reservationRepo,
		paymentRepo,
		pricingService,
		paymentClient,
		cfg.Booking.PaymentTTL(),
		checkout.WithEvents(producer, cfg.Kafka.ReservationTopic),
		checkout.WithResultURL(cfg.Booking.ResultURL),
	)
	recurringService := recurring.NewRecurringService(holdService, checkoutService)

	router := bootstrap.NewRouter(cfg, bootstrap.Services{
		Availability: availabilityService,
		Pricing:      pricingService,
		Holds:        holdService,
		Checkout:     checkoutService,
		Recurring:    recurringService,
		Verifier:     paymentClient,
	}, map[string]bootstrap.HealthCheck{
		"postgres": pool.Ping,
		"redis":    redisCache.Ping,
		"kafka":    producer.Ping,
	})

	log.Info("starting court booking api", "address", cfg.HTTP.Address)
	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		logger.Fatal("server error", "error", err)
	}
	log.Info("api stopped")
}
