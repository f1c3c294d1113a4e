package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/courtbooking/config"
	"github.com/Domenick1991/courtbooking/internal/kafka"
	"github.com/Domenick1991/courtbooking/internal/logger"
	"github.com/Domenick1991/courtbooking/internal/notify"
	"github.com/Domenick1991/courtbooking/internal/repository"
	"github.com/Domenick1991/courtbooking/internal/service/checkout"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The worker expires unpaid holds, finalizes past reservations and turns
// reservation events into client notifications.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.Format).With("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	sweeper := checkout.NewSweeper(
		repository.NewReservationRepository(pool),
		checkout.WithEvents(producer, cfg.Kafka.ReservationTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReservationTopic)
	defer consumer.Close()
	sender := notify.NewSender(notify.NewLogTransport(log), log)

	go func() {
		if err := consumer.Consume(ctx, sender.Handle); err != nil {
			log.Error("consumer stopped", "error", err)
		}
	}()

	ticker := time.NewTicker(cfg.Worker.SweepInterval())
	defer ticker.Stop()

	log.Info("worker started", "sweep_interval", cfg.Worker.SweepInterval())
	for {
		select {
		case <-ticker.C:
			sweep(ctx, sweeper, log)
		case <-ctx.Done():
			log.Info("shutting down")
			return
		}
	}
}

func sweep(ctx context.Context, svc checkout.Sweeper, log *slog.Logger) {
	expired, err := svc.ExpirePending(ctx)
	if err != nil {
		log.Error("expire pending reservations", "error", err)
	} else if len(expired) > 0 {
		log.Info("expired pending reservations", "count", len(expired))
	}

	finalized, err := svc.FinalizePast(ctx)
	if err != nil {
		log.Error("finalize past reservations", "error", err)
	} else if len(finalized) > 0 {
		log.Info("finalized reservations", "count", len(finalized))
	}
}
