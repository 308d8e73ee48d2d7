package main

import (
	"context"
	"sync"
	"time"

	"campsite/internal/reservations/cache"
	"campsite/internal/reservations/events"
	"campsite/internal/reservations/handler"
	"campsite/internal/reservations/repository"
	"campsite/internal/reservations/service"
	"campsite/internal/reservations/validator"
	"campsite/pkg/app"
	"campsite/pkg/config"
	"campsite/pkg/kafka"
	kafka_config "campsite/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	// Log all configuration values
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Reservations service")
	cfg.SetMongo()
	if cfg.RedisAddr != "" {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repository.EnsureIndexes(ctx, cfg); err != nil {
		cancel()
		cfg.Log.Fatal("Failed to create reservation indexes", "error", err)
	}
	cancel()

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	reservationService := initServices(cfg, publisher)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) service.ReservationService {
	bookingValidator := validator.NewBookingValidator()
	store := repository.NewMongoReservationStore(cfg)

	var availability cache.AvailabilityCache
	if cfg.Client.Redis != nil {
		availability = cache.NewRedisCache(cfg.Client.Redis, cfg.CacheTTL)
		cfg.Log.Info("Availability cache backed by Redis", "addr", cfg.RedisAddr)
	} else {
		availability = cache.NewMemoryCache(cfg.CacheTTL)
		cfg.Log.Warn("No Redis address configured, using in-process availability cache")
	}

	reservationService := service.NewReservationService(
		&sync.Mutex{},
		store,
		availability,
		bookingValidator,
		publisher,
		cfg,
		cfg.Log,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}

func initPublisher(cfg *config.Config) events.Publisher {
	if cfg.ReservationEventsTopic == "" {
		cfg.Log.Info("No events topic configured, lifecycle events disabled")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.ReservationEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Publishing reservation events", "topic", cfg.ReservationEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
