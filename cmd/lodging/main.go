package main

import (
	accommodationhandler "lodging/internal/accommodations/handler"
	accommodationrepo "lodging/internal/accommodations/repository"
	accommodationservice "lodging/internal/accommodations/service"
	accommodationvalidator "lodging/internal/accommodations/validator"
	audithandler "lodging/internal/audit/handler"
	auditrepo "lodging/internal/audit/repository"
	auditservice "lodging/internal/audit/service"
	"lodging/internal/availability"
	"lodging/internal/bookings/events"
	bookinghandler "lodging/internal/bookings/handler"
	bookingrepo "lodging/internal/bookings/repository"
	bookingservice "lodging/internal/bookings/service"
	bookingvalidator "lodging/internal/bookings/validator"
	"lodging/internal/health"
	userhandler "lodging/internal/users/handler"
	userrepo "lodging/internal/users/repository"
	userservice "lodging/internal/users/service"
	"lodging/pkg/app"
	"lodging/pkg/auth"
	"lodging/pkg/config"
	"lodging/pkg/contracts"
	mongotx "lodging/pkg/db/mongo"
	"lodging/pkg/kafka"
	kafka_config "lodging/pkg/kafka/config"
	kafka_middleware "lodging/pkg/kafka/middleware"
)

const ServiceName = "lodging"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateAuth(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Lodging service")
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	publisher, closePublisher := initPublisher(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(closePublisher)
	serverApp.SetApp(initHealth(cfg), tokens, initHandlers(cfg, tokens, publisher)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, tokens *auth.TokenManager, publisher events.Publisher) []contracts.Handler {
	accommodationRepo := accommodationrepo.NewMongoAccommodationRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)

	reconciler := availability.NewReconciler(
		accommodationRepo,
		mongotx.NewTransactionManager(cfg.Client.Mongo),
		cfg.Log,
		availability.Options{
			MaxRoomsPerDate: cfg.MaxRoomsPerDate,
			MaxAttempts:     cfg.ReconcileMaxAttempts,
			RetryBackoff:    cfg.ReconcileRetryBackoff,
		},
	)

	accommodationService := accommodationservice.NewAccommodationService(
		accommodationRepo,
		bookingRepo,
		accommodationvalidator.NewAccommodationValidator(cfg.Log, cfg.MaxNightsPerBooking, cfg.MaxRoomsPerDate),
		cfg,
	)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		reconciler,
		bookingvalidator.NewBookingValidator(cfg.Log, cfg.MaxNightsPerBooking, cfg.MaxRoomsPerDate),
		publisher,
		cfg,
	)
	userService := userservice.NewUserService(userrepo.NewMongoUserRepository(cfg), tokens, cfg.Log, cfg)
	auditService := auditservice.NewAuditService(auditrepo.NewMongoEventRepository(cfg), cfg.Log)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		userhandler.NewUserHandler(userService, cfg.Log),
		accommodationhandler.NewAccommodationHandler(accommodationService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		audithandler.NewTrailHandler(auditService),
	}
}

func initHealth(cfg *config.Config) *health.Handler {
	h := health.NewHandler(cfg.Log).Add("mongo", health.MongoCheck(cfg.Client.Mongo))
	if cfg.Client.Redis != nil {
		h.Add("redis", health.RedisCheck(cfg.Client.Redis))
	}
	return h
}

// initPublisher returns the booking event publisher and a func that
// releases it on shutdown.
func initPublisher(cfg *config.Config) (events.Publisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NoopPublisher{}, func() {}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	return events.NewKafkaPublisher(producer, cfg.Log), func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}
