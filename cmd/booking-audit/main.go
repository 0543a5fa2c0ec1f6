package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	audithandler "lodging/internal/audit/handler"
	auditrepo "lodging/internal/audit/repository"
	auditservice "lodging/internal/audit/service"
	"lodging/internal/health"
	"lodging/pkg/config"
	"lodging/pkg/kafka"
	kafka_config "lodging/pkg/kafka/config"
	kafka_middleware "lodging/pkg/kafka/middleware"
	"lodging/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

const ServiceName = "booking-audit"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	service := auditservice.NewAuditService(auditrepo.NewMongoEventRepository(cfg), cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.AuditConsumerGroup,
		cfg.BookingEventsDLQTopic,
		audithandler.NewEventConsumer(service).Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := &kafka_middleware.Metrics{}
	consumer.Use(metrics.ConsumerMiddleware())
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := healthServer(cfg)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Health server failed", "error", err)
		}
	}()

	cfg.Log.Info("Consuming booking events",
		"topic", cfg.BookingEventsTopic,
		"group", cfg.AuditConsumerGroup,
		"dlq_topic", cfg.BookingEventsDLQTopic,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Error("Health server shutdown failed", "error", err)
	}
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}

	s := metrics.Snapshot()
	cfg.Log.Info("Booking audit stopped",
		"consumed", s.Consumed,
		"failed", s.ConsumeFailed,
		"avg_duration", s.AvgConsumeDuration,
		"lag", consumer.Lag(),
	)
}

func healthServer(cfg *config.Config) *http.Server {
	router := httprouter.New()
	health.NewHandler(cfg.Log).
		Add("mongo", health.MongoCheck(cfg.Client.Mongo)).
		RegisterRoutes(router)

	var handler http.Handler = router
	handler = middleware.RequestLogging(cfg.Log)(handler)
	handler = middleware.Recovery(cfg.Log)(handler)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
