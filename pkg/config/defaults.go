package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "lodging"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoReadTimeout  = 5 * time.Second
	DefaultMongoWriteTimeout = 5 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRedisDB = 0

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTokenTTL        = 24 * time.Hour
	DefaultAdminSignupCode = "123"

	DefaultMaxRoomsPerDate     = 500
	DefaultMaxNightsPerBooking = 30

	DefaultReconcileMaxAttempts  = 5
	DefaultReconcileRetryBackoff = 25 * time.Millisecond

	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultAuditConsumerGroup    = "booking-audit"

	DefaultPaginationLimit = 100
	MinPaginationLimit     = 10
)
