package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoReadTimeout  = "MONGO_READ_TIMEOUT"
	EnvMongoWriteTimeout = "MONGO_WRITE_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvJWTSecret       = "JWT_SECRET"
	EnvTokenTTL        = "TOKEN_TTL"
	EnvAdminSignupCode = "ADMIN_SIGNUP_CODE"

	EnvMaxRoomsPerDate     = "MAX_ROOMS_PER_DATE"
	EnvMaxNightsPerBooking = "MAX_NIGHTS_PER_BOOKING"

	EnvReconcileMaxAttempts  = "RECONCILE_MAX_ATTEMPTS"
	EnvReconcileRetryBackoff = "RECONCILE_RETRY_BACKOFF"

	EnvKafkaEnabled          = "KAFKA_ENABLED"
	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvAuditConsumerGroup    = "AUDIT_CONSUMER_GROUP"
)
