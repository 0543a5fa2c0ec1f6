package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lodging/pkg/client"
	"lodging/pkg/logger"
	"lodging/pkg/sanitizer"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoReadTimeout  time.Duration
	MongoWriteTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	CORSAllowedOrigins []string

	JWTSecret       string
	TokenTTL        time.Duration
	AdminSignupCode string

	MaxRoomsPerDate     int
	MaxNightsPerBooking int

	ReconcileMaxAttempts  int
	ReconcileRetryBackoff time.Duration

	KafkaEnabled          bool
	BookingEventsTopic    string
	BookingEventsDLQTopic string
	AuditConsumerGroup    string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the service configuration from the environment. A .env file in
// the working directory is applied first when present; real environment
// variables take precedence over it.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoReadTimeout:  getEnvDuration(EnvMongoReadTimeout, DefaultMongoReadTimeout),
		MongoWriteTimeout: getEnvDuration(EnvMongoWriteTimeout, DefaultMongoWriteTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins),

		JWTSecret:       getEnvStr(EnvJWTSecret, ""),
		TokenTTL:        getEnvDuration(EnvTokenTTL, DefaultTokenTTL),
		AdminSignupCode: getEnvStr(EnvAdminSignupCode, DefaultAdminSignupCode),

		MaxRoomsPerDate:     getEnvNum(EnvMaxRoomsPerDate, DefaultMaxRoomsPerDate),
		MaxNightsPerBooking: getEnvNum(EnvMaxNightsPerBooking, DefaultMaxNightsPerBooking),

		ReconcileMaxAttempts:  getEnvNum(EnvReconcileMaxAttempts, DefaultReconcileMaxAttempts),
		ReconcileRetryBackoff: getEnvDuration(EnvReconcileRetryBackoff, DefaultReconcileRetryBackoff),

		KafkaEnabled:          getEnvBool(EnvKafkaEnabled, false),
		BookingEventsTopic:    getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingEventsDLQTopic: getEnvStr(EnvBookingEventsDLQTopic, DefaultBookingEventsDLQTopic),
		AuditConsumerGroup:    getEnvStr(EnvAuditConsumerGroup, DefaultAuditConsumerGroup),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the optional Redis client. Without REDIS_ADDR the
// services fall back to in-process stores.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		cfg.Log.Info("Redis not configured, using in-memory stores")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout":  cfg.MongoConnTimeout,
		"MongoReadTimeout":  cfg.MongoReadTimeout,
		"MongoWriteTimeout": cfg.MongoWriteTimeout,
		"RateLimitWindow":   cfg.RateLimitWindow,
		"RequestTimeout":    cfg.RequestTimeout,
		"IdempotencyTTL":    cfg.IdempotencyTTL,
		"ReadTimeout":       cfg.ReadTimeout,
		"WriteTimeout":      cfg.WriteTimeout,
		"IdleTimeout":       cfg.IdleTimeout,
		"ShutdownTimeout":   cfg.ShutdownTimeout,
		"TokenTTL":          cfg.TokenTTL,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}
	if cfg.ReconcileRetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("ReconcileRetryBackoff cannot be negative, got: %s", cfg.ReconcileRetryBackoff))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.MaxRoomsPerDate <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRoomsPerDate must be positive, got: %d", cfg.MaxRoomsPerDate))
	}
	if cfg.MaxNightsPerBooking <= 0 {
		errors = append(errors, fmt.Sprintf("MaxNightsPerBooking must be positive, got: %d", cfg.MaxNightsPerBooking))
	}
	if cfg.ReconcileMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ReconcileMaxAttempts must be positive, got: %d", cfg.ReconcileMaxAttempts))
	}
	if cfg.KafkaEnabled && cfg.BookingEventsTopic == "" {
		errors = append(errors, "BookingEventsTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// ValidateAuth checks the settings only the HTTP API needs. The migration
// and audit jobs never issue tokens.
func (cfg *Config) ValidateAuth() error {
	if len(cfg.JWTSecret) < 32 {
		return fmt.Errorf("JWTSecret must be set and at least 32 characters long")
	}
	if cfg.AdminSignupCode == "" {
		return fmt.Errorf("AdminSignupCode cannot be empty")
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"jwt_secret_set", cfg.JWTSecret != "",
		"token_ttl", cfg.TokenTTL,
		"max_rooms_per_date", cfg.MaxRoomsPerDate,
		"max_nights_per_booking", cfg.MaxNightsPerBooking,
		"reconcile_max_attempts", cfg.ReconcileMaxAttempts,
		"reconcile_retry_backoff", cfg.ReconcileRetryBackoff,
		"kafka_enabled", cfg.KafkaEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"booking_events_dlq_topic", cfg.BookingEventsDLQTopic,
		"audit_consumer_group", cfg.AuditConsumerGroup,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	return sanitizer.NormalizeStringSlice(strings.Split(value, ","), strings.TrimSpace)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = MinPaginationLimit
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
