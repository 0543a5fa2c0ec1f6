package config

import (
	"io"
	"strings"
	"testing"
	"time"

	"lodging/pkg/logger"
)

func validConfig() *Config {
	return &Config{
		MongoURI:              DefaultMongoURI,
		MongoDatabaseName:     DefaultMongoDatabaseName,
		MongoConnTimeout:      DefaultMongoConnTimeout,
		MongoReadTimeout:      DefaultMongoReadTimeout,
		MongoWriteTimeout:     DefaultMongoWriteTimeout,
		Port:                  DefaultPort,
		RateLimitRequests:     DefaultRateLimitRequests,
		RateLimitWindow:       DefaultRateLimitWindow,
		RequestTimeout:        DefaultRequestTimeout,
		IdempotencyTTL:        DefaultIdempotencyTTL,
		MaxRequestSize:        DefaultMaxRequestSize,
		ReadTimeout:           DefaultReadTimeout,
		WriteTimeout:          DefaultWriteTimeout,
		IdleTimeout:           DefaultIdleTimeout,
		ShutdownTimeout:       DefaultShutdownTimeout,
		JWTSecret:             strings.Repeat("s", 32),
		TokenTTL:              DefaultTokenTTL,
		AdminSignupCode:       DefaultAdminSignupCode,
		MaxRoomsPerDate:       DefaultMaxRoomsPerDate,
		MaxNightsPerBooking:   DefaultMaxNightsPerBooking,
		ReconcileMaxAttempts:  DefaultReconcileMaxAttempts,
		ReconcileRetryBackoff: DefaultReconcileRetryBackoff,
		BookingEventsTopic:    DefaultBookingEventsTopic,
		Log:                   logger.New(logger.Config{Output: io.Discard}),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(cfg *Config) {}},
		{name: "bad port", mutate: func(cfg *Config) { cfg.Port = "99999" }, wantErr: "Port"},
		{name: "bad mongo scheme", mutate: func(cfg *Config) { cfg.MongoURI = "postgres://x" }, wantErr: "MongoURI"},
		{name: "zero max rooms", mutate: func(cfg *Config) { cfg.MaxRoomsPerDate = 0 }, wantErr: "MaxRoomsPerDate"},
		{name: "zero reconcile attempts", mutate: func(cfg *Config) { cfg.ReconcileMaxAttempts = 0 }, wantErr: "ReconcileMaxAttempts"},
		{name: "negative backoff", mutate: func(cfg *Config) { cfg.ReconcileRetryBackoff = -time.Second }, wantErr: "ReconcileRetryBackoff"},
		{name: "zero token ttl", mutate: func(cfg *Config) { cfg.TokenTTL = 0 }, wantErr: "TokenTTL"},
		{
			name: "kafka without topic",
			mutate: func(cfg *Config) {
				cfg.KafkaEnabled = true
				cfg.BookingEventsTopic = ""
			},
			wantErr: "BookingEventsTopic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAuth(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateAuth(); err != nil {
		t.Fatalf("ValidateAuth() unexpected error: %v", err)
	}

	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() should ignore the JWT secret, got %v", err)
	}
	if err := cfg.ValidateAuth(); err == nil || !strings.Contains(err.Error(), "JWTSecret") {
		t.Errorf("ValidateAuth() error = %v, want it to mention JWTSecret", err)
	}

	cfg = validConfig()
	cfg.AdminSignupCode = ""
	if err := cfg.ValidateAuth(); err == nil {
		t.Error("ValidateAuth() should reject an empty admin code")
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017/lodging")
	if strings.Contains(got, "secret") || !strings.Contains(got, "***:***@") {
		t.Errorf("redactMongoURI() = %s", got)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv(EnvCORSAllowedOrigins, " https://a.example , ,https://b.example")
	got := getEnvList(EnvCORSAllowedOrigins)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("getEnvList() = %v", got)
	}
}

func TestNormalizePaginationLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, MinPaginationLimit},
		{-5, MinPaginationLimit},
		{25, 25},
		{DefaultPaginationLimit + 1, DefaultPaginationLimit},
	}
	for _, tt := range tests {
		if got := NormalizePaginationLimit(tt.in); got != tt.want {
			t.Errorf("NormalizePaginationLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if NormalizeOffset(-3) != 0 {
		t.Error("NormalizeOffset should clamp negatives to zero")
	}
}
