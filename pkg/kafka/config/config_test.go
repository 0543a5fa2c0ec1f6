package kafka_config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != DefaultKafkaBrokers {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ConsumerRetryBackoff != DefaultConsumerRetryBackoff {
		t.Errorf("ConsumerRetryBackoff = %v", cfg.ConsumerRetryBackoff)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, kafka-2:9092 ,,kafka-1:9092")
	t.Setenv(EnvKafkaConsumerMaxRetries, "5")
	t.Setenv(EnvKafkaProducerBatchTimeout, "25ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "kafka-1:9092" || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ConsumerMaxRetries != 5 {
		t.Errorf("ConsumerMaxRetries = %d", cfg.ConsumerMaxRetries)
	}
	if cfg.ProducerBatchTimeout != 25*time.Millisecond {
		t.Errorf("ProducerBatchTimeout = %v", cfg.ProducerBatchTimeout)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "compression", key: EnvKafkaProducerCompression, value: "brotli"},
		{name: "acks", key: EnvKafkaProducerRequireAcks, value: "2"},
		{name: "negative retries", key: EnvKafkaConsumerMaxRetries, value: "-1"},
		{name: "no brokers", key: EnvKafkaBrokers, value: " , "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.key, tt.value)
			}
		})
	}
}
