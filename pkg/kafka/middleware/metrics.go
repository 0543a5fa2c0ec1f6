package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"lodging/pkg/kafka"
)

// Metrics counts publish and consume outcomes. The zero value is ready to
// use and safe for concurrent callers.
type Metrics struct {
	published       atomic.Int64
	publishFailed   atomic.Int64
	publishDuration atomic.Int64
	consumed        atomic.Int64
	consumeFailed   atomic.Int64
	consumeDuration atomic.Int64
}

type Snapshot struct {
	Published          int64
	PublishFailed      int64
	AvgPublishDuration time.Duration
	Consumed           int64
	ConsumeFailed      int64
	AvgConsumeDuration time.Duration
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Published:     m.published.Load(),
		PublishFailed: m.publishFailed.Load(),
		Consumed:      m.consumed.Load(),
		ConsumeFailed: m.consumeFailed.Load(),
	}
	if s.Published > 0 {
		s.AvgPublishDuration = time.Duration(m.publishDuration.Load() / s.Published)
	}
	if s.Consumed > 0 {
		s.AvgConsumeDuration = time.Duration(m.consumeDuration.Load() / s.Consumed)
	}
	return s
}

func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			m.publishFailed.Add(1)
			return err
		}
		m.published.Add(1)
		m.publishDuration.Add(int64(time.Since(start)))
		return nil
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			m.consumeFailed.Add(1)
			return err
		}
		m.consumed.Add(1)
		m.consumeDuration.Add(int64(time.Since(start)))
		return nil
	}
}
