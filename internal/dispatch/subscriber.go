package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"swapvenue/internal/engine"
	"swapvenue/internal/observability"
)

// Stream and consumer names for the operation request stream.
const (
	OpStreamName   = "VENUE_OPS"
	OpConsumerName = "venue-ops"
)

// rawRequest is one pulled message, queued for the single apply goroutine.
type rawRequest struct {
	Op   string
	Data []byte
	Ack  func()
	Nak  func()
}

// Subscriber pulls operation requests from JetStream and applies them
// through a single goroutine, so the engine only ever sees one operation at
// a time.
type Subscriber struct {
	js       jetstream.JetStream
	eng      *engine.Engine
	metrics  *observability.Metrics
	log      zerolog.Logger
	requests chan rawRequest
	consumer jetstream.ConsumeContext
}

// NewSubscriber builds a subscriber. metrics may be nil.
func NewSubscriber(js jetstream.JetStream, eng *engine.Engine, metrics *observability.Metrics) *Subscriber {
	return &Subscriber{
		js:       js,
		eng:      eng,
		metrics:  metrics,
		log:      observability.NewLogger("dispatch"),
		requests: make(chan rawRequest, 1024),
	}
}

// EnsureOpStream creates the request stream if it does not exist.
func EnsureOpStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      OpStreamName,
		Subjects:  []string{OpSubjectWildcard},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create op stream: %w", err)
	}
	return nil
}

// Subscribe creates the durable consumer and starts feeding the request
// channel. Call Run to drain it.
func (s *Subscriber) Subscribe(ctx context.Context) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, OpStreamName, jetstream.ConsumerConfig{
		Durable:       OpConsumerName,
		FilterSubject: OpSubjectWildcard,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", OpConsumerName, err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		raw := rawRequest{
			Op:   OpFromSubject(msg.Subject()),
			Data: msg.Data(),
			Ack:  func() { msg.Ack() },
			Nak:  func() { msg.Nak() },
		}
		select {
		case s.requests <- raw:
		case <-ctx.Done():
			msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", OpConsumerName, err)
	}
	s.consumer = consumeCtx
	s.log.Info().Str("subject", OpSubjectWildcard).Msg("subscribed to operation requests")
	return nil
}

// Run drains the request channel until ctx is cancelled. Rejected
// operations are acked: the rejection is a final answer, not a transient
// failure, so redelivery would only repeat it.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw := <-s.requests:
			if s.metrics != nil {
				s.metrics.OpsReceived.WithLabelValues(raw.Op).Inc()
			}
			if err := Apply(ctx, s.eng, raw.Op, raw.Data); err != nil {
				if errors.Is(err, ErrBadRequest) && s.metrics != nil {
					s.metrics.OpsParseError.Inc()
				}
				s.log.Warn().Err(err).Str("op", raw.Op).Msg("operation rejected")
			}
			raw.Ack()
		}
	}
}

// Stop halts message delivery.
func (s *Subscriber) Stop() {
	if s.consumer != nil {
		s.consumer.Stop()
	}
}
