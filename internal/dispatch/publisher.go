package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"swapvenue/internal/observability"
)

// EventStreamName holds the outbound venue events.
const EventStreamName = "VENUE_EVENTS"

// Envelope wraps every outbound event.
type Envelope struct {
	Op        string    `json:"op"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits one event per applied operation to
// venue.events.{op}. Publishing is fire-and-forget: a failure is counted
// and logged, never surfaced to the operation that produced the event.
type Publisher struct {
	js      jetstream.JetStream
	metrics *observability.Metrics
	log     zerolog.Logger
}

// NewPublisher builds a publisher. metrics may be nil.
func NewPublisher(js jetstream.JetStream, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		js:      js,
		metrics: metrics,
		log:     observability.NewLogger("publisher"),
	}
}

// EnsureEventStream creates the outbound stream if it does not exist.
func EnsureEventStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      EventStreamName,
		Subjects:  []string{EventSubjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create event stream: %w", err)
	}
	return nil
}

// Emit implements engine.EventSink.
func (p *Publisher) Emit(op string, payload any) {
	data, err := json.Marshal(Envelope{Op: op, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		p.drop(op, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := p.js.Publish(ctx, EventSubjectPrefix+op, data); err != nil {
		p.drop(op, err)
		return
	}
	if p.metrics != nil {
		p.metrics.EventsEmitted.WithLabelValues(op).Inc()
	}
}

func (p *Publisher) drop(op string, err error) {
	if p.metrics != nil {
		p.metrics.EmitDrops.Inc()
	}
	p.log.Warn().Err(err).Str("op", op).Msg("event publish failed")
}
