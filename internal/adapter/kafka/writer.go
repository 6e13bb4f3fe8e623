package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/co2-zone-map/internal/config"
	"github.com/couchcryptid/co2-zone-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/couchcryptid/co2-zone-map/internal/adapter/kafka")

// Writer produces selection events to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured selection topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes selection events in a single
// WriteMessages call. Events are keyed by ID so replays land on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.SelectionEvent) error {
	if len(events) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "kafka.load_batch", trace.WithAttributes(
		attribute.String("messaging.destination.name", w.writer.Topic),
		attribute.Int("messaging.batch.message_count", len(events)),
	))
	defer span.End()

	propagator := otel.GetTextMapPropagator()
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "serialize")
			return err
		}
		propagator.Inject(ctx, (*headerCarrier)(&msg.Headers))
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write")
		return fmt.Errorf("write selection events: %w", err)
	}
	w.logger.Debug("selection events written", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SelectionEvent into a Kafka message.
func serializeToMessage(event domain.SelectionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize selection event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "zone", Value: []byte(event.Zone)},
			{Key: "selected_at", Value: []byte(event.SelectedAt.Format(time.RFC3339))},
		},
	}, nil
}
