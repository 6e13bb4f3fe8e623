package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/co2-zone-map/internal/config"
	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSerializeToMessage(t *testing.T) {
	at := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	event := domain.SelectionEvent{
		ID:         "sel-1",
		Query:      "Paris",
		Name:       "Paris, France",
		Lat:        48.85,
		Lon:        2.35,
		PPM:        455,
		Zone:       domain.ZoneRed,
		SelectedAt: at,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("sel-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"zone":"Red"`)
	assert.Contains(t, string(msg.Value), `"ppm":455`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "zone", msg.Headers[0].Key)
	assert.Equal(t, []byte("Red"), msg.Headers[0].Value)
	assert.Equal(t, "selected_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(at.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestNewWriter_UsesConfig(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"b1:9092", "b2:9092"}, KafkaTopic: "selections"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	assert.Equal(t, "selections", w.writer.Topic)
}

func TestLoadBatch_Empty(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:1"}, KafkaTopic: "selections"}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}

func TestHeaderCarrier_InjectsTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg, err := serializeToMessage(domain.SelectionEvent{ID: "sel-1", Zone: domain.ZoneGreen})
	require.NoError(t, err)

	carrier := (*headerCarrier)(&msg.Headers)
	propagation.TraceContext{}.Inject(ctx, carrier)

	assert.Contains(t, carrier.Keys(), "traceparent")
	assert.Contains(t, carrier.Get("traceparent"), span.SpanContext().TraceID().String())
	assert.Equal(t, string(domain.ZoneGreen), carrier.Get("zone"), "existing headers are kept")

	carrier.Set("zone", "Red")
	assert.Equal(t, "Red", carrier.Get("zone"))
	assert.Len(t, msg.Headers, 3)
}
