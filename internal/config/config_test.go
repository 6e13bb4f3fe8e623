package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ProviderNominatim, cfg.GeocoderProvider)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimURL)
	assert.Equal(t, "co2-zone-map/1.0", cfg.NominatimUserAgent)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, 1000, cfg.GeocoderCacheSize)
	assert.Equal(t, time.Local, cfg.DisplayLocation)
	assert.Equal(t, uint64(0), cfg.RandomSeed)
	assert.Equal(t, "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", cfg.TileURL)
	assert.Empty(t, cfg.CitiesCSV)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "co2-place-selections", cfg.KafkaTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("GEOCODER_PROVIDER", "Mapbox")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("GEOCODER_TIMEOUT", "10s")
	t.Setenv("GEOCODER_CACHE_SIZE", "500")
	t.Setenv("DISPLAY_TIMEZONE", "Asia/Kolkata")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("TILE_URL", "https://tiles.example.com/{z}/{x}/{y}.png")
	t.Setenv("CITIES_CSV", "data/cities.csv")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ProviderMapbox, cfg.GeocoderProvider)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, 500, cfg.GeocoderCacheSize)
	assert.Equal(t, "Asia/Kolkata", cfg.DisplayLocation.String())
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.Equal(t, "https://tiles.example.com/{z}/{x}/{y}.png", cfg.TileURL)
	assert.Equal(t, "data/cities.csv", cfg.CitiesCSV)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
}

func TestLoad_TrimsNominatimURL(t *testing.T) {
	t.Setenv("NOMINATIM_URL", "http://localhost:8088/")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8088", cfg.NominatimURL)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidGeocoderTimeout(t *testing.T) {
	t.Setenv("GEOCODER_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_TIMEOUT")
}

func TestLoad_NegativeGeocoderTimeout(t *testing.T) {
	t.Setenv("GEOCODER_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPLAY_TIMEZONE")
}

func TestLoad_InvalidRandomSeed(t *testing.T) {
	t.Setenv("RANDOM_SEED", "-3")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RANDOM_SEED")
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("GEOCODER_PROVIDER", "google")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_PROVIDER")
}

func TestLoad_MapboxWithoutToken(t *testing.T) {
	t.Setenv("GEOCODER_PROVIDER", "mapbox")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("GEOCODER_CACHE_SIZE", "-5")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.GeocoderCacheSize)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_Tracing(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "TRUE")
	t.Setenv("TRACING_EXPORTER", "OTLP")
	t.Setenv("OTLP_ENDPOINT", "collector:4317")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, ExporterOTLP, cfg.TracingExporter)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.InDelta(t, 0.25, cfg.TracingSampleRatio, 1e-9)
}

func TestLoad_TracingDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, ExporterStdout, cfg.TracingExporter)
	assert.InDelta(t, 1.0, cfg.TracingSampleRatio, 1e-9)
}

func TestLoad_InvalidSampleRatio(t *testing.T) {
	t.Setenv("TRACING_SAMPLE_RATIO", "1.5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACING_SAMPLE_RATIO")
}

func TestLoad_UnknownExporter(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_EXPORTER", "zipkin")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACING_EXPORTER")
}
