//go:build nominatim

package nominatim

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the public Nominatim instance.
// Run with: go test -tags=nominatim ./internal/adapter/nominatim/ -v -count=1

func TestSmoke_Search(t *testing.T) {
	c := NewClient("https://nominatim.openstreetmap.org", "co2-zone-map-smoke/1.0", 10*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := c.Search(context.Background(), "Paris")
	require.NoError(t, err)
	require.NotEmpty(t, result)

	geo, err := domain.ParseCandidate(result[0])
	require.NoError(t, err)
	assert.InDelta(t, 48.85, geo.Lat, 0.2)
	assert.InDelta(t, 2.35, geo.Lon, 0.2)
}
