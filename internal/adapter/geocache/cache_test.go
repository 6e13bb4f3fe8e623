package geocache

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result []domain.Candidate
	err    error
}

func (m *countingGeocoder) Search(_ context.Context, _ string) ([]domain.Candidate, error) {
	m.calls++
	return m.result, m.err
}

func paris() []domain.Candidate {
	return []domain.Candidate{{DisplayName: "Paris, France", Lat: "48.85", Lon: "2.35"}}
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{result: paris()}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.Search(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris, France", r1[0].DisplayName)

	r2, err := cached.Search(context.Background(), "  paris ")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: paris()}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Search(context.Background(), "Paris")
	_, _ = cached.Search(context.Background(), "Lyon")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Search(context.Background(), "Atlantis")
	_, _ = cached.Search(context.Background(), "Atlantis")

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.cache.len())
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Search(context.Background(), "Paris")
	require.Error(t, err)

	inner.err = nil
	inner.result = paris()
	result, err := cached.Search(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func candidates(name string) []domain.Candidate {
	return []domain.Candidate{{DisplayName: name}}
}

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", candidates("A"))
	c.put("b", candidates("B"))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result[0].DisplayName)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", candidates("A"))
	c.put("b", candidates("B"))
	c.put("c", candidates("C")) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", result[0].DisplayName)

	result, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result[0].DisplayName)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", candidates("A"))
	c.put("b", candidates("B"))

	c.get("a")

	// "b" is now least recently used.
	c.put("c", candidates("C"))

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", candidates("A1"))
	c.put("a", candidates("A2"))

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result[0].DisplayName)
	assert.Equal(t, 1, c.len())
}
