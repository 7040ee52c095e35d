package nominatim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
	"github.com/couchcryptid/disaster-event-etl/internal/observability"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
}

func (m *countingGeocoder) Geocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, nil
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 39.47, Lon: -0.38, DisplayName: "València, Spain"},
	}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	r1, err := cached.Geocode(context.Background(), "Valencia, Spain")
	require.NoError(t, err)
	assert.Equal(t, "València, Spain", r1.DisplayName)

	r2, err := cached.Geocode(context.Background(), "Valencia, Spain")
	require.NoError(t, err)
	assert.Equal(t, "València, Spain", r2.DisplayName)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedGeocoder_KeysAreCaseFolded(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 1, Lon: 2, DisplayName: "Place"},
	}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Geocode(context.Background(), "Paris, France")
	_, _ = cached.Geocode(context.Background(), "  paris, FRANCE ")

	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_DifferentAddressesMiss(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 1, Lon: 2, DisplayName: "Place"},
	}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Geocode(context.Background(), "Paris, France")
	_, _ = cached.Geocode(context.Background(), "Lyon, France")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultsNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Geocode(context.Background(), "Nowhere")
	_, _ = cached.Geocode(context.Background(), "Nowhere")

	assert.Equal(t, 2, inner.calls, "not-found responses are retried")
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.GeocodingResult{DisplayName: "A"})
	c.put("b", domain.GeocodingResult{DisplayName: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.DisplayName)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{DisplayName: "A"})
	c.put("b", domain.GeocodingResult{DisplayName: "B"})
	c.put("c", domain.GeocodingResult{DisplayName: "C"}) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	result, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", result.DisplayName)

	result, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result.DisplayName)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{DisplayName: "A"})
	c.put("b", domain.GeocodingResult{DisplayName: "B"})

	c.get("a")

	c.put("c", domain.GeocodingResult{DisplayName: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.GeocodingResult{DisplayName: "A1"})
	c.put("a", domain.GeocodingResult{DisplayName: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.DisplayName)
}
