package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterByRadius(t *testing.T) {
	date := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)

	t.Run("nearby events share a cluster", func(t *testing.T) {
		events := []Event{
			makeEvent("a", "Flood A", CategoryFlood, date, 10.0, 20.0, date),
			makeEvent("b", "Flood B", CategoryFlood, date, 10.3, 20.2, date),
			makeEvent("c", "Quake C", CategoryEarthquake, date, 50.0, 60.0, date),
		}

		clusters := ClusterByRadius(events, 1.0)
		require.Len(t, clusters, 2)
		assert.Len(t, clusters[0].Events, 2)
		assert.Len(t, clusters[1].Events, 1)
	})

	t.Run("excludes events without valid coordinates", func(t *testing.T) {
		events := []Event{
			makeEvent("a", "Placed", CategoryFlood, date, 10.0, 20.0, date),
			makeEvent("b", "No position", CategoryFlood, date, 0, 0, date),
			makeEvent("c", "Half position", CategoryFlood, date, 0, 20.0, date),
		}

		clusters := ClusterByRadius(events, 1.0)
		require.Len(t, clusters, 1)
		assert.Len(t, clusters[0].Events, 1)
	})

	t.Run("first matching cluster wins", func(t *testing.T) {
		// The third event is within radius of both singletons; greedy scan
		// order assigns it to the earlier one.
		events := []Event{
			makeEvent("a", "A", CategoryFlood, date, 10.0, 20.0, date),
			makeEvent("b", "B", CategoryFlood, date, 11.4, 20.0, date),
			makeEvent("c", "C", CategoryFlood, date, 10.7, 20.0, date),
		}

		clusters := ClusterByRadius(events, 0.8)
		require.Len(t, clusters, 2)
		assert.Len(t, clusters[0].Events, 2)
		assert.Equal(t, "c", clusters[0].Events[1].ID)
	})

	t.Run("distance measured to the recomputed centroid", func(t *testing.T) {
		// After b joins, the centroid moves to 10.5; c at 11.2 is within 0.8
		// of the centroid even though it is 1.2 from the seed.
		events := []Event{
			makeEvent("a", "A", CategoryFlood, date, 10.0, 20.0, date),
			makeEvent("b", "B", CategoryFlood, date, 10.99, 20.0, date),
			makeEvent("c", "C", CategoryFlood, date, 11.2, 20.0, date),
		}

		clusters := ClusterByRadius(events, 1.0)
		require.Len(t, clusters, 1)
		assert.Len(t, clusters[0].Events, 3)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ClusterByRadius(nil, 1.0))
	})
}

func TestClusterByRadius_RadiusMonotonicity(t *testing.T) {
	date := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	events := []Event{
		makeEvent("a", "A", CategoryFlood, date, 10.0, 20.0, date),
		makeEvent("b", "B", CategoryFlood, date, 10.4, 20.1, date),
		makeEvent("c", "C", CategoryFlood, date, 11.0, 20.5, date),
		makeEvent("d", "D", CategoryFlood, date, 13.0, 22.0, date),
		makeEvent("e", "E", CategoryFlood, date, -5.0, 100.0, date),
	}

	small := ClusterByRadius(events, 0.5)
	large := ClusterByRadius(events, 1.5)
	assert.GreaterOrEqual(t, len(small), len(large),
		"a smaller radius never yields fewer clusters on the same input")
}

func TestClusterCentroid(t *testing.T) {
	date := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)

	c := Cluster{Events: []Event{
		makeEvent("a", "A", CategoryFlood, date, 10.0, 20.0, date),
		makeEvent("b", "B", CategoryFlood, date, 12.0, 24.0, date),
	}}
	lat, lon := c.Centroid()
	assert.InDelta(t, 11.0, lat, 1e-9)
	assert.InDelta(t, 22.0, lon, 1e-9)

	empty := Cluster{}
	lat, lon = empty.Centroid()
	assert.Zero(t, lat)
	assert.Zero(t, lon)
}
