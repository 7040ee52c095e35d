package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMSCSource_Fetch(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{
			"features": [
				{
					"properties": {"mag": 5.2, "time": "2025-05-30T14:22:10.0Z", "place": "CRETE, GREECE"},
					"geometry": {"coordinates": [25.14, 35.34, 10.0]}
				},
				{
					"properties": {"mag": 4.1, "time": "2025-05-29T02:00:00.0Z", "place": "OFF COAST OF CHILE"},
					"geometry": {"coordinates": []}
				}
			]
		}`)
	}))
	defer server.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := NewClient(5*time.Second, 1, 0, testLogger())
	client.SetClock(clockwork.NewFakeClockAt(now))

	source := NewEMSCSource(client, server.URL, testLogger())
	assert.Equal(t, "emsc", source.Name())

	raws, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1, "the feature without coordinates is skipped")

	quake := raws[0]
	assert.Equal(t, "EMSC_20250530_2514_3534_52", quake.ID)
	assert.Equal(t, "M5.2 earthquake - CRETE, GREECE", quake.Title)
	assert.Equal(t, "Earthquake", quake.Category)
	assert.Equal(t, "35.34", quake.Latitude)
	assert.Equal(t, "25.14", quake.Longitude)
	assert.Equal(t, "CRETE, GREECE", quake.Address)
	assert.Equal(t, "emsc", quake.DataSource)
	assert.Equal(t, now, quake.CapturedAt)

	// FDSN query window: the last 7 days relative to the clock.
	assert.Equal(t, "json", query.Get("format"))
	assert.Equal(t, "4.0", query.Get("minmagnitude"))
	assert.Equal(t, "100", query.Get("limit"))
	assert.Equal(t, "2025-05-25T12:00:00", query.Get("starttime"))
	assert.Equal(t, "2025-06-01T12:00:00", query.Get("endtime"))
}

func TestEarthquakeID_Deterministic(t *testing.T) {
	a := earthquakeID(35.34, 25.14, 5.2, "2025-05-30T14:22:10.0Z")
	b := earthquakeID(35.34, 25.14, 5.2, "2025-05-30T14:22:10.0Z")
	assert.Equal(t, a, b)
	assert.Equal(t, "20250530_3534_2514_52", a)

	// Sign and longer fractions fold into the same 6-digit form.
	assert.Equal(t, "20250530_355555_2514_52", earthquakeID(-35.55555, 25.14, 5.2, "2025-05-30T14:22:10.0Z"))
}
