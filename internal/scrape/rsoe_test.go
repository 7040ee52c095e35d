package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSOESource_Fetch(t *testing.T) {
	t.Run("walks pages until has_more is false", func(t *testing.T) {
		var pagesServed []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := r.URL.Query().Get("page")
			pagesServed = append(pagesServed, page)
			switch page {
			case "1":
				fmt.Fprint(w, `{
					"events": [{
						"event_id": "348122",
						"event_title": "Flood in Valencia",
						"event_category": "Flood",
						"event_date_utc": "2025-05-19 22:00:00 UTC",
						"latitude": "39.47",
						"longitude": "-0.38",
						"address": "Valencia, Spain",
						"event_url": "https://rsoe-edis.org/eventList/details/348122"
					}],
					"has_more": true
				}`)
			case "2":
				fmt.Fprint(w, `{
					"events": [{
						"event_id": "348123",
						"event_title": "Wildfire near Athens",
						"event_category": "Fire - Outdoor fire",
						"event_date_utc": "2025-05-19 20:00:00 UTC",
						"latitude": "38.0° N",
						"longitude": "23.7° E",
						"address": "Athens, Greece"
					}],
					"has_more": false
				}`)
			default:
				t.Errorf("unexpected page %q", page)
			}
		}))
		defer server.Close()

		client := NewClient(5*time.Second, 1, 0, testLogger())
		source := NewRSOESource(client, server.URL, 3, testLogger())
		assert.Equal(t, "rsoe", source.Name())

		raws, err := source.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, raws, 2)
		assert.Equal(t, []string{"1", "2"}, pagesServed)

		assert.Equal(t, "348122", raws[0].ID)
		assert.Equal(t, "Flood in Valencia", raws[0].Title)
		assert.Equal(t, "rsoe", raws[0].DataSource)
		assert.Equal(t, "38.0° N", raws[1].Latitude, "coordinates pass through untouched")
		assert.False(t, raws[0].CapturedAt.IsZero())
	})

	t.Run("stops at the page cap", func(t *testing.T) {
		var pages int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			pages++
			fmt.Fprint(w, `{"events": [{"event_id": "1", "event_title": "x"}], "has_more": true}`)
		}))
		defer server.Close()

		client := NewClient(5*time.Second, 1, 0, testLogger())
		source := NewRSOESource(client, server.URL, 2, testLogger())

		raws, err := source.Fetch(context.Background())
		require.NoError(t, err)
		assert.Len(t, raws, 2)
		assert.Equal(t, 2, pages)
	})

	t.Run("keeps earlier pages when a later page fails", func(t *testing.T) {
		var pages int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			pages++
			if pages == 1 {
				fmt.Fprint(w, `{"events": [{"event_id": "1", "event_title": "x"}], "has_more": true}`)
				return
			}
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(5*time.Second, 1, 0, testLogger())
		source := NewRSOESource(client, server.URL, 3, testLogger())

		raws, err := source.Fetch(context.Background())
		require.NoError(t, err, "partial results beat no results")
		assert.Len(t, raws, 1)
	})

	t.Run("first page failure is fatal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(5*time.Second, 1, 0, testLogger())
		source := NewRSOESource(client, server.URL, 3, testLogger())

		_, err := source.Fetch(context.Background())
		assert.Error(t, err)
	})
}
