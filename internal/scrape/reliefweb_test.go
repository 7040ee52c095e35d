package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReliefWebSource_Fetch(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		fmt.Fprint(w, `{
			"data": [
				{
					"id": 52001,
					"fields": {
						"name": "Flood - May 2025",
						"type": [{"name": "Flash Flood"}],
						"country": [{"name": "Spain"}],
						"date": {"event": "2025-05-19T00:00:00+00:00", "created": "2025-05-20T08:00:00+00:00"},
						"url": "https://reliefweb.int/disaster/fl-2025-000123-esp",
						"glide": "FL-2025-000123-ESP"
					}
				},
				{
					"id": 52002,
					"fields": {
						"name": "Drought - 2025",
						"type": [{"name": "Drought"}],
						"country": [{"name": "Kenya"}],
						"date": {"created": "2025-05-18T00:00:00+00:00"}
					}
				},
				{
					"id": 52003,
					"fields": {
						"name": "",
						"type": [{"name": "Flood"}]
					}
				}
			]
		}`)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, 1, 0, testLogger())
	source := NewReliefWebSource(client, server.URL, testLogger())
	assert.Equal(t, "reliefweb", source.Name())

	raws, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2, "the unnamed disaster is skipped")

	first := raws[0]
	assert.Equal(t, "RW_52001", first.ID)
	assert.Equal(t, "Spain: Flood - May 2025", first.Title)
	assert.Equal(t, "Flash Flood", first.Category)
	assert.Equal(t, "2025-05-19T00:00:00+00:00", first.DateUTC, "event date preferred over created")
	assert.Equal(t, "Spain", first.Address)
	assert.Equal(t, "https://reliefweb.int/disaster/fl-2025-000123-esp", first.SourceURL)
	assert.Equal(t, "reliefweb", first.DataSource)
	assert.Empty(t, first.Latitude, "the feed has no coordinates; geocoding fills them later")

	second := raws[1]
	assert.Equal(t, "RW_52002", second.ID)
	assert.Equal(t, "2025-05-18T00:00:00+00:00", second.DateUTC, "created date is the fallback")
	assert.Equal(t, "https://reliefweb.int/disaster/52002", second.SourceURL)

	// Query shape the v2 API expects.
	assert.Equal(t, reliefwebAppName, query.Get("appname"))
	assert.Equal(t, "100", query.Get("limit"))
	assert.Equal(t, "date.created:desc", query.Get("sort[]"))
	assert.Equal(t, "date.created", query.Get("filter[field]"))
	assert.NotEmpty(t, query.Get("filter[value][from]"))
	assert.Contains(t, query["fields[include][]"], "type")
}
