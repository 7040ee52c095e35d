package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

const (
	// reliefwebAppName is the appname parameter the ReliefWeb API requires
	// for request attribution.
	reliefwebAppName = "disaster-event-etl"
	reliefwebLimit   = 100
	// reliefwebWindow filters to disasters created in the recent past; the
	// API otherwise returns its full historical archive.
	reliefwebWindow = 60 * 24 * time.Hour
)

// ReliefWebSource pulls recent disasters from the ReliefWeb v2 API.
type ReliefWebSource struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewReliefWebSource creates the ReliefWeb feed client.
func NewReliefWebSource(client *Client, baseURL string, logger *slog.Logger) *ReliefWebSource {
	return &ReliefWebSource{client: client, baseURL: baseURL, logger: logger}
}

// Name identifies the source in logs, metrics, and error reports.
func (s *ReliefWebSource) Name() string { return "reliefweb" }

// ReliefWeb v2 response types, limited to the fields requested.

type reliefwebResponse struct {
	Data []reliefwebDisaster `json:"data"`
}

type reliefwebDisaster struct {
	ID     json.Number     `json:"id"`
	Fields reliefwebFields `json:"fields"`
}

type reliefwebFields struct {
	Name    string             `json:"name"`
	Type    []reliefwebNamed   `json:"type"`
	Country []reliefwebNamed   `json:"country"`
	Date    reliefwebDateField `json:"date"`
	URL     string             `json:"url"`
	Glide   string             `json:"glide"`
}

type reliefwebNamed struct {
	Name string `json:"name"`
}

type reliefwebDateField struct {
	Event   string `json:"event"`
	Created string `json:"created"`
	Changed string `json:"changed"`
}

// Fetch queries the v2 disasters endpoint for disasters created within the
// recency window, newest first. Records with no name or no type are
// skipped: without a type there is nothing to categorize.
func (s *ReliefWebSource) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	capturedAt := s.client.Now().UTC()

	var resp reliefwebResponse
	if err := s.client.GetJSON(ctx, s.queryURL(capturedAt), &resp); err != nil {
		return nil, fmt.Errorf("reliefweb disasters: %w", err)
	}

	var raws []domain.RawEvent
	for _, d := range resp.Data {
		raw, ok := s.toRawEvent(d, capturedAt)
		if !ok {
			continue
		}
		raws = append(raws, raw)
	}
	s.logger.Debug("reliefweb disasters fetched", "total", len(resp.Data), "usable", len(raws))
	return raws, nil
}

func (s *ReliefWebSource) toRawEvent(d reliefwebDisaster, capturedAt time.Time) (domain.RawEvent, bool) {
	id := d.ID.String()
	name := d.Fields.Name
	if name == "" || len(d.Fields.Type) == 0 || d.Fields.Type[0].Name == "" {
		s.logger.Debug("skipping reliefweb disaster without name or type", "id", id)
		return domain.RawEvent{}, false
	}

	country := ""
	if len(d.Fields.Country) > 0 {
		country = d.Fields.Country[0].Name
	}

	title := name
	if country != "" {
		title = country + ": " + name
	}

	date := d.Fields.Date.Event
	if date == "" {
		date = d.Fields.Date.Created
	}

	sourceURL := d.Fields.URL
	if sourceURL == "" {
		sourceURL = "https://reliefweb.int/disaster/" + id
	}

	// ReliefWeb does not publish coordinates; the address carries the
	// country name so the geocoding pass can place the event.
	return domain.RawEvent{
		ID:            "RW_" + id,
		Title:         title,
		Category:      d.Fields.Type[0].Name,
		DateUTC:       date,
		LastUpdateUTC: d.Fields.Date.Changed,
		Address:       country,
		SourceURL:     sourceURL,
		DataSource:    "reliefweb",
		CapturedAt:    capturedAt,
	}, true
}

func (s *ReliefWebSource) queryURL(now time.Time) string {
	from := now.Add(-reliefwebWindow).Format("2006-01-02")
	params := url.Values{
		"appname":             {reliefwebAppName},
		"limit":               {fmt.Sprint(reliefwebLimit)},
		"sort[]":              {"date.created:desc"},
		"filter[field]":       {"date.created"},
		"filter[value][from]": {from + "T00:00:00+00:00"},
	}
	params.Add("fields[include][]", "name")
	params.Add("fields[include][]", "type")
	params.Add("fields[include][]", "date")
	params.Add("fields[include][]", "country")
	params.Add("fields[include][]", "glide")
	params.Add("fields[include][]", "url")
	return s.baseURL + "?" + params.Encode()
}
