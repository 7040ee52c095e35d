package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

const (
	// emscMinMagnitude filters out the constant stream of small quakes;
	// only significant events belong on the map.
	emscMinMagnitude = 4.0
	emscLimit        = 100
	// emscWindow bounds the query to the last week of seismic activity.
	emscWindow = 7 * 24 * time.Hour
)

// EMSCSource pulls recent significant earthquakes from the EMSC FDSN
// event service.
type EMSCSource struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewEMSCSource creates the EMSC feed client.
func NewEMSCSource(client *Client, baseURL string, logger *slog.Logger) *EMSCSource {
	return &EMSCSource{client: client, baseURL: baseURL, logger: logger}
}

// Name identifies the source in logs, metrics, and error reports.
func (s *EMSCSource) Name() string { return "emsc" }

// FDSN GeoJSON response types.

type emscResponse struct {
	Features []emscFeature `json:"features"`
}

type emscFeature struct {
	Properties emscProperties `json:"properties"`
	Geometry   emscGeometry   `json:"geometry"`
}

type emscProperties struct {
	Mag   float64 `json:"mag"`
	Time  string  `json:"time"`
	Place string  `json:"place"`
}

type emscGeometry struct {
	// [lon, lat, depth]
	Coordinates []float64 `json:"coordinates"`
}

// Fetch queries the FDSN endpoint for the last week's quakes at or above
// the magnitude floor. Features without a full coordinate triple are
// skipped.
func (s *EMSCSource) Fetch(ctx context.Context) ([]domain.RawEvent, error) {
	capturedAt := s.client.Now().UTC()

	var resp emscResponse
	if err := s.client.GetJSON(ctx, s.queryURL(capturedAt), &resp); err != nil {
		return nil, fmt.Errorf("emsc events: %w", err)
	}

	var raws []domain.RawEvent
	for _, f := range resp.Features {
		if len(f.Geometry.Coordinates) < 2 {
			s.logger.Debug("skipping emsc feature without coordinates", "place", f.Properties.Place)
			continue
		}
		lon := f.Geometry.Coordinates[0]
		lat := f.Geometry.Coordinates[1]

		eventTime := f.Properties.Time
		if eventTime == "" {
			eventTime = capturedAt.Format(time.RFC3339)
		}

		raws = append(raws, domain.RawEvent{
			ID:            "EMSC_" + earthquakeID(lat, lon, f.Properties.Mag, eventTime),
			Title:         fmt.Sprintf("M%.1f earthquake - %s", f.Properties.Mag, f.Properties.Place),
			Category:      "Earthquake",
			DateUTC:       eventTime,
			LastUpdateUTC: eventTime,
			Latitude:      strconv.FormatFloat(lat, 'f', -1, 64),
			Longitude:     strconv.FormatFloat(lon, 'f', -1, 64),
			Address:       f.Properties.Place,
			SourceURL:     "https://www.emsc-csem.org/",
			DataSource:    "emsc",
			CapturedAt:    capturedAt,
		})
	}
	s.logger.Debug("emsc events fetched", "count", len(raws))
	return raws, nil
}

// earthquakeID builds a deterministic identifier from the quake's position,
// magnitude, and date. The FDSN feed has no stable public identifier of its
// own, and a deterministic key means re-crawling the same quake yields the
// same record for the deduplicator.
func earthquakeID(lat, lon, mag float64, eventTime string) string {
	datePart := eventTime
	if len(datePart) >= 10 {
		datePart = datePart[:10]
	}
	datePart = strings.ReplaceAll(datePart, "-", "")

	coordPart := func(v float64) string {
		s := strconv.FormatFloat(absFloat(v), 'f', -1, 64)
		s = strings.ReplaceAll(s, ".", "")
		if len(s) > 6 {
			s = s[:6]
		}
		return s
	}

	magPart := strings.ReplaceAll(strconv.FormatFloat(mag, 'f', -1, 64), ".", "")
	return fmt.Sprintf("%s_%s_%s_%s", datePart, coordPart(lat), coordPart(lon), magPart)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (s *EMSCSource) queryURL(now time.Time) string {
	const layout = "2006-01-02T15:04:05"
	params := url.Values{
		"format":       {"json"},
		"starttime":    {now.Add(-emscWindow).Format(layout)},
		"endtime":      {now.Format(layout)},
		"minmagnitude": {strconv.FormatFloat(emscMinMagnitude, 'f', 1, 64)},
		"limit":        {fmt.Sprint(emscLimit)},
	}
	return s.baseURL + "?" + params.Encode()
}
