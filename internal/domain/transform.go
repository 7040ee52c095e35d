package domain

import (
	"errors"
	"log/slog"
	"strings"
)

// ErrBlankTitle is the only reason a scraped record is dropped outright.
// A blank normalized title would collide every record into one content key.
var ErrBlankTitle = errors.New("blank event title")

// BuildEvent sanitizes and normalizes a scraped record into a candidate
// Event. Malformed coordinates and dates are coerced to safe defaults and
// logged as warnings; only a blank title is fatal for the record. The
// returned Event is ready for the deduplicator.
func BuildEvent(raw RawEvent, logger *slog.Logger) (Event, error) {
	if strings.TrimSpace(raw.Title) == "" {
		return Event{}, ErrBlankTitle
	}

	capturedAt := raw.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = clock.Now()
	}

	lat, err := ParseCoordinate(raw.Latitude, maxLatitude)
	if err != nil {
		logger.Warn("bad latitude, using sentinel", "event_id", raw.ID, "error", err)
	}
	lon, err := ParseCoordinate(raw.Longitude, maxLongitude)
	if err != nil {
		logger.Warn("bad longitude, using sentinel", "event_id", raw.ID, "error", err)
	}

	date, err := ParseEventDate(raw.DateUTC, capturedAt)
	if err != nil {
		logger.Warn("bad event date, using capture time", "event_id", raw.ID, "error", err)
	}

	source := raw.DataSource
	if source == "" {
		source = DataSourceFromID(raw.ID)
	}

	return Event{
		ID:         raw.ID,
		Title:      strings.TrimSpace(raw.Title),
		Category:   NormalizeCategory(raw.Category),
		Date:       date,
		Latitude:   lat,
		Longitude:  lon,
		Address:    strings.TrimSpace(raw.Address),
		SourceURL:  raw.SourceURL,
		DataSource: source,
		CrawledAt:  capturedAt.UTC(),
	}, nil
}
