package domain

import (
	"strings"
	"time"
)

// RawEvent is a disaster record as scraped from a feed, before any
// sanitization. All value fields are strings because the feeds deliver
// free text; coordinates and dates frequently arrive malformed or empty.
type RawEvent struct {
	ID            string // source-assigned identifier
	Title         string
	Category      string // free text, e.g. "Fire - Outdoor fire"
	DateUTC       string // ISO-ish date string
	LastUpdateUTC string
	Latitude      string // may be empty, "12.3", "12.3° N", ...
	Longitude     string
	Address       string
	AreaRange     string
	SourceURL     string
	DataSource    string    // "rsoe", "reliefweb", "emsc"; derived from ID prefix if empty
	CapturedAt    time.Time // when the scraper saw the record
}

// Event is the durable, sanitized unit held in the store. Immutable after
// creation; the deduplicator replaces whole records rather than mutating.
// The JSON field names are the persisted store contract consumed by the
// display layer.
type Event struct {
	ID         string    `json:"event_id"`
	Title      string    `json:"event_title"`
	Category   Category  `json:"event_category"`
	Date       time.Time `json:"event_date_utc"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address,omitempty"`
	SourceURL  string    `json:"source_url,omitempty"`
	DataSource string    `json:"data_source"`
	CrawledAt  time.Time `json:"crawled_at"`
}

// HasValidCoords reports whether both coordinates parsed to usable values.
// The 0,0 pair is the "unknown position" sentinel, never a real location
// in this dataset.
func (e Event) HasValidCoords() bool {
	return validCoords(e.Latitude, e.Longitude)
}

// DataSourceFromID derives the data-source tag from the identifier prefix
// convention used by the feed clients: "RW_..." for ReliefWeb, "EMSC_..."
// for EMSC. Everything else came from the RSOE list.
func DataSourceFromID(id string) string {
	switch {
	case strings.HasPrefix(id, "RW_"):
		return "reliefweb"
	case strings.HasPrefix(id, "EMSC_"):
		return "emsc"
	default:
		return "rsoe"
	}
}
