package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// coordNoiseRe strips degree symbols and compass letters that feeds attach
// to coordinates, e.g. "12.3° N" -> "12.3".
var coordNoiseRe = regexp.MustCompile(`[°NSEW]`)

const (
	maxLatitude  = 90
	maxLongitude = 180
)

// ParseCoordinate coerces a raw coordinate string to a float64. Empty or
// absent input is not an error; it yields the 0 sentinel. Non-numeric or
// out-of-range input also yields 0, with an error the caller can log —
// the record itself is never dropped for a bad coordinate.
func ParseCoordinate(raw string, limit float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	cleaned := strings.TrimSpace(coordNoiseRe.ReplaceAllString(raw, ""))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse coordinate %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.Abs(v) > limit {
		return 0, fmt.Errorf("coordinate %q out of range ±%g", raw, limit)
	}
	return v, nil
}

// validCoords is true only when both values are non-zero finite numbers.
func validCoords(lat, lon float64) bool {
	if lat == 0 || lon == 0 {
		return false
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return true
}

// dateLayouts is the format ladder for feed timestamps, most common first.
// The feeds mix ISO 8601, space-separated variants, and bare dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseEventDate parses a feed date string, repairing the doubled-UTC
// suffix bug some feed pages exhibit ("2024-05-01 10:00 UTC UTC"). When no
// layout matches, the fallback (normally the capture time) is returned with
// an error for the caller to log; events are never dropped for a bad date.
func ParseEventDate(raw string, fallback time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return fallback, fmt.Errorf("empty date")
	}

	// Drop the redundant marker of a doubled timezone suffix before parsing.
	if strings.HasSuffix(s, "UTC UTC") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "UTC"))
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "UTC"))

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return fallback, fmt.Errorf("unparseable date %q", raw)
}

func toLowerTrimmed(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
