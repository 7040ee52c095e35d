package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeocodingResult, error)
}

// EnrichWithGeocoding fills in coordinates for an event that lacks them,
// using its address. If geocoder is nil, the event already has valid
// coordinates, there is no usable address, or the lookup fails, the event
// is returned unchanged (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, event Event, geocoder Geocoder, logger *slog.Logger) Event {
	if geocoder == nil || event.HasValidCoords() {
		return event
	}
	if event.Address == "" || event.Address == "-" {
		return event
	}

	result, err := geocoder.Geocode(ctx, event.Address)
	if err != nil {
		logger.Warn("geocoding failed",
			"event_id", event.ID,
			"address", event.Address,
			"error", err,
		)
		return event
	}
	if !validCoords(result.Lat, result.Lon) {
		return event
	}

	event.Latitude = result.Lat
	event.Longitude = result.Lon
	return event
}
