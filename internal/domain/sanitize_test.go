package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		limit    float64
		expected float64
		wantErr  bool
	}{
		{"plain decimal", "12.3", maxLatitude, 12.3, false},
		{"negative", "-98.44", maxLongitude, -98.44, false},
		{"degree and compass noise", "12.3° N", maxLatitude, 12.3, false},
		{"compass only", "45.5 S", maxLatitude, 45.5, false},
		{"empty is sentinel not error", "", maxLatitude, 0, false},
		{"whitespace only", "   ", maxLatitude, 0, false},
		{"non-numeric", "abc", maxLatitude, 0, true},
		{"latitude out of range", "95.0", maxLatitude, 0, true},
		{"longitude out of range", "181.0", maxLongitude, 0, true},
		{"longitude near limit", "179.9", maxLongitude, 179.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseCoordinate(tt.raw, tt.limit)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestValidCoords(t *testing.T) {
	assert.True(t, validCoords(31.02, -98.44))
	assert.False(t, validCoords(0, -98.44), "zero latitude is the sentinel")
	assert.False(t, validCoords(31.02, 0), "zero longitude is the sentinel")
	assert.False(t, validCoords(0, 0))
}

func TestParseEventDate(t *testing.T) {
	fallback := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		raw      string
		expected time.Time
		wantErr  bool
	}{
		{"RFC3339", "2025-05-20T08:30:00Z", time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC), false},
		{"space separated", "2025-05-20 08:30:00", time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC), false},
		{"minute precision", "2025-05-20 08:30", time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC), false},
		{"bare date", "2025-05-20", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), false},
		{"single UTC suffix", "2025-05-20 08:30:00 UTC", time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC), false},
		{"doubled UTC suffix repaired", "2025-05-20 08:30:00 UTC UTC", time.Date(2025, 5, 20, 8, 30, 0, 0, time.UTC), false},
		{"garbage falls back", "soonish", fallback, true},
		{"empty falls back", "", fallback, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventDate(tt.raw, fallback)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}
