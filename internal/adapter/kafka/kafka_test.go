package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

func TestSerializeAlert(t *testing.T) {
	generatedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cluster := domain.RiskCluster{
		CentroidLat: 39.4702,
		CentroidLon: -0.3768,
		MemberCount: 31,
		RecentCount: 6,
		Categories:  []domain.Category{domain.CategoryFlood},
		Summary:     "31 events (6 in the last 7 days) near 39.4702, -0.3768: Flood",
	}

	msg, err := serializeAlert(cluster, "primary", generatedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("39.4702,-0.3768"), msg.Key)
	assert.Contains(t, string(msg.Value), `"member_count":31`)
	assert.Contains(t, string(msg.Value), `"recent_count":6`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "alert_rank", msg.Headers[0].Key)
	assert.Equal(t, []byte("primary"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2025-06-01T12:00:00Z"), msg.Headers[1].Value)

	// The value must deserialize back to the exact cluster.
	var roundtrip domain.RiskCluster
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))
	if diff := cmp.Diff(cluster, roundtrip); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}
