package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := New(t.TempDir(), testLogger())
	require.NoError(t, err)
	return s
}

func sampleEvent(id string, date time.Time) domain.Event {
	return domain.Event{
		ID:         id,
		Title:      "Flood in Valencia",
		Category:   domain.CategoryFlood,
		Date:       date,
		Latitude:   39.47,
		Longitude:  -0.38,
		DataSource: "rsoe",
		CrawledAt:  date,
	}
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	s := testStore(t)
	date := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

	current := []domain.Event{sampleEvent("a", date)}
	past := []domain.Event{sampleEvent("b", date.AddDate(0, -2, 0))}
	require.NoError(t, s.Save(current, past))

	gotCurrent, gotPast, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, current, gotCurrent)
	assert.Equal(t, past, gotPast)
}

func TestFileStore_LoadMissingFilesIsEmpty(t *testing.T) {
	s := testStore(t)

	current, past, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, current)
	assert.Empty(t, past)
}

func TestFileStore_LoadCorruptFileFails(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "events.json"), []byte("{not json"), 0o644))

	_, _, err := s.Load()
	assert.Error(t, err)
}

func TestFileStore_EmptySegmentsPersistAsArrays(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save(nil, nil))

	data, err := os.ReadFile(filepath.Join(s.Dir(), "events.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)), "consumers parse an array, never null")
}

func TestFileStore_NoPartialFilesLeftBehind(t *testing.T) {
	s := testStore(t)
	date := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save([]domain.Event{sampleEvent("a", date)}, nil))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temp files must be renamed away")
	}
}

func TestFileStore_WriteLastUpdated(t *testing.T) {
	s := testStore(t)
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, s.WriteLastUpdated(ts))

	data, err := os.ReadFile(filepath.Join(s.Dir(), "last_updated.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Last updated: 2025-06-01T12:30:00Z\n", string(data))
}

func TestFileStore_SaveStats(t *testing.T) {
	s := testStore(t)
	stats := domain.Stats{
		GeneratedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		CurrentEvents: 3,
		PastEvents:    10,
		AffectedAreas: 2,
		CategoryCounts: map[domain.Category]int{
			domain.CategoryFlood: 3,
		},
	}
	require.NoError(t, s.SaveStats(stats))

	data, err := os.ReadFile(filepath.Join(s.Dir(), "stats.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"affected_areas": 2`)
	assert.Contains(t, string(data), `"Flood": 3`)
}

func TestFileStore_Backup(t *testing.T) {
	s := testStore(t)
	date := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

	t.Run("first run has nothing to snapshot", func(t *testing.T) {
		require.NoError(t, s.Backup(date, 5))
		entries, err := os.ReadDir(filepath.Join(s.Dir(), "backups"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("snapshots both segments", func(t *testing.T) {
		require.NoError(t, s.Save([]domain.Event{sampleEvent("a", date)}, []domain.Event{sampleEvent("b", date)}))
		require.NoError(t, s.Backup(date, 5))

		entries, err := os.ReadDir(filepath.Join(s.Dir(), "backups"))
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "events_20250520T080000.json", entries[0].Name())
		assert.Equal(t, "past_events_20250520T080000.json", entries[1].Name())
	})

	t.Run("prunes beyond the retention count", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			require.NoError(t, s.Backup(date.Add(time.Duration(i)*time.Hour), 3))
		}

		entries, err := os.ReadDir(filepath.Join(s.Dir(), "backups"))
		require.NoError(t, err)

		var current, past []string
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "past_events_") {
				past = append(past, e.Name())
			} else {
				current = append(current, e.Name())
			}
		}
		assert.Len(t, current, 3)
		assert.Len(t, past, 3)
		assert.NotContains(t, current, "events_20250520T080000.json", "oldest snapshot pruned first")
	})
}
