// Package store persists the event dataset as flat JSON files in a data
// directory: events.json for the current window, past_events.json for the
// archive, stats.json for the precomputed display statistics, and a
// last-updated marker. Writes go through a temp file and rename so a
// crashed run never leaves a half-written dataset behind.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

const (
	currentFile     = "events.json"
	pastFile        = "past_events.json"
	statsFile       = "stats.json"
	lastUpdatedFile = "last_updated.txt"
	backupDir       = "backups"

	fileMode = 0o644
	dirMode  = 0o755
)

// FileStore reads and writes the dataset under a single data directory.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// New creates the data directory if needed and returns a store rooted there.
func New(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir returns the data directory the store is rooted at.
func (s *FileStore) Dir() string { return s.dir }

// Load reads both event segments. Missing files mean an empty segment, not
// an error: the first run starts from nothing.
func (s *FileStore) Load() (current, past []domain.Event, err error) {
	current, err = s.loadEvents(currentFile)
	if err != nil {
		return nil, nil, err
	}
	past, err = s.loadEvents(pastFile)
	if err != nil {
		return nil, nil, err
	}
	return current, past, nil
}

func (s *FileStore) loadEvents(name string) ([]domain.Event, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return events, nil
}

// Save writes both event segments atomically. The two renames are not a
// transaction; a crash between them leaves one segment a run ahead, which
// the next merge reconciles.
func (s *FileStore) Save(current, past []domain.Event) error {
	if err := s.writeJSON(currentFile, emptyAsList(current)); err != nil {
		return err
	}
	return s.writeJSON(pastFile, emptyAsList(past))
}

// SaveStats writes the statistics artifact.
func (s *FileStore) SaveStats(stats domain.Stats) error {
	return s.writeJSON(statsFile, stats)
}

// WriteLastUpdated stamps the marker file consumers poll to see dataset
// freshness.
func (s *FileStore) WriteLastUpdated(t time.Time) error {
	content := fmt.Sprintf("Last updated: %s\n", t.UTC().Format(time.RFC3339))
	return s.writeAtomic(lastUpdatedFile, []byte(content))
}

func (s *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.writeAtomic(name, append(data, '\n'))
}

// writeAtomic writes to a temp file in the same directory and renames it
// into place. Same-directory keeps the rename on one filesystem.
func (s *FileStore) writeAtomic(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// emptyAsList keeps the persisted form a JSON array even when a segment is
// empty. Consumers parse `[]`, not `null`.
func emptyAsList(events []domain.Event) []domain.Event {
	if events == nil {
		return []domain.Event{}
	}
	return events
}
