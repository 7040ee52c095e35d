package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// backupStamp orders backup files lexically and chronologically at once.
const backupStamp = "20060102T150405"

// Backup snapshots the current event segments into the backups
// subdirectory before a run overwrites them, then prunes old snapshots
// down to keep per segment. A segment file that does not exist yet (first
// run) is silently skipped.
func (s *FileStore) Backup(now time.Time, keep int) error {
	dir := filepath.Join(s.dir, backupDir)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	stamp := now.UTC().Format(backupStamp)
	for _, name := range []string{currentFile, pastFile} {
		if err := s.backupFile(dir, name, stamp); err != nil {
			return err
		}
	}

	if keep > 0 {
		for _, name := range []string{currentFile, pastFile} {
			if err := pruneBackups(dir, name, keep); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *FileStore) backupFile(dir, name, stamp string) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s for backup: %w", name, err)
	}

	target := filepath.Join(dir, backupName(name, stamp))
	if err := os.WriteFile(target, data, fileMode); err != nil {
		return fmt.Errorf("write backup %s: %w", target, err)
	}
	s.logger.Debug("backup written", "file", target, "bytes", len(data))
	return nil
}

// backupName turns "events.json" + stamp into "events_20250601T120000.json".
func backupName(name, stamp string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base + "_" + stamp + filepath.Ext(name)
}

// pruneBackups removes the oldest snapshots of one segment beyond keep.
// The timestamp in the name sorts chronologically, so lexical order is
// enough.
func pruneBackups(dir, name string, keep int) error {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), base+"_") && strings.HasSuffix(e.Name(), filepath.Ext(name)) {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) <= keep {
		return nil
	}

	sort.Strings(matches)
	for _, stale := range matches[:len(matches)-keep] {
		if err := os.Remove(filepath.Join(dir, stale)); err != nil {
			return fmt.Errorf("prune backup %s: %w", stale, err)
		}
	}
	return nil
}
