package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	timestampLayout = "20060102_150405"
	snapshotDir     = "_snapshot"
)

// Store writes snapshot files under a root directory
type Store struct {
	Root string
	now  func() time.Time
}

// New creates a store rooted at dir
func New(dir string) *Store {
	return &Store{Root: dir, now: time.Now}
}

// OutputPath builds {root}/{exchange}/{SYMBOL}/{interval}/{timestamp}_{count}.json
func (s *Store) OutputPath(exchange, symbol, interval string, count int) string {
	folder := filepath.Join(s.Root, strings.ToLower(exchange), strings.ToUpper(symbol),
		strings.ReplaceAll(interval, "/", "-"))
	return filepath.Join(folder, fmt.Sprintf("%s_%d.json", s.now().Format(timestampLayout), count))
}

// SnapshotPath builds {root}/{exchange}/_snapshot/{timestamp}_snapshot.json
func (s *Store) SnapshotPath(exchange string) string {
	folder := filepath.Join(s.Root, strings.ToLower(exchange), snapshotDir)
	return filepath.Join(folder, s.now().Format(timestampLayout)+"_snapshot.json")
}

// Save writes v as indented JSON and removes every other JSON file in the same directory
func (s *Store) Save(path string, v any) error {
	if err := writeJSON(path, v); err != nil {
		return err
	}
	cleanupExcept(path)
	return nil
}

// SaveSnapshot writes v and keeps only the newest keep snapshot files
func (s *Store) SaveSnapshot(path string, v any, keep int) error {
	if err := writeJSON(path, v); err != nil {
		return err
	}
	return cleanupKeepNewest(filepath.Dir(path), keep)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// cleanupExcept is best effort, failures are only logged
func cleanupExcept(keep string) {
	files, err := filepath.Glob(filepath.Join(filepath.Dir(keep), "*.json"))
	if err != nil || len(files) <= 1 {
		return
	}
	for _, f := range files {
		if f == keep {
			continue
		}
		if err := os.Remove(f); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("Failed to remove old file")
		}
	}
}

// cleanupKeepNewest relies on the timestamp prefix sorting lexicographically
func cleanupKeepNewest(dir string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(files) <= keep {
		return nil
	}
	sort.Strings(files)
	for _, f := range files[:len(files)-keep] {
		if err := os.Remove(f); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("Failed to remove old snapshot")
		}
	}
	return nil
}
