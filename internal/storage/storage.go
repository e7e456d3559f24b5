package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ResponseStore provides a file-based storage for cached generator responses,
// one JSON file per key.
type ResponseStore struct {
	basePath string
}

// NewResponseStore creates a new ResponseStore and ensures the base directory exists.
func NewResponseStore(basePath string) (*ResponseStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &ResponseStore{basePath: basePath}, nil
}

func (s *ResponseStore) getPath(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.basePath, key+".json"), nil
}

// Save stores v under key, replacing any previous value.
func (s *ResponseStore) Save(key string, v any) error {
	filePath, err := s.getPath(key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	// Write then rename so concurrent readers never see half a file.
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Load decodes the value stored under key into v. A missing key wraps
// os.ErrNotExist.
func (s *ResponseStore) Load(key string, v any) error {
	filePath, err := s.getPath(key)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Exists checks if a value is stored under key.
func (s *ResponseStore) Exists(key string) bool {
	filePath, err := s.getPath(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(filePath)
	return !os.IsNotExist(err)
}

// RemoveOlderThan deletes entries last written before cutoff and returns
// how many were removed.
func (s *ResponseStore) RemoveOlderThan(cutoff time.Time) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to glob stale files: %w", err)
	}

	removed := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(match); err != nil {
			return removed, fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
		removed++
	}
	return removed, nil
}
