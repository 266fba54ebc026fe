package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"wavewall-mockups/utils"
)

// MockupCache is a content-addressed cache of rendered composites backed by
// a flat directory of <key>.png files. It is a pure memoization layer:
// a given key always maps to bytes produced by the same (template, design,
// config) triple, so concurrent writers racing on one key are harmless
// (last writer wins with identical content).
type MockupCache struct {
	dir    string
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats summarizes the cache directory and hit accounting.
type CacheStats struct {
	Entries    int       `json:"entries"`
	TotalBytes int64     `json:"totalBytes"`
	Oldest     time.Time `json:"oldest,omitempty"`
	Newest     time.Time `json:"newest,omitempty"`
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
}

// NewMockupCache creates a cache rooted at dir, creating it if needed.
func NewMockupCache(dir string) (*MockupCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &MockupCache{dir: dir}, nil
}

// GenerateKey composes template id, design hash, and optional config hash
// into one opaque, deterministic key. The same triple always yields the
// same key; changing any component changes it.
func (c *MockupCache) GenerateKey(templateID, designHash, configHash string) string {
	parts := []string{templateID, designHash}
	if configHash != "" {
		parts = append(parts, configHash)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// HashBuffer hashes raw design bytes for key building.
func (c *MockupCache) HashBuffer(b []byte) string {
	return utils.HashBuffer(b)
}

// HashObject hashes a config bag with canonical key ordering.
func (c *MockupCache) HashObject(v any) (string, error) {
	return utils.HashObject(v)
}

// Get returns the cached bytes for a key, or nil on a miss. A miss is
// never an error.
func (c *MockupCache) Get(key string) []byte {
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		c.misses.Add(1)
		return nil
	}
	c.hits.Add(1)
	return data
}

// Set persists bytes under a key, best-effort: failures are logged and
// never propagated, since a cache write must not fail a generation that
// already succeeded.
func (c *MockupCache) Set(key string, data []byte) {
	if err := os.WriteFile(c.entryPath(key), data, 0644); err != nil {
		logrus.WithError(err).WithField("cache_key", key).Warn("Failed to write cache entry")
	}
}

// Has reports whether an entry exists without counting a hit or miss.
func (c *MockupCache) Has(key string) bool {
	_, err := os.Stat(c.entryPath(key))
	return err == nil
}

// Delete removes one entry, reporting whether anything was removed.
func (c *MockupCache) Delete(key string) bool {
	return os.Remove(c.entryPath(key)) == nil
}

// Clear removes every entry in the cache directory.
func (c *MockupCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			logrus.WithError(err).WithField("entry", e.Name()).Warn("Failed to remove cache entry")
		}
	}
	return nil
}

// GetStats walks the cache directory and returns aggregate numbers.
func (c *MockupCache) GetStats() (CacheStats, error) {
	stats := CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return stats, fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
		mod := info.ModTime()
		if stats.Oldest.IsZero() || mod.Before(stats.Oldest) {
			stats.Oldest = mod
		}
		if mod.After(stats.Newest) {
			stats.Newest = mod
		}
	}
	return stats, nil
}

// Cleanup deletes entries older than maxAge and returns how many were
// removed. Per-entry failures reduce the count rather than aborting.
func (c *MockupCache) Cleanup(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			logrus.WithError(err).WithField("entry", e.Name()).Warn("Failed to remove expired cache entry")
			continue
		}
		removed++
	}

	if removed > 0 {
		logrus.WithFields(logrus.Fields{"removed": removed, "max_age": maxAge}).Info("Cache cleanup completed")
	}
	return removed, nil
}

func (c *MockupCache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".png")
}
