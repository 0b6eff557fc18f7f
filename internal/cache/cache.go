package cache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Expiration is how long a certification stays valid. Remote content moves on,
// so certifications for a remote state that no longer exists must age out.
const Expiration = 24 * time.Hour

// DefaultDir is the cache directory used when none is configured.
const DefaultDir = ".sem-merge-cache"

const storeFile = "processed.json"

// Entry certifies MergedContent as a settled merge result for FilePath
// against one particular remote version.
type Entry struct {
	MergedContent string    `json:"mergedContent"`
	Timestamp     time.Time `json:"timestamp"`
	FilePath      string    `json:"filePath"`
}

// Cache is a persisted certification store keyed by Fingerprint.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	dir      string
	entries  map[string]Entry
	degraded bool
	now      func() time.Time
	log      *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock used for timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New opens the store in dir, hydrating it from disk when the store file
// exists and parses. An unreadable or corrupt file yields an empty store.
// An empty dir gives an in-memory store that never touches disk.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{
		dir:     dir,
		entries: make(map[string]Entry),
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.load()
	return c
}

// Fingerprint returns the key for a (file, merged output, remote) triple.
// The merged output is hashed, never the pre-merge input, so that the
// content the hook wrote last time is what gets recognized next time.
// Each field is length-prefixed so distinct triples never share an encoding.
func Fingerprint(filePath, mergedContent, remoteContent string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d:%s%d:%s%d:%s",
		len(filePath), filePath, len(mergedContent), mergedContent, len(remoteContent), remoteContent)))
	return fmt.Sprintf("%x", h)
}

// IsCertified reports whether candidate is already a valid merge result for
// filePath against remote. An expired entry is evicted and reported false.
func (c *Cache) IsCertified(candidate, remote, filePath string) bool {
	key := Fingerprint(filePath, candidate, remote)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	if c.now().Sub(entry.Timestamp) > Expiration {
		delete(c.entries, key)
		c.persistLocked()
		return false
	}
	return true
}

// CertifiedResult returns candidate unchanged when it is certified. It never
// substitutes other stored text.
func (c *Cache) CertifiedResult(candidate, remote, filePath string) (string, bool) {
	if !c.IsCertified(candidate, remote, filePath) {
		return "", false
	}
	return candidate, true
}

// RecordMerge certifies merged as the merge result for filePath against
// remote, replacing any entry under the same key. Persistence failures are
// absorbed; the entry stays in memory.
func (c *Cache) RecordMerge(remote, filePath, merged string) {
	key := Fingerprint(filePath, merged, remote)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		MergedContent: merged,
		Timestamp:     c.now(),
		FilePath:      filePath,
	}
	c.persistLocked()
}

// Clear empties the store and removes the store file.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	if c.dir == "" {
		return
	}
	if err := os.Remove(c.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.log.Debug("removing cache file", zap.String("path", c.path()), zap.Error(err))
	}
}

// EvictOlderThan removes every entry older than maxAge and returns how many
// were removed. The store is written at most once.
func (c *Cache) EvictOlderThan(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var removed int
	for key, entry := range c.entries {
		if now.Sub(entry.Timestamp) > maxAge {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.persistLocked()
	}
	return removed
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats describes the store.
type Stats struct {
	Path       string    `json:"path"`
	Entries    int       `json:"entries"`
	Expired    int       `json:"expired"`
	TotalBytes int64     `json:"totalBytes"`
	Oldest     time.Time `json:"oldest,omitempty"`
	InMemory   bool      `json:"inMemory"`
}

// GetStats returns information about the store.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Entries:  len(c.entries),
		InMemory: c.dir == "" || c.degraded,
	}
	if c.dir != "" {
		stats.Path = c.path()
		if info, err := os.Stat(stats.Path); err == nil {
			stats.TotalBytes = info.Size()
		}
	}
	now := c.now()
	for _, entry := range c.entries {
		if now.Sub(entry.Timestamp) > Expiration {
			stats.Expired++
		}
		if stats.Oldest.IsZero() || entry.Timestamp.Before(stats.Oldest) {
			stats.Oldest = entry.Timestamp
		}
	}
	return stats
}

// Dir returns the cache directory, empty for an in-memory store.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, storeFile)
}

func (c *Cache) load() {
	if c.dir == "" {
		return
	}
	data, err := os.ReadFile(c.path())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Debug("reading cache file", zap.String("path", c.path()), zap.Error(err))
		}
		return
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Debug("ignoring corrupt cache file", zap.String("path", c.path()), zap.Error(err))
		return
	}
	if entries != nil {
		c.entries = entries
	}
}

// persistLocked rewrites the whole store. The first failure switches the
// store to in-memory operation for the rest of the process.
func (c *Cache) persistLocked() {
	if c.dir == "" || c.degraded {
		return
	}
	if err := c.writeLocked(); err != nil {
		c.degraded = true
		c.log.Debug("cache persistence disabled", zap.String("dir", c.dir), zap.Error(err))
	}
}

func (c *Cache) writeLocked() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, storeFile+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}
