package marketdata

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache is a file-backed store for fetched history with a fixed TTL.
type Cache struct {
	dir string
	ttl time.Duration
	mu  sync.RWMutex
	now func() time.Time
}

type cacheEntry struct {
	Key      string          `json:"key"`
	Data     json.RawMessage `json:"data"`
	StoredAt time.Time       `json:"stored_at"`
}

func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		dir = "cache/marketdata"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Get decodes a live entry into v. Expired entries are removed.
func (c *Cache) Get(key string, v any) bool {
	c.mu.RLock()
	b, err := os.ReadFile(c.path(key))
	c.mu.RUnlock()
	if err != nil {
		return false
	}

	var e cacheEntry
	if err := json.Unmarshal(b, &e); err != nil || e.Key != key {
		return false
	}
	if c.now().Sub(e.StoredAt) > c.ttl {
		c.mu.Lock()
		os.Remove(c.path(key))
		c.mu.Unlock()
		return false
	}
	return json.Unmarshal(e.Data, v) == nil
}

func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b, err := json.Marshal(cacheEntry{Key: key, Data: data, StoredAt: c.now()})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return os.WriteFile(c.path(key), b, 0o644)
}

// CleanupExpired removes every entry older than the TTL and reports how many.
func (c *Cache) CleanupExpired() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if c.now().Sub(info.ModTime()) > c.ttl {
			if os.Remove(filepath.Join(c.dir, entry.Name())) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", md5.Sum([]byte(key))))
}

func cacheKey(parts ...string) string {
	return strings.Join(parts, "|")
}
