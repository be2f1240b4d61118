package banner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Cache stores banner images on disk, keyed by a short name.
type Cache struct {
	dir    string
	maxAge time.Duration
}

// NewCache creates a cache in dir. Entries older than maxAge are treated
// as missing; zero keeps them forever. A directory that cannot be created
// leaves the cache inert rather than failing startup.
func NewCache(dir string, maxAge time.Duration, log *zap.SugaredLogger) *Cache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warnw("could not create image cache directory", "dir", dir, "err", err)
	}
	return &Cache{dir: dir, maxAge: maxAge}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, "banner_"+key+".img")
}

// Get returns the cached image for key if present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if c.maxAge > 0 && time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *Cache) Set(key string, data []byte) error {
	return os.WriteFile(c.path(key), data, 0644)
}

// GetAny returns any cached banner regardless of age.
func (c *Cache) GetAny() ([]byte, bool) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, false
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "banner_") || filepath.Ext(name) != ".img" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(c.dir, name))
		if err == nil && len(data) > 0 {
			return data, true
		}
	}
	return nil, false
}
