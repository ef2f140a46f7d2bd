package datasource

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"earnings-move/internal/interfaces"
	"earnings-move/internal/logger"
)

// NameCache keeps resolved company names on disk between runs
type NameCache struct {
	dir string
	ttl time.Duration
	mu  sync.RWMutex
	now func() time.Time
}

type nameEntry struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewNameCache creates a cache under dir. The directory is created on first write.
func NewNameCache(dir string, ttl time.Duration) *NameCache {
	if dir == "" {
		dir = "cache/names"
	}
	return &NameCache{dir: dir, ttl: ttl, now: time.Now}
}

// Get returns a cached name that is younger than the ttl
func (c *NameCache) Get(symbol string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.path(symbol))
	if err != nil {
		return "", false
	}

	var entry nameEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if entry.Name == "" || c.now().Sub(entry.FetchedAt) > c.ttl {
		return "", false
	}
	return entry.Name, true
}

// Put stores a name
func (c *NameCache) Put(symbol, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(nameEntry{Symbol: symbol, Name: name, FetchedAt: c.now()})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(symbol), data, 0o644)
}

// CleanupExpired removes entries older than the ttl and returns how many were removed
func (c *NameCache) CleanupExpired() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p := filepath.Join(c.dir, e.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var entry nameEntry
		if json.Unmarshal(data, &entry) != nil || c.now().Sub(entry.FetchedAt) > c.ttl {
			if os.Remove(p) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (c *NameCache) path(symbol string) string {
	hash := md5.Sum([]byte(strings.ToUpper(symbol)))
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", hash))
}

// cachedMarketData serves CompanyName from the cache, filling it on a miss
type cachedMarketData struct {
	interfaces.MarketData
	cache *NameCache
}

// WithNameCache decorates m so company names are looked up once per ttl
func WithNameCache(m interfaces.MarketData, cache *NameCache) interfaces.MarketData {
	if cache == nil {
		return m
	}
	return &cachedMarketData{MarketData: m, cache: cache}
}

func (m *cachedMarketData) CompanyName(ctx context.Context, symbol string) (string, error) {
	if name, ok := m.cache.Get(symbol); ok {
		return name, nil
	}
	name, err := m.MarketData.CompanyName(ctx, symbol)
	if err != nil {
		return "", err
	}
	if err := m.cache.Put(symbol, name); err != nil {
		logger.Debug(ctx, "Name cache write failed", "symbol", symbol, "error", err)
	}
	return name, nil
}
