package workbook

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache memoizes workbook loads keyed by absolute file path. An entry is
// invalidated when the file's mtime or size changes, so edits to the
// workbook are picked up on the next request without restarting.
type Cache struct {
	loader *Loader
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	wb      *Workbook
	modTime time.Time
	size    int64
}

// NewCache creates a cache backed by the given loader.
func NewCache(loader *Loader, logger *slog.Logger) *Cache {
	return &Cache{
		loader:  loader,
		logger:  logger.With(slog.String("component", "workbook_cache")),
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the workbook for path, loading it if absent or stale.
func (c *Cache) Get(path, chwSheet, mthwSheet string) (*Workbook, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workbook path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}

	c.mu.RLock()
	entry, ok := c.entries[abs]
	c.mu.RUnlock()

	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		cacheHits.Inc()
		return entry.wb, nil
	}
	cacheMisses.Inc()

	wb, err := c.loader.Load(abs, chwSheet, mthwSheet)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[abs] = &cacheEntry{wb: wb, modTime: info.ModTime(), size: info.Size()}
	c.mu.Unlock()

	c.logger.Info("workbook cached",
		slog.String("path", abs),
		slog.Time("mod_time", info.ModTime()),
		slog.Int64("size", info.Size()))

	return wb, nil
}

// Invalidate drops the cached entry for path, if any.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, abs)
	c.mu.Unlock()
}
