package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matsen/paperdash/internal/paper"
	"github.com/matsen/paperdash/internal/snapshot"
)

// SnapshotStore persists parsed tables between runs. *snapshot.DB satisfies it.
type SnapshotStore interface {
	Load(key string) (snapshot.Meta, []paper.Record, bool, error)
	Save(meta snapshot.Meta, records []paper.Record) error
}

// Pruner is implemented by stores that can drop snapshots of older
// versions of a file. *snapshot.DB satisfies it.
type Pruner interface {
	PrunePath(path, keep string) (int, error)
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	// Store, when set, is consulted before parsing and filled after.
	Store  SnapshotStore
	Logger *slog.Logger
}

// CacheStats counts cache activity.
type CacheStats struct {
	Hits          int `json:"hits"`
	Misses        int `json:"misses"`
	SnapshotHits  int `json:"snapshot_hits"`
	Invalidations int `json:"invalidations"`
	Entries       int `json:"entries"`
}

// Cache owns the loaded tables, one per source path. A table is reused as
// long as the file keeps its size and modification time, or its content
// hash when those change. Cache is safe for concurrent use; returned tables
// must not be modified.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Table
	stats   CacheStats
	store   SnapshotStore
	logger  *slog.Logger
}

// NewCache creates an empty cache.
func NewCache(opts CacheOptions) *Cache {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		entries: make(map[string]*Table),
		store:   opts.Store,
		logger:  logger,
	}
}

// Get returns the table for path, loading it when the file is new or changed.
func (c *Cache) Get(ctx context.Context, path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if cached, ok := c.entries[abs]; ok && cached.Source.sameStat(info) {
		c.stats.Hits++
		return cached, nil
	}

	src, err := Identify(abs)
	if err != nil {
		return nil, err
	}
	if cached, ok := c.entries[abs]; ok && cached.Source.Hash == src.Hash {
		// Touched but unchanged: keep the table, refresh the stat fields.
		refreshed := *cached
		refreshed.Source = src
		c.entries[abs] = &refreshed
		c.stats.Hits++
		return &refreshed, nil
	}

	c.stats.Misses++
	table, err := c.load(ctx, src)
	if err != nil {
		return nil, err
	}
	c.entries[abs] = table
	return table, nil
}

// load builds a table from the snapshot store or, failing that, the file.
func (c *Cache) load(ctx context.Context, src Source) (*Table, error) {
	if c.store != nil {
		meta, records, found, err := c.store.Load(src.Key())
		if err != nil {
			c.logger.Warn("snapshot unreadable, parsing source", "key", src.Key(), "error", err)
		} else if found {
			c.stats.SnapshotHits++
			c.logger.Debug("loaded table from snapshot", "path", src.Path, "records", len(records))
			return &Table{
				Source:   src,
				Records:  records,
				Rows:     meta.Rows,
				Dropped:  meta.Dropped,
				LoadedAt: time.Now(),
			}, nil
		}
	}

	start := time.Now()
	table, err := LoadSource(ctx, src)
	if err != nil {
		return nil, err
	}
	c.logger.Info("loaded table",
		"path", src.Path,
		"rows", table.Rows,
		"records", table.Len(),
		"dropped", table.Dropped,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if table.Source.Hash != src.Hash {
		c.logger.Debug("file changed while loading", "path", src.Path)
	}

	if c.store != nil {
		c.saveSnapshot(table)
	}
	return table, nil
}

// saveSnapshot stores table under the hash of the bytes it was parsed
// from and drops the snapshots of earlier versions of the same file.
func (c *Cache) saveSnapshot(table *Table) {
	src := table.Source
	meta := snapshot.Meta{
		Key:     src.Key(),
		Path:    src.Path,
		Rows:    table.Rows,
		Dropped: table.Dropped,
	}
	if err := c.store.Save(meta, table.Records); err != nil {
		c.logger.Warn("saving snapshot failed", "key", meta.Key, "error", err)
		return
	}

	pruner, ok := c.store.(Pruner)
	if !ok {
		return
	}
	n, err := pruner.PrunePath(src.Path, meta.Key)
	if err != nil {
		c.logger.Warn("pruning snapshots failed", "path", src.Path, "error", err)
		return
	}
	if n > 0 {
		c.logger.Debug("pruned stale snapshots", "path", src.Path, "removed", n)
	}
}

// Invalidate drops the cached table for path. The next Get reloads it.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[abs]; ok {
		delete(c.entries, abs)
		c.stats.Invalidations++
		c.logger.Debug("invalidated table", "path", abs)
	}
}

// Stats returns a copy of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}
