// Package cache memoizes computed comparison results under explicit keys.
//
// Results live in two tiers: an in-process ristretto cache and, optionally,
// a badger store on disk so restarts do not recompute everything. Values are
// stored as JSON, which also hands every caller its own copy. Keys are
// content-derived (see NewKey), so entries never need invalidation: a changed
// input simply produces a different key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

const diskPrefix = "result:"

// Options configures a Cache.
type Options struct {
	MaxEntries int          // In-memory capacity (default 10000)
	Path       string       // Badger directory; empty keeps results in memory only
	Logger     *slog.Logger // uses discard if nil
}

// Stats reports cache effectiveness since startup.
type Stats struct {
	Hits     uint64 `json:"hits"`
	DiskHits uint64 `json:"disk_hits"`
	Misses   uint64 `json:"misses"`
	Entries  uint64 `json:"entries"`
}

// Cache is a two-tier memo store. It is safe for concurrent use.
type Cache struct {
	mem    *ristretto.Cache[string, []byte]
	disk   *badger.DB
	group  singleflight.Group
	logger *slog.Logger

	hits, diskHits, misses atomic.Uint64
}

// New creates a cache. When opts.Path is set the badger store is opened there.
func New(opts Options) (*Cache, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 10000
	}

	mem, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: int64(opts.MaxEntries) * 10,
		MaxCost:     int64(opts.MaxEntries),
		BufferItems: 64,
		Metrics:     true,
		// Every entry costs 1, so MaxCost is an entry count.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}

	c := &Cache{mem: mem, logger: logger}

	if opts.Path != "" {
		bopts := badger.DefaultOptions(opts.Path)
		bopts.Logger = nil            // Disable Badger's internal logging
		bopts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

		db, err := badger.Open(bopts)
		if err != nil {
			mem.Close()
			return nil, fmt.Errorf("open result cache: %w", err)
		}
		c.disk = db
		logger.Info("result cache opened", "path", opts.Path, "max_entries", opts.MaxEntries)
	}

	return c, nil
}

// Close releases both tiers.
func (c *Cache) Close() error {
	c.mem.Close()
	if c.disk != nil {
		return c.disk.Close()
	}
	return nil
}

// Persistent reports whether results are also kept on disk.
func (c *Cache) Persistent() bool {
	return c.disk != nil
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() Stats {
	s := Stats{
		Hits:     c.hits.Load(),
		DiskHits: c.diskHits.Load(),
		Misses:   c.misses.Load(),
	}
	if m := c.mem.Metrics; m != nil {
		s.Entries = m.KeysAdded() - m.KeysEvicted()
	}
	return s
}

// lookup returns the stored bytes for key from memory, then disk.
func (c *Cache) lookup(key Key) ([]byte, bool) {
	if raw, ok := c.mem.Get(string(key)); ok {
		c.hits.Add(1)
		return raw, true
	}
	if c.disk == nil {
		return nil, false
	}

	var raw []byte
	err := c.disk.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(diskPrefix + key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("result cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	c.diskHits.Add(1)
	c.mem.Set(string(key), raw, 1)
	return raw, true
}

// store writes raw to both tiers. Disk failures are logged; the value is
// still served from memory.
func (c *Cache) store(key Key, raw []byte) {
	c.mem.Set(string(key), raw, 1)
	if c.disk == nil {
		return
	}
	err := c.disk.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(diskPrefix+key), raw)
	})
	if err != nil {
		c.logger.Warn("result cache write failed", "key", key, "error", err)
	}
}

// GetOrLoad returns the value cached under key, calling load on a miss.
// Concurrent misses for one key share a single load. The load runs detached
// from the caller's cancellation so one impatient caller cannot fail the
// others waiting on it; ctx only bounds how long this caller waits.
// Errors from load are returned and not cached.
func GetOrLoad[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if raw, ok := c.lookup(key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		// Entry written by an incompatible build; recompute below.
		c.logger.Debug("discarding undecodable cache entry", "key", key)
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(key), func() (any, error) {
		c.misses.Add(1)
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode cached value: %w", err)
		}
		c.store(key, raw)
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		var v T
		if err := json.Unmarshal(res.Val.([]byte), &v); err != nil {
			return zero, fmt.Errorf("decode cached value: %w", err)
		}
		return v, nil
	}
}
