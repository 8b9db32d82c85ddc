package store

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Cache hands out a store handle for a fixed path, reopening it when the
// file's modification time changes. A rebuild is picked up by the next
// caller without a process restart, at the cost of one stat per access.
type Cache struct {
	path string

	mu    sync.Mutex
	mtime time.Time
	store *SQLiteStore
}

// NewCache creates a handle cache for the store at path. The file is not
// opened until the first Store call.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the store path the cache was created for.
func (c *Cache) Path() string { return c.path }

// Store returns the current handle, opening or refreshing it if the file
// changed since the last call.
func (c *Cache) Store() (*SQLiteStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshIfStaleLocked()
}

// Invalidate closes the cached handle so the next Store call reopens the
// file regardless of its modification time.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Close releases the cached handle.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.store != nil {
		err = c.store.Close()
		c.store = nil
		c.mtime = time.Time{}
	}
	return err
}

func (c *Cache) refreshIfStaleLocked() (*SQLiteStore, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", c.path, err)
	}

	if c.store != nil && info.ModTime().Equal(c.mtime) {
		return c.store, nil
	}

	c.closeLocked()

	st := New()
	if err := st.Open(c.path); err != nil {
		return nil, err
	}
	c.store = st
	c.mtime = info.ModTime()
	return st, nil
}

func (c *Cache) closeLocked() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
		c.mtime = time.Time{}
	}
}
