// Package cache keeps rendered list responses in Badger with a TTL.
//
// Keys are namespaced by entity so a write can drop every cached page of one
// entity with a single prefix delete. A nil *Cache is valid and caches nothing.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache is a TTL key-value cache backed by Badger.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Open opens the cache at path. An empty path keeps everything in memory.
func Open(path string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}

	if logger != nil {
		logger.Info("Response cache opened", "path", path, "ttl", ttl)
	}
	return &Cache{db: db, ttl: ttl, logger: logger}, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// Healthy reports whether the cache can serve requests.
func (c *Cache) Healthy() bool {
	return c != nil && !c.db.IsClosed()
}

// Key joins a namespace and a request identity into a cache key.
func Key(namespace, id string) string {
	return namespace + ":" + id
}

// Get decodes the value stored at key into dest. It reports whether the key
// was present and not expired.
func (c *Cache) Get(key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value at key for the cache TTL.
func (c *Cache) Set(key string, value any) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(c.ttl))
	})
}

// Invalidate drops every key in the given namespaces.
func (c *Cache) Invalidate(namespaces ...string) error {
	if c == nil || len(namespaces) == 0 {
		return nil
	}
	prefixes := make([][]byte, len(namespaces))
	for i, ns := range namespaces {
		prefixes[i] = []byte(ns + ":")
	}
	return c.db.DropPrefix(prefixes...)
}

// Fetch returns the cached value at key, or calls load and caches its result.
// Cache failures are logged and never fail the call.
func Fetch[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	var cached T
	hit, err := c.Get(key, &cached)
	if err != nil {
		c.warn("cache read failed", key, err)
	}
	if hit {
		return cached, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := c.Set(key, v); err != nil {
		c.warn("cache write failed", key, err)
	}
	return v, nil
}

func (c *Cache) warn(msg, key string, err error) {
	if c != nil && c.logger != nil {
		c.logger.Warn(msg, "key", key, "error", err)
	}
}
