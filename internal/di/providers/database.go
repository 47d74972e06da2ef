package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/mybglist/mybglist-server/internal/cache"
	"github.com/mybglist/mybglist-server/internal/config"
	"github.com/mybglist/mybglist-server/internal/logger"
	"github.com/mybglist/mybglist-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.Path, log.Component("store"))
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Database.Path)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the response cache with shutdown capability.
// Cache is nil when caching is disabled.
type CacheHandle struct {
	*cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the badger response cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Cache.Enabled {
		log.Info("Response cache disabled")
		return &CacheHandle{}, nil
	}

	c, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL, log.Component("cache"))
	if err != nil {
		return nil, err
	}

	location := cfg.Cache.Path
	if location == "" {
		location = "memory"
	}
	log.Info("Response cache ready", "location", location, "ttl", cfg.Cache.TTL)

	return &CacheHandle{Cache: c}, nil
}
