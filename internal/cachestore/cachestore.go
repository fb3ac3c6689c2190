// Package cachestore builds the durable blob store that holds the embedding
// cache artifacts.
package cachestore

import (
	"context"
	"fmt"
	"path/filepath"

	"caserag/internal/cachestore/file"
	"caserag/internal/cachestore/memory"
	"caserag/internal/cachestore/redis"
	"caserag/internal/cachestore/sqlstore"
	"caserag/internal/config"
	"caserag/internal/domain"
)

// New opens the store named by cfg.Type.
func New(ctx context.Context, cfg config.CacheConfig) (domain.CacheStore, error) {
	switch cfg.Type {
	case "file", "":
		dir := cfg.Dir
		if cfg.Prefix != "" {
			dir = filepath.Join(dir, cfg.Prefix)
		}
		return file.NewStorage(dir)
	case "memory":
		return memory.NewStorage(), nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, fmt.Errorf("redis cache config missing")
		}
		return redis.Open(ctx, cfg.Redis.URL, cfg.Prefix)
	case "sqlite":
		path := ""
		if cfg.SQLite != nil {
			path = cfg.SQLite.Path
		}
		return sqlstore.OpenSQLite(ctx, path, cfg.Prefix)
	case "postgres":
		if cfg.Postgres == nil {
			return nil, fmt.Errorf("postgres cache config missing")
		}
		return sqlstore.OpenPostgres(ctx, cfg.Postgres.DSN, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown cache store: %s", cfg.Type)
	}
}
