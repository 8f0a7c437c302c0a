package main

import (
	"context"

	"github.com/gastobot/gastobot/internal/cache"
	"github.com/gastobot/gastobot/internal/config"
	"github.com/gastobot/gastobot/internal/engine"
	"github.com/gastobot/gastobot/internal/storage"
	"github.com/gastobot/gastobot/internal/synonyms"
)

// openStorage opens the sqlite database from config and migrates it.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openStorageWith(ctx, settings)
}

func openStorageWith(ctx context.Context, settings *config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DBPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	return store, nil
}

// openCache builds the configured cache client.
func openCache(settings *config.Settings) (cache.Client, error) {
	if settings.CacheBackend == "redis" {
		return cache.NewRedisClient(cache.RedisConfig{
			Addr:     settings.Redis.Addr,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
		})
	}
	return cache.NewMemoryClient(0), nil
}

// buildEngine wires a full engine for CLI commands. The returned cleanup
// closes storage and cache.
func buildEngine(ctx context.Context) (*engine.Engine, func(), error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := openStorageWith(ctx, settings)
	if err != nil {
		return nil, nil, err
	}

	cacheClient, err := openCache(settings)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	graph, err := synonyms.Default()
	if err != nil {
		_ = store.Close()
		_ = cacheClient.Close()
		return nil, nil, err
	}

	eng, err := engine.New(engine.Config{
		Cache:     cacheClient,
		Storage:   store,
		Graph:     graph,
		Threshold: settings.Threshold,
	})
	if err != nil {
		_ = store.Close()
		_ = cacheClient.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
		_ = cacheClient.Close()
	}

	return eng, cleanup, nil
}
