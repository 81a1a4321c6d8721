package storage

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vitos/trade_strategy_manager/internal/config"
	"github.com/vitos/trade_strategy_manager/internal/domain"
)

// Store is a StrategyStore that holds a connection to release on shutdown.
type Store interface {
	domain.StrategyStore
	Close() error
}

// Open builds the store selected by cfg.Storage.Backend.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		return NewSQLiteStore(cfg.Storage.SQLitePath, cfg.Storage.Key)
	case "redis":
		if cfg.Storage.Redis.Addr == "" {
			return nil, fmt.Errorf("redis backend selected but storage.redis.addr is empty")
		}
		return NewRedisStore(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		}, cfg.Storage.Key), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
