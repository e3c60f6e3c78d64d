package app

import (
	"context"
	"fmt"
	"log/slog"

	"manhwahub/database"
	"manhwahub/internal/config"
	"manhwahub/internal/microservices/http-api/repository"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "manhwahub:"

// openKVStore opens the backend named by STORAGE_DRIVER. rdb is reused
// when the redis driver is selected and may be nil otherwise.
func openKVStore(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger *slog.Logger) (repository.KVStore, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; nothing survives a restart")
		return repository.NewMemoryKVStore(), nil

	case config.DriverSQLite:
		db, err := database.ConnectSQLite(cfg, logger)
		if err != nil {
			return nil, err
		}
		kv, err := repository.NewSQLiteKVStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return kv, nil

	case config.DriverPostgres:
		db, err := database.ConnectPostgres(cfg, logger)
		if err != nil {
			return nil, err
		}
		return repository.NewGormKVStore(db)

	case config.DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis storage requested without a redis client")
		}
		return repository.NewRedisKVStore(rdb, redisKeyPrefix), nil

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return repository.NewMongoKVStore(client, cfg.MongoDatabase), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
