package repo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cinedeck/internal/core/config"
	"cinedeck/internal/core/database"
)

// OpenKV 按 storage.driver 构造后端；返回的 close 释放底层连接
func OpenKV(ctx context.Context, c *config.Config, log *zap.Logger) (KV, func() error, error) {
	noop := func() error { return nil }
	switch c.Storage.Driver {
	case "memory":
		log.Warn("storage: memory backend, state is lost on exit")
		return NewMemoryKV(), noop, nil

	case "file":
		kv, err := NewFileKV(c.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		log.Info("storage: file backend", zap.String("dir", c.Storage.Dir))
		return kv, noop, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("storage: redis ping %s: %w", c.Redis.Addr, err)
		}
		log.Info("storage: redis backend", zap.String("addr", c.Redis.Addr), zap.String("prefix", c.Storage.Prefix))
		return NewRedisKV(rdb, c.Storage.Prefix), rdb.Close, nil

	case "gorm":
		db, err := database.NewGorm(c.DB, log)
		if err != nil {
			return nil, nil, err
		}
		return gormBackend(ctx, db, c.DB.AutoMigrate, log)
	}
	return nil, nil, fmt.Errorf("storage: unknown driver %q", c.Storage.Driver)
}

// gormBackend 迁移失败时同样释放连接池
func gormBackend(ctx context.Context, db *gorm.DB, migrate bool, log *zap.Logger) (KV, func() error, error) {
	closeDB := func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	kv := NewGormKV(db)
	if migrate {
		if err := kv.Migrate(ctx); err != nil {
			_ = closeDB()
			return nil, nil, fmt.Errorf("storage: migrate: %w", err)
		}
		log.Info("automigrate done")
	}
	return kv, closeDB, nil
}
