package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SlpAus/quiz-share-backend/internal/platform/config"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
)

// OpenStore 根据 cfg.Backend 构造键值存储后端。
// 返回的close函数负责释放后端的连接。
func OpenStore(ctx context.Context, cfg config.StorageConfig) (kvstore.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kvstore.NewMemoryStore(), func() error { return nil }, nil

	case config.BackendSqlite, config.BackendPostgres:
		var open func() (*gorm.DB, error)
		if cfg.Backend == config.BackendSqlite {
			open = func() (*gorm.DB, error) { return OpenSqlite(cfg.Sqlite.Path) }
		} else {
			open = func() (*gorm.DB, error) { return OpenPostgres(cfg.Postgres.DSN) }
		}
		db, err := open()
		if err != nil {
			return nil, nil, err
		}
		store, err := kvstore.NewGormStore(db)
		if err != nil {
			_ = Close(db)
			return nil, nil, err
		}
		return store, func() error { return Close(db) }, nil

	case config.BackendRedis:
		client, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewRedisStore(client, cfg.Redis.KeyPrefix), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("未知的存储后端 %q", cfg.Backend)
	}
}
