package database

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent,
			Colorful:      true,
		},
	)
	return &gorm.Config{Logger: newLogger}
}

// OpenSqlite 打开（或创建）位于path的SQLite数据库。
func OpenSqlite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("连接SQLite数据库 %s 失败: %w", path, err)
	}
	slog.Info("SQLite数据库连接成功", "path", path)
	return db, nil
}

// OpenPostgres 使用dsn连接Postgres。
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("连接Postgres失败: %w", err)
	}
	slog.Info("Postgres连接成功")
	return db, nil
}

// Close 释放db背后的连接池。
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
