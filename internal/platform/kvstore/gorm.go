package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the gorm model backing GormStore.
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey;type:varchar(128)"`
	Value     string `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the table name.
func (Entry) TableName() string {
	return "kv_entries"
}

// GormStore keeps every key as one row of kv_entries. It works with any
// dialect gorm supports; the server uses SQLite or Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the kv_entries table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &GormStore{db: db}, nil
}

// DB exposes the underlying connection.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(e.Value), nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&e).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error
}

// InstanceID pings the database and reports the dialect. SQL backends are
// durable, so the id never changes across restarts.
func (s *GormStore) InstanceID(ctx context.Context) (string, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return "", err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "", err
	}
	return s.db.Dialector.Name(), nil
}
