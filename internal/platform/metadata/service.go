package metadata

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrimeDB 迁移元数据表。
func PrimeDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("迁移元数据表失败: %w", err)
	}
	return nil
}

// GetValue 从数据库中获取一个元数据值，不存在时返回空字符串。
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("meta_key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 在数据库中创建或更新一个元数据值。
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meta_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"meta_value", "updated_at"}),
	}).Create(&meta).Error
}

// GetLastSnapshotAt 获取上一次快照的时间，尚无快照时返回零值。
func GetLastSnapshotAt(db *gorm.DB) (time.Time, error) {
	raw, err := GetValue(db, LastSnapshotAtKey)
	if err != nil || raw == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("解析元数据 %s 失败: %w", LastSnapshotAtKey, err)
	}
	return t, nil
}

func SetLastSnapshotAt(db *gorm.DB, t time.Time) error {
	return SetValue(db, LastSnapshotAtKey, t.UTC().Format(time.RFC3339Nano))
}

func GetSnapshotDigest(db *gorm.DB) (string, error) {
	return GetValue(db, SnapshotDigestKey)
}

func SetSnapshotDigest(db *gorm.DB, digest string) error {
	return SetValue(db, SnapshotDigestKey, digest)
}
