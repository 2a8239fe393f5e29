package metadata

import "time"

// Metadata 定义了用于存储系统元数据的键值对模型，与快照镜像存放在一起。
type Metadata struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"column:meta_key;uniqueIndex;not null;type:varchar(255)"`
	Value     string `gorm:"column:meta_value;type:varchar(255)"`
	UpdatedAt time.Time
}

func (Metadata) TableName() string {
	return "metadata"
}

const (
	// LastSnapshotAtKey 记录上一次成功快照的时间（RFC 3339）。
	LastSnapshotAtKey = "last_snapshot_at"

	// SnapshotDigestKey 记录上一次快照的内容摘要，摘要相同的快照将被跳过。
	SnapshotDigestKey = "snapshot_digest"
)
