// Package backup 将存储中的各个集合镜像到SQLite数据库，
// 以便易失性后端（Redis）在重启后能够重新填充数据。
package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SlpAus/quiz-share-backend/internal/platform/database"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/platform/metadata"
	"github.com/SlpAus/quiz-share-backend/pkg/lifecycle"
)

const (
	maxRetry   = 3
	retryDelay = 50 * time.Millisecond
)

// Service 对一组固定的键执行快照与恢复。
type Service struct {
	source *kvstore.Adapter
	db     *gorm.DB
	keys   []string

	mu  sync.Mutex
	now func() time.Time
}

// NewService 在db中迁移镜像表，并返回一个对source中keys做快照的 Service。
func NewService(source *kvstore.Adapter, db *gorm.DB, keys []string) (*Service, error) {
	if _, err := kvstore.NewGormStore(db); err != nil {
		return nil, err
	}
	if err := metadata.PrimeDB(db); err != nil {
		return nil, err
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return &Service{source: source, db: db, keys: sorted, now: time.Now}, nil
}

func digestOf(entries []kvstore.Entry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.Key))
		h.Write([]byte{0})
		h.Write([]byte(e.Value))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Snapshot 执行一次原子的、一致的快照备份。
// 所有键在各自的锁内读取，保证跨集合的一致性。
// 若自上次快照以来没有变化，则返回false（无需备份）。
func (s *Service) Snapshot(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	digest := digestOf(entries)
	last, err := metadata.GetSnapshotDigest(s.db.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("读取快照摘要失败: %w", err)
	}
	if last == digest {
		return false, nil
	}

	// 将快照数据持久化到SQLite
	now := s.now()
	for i := range entries {
		entries[i].UpdatedAt = now
	}

	for attempt := 0; attempt < maxRetry; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// OnConflict 执行 UPSERT 操作，冲突的判断依据是entry_key
			if len(entries) > 0 {
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "entry_key"}},
					DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
				}).Create(&entries).Error
				if err != nil {
					return fmt.Errorf("批量写入快照数据失败: %w", err)
				}
			}
			if err := metadata.SetSnapshotDigest(tx, digest); err != nil {
				return fmt.Errorf("更新元数据 SnapshotDigest 失败: %w", err)
			}
			if err := metadata.SetLastSnapshotAt(tx, now); err != nil {
				return fmt.Errorf("更新元数据 LastSnapshotAt 失败: %w", err)
			}
			return nil
		})
		if err == nil || !database.IsRetryableError(err) {
			break
		}
		time.Sleep(retryDelay)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) read(ctx context.Context) ([]kvstore.Entry, error) {
	unlock := s.source.Lock(s.keys...)
	defer unlock()

	entries := make([]kvstore.Entry, 0, len(s.keys))
	for _, key := range s.keys {
		raw, err := s.source.Store().Get(ctx, key)
		if errors.Is(err, kvstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("读取 %s 的快照数据失败: %w", key, err)
		}
		entries = append(entries, kvstore.Entry{Key: key, Value: string(raw)})
	}
	return entries, nil
}

// Restore 将镜像中的值写回source中已丢失的键。
// 仍然存在的键保持不变。返回恢复的键数量。
func (s *Service) Restore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []kvstore.Entry
	if err := s.db.WithContext(ctx).Where("entry_key IN ?", s.keys).Find(&entries).Error; err != nil {
		return 0, fmt.Errorf("加载快照失败: %w", err)
	}

	unlock := s.source.Lock(s.keys...)
	defer unlock()

	restored := 0
	for _, e := range entries {
		present, err := kvstore.Exists(ctx, s.source, e.Key)
		if err != nil {
			return restored, fmt.Errorf("检查 %s 是否存在失败: %w", e.Key, err)
		}
		if present {
			continue
		}
		if err := s.source.Store().Set(ctx, e.Key, []byte(e.Value)); err != nil {
			return restored, fmt.Errorf("恢复 %s 失败: %w", e.Key, err)
		}
		restored++
	}
	if restored > 0 {
		slog.Info("已从快照恢复集合", "count", restored)
	}
	return restored, nil
}

// LastSnapshotAt 返回上一次快照的时间。
func (s *Service) LastSnapshotAt(ctx context.Context) (time.Time, error) {
	return metadata.GetLastSnapshotAt(s.db.WithContext(ctx))
}

// StartScheduler 定期执行快照备份，直到收到停机信号。
// healthy 返回false时跳过本次备份。
func (s *Service) StartScheduler(handle *lifecycle.Handle, interval time.Duration, healthy func() bool) {
	defer handle.Close() // 确保在退出时通知管理器
	slog.Info("备份调度器已启动", "interval", interval)

	for {
		if err := handle.Sleep(interval); err != nil {
			slog.Info("备份调度器正在停止")
			return
		}

		if healthy != nil && !healthy() {
			slog.Warn("备份调度器: 存储不可用，跳过本次备份")
			continue
		}

		taken, err := s.Snapshot(handle.Ctx())
		switch {
		case err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
			slog.Error("备份调度器: 快照失败", "err", err)
		case taken:
			slog.Info("备份调度器: 快照已写入")
		}
	}
}
