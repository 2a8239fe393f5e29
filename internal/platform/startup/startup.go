// Package startup 负责初始化存储，并在后端重启后重建数据。
package startup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SlpAus/quiz-share-backend/internal/bookmark"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/question"
	"github.com/SlpAus/quiz-share-backend/internal/user"
	"github.com/SlpAus/quiz-share-backend/internal/vote"
)

// Module 描述一个业务模块在存储中占用的键及其初始化函数。
type Module struct {
	Name  string
	Prime func(ctx context.Context, kv *kvstore.Adapter) error
	Keys  []string
}

// Modules 按初始化顺序列出所有业务模块。
func Modules() []Module {
	return []Module{
		{Name: "user", Prime: user.PrimeStore, Keys: user.Keys()},
		{Name: "question", Prime: question.PrimeStore, Keys: question.Keys()},
		{Name: "vote", Prime: vote.PrimeStore, Keys: vote.Keys()},
		{Name: "bookmark", Prime: bookmark.PrimeStore, Keys: bookmark.Keys()},
	}
}

// CollectionKeys 返回所有业务模块拥有的键。
func CollectionKeys() []string {
	var keys []string
	for _, m := range Modules() {
		keys = append(keys, m.Keys...)
	}
	return keys
}

// InitializeApplication 为缺失的集合写入初始数据，已有数据不会被改动。
func InitializeApplication(ctx context.Context, kv *kvstore.Adapter) error {
	slog.Info("开始初始化存储...")
	for _, m := range Modules() {
		if err := m.Prime(ctx, kv); err != nil {
			return fmt.Errorf("初始化 %s 模块失败: %w", m.Name, err)
		}
	}
	slog.Info("存储初始化完成")
	return nil
}

// Restorer 从快照中恢复存储。
type Restorer interface {
	Restore(ctx context.Context) (int, error)
	Snapshot(ctx context.Context) (bool, error)
}

// RebuildStore 在后端丢失数据后重建kv：
// 1. 若设置了restorer，先从最新快照恢复
// 2. 为仍然缺失的集合写入初始数据
// 3. 立即执行一次新的快照
func RebuildStore(ctx context.Context, kv *kvstore.Adapter, restorer Restorer) error {
	slog.Info("开始重建存储...")
	if restorer != nil {
		if _, err := restorer.Restore(ctx); err != nil {
			return fmt.Errorf("从快照恢复失败: %w", err)
		}
	}
	if err := InitializeApplication(ctx, kv); err != nil {
		return err
	}
	if restorer != nil {
		if _, err := restorer.Snapshot(ctx); err != nil {
			slog.Warn("重建后的快照失败", "err", err)
		}
	}
	return nil
}
