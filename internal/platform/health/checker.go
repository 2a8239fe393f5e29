// Package health 监控存储后端，并在其重启后触发重建。
package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/pkg/lifecycle"
)

// RebuildFunc 在存储实例变化后重新填充数据。
type RebuildFunc func(ctx context.Context) error

// Checker 以固定间隔探测存储。
type Checker struct {
	store    kvstore.Store
	status   *Status
	interval time.Duration
	timeout  time.Duration
	rebuild  RebuildFunc
}

// NewChecker 创建一个 Checker。rebuild 可以为nil。
func NewChecker(store kvstore.Store, status *Status, interval, timeout time.Duration, rebuild RebuildFunc) *Checker {
	return &Checker{
		store:    store,
		status:   status,
		interval: interval,
		timeout:  timeout,
		rebuild:  rebuild,
	}
}

func (c *Checker) probe(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.store.InstanceID(ctx)
}

// Initialize 记录当前的实例ID。存储不可达时返回错误。
func (c *Checker) Initialize(ctx context.Context) error {
	id, err := c.probe(ctx)
	if err != nil {
		return fmt.Errorf("无法读取存储实例ID: %w", err)
	}
	c.status.SetInitialInstance(id)
	slog.Info("健康检查: 初始存储实例", "id", id)
	return nil
}

// PerformCheck 执行一次探测，必要时尝试一次重建。
func (c *Checker) PerformCheck(ctx context.Context) {
	id, err := c.probe(ctx)
	if !c.status.Assess(err == nil, id) {
		return
	}

	slog.Info("健康检查: 开始重建存储")
	success := true
	if c.rebuild != nil {
		if err := c.rebuild(ctx); err != nil {
			slog.Error("健康检查: 重建失败", "err", err)
			success = false
		}
	}

	idAfter, err := c.probe(ctx)
	if err != nil {
		success = false
	}
	c.status.MarkRebuildComplete(success, idAfter)
}

// Start 持续执行健康检查，直到收到停机信号。
func (c *Checker) Start(handle *lifecycle.Handle) {
	defer handle.Close()
	slog.Info("健康检查器已启动", "interval", c.interval)

	for {
		if err := handle.Sleep(c.interval); err != nil {
			slog.Info("健康检查器正在停止")
			return
		}
		c.PerformCheck(handle.Ctx())
	}
}
