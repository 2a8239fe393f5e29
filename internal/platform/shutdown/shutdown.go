// Package shutdown 负责编排服务器的两阶段优雅停机。
package shutdown

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SlpAus/quiz-share-backend/pkg/lifecycle"
)

type finalStep struct {
	name string
	fn   func(ctx context.Context) error
}

// Coordinator 依次停止HTTP服务器和后台服务，最后按顺序执行已注册的收尾步骤。
// 后台服务先通过 GracefulManager 优雅停止，超时后再通过 ForcefulManager 强制停止。
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager

	HTTPTimeout     time.Duration
	GracefulTimeout time.Duration
	ForcefulTimeout time.Duration

	final []finalStep
}

// NewCoordinator 创建一个新的停机协调器。httpTimeout 用于等待HTTP请求处理完毕。
func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager, httpTimeout time.Duration) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
		HTTPTimeout:     httpTimeout,
		GracefulTimeout: 30 * time.Second,
		ForcefulTimeout: time.Second,
	}
}

// OnFinal 注册一个在所有服务停止后执行的收尾步骤，例如最后一次快照。
func (c *Coordinator) OnFinal(name string, fn func(ctx context.Context) error) {
	c.final = append(c.final, finalStep{name: name, fn: fn})
}

// ListenForSignalsAndShutdown 阻塞直到收到 SIGINT 或 SIGTERM，然后执行停机流程。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	sig := <-sigChan
	slog.Info("接收到停机信号，开始优雅停机...", "signal", sig.String())
	c.Shutdown(server)
}

// Shutdown 执行停机流程。server 可以为nil。
func (c *Coordinator) Shutdown(server *http.Server) {
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.HTTPTimeout)
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("HTTP服务器关闭失败", "err", err)
		} else {
			slog.Info("HTTP服务器已关闭")
		}
		cancel()
	}

	slog.Info("第一阶段: 等待后台服务优雅停止", "timeout", c.GracefulTimeout)
	c.GracefulManager.Shutdown()
	remaining := c.GracefulManager.WaitWithTimeout(c.GracefulTimeout)
	if len(remaining) > 0 {
		slog.Warn("第一阶段超时，进入强制停止", "remaining", remaining, "timeout", c.ForcefulTimeout)
		c.ForcefulManager.Shutdown()
		if left := c.ForcefulManager.WaitWithTimeout(c.ForcefulTimeout); len(left) > 0 {
			slog.Error("仍有服务未能停止", "remaining", left)
		}
	}

	for _, step := range c.final {
		if err := step.fn(context.Background()); err != nil {
			slog.Error("收尾步骤失败", "step", step.name, "err", err)
			continue
		}
		slog.Info("收尾步骤完成", "step", step.name)
	}
	slog.Info("停机流程完成")
}
