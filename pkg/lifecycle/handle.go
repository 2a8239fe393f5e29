package lifecycle

import (
	"context"
	"time"
)

// Handle 是分发给单个后台服务的生命周期句柄。
// 服务通过 Done 监听停机信号，并在其goroutine退出时调用一次 Close。
type Handle struct {
	name string
	ctx  context.Context
	// Close 通知管理器该服务已经停止。重复调用是安全的。
	Close func()
}

// Name 返回服务注册时使用的名称。
func (h *Handle) Name() string {
	return h.name
}

// Ctx 返回句柄的Context，在 Shutdown 时被取消。
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done 在管理器广播停机信号时关闭。
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err 返回 Done 被关闭的原因。
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep 是可中断的休眠：等待d，若停机先开始则提前返回句柄的错误。
func (h *Handle) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-h.Done():
		return h.Err()
	case <-timer.C:
		return nil
	}
}
