package health

import (
	"log/slog"
	"sync"
)

// State 定义了存储健康状态的枚举类型
type State int

const (
	StateHealthy State = iota
	StateDegraded
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// Status 负责线程安全地管理存储的健康状态与最近一次见到的实例ID。
type Status struct {
	mu             sync.RWMutex
	state          State
	lastInstanceID string
}

// NewStatus 创建一个初始为健康状态的 Status。
func NewStatus() *Status {
	return &Status{state: StateHealthy}
}

// State 返回当前的健康状态。
func (s *Status) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Healthy 报告当前是否允许写操作。
func (s *Status) Healthy() bool {
	return s.State() == StateHealthy
}

// StateName 返回当前状态的名称。
func (s *Status) StateName() string {
	return s.State().String()
}

// SetInitialInstance 在应用启动时调用，用于设置初始的实例ID。
func (s *Status) SetInitialInstance(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastInstanceID = id
}

// Assess 根据一次探测结果推进状态机，并返回是否需要重建。
func (s *Status) Assess(connected bool, instanceID string) (needsRebuild bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restarted := s.lastInstanceID != "" && s.lastInstanceID != instanceID

	switch s.state {
	case StateHealthy:
		if !connected {
			s.state = StateDegraded
			slog.Warn("健康检查: 与存储的连接已断开", "state", s.state)
		} else if restarted {
			s.state = StateRebuilding
			needsRebuild = true
			slog.Warn("健康检查: 检测到存储已重启", "from", s.lastInstanceID, "to", instanceID)
		}
	case StateDegraded:
		if connected {
			if restarted {
				s.state = StateRebuilding
				needsRebuild = true
				slog.Warn("健康检查: 存储已恢复连接，但期间发生过重启", "from", s.lastInstanceID, "to", instanceID)
			} else {
				s.state = StateHealthy
				slog.Info("健康检查: 与存储的连接已恢复")
			}
		}
	case StateRebuilding:
		if !connected {
			s.state = StateDegraded
			slog.Warn("健康检查: 重建期间再次失去连接")
		} else {
			// 上一次重建未完成，继续重建
			needsRebuild = true
		}
	}

	if connected {
		s.lastInstanceID = instanceID
	}
	return needsRebuild
}

// MarkRebuildComplete 记录一次重建的结果。
// 只有重建期间实例ID未发生变化，重建才算成功。
func (s *Status) MarkRebuildComplete(success bool, instanceIDAfter string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRebuilding {
		return
	}
	if success && s.lastInstanceID != instanceIDAfter {
		slog.Warn("健康检查: 重建期间存储再次重启，将重试", "from", s.lastInstanceID, "to", instanceIDAfter)
		s.lastInstanceID = instanceIDAfter
		return
	}
	if success {
		s.state = StateHealthy
		slog.Info("健康检查: 重建完成", "state", s.state)
		return
	}
	slog.Error("健康检查: 重建失败，将在下次检查时重试")
}
