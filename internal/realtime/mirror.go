package realtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/internal/repository"
)

// Snapshot 三张表的内存镜像（整体替换，读方持有的切片不被原地修改）
type Snapshot struct {
	Courses     []model.Course
	Files       []model.CourseFile
	Assignments []model.Assignment
}

// Mirror 最终一致的三表内存镜像 + 活性指示
//
// 任一事件触发三表全量重拉，不做增量补丁——以正确性换效率，
// 在预期数据量下可接受；这是已知的扩展上限。重拉串行执行，
// 最近一次完成者胜出。
//
// lastUpdate 在每个事件到达时加盖时间戳，与重拉是否成功无关，
// 仅作为活性信号：距上次事件超过 window 即视为离线。这是启发式
// 判断，并非传输层连通性检查。首个事件到达前乐观地视为在线。
type Mirror struct {
	repo   *repository.Repository
	broker *Broker
	window time.Duration
	logger *zap.Logger

	mu         sync.RWMutex
	snap       Snapshot
	lastUpdate time.Time
	connected  bool

	now func() time.Time // 测试注入
}

// NewMirror 创建镜像
func NewMirror(repo *repository.Repository, broker *Broker, window time.Duration, logger *zap.Logger) *Mirror {
	return &Mirror{
		repo:      repo,
		broker:    broker,
		window:    window,
		logger:    logger,
		connected: true,
		now:       time.Now,
	}
}

// Start 启动镜像：先做一次全量拉取，然后消费事件流并周期重算活性
// 随 ctx 取消而退出，订阅一并关闭
func (m *Mirror) Start(ctx context.Context, checkInterval time.Duration) {
	if err := m.Refresh(ctx); err != nil {
		m.logger.Warn("镜像初始拉取失败", zap.Error(err))
	}

	events, cancel := m.broker.Subscribe()
	ticker := time.NewTicker(checkInterval)

	go func() {
		defer cancel()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				m.MarkEvent(ev)
				if err := m.Refresh(ctx); err != nil {
					m.logger.Warn("镜像重拉失败",
						zap.String("table", string(ev.Table)),
						zap.Error(err),
					)
				}
			case <-ticker.C:
				m.recompute()
			}
		}
	}()
}

// MarkEvent 记录一次事件到达（无论随后的重拉成败）
func (m *Mirror) MarkEvent(_ Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUpdate = m.now()
	m.connected = true
}

// Refresh 三表全量拉取并整体替换快照
func (m *Mirror) Refresh(ctx context.Context) error {
	courses, err := m.repo.Course.List(ctx)
	if err != nil {
		return err
	}
	files, err := m.repo.CourseFile.List(ctx)
	if err != nil {
		return err
	}
	assignments, err := m.repo.Assignment.List(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.snap = Snapshot{Courses: courses, Files: files, Assignments: assignments}
	m.mu.Unlock()
	return nil
}

// Snapshot 返回当前快照
func (m *Mirror) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Status 返回活性标志与最近事件时间（零值表示尚无事件）
func (m *Mirror) Status() (connected bool, lastUpdate time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected, m.lastUpdate
}

// recompute 按窗口重算活性标志
func (m *Mirror) recompute() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastUpdate.IsZero() {
		m.connected = true // 尚无事件，乐观在线
		return
	}
	m.connected = m.now().Sub(m.lastUpdate) < m.window
}
