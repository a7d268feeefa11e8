package agent

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// CycleFunc 一个调度周期的执行体
// 周期内部的可恢复失败自行消化（记日志后返回），返回即视为本周期完成
type CycleFunc func(ctx context.Context)

// Scheduler 自我重排的抖动定时器循环
//
// 状态机：stopped → scheduled → running → scheduled → … → stopped。
// 每个周期完成后（无论成功或已处理的失败）用新抖动的间隔重新排期，
// 除非期间被 Stop。Stop 取消待触发的定时器；已在执行的周期会运行到
// 结束（不会被打断），Stop 返回时保证没有在途周期。
type Scheduler struct {
	name         string
	interval     time.Duration
	jitter       float64 // 间隔抖动幅度，如 0.2 表示 ±20%
	initialDelay time.Duration
	cycle        CycleFunc

	mu      sync.Mutex
	running bool
	timer   *time.Timer
	ctx     context.Context
	rng     *rand.Rand

	// cycleMu 在周期执行期间持有：保证同一 agent 的周期绝不重入，
	// 也让 Stop 能等到在途周期结束
	cycleMu sync.Mutex
}

// NewScheduler 创建调度器
func NewScheduler(name string, interval time.Duration, jitter float64, initialDelay time.Duration, cycle CycleFunc) *Scheduler {
	return &Scheduler{
		name:         name,
		interval:     interval,
		jitter:       jitter,
		initialDelay: initialDelay,
		cycle:        cycle,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand 注入随机源（测试用，需在 Start 之前调用）
func (s *Scheduler) SetRand(rng *rand.Rand) {
	s.mu.Lock()
	s.rng = rng
	s.mu.Unlock()
}

// Start 进入 scheduled 状态，initialDelay 后触发第一个周期
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler %s already running", s.name)
	}
	s.running = true
	s.ctx = ctx
	s.schedule(s.initialDelay)
	return nil
}

// Stop 取消待触发的周期并等待在途周期结束；重复调用是幂等的
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	// 等待在途周期完成（周期不可中断，见 fire）
	s.cycleMu.Lock()
	s.cycleMu.Unlock() //nolint:staticcheck // 空临界区即「等待在途周期」
}

// IsRunning 当前是否处于 scheduled/running 状态
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// schedule 排入下一次触发；调用方必须持有 s.mu
func (s *Scheduler) schedule(delay time.Duration) {
	s.timer = time.AfterFunc(delay, s.fire)
}

// fire 执行一个周期并重排下一次
func (s *Scheduler) fire() {
	s.cycleMu.Lock()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.cycleMu.Unlock()
		return
	}
	ctx := s.ctx
	s.mu.Unlock()

	s.cycle(ctx)
	s.cycleMu.Unlock()

	s.mu.Lock()
	if s.running {
		s.schedule(s.nextDelay())
	}
	s.mu.Unlock()
}

// nextDelay 计算抖动后的下一次间隔：interval × (1 + uniform(−jitter, +jitter))
// 调用方必须持有 s.mu
func (s *Scheduler) nextDelay() time.Duration {
	if s.jitter <= 0 {
		return s.interval
	}
	factor := 1 + (s.rng.Float64()*2-1)*s.jitter
	if factor < 0 {
		factor = 0
	}
	return time.Duration(float64(s.interval) * factor)
}
