package syncgroup

import (
	"sync"
)

// SyncGroup 是 sync.WaitGroup 的包装器，简化 goroutine 生命周期管理
// 自动管理 Add() 和 Done()，减少遗漏 Done() 的风险
//
// 用法：先 Add() 若干函数，再 Run() 并发启动，最后 Wait() 等待全部完成。
// Run() 之后组可以复用：再次 Add()/Run() 启动新一批。
type SyncGroup struct {
	wg sync.WaitGroup

	mu      sync.Mutex
	pending []func()
}

// NewSyncGroup 创建新的 SyncGroup
func NewSyncGroup() *SyncGroup {
	return &SyncGroup{}
}

// Add 添加一个待启动的函数
func (g *SyncGroup) Add(fn func()) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.pending = append(g.pending, fn)
	g.mu.Unlock()
}

// Run 并发启动所有已添加的函数，并清空待启动列表
func (g *SyncGroup) Run() {
	g.mu.Lock()
	fns := g.pending
	g.pending = nil
	g.mu.Unlock()

	for _, fn := range fns {
		g.wg.Add(1)
		go func(do func()) {
			defer g.wg.Done()
			do()
		}(fn)
	}
}

// Wait 等待所有已启动的 goroutine 完成
func (g *SyncGroup) Wait() {
	g.wg.Wait()
}
