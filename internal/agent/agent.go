package agent

import "context"

// Agent 交易代理的统一生命周期契约
//
// 每个 agent 内部由自己的 Scheduler 驱动周期；Start/Stop 之外不暴露任何
// 可变状态，agent 之间不共享数据。
type Agent interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
