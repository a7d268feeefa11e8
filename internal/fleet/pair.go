package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/mmbot/internal/agent"
	"github.com/betbot/mmbot/internal/domain"
)

// DefaultWarmupDelay 报价 agent 先行铺盘到活跃度 agent 启动之间的预热时长
const DefaultWarmupDelay = 2000 * time.Millisecond

// PairOrchestrator 编排一个交易对上的报价 agent 与活跃度 agent
//
// 顺序契约：启动时先起报价 agent，预热一段时间让盘口有挂单，再起活跃度
// agent；停止时先停活跃度 agent（避免对正在消失的盘口继续打单），再停
// 报价 agent（其 Stop 会同步撤掉全部在册订单）。
type PairOrchestrator struct {
	pair   *domain.TradingPair
	quoter agent.Agent
	taker  agent.Agent
	warmup time.Duration

	log *logrus.Entry
}

// NewPairOrchestrator 创建交易对编排器；warmup <= 0 时使用默认预热时长
func NewPairOrchestrator(pair *domain.TradingPair, quoter, taker agent.Agent, warmup time.Duration) *PairOrchestrator {
	if warmup <= 0 {
		warmup = DefaultWarmupDelay
	}
	return &PairOrchestrator{
		pair:   pair,
		quoter: quoter,
		taker:  taker,
		warmup: warmup,
		log:    logrus.WithField("component", "pair").WithField("pair", pair.Symbol),
	}
}

// Symbol 所属交易对
func (p *PairOrchestrator) Symbol() string {
	return p.pair.Symbol
}

// Start 按顺序启动：报价 agent → 预热 → 活跃度 agent
//
// 预热等待对 ctx 取消敏感：取消时回滚已启动的报价 agent 并返回 ctx 错误。
func (p *PairOrchestrator) Start(ctx context.Context) error {
	if err := p.quoter.Start(ctx); err != nil {
		return fmt.Errorf("start %s: %w", p.quoter.Name(), err)
	}

	p.log.Infof("报价 agent 预热 %s 后启动活跃度 agent", p.warmup)
	select {
	case <-time.After(p.warmup):
	case <-ctx.Done():
		_ = p.quoter.Stop(context.Background())
		return ctx.Err()
	}

	if err := p.taker.Start(ctx); err != nil {
		_ = p.quoter.Stop(context.Background())
		return fmt.Errorf("start %s: %w", p.taker.Name(), err)
	}

	p.log.Info("✅ 交易对已启动")
	return nil
}

// Stop 按顺序停止：活跃度 agent → 报价 agent（含同步撤单）
func (p *PairOrchestrator) Stop(ctx context.Context) error {
	if err := p.taker.Stop(ctx); err != nil {
		p.log.Errorf("停止 %s 失败: %v", p.taker.Name(), err)
	}
	if err := p.quoter.Stop(ctx); err != nil {
		p.log.Errorf("停止 %s 失败: %v", p.quoter.Name(), err)
	}
	p.log.Info("交易对已停止")
	return nil
}
