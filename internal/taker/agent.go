package taker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/betbot/mmbot/internal/agent"
	"github.com/betbot/mmbot/internal/domain"
	"github.com/betbot/mmbot/internal/venue"
)

// Taker 活跃度 agent：每周期抽一个策略，至多合成并提交一笔订单
//
// 价格窗口是它唯一的可变状态，只在自己的调度循环中变更。
type Taker struct {
	pair *domain.TradingPair
	cfg  Config

	md   venue.MarketDataProvider
	exec venue.ExecutionClient

	window *PriceWindow
	synth  *Synthesizer
	sched  *agent.Scheduler

	log *logrus.Entry
}

// NewTaker 创建活跃度 agent
func NewTaker(pair *domain.TradingPair, cfg Config, md venue.MarketDataProvider, exec venue.ExecutionClient) *Taker {
	t := &Taker{
		pair:   pair,
		cfg:    cfg,
		md:     md,
		exec:   exec,
		window: NewPriceWindow(cfg.MomentumLookbackTicks),
		log:    logrus.WithField("component", "taker").WithField("pair", pair.Symbol),
	}
	t.synth = NewSynthesizer(&t.cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	t.sched = agent.NewScheduler(
		t.Name(),
		time.Duration(cfg.IntervalMs)*time.Millisecond,
		cfg.JitterFactor,
		0,
		t.runCycle,
	)
	return t
}

// Name 实现 agent.Agent
func (t *Taker) Name() string {
	return "taker:" + t.pair.Symbol
}

// Start 启动调度循环；执行客户端未认证时视为致命错误
func (t *Taker) Start(ctx context.Context) error {
	if !t.exec.IsAuthenticated() {
		return fmt.Errorf("%s: %w", t.Name(), venue.ErrNotAuthenticated)
	}
	if err := t.sched.Start(ctx); err != nil {
		return err
	}
	t.log.Info("活跃度 agent 已启动")
	return nil
}

// Stop 停止调度；活跃度单不留存，无需撤单
func (t *Taker) Stop(ctx context.Context) error {
	t.sched.Stop()
	t.log.Info("活跃度 agent 已停止")
	return nil
}

// runCycle 一个活跃度周期：取行情 → 更新窗口 → 合成 → 提交
// 无信号 / 数量非正属于正常跳过，只在 Debug 级别记一笔
func (t *Taker) runCycle(ctx context.Context) {
	ticker, err := t.md.FetchTicker(ctx, t.pair.ReferenceSymbol)
	if err != nil {
		t.log.Warnf("行情不可用，跳过本周期: %v", err)
		return
	}
	if !ticker.IsComplete() {
		t.log.Warnf("行情不完整，跳过本周期")
		return
	}

	t.window.Push(ticker.Mid())

	order, strategy, err := t.synth.Synthesize(t.pair.Symbol, ticker, t.window)
	if err != nil {
		if errors.Is(err, ErrNoSignal) || errors.Is(err, ErrZeroSize) {
			t.log.Debugf("策略 %s 本周期不下单: %v", strategy, err)
		} else {
			t.log.Warnf("策略 %s 合成失败: %v", strategy, err)
		}
		return
	}

	order.ClientID = uuid.NewString()
	req := venue.SubmitRequest{
		ClientOrderID: order.ClientID,
		Side:          order.Side,
		BaseAsset:     t.pair.BaseAsset,
		QuoteAsset:    t.pair.QuoteAsset,
		Quantity:      order.Size,
		Price:         order.Price,
		HasPrice:      order.HasPrice,
		Kind:          order.Kind,
		// 活跃度单刻意不带自成交保护：与本方报价 agent 的挂单成交
		// 正是制造盘口活跃度的途径（报价侧仍用 cancel_newest 防止
		// 自己的新旧报价互吃）
		STPMode: venue.STPNone,
	}
	if _, err := t.exec.SubmitOrder(ctx, req); err != nil {
		t.log.Warnf("策略 %s 下单失败: side=%s kind=%s err=%v", strategy, order.Side, order.Kind, err)
		return
	}
	t.log.Debugf("策略 %s 已下单: side=%s kind=%s price=%s size=%s",
		strategy, order.Side, order.Kind, order.Price, order.Size)
}
