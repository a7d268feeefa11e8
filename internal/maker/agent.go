package maker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/mmbot/internal/agent"
	"github.com/betbot/mmbot/internal/domain"
	"github.com/betbot/mmbot/internal/venue"
)

// Quoter 报价 agent：每周期重算目标阶梯并与在册订单对账
//
// 在册订单簿（RestingBook）是它唯一的可变状态，只在自己的调度循环
// 和 Stop 中变更（Scheduler.Stop 保证两者不会并发）。
type Quoter struct {
	pair *domain.TradingPair
	cfg  Config

	md   venue.MarketDataProvider
	exec venue.ExecutionClient

	book  *RestingBook
	vol   *VolatilityWindow
	rec   *Reconciler
	sched *agent.Scheduler
	rng   *rand.Rand

	log *logrus.Entry
}

// NewQuoter 创建报价 agent
func NewQuoter(pair *domain.TradingPair, cfg Config, md venue.MarketDataProvider, exec venue.ExecutionClient) *Quoter {
	q := &Quoter{
		pair: pair,
		cfg:  cfg,
		md:   md,
		exec: exec,
		book: NewRestingBook(),
		vol:  NewVolatilityWindow(cfg.VolatilityWindowTicks),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		log:  logrus.WithField("component", "quoter").WithField("pair", pair.Symbol),
	}
	q.rec = NewReconciler(pair, exec, &cfg, q.rng)
	q.sched = agent.NewScheduler(
		q.Name(),
		time.Duration(cfg.IntervalMs)*time.Millisecond,
		cfg.JitterFactor,
		0,
		q.runCycle,
	)
	return q
}

// Name 实现 agent.Agent
func (q *Quoter) Name() string {
	return "quoter:" + q.pair.Symbol
}

// Start 启动调度循环；执行客户端未认证时视为致命错误
func (q *Quoter) Start(ctx context.Context) error {
	if !q.exec.IsAuthenticated() {
		return fmt.Errorf("%s: %w", q.Name(), venue.ErrNotAuthenticated)
	}
	if err := q.sched.Start(ctx); err != nil {
		return err
	}
	q.log.Info("报价 agent 已启动")
	return nil
}

// Stop 停止调度并同步撤销全部在册订单、清空订单簿
func (q *Quoter) Stop(ctx context.Context) error {
	q.sched.Stop()

	ids := q.book.IDs()
	if len(ids) > 0 {
		if err := q.exec.CancelOrders(ctx, ids); err != nil {
			q.log.Errorf("停止时撤销在册订单失败（%d 笔）: %v", len(ids), err)
		} else {
			q.log.Infof("停止时已撤销 %d 笔在册订单", len(ids))
		}
	}
	q.book.Clear()
	q.log.Info("报价 agent 已停止")
	return nil
}

// RestingOrderCount 当前在册订单数（供编排层/测试观察）
func (q *Quoter) RestingOrderCount() int {
	return q.book.Len()
}

// runCycle 一个报价周期：取行情 → 更新波动率 → 生成阶梯 → 对账
// 所有可恢复失败只记日志并跳过，调度器会正常重排下一周期
func (q *Quoter) runCycle(ctx context.Context) {
	ticker, err := q.md.FetchTicker(ctx, q.pair.ReferenceSymbol)
	if err != nil {
		q.log.Warnf("行情不可用，跳过本周期: %v", err)
		return
	}
	if !ticker.IsComplete() {
		q.log.Warnf("行情不完整，跳过本周期")
		return
	}

	mid := ticker.Mid()
	q.vol.Push(mid)

	desired, err := GenerateLadder(q.pair.Symbol, &q.cfg, mid, q.vol.Estimate(), q.rng)
	if err != nil {
		q.log.Warnf("阶梯生成失败，跳过本周期: %v", err)
		return
	}

	result := q.rec.Reconcile(ctx, q.book, desired, q.cfg.CancelReplaceRatio)
	q.log.Debugf("对账完成: keep=%d cancel=%d place=%d cancelFail=%d placeFail=%d resting=%d",
		result.Kept, result.Canceled, result.Placed, result.CancelFailed, result.PlaceFailed, q.book.Len())
}
