package fleet

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/mmbot/internal/venue"
	"github.com/betbot/mmbot/pkg/syncgroup"
)

// Coordinator 管理全部交易对编排器的并发启停
//
// 启停均为扇出 + 全收（等所有交易对完成才算整批结束），但不做回滚：
// 某个交易对启动失败只记日志，其余交易对照常运行。
type Coordinator struct {
	md    venue.MarketDataProvider
	pairs []*PairOrchestrator

	log *logrus.Entry
}

// NewCoordinator 创建 fleet 协调器
func NewCoordinator(md venue.MarketDataProvider, pairs []*PairOrchestrator) *Coordinator {
	return &Coordinator{
		md:    md,
		pairs: pairs,
		log:   logrus.WithField("component", "fleet"),
	}
}

// Start 初始化行情数据源后并发启动全部交易对
//
// 行情初始化失败对整个 fleet 是致命的；交易对启动失败只记日志不回滚。
// 全部交易对都启动失败时返回错误（fleet 没有任何工作可做）。
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.md.Initialize(ctx); err != nil {
		return errors.Wrap(err, "initialize market data provider")
	}

	var started atomic.Int32
	group := syncgroup.NewSyncGroup()
	for _, p := range c.pairs {
		p := p
		group.Add(func() {
			if err := p.Start(ctx); err != nil {
				c.log.Errorf("交易对 %s 启动失败（不影响其它交易对）: %v", p.Symbol(), err)
				return
			}
			started.Add(1)
		})
	}
	group.Run()
	group.Wait()

	if len(c.pairs) > 0 && started.Load() == 0 {
		return errors.New("no pair started successfully")
	}
	c.log.Infof("🚀 fleet 已启动: %d/%d 个交易对", started.Load(), len(c.pairs))
	return nil
}

// Stop 并发停止全部交易对，等待全部完成
func (c *Coordinator) Stop(ctx context.Context) error {
	group := syncgroup.NewSyncGroup()
	for _, p := range c.pairs {
		p := p
		group.Add(func() {
			_ = p.Stop(ctx)
		})
	}
	group.Run()
	group.Wait()

	c.log.Info("fleet 已停止")
	return nil
}
