// Package paper 提供 dry-run 模式的执行客户端：不触达交易所，只在内存中登记
package paper

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/betbot/mmbot/internal/venue"
)

var log = logrus.WithField("component", "paper_execution")

// Execution 模拟执行客户端
// 每次下单分配一个本地 id，取消时从登记表移除；用于 dry_run 与测试
type Execution struct {
	mu     sync.Mutex
	orders map[string]venue.SubmitRequest
}

// NewExecution 创建新的模拟执行客户端
func NewExecution() *Execution {
	return &Execution{orders: make(map[string]venue.SubmitRequest)}
}

// Initialize 模拟认证（总是成功）
func (e *Execution) Initialize(ctx context.Context, cred venue.Credential) error {
	log.Info("dry-run 执行客户端已就绪（不会真实下单）")
	return nil
}

// IsAuthenticated 模拟客户端总是已认证
func (e *Execution) IsAuthenticated() bool { return true }

// SubmitOrder 登记订单并返回本地分配的 id
func (e *Execution) SubmitOrder(ctx context.Context, req venue.SubmitRequest) ([]string, error) {
	id := "paper-" + uuid.NewString()

	e.mu.Lock()
	e.orders[id] = req
	e.mu.Unlock()

	if req.HasPrice {
		log.Debugf("[dry-run] %s %s %s @ %s -> %s", req.Side, req.BaseAsset, req.Quantity, req.Price, id)
	} else {
		log.Debugf("[dry-run] %s %s %s (market) -> %s", req.Side, req.BaseAsset, req.Quantity, id)
	}
	return []string{id}, nil
}

// CancelOrders 批量移除登记订单；存在未知 id 时整批报错（all-or-nothing）
func (e *Execution) CancelOrders(ctx context.Context, ids []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		if _, ok := e.orders[id]; !ok {
			return fmt.Errorf("unknown order id: %s", id)
		}
	}
	for _, id := range ids {
		delete(e.orders, id)
	}
	return nil
}

// OpenOrderCount 当前登记中的订单数（测试用）
func (e *Execution) OpenOrderCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.orders)
}
