package maker

import (
	"sync"

	"github.com/betbot/mmbot/internal/domain"
)

// RestingBook 报价 agent 当前认为仍挂在盘口的订单
//
// 只保存 venueID → 订单 的单向映射，另维护插入顺序以便对账时按
// 最旧优先遍历。撤单确认与移除在同一步完成，不存在按值反查。
// 整个结构只属于一个报价 agent，只在它的调度循环（及其 Stop）中变更。
type RestingBook struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	ids    []string // 插入顺序
}

// NewRestingBook 创建空的在册订单簿
func NewRestingBook() *RestingBook {
	return &RestingBook{
		orders: make(map[string]*domain.Order),
	}
}

// Add 登记一笔新挂出的订单（以 VenueID 为键）
func (b *RestingBook) Add(order *domain.Order) {
	if order == nil || order.VenueID == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.orders[order.VenueID]; !exists {
		b.ids = append(b.ids, order.VenueID)
	}
	b.orders[order.VenueID] = order
}

// Remove 移除订单，返回是否存在
func (b *RestingBook) Remove(venueID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.orders[venueID]; !exists {
		return false
	}
	delete(b.orders, venueID)
	for i, id := range b.ids {
		if id == venueID {
			b.ids = append(b.ids[:i], b.ids[i+1:]...)
			break
		}
	}
	return true
}

// Get 按 id 取订单
func (b *RestingBook) Get(venueID string) (*domain.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.orders[venueID]
	return o, ok
}

// Orders 按插入顺序（最旧优先）返回所有在册订单
func (b *RestingBook) Orders() []*domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*domain.Order, 0, len(b.ids))
	for _, id := range b.ids {
		out = append(out, b.orders[id])
	}
	return out
}

// IDs 按插入顺序返回所有 venueID
func (b *RestingBook) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.ids))
	copy(out, b.ids)
	return out
}

// Len 当前在册订单数
func (b *RestingBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

// Clear 清空（agent 停止时调用）
func (b *RestingBook) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = make(map[string]*domain.Order)
	b.ids = nil
}
