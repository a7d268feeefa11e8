package taker

import "github.com/shopspring/decimal"

// PriceWindow 固定容量的 mid 价滑动窗口，最旧样本先被挤出。
// 只属于一个活跃度 agent，不做并发保护。
type PriceWindow struct {
	capacity int
	prices   []decimal.Decimal
}

// NewPriceWindow 创建窗口，capacity 不足 2 时按 2 处理
func NewPriceWindow(capacity int) *PriceWindow {
	if capacity < 2 {
		capacity = 2
	}
	return &PriceWindow{capacity: capacity}
}

// Push 记录一个 mid 样本
func (w *PriceWindow) Push(mid decimal.Decimal) {
	if !mid.IsPositive() {
		return
	}
	w.prices = append(w.prices, mid)
	if len(w.prices) > w.capacity {
		w.prices = w.prices[1:]
	}
}

// Len 当前样本数
func (w *PriceWindow) Len() int { return len(w.prices) }

// Full 窗口是否已填满
func (w *PriceWindow) Full() bool { return len(w.prices) >= w.capacity }

// Oldest 最早样本；窗口为空时 ok=false
func (w *PriceWindow) Oldest() (decimal.Decimal, bool) {
	if len(w.prices) == 0 {
		return decimal.Zero, false
	}
	return w.prices[0], true
}

// Latest 最新样本；窗口为空时 ok=false
func (w *PriceWindow) Latest() (decimal.Decimal, bool) {
	if len(w.prices) == 0 {
		return decimal.Zero, false
	}
	return w.prices[len(w.prices)-1], true
}

// Mean 窗口均值；窗口为空时返回 0
func (w *PriceWindow) Mean() decimal.Decimal {
	if len(w.prices) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range w.prices {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(len(w.prices))))
}
