package maker

import (
	"math"

	"github.com/shopspring/decimal"
)

// VolatilityWindow 基于最近 mid 价的滑动窗口估计相对波动率
// （样本标准差 / 均值）。容量固定，最旧样本先被挤出。
// 只属于一个报价 agent，不做并发保护。
type VolatilityWindow struct {
	capacity int
	mids     []float64
}

// NewVolatilityWindow 创建窗口，capacity 不足 2 时按 2 处理
func NewVolatilityWindow(capacity int) *VolatilityWindow {
	if capacity < 2 {
		capacity = 2
	}
	return &VolatilityWindow{capacity: capacity}
}

// Push 记录一个 mid 样本
func (w *VolatilityWindow) Push(mid decimal.Decimal) {
	v, _ := mid.Float64()
	if v <= 0 {
		return
	}
	w.mids = append(w.mids, v)
	if len(w.mids) > w.capacity {
		w.mids = w.mids[1:]
	}
}

// Len 当前样本数
func (w *VolatilityWindow) Len() int { return len(w.mids) }

// Estimate 相对波动率估计；样本不足 2 时返回 0
func (w *VolatilityWindow) Estimate() decimal.Decimal {
	n := len(w.mids)
	if n < 2 {
		return decimal.Zero
	}

	var sum float64
	for _, v := range w.mids {
		sum += v
	}
	mean := sum / float64(n)
	if mean <= 0 {
		return decimal.Zero
	}

	var variance float64
	for _, v := range w.mids {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n - 1)

	return decimal.NewFromFloat(math.Sqrt(variance) / mean)
}
