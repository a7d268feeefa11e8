package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker 参考市场行情快照
type Ticker struct {
	Bid       decimal.Decimal // 最优买价
	Ask       decimal.Decimal // 最优卖价
	Last      decimal.Decimal // 最新成交价
	Timestamp time.Time
}

// Mid 中间价 (bid+ask)/2
func (t *Ticker) Mid() decimal.Decimal {
	return t.Bid.Add(t.Ask).Div(decimal.NewFromInt(2))
}

// IsComplete 行情是否完整可用（买卖价都为正）
func (t *Ticker) IsComplete() bool {
	return t != nil && t.Bid.IsPositive() && t.Ask.IsPositive()
}
