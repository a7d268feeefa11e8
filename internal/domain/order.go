package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side 订单方向
type Side string

const (
	SideBid Side = "bid" // 买
	SideAsk Side = "ask" // 卖
)

// Opposite 返回对手方向
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// OrderKind 订单类型
type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "new"      // 刚提交，尚未确认开放
	OrderStatusOpen     OrderStatus = "open"     // 开放中
	OrderStatusClosed   OrderStatus = "closed"   // 已完结
	OrderStatusCanceled OrderStatus = "canceled" // 已取消
)

// Order 订单领域模型
//
// 下单前的身份是 ClientID（本地生成）；成交所接受后身份是 VenueID。
// 价格只对 limit 订单有意义（HasPrice），market 订单 Price 为零值。
type Order struct {
	ClientID  string          // 本地订单 ID（uuid）
	VenueID   string          // 交易所分配的订单 ID（下单成功后才有）
	Pair      string          // 交易对 symbol
	Side      Side            // 订单方向
	Kind      OrderKind       // limit / market
	Price     decimal.Decimal // 订单价格（仅 limit）
	HasPrice  bool            // Price 是否有效
	Size      decimal.Decimal // 订单数量（> 0）
	Level     int             // 阶梯层级（仅报价单）
	Status    OrderStatus     // 订单状态
	CreatedAt time.Time       // 创建时间
}

// IsLimit 是否为限价单
func (o *Order) IsLimit() bool {
	return o.Kind == OrderKindLimit
}

// OrderMatch 一个在册订单与一个候选订单的比较结果（只做派生计算，不持久化）
type OrderMatch struct {
	PriceDeviation decimal.Decimal // |Δprice| / resting.price（任一方无价格时为 1.0）
	SizeDeviation  decimal.Decimal // |Δsize| / resting.size
}

// Sum 偏差之和（匹配优选用，不加权）
func (m OrderMatch) Sum() decimal.Decimal {
	return m.PriceDeviation.Add(m.SizeDeviation)
}

// NewOrderMatch 计算在册订单 resting 与候选订单 candidate 的偏差
func NewOrderMatch(resting, candidate *Order) OrderMatch {
	m := OrderMatch{}

	// 任一方没有价格（market 单或价格非正）时，价格偏差按 1.0 处理
	if !resting.HasPrice || !candidate.HasPrice || !resting.Price.IsPositive() {
		m.PriceDeviation = decimal.NewFromInt(1)
	} else {
		m.PriceDeviation = resting.Price.Sub(candidate.Price).Abs().Div(resting.Price)
	}

	if !resting.Size.IsPositive() {
		m.SizeDeviation = decimal.NewFromInt(1)
	} else {
		m.SizeDeviation = resting.Size.Sub(candidate.Size).Abs().Div(resting.Size)
	}
	return m
}
