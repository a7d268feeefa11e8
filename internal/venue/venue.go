package venue

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/betbot/mmbot/internal/domain"
)

// 可恢复错误：调用方应跳过本周期并正常重排，不得升级为致命错误
var (
	// ErrTickerUnavailable 行情暂不可用（symbol 不存在、瞬时失败、数据不完整）
	ErrTickerUnavailable = errors.New("ticker unavailable")
	// ErrNotAuthenticated 执行客户端未完成认证
	ErrNotAuthenticated = errors.New("execution client not authenticated")
)

// SelfTradePrevention 自成交保护模式
type SelfTradePrevention string

const (
	STPNone         SelfTradePrevention = ""
	STPCancelNewest SelfTradePrevention = "cancel_newest"
	STPCancelOldest SelfTradePrevention = "cancel_oldest"
	STPCancelBoth   SelfTradePrevention = "cancel_both"
)

// Credential 执行客户端认证凭证
type Credential struct {
	APIKey    string
	APISecret string
}

// SubmitRequest 下单请求
type SubmitRequest struct {
	ClientOrderID string // 本地幂等键（uuid）
	Side          domain.Side
	BaseAsset     string
	QuoteAsset    string
	Quantity      decimal.Decimal
	Price         decimal.Decimal // 仅 limit 有效
	HasPrice      bool
	Kind          domain.OrderKind
	STPMode       SelfTradePrevention
}

// MarketDataProvider 参考行情数据源
//
// FetchTicker 返回错误（含 ErrTickerUnavailable）属于正常可恢复结果，
// 调用周期应记录日志后跳过，绝不升级为进程级错误。
type MarketDataProvider interface {
	Initialize(ctx context.Context) error
	FetchTicker(ctx context.Context, marketSymbol string) (*domain.Ticker, error)
}

// ExecutionClient 订单执行客户端
//
// Initialize 失败对该 agent 是致命的（没有认证无法运行）。
// CancelOrders 是批量操作，调用方视角 all-or-nothing：失败意味着
// 这一批订单一个都没有被移除。
type ExecutionClient interface {
	Initialize(ctx context.Context, cred Credential) error
	IsAuthenticated() bool
	SubmitOrder(ctx context.Context, req SubmitRequest) (orderIDs []string, err error)
	CancelOrders(ctx context.Context, ids []string) error
}
