package taker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/mmbot/internal/domain"
	"github.com/betbot/mmbot/internal/venue"
	"github.com/betbot/mmbot/internal/venue/paper"
)

type fakeMarketData struct {
	ticker *domain.Ticker
	err    error
}

func (f *fakeMarketData) Initialize(ctx context.Context) error { return nil }

func (f *fakeMarketData) FetchTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ticker, nil
}

func takerUnderTest(md venue.MarketDataProvider, exec venue.ExecutionClient) *Taker {
	cfg := Config{}
	cfg.Defaults()
	cfg.Strategies = StrategyProbabilities{Random: 1}
	pair := &domain.TradingPair{
		Symbol:          "ABC-USDT",
		BaseAsset:       "ABC",
		QuoteAsset:      "USDT",
		ReferenceSymbol: "ABCUSDT",
	}
	return NewTaker(pair, cfg, md, exec)
}

func TestTakerCycleSubmitsAtMostOneOrder(t *testing.T) {
	md := &fakeMarketData{ticker: &domain.Ticker{
		Bid:       decimal.RequireFromString("100.00"),
		Ask:       decimal.RequireFromString("100.10"),
		Last:      decimal.RequireFromString("100.05"),
		Timestamp: time.Now(),
	}}
	exec := paper.NewExecution()
	tk := takerUnderTest(md, exec)

	tk.runCycle(context.Background())
	if exec.OpenOrderCount() != 1 {
		t.Fatalf("一个周期至多提交一笔订单，实际 %d", exec.OpenOrderCount())
	}
}

// captureExecution 记录提交请求的执行客户端测试替身
type captureExecution struct {
	reqs []venue.SubmitRequest
}

func (c *captureExecution) Initialize(ctx context.Context, cred venue.Credential) error { return nil }
func (c *captureExecution) IsAuthenticated() bool                                       { return true }

func (c *captureExecution) SubmitOrder(ctx context.Context, req venue.SubmitRequest) ([]string, error) {
	c.reqs = append(c.reqs, req)
	return []string{"venue-1"}, nil
}

func (c *captureExecution) CancelOrders(ctx context.Context, ids []string) error { return nil }

func TestTakerSubmitsWithoutSelfTradePrevention(t *testing.T) {
	// 活跃度单与本方报价成交是预期行为，不得带自成交保护
	md := &fakeMarketData{ticker: &domain.Ticker{
		Bid:       decimal.RequireFromString("100.00"),
		Ask:       decimal.RequireFromString("100.10"),
		Last:      decimal.RequireFromString("100.05"),
		Timestamp: time.Now(),
	}}
	exec := &captureExecution{}
	tk := takerUnderTest(md, exec)

	tk.runCycle(context.Background())
	if len(exec.reqs) != 1 {
		t.Fatalf("应提交一笔订单，实际 %d", len(exec.reqs))
	}
	if exec.reqs[0].STPMode != venue.STPNone {
		t.Fatalf("活跃度单 STP 模式 = %q，期望不带自成交保护", exec.reqs[0].STPMode)
	}
	if exec.reqs[0].ClientOrderID == "" {
		t.Fatalf("提交请求必须携带本地幂等键")
	}
}

func TestTakerCycleSkipsOnTickerUnavailable(t *testing.T) {
	md := &fakeMarketData{err: venue.ErrTickerUnavailable}
	exec := paper.NewExecution()
	tk := takerUnderTest(md, exec)

	tk.runCycle(context.Background())
	if exec.OpenOrderCount() != 0 {
		t.Fatalf("行情不可用必须整周期跳过，实际提交 %d 笔", exec.OpenOrderCount())
	}
}

func TestTakerCycleFeedsPriceWindow(t *testing.T) {
	md := &fakeMarketData{ticker: &domain.Ticker{
		Bid:       decimal.RequireFromString("100.00"),
		Ask:       decimal.RequireFromString("100.10"),
		Last:      decimal.RequireFromString("100.05"),
		Timestamp: time.Now(),
	}}
	tk := takerUnderTest(md, paper.NewExecution())

	for i := 0; i < 3; i++ {
		tk.runCycle(context.Background())
	}
	if tk.window.Len() != 3 {
		t.Fatalf("每个周期应记录一个 mid 样本，实际 %d", tk.window.Len())
	}
	latest, _ := tk.window.Latest()
	if !latest.Equal(decimal.RequireFromString("100.05")) {
		t.Fatalf("窗口样本应为 mid=100.05，实际 %s", latest)
	}
}
