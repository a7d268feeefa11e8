package maker

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/betbot/mmbot/internal/domain"
)

func ladderConfig() *Config {
	cfg := &Config{}
	cfg.Defaults()
	cfg.SizeRandomization = 0 // 测试里用确定数量
	return cfg
}

func TestGenerateLadderTouchPrices(t *testing.T) {
	// 参考盘口 bid=100.00 ask=100.10 → mid=100.05；
	// baseSpread=0.001, vol=0.01, mult=1.5 → spread=0.001015；
	// 卖一 = 100.05×(1+0.0005075) = 100.10078（5 位舍入）
	// 买一 = 100.05×(1−0.0005075) = 99.99922
	cfg := ladderConfig()
	cfg.BaseSpreadPct = 0.001
	cfg.SpreadVolatilityMultiplier = 1.5
	cfg.DepthLevels = 1
	cfg.BaseSizePerLevel = 1.0

	mid := decimal.RequireFromString("100.05")
	vol := decimal.RequireFromString("0.01")
	orders, err := GenerateLadder("ABC-USDT", cfg, mid, vol, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("GenerateLadder: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("深度 1 应产出 2 笔订单，实际 %d", len(orders))
	}

	var bid, ask *domain.Order
	for _, o := range orders {
		switch o.Side {
		case domain.SideBid:
			bid = o
		case domain.SideAsk:
			ask = o
		}
	}
	if bid == nil || ask == nil {
		t.Fatalf("应两侧各一笔：%+v", orders)
	}

	if got, want := bid.Price.String(), "99.99922"; got != want {
		t.Errorf("买一 = %s，期望 %s", got, want)
	}
	if got, want := ask.Price.String(), "100.10078"; got != want {
		t.Errorf("卖一 = %s，期望 %s", got, want)
	}
	if !bid.Size.Equal(decimal.NewFromInt(1)) {
		t.Errorf("第 0 层数量 = %s，期望 1", bid.Size)
	}
}

func TestGenerateLadderLevelShape(t *testing.T) {
	cfg := ladderConfig()
	cfg.DepthLevels = 3
	cfg.BaseSizePerLevel = 2.0

	mid := decimal.NewFromInt(100)
	orders, err := GenerateLadder("ABC-USDT", cfg, mid, decimal.Zero, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("GenerateLadder: %v", err)
	}
	if len(orders) != 6 {
		t.Fatalf("深度 3 应产出 6 笔订单，实际 %d", len(orders))
	}

	var bids, asks []*domain.Order
	for _, o := range orders {
		if o.Side == domain.SideBid {
			bids = append(bids, o)
		} else {
			asks = append(asks, o)
		}
	}

	// 买侧价格逐层下行，卖侧逐层上行，绝不交叉
	for i := 1; i < len(bids); i++ {
		if !bids[i].Price.LessThan(bids[i-1].Price) {
			t.Errorf("买侧第 %d 层价格 %s 未低于上一层 %s", i, bids[i].Price, bids[i-1].Price)
		}
	}
	for i := 1; i < len(asks); i++ {
		if !asks[i].Price.GreaterThan(asks[i-1].Price) {
			t.Errorf("卖侧第 %d 层价格 %s 未高于上一层 %s", i, asks[i].Price, asks[i-1].Price)
		}
	}
	for i := range bids {
		if !bids[i].Price.LessThan(asks[i].Price) {
			t.Errorf("第 %d 层买 %s ≥ 卖 %s，阶梯交叉", i, bids[i].Price, asks[i].Price)
		}
	}

	// 数量按层系数放大：2.0 × (1 + 0.1i)
	wantSizes := []string{"2", "2.2", "2.4"}
	for i, want := range wantSizes {
		if !bids[i].Size.Equal(decimal.RequireFromString(want)) {
			t.Errorf("第 %d 层数量 = %s，期望 %s", i, bids[i].Size, want)
		}
	}
}

func TestGenerateLadderCrossedBook(t *testing.T) {
	cfg := ladderConfig()
	cfg.BaseSpreadPct = 0.001

	tests := []struct {
		name string
		mid  decimal.Decimal
		vol  decimal.Decimal
	}{
		{"mid 非正", decimal.Zero, decimal.Zero},
		{"负波动率把价差压成负值", decimal.NewFromInt(100), decimal.NewFromInt(-2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := GenerateLadder("ABC-USDT", cfg, tt.mid, tt.vol, rand.New(rand.NewSource(1)))
			if !errors.Is(err, ErrCrossedBook) {
				t.Fatalf("期望 ErrCrossedBook，实际 err=%v orders=%v", err, orders)
			}
			if len(orders) != 0 {
				t.Fatalf("交叉时不应产出任何订单，实际 %d", len(orders))
			}
		})
	}
}

func TestGenerateLadderDiscardsNonPositivePrice(t *testing.T) {
	// 极端价差让深层买价跌破 0：该层买单静默丢弃，卖单保留
	cfg := ladderConfig()
	cfg.BaseSpreadPct = 1.9
	cfg.DepthLevels = 2

	mid := decimal.RequireFromString("0.0001")
	orders, err := GenerateLadder("ABC-USDT", cfg, mid, decimal.Zero, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("GenerateLadder: %v", err)
	}

	for _, o := range orders {
		if !o.Price.IsPositive() {
			t.Errorf("产出了非正价格订单: %+v", o)
		}
	}
	var deepBids int
	for _, o := range orders {
		if o.Side == domain.SideBid && o.Level == 1 {
			deepBids++
		}
	}
	if deepBids != 0 {
		t.Errorf("价格跌破 0 的第 1 层买单应被丢弃")
	}
}

func TestGenerateLadderSizeRandomizationBounds(t *testing.T) {
	cfg := ladderConfig()
	cfg.DepthLevels = 1
	cfg.BaseSizePerLevel = 1.0
	cfg.SizeRandomization = 0.2

	lo := decimal.RequireFromString("0.8")
	hi := decimal.RequireFromString("1.2")
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		orders, err := GenerateLadder("ABC-USDT", cfg, decimal.NewFromInt(100), decimal.Zero, rng)
		if err != nil {
			t.Fatalf("GenerateLadder: %v", err)
		}
		for _, o := range orders {
			if o.Size.LessThan(lo) || o.Size.GreaterThan(hi) {
				t.Fatalf("数量 %s 超出 ±20%% 随机化范围", o.Size)
			}
		}
	}
}
