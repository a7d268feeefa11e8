package maker

import (
	"errors"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/mmbot/internal/domain"
)

// ErrCrossedBook 加宽一次后买一仍不低于卖一，本周期放弃报价
var ErrCrossedBook = errors.New("crossed ladder after widening")

const (
	// priceScale / sizeScale 出单前的最终舍入精度
	priceScale = 5
	sizeScale  = 8

	// crossWideningFactor 盘口交叉时对价差做一次对称加宽的固定系数
	crossWideningFactor = 1.5
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// GenerateLadder 由参考中间价生成对称的双边报价阶梯
//
// spread = baseSpreadPct × (1 + vol × volMultiplier)；
// 卖一 = mid × (1 + spread/2)，买一 = mid × (1 − spread/2)；
// 第 i 层（i 从 0 起）：levelFactor = 1 + 0.1×i，
// increment = (卖一 − 买一)/2，
// bid_i = 买一 − i×increment×levelFactor，ask_i = 卖一 + i×increment×levelFactor，
// size_i = baseSize × levelFactor × (1 ± sizeRandomization 均匀抽样)。
// 价格或数量非正的层静默丢弃；最后一步价格舍入到 5 位小数、数量 8 位。
func GenerateLadder(pairSymbol string, cfg *Config, mid decimal.Decimal, vol decimal.Decimal, rng *rand.Rand) ([]*domain.Order, error) {
	if !mid.IsPositive() {
		return nil, ErrCrossedBook
	}

	spread := decimal.NewFromFloat(cfg.BaseSpreadPct).
		Mul(one.Add(vol.Mul(decimal.NewFromFloat(cfg.SpreadVolatilityMultiplier))))

	bestBid, bestAsk := touchPrices(mid, spread)
	if bestBid.GreaterThanOrEqual(bestAsk) {
		// 病态价差：对称加宽一次再试
		spread = spread.Mul(decimal.NewFromFloat(crossWideningFactor))
		bestBid, bestAsk = touchPrices(mid, spread)
		if bestBid.GreaterThanOrEqual(bestAsk) {
			return nil, ErrCrossedBook
		}
	}

	increment := bestAsk.Sub(bestBid).Div(two)
	baseSize := decimal.NewFromFloat(cfg.BaseSizePerLevel)
	now := time.Now()

	orders := make([]*domain.Order, 0, cfg.DepthLevels*2)
	for i := 0; i < cfg.DepthLevels; i++ {
		levelFactor := decimal.NewFromFloat(1 + 0.1*float64(i))
		offset := increment.Mul(decimal.NewFromInt(int64(i))).Mul(levelFactor)

		bidPrice := bestBid.Sub(offset)
		askPrice := bestAsk.Add(offset)

		size := baseSize.Mul(levelFactor).Mul(randomizedFactor(rng, cfg.SizeRandomization))

		if size.IsPositive() {
			size = size.Round(sizeScale)
		}
		if bidPrice.IsPositive() && size.IsPositive() {
			orders = append(orders, &domain.Order{
				Pair:      pairSymbol,
				Side:      domain.SideBid,
				Kind:      domain.OrderKindLimit,
				Price:     bidPrice.Round(priceScale),
				HasPrice:  true,
				Size:      size,
				Level:     i,
				CreatedAt: now,
			})
		}
		if askPrice.IsPositive() && size.IsPositive() {
			orders = append(orders, &domain.Order{
				Pair:      pairSymbol,
				Side:      domain.SideAsk,
				Kind:      domain.OrderKindLimit,
				Price:     askPrice.Round(priceScale),
				HasPrice:  true,
				Size:      size,
				Level:     i,
				CreatedAt: now,
			})
		}
	}
	return orders, nil
}

func touchPrices(mid, spread decimal.Decimal) (bid, ask decimal.Decimal) {
	half := spread.Div(two)
	ask = mid.Mul(one.Add(half))
	bid = mid.Mul(one.Sub(half))
	return bid, ask
}

// randomizedFactor 返回 1 ± randomization 区间内的均匀随机系数
func randomizedFactor(rng *rand.Rand, randomization float64) decimal.Decimal {
	if randomization <= 0 {
		return one
	}
	f := 1 + (rng.Float64()*2-1)*randomization
	return decimal.NewFromFloat(f)
}
