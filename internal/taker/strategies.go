package taker

import (
	"errors"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/betbot/mmbot/internal/domain"
)

// StrategyName 活跃度策略名
type StrategyName string

const (
	StrategyRandom        StrategyName = "random"
	StrategyMomentum      StrategyName = "momentum"
	StrategyMeanReversion StrategyName = "meanReversion"
	StrategyPassiveLimit  StrategyName = "passiveLimit"
)

var (
	// ErrNoSignal 均值回归偏离未达阈值，本周期明确不下单（不是错误路径，
	// 与抽样回退 random 是两套独立的无信号策略）
	ErrNoSignal = errors.New("no actionable signal this cycle")

	// ErrZeroSize 随机化后的数量非正，丢弃本周期订单
	ErrZeroSize = errors.New("non-positive order size after randomization")
)

const (
	priceScale = 5
	sizeScale  = 8
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
	bps = decimal.NewFromInt(10000)
)

// ChooseStrategy 按固定顺序 {random, momentum, meanReversion, passiveLimit}
// 做累积概率抽样；抽样值落在四者合计之外（概率配错没凑满 1）时回退 random
func ChooseStrategy(rng *rand.Rand, p StrategyProbabilities) StrategyName {
	draw := rng.Float64()

	cum := p.Random
	if draw < cum {
		return StrategyRandom
	}
	cum += p.Momentum
	if draw < cum {
		return StrategyMomentum
	}
	cum += p.MeanReversion
	if draw < cum {
		return StrategyMeanReversion
	}
	cum += p.PassiveLimit
	if draw < cum {
		return StrategyPassiveLimit
	}
	return StrategyRandom
}

// Synthesizer 按抽中的策略合成至多一笔订单
type Synthesizer struct {
	cfg *Config
	rng *rand.Rand
}

// NewSynthesizer 创建合成器
func NewSynthesizer(cfg *Config, rng *rand.Rand) *Synthesizer {
	return &Synthesizer{cfg: cfg, rng: rng}
}

// Synthesize 执行一次策略抽样并合成订单
//
// 返回 ErrNoSignal / ErrZeroSize 表示本周期明确跳过（调用方记日志后正常
// 重排即可）。非被动策略的 limit/market 抽样先于定价；限价非正时降级为
// market 单而非失败；最终守卫保证买单限价不高于卖一、卖单限价不低于买一。
func (s *Synthesizer) Synthesize(pairSymbol string, ticker *domain.Ticker, window *PriceWindow) (*domain.Order, StrategyName, error) {
	strategy := ChooseStrategy(s.rng, s.cfg.Strategies)

	size := s.randomizedSize()
	if !size.IsPositive() {
		return nil, strategy, ErrZeroSize
	}

	var side domain.Side
	switch strategy {
	case StrategyMomentum:
		side = s.momentumSide(window)
	case StrategyMeanReversion:
		var ok bool
		side, ok = s.meanReversionSide(window)
		if !ok {
			return nil, strategy, ErrNoSignal
		}
	default: // random 与 passiveLimit 都掷硬币选方向
		side = s.coinFlipSide()
	}

	order := &domain.Order{
		Pair:      pairSymbol,
		Side:      side,
		Size:      size.Round(sizeScale),
		CreatedAt: time.Now(),
	}

	if strategy == StrategyPassiveLimit {
		order.Kind = domain.OrderKindLimit
		order.Price = s.passivePrice(side, ticker)
		order.HasPrice = true
	} else {
		// 限价 / 市价抽样独立于定价，先抽
		if s.rng.Float64() < s.cfg.MarketOrderProbability {
			order.Kind = domain.OrderKindMarket
		} else {
			order.Kind = domain.OrderKindLimit
			order.Price = s.aggressivePrice(side, ticker)
			order.HasPrice = true
		}
	}

	if order.Kind == domain.OrderKindLimit && !order.Price.IsPositive() {
		// 定价算出非正值：降级为市价单而不是放弃本周期
		order.Kind = domain.OrderKindMarket
		order.Price = decimal.Zero
		order.HasPrice = false
	}

	if order.Kind == domain.OrderKindLimit {
		order.Price = clampToTouch(side, order.Price, ticker).Round(priceScale)
	}
	return order, strategy, nil
}

// randomizedSize baseOrderSize × (1 ± sizeRandomizationFactor 均匀抽样)
func (s *Synthesizer) randomizedSize() decimal.Decimal {
	base := decimal.NewFromFloat(s.cfg.BaseOrderSize)
	if s.cfg.SizeRandomizationFactor <= 0 {
		return base
	}
	f := 1 + (s.rng.Float64()*2-1)*s.cfg.SizeRandomizationFactor
	return base.Mul(decimal.NewFromFloat(f))
}

func (s *Synthesizer) coinFlipSide() domain.Side {
	if s.rng.Float64() < 0.5 {
		return domain.SideBid
	}
	return domain.SideAsk
}

// momentumSide 窗口内 (最新 − 最旧) 的符号定方向；走平回退掷硬币
func (s *Synthesizer) momentumSide(window *PriceWindow) domain.Side {
	oldest, ok1 := window.Oldest()
	latest, ok2 := window.Latest()
	if !ok1 || !ok2 {
		return s.coinFlipSide()
	}
	switch latest.Cmp(oldest) {
	case 1:
		return domain.SideBid // 上涨顺势买入
	case -1:
		return domain.SideAsk
	default:
		return s.coinFlipSide()
	}
}

// meanReversionSide 相对均值偏离超阈值才给方向：偏高卖出、偏低买入；
// 否则 ok=false，本周期明确不下单
func (s *Synthesizer) meanReversionSide(window *PriceWindow) (domain.Side, bool) {
	latest, ok := window.Latest()
	if !ok {
		return "", false
	}
	mean := window.Mean()
	if !mean.IsPositive() {
		return "", false
	}

	dev := latest.Sub(mean).Div(mean)
	threshold := decimal.NewFromFloat(s.cfg.MeanReversionThreshold)
	if dev.GreaterThan(threshold) {
		return domain.SideAsk, true
	}
	if dev.LessThan(threshold.Neg()) {
		return domain.SideBid, true
	}
	return "", false
}

// passivePrice 从本方盘口向价差内侧切入 passiveOffsetBps 个基点
func (s *Synthesizer) passivePrice(side domain.Side, ticker *domain.Ticker) decimal.Decimal {
	offset := decimal.NewFromFloat(s.cfg.PassiveOffsetBps).Div(bps)
	if side == domain.SideBid {
		return ticker.Bid.Mul(one.Add(offset))
	}
	return ticker.Ask.Mul(one.Sub(offset))
}

// aggressivePrice 非被动策略的限价：从 mid 向对手盘口随机推进一段半价差，
// 可能越过对手价，由最终守卫钳回盘口
func (s *Synthesizer) aggressivePrice(side domain.Side, ticker *domain.Ticker) decimal.Decimal {
	mid := ticker.Mid()
	half := ticker.Ask.Sub(ticker.Bid).Div(two)
	step := half.Mul(decimal.NewFromFloat(s.rng.Float64()))
	if side == domain.SideBid {
		return mid.Add(step)
	}
	return mid.Sub(step)
}

// clampToTouch 买单限价不高于卖一，卖单限价不低于买一
func clampToTouch(side domain.Side, price decimal.Decimal, ticker *domain.Ticker) decimal.Decimal {
	if side == domain.SideBid && price.GreaterThan(ticker.Ask) {
		return ticker.Ask
	}
	if side == domain.SideAsk && price.LessThan(ticker.Bid) {
		return ticker.Bid
	}
	return price
}
