package taker

import (
	"fmt"
	"math"
)

// StrategyProbabilities 各策略被抽中的概率（应合计为 1）
type StrategyProbabilities struct {
	Random        float64 `yaml:"random"`
	Momentum      float64 `yaml:"momentum"`
	MeanReversion float64 `yaml:"meanReversion"`
	PassiveLimit  float64 `yaml:"passiveLimit"`
}

// Config 活跃度 agent 配置（全局默认 + 按交易对覆盖后的生效值）
type Config struct {
	IntervalMs              int                   `yaml:"intervalMs"`              // 周期（毫秒）
	JitterFactor            float64               `yaml:"jitterFactor"`            // 周期抖动幅度
	MarketOrderProbability  float64               `yaml:"marketOrderProbability"`  // 非被动策略下 market 单概率
	BaseOrderSize           float64               `yaml:"baseOrderSize"`           // 基础下单数量
	SizeRandomizationFactor float64               `yaml:"sizeRandomizationFactor"` // 数量随机化幅度
	Strategies              StrategyProbabilities `yaml:"strategies"`
	MomentumLookbackTicks   int                   `yaml:"momentumLookbackTicks"`  // 价格窗口长度
	MeanReversionThreshold  float64               `yaml:"meanReversionThreshold"` // 均值回归触发阈值
	PassiveOffsetBps        float64               `yaml:"passiveOffsetBps"`       // 被动限价单切入价差的基点数
}

// Overrides 按交易对的覆盖项（nil 字段沿用全局默认）
type Overrides struct {
	IntervalMs              *int                   `yaml:"intervalMs"`
	JitterFactor            *float64               `yaml:"jitterFactor"`
	MarketOrderProbability  *float64               `yaml:"marketOrderProbability"`
	BaseOrderSize           *float64               `yaml:"baseOrderSize"`
	SizeRandomizationFactor *float64               `yaml:"sizeRandomizationFactor"`
	Strategies              *StrategyProbabilities `yaml:"strategies"`
	MomentumLookbackTicks   *int                   `yaml:"momentumLookbackTicks"`
	MeanReversionThreshold  *float64               `yaml:"meanReversionThreshold"`
	PassiveOffsetBps        *float64               `yaml:"passiveOffsetBps"`
}

// Defaults 填充零值字段的默认值
func (c *Config) Defaults() {
	if c.IntervalMs <= 0 {
		c.IntervalMs = 8000
	}
	if c.JitterFactor < 0 {
		c.JitterFactor = 0
	}
	if c.MarketOrderProbability <= 0 {
		c.MarketOrderProbability = 0.3
	}
	if c.BaseOrderSize <= 0 {
		c.BaseOrderSize = 0.5
	}
	if c.SizeRandomizationFactor < 0 {
		c.SizeRandomizationFactor = 0
	}
	zero := StrategyProbabilities{}
	if c.Strategies == zero {
		c.Strategies = StrategyProbabilities{
			Random:        0.4,
			Momentum:      0.25,
			MeanReversion: 0.2,
			PassiveLimit:  0.15,
		}
	}
	if c.MomentumLookbackTicks <= 0 {
		c.MomentumLookbackTicks = 20
	}
	if c.MeanReversionThreshold <= 0 {
		c.MeanReversionThreshold = 0.002
	}
	if c.PassiveOffsetBps <= 0 {
		c.PassiveOffsetBps = 5
	}
}

// Validate 校验配置合法性
func (c *Config) Validate() error {
	if c.MarketOrderProbability < 0 || c.MarketOrderProbability > 1 {
		return fmt.Errorf("marketOrderProbability 必须在 [0,1]，当前 %v", c.MarketOrderProbability)
	}
	if c.SizeRandomizationFactor < 0 || c.SizeRandomizationFactor >= 1 {
		return fmt.Errorf("sizeRandomizationFactor 必须在 [0,1)，当前 %v", c.SizeRandomizationFactor)
	}
	for _, p := range []float64{c.Strategies.Random, c.Strategies.Momentum, c.Strategies.MeanReversion, c.Strategies.PassiveLimit} {
		if p < 0 || p > 1 {
			return fmt.Errorf("策略概率必须在 [0,1]，当前 %+v", c.Strategies)
		}
	}
	sum := c.Strategies.Random + c.Strategies.Momentum + c.Strategies.MeanReversion + c.Strategies.PassiveLimit
	if sum > 1+1e-9 {
		return fmt.Errorf("策略概率合计不能超过 1，当前 %v", sum)
	}
	// 合计不足 1 不是错误：抽样落在缺口时回退 random（见 ChooseStrategy）
	if math.IsNaN(sum) {
		return fmt.Errorf("策略概率非法")
	}
	return nil
}

// Merge 将覆盖项逐字段应用到配置副本上
func (c Config) Merge(o *Overrides) Config {
	if o == nil {
		return c
	}
	if o.IntervalMs != nil {
		c.IntervalMs = *o.IntervalMs
	}
	if o.JitterFactor != nil {
		c.JitterFactor = *o.JitterFactor
	}
	if o.MarketOrderProbability != nil {
		c.MarketOrderProbability = *o.MarketOrderProbability
	}
	if o.BaseOrderSize != nil {
		c.BaseOrderSize = *o.BaseOrderSize
	}
	if o.SizeRandomizationFactor != nil {
		c.SizeRandomizationFactor = *o.SizeRandomizationFactor
	}
	if o.Strategies != nil {
		c.Strategies = *o.Strategies
	}
	if o.MomentumLookbackTicks != nil {
		c.MomentumLookbackTicks = *o.MomentumLookbackTicks
	}
	if o.MeanReversionThreshold != nil {
		c.MeanReversionThreshold = *o.MeanReversionThreshold
	}
	if o.PassiveOffsetBps != nil {
		c.PassiveOffsetBps = *o.PassiveOffsetBps
	}
	return c
}
