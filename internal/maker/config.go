package maker

import "fmt"

// Config 报价 agent 配置（全局默认 + 按交易对覆盖后的生效值）
type Config struct {
	BaseSpreadPct              float64 `yaml:"baseSpreadPct"`              // 基础价差比例，如 0.002 = 0.2%
	SpreadVolatilityMultiplier float64 `yaml:"spreadVolatilityMultiplier"` // 波动率对价差的放大系数
	DepthLevels                int     `yaml:"depthLevels"`                // 每侧阶梯层数
	BaseSizePerLevel           float64 `yaml:"baseSizePerLevel"`           // 每层基础数量
	SizeRandomization          float64 `yaml:"sizeRandomization"`          // 数量随机化幅度（±比例）
	VolatilityWindowTicks      int     `yaml:"volatilityWindowTicks"`      // 波动率估计窗口长度
	IntervalMs                 int     `yaml:"intervalMs"`                 // 报价周期（毫秒）
	JitterFactor               float64 `yaml:"jitterFactor"`               // 周期抖动幅度（±比例）
	CancelReplaceRatio         float64 `yaml:"cancelReplaceRatio"`         // 强制撤换比例 [0,1]
	MaxPriceDeviation          float64 `yaml:"maxPriceDeviation"`          // 匹配容差：价格偏差上限
	MaxSizeDeviation           float64 `yaml:"maxSizeDeviation"`           // 匹配容差：数量偏差上限
}

// Overrides 按交易对的覆盖项（指针字段，nil 表示沿用全局默认）
type Overrides struct {
	BaseSpreadPct              *float64 `yaml:"baseSpreadPct"`
	SpreadVolatilityMultiplier *float64 `yaml:"spreadVolatilityMultiplier"`
	DepthLevels                *int     `yaml:"depthLevels"`
	BaseSizePerLevel           *float64 `yaml:"baseSizePerLevel"`
	SizeRandomization          *float64 `yaml:"sizeRandomization"`
	VolatilityWindowTicks      *int     `yaml:"volatilityWindowTicks"`
	IntervalMs                 *int     `yaml:"intervalMs"`
	JitterFactor               *float64 `yaml:"jitterFactor"`
	CancelReplaceRatio         *float64 `yaml:"cancelReplaceRatio"`
	MaxPriceDeviation          *float64 `yaml:"maxPriceDeviation"`
	MaxSizeDeviation           *float64 `yaml:"maxSizeDeviation"`
}

// Defaults 填充零值字段的默认值
func (c *Config) Defaults() {
	if c.BaseSpreadPct <= 0 {
		c.BaseSpreadPct = 0.002
	}
	if c.SpreadVolatilityMultiplier <= 0 {
		c.SpreadVolatilityMultiplier = 1.5
	}
	if c.DepthLevels <= 0 {
		c.DepthLevels = 5
	}
	if c.BaseSizePerLevel <= 0 {
		c.BaseSizePerLevel = 1.0
	}
	if c.SizeRandomization < 0 {
		c.SizeRandomization = 0
	}
	if c.VolatilityWindowTicks <= 0 {
		c.VolatilityWindowTicks = 30
	}
	if c.IntervalMs <= 0 {
		c.IntervalMs = 5000
	}
	if c.JitterFactor < 0 {
		c.JitterFactor = 0
	}
	if c.MaxPriceDeviation <= 0 {
		c.MaxPriceDeviation = 0.001 // 0.1%
	}
	if c.MaxSizeDeviation <= 0 {
		c.MaxSizeDeviation = 0.1 // 10%
	}
}

// Validate 校验配置合法性
func (c *Config) Validate() error {
	if c.CancelReplaceRatio < 0 || c.CancelReplaceRatio > 1 {
		return fmt.Errorf("cancelReplaceRatio 必须在 [0,1]，当前 %v", c.CancelReplaceRatio)
	}
	if c.SizeRandomization < 0 || c.SizeRandomization >= 1 {
		return fmt.Errorf("sizeRandomization 必须在 [0,1)，当前 %v", c.SizeRandomization)
	}
	if c.JitterFactor < 0 || c.JitterFactor >= 1 {
		return fmt.Errorf("jitterFactor 必须在 [0,1)，当前 %v", c.JitterFactor)
	}
	return nil
}

// Merge 将覆盖项逐字段应用到配置副本上（nil 字段沿用原值）
func (c Config) Merge(o *Overrides) Config {
	if o == nil {
		return c
	}
	if o.BaseSpreadPct != nil {
		c.BaseSpreadPct = *o.BaseSpreadPct
	}
	if o.SpreadVolatilityMultiplier != nil {
		c.SpreadVolatilityMultiplier = *o.SpreadVolatilityMultiplier
	}
	if o.DepthLevels != nil {
		c.DepthLevels = *o.DepthLevels
	}
	if o.BaseSizePerLevel != nil {
		c.BaseSizePerLevel = *o.BaseSizePerLevel
	}
	if o.SizeRandomization != nil {
		c.SizeRandomization = *o.SizeRandomization
	}
	if o.VolatilityWindowTicks != nil {
		c.VolatilityWindowTicks = *o.VolatilityWindowTicks
	}
	if o.IntervalMs != nil {
		c.IntervalMs = *o.IntervalMs
	}
	if o.JitterFactor != nil {
		c.JitterFactor = *o.JitterFactor
	}
	if o.CancelReplaceRatio != nil {
		c.CancelReplaceRatio = *o.CancelReplaceRatio
	}
	if o.MaxPriceDeviation != nil {
		c.MaxPriceDeviation = *o.MaxPriceDeviation
	}
	if o.MaxSizeDeviation != nil {
		c.MaxSizeDeviation = *o.MaxSizeDeviation
	}
	return c
}
