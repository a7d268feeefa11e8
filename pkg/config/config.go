package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/betbot/mmbot/internal/maker"
	"github.com/betbot/mmbot/internal/taker"
)

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	OutputFile string `yaml:"outputFile"`
	MaxSize    int    `yaml:"maxSize"`    // MB
	MaxBackups int    `yaml:"maxBackups"` // 保留旧文件数
	MaxAge     int    `yaml:"maxAge"`     // 保留天数
	Compress   bool   `yaml:"compress"`
}

// VenueConfig 交易所端点配置
type VenueConfig struct {
	MarketDataURL   string `yaml:"marketDataUrl"`
	ExecutionURL    string `yaml:"executionUrl"`
	TickerStreamURL string `yaml:"tickerStreamUrl"` // 可选：为空则只用 REST 轮询
}

// PairConfig 单个交易对配置，Maker/Taker 为 nil 时沿用全局默认
type PairConfig struct {
	Symbol          string           `yaml:"symbol"`
	BaseAsset       string           `yaml:"baseAsset"`
	QuoteAsset      string           `yaml:"quoteAsset"`
	ReferenceSymbol string           `yaml:"referenceSymbol"` // 参考行情符号，为空则用 Symbol
	Maker           *maker.Overrides `yaml:"maker"`
	Taker           *taker.Overrides `yaml:"taker"`
}

// Config 进程级配置
type Config struct {
	Log             LogConfig    `yaml:"log"`
	Venue           VenueConfig  `yaml:"venue"`
	DryRun          bool         `yaml:"dryRun"`          // 纸面模式：不触真实执行端点
	WarmupMs        int          `yaml:"warmupMs"`        // 报价先行到活跃度启动的预热（毫秒）
	ShutdownGraceMs int          `yaml:"shutdownGraceMs"` // 优雅退出宽限（毫秒）
	Maker           maker.Config `yaml:"maker"`
	Taker           taker.Config `yaml:"taker"`
	Pairs           []PairConfig `yaml:"pairs"`
}

// Defaults 填充零值字段的默认值
func (c *Config) Defaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSize <= 0 {
		c.Log.MaxSize = 100
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAge <= 0 {
		c.Log.MaxAge = 7
	}
	if c.WarmupMs <= 0 {
		c.WarmupMs = 2000
	}
	if c.ShutdownGraceMs <= 0 {
		c.ShutdownGraceMs = 10000
	}
	c.Maker.Defaults()
	c.Taker.Defaults()

	for i := range c.Pairs {
		if c.Pairs[i].ReferenceSymbol == "" {
			c.Pairs[i].ReferenceSymbol = c.Pairs[i].Symbol
		}
	}
}

// Validate 校验配置合法性（全局默认与每个交易对的生效配置都要过校验）
func (c *Config) Validate() error {
	if !c.DryRun {
		if c.Venue.MarketDataURL == "" {
			return fmt.Errorf("venue.marketDataUrl 不能为空")
		}
		if c.Venue.ExecutionURL == "" {
			return fmt.Errorf("venue.executionUrl 不能为空")
		}
	} else if c.Venue.MarketDataURL == "" {
		return fmt.Errorf("venue.marketDataUrl 不能为空（dryRun 模式仍需要参考行情）")
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("至少需要配置一个交易对")
	}

	if err := c.Maker.Validate(); err != nil {
		return fmt.Errorf("maker: %w", err)
	}
	if err := c.Taker.Validate(); err != nil {
		return fmt.Errorf("taker: %w", err)
	}

	seen := make(map[string]bool, len(c.Pairs))
	for _, p := range c.Pairs {
		if p.Symbol == "" {
			return fmt.Errorf("pair.symbol 不能为空")
		}
		if p.BaseAsset == "" || p.QuoteAsset == "" {
			return fmt.Errorf("交易对 %s 缺少 baseAsset/quoteAsset", p.Symbol)
		}
		if seen[p.Symbol] {
			return fmt.Errorf("交易对 %s 重复配置", p.Symbol)
		}
		seen[p.Symbol] = true

		mc := c.EffectiveMaker(p)
		if err := mc.Validate(); err != nil {
			return fmt.Errorf("交易对 %s maker 覆盖: %w", p.Symbol, err)
		}
		tc := c.EffectiveTaker(p)
		if err := tc.Validate(); err != nil {
			return fmt.Errorf("交易对 %s taker 覆盖: %w", p.Symbol, err)
		}
	}
	return nil
}

// EffectiveMaker 某交易对的生效 maker 配置（全局默认 + 按对覆盖）
func (c *Config) EffectiveMaker(p PairConfig) maker.Config {
	return c.Maker.Merge(p.Maker)
}

// EffectiveTaker 某交易对的生效 taker 配置（全局默认 + 按对覆盖）
func (c *Config) EffectiveTaker(p PairConfig) taker.Config {
	return c.Taker.Merge(p.Taker)
}

// LoadFromFile 从 yaml 文件加载配置并填充默认值、执行校验
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s: %w", path, err)
	}

	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return &cfg, nil
}
