package domain

// TradingPair 交易对（构造后不可变）
type TradingPair struct {
	Symbol          string // 本所交易对，如 BTC-USDT
	BaseAsset       string // 基础资产，如 BTC
	QuoteAsset      string // 计价资产，如 USDT
	ReferenceSymbol string // 外部参考行情 symbol，如 BTCUSDT
}
