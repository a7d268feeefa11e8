package rest

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/mmbot/internal/domain"
	"github.com/betbot/mmbot/internal/venue"
)

// DefaultTickerMaxAge bounds how long a cached ticker is served before a
// fresh REST fetch is forced.
const DefaultTickerMaxAge = 3 * time.Second

type tickerResponse struct {
	Symbol    string `json:"symbol"`
	BidPrice  string `json:"bidPrice"`
	AskPrice  string `json:"askPrice"`
	LastPrice string `json:"lastPrice"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

// MarketData serves reference tickers. Reads hit an in-memory cache that a
// websocket feed keeps warm (ApplyTicker); a REST fetch is the fallback when
// the cache is cold or stale.
type MarketData struct {
	client *Client

	mu      sync.RWMutex
	tickers map[string]*domain.Ticker
	maxAge  time.Duration

	initialized bool
}

// NewMarketData creates a market-data provider for the given host.
func NewMarketData(host string) *MarketData {
	return &MarketData{
		client:  NewClient(host),
		tickers: make(map[string]*domain.Ticker),
		maxAge:  DefaultTickerMaxAge,
	}
}

// Initialize pings the venue once; failure aborts fleet startup.
func (m *MarketData) Initialize(ctx context.Context) error {
	var out struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := m.client.Get(ctx, "/api/v1/time", nil, &out); err != nil {
		return errors.Wrap(err, "market data ping")
	}
	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	return nil
}

// ApplyTicker feeds an externally received ticker into the cache.
// Used by the websocket stream.
func (m *MarketData) ApplyTicker(symbol string, ticker *domain.Ticker) {
	if symbol == "" || !ticker.IsComplete() {
		return
	}
	m.mu.Lock()
	m.tickers[symbol] = ticker
	m.mu.Unlock()
}

// FetchTicker returns the current ticker for symbol, or a wrapped
// venue.ErrTickerUnavailable. Callers treat any error as a skip.
func (m *MarketData) FetchTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	m.mu.RLock()
	cached, ok := m.tickers[symbol]
	m.mu.RUnlock()
	if ok && time.Since(cached.Timestamp) <= m.maxAge {
		return cached, nil
	}

	var out tickerResponse
	if err := m.client.Get(ctx, "/api/v1/ticker", map[string]string{"symbol": symbol}, &out); err != nil {
		return nil, errors.Wrapf(venue.ErrTickerUnavailable, "fetch %s: %v", symbol, err)
	}

	ticker, err := parseTicker(&out)
	if err != nil {
		return nil, errors.Wrapf(venue.ErrTickerUnavailable, "parse %s: %v", symbol, err)
	}
	if !ticker.IsComplete() {
		return nil, errors.Wrapf(venue.ErrTickerUnavailable, "incomplete ticker for %s", symbol)
	}

	m.mu.Lock()
	m.tickers[symbol] = ticker
	m.mu.Unlock()
	return ticker, nil
}

func parseTicker(r *tickerResponse) (*domain.Ticker, error) {
	bid, err := decimal.NewFromString(r.BidPrice)
	if err != nil {
		return nil, errors.Wrap(err, "bid")
	}
	ask, err := decimal.NewFromString(r.AskPrice)
	if err != nil {
		return nil, errors.Wrap(err, "ask")
	}
	last, err := decimal.NewFromString(r.LastPrice)
	if err != nil {
		return nil, errors.Wrap(err, "last")
	}
	ts := time.Now()
	if r.Timestamp > 0 {
		ts = time.UnixMilli(r.Timestamp)
	}
	return &domain.Ticker{Bid: bid, Ask: ask, Last: last, Timestamp: ts}, nil
}
