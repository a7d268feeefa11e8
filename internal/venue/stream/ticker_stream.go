// Package stream 提供参考行情 WebSocket 订阅，为 REST 行情缓存保温
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/mmbot/internal/domain"
)

var log = logrus.WithField("component", "ticker_stream")

const (
	// maxReconnectDelay 重连退避上限
	maxReconnectDelay = 30 * time.Second
	// pongWait 未收到消息的最长等待
	pongWait = 60 * time.Second
)

// TickerSink 收取行情更新的回调（由 rest.MarketData.ApplyTicker 实现）
type TickerSink func(symbol string, ticker *domain.Ticker)

type tickerMessage struct {
	Symbol    string `json:"symbol"`
	BidPrice  string `json:"bidPrice"`
	AskPrice  string `json:"askPrice"`
	LastPrice string `json:"lastPrice"`
	Timestamp int64  `json:"timestamp"`
}

// TickerStream 管理行情 WebSocket 连接
// 断线自动重连（指数退避），收到的 ticker 通过 sink 回调写入缓存
type TickerStream struct {
	url     string
	symbols []string
	sink    TickerSink

	mu      sync.Mutex
	conn    *websocket.Conn
	running bool
	cancel  context.CancelFunc
	doneC   chan struct{}
}

// NewTickerStream 创建新的行情订阅客户端
func NewTickerStream(url string, symbols []string, sink TickerSink) *TickerStream {
	return &TickerStream{
		url:     url,
		symbols: symbols,
		sink:    sink,
	}
}

// Start 建立连接并开始监听（非阻塞）
func (s *TickerStream) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.doneC = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(loopCtx)
	return nil
}

// Stop 关闭连接并停止重连
func (s *TickerStream) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	doneC := s.doneC
	s.mu.Unlock()

	if doneC != nil {
		<-doneC
	}
}

// runLoop 连接 + 读取循环，断开后指数退避重连
func (s *TickerStream) runLoop(ctx context.Context) {
	defer close(s.doneC)

	delay := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		if err := s.connectAndRead(ctx); err != nil {
			log.Warnf("行情流断开: %v，%v 后重连", err, delay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

func (s *TickerStream) connectAndRead(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
	}()

	// 订阅所有 symbol
	sub := map[string]any{"op": "subscribe", "channel": "ticker", "symbols": s.symbols}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	log.Infof("行情流已连接: %s symbols=%v", s.url, s.symbols)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg tickerMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Symbol == "" {
			continue // 非 ticker 消息，忽略
		}
		s.dispatch(&msg)
	}
}

func (s *TickerStream) dispatch(msg *tickerMessage) {
	bid, err1 := decimal.NewFromString(msg.BidPrice)
	ask, err2 := decimal.NewFromString(msg.AskPrice)
	last, err3 := decimal.NewFromString(msg.LastPrice)
	if err1 != nil || err2 != nil || err3 != nil {
		return
	}
	ts := time.Now()
	if msg.Timestamp > 0 {
		ts = time.UnixMilli(msg.Timestamp)
	}
	s.sink(msg.Symbol, &domain.Ticker{Bid: bid, Ask: ask, Last: last, Timestamp: ts})
}
