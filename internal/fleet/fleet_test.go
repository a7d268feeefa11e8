package fleet

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/betbot/mmbot/internal/domain"
)

type fakeMarketData struct {
	initErr error
	inited  bool
}

func (f *fakeMarketData) Initialize(ctx context.Context) error {
	if f.initErr != nil {
		return f.initErr
	}
	f.inited = true
	return nil
}

func (f *fakeMarketData) FetchTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	return nil, fmt.Errorf("not implemented")
}

func newTestOrchestrator(log *eventLog, symbol string, quoterErr error) *PairOrchestrator {
	quoter := &fakeAgent{name: symbol + "/quoter", log: log, startErr: quoterErr}
	taker := &fakeAgent{name: symbol + "/taker", log: log}
	return NewPairOrchestrator(fleetTestPair(symbol), quoter, taker, time.Millisecond)
}

func TestCoordinatorMarketDataInitFailureIsFatal(t *testing.T) {
	log := &eventLog{}
	md := &fakeMarketData{initErr: fmt.Errorf("injected init failure")}
	c := NewCoordinator(md, []*PairOrchestrator{newTestOrchestrator(log, "ABC-USDT", nil)})

	if err := c.Start(context.Background()); err == nil {
		t.Fatalf("行情初始化失败应中止整个 fleet 启动")
	}
	if len(log.snapshot()) != 0 {
		t.Fatalf("行情初始化失败后不应有任何 agent 启动: %v", log.snapshot())
	}
}

func TestCoordinatorContinuesOnPartialFailure(t *testing.T) {
	log := &eventLog{}
	md := &fakeMarketData{}
	pairs := []*PairOrchestrator{
		newTestOrchestrator(log, "BAD-USDT", fmt.Errorf("injected start failure")),
		newTestOrchestrator(log, "GOOD-USDT", nil),
	}
	c := NewCoordinator(md, pairs)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("个别交易对失败不应中止 fleet: %v", err)
	}

	var goodStarted bool
	for _, e := range log.snapshot() {
		if e == "GOOD-USDT/taker.start" {
			goodStarted = true
		}
	}
	if !goodStarted {
		t.Fatalf("健康的交易对应照常启动: %v", log.snapshot())
	}

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestCoordinatorAllPairsFailed(t *testing.T) {
	log := &eventLog{}
	md := &fakeMarketData{}
	pairs := []*PairOrchestrator{
		newTestOrchestrator(log, "A-USDT", fmt.Errorf("boom")),
		newTestOrchestrator(log, "B-USDT", fmt.Errorf("boom")),
	}
	c := NewCoordinator(md, pairs)

	if err := c.Start(context.Background()); err == nil {
		t.Fatalf("全部交易对启动失败时 fleet 应报错")
	}
}
