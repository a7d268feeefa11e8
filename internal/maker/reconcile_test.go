package maker

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/betbot/mmbot/internal/domain"
	"github.com/betbot/mmbot/internal/venue"
)

// fakeExecution 可注入失败的执行客户端测试替身
type fakeExecution struct {
	nextID     int
	live       map[string]bool
	cancelErr  error
	submitErr  error
	submits    int
	cancels    int
	failEveryN int // 每第 N 笔下单失败（0 表示不失败）
}

func newFakeExecution() *fakeExecution {
	return &fakeExecution{live: make(map[string]bool)}
}

func (f *fakeExecution) Initialize(ctx context.Context, cred venue.Credential) error { return nil }
func (f *fakeExecution) IsAuthenticated() bool                                       { return true }

func (f *fakeExecution) SubmitOrder(ctx context.Context, req venue.SubmitRequest) ([]string, error) {
	f.submits++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if f.failEveryN > 0 && f.submits%f.failEveryN == 0 {
		return nil, fmt.Errorf("injected submit failure")
	}
	f.nextID++
	id := fmt.Sprintf("venue-%d", f.nextID)
	f.live[id] = true
	return []string{id}, nil
}

func (f *fakeExecution) CancelOrders(ctx context.Context, ids []string) error {
	f.cancels++
	if f.cancelErr != nil {
		return f.cancelErr
	}
	for _, id := range ids {
		delete(f.live, id)
	}
	return nil
}

func testPair() *domain.TradingPair {
	return &domain.TradingPair{
		Symbol:          "ABC-USDT",
		BaseAsset:       "ABC",
		QuoteAsset:      "USDT",
		ReferenceSymbol: "ABCUSDT",
	}
}

func desiredLadder(prices, sizes []string) []*domain.Order {
	out := make([]*domain.Order, len(prices))
	for i := range prices {
		out[i] = limitOrder(domain.SideBid, prices[i], sizes[i])
	}
	return out
}

func newTestReconciler(exec venue.ExecutionClient) *Reconciler {
	cfg := &Config{}
	cfg.Defaults()
	return NewReconciler(testPair(), exec, cfg, rand.New(rand.NewSource(1)))
}

func TestReconcileStabilityUnderRepeat(t *testing.T) {
	exec := newFakeExecution()
	rec := newTestReconciler(exec)
	book := NewRestingBook()

	desired := desiredLadder([]string{"100", "99.9", "99.8"}, []string{"1", "1.1", "1.2"})
	first := rec.Reconcile(context.Background(), book, desired, 0)
	if first.Placed != 3 || book.Len() != 3 {
		t.Fatalf("空簿首轮应全部挂出: %+v book=%d", first, book.Len())
	}

	// 同一目标集重复对账、ratio=0：零撤单零新挂
	repeat := desiredLadder([]string{"100", "99.9", "99.8"}, []string{"1", "1.1", "1.2"})
	second := rec.Reconcile(context.Background(), book, repeat, 0)
	if second.Canceled != 0 || second.Placed != 0 {
		t.Fatalf("目标集未变且 ratio=0 时应零扰动: %+v", second)
	}
	if second.Kept != 3 || book.Len() != 3 {
		t.Fatalf("全部在册订单应保留: %+v book=%d", second, book.Len())
	}
}

func TestReconcileRatioOneAlwaysCancels(t *testing.T) {
	exec := newFakeExecution()
	rec := newTestReconciler(exec)
	book := NewRestingBook()

	desired := desiredLadder([]string{"100", "99.9"}, []string{"1", "1"})
	rec.Reconcile(context.Background(), book, desired, 0)

	// ratio=1：即便完全匹配也强制撤换
	repeat := desiredLadder([]string{"100", "99.9"}, []string{"1", "1"})
	result := rec.Reconcile(context.Background(), book, repeat, 1)
	if result.Kept != 0 {
		t.Fatalf("ratio=1 时不应保留任何订单: %+v", result)
	}
	if result.Canceled != 2 || result.Placed != 2 {
		t.Fatalf("应全撤全挂: %+v", result)
	}
	if book.Len() != 2 {
		t.Fatalf("撤换后簿内应为新挂的 2 笔，实际 %d", book.Len())
	}
}

func TestReconcileFailedBatchCancelLeavesBookUnchanged(t *testing.T) {
	exec := newFakeExecution()
	rec := newTestReconciler(exec)
	book := NewRestingBook()

	rec.Reconcile(context.Background(), book, desiredLadder([]string{"100"}, []string{"1"}), 0)
	before := book.IDs()

	// 目标集完全换掉，且批量撤单失败：旧单必须原样留在册
	exec.cancelErr = fmt.Errorf("injected cancel failure")
	result := rec.Reconcile(context.Background(), book, desiredLadder([]string{"50"}, []string{"1"}), 0)

	if result.CancelFailed != 1 || result.Canceled != 0 {
		t.Fatalf("撤单失败应计入 CancelFailed: %+v", result)
	}
	for _, id := range before {
		if _, ok := book.Get(id); !ok {
			t.Fatalf("撤单失败后订单 %s 不应从簿中消失", id)
		}
	}
}

func TestReconcileFailedPlacementDropped(t *testing.T) {
	exec := newFakeExecution()
	exec.submitErr = fmt.Errorf("injected submit failure")
	rec := newTestReconciler(exec)
	book := NewRestingBook()

	result := rec.Reconcile(context.Background(), book, desiredLadder([]string{"100", "99"}, []string{"1", "1"}), 0)
	if result.PlaceFailed != 2 || result.Placed != 0 {
		t.Fatalf("全部下单失败应计入 PlaceFailed: %+v", result)
	}
	if book.Len() != 0 {
		t.Fatalf("失败的挂单不得进入在册簿，实际 %d", book.Len())
	}
}

func TestReconcileNoOrphans(t *testing.T) {
	exec := newFakeExecution()
	exec.failEveryN = 3 // 周期性注入下单失败
	rec := newTestReconciler(exec)
	book := NewRestingBook()

	prices := [][]string{
		{"100", "99.9", "99.8", "99.7"},
		{"101", "100.9", "100.8", "100.7"},
		{"100", "99.9", "99.8", "99.7"},
	}
	for _, ps := range prices {
		sizes := make([]string, len(ps))
		for i := range sizes {
			sizes[i] = "1"
		}
		rec.Reconcile(context.Background(), book, desiredLadder(ps, sizes), 0.3)

		// 不变式：簿内每个 id 都对应交易所视角仍然存活的订单
		for _, id := range book.IDs() {
			if !exec.live[id] {
				t.Fatalf("簿内出现孤儿订单 %s", id)
			}
		}
		if book.Len() != len(exec.live) {
			t.Fatalf("簿内 %d 笔与交易所存活 %d 笔不一致", book.Len(), len(exec.live))
		}
	}
}
