package taker

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceWindowDropsOldestFirst(t *testing.T) {
	w := NewPriceWindow(3)
	for _, v := range []int64{1, 2, 3, 4} {
		w.Push(decimal.NewFromInt(v))
	}

	if w.Len() != 3 {
		t.Fatalf("窗口长度 = %d，期望 3", w.Len())
	}
	oldest, _ := w.Oldest()
	if !oldest.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("最旧样本 = %s，期望 2（1 已被挤出）", oldest)
	}
	latest, _ := w.Latest()
	if !latest.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("最新样本 = %s，期望 4", latest)
	}
}

func TestPriceWindowIgnoresNonPositive(t *testing.T) {
	w := NewPriceWindow(5)
	w.Push(decimal.Zero)
	w.Push(decimal.NewFromInt(-1))
	if w.Len() != 0 {
		t.Fatalf("非正价格不应进入窗口")
	}
}

func TestPriceWindowMean(t *testing.T) {
	w := NewPriceWindow(4)
	if !w.Mean().IsZero() {
		t.Fatalf("空窗口均值应为 0")
	}
	for _, v := range []int64{99, 100, 101} {
		w.Push(decimal.NewFromInt(v))
	}
	if !w.Mean().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("均值 = %s，期望 100", w.Mean())
	}
}
