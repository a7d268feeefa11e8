package maker

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestVolatilityWindowInsufficientSamples(t *testing.T) {
	w := NewVolatilityWindow(10)
	if !w.Estimate().IsZero() {
		t.Fatalf("空窗口估计应为 0")
	}
	w.Push(decimal.NewFromInt(100))
	if !w.Estimate().IsZero() {
		t.Fatalf("单样本估计应为 0")
	}
}

func TestVolatilityWindowFlatSeries(t *testing.T) {
	w := NewVolatilityWindow(5)
	for i := 0; i < 5; i++ {
		w.Push(decimal.NewFromInt(100))
	}
	if !w.Estimate().IsZero() {
		t.Fatalf("恒定价格序列波动率应为 0，实际 %s", w.Estimate())
	}
}

func TestVolatilityWindowDropsOldest(t *testing.T) {
	w := NewVolatilityWindow(3)
	for _, v := range []int64{1, 100, 100, 100} {
		w.Push(decimal.NewFromInt(v))
	}
	// 最旧的 1 已被挤出，剩余恒定序列
	if w.Len() != 3 {
		t.Fatalf("窗口长度 = %d，期望 3", w.Len())
	}
	if !w.Estimate().IsZero() {
		t.Fatalf("挤出异常样本后波动率应为 0，实际 %s", w.Estimate())
	}
}

func TestVolatilityWindowRelativeStddev(t *testing.T) {
	// 样本 {99, 100, 101}：均值 100，样本标准差 1 → 相对波动率 0.01
	w := NewVolatilityWindow(3)
	for _, v := range []int64{99, 100, 101} {
		w.Push(decimal.NewFromInt(v))
	}
	got, _ := w.Estimate().Float64()
	if got < 0.0099 || got > 0.0101 {
		t.Fatalf("相对波动率 = %v，期望约 0.01", got)
	}
}
