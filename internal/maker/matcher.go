package maker

import (
	"github.com/shopspring/decimal"

	"github.com/betbot/mmbot/internal/domain"
)

// FindBestMatch 在候选集中为一个在册订单找容差内的最优匹配
//
// 只考虑与在册订单同方向、同类型的候选；价格与数量偏差都在阈值内才算
// 合格；合格者中取偏差之和（不加权）最小的一个，相等时取先出现的。
// 候选槽位为 nil 表示本周期已被占用，跳过。
// 纯函数：无副作用，给定输入结果确定。
func FindBestMatch(resting *domain.Order, candidates []*domain.Order, maxPriceDev, maxSizeDev decimal.Decimal) (int, bool) {
	bestIdx := -1
	var bestSum decimal.Decimal

	for i, cand := range candidates {
		if cand == nil {
			continue
		}
		if cand.Side != resting.Side || cand.Kind != resting.Kind {
			continue
		}

		m := domain.NewOrderMatch(resting, cand)
		if m.PriceDeviation.GreaterThan(maxPriceDev) || m.SizeDeviation.GreaterThan(maxSizeDev) {
			continue
		}

		sum := m.Sum()
		if bestIdx == -1 || sum.LessThan(bestSum) {
			bestIdx = i
			bestSum = sum
		}
	}

	if bestIdx == -1 {
		return -1, false
	}
	return bestIdx, true
}
