package maker

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/mmbot/internal/domain"
	"github.com/betbot/mmbot/internal/venue"
)

// ReconcileResult 一次对账周期的动作统计
type ReconcileResult struct {
	Kept         int // 容差内匹配、保留不动
	Canceled     int // 成功撤销
	Placed       int // 成功新挂
	CancelFailed int // 整批撤销失败时的订单数
	PlaceFailed  int // 单笔挂单失败数
}

// Reconciler 把在册订单与新生成的目标阶梯做最小扰动对账
//
// 周期分三步：先分类（keep/cancel），再整批撤销，最后逐笔补挂。
// 撤销失败时对应订单留在册（下周期重新评估）；挂单失败直接放弃
// （下周期阶梯重新生成，缺口自愈）。
type Reconciler struct {
	pair        *domain.TradingPair
	exec        venue.ExecutionClient
	stpMode     venue.SelfTradePrevention
	maxPriceDev decimal.Decimal
	maxSizeDev  decimal.Decimal
	rng         *rand.Rand
	log         *logrus.Entry
}

// NewReconciler 创建对账器
func NewReconciler(pair *domain.TradingPair, exec venue.ExecutionClient, cfg *Config, rng *rand.Rand) *Reconciler {
	return &Reconciler{
		pair:        pair,
		exec:        exec,
		stpMode:     venue.STPCancelNewest,
		maxPriceDev: decimal.NewFromFloat(cfg.MaxPriceDeviation),
		maxSizeDev:  decimal.NewFromFloat(cfg.MaxSizeDeviation),
		rng:         rng,
		log:         logrus.WithField("component", "reconciler").WithField("pair", pair.Symbol),
	}
}

// Reconcile 执行一个对账周期
//
// cancelReplaceRatio = 0 时只要匹配成功就保留（零强制撤换）；
// = 1 时即便匹配成功也一律撤销。被保留订单占用的目标单在本周期内
// 不再参与后续匹配。
func (r *Reconciler) Reconcile(ctx context.Context, book *RestingBook, desired []*domain.Order, cancelReplaceRatio float64) ReconcileResult {
	var result ReconcileResult

	// 第一步：分类。在册订单按登记顺序（最旧优先）逐个尝试匹配。
	candidates := make([]*domain.Order, len(desired))
	copy(candidates, desired)

	var toCancel []string
	for _, resting := range book.Orders() {
		idx, ok := FindBestMatch(resting, candidates, r.maxPriceDev, r.maxSizeDev)
		if ok && r.rng.Float64() > cancelReplaceRatio {
			candidates[idx] = nil // 占用该目标单
			result.Kept++
			continue
		}
		toCancel = append(toCancel, resting.VenueID)
	}

	// 第二步：整批撤销。失败时这一批订单全部视为未被移除，留在册。
	if len(toCancel) > 0 {
		if err := r.exec.CancelOrders(ctx, toCancel); err != nil {
			result.CancelFailed = len(toCancel)
			r.log.Warnf("批量撤单失败（%d 笔留在册，下周期重试）: %v", len(toCancel), err)
		} else {
			for _, id := range toCancel {
				book.Remove(id)
			}
			result.Canceled = len(toCancel)
		}
	}

	// 第三步：逐笔补挂未被占用的目标单。
	for _, d := range candidates {
		if d == nil {
			continue
		}
		d.ClientID = uuid.NewString()
		req := venue.SubmitRequest{
			ClientOrderID: d.ClientID,
			Side:          d.Side,
			BaseAsset:     r.pair.BaseAsset,
			QuoteAsset:    r.pair.QuoteAsset,
			Quantity:      d.Size,
			Price:         d.Price,
			HasPrice:      d.HasPrice,
			Kind:          d.Kind,
			STPMode:       r.stpMode,
		}
		ids, err := r.exec.SubmitOrder(ctx, req)
		if err != nil {
			result.PlaceFailed++
			r.log.Warnf("挂单失败（放弃，下周期自愈）: side=%s price=%s size=%s err=%v",
				d.Side, d.Price, d.Size, err)
			continue
		}

		d.VenueID = ids[0]
		d.Status = domain.OrderStatusNew
		d.CreatedAt = time.Now()
		book.Add(d)
		result.Placed++
	}

	return result
}
