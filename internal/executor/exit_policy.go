package executor

import (
	"math"
	"time"

	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
)

// priceEpsilon 阈值按价格比较，吸收浮点误差
const priceEpsilon = 1e-9

// ExitPolicy 出场规则：移动止损 > 止盈 > 时间止损，先命中者生效
type ExitPolicy struct {
	cfg service.ExitConfig
}

func NewExitPolicy(cfg service.ExitConfig) *ExitPolicy {
	return &ExitPolicy{cfg: cfg}
}

// Evaluate 先把 lastPrice 计入持仓的会话最高价，再依次检查规则。
// 未触发时返回 nil
func (p *ExitPolicy) Evaluate(pos *model.Position, lastPrice float64, now time.Time) *model.ExitSignal {
	if pos == nil || pos.Qty <= 0 || !service.IsPositivePrice(lastPrice) {
		return nil
	}
	pos.SessionHigh = math.Max(pos.SessionHigh, lastPrice)

	// 1. 移动止损：自最高价回撤达到阈值
	if pos.SessionHigh > 0 && lastPrice <= pos.SessionHigh*(1-p.cfg.TrailingStopPct)+priceEpsilon {
		return &model.ExitSignal{Reason: model.ExitTrailingStop, ExitPrice: lastPrice}
	}

	gain := 0.0
	if pos.AvgCost > 0 {
		gain = lastPrice/pos.AvgCost - 1
	}

	// 2. 止盈
	if pos.AvgCost > 0 && lastPrice >= pos.AvgCost*(1+p.cfg.ProfitTargetPct)-priceEpsilon {
		return &model.ExitSignal{Reason: model.ExitProfitTarget, ExitPrice: lastPrice}
	}

	// 3. 时间止损：持仓足够久且涨幅不足
	if p.cfg.TimeStop > 0 && now.Sub(pos.OpenTs) >= p.cfg.TimeStop && gain < p.cfg.TimeStopMinGain {
		return &model.ExitSignal{Reason: model.ExitTimeStop, ExitPrice: lastPrice}
	}

	return nil
}
