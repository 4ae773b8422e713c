package strategy

import (
	"math"
	"time"

	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
)

// PositionSizer 基于风险预算的仓位计算，纯函数
type PositionSizer struct {
	cfg service.RiskConfig
}

func NewPositionSizer(cfg service.RiskConfig) *PositionSizer {
	return &PositionSizer{cfg: cfg}
}

// SizeEntry 使用配置中的默认风险比例与净值
func (p *PositionSizer) SizeEntry(symbol string, price float64, now time.Time) model.Order {
	return p.Size(symbol, price, now, 0, 0)
}

// Size 计算买入订单。riskPct / equity <= 0 时使用默认值。
// 返回 Qty = 0 的订单表示在当前约束下无法下单，不是错误
func (p *PositionSizer) Size(symbol string, price float64, now time.Time, riskPct, equity float64) model.Order {
	order := model.Order{Side: model.SideBuy, Symbol: symbol, Ts: now}
	if !service.IsPositivePrice(price) {
		return order
	}
	if riskPct <= 0 || !service.IsFinite(riskPct) {
		riskPct = p.cfg.RiskPct
	}
	if equity <= 0 || !service.IsFinite(equity) {
		equity = p.cfg.StartingCash
	}

	// 1. 价格清洗
	px := service.RoundToStep(math.Max(price, p.cfg.MinPrice), p.cfg.TickSize)
	if px <= 0 {
		return order
	}

	// 2. 止损：入场价下方 StopPct 与 StopFloor 美元中较高者
	stop := math.Max(px*(1-p.cfg.StopPct), px-p.cfg.StopFloor)
	stop = service.RoundToStep(stop, p.cfg.TickSize)
	riskPerShare := math.Max(px-stop, p.cfg.MinRiskPerShare)
	if riskPerShare <= 0 {
		return order
	}

	// 3. 风险预算 -> 数量
	budget := equity * riskPct
	if budget <= 0 || !service.IsFinite(budget) {
		return order
	}
	qty := budget / riskPerShare

	maxNotional := p.cfg.MaxNotional
	if maxNotional <= 0 {
		maxNotional = math.Inf(1)
	}
	qty = math.Min(qty, maxNotional/px)
	qty = service.FloorToStep(qty, p.cfg.LotSize)

	// 4. 名义金额下限：在不突破上限的前提下补足
	if p.cfg.MinNotional > 0 && qty*px < p.cfg.MinNotional {
		bumped := service.CeilToStep(p.cfg.MinNotional/px, p.cfg.LotSize)
		if bumped*px > maxNotional {
			bumped = service.FloorToStep(maxNotional/px, p.cfg.LotSize)
		}
		qty = math.Max(qty, bumped)
	}
	if qty <= 0 || !service.IsFinite(qty) {
		return order
	}

	// 5. 滑点只作用于成交价；名义金额上下限按清洗后的价格计算，
	// 所以 Notional 可以因滑点略高于 MaxNotional
	slippage := math.Max(p.cfg.SlippageFlat, px*p.cfg.SlippageBps/10000)
	execPx := service.RoundToStep(px+slippage, p.cfg.TickSize)

	order.Qty = qty
	order.Px = execPx
	order.StopPx = stop
	order.Notional = qty * execPx
	return order
}
