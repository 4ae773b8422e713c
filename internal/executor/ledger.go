package executor

import (
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
)

// qtyEpsilon 小于此数量视为已平仓
const qtyEpsilon = 1e-9

var _ Executor = (*Ledger)(nil)

// Ledger 模拟账户：现金、持仓表、已实现盈亏和成交记录
// 事件循环是唯一的写入方，读锁供状态接口并发读取
type Ledger struct {
	mu sync.RWMutex

	startingCash float64
	cash         float64
	realizedPnL  float64
	positions    map[string]*model.Position
	fills        []model.Fill

	policy *ExitPolicy
	logger *zap.SugaredLogger
}

// NewLedger 构造函数
func NewLedger(startingCash float64, policy *ExitPolicy, logger *zap.SugaredLogger) *Ledger {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Ledger{
		startingCash: startingCash,
		cash:         startingCash,
		positions:    make(map[string]*model.Position),
		policy:       policy,
		logger:       logger,
	}
}

// Fill 执行订单
func (l *Ledger) Fill(order model.Order) (model.Fill, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fillLocked(order)
}

func (l *Ledger) fillLocked(order model.Order) (model.Fill, bool) {
	if order.Qty <= 0 || !service.IsFinite(order.Qty) || !service.IsPositivePrice(order.Px) {
		return model.Fill{}, false
	}

	switch order.Side {
	case model.SideBuy:
		l.cash -= order.Px * order.Qty
		pos, ok := l.positions[order.Symbol]
		if !ok {
			l.positions[order.Symbol] = &model.Position{
				Symbol:      order.Symbol,
				Qty:         order.Qty,
				AvgCost:     order.Px,
				OpenTs:      order.Ts,
				SessionHigh: order.Px,
			}
		} else {
			newQty := pos.Qty + order.Qty
			pos.AvgCost = (pos.AvgCost*pos.Qty + order.Px*order.Qty) / newQty
			pos.Qty = newQty
			pos.SessionHigh = math.Max(pos.SessionHigh, order.Px)
		}
		fill := l.record(order, order.Qty)
		l.logger.Infof("Sim ORDER FILLED (BUY): %s %.0f @ %.4f. Cash: %.2f",
			order.Symbol, order.Qty, order.Px, l.cash)
		return fill, true

	case model.SideSell:
		pos, ok := l.positions[order.Symbol]
		if !ok {
			// 不支持做空
			return model.Fill{}, false
		}
		qty := math.Min(order.Qty, pos.Qty)
		pnl := (order.Px - pos.AvgCost) * qty
		l.cash += order.Px * qty
		l.realizedPnL += pnl
		pos.Qty -= qty
		if pos.Qty <= qtyEpsilon {
			delete(l.positions, order.Symbol)
		} else {
			pos.SessionHigh = math.Max(pos.SessionHigh, order.Px)
		}
		fill := l.record(order, qty)
		l.logger.Infof("Sim ORDER FILLED (SELL): %s %.0f @ %.4f. PnL: %.2f. Realized: %.2f",
			order.Symbol, qty, order.Px, pnl, l.realizedPnL)
		return fill, true
	}
	return model.Fill{}, false
}

func (l *Ledger) record(order model.Order, qty float64) model.Fill {
	fill := model.Fill{
		Ts:     order.Ts,
		Symbol: order.Symbol,
		Side:   order.Side,
		Px:     order.Px,
		Qty:    qty,
		Reason: order.Reason,
	}
	l.fills = append(l.fills, fill)
	return fill
}

// TryExit 按出场规则检查持仓，触发时生成全部数量的卖出成交
func (l *Ledger) TryExit(symbol string, lastPrice float64, now time.Time) (model.Fill, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[symbol]
	if !ok || l.policy == nil {
		return model.Fill{}, false
	}
	sig := l.policy.Evaluate(pos, lastPrice, now)
	if sig == nil {
		return model.Fill{}, false
	}

	fill, ok := l.fillLocked(model.Order{
		Side:   model.SideSell,
		Symbol: symbol,
		Qty:    pos.Qty,
		Ts:     now,
		Px:     sig.ExitPrice,
		Reason: string(sig.Reason),
	})
	if ok {
		l.logger.Infof("Sim CLOSE TRIGGERED: [%s] %s @ %.4f", sig.Reason, symbol, sig.ExitPrice)
	}
	// 平仓后持仓必须消失
	delete(l.positions, symbol)
	return fill, ok
}

// Equity 现金 + 持仓市值，缺少标记价时按成本计
func (l *Ledger) Equity(marks map[string]float64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	equity := l.cash
	for sym, pos := range l.positions {
		px := pos.AvgCost
		if mark, ok := marks[sym]; ok && service.IsPositivePrice(mark) {
			px = mark
		}
		equity += pos.Qty * px
	}
	return equity
}

// Reset 清空成交、持仓和已实现盈亏，可选地更换初始资金
func (l *Ledger) Reset(startingCash ...float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(startingCash) > 0 {
		l.startingCash = startingCash[0]
	}
	l.cash = l.startingCash
	l.realizedPnL = 0
	l.positions = make(map[string]*model.Position)
	l.fills = nil
}

// Position 返回持仓副本
func (l *Ledger) Position(symbol string) (model.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return model.Position{}, false
	}
	return *pos, true
}

// Positions 按标的排序的持仓快照
func (l *Ledger) Positions() []model.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// DumpFills 返回成交记录的副本，防止外部修改
func (l *Ledger) DumpFills() []model.Fill {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fills := make([]model.Fill, len(l.fills))
	copy(fills, l.fills)
	return fills
}

func (l *Ledger) Cash() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cash
}

func (l *Ledger) RealizedPnL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.realizedPnL
}

func (l *Ledger) StartingCash() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.startingCash
}
