package model

import (
	"fmt"
	"time"
)

// Side 买卖方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

func (s Side) String() string {
	return string(s)
}

// ExitReason 平仓原因
type ExitReason string

const (
	ExitTrailingStop ExitReason = "TRAILING_STOP"
	ExitProfitTarget ExitReason = "PROFIT_TARGET"
	ExitTimeStop     ExitReason = "TIME_STOP"
)

// Order 仓位计算器输出的订单，Qty = 0 表示当前约束下无法下单
type Order struct {
	Side     Side      `json:"side"`
	Symbol   string    `json:"symbol"`
	Qty      float64   `json:"qty"`
	Ts       time.Time `json:"ts"`
	Px       float64   `json:"px"`
	StopPx   float64   `json:"stop_px,omitempty"`
	Notional float64   `json:"notional,omitempty"`
	Reason   string    `json:"reason,omitempty"`
}

func (o Order) String() string {
	return fmt.Sprintf("ORDER [%s %s] %.0f @ %.4f | SL: %.4f | Notional: %.2f",
		o.Side, o.Symbol, o.Qty, o.Px, o.StopPx, o.Notional)
}

// IsEmpty 判断是否为"无可行仓位"的哨兵订单
func (o Order) IsEmpty() bool {
	return o.Qty <= 0
}

// Fill 成交记录，只追加不修改
type Fill struct {
	Ts     time.Time `json:"ts"`
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Px     float64   `json:"px"`
	Qty    float64   `json:"qty"`
	Reason string    `json:"reason,omitempty"`
}

// Position 当前持仓，Qty > 0 时才存在于持仓表中
type Position struct {
	Symbol      string    `json:"symbol"`
	Qty         float64   `json:"qty"`
	AvgCost     float64   `json:"avg_cost"`
	OpenTs      time.Time `json:"open_ts"`
	SessionHigh float64   `json:"session_high"`
}

// ExitSignal 出场规则触发结果
type ExitSignal struct {
	Reason    ExitReason `json:"reason"`
	ExitPrice float64    `json:"exit_price"`
}
