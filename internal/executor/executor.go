package executor

import (
	"time"

	"catalyst-trader/internal/model"
)

// Executor 是模拟成交层的通用接口
type Executor interface {
	// Fill 执行一笔订单，数量非正或价格非法时为空操作
	Fill(order model.Order) (model.Fill, bool)

	// TryExit 检查出场规则，触发时全部平仓
	TryExit(symbol string, lastPrice float64, now time.Time) (model.Fill, bool)

	// Equity 按给定标记价计算账户净值
	Equity(marks map[string]float64) float64

	// Position 查询单个标的持仓
	Position(symbol string) (model.Position, bool)

	// DumpFills 返回全部成交记录
	DumpFills() []model.Fill
}
