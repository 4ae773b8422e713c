package strategy

import (
	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
	"catalyst-trader/pkg/ta"
)

// GateThresholds 价格确认阈值
type GateThresholds struct {
	WindowSize int
	VolZMin    float64
	Ret1mMin   float64
	VwapDevMin float64
}

func GateThresholdsFromConfig(cfg service.GateConfig) GateThresholds {
	return GateThresholds{
		WindowSize: cfg.WindowSize,
		VolZMin:    cfg.VolZMin,
		Ret1mMin:   cfg.Ret1mMin,
		VwapDevMin: cfg.VwapDevMin,
	}
}

// symbolState 单个标的的会话状态
type symbolState struct {
	window   *ta.RollingWindow
	vwap     ta.VwapAccumulator
	refPrice float64
	hasRef   bool
}

// MarketState 按标的分区的滚动统计 (成交量窗口、VWAP、会话参考价)
// 只由事件循环单线程驱动，不加锁
type MarketState struct {
	cfg     GateThresholds
	symbols map[string]*symbolState
}

func NewMarketState(cfg GateThresholds) *MarketState {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = ta.DefaultWindowSize
	}
	return &MarketState{cfg: cfg, symbols: make(map[string]*symbolState)}
}

func (m *MarketState) state(symbol string) *symbolState {
	st, ok := m.symbols[symbol]
	if !ok {
		st = &symbolState{window: ta.NewRollingWindow(m.cfg.WindowSize)}
		m.symbols[symbol] = st
	}
	return st
}

// OnBar 用一根 K 线更新状态，非法价格或负成交量直接忽略
func (m *MarketState) OnBar(symbol string, closePrice, volume float64) {
	if symbol == "" || !service.IsPositivePrice(closePrice) || !service.IsFinite(volume) || volume < 0 {
		return
	}
	st := m.state(symbol)
	st.window.Push(volume)
	st.vwap.Add(closePrice, volume)
	if !st.hasRef {
		st.refPrice, st.hasRef = closePrice, true
	}
}

// SetReferencePrice 显式设置会话参考价，会话内只生效一次
func (m *MarketState) SetReferencePrice(symbol string, price float64) {
	if !service.IsPositivePrice(price) {
		return
	}
	st := m.state(symbol)
	if st.hasRef {
		return
	}
	st.refPrice, st.hasRef = price, true
}

// Confirm 计算成交量 z 值、相对参考价收益和 VWAP 偏离
func (m *MarketState) Confirm(symbol string, currentPrice float64) model.ConfirmSignal {
	sig := model.ConfirmSignal{Symbol: symbol}
	if !service.IsPositivePrice(currentPrice) {
		return sig
	}

	st, ok := m.symbols[symbol]
	if !ok {
		// 冷启动：没有任何数据
		return sig
	}

	sig.VolZ = st.window.ZScore()
	vwapPrice := st.vwap.Price(currentPrice)
	sig.VwapDev = currentPrice/vwapPrice - 1

	ref := vwapPrice
	if st.hasRef {
		ref = st.refPrice
	}
	sig.Ret1m = currentPrice/ref - 1

	breakout := sig.VolZ >= m.cfg.VolZMin && sig.Ret1m >= m.cfg.Ret1mMin
	vwapLed := sig.VwapDev >= m.cfg.VwapDevMin && sig.VolZ >= m.cfg.VolZMin-0.5
	sig.Pass = breakout || vwapLed
	return sig
}

// ReferencePrice 返回会话参考价
func (m *MarketState) ReferencePrice(symbol string) (float64, bool) {
	st, ok := m.symbols[symbol]
	if !ok || !st.hasRef {
		return 0, false
	}
	return st.refPrice, true
}

// WindowLen 返回标的当前窗口长度
func (m *MarketState) WindowLen(symbol string) int {
	st, ok := m.symbols[symbol]
	if !ok {
		return 0
	}
	return st.window.Len()
}

// ResetSymbol 清空标的全部状态，标的不存在时也可调用
func (m *MarketState) ResetSymbol(symbol string) {
	delete(m.symbols, symbol)
}

// ResetAll 会话切换时清空所有标的
func (m *MarketState) ResetAll() {
	m.symbols = make(map[string]*symbolState)
}
