package executor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalyst-trader/internal/model"
)

func newTestLedger(cash float64) *Ledger {
	return NewLedger(cash, NewExitPolicy(defaultExitConfig()), nil)
}

func buy(sym string, qty, px float64, ts time.Time) model.Order {
	return model.Order{Side: model.SideBuy, Symbol: sym, Qty: qty, Px: px, Ts: ts}
}

func sell(sym string, qty, px float64, ts time.Time) model.Order {
	return model.Order{Side: model.SideSell, Symbol: sym, Qty: qty, Px: px, Ts: ts}
}

func TestLedgerRoundTrip(t *testing.T) {
	l := newTestLedger(10000)
	now := time.Now()

	_, ok := l.Fill(buy("ABC", 100, 10, now))
	require.True(t, ok)
	_, ok = l.Fill(sell("ABC", 100, 12, now.Add(time.Minute)))
	require.True(t, ok)

	assert.InDelta(t, 200.0, l.RealizedPnL(), 1e-9)
	assert.InDelta(t, 10000.0-1000+1200, l.Cash(), 1e-9)
	_, open := l.Position("ABC")
	assert.False(t, open)
	assert.Empty(t, l.Positions())
	assert.Len(t, l.DumpFills(), 2)
}

func TestLedgerWeightedAverageCost(t *testing.T) {
	l := newTestLedger(10000)
	now := time.Now()

	l.Fill(buy("ABC", 100, 10, now))
	l.Fill(buy("ABC", 100, 12, now.Add(time.Minute)))

	pos, ok := l.Position("ABC")
	require.True(t, ok)
	assert.Equal(t, 200.0, pos.Qty)
	assert.InDelta(t, 11.0, pos.AvgCost, 1e-9)
	assert.Equal(t, 12.0, pos.SessionHigh)
	assert.Equal(t, now, pos.OpenTs)
}

func TestLedgerPartialAndOversizedSell(t *testing.T) {
	l := newTestLedger(10000)
	now := time.Now()
	l.Fill(buy("ABC", 100, 10, now))

	fill, ok := l.Fill(sell("ABC", 40, 11, now))
	require.True(t, ok)
	assert.Equal(t, 40.0, fill.Qty)
	pos, ok := l.Position("ABC")
	require.True(t, ok)
	assert.Equal(t, 60.0, pos.Qty)
	assert.InDelta(t, 10.0, pos.AvgCost, 1e-9)
	assert.Equal(t, 11.0, pos.SessionHigh)

	// 卖出数量超过持仓时按持仓数量成交
	fill, ok = l.Fill(sell("ABC", 500, 9, now))
	require.True(t, ok)
	assert.Equal(t, 60.0, fill.Qty)
	assert.InDelta(t, 40.0-60.0, l.RealizedPnL(), 1e-9)
	_, open := l.Position("ABC")
	assert.False(t, open)
}

func TestLedgerRejectsInvalidOrders(t *testing.T) {
	l := newTestLedger(10000)
	now := time.Now()

	for _, o := range []model.Order{
		buy("ABC", 0, 10, now),
		buy("ABC", -5, 10, now),
		buy("ABC", 10, math.NaN(), now),
		buy("ABC", 10, math.Inf(1), now),
		buy("ABC", 10, 0, now),
		sell("XYZ", 10, 10, now), // 没有持仓，不支持做空
		{Side: "HOLD", Symbol: "ABC", Qty: 1, Px: 1, Ts: now},
	} {
		_, ok := l.Fill(o)
		assert.False(t, ok, o.String())
	}
	assert.Empty(t, l.DumpFills())
	assert.Equal(t, 10000.0, l.Cash())
}

func TestLedgerEquityUsesMarksWithCostFallback(t *testing.T) {
	l := newTestLedger(10000)
	now := time.Now()
	l.Fill(buy("AAA", 100, 10, now))
	l.Fill(buy("BBB", 50, 20, now))

	equity := l.Equity(map[string]float64{"AAA": 11, "BBB": math.NaN()})
	// 现金 8000 + AAA 1100 + BBB 按成本 1000
	assert.InDelta(t, 10100.0, equity, 1e-9)
	assert.InDelta(t, 10000.0, l.Equity(nil), 1e-9)
}

func TestLedgerTryExit(t *testing.T) {
	l := newTestLedger(10000)
	open := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	l.Fill(buy("ABC", 100, 10, open))

	_, ok := l.TryExit("ABC", 10.2, open.Add(5*time.Minute))
	assert.False(t, ok)
	_, ok = l.TryExit("NOPE", 10, open)
	assert.False(t, ok)

	fill, ok := l.TryExit("ABC", 15.5, open.Add(10*time.Minute))
	require.True(t, ok)
	assert.Equal(t, model.SideSell, fill.Side)
	assert.Equal(t, 100.0, fill.Qty)
	assert.Equal(t, string(model.ExitProfitTarget), fill.Reason)
	_, open2 := l.Position("ABC")
	assert.False(t, open2)
	assert.InDelta(t, 550.0, l.RealizedPnL(), 1e-9)
}

func TestLedgerReset(t *testing.T) {
	l := newTestLedger(10000)
	l.Fill(buy("ABC", 10, 10, time.Now()))

	l.Reset()
	assert.Equal(t, 10000.0, l.Cash())
	assert.Empty(t, l.Positions())
	assert.Empty(t, l.DumpFills())

	l.Reset(2500)
	assert.Equal(t, 2500.0, l.Cash())
	assert.Equal(t, 2500.0, l.StartingCash())
	assert.Zero(t, l.RealizedPnL())
}

func TestLedgerDumpFillsIsACopy(t *testing.T) {
	l := newTestLedger(10000)
	l.Fill(buy("ABC", 10, 10, time.Now()))

	fills := l.DumpFills()
	fills[0].Qty = 999
	assert.Equal(t, 10.0, l.DumpFills()[0].Qty)
}

var _ Executor = (*Ledger)(nil)
