package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultGate() GateThresholds {
	return GateThresholds{WindowSize: 60, VolZMin: 2.0, Ret1mMin: 0.03, VwapDevMin: 0.02}
}

func TestConfirmColdState(t *testing.T) {
	m := NewMarketState(defaultGate())
	sig := m.Confirm("NEW", 10)

	assert.Equal(t, "NEW", sig.Symbol)
	assert.Zero(t, sig.VolZ)
	assert.Zero(t, sig.Ret1m)
	assert.Zero(t, sig.VwapDev)
	assert.False(t, sig.Pass)
}

func TestConfirmZeroVolume(t *testing.T) {
	m := NewMarketState(defaultGate())
	for i := 0; i < 5; i++ {
		m.OnBar("ZV", 10, 0)
	}
	sig := m.Confirm("ZV", 11)

	assert.Zero(t, sig.VwapDev)
	assert.Zero(t, sig.VolZ)
	assert.InDelta(t, 0.1, sig.Ret1m, 1e-9)
	assert.False(t, sig.Pass)
}

func TestConfirmVolumeBreakout(t *testing.T) {
	m := NewMarketState(defaultGate())
	for i := 0; i < 59; i++ {
		m.OnBar("BRK", 10, 1000)
	}
	m.OnBar("BRK", 10.5, 10000)
	sig := m.Confirm("BRK", 10.5)

	assert.Greater(t, sig.VolZ, 7.0)
	assert.InDelta(t, 0.05, sig.Ret1m, 1e-9)
	assert.True(t, sig.Pass)
}

func TestConfirmRequiresVolume(t *testing.T) {
	m := NewMarketState(defaultGate())
	price := 10.0
	for i := 0; i < 30; i++ {
		m.OnBar("FLAT", price, 1000)
		price += 0.1
	}
	sig := m.Confirm("FLAT", price)

	assert.Zero(t, sig.VolZ)
	assert.Greater(t, sig.Ret1m, 0.03)
	assert.Greater(t, sig.VwapDev, 0.02)
	assert.False(t, sig.Pass)
}

func TestConfirmVwapLed(t *testing.T) {
	m := NewMarketState(defaultGate())
	m.SetReferencePrice("VW", 10.2)
	for i := 0; i < 59; i++ {
		vol := 1000.0
		if i%2 == 1 {
			vol = 1200
		}
		m.OnBar("VW", 10, vol)
	}
	m.OnBar("VW", 10.3, 1290)
	sig := m.Confirm("VW", 10.3)

	// 收益不足以突破，但 VWAP 偏离和略低的 z 值足够
	assert.Less(t, sig.Ret1m, 0.03)
	assert.GreaterOrEqual(t, sig.VolZ, 1.5)
	assert.Less(t, sig.VolZ, 2.0)
	assert.GreaterOrEqual(t, sig.VwapDev, 0.02)
	assert.True(t, sig.Pass)
}

func TestReferencePriceSetOncePerSession(t *testing.T) {
	m := NewMarketState(defaultGate())
	m.OnBar("REF", 10, 100)
	m.OnBar("REF", 12, 100)
	m.SetReferencePrice("REF", 99)

	ref, ok := m.ReferencePrice("REF")
	require.True(t, ok)
	assert.Equal(t, 10.0, ref)

	m.ResetAll()
	_, ok = m.ReferencePrice("REF")
	assert.False(t, ok)
	m.SetReferencePrice("REF", 11)
	ref, _ = m.ReferencePrice("REF")
	assert.Equal(t, 11.0, ref)
}

func TestOnBarIgnoresInvalidInput(t *testing.T) {
	m := NewMarketState(GateThresholds{WindowSize: 5})
	m.OnBar("BAD", 0, 100)
	m.OnBar("BAD", -1, 100)
	m.OnBar("BAD", 10, -5)
	m.OnBar("", 10, 5)
	assert.Zero(t, m.WindowLen("BAD"))

	for i := 0; i < 8; i++ {
		m.OnBar("BAD", 10, float64(i))
	}
	assert.Equal(t, 5, m.WindowLen("BAD"))
}

func TestResetSymbol(t *testing.T) {
	m := NewMarketState(defaultGate())
	assert.NotPanics(t, func() { m.ResetSymbol("NOPE") })

	m.OnBar("A", 10, 100)
	m.OnBar("B", 10, 100)
	m.ResetSymbol("A")

	assert.Zero(t, m.WindowLen("A"))
	assert.Equal(t, 1, m.WindowLen("B"))
	assert.False(t, m.Confirm("A", 10).Pass)
}
