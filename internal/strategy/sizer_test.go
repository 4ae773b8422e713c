package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"catalyst-trader/internal/service"
)

func testRisk() service.RiskConfig {
	return service.RiskConfig{
		StartingCash:    10000,
		RiskPct:         0.01,
		MinPrice:        0.01,
		TickSize:        0.01,
		LotSize:         1,
		StopPct:         0.08,
		StopFloor:       0.50,
		MinRiskPerShare: 0.01,
		MaxNotional:     5000,
		MinNotional:     5000,
		SlippageFlat:    0.01,
		SlippageBps:     5,
	}
}

func TestSizeTwoDollarStock(t *testing.T) {
	now := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)
	order := NewPositionSizer(testRisk()).Size("ABC", 2.00, now, 0.01, 10000)

	assert.Equal(t, 2500.0, order.Qty)
	assert.InDelta(t, 1.84, order.StopPx, 1e-9)
	assert.InDelta(t, 2.01, order.Px, 1e-9)
	assert.Equal(t, now, order.Ts)
	assert.LessOrEqual(t, order.Qty*2.00, 5000.0)
	// 上限按清洗后的价格计算，滑点后的名义金额可以略高
	assert.InDelta(t, 2500*2.01, order.Notional, 1e-6)
}

func TestSizeNotionalBounds(t *testing.T) {
	tests := []struct {
		name        string
		price       float64
		minNotional float64
		wantQty     float64
		wantPx      float64
	}{
		{"risk budget only", 2.00, 0, 625, 2.01},
		{"floor already met", 2.00, 1000, 625, 2.01},
		{"dollar stop floor", 20.00, 0, 200, 20.01},
		{"notional cap", 100.00, 5000, 50, 100.05},
		{"price above cap", 6000, 5000, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testRisk()
			cfg.MinNotional = tt.minNotional
			order := NewPositionSizer(cfg).SizeEntry("ABC", tt.price, time.Now())

			assert.Equal(t, tt.wantQty, order.Qty)
			assert.InDelta(t, tt.wantPx, order.Px, 1e-9)
			assert.LessOrEqual(t, order.Qty*tt.price, cfg.MaxNotional+1e-9)
		})
	}
}

func TestSizeInvalidInputs(t *testing.T) {
	s := NewPositionSizer(testRisk())
	for _, px := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		order := s.SizeEntry("BAD", px, time.Now())
		assert.Zero(t, order.Qty)
		assert.True(t, order.IsEmpty())
	}
}

func TestSizeQuantityNeverNegative(t *testing.T) {
	s := NewPositionSizer(testRisk())
	for _, px := range []float64{0.005, 0.01, 0.37, 1, 3.33, 49.99, 250, 4999, 5001} {
		order := s.Size("ANY", px, time.Now(), 0.02, 25000)
		assert.GreaterOrEqual(t, order.Qty, 0.0)
		assert.Equal(t, order.Qty, math.Floor(order.Qty))
	}
}
