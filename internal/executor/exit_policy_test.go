package executor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
)

func defaultExitConfig() service.ExitConfig {
	return service.ExitConfig{
		TrailingStopPct: 0.12,
		ProfitTargetPct: 0.50,
		TimeStop:        30 * time.Minute,
		TimeStopMinGain: 0.03,
	}
}

func TestExitPolicyTrailingStopWinsOverTimeStop(t *testing.T) {
	p := NewExitPolicy(defaultExitConfig())
	open := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	pos := &model.Position{Symbol: "ABC", Qty: 100, AvgCost: 10, SessionHigh: 12, OpenTs: open}

	// 涨幅 5%，自高点回撤约 12.5%，持仓已超过 30 分钟
	sig := p.Evaluate(pos, 10.50, open.Add(45*time.Minute))
	require.NotNil(t, sig)
	assert.Equal(t, model.ExitTrailingStop, sig.Reason)
	assert.Equal(t, 10.50, sig.ExitPrice)
}

func TestExitPolicyRules(t *testing.T) {
	open := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		pos    model.Position
		last   float64
		now    time.Time
		reason model.ExitReason
		fires  bool
	}{
		{"profit target", model.Position{Qty: 10, AvgCost: 10, SessionHigh: 15}, 15.0, open.Add(time.Minute), model.ExitProfitTarget, true},
		{"time stop on stagnant position", model.Position{Qty: 10, AvgCost: 10, SessionHigh: 10.2}, 10.1, open.Add(30 * time.Minute), model.ExitTimeStop, true},
		{"running position survives timer", model.Position{Qty: 10, AvgCost: 10, SessionHigh: 10.6}, 10.5, open.Add(2 * time.Hour), "", false},
		{"young stagnant position stays", model.Position{Qty: 10, AvgCost: 10, SessionHigh: 10}, 10.0, open.Add(29 * time.Minute), "", false},
		{"drawdown just under threshold", model.Position{Qty: 10, AvgCost: 10, SessionHigh: 12}, 10.6, open.Add(time.Minute), "", false},
		{"drawdown exactly at threshold", model.Position{Qty: 10, AvgCost: 9, SessionHigh: 10}, 8.8, open.Add(time.Minute), model.ExitTrailingStop, true},
		{"drawdown exactly at threshold from 12", model.Position{Qty: 10, AvgCost: 10, SessionHigh: 12}, 10.56, open.Add(time.Minute), model.ExitTrailingStop, true},
		{"gain exactly at target", model.Position{Qty: 10, AvgCost: 1.1, SessionHigh: 1.65}, 1.65, open.Add(time.Minute), model.ExitProfitTarget, true},
		{"gain exactly at target from 2.2", model.Position{Qty: 10, AvgCost: 2.2, SessionHigh: 3.3}, 3.3, open.Add(time.Minute), model.ExitProfitTarget, true},
		{"gain just under target", model.Position{Qty: 10, AvgCost: 2.2, SessionHigh: 3.29}, 3.29, open.Add(time.Minute), "", false},
	}

	p := NewExitPolicy(defaultExitConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := tt.pos
			pos.OpenTs = open
			sig := p.Evaluate(&pos, tt.last, tt.now)
			if !tt.fires {
				assert.Nil(t, sig)
				return
			}
			require.NotNil(t, sig)
			assert.Equal(t, tt.reason, sig.Reason)
		})
	}
}

func TestExitPolicyUpdatesHighWatermark(t *testing.T) {
	p := NewExitPolicy(defaultExitConfig())
	now := time.Now()
	pos := &model.Position{Qty: 1, AvgCost: 10, SessionHigh: 10, OpenTs: now}

	assert.Nil(t, p.Evaluate(pos, 13, now))
	assert.Equal(t, 13.0, pos.SessionHigh)

	// 自 13 回撤约 12.3%
	sig := p.Evaluate(pos, 11.40, now)
	require.NotNil(t, sig)
	assert.Equal(t, model.ExitTrailingStop, sig.Reason)
}

func TestExitPolicyIgnoresBadInput(t *testing.T) {
	p := NewExitPolicy(defaultExitConfig())
	pos := &model.Position{Qty: 1, AvgCost: 10, SessionHigh: 10}
	assert.Nil(t, p.Evaluate(nil, 10, time.Now()))
	assert.Nil(t, p.Evaluate(pos, math.NaN(), time.Now()))
	assert.Nil(t, p.Evaluate(pos, -1, time.Now()))
	assert.Equal(t, 10.0, pos.SessionHigh)
}
