package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepRounding(t *testing.T) {
	assert.InDelta(t, 2.01, RoundToStep(2.0149, 0.01), 1e-9)
	assert.Equal(t, 2500.0, FloorToStep(2500.0000001, 1))
	assert.Equal(t, 2499.0, FloorToStep(2499.7, 1))
	assert.Equal(t, 300.0, FloorToStep(399, 100))
	assert.Equal(t, 2500.0, CeilToStep(2500, 1))
	assert.Equal(t, 2501.0, CeilToStep(2500.2, 1))
	assert.Equal(t, 1.5, RoundToStep(1.5, 0))
}

func TestPriceGuards(t *testing.T) {
	assert.True(t, IsPositivePrice(1.2))
	assert.False(t, IsPositivePrice(0))
	assert.False(t, IsPositivePrice(-3))
	assert.False(t, IsPositivePrice(math.NaN()))
	assert.False(t, IsPositivePrice(math.Inf(1)))
	assert.Equal(t, 1.0, Clamp(1.7, 0, 1))
	assert.Equal(t, 0.0, Clamp(-0.2, 0, 1))
}

func TestSessionDay(t *testing.T) {
	loc := LoadLocation("America/New_York")
	// 2024-03-05 03:30 UTC 仍是纽约的 3 月 4 日
	ts := time.Date(2024, 3, 5, 3, 30, 0, 0, time.UTC)
	day := SessionDay(ts, loc)
	assert.Equal(t, 4, day.Day())

	assert.Equal(t, time.UTC, LoadLocation("Not/AZone"))
	assert.Equal(t, time.UTC, LoadLocation(""))
}
