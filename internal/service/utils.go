package service

import (
	"math"
	"time"
)

// IsFinite 判断是否为有限数 (非 NaN、非 Inf)
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// IsPositivePrice 价格必须是有限正数
func IsPositivePrice(px float64) bool {
	return IsFinite(px) && px > 0
}

// Clamp 将 x 限制在 [lo, hi] 区间
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// RoundToStep 四舍五入到 step 的整数倍，step <= 0 时原样返回
func RoundToStep(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Round(x/step) * step
}

// FloorToStep 向下取整到 step 的整数倍
func FloorToStep(x, step float64) float64 {
	if step <= 0 {
		return math.Floor(x)
	}
	// 1e-9 吸收浮点误差，例如 2500/1 得到 2499.9999999
	return math.Floor(x/step+1e-9) * step
}

// CeilToStep 向上取整到 step 的整数倍
func CeilToStep(x, step float64) float64 {
	if step <= 0 {
		return math.Ceil(x)
	}
	return math.Ceil(x/step-1e-9) * step
}

// LoadLocation 加载交易时区，失败时回退到 UTC
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		Logger.Sugar().Warnf("Unknown session timezone %q, using UTC", name)
		return time.UTC
	}
	return loc
}

// SessionDay 返回 t 在 loc 时区下的交易日 (零点)
func SessionDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
