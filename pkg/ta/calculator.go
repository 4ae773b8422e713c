package ta

import "math"

// DefaultWindowSize 滚动成交量窗口的默认容量
const DefaultWindowSize = 60

// RollingWindow 固定容量的 FIFO 成交量窗口，满了之后淘汰最旧的值
type RollingWindow struct {
	buf   []float64
	start int // 最旧元素的下标
	size  int
}

// NewRollingWindow 创建窗口，capacity <= 0 时使用默认容量
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &RollingWindow{buf: make([]float64, capacity)}
}

// Push 追加一个样本
func (w *RollingWindow) Push(v float64) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = v
		w.size++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

func (w *RollingWindow) Len() int { return w.size }

func (w *RollingWindow) Cap() int { return len(w.buf) }

// Values 按从旧到新的顺序返回窗口内容的副本
func (w *RollingWindow) Values() []float64 {
	out := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Last 返回最新的样本，窗口为空时返回 0
func (w *RollingWindow) Last() float64 {
	if w.size == 0 {
		return 0
	}
	return w.buf[(w.start+w.size-1)%len(w.buf)]
}

// Mean 窗口均值，空窗口返回 0
func (w *RollingWindow) Mean() float64 {
	if w.size == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < w.size; i++ {
		sum += w.buf[(w.start+i)%len(w.buf)]
	}
	return sum / float64(w.size)
}

// StdDev 样本标准差 (n-1 分母)，少于两个样本时返回 0
func (w *RollingWindow) StdDev() float64 {
	if w.size < 2 {
		return 0
	}
	mean := w.Mean()
	ss := 0.0
	for i := 0; i < w.size; i++ {
		d := w.buf[(w.start+i)%len(w.buf)] - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(w.size-1))
}

// ZScore 最新样本相对窗口的 z 值，标准差为 0 或窗口为空时返回 0
func (w *RollingWindow) ZScore() float64 {
	sd := w.StdDev()
	if w.size == 0 || sd == 0 {
		return 0
	}
	return (w.Last() - w.Mean()) / sd
}

// VwapAccumulator 会话内的成交量加权均价累加器
type VwapAccumulator struct {
	PriceVolume float64
	Volume      float64
}

// Add 累加一根 K 线，负成交量视为 0
func (a *VwapAccumulator) Add(price, volume float64) {
	if volume <= 0 {
		return
	}
	a.PriceVolume += price * volume
	a.Volume += volume
}

// Price 返回 VWAP，成交量为 0 时退化为 fallback
func (a *VwapAccumulator) Price(fallback float64) float64 {
	if a == nil || a.Volume <= 0 {
		return fallback
	}
	return a.PriceVolume / a.Volume
}
