package strategy

import (
	"sort"
	"sync"
	"time"
)

// WatchEntry 一个待确认的新闻信号
type WatchEntry struct {
	Symbol  string    `json:"symbol"`
	ItemKey string    `json:"item_key"`
	Score   float64   `json:"score"`
	ArmedAt time.Time `json:"armed_at"`
}

// Watchlist 等待价格确认的标的集合
// 每个标的同一时刻最多一个待处理信号；被消费后，只有新的新闻条目才能重新挂起
type Watchlist struct {
	mu       sync.RWMutex
	pending  map[string]WatchEntry
	consumed map[string]string // symbol -> 最近一次被消费的条目 key
}

func NewWatchlist() *Watchlist {
	return &Watchlist{
		pending:  make(map[string]WatchEntry),
		consumed: make(map[string]string),
	}
}

// Arm 挂起信号。标的已在列表中，或条目与上一次消费的条目相同时返回 false
func (w *Watchlist) Arm(symbol, itemKey string, score float64, now time.Time) bool {
	if symbol == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.pending[symbol]; ok {
		return false
	}
	if last, ok := w.consumed[symbol]; ok && last == itemKey {
		return false
	}
	w.pending[symbol] = WatchEntry{Symbol: symbol, ItemKey: itemKey, Score: score, ArmedAt: now}
	return true
}

func (w *Watchlist) Contains(symbol string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.pending[symbol]
	return ok
}

// Remove 消费信号 (无论入场成功还是放弃)，返回被移除的条目
func (w *Watchlist) Remove(symbol string) (WatchEntry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.pending[symbol]
	if !ok {
		return WatchEntry{}, false
	}
	delete(w.pending, symbol)
	w.consumed[symbol] = entry.ItemKey
	return entry, true
}

// Expire 清理超过 ttl 的条目，ttl <= 0 不做处理
func (w *Watchlist) Expire(now time.Time, ttl time.Duration) []WatchEntry {
	if ttl <= 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	var expired []WatchEntry
	for sym, e := range w.pending {
		if now.Sub(e.ArmedAt) >= ttl {
			delete(w.pending, sym)
			w.consumed[sym] = e.ItemKey
			expired = append(expired, e)
		}
	}
	return expired
}

// Pending 按标的排序的快照
func (w *Watchlist) Pending() []WatchEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]WatchEntry, 0, len(w.pending))
	for _, e := range w.pending {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.pending)
}
