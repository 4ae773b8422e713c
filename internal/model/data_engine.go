package model

import (
	"context"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"catalyst-trader/internal/service"
)

// BarEngine 负责接收连接器的分钟 K 线，过滤后转发给事件循环
type BarEngine struct {
	inChan  chan Bar
	outChan chan Bar
	symbols map[string]bool // 为空表示不过滤

	lastStart map[string]time.Time // 只在 Start 的 goroutine 中访问
	dropped   atomic.Uint64
}

// NewBarEngine 创建 BarEngine，bufSize <= 0 时使用默认缓冲
func NewBarEngine(inChan chan Bar, symbols []string, bufSize int) *BarEngine {
	if bufSize <= 0 {
		bufSize = 1024
	}
	set := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			set[s] = true
		}
	}
	return &BarEngine{
		inChan:    inChan,
		outChan:   make(chan Bar, bufSize),
		symbols:   set,
		lastStart: make(map[string]time.Time),
	}
}

// Start 启动转发循环，ctx 取消或输入关闭时关闭输出通道
func (be *BarEngine) Start(ctx context.Context) {
	service.Logger.Info("Bar Engine started, monitoring bar stream...", zap.Int("Symbols", len(be.symbols)))
	defer close(be.outChan)

	for {
		select {
		case <-ctx.Done():
			service.Logger.Info("Bar Engine stopped")
			return
		case bar, ok := <-be.inChan:
			if !ok {
				service.Logger.Info("Bar input closed, Bar Engine stopped")
				return
			}
			if !be.accept(bar) {
				continue
			}
			// 不阻塞连接器
			select {
			case be.outChan <- bar:
			default:
				be.dropped.Add(1)
				service.Logger.Warn("Bar output channel full! Dropping bar.",
					zap.String("Symbol", bar.Symbol), zap.Time("Start", bar.StartTime))
			}
		}
	}
}

// accept 过滤未订阅标的、非法价格和重复/乱序的 K 线 (重连后的回放)
func (be *BarEngine) accept(bar Bar) bool {
	if len(be.symbols) > 0 && !be.symbols[bar.Symbol] {
		return false
	}
	if !service.IsPositivePrice(bar.Close) || math.IsNaN(bar.Volume) || math.IsInf(bar.Volume, 0) || bar.Volume < 0 {
		service.Logger.Debug("Dropping malformed bar", zap.String("Symbol", bar.Symbol))
		return false
	}
	if last, ok := be.lastStart[bar.Symbol]; ok && !bar.StartTime.After(last) {
		return false
	}
	be.lastStart[bar.Symbol] = bar.StartTime
	return true
}

// GetBarChannel 供事件循环读取过滤后的 K 线
func (be *BarEngine) GetBarChannel() chan Bar {
	return be.outChan
}

// Dropped 因输出通道满而丢弃的 K 线数量
func (be *BarEngine) Dropped() uint64 {
	return be.dropped.Load()
}
