package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"catalyst-trader/internal/executor"
	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
	"catalyst-trader/internal/store"
)

// EventPublisher 信号与成交事件的下游
type EventPublisher interface {
	PublishSignal(ctx context.Context, item model.ScoredItem) error
	PublishFill(ctx context.Context, fill model.Fill) error
}

// FillLog 成交持久化
type FillLog interface {
	CreateFill(ctx context.Context, f model.Fill) (int64, error)
}

// SignalGenerator 串联新闻路径 (分类 -> 打分 -> 观察列表) 与行情路径 (确认 -> 仓位 -> 账本)
// 两条路径都只由事件循环调用
type SignalGenerator struct {
	classifier *EventClassifier
	scorer     *ImpactScorer
	watchlist  *Watchlist
	market     *MarketState
	sizer      *PositionSizer
	ledger     executor.Executor

	dedupe    store.Store
	publisher EventPublisher
	fillLog   FillLog

	threshold float64
	watchTTL  time.Duration
	loc       *time.Location
	session   time.Time // 当前交易日零点
	now       func() time.Time

	marksMu sync.RWMutex
	marks   map[string]float64

	logger *zap.SugaredLogger
}

// NewSignalGenerator 初始化信号生成器，去重默认使用内存存储
func NewSignalGenerator(cfg *service.Config, ledger executor.Executor, logger *zap.SugaredLogger) *SignalGenerator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SignalGenerator{
		classifier: NewEventClassifier(logger),
		scorer:     NewImpactScorer(),
		watchlist:  NewWatchlist(),
		market:     NewMarketState(GateThresholdsFromConfig(cfg.Gate)),
		sizer:      NewPositionSizer(cfg.Risk),
		ledger:     ledger,
		dedupe:     store.NewMemoryStore(cfg.Redis.TTL),
		threshold:  cfg.News.ScoreThreshold,
		watchTTL:   cfg.News.WatchTTL,
		loc:        service.LoadLocation(cfg.Session.Timezone),
		now:        time.Now,
		marks:      make(map[string]float64),
		logger:     logger,
	}
}

// WithDedupe 替换去重存储
func (sg *SignalGenerator) WithDedupe(s store.Store) *SignalGenerator {
	sg.dedupe = s
	return sg
}

func (sg *SignalGenerator) WithPublisher(p EventPublisher) *SignalGenerator {
	sg.publisher = p
	return sg
}

func (sg *SignalGenerator) WithFillLog(f FillLog) *SignalGenerator {
	sg.fillLog = f
	return sg
}

func (sg *SignalGenerator) Watchlist() *Watchlist { return sg.watchlist }

func (sg *SignalGenerator) Market() *MarketState { return sg.market }

// Marks 最近一根 K 线的收盘价快照
func (sg *SignalGenerator) Marks() map[string]float64 {
	sg.marksMu.RLock()
	defer sg.marksMu.RUnlock()

	out := make(map[string]float64, len(sg.marks))
	for k, v := range sg.marks {
		out[k] = v
	}
	return out
}

func (sg *SignalGenerator) setMark(symbol string, px float64) {
	sg.marksMu.Lock()
	sg.marks[symbol] = px
	sg.marksMu.Unlock()
}

// ProcessNews 对一批新闻打分，达到阈值且未处理过的条目挂入观察列表。返回全部打分结果
func (sg *SignalGenerator) ProcessNews(ctx context.Context, items []model.NewsItem) []model.ScoredItem {
	now := sg.now()
	for _, e := range sg.watchlist.Expire(now, sg.watchTTL) {
		sg.logger.Infof("Watch entry expired: %s (armed %s)", e.Symbol, e.ArmedAt.Format(time.RFC3339))
	}
	if len(items) == 0 {
		return nil
	}

	scored := sg.scorer.ScoreBatch(sg.classifier.ClassifyBatch(items))
	for _, si := range scored {
		symbol := si.PrimarySymbol()
		if symbol == "" || si.Score < sg.threshold {
			continue
		}

		key := store.Hash(si.NewsItem)
		if sg.dedupe != nil {
			seen, err := sg.dedupe.Seen(ctx, key)
			if err != nil {
				sg.logger.Errorf("Dedupe lookup failed for %s: %v", symbol, err)
				continue
			}
			if seen {
				continue
			}
			if err := sg.dedupe.Save(ctx, key); err != nil {
				sg.logger.Errorf("Dedupe save failed for %s: %v", symbol, err)
				continue
			}
		}

		if !sg.watchlist.Arm(symbol, key, si.Score, now) {
			sg.logger.Debugf("Signal for %s not armed (already pending or consumed)", symbol)
			continue
		}
		sg.logger.Infof("!!! SIGNAL ARMED !!! %s [%s] score=%.2f raw=%.1f | %s",
			symbol, si.Class, si.Score, si.RawScore, si.Title)

		if sg.publisher != nil {
			if err := sg.publisher.PublishSignal(ctx, si); err != nil {
				sg.logger.Warnf("Failed to publish signal for %s: %v", symbol, err)
			}
		}
	}
	return scored
}

// OnBar 用一根 K 线驱动行情路径。先检查出场，再检查入场，
// 所以新开的仓位从下一根 K 线开始才受出场规则管理
func (sg *SignalGenerator) OnBar(ctx context.Context, bar model.Bar) {
	if bar.Symbol == "" || !service.IsPositivePrice(bar.Close) || !service.IsFinite(bar.Volume) || bar.Volume < 0 {
		return
	}
	sg.rollSession(bar.StartTime)

	symbol := bar.Symbol
	sg.market.OnBar(symbol, bar.Close, bar.Volume)
	sg.setMark(symbol, bar.Close)

	if fill, ok := sg.ledger.TryExit(symbol, bar.Close, bar.StartTime); ok {
		sg.recordFill(ctx, fill)
		return
	}

	if !sg.watchlist.Contains(symbol) {
		return
	}
	sig := sg.market.Confirm(symbol, bar.Close)
	sg.logger.Debugw("Gate evaluated", "Symbol", symbol, "VolZ", sig.VolZ, "Ret1m", sig.Ret1m, "VwapDev", sig.VwapDev, "Pass", sig.Pass)
	if !sig.Pass {
		return
	}

	// 单次尝试：无论能否下单都移出观察列表
	entry, _ := sg.watchlist.Remove(symbol)
	order := sg.sizer.Size(symbol, bar.Close, bar.StartTime, 0, sg.ledger.Equity(sg.Marks()))
	if order.IsEmpty() {
		sg.logger.Infof("Gate passed for %s but no viable size at %.4f", symbol, bar.Close)
		return
	}
	order.Reason = fmt.Sprintf("ENTRY score=%.2f", entry.Score)

	sg.logger.Infof("!!! NEW TRADING SIGNAL !!! %s", order.String())
	if fill, ok := sg.ledger.Fill(order); ok {
		sg.recordFill(ctx, fill)
	}
}

// rollSession 进入新的交易日时清空所有行情状态
func (sg *SignalGenerator) rollSession(t time.Time) {
	day := service.SessionDay(t, sg.loc)
	if sg.session.IsZero() {
		sg.session = day
		return
	}
	if day.After(sg.session) {
		sg.logger.Infof("Session rollover %s -> %s, resetting market state",
			sg.session.Format("2006-01-02"), day.Format("2006-01-02"))
		sg.market.ResetAll()
		sg.session = day
	}
}

func (sg *SignalGenerator) recordFill(ctx context.Context, fill model.Fill) {
	if sg.fillLog != nil {
		if _, err := sg.fillLog.CreateFill(ctx, fill); err != nil {
			sg.logger.Errorf("Failed to persist fill %s %s: %v", fill.Side, fill.Symbol, err)
		}
	}
	if sg.publisher != nil {
		if err := sg.publisher.PublishFill(ctx, fill); err != nil {
			sg.logger.Warnf("Failed to publish fill for %s: %v", fill.Symbol, err)
		}
	}
}
