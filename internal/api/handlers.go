package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"catalyst-trader/internal/executor"
	"catalyst-trader/internal/model"
	"catalyst-trader/internal/strategy"
)

// FillLister 持久化的成交记录来源
type FillLister interface {
	ListFills(ctx context.Context, limit int) ([]model.Fill, error)
}

// MarkSource 返回各标的最近的标记价格
type MarkSource func() map[string]float64

// Handler 状态接口的依赖
type Handler struct {
	watchlist *strategy.Watchlist
	ledger    *executor.Ledger
	marks     MarkSource
	fillLog   FillLister // 为空时从内存账本读取
	logger    *zap.SugaredLogger
}

// NewHandler 构造函数
func NewHandler(watchlist *strategy.Watchlist, ledger *executor.Ledger, marks MarkSource, fillLog FillLister, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if marks == nil {
		marks = func() map[string]float64 { return nil }
	}
	return &Handler{watchlist: watchlist, ledger: ledger, marks: marks, fillLog: fillLog, logger: logger}
}

// HealthCheck 处理 GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetWatchlist 处理 GET /api/v1/watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.watchlist.Pending())
}

// GetPositions 处理 GET /api/v1/positions
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.ledger.Positions())
}

// GetFills 处理 GET /api/v1/fills?limit=N
func (h *Handler) GetFills(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	if h.fillLog != nil {
		fills, err := h.fillLog.ListFills(r.Context(), limit)
		if err != nil {
			h.logger.Errorf("Failed to list fills: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, fills)
		return
	}

	fills := h.ledger.DumpFills()
	if limit > 0 && len(fills) > limit {
		fills = fills[len(fills)-limit:]
	}
	respondJSON(w, http.StatusOK, fills)
}

// equityResponse 账户概览
type equityResponse struct {
	StartingCash float64 `json:"starting_cash"`
	Cash         float64 `json:"cash"`
	Equity       float64 `json:"equity"`
	RealizedPnL  float64 `json:"realized_pnl"`
	OpenPosition int     `json:"open_positions"`
}

// GetEquity 处理 GET /api/v1/equity
func (h *Handler) GetEquity(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, equityResponse{
		StartingCash: h.ledger.StartingCash(),
		Cash:         h.ledger.Cash(),
		Equity:       h.ledger.Equity(h.marks()),
		RealizedPnL:  h.ledger.RealizedPnL(),
		OpenPosition: len(h.ledger.Positions()),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
