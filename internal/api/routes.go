package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes 注册全部状态路由
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods("GET")
	api.HandleFunc("/positions", handler.GetPositions).Methods("GET")
	api.HandleFunc("/fills", handler.GetFills).Methods("GET")
	api.HandleFunc("/equity", handler.GetEquity).Methods("GET")

	return r
}
