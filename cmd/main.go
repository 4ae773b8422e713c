package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"catalyst-trader/internal/api"
	"catalyst-trader/internal/database"
	"catalyst-trader/internal/executor"
	"catalyst-trader/internal/kafka"
	"catalyst-trader/internal/model"
	"catalyst-trader/internal/report"
	"catalyst-trader/internal/service"
	"catalyst-trader/internal/store"
	"catalyst-trader/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config", "directory containing config.yaml")
	flag.Parse()

	cfg, err := service.LoadConfig(*configPath)
	if err != nil {
		// 日志还未初始化
		service.InitLogger("info")
		service.Logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	service.InitLogger(cfg.Logging.Level)
	defer service.Logger.Sync()
	logger := service.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. 账本与信号管线
	ledger := executor.NewLedger(cfg.Risk.StartingCash, executor.NewExitPolicy(cfg.Exit), logger.With("Component", "ledger"))
	generator := strategy.NewSignalGenerator(cfg, ledger, logger.With("Component", "pipeline"))

	// 2. 可选的外部依赖，未配置时退化到内存实现
	var closers []func() error

	if cfg.Redis.Addr != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		generator.WithDedupe(redisStore)
		closers = append(closers, redisStore.Close)
		logger.Infof("Dedupe store: redis %s", cfg.Redis.Addr)
	}

	var fillLister api.FillLister
	if cfg.Database.URL != "" {
		db, err := database.New(cfg.Database.URL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		generator.WithFillLog(db)
		fillLister = db
		closers = append(closers, db.Close)
		logger.Info("Fill log: postgres")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.SignalTopic, cfg.Kafka.FillTopic)
		generator.WithPublisher(producer)
		closers = append(closers, producer.Close)
		logger.Infof("Event publisher: kafka %v", cfg.Kafka.Brokers)
	}

	// 3. 新闻源
	providers := make([]api.Provider, 0, len(cfg.News.Providers))
	for _, pc := range cfg.News.Providers {
		providers = append(providers, api.NewHTTPProvider(pc, cfg.News.MaxPages, logger.With("Provider", pc.Name)))
	}
	if len(providers) == 0 {
		logger.Warn("No news providers configured, only market data will be processed")
	}

	// 4. 行情：连接器 -> BarEngine -> 事件循环
	connector := api.NewConnector(cfg.MarketData, logger.With("Component", "connector"))
	go connector.Start(ctx)
	barEngine := model.NewBarEngine(connector.GetBarChannel(), cfg.MarketData.Symbols, 0)
	go barEngine.Start(ctx)

	// 5. 状态接口
	handler := api.NewHandler(generator.Watchlist(), ledger, generator.Marks, fillLister, logger.With("Component", "http"))
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.SetupRoutes(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("Status API listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server error: %v", err)
		}
	}()

	// 6. 单线程事件循环：新闻轮询与 K 线处理串行执行
	pollNews := func() {
		items, errs := api.FetchAll(ctx, providers)
		for _, err := range errs {
			logger.Warnf("News fetch error: %v", err)
		}
		scored := generator.ProcessNews(ctx, items)
		logger.Debugf("News cycle: fetched=%d scored=%d pending=%d", len(items), len(scored), generator.Watchlist().Len())
	}

	interval := cfg.News.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pollNews()
	bars := barEngine.GetBarChannel()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			pollNews()
		case bar, ok := <-bars:
			if !ok {
				break loop
			}
			generator.OnBar(ctx, bar)
		}
	}

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP server shutdown: %v", err)
	}

	if cfg.Export.FillsCSV != "" {
		fills := ledger.DumpFills()
		if err := report.WriteFillsFile(cfg.Export.FillsCSV, fills); err != nil {
			logger.Errorf("Failed to export fills: %v", err)
		} else {
			logger.Infof("Exported %d fills to %s", len(fills), cfg.Export.FillsCSV)
		}
	}
	logger.Infof("Final equity: %.2f (realized %.2f, dropped bars %d)",
		ledger.Equity(generator.Marks()), ledger.RealizedPnL(), barEngine.Dropped())

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Warnf("Close error: %v", err)
		}
	}
}
