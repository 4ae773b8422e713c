package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
)

const (
	evMinuteAggregate = "AM"
	evStatus          = "status"

	defaultReadTimeout = 90 * time.Second
)

// wsAction 认证与订阅请求
type wsAction struct {
	Action string `json:"action"`
	Params string `json:"params"`
}

// wsEvent 行情推送，一帧是一个事件数组。分钟聚合与状态消息共用该结构
type wsEvent struct {
	Ev      string  `json:"ev"`
	Sym     string  `json:"sym"`
	Open    float64 `json:"o"`
	High    float64 `json:"h"`
	Low     float64 `json:"l"`
	Close   float64 `json:"c"`
	Volume  float64 `json:"v"`
	Start   int64   `json:"s"` // 毫秒
	Status  string  `json:"status"`
	Message string  `json:"message"`
}

// Connector 分钟 K 线的 WebSocket 客户端，断线后自动重连
type Connector struct {
	wsURL          string
	apiKey         string
	symbols        []string
	reconnectDelay time.Duration
	readTimeout    time.Duration

	dialer     *websocket.Dialer
	barChannel chan model.Bar
	logger     *zap.SugaredLogger
}

func NewConnector(cfg service.MarketDataConfig, logger *zap.SugaredLogger) *Connector {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	symbols := make([]string, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			symbols = append(symbols, s)
		}
	}

	logger.Infow("Connector initialized", "Symbols", symbols)
	return &Connector{
		wsURL:          cfg.WSURL,
		apiKey:         cfg.APIKey,
		symbols:        symbols,
		reconnectDelay: delay,
		readTimeout:    defaultReadTimeout,
		dialer:         websocket.DefaultDialer,
		barChannel:     make(chan model.Bar, 2048),
		logger:         logger,
	}
}

// Start 阻塞运行，直到 ctx 取消。每次断线等待 reconnectDelay 后重连
func (c *Connector) Start(ctx context.Context) {
	defer close(c.barChannel)
	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			c.logger.Info("Connector stopped")
			return
		}
		c.logger.Warnf("WS session ended: %v, reconnecting in %s...", err, c.reconnectDelay)

		select {
		case <-ctx.Done():
			c.logger.Info("Connector stopped")
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

// runOnce 一次完整的连接会话：拨号、认证、订阅、读循环
func (c *Connector) runOnce(ctx context.Context) error {
	c.logger.Infof("Connecting to market data WS %s", c.wsURL)
	conn, _, err := c.dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial ws: %w", err)
	}
	defer conn.Close()

	// ctx 取消时关闭连接以打断阻塞的读
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if c.apiKey != "" {
		if err := conn.WriteJSON(wsAction{Action: "auth", Params: c.apiKey}); err != nil {
			return fmt.Errorf("failed to send auth: %w", err)
		}
	}
	if len(c.symbols) > 0 {
		params := make([]string, len(c.symbols))
		for i, s := range c.symbols {
			params[i] = evMinuteAggregate + "." + s
		}
		if err := conn.WriteJSON(wsAction{Action: "subscribe", Params: strings.Join(params, ",")}); err != nil {
			return fmt.Errorf("failed to send subscription: %w", err)
		}
		c.logger.Infof("Subscribed to %d minute aggregate streams", len(params))
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	return c.readLoop(conn)
}

// readLoop 持续读取消息，直到连接出错
func (c *Connector) readLoop(conn *websocket.Conn) error {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read ws message: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(c.readTimeout))

		bars, err := c.decode(message)
		if err != nil {
			c.logger.Debugf("Skipping undecodable WS frame: %v", err)
			continue
		}
		for _, bar := range bars {
			// 使用 select/default 防止阻塞 Connector
			select {
			case c.barChannel <- bar:
			default:
				c.logger.Warnw("Bar channel full! Dropping bar", "Symbol", bar.Symbol)
			}
		}
	}
}

// decode 解析一帧消息，非分钟聚合事件被忽略，状态消息记录日志
func (c *Connector) decode(message []byte) ([]model.Bar, error) {
	var events []wsEvent
	if err := json.Unmarshal(message, &events); err != nil {
		// 少数服务端会发送单个对象
		var single wsEvent
		if err2 := json.Unmarshal(message, &single); err2 != nil {
			return nil, fmt.Errorf("failed to unmarshal ws frame: %w", err)
		}
		events = []wsEvent{single}
	}

	var bars []model.Bar
	for _, ev := range events {
		switch ev.Ev {
		case evStatus:
			c.logger.Infof("WS status: %s %s", ev.Status, ev.Message)
		case evMinuteAggregate:
			if ev.Sym == "" {
				continue
			}
			bars = append(bars, model.Bar{
				Symbol:    strings.ToUpper(ev.Sym),
				StartTime: time.UnixMilli(ev.Start).UTC(),
				Open:      ev.Open,
				High:      ev.High,
				Low:       ev.Low,
				Close:     ev.Close,
				Volume:    ev.Volume,
			})
		}
	}
	return bars, nil
}

// GetBarChannel 连接器输出的原始 K 线流
func (c *Connector) GetBarChannel() chan model.Bar {
	return c.barChannel
}
