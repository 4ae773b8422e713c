package kafka

import (
	"time"

	"catalyst-trader/internal/model"
)

const (
	EventSignalArmed = "SIGNAL_ARMED"
	EventFill        = "FILL"
)

// SignalEvent 新闻信号被挂起等待价格确认
type SignalEvent struct {
	EventType string              `json:"event_type"`
	Symbol    string              `json:"symbol"`
	Class     model.CatalystClass `json:"class"`
	Score     float64             `json:"score"`
	RawScore  float64             `json:"raw_score"`
	Title     string              `json:"title"`
	URL       string              `json:"url,omitempty"`
	Source    string              `json:"source,omitempty"`
	Reasons   []string            `json:"reasons,omitempty"`
	RuleSet   string              `json:"rule_set,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// FillEvent 模拟成交
type FillEvent struct {
	EventType string     `json:"event_type"`
	Symbol    string     `json:"symbol"`
	Fill      model.Fill `json:"fill"`
	Timestamp time.Time  `json:"timestamp"`
}
