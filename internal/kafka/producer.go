package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"catalyst-trader/internal/model"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 发布信号与成交事件，消息 key 为标的
type Producer struct {
	writer      messageWriter
	signalTopic string
	fillTopic   string
	now         func() time.Time
}

// NewProducer 创建生产者，topic 按消息设置
func NewProducer(brokers []string, signalTopic, fillTopic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return newProducer(writer, signalTopic, fillTopic)
}

func newProducer(w messageWriter, signalTopic, fillTopic string) *Producer {
	return &Producer{writer: w, signalTopic: signalTopic, fillTopic: fillTopic, now: time.Now}
}

// PublishSignal 发布 SIGNAL_ARMED 事件
func (p *Producer) PublishSignal(ctx context.Context, item model.ScoredItem) error {
	symbol := item.PrimarySymbol()
	event := SignalEvent{
		EventType: EventSignalArmed,
		Symbol:    symbol,
		Class:     item.Class,
		Score:     item.Score,
		RawScore:  item.RawScore,
		Title:     item.Title,
		URL:       item.URL,
		Source:    item.Source,
		Reasons:   item.Reasons,
		RuleSet:   item.RuleSet,
		Timestamp: p.now(),
	}
	return p.publish(ctx, p.signalTopic, symbol, event)
}

// PublishFill 发布 FILL 事件
func (p *Producer) PublishFill(ctx context.Context, fill model.Fill) error {
	event := FillEvent{
		EventType: EventFill,
		Symbol:    fill.Symbol,
		Fill:      fill,
		Timestamp: p.now(),
	}
	return p.publish(ctx, p.fillTopic, fill.Symbol, event)
}

func (p *Producer) publish(ctx context.Context, topic, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close 关闭 Kafka 生产者
func (p *Producer) Close() error {
	return p.writer.Close()
}
