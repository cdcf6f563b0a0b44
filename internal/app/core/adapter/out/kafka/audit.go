package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
)

// messageWriter 是 kafka.Writer 用到的部分，方便測試替換
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditPublisher 將每筆稽核紀錄發佈到 Kafka topic
// key 為操作名稱，同一種操作落在同一個 partition
type AuditPublisher struct {
	writer messageWriter
}

// Config Kafka 發佈設定
type Config struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// NewAuditPublisher 建立 Kafka 稽核發佈者
func NewAuditPublisher(cfg Config) *AuditPublisher {
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &AuditPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           cfg.WriteTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

// Record 實作 audit.Sink
func (p *AuditPublisher) Record(ctx context.Context, entry audit.Entry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(entry.Operation),
		Value: value,
		Time:  entry.Timestamp,
		Headers: []kafka.Header{
			{Key: "audit-id", Value: []byte(entry.ID)},
			{Key: "outcome", Value: []byte(entry.Outcome)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish audit entry: %w", err)
	}
	return nil
}

// Close 關閉底層 writer，送出緩衝中的訊息
func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}

var _ audit.Sink = (*AuditPublisher)(nil)
