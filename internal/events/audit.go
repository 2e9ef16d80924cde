package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AuditEntry is one human-readable record of a mutating lifecycle operation,
// e.g. "Cancelled order #42". Consumed by the audit-log collaborator; the
// order service never depends on it being written.
type AuditEntry struct {
	EventID          string    `json:"event_id"`
	OrderID          string    `json:"order_id"`
	Action           string    `json:"action"`
	PerformedByID    string    `json:"performed_by_id"`
	PerformedByEmail string    `json:"performed_by_email"`
	Timestamp        time.Time `json:"timestamp"`
}

type AuditProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewAuditProducer builds the producer for a comma-separated broker list.
func NewAuditProducer(brokers, topic string, logger *zap.Logger) *AuditProducer {
	addrs := strings.Split(brokers, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(addrs...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &AuditProducer{
		writer: writer,
		logger: logger,
	}
}

func (p *AuditProducer) Publish(ctx context.Context, entry AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		p.logger.Error("Failed to marshal audit entry", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(entry.OrderID),
		Value: payload,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish audit entry",
			zap.String("event_id", entry.EventID),
			zap.String("order_id", entry.OrderID),
			zap.Error(err))
		return err
	}

	p.logger.Info("Audit entry published",
		zap.String("event_id", entry.EventID),
		zap.String("order_id", entry.OrderID),
		zap.String("action", entry.Action))

	return nil
}

func (p *AuditProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
