package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewAuditProducer_BrokerList(t *testing.T) {
	producer := NewAuditProducer("broker-a:9092, broker-b:9092", "order-audit-log", zap.NewNop())
	defer producer.Close()

	require.NotNil(t, producer.writer)
	addr := producer.writer.Addr.String()
	assert.Contains(t, addr, "broker-a:9092")
	assert.Contains(t, addr, "broker-b:9092")
}

func TestNewAuditProducer_SingleBroker(t *testing.T) {
	producer := NewAuditProducer("localhost:9092", "order-audit-log", zap.NewNop())
	defer producer.Close()

	assert.Equal(t, "localhost:9092", producer.writer.Addr.String())
}
