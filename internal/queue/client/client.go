package client

import (
	"context"
	"fmt"

	"github.com/algem/liquid-staking-service/internal/config"
)

type QueueMessage struct {
	Body          string
	Receipt       string
	RetryAttempts int32
}

func (m QueueMessage) IncrementRetryAttempts() int32 {
	m.RetryAttempts++
	return m.RetryAttempts
}

func (m QueueMessage) GetRetryAttempts() int32 {
	return m.RetryAttempts
}

// A common interface for queue clients regardless if it's a SQS, RabbitMQ, etc.
type QueueClient interface {
	SendMessage(ctx context.Context, messageBody string) error
	ReceiveMessages() (<-chan QueueMessage, error)
	DeleteMessage(receipt string) error
	// ReQueueMessage schedules the message for another delivery after the
	// configured delay and drops the current delivery.
	ReQueueMessage(ctx context.Context, message QueueMessage) error
	Stop() error
	GetQueueName() string
	Ping() error
}

func NewQueueClient(cfg *config.QueueConfig, queueName string) (QueueClient, error) {
	switch cfg.Type {
	case config.QueueTypeRabbitMQ:
		return NewRabbitMqClient(cfg, queueName)
	case config.QueueTypeSQS:
		return NewSQSClient(cfg, queueName)
	default:
		return nil, fmt.Errorf("unsupported queue type %q", cfg.Type)
	}
}
