package config

import (
	"fmt"
	"time"
)

const (
	QueueTypeRabbitMQ = "rabbitmq"
	QueueTypeSQS      = "sqs"
)

type QueueConfig struct {
	Type                   string        `mapstructure:"type"`
	QueueUser              string        `mapstructure:"queue_user"`
	QueuePassword          string        `mapstructure:"queue_password"`
	Url                    string        `mapstructure:"url"`
	Region                 string        `mapstructure:"region"`
	QueueProcessingTimeout time.Duration `mapstructure:"processing_timeout"`
	MsgMaxRetryAttempts    int32         `mapstructure:"msg_max_retry_attempts"`
	ReQueueDelayTime       time.Duration `mapstructure:"requeue_delay_time"`
	EraSyncQueue           string        `mapstructure:"era_sync_queue"`
	EraShotQueue           string        `mapstructure:"era_shot_queue"`
	LedgerEventQueue       string        `mapstructure:"ledger_event_queue"`
}

func (cfg *QueueConfig) Validate() error {
	switch cfg.Type {
	case QueueTypeRabbitMQ:
		if cfg.QueueUser == "" {
			return fmt.Errorf("missing queue user")
		}
		if cfg.QueuePassword == "" {
			return fmt.Errorf("missing queue password")
		}
	case QueueTypeSQS:
		if cfg.Region == "" {
			return fmt.Errorf("missing queue region")
		}
	default:
		return fmt.Errorf("unsupported queue type %q", cfg.Type)
	}

	if cfg.Url == "" {
		return fmt.Errorf("missing queue url")
	}

	if cfg.QueueProcessingTimeout <= 0 {
		return fmt.Errorf("invalid queue processing timeout")
	}

	if cfg.MsgMaxRetryAttempts <= 0 {
		return fmt.Errorf("invalid msg max retry attempts")
	}

	if cfg.ReQueueDelayTime < 0 {
		return fmt.Errorf("requeue delay time cannot be negative")
	}

	if cfg.EraSyncQueue == "" || cfg.EraShotQueue == "" || cfg.LedgerEventQueue == "" {
		return fmt.Errorf("missing queue name")
	}
	return nil
}
