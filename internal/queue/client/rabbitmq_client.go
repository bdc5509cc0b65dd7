package client

import (
	"context"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/algem/liquid-staking-service/internal/config"
)

const (
	dlxName             = "common_dlx"
	delayedQueueSuffix  = "_delay"
	retryAttemptsHeader = "x-processing-attempts"
	defaultPrefetch     = 1
)

type RabbitMqClient struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	stopCh     chan struct{}
}

func NewRabbitMqClient(cfg *config.QueueConfig, queueName string) (*RabbitMqClient, error) {
	amqpURI := fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url)

	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.Qos(defaultPrefetch, 0, false); err != nil {
		conn.Close()
		return nil, err
	}

	// Messages expiring in the delayed queue are routed back to the main
	// queue through the dead letter exchange.
	if err := ch.ExchangeDeclare(dlxName, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.QueueBind(queueName, queueName, dlxName, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	_, err = ch.QueueDeclare(queueName+delayedQueueSuffix, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxName,
		"x-dead-letter-routing-key": queueName,
		"x-message-ttl":             cfg.ReQueueDelayTime.Milliseconds(),
	})
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitMqClient{
		connection: conn,
		channel:    ch,
		queueName:  queueName,
		stopCh:     make(chan struct{}),
	}, nil
}

func (c *RabbitMqClient) ReceiveMessages() (<-chan QueueMessage, error) {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return nil, err
	}
	output := make(chan QueueMessage)
	go func() {
		defer close(output)
		for {
			select {
			case d, ok := <-msgs:
				if !ok {
					return
				}
				output <- QueueMessage{
					Body:          string(d.Body),
					Receipt:       strconv.FormatUint(d.DeliveryTag, 10),
					RetryAttempts: retryAttempts(d.Headers),
				}
			case <-c.stopCh:
				return
			}
		}
	}()

	return output, nil
}

func retryAttempts(headers amqp.Table) int32 {
	switch v := headers[retryAttemptsHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	default:
		return 0
	}
}

// DeleteMessage deletes a message from the queue. In RabbitMQ this is
// equivalent to acknowledging the message.
func (c *RabbitMqClient) DeleteMessage(receipt string) error {
	deliveryTag, err := strconv.ParseUint(receipt, 10, 64)
	if err != nil {
		return err
	}
	return c.channel.Ack(deliveryTag, false)
}

func (c *RabbitMqClient) ReQueueMessage(ctx context.Context, message QueueMessage) error {
	err := c.channel.PublishWithContext(ctx, "", c.queueName+delayedQueueSuffix, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         []byte(message.Body),
		Headers: amqp.Table{
			retryAttemptsHeader: message.IncrementRetryAttempts(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to requeue message: %w", err)
	}
	return c.DeleteMessage(message.Receipt)
}

func (c *RabbitMqClient) SendMessage(ctx context.Context, messageBody string) error {
	return c.channel.PublishWithContext(ctx, "", c.queueName, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         []byte(messageBody),
	})
}

func (c *RabbitMqClient) Stop() error {
	select {
	case <-c.stopCh:
		return nil
	default:
		close(c.stopCh)
	}
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.connection.Close()
}

func (c *RabbitMqClient) GetQueueName() string {
	return c.queueName
}

func (c *RabbitMqClient) Ping() error {
	if c.connection.IsClosed() {
		return fmt.Errorf("rabbitmq connection to queue %s is closed", c.queueName)
	}
	if c.channel.IsClosed() {
		return fmt.Errorf("rabbitmq channel of queue %s is closed", c.queueName)
	}
	return nil
}
