package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/config"
)

const sqsWaitTimeSeconds = 20

type SQSClient struct {
	client       *sqs.SQS
	queueURL     string
	queueName    string
	requeueDelay int64
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewSQSClient builds the queue url from the configured endpoint and the
// queue name.
func NewSQSClient(cfg *config.QueueConfig, queueName string) (*SQSClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &SQSClient{
		client:       sqs.New(sess),
		queueURL:     strings.TrimSuffix(cfg.Url, "/") + "/" + queueName,
		queueName:    queueName,
		requeueDelay: int64(cfg.ReQueueDelayTime.Seconds()),
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

func (c *SQSClient) ReceiveMessages() (<-chan QueueMessage, error) {
	output := make(chan QueueMessage)
	go func() {
		defer close(output)
		for c.ctx.Err() == nil {
			result, err := c.client.ReceiveMessageWithContext(c.ctx, &sqs.ReceiveMessageInput{
				QueueUrl:        &c.queueURL,
				WaitTimeSeconds: aws.Int64(sqsWaitTimeSeconds),
				AttributeNames: []*string{
					aws.String(sqs.MessageSystemAttributeNameApproximateReceiveCount),
				},
			})
			if err != nil {
				if c.ctx.Err() == nil {
					log.Error().Err(err).Str("queueName", c.queueName).Msg("error receiving messages from sqs")
				}
				continue
			}

			for _, message := range result.Messages {
				msg := QueueMessage{
					Body:          aws.StringValue(message.Body),
					Receipt:       aws.StringValue(message.ReceiptHandle),
					RetryAttempts: receiveCount(message.Attributes) - 1,
				}
				select {
				case output <- msg:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()
	return output, nil
}

func receiveCount(attributes map[string]*string) int32 {
	raw, ok := attributes[sqs.MessageSystemAttributeNameApproximateReceiveCount]
	if !ok {
		return 1
	}
	count, err := strconv.ParseInt(aws.StringValue(raw), 10, 32)
	if err != nil || count < 1 {
		return 1
	}
	return int32(count)
}

func (c *SQSClient) DeleteMessage(receipt string) error {
	_, err := c.client.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: &receipt,
	})
	return err
}

// ReQueueMessage makes the message visible again after the requeue delay.
// SQS counts the redelivery itself.
func (c *SQSClient) ReQueueMessage(ctx context.Context, message QueueMessage) error {
	_, err := c.client.ChangeMessageVisibilityWithContext(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          &c.queueURL,
		ReceiptHandle:     aws.String(message.Receipt),
		VisibilityTimeout: aws.Int64(c.requeueDelay),
	})
	return err
}

func (c *SQSClient) SendMessage(ctx context.Context, messageBody string) error {
	_, err := c.client.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    &c.queueURL,
		MessageBody: aws.String(messageBody),
	})
	return err
}

func (c *SQSClient) Stop() error {
	c.cancel()
	return nil
}

func (c *SQSClient) GetQueueName() string {
	return c.queueName
}

func (c *SQSClient) Ping() error {
	_, err := c.client.GetQueueAttributes(&sqs.GetQueueAttributesInput{
		QueueUrl:       &c.queueURL,
		AttributeNames: []*string{aws.String(sqs.QueueAttributeNameApproximateNumberOfMessages)},
	})
	if err != nil {
		return fmt.Errorf("sqs queue %s is not reachable: %w", c.queueName, err)
	}
	return nil
}
