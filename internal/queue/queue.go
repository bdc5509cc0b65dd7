package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/observability/metrics"
	"github.com/algem/liquid-staking-service/internal/observability/tracing"
	"github.com/algem/liquid-staking-service/internal/queue/client"
	"github.com/algem/liquid-staking-service/internal/queue/handlers"
	"github.com/algem/liquid-staking-service/internal/services"
)

// UnprocessableMessageHandler stores a message that will never succeed so
// it can be inspected and replayed later.
type UnprocessableMessageHandler func(ctx context.Context, messageBody, receipt string) error

type Queues struct {
	EraSyncQueueClient     client.QueueClient
	EraShotQueueClient     client.QueueClient
	LedgerEventQueueClient client.QueueClient
	Handlers               *handlers.QueueHandler
	processingTimeout      time.Duration
	maxRetryAttempts       int32
}

// New opens the consumer queues. The ledger event queue is created by the
// caller because the services publish to it.
func New(cfg config.QueueConfig, service *services.Services, ledgerEventQueue client.QueueClient) *Queues {
	eraSyncQueueClient, err := client.NewQueueClient(&cfg, cfg.EraSyncQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating EraSyncQueueClient")
	}
	eraShotQueueClient, err := client.NewQueueClient(&cfg, cfg.EraShotQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating EraShotQueueClient")
	}
	handlers := handlers.NewQueueHandler(service)
	return &Queues{
		EraSyncQueueClient:     eraSyncQueueClient,
		EraShotQueueClient:     eraShotQueueClient,
		LedgerEventQueueClient: ledgerEventQueue,
		Handlers:               handlers,
		processingTimeout:      cfg.QueueProcessingTimeout,
		maxRetryAttempts:       cfg.MsgMaxRetryAttempts,
	}
}

// Start all message processing
func (q *Queues) StartReceivingMessages() {
	unprocessable := q.Handlers.Services.SaveUnprocessableMessages
	startQueueMessageProcessing(
		q.EraSyncQueueClient, q.Handlers.EraSyncHandler, unprocessable,
		q.maxRetryAttempts, q.processingTimeout,
	)
	startQueueMessageProcessing(
		q.EraShotQueueClient, q.Handlers.EraShotHandler, unprocessable,
		q.maxRetryAttempts, q.processingTimeout,
	)
}

// Turn off all message processing
func (q *Queues) StopReceivingMessages() {
	for _, c := range q.clients() {
		if err := c.Stop(); err != nil {
			log.Error().Err(err).Str("queueName", c.GetQueueName()).Msg("error while stopping queue client")
		}
	}
}

func (q *Queues) IsConnectionHealthy() error {
	var errs []error
	for _, c := range q.clients() {
		if err := c.Ping(); err != nil {
			errs = append(errs, fmt.Errorf("queue %s: %w", c.GetQueueName(), err))
		}
	}
	return errors.Join(errs...)
}

func (q *Queues) clients() []client.QueueClient {
	out := []client.QueueClient{q.EraSyncQueueClient, q.EraShotQueueClient}
	if q.LedgerEventQueueClient != nil {
		out = append(out, q.LedgerEventQueueClient)
	}
	return out
}

func startQueueMessageProcessing(
	queueClient client.QueueClient,
	handler handlers.MessageHandler, unprocessableHandler UnprocessableMessageHandler,
	maxRetryAttempts int32, processingTimeout time.Duration,
) {
	messagesChan, err := queueClient.ReceiveMessages()
	if err != nil {
		log.Fatal().Err(err).Str("queueName", queueClient.GetQueueName()).Msg("error setting up message channel from queue")
	}
	go processMessages(messagesChan, queueClient, handler, unprocessableHandler, maxRetryAttempts, processingTimeout)
}

func processMessages(
	messagesChan <-chan client.QueueMessage, queueClient client.QueueClient,
	handler handlers.MessageHandler, unprocessableHandler UnprocessableMessageHandler,
	maxRetryAttempts int32, processingTimeout time.Duration,
) {
	queueName := queueClient.GetQueueName()
	for message := range messagesChan {
		traceCtx := tracing.AttachTracingIntoContext(context.Background(), "")
		logger := log.With().
			Str("queueName", queueName).
			Str("traceId", tracing.TraceId(traceCtx)).
			Logger()
		ctx, cancel := context.WithTimeout(logger.WithContext(traceCtx), processingTimeout)
		processMessage(ctx, logger, message, queueClient, handler, unprocessableHandler, maxRetryAttempts)
		cancel()
	}
}

func processMessage(
	ctx context.Context, logger zerolog.Logger, message client.QueueMessage, queueClient client.QueueClient,
	handler handlers.MessageHandler, unprocessableHandler UnprocessableMessageHandler, maxRetryAttempts int32,
) {
	// Messages that failed too often are parked instead of retried forever.
	if message.GetRetryAttempts() > maxRetryAttempts {
		logger.Error().Int32("attempts", message.GetRetryAttempts()).
			Msg("exceeded retry attempts, message will be dumped into unprocessable message collection")
		dumpUnprocessable(ctx, logger, message, queueClient, unprocessableHandler)
		return
	}

	timer := metrics.StartQueueProcessTimer(queueClient.GetQueueName())
	if err := handler(ctx, message.Body); err != nil {
		timer(metrics.Error)
		if !err.Retryable() {
			logger.Error().Err(err).Msg("message rejected, dumping into unprocessable message collection")
			dumpUnprocessable(ctx, logger, message, queueClient, unprocessableHandler)
			return
		}
		logger.Error().Err(err).Msg("error while processing message from queue, will be requeued")
		if reQueueErr := queueClient.ReQueueMessage(ctx, message); reQueueErr != nil {
			logger.Error().Err(reQueueErr).Msg("error while requeuing message")
		}
		return
	}
	timer(metrics.Success)

	if delErr := queueClient.DeleteMessage(message.Receipt); delErr != nil {
		logger.Error().Err(delErr).Msg("error while deleting message from queue")
	}
}

func dumpUnprocessable(
	ctx context.Context, logger zerolog.Logger, message client.QueueMessage,
	queueClient client.QueueClient, unprocessableHandler UnprocessableMessageHandler,
) {
	if err := unprocessableHandler(ctx, message.Body, message.Receipt); err != nil {
		// Keep the message in the queue so it is not lost.
		logger.Error().Err(err).Msg("error while saving unprocessable message")
		return
	}
	if delErr := queueClient.DeleteMessage(message.Receipt); delErr != nil {
		logger.Error().Err(delErr).Msg("error while deleting message from queue")
	}
}
