package scripts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/db"
	"github.com/algem/liquid-staking-service/internal/queue"
	queueClient "github.com/algem/liquid-staking-service/internal/queue/client"
)

type GenericEvent struct {
	EventType queueClient.EventType `json:"event_type"`
}

// ReplayResult counts what a replay did with the stored messages.
type ReplayResult struct {
	Replayed int
	Skipped  int
}

// ReplayUnprocessableMessages sends every stored message back to the queue
// of its event type, oldest first, and deletes it once sent. Messages that
// cannot be routed stay stored. A send or delete failure stops the replay so
// nothing is sent twice.
func ReplayUnprocessableMessages(ctx context.Context, queues *queue.Queues, dbClient db.DBClient) (ReplayResult, error) {
	var result ReplayResult
	messages, err := dbClient.FindUnprocessableMessages(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to retrieve unprocessable messages: %w", err)
	}
	log.Ctx(ctx).Info().Int("count", len(messages)).Msg("replaying unprocessable messages")

	for _, msg := range messages {
		logger := log.Ctx(ctx).With().Str("receipt", msg.Receipt).Logger()

		var event GenericEvent
		if err := json.Unmarshal([]byte(msg.MessageBody), &event); err != nil {
			logger.Warn().Err(err).Msg("skipping message that is not an event")
			result.Skipped++
			continue
		}
		target := queueFor(queues, event.EventType)
		if target == nil {
			logger.Warn().Str("eventType", string(event.EventType)).Msg("skipping message of unknown event type")
			result.Skipped++
			continue
		}

		if err := target.SendMessage(ctx, msg.MessageBody); err != nil {
			return result, fmt.Errorf("failed to requeue message %s: %w", msg.Receipt, err)
		}
		if err := dbClient.DeleteUnprocessableMessage(ctx, msg.Receipt); err != nil {
			return result, fmt.Errorf("failed to delete message %s: %w", msg.Receipt, err)
		}
		result.Replayed++
	}

	log.Ctx(ctx).Info().Int("replayed", result.Replayed).Int("skipped", result.Skipped).Msg("replay completed")
	return result, nil
}

func queueFor(queues *queue.Queues, eventType queueClient.EventType) queueClient.QueueClient {
	switch eventType {
	case queueClient.EraSyncEventType:
		return queues.EraSyncQueueClient
	case queueClient.EraShotEventType:
		return queues.EraShotQueueClient
	default:
		return nil
	}
}
