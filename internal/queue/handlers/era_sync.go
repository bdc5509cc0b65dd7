package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/queue/client"
	"github.com/algem/liquid-staking-service/internal/types"
)

// EraSyncHandler syncs the engine up to the era of the event. Events for
// eras that were already synced are acknowledged without effect.
func (h *QueueHandler) EraSyncHandler(ctx context.Context, messageBody string) *types.Error {
	var event client.EraSyncEvent
	err := json.Unmarshal([]byte(messageBody), &event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal the message body into EraSyncEvent")
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}

	synced, syncErr := h.Services.Sync(ctx, h.Services.Keeper(), event.Era)
	if syncErr != nil {
		return syncErr
	}
	log.Ctx(ctx).Debug().Uint64("era", event.Era).Int("synced", len(synced)).Msg("processed era sync event")
	return nil
}
