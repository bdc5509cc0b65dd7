package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/queue/client"
	"github.com/algem/liquid-staking-service/internal/types"
	"github.com/algem/liquid-staking-service/internal/utils"
)

func (h *QueueHandler) EraShotHandler(ctx context.Context, messageBody string) *types.Error {
	var event client.EraShotEvent
	err := json.Unmarshal([]byte(messageBody), &event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal the message body into EraShotEvent")
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}
	user, err := utils.ParseAddress(event.User)
	if err != nil {
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}

	shot, shotErr := h.Services.EraShot(ctx, h.Services.Keeper(), user, event.Utility, event.Dnt)
	if shotErr != nil {
		return shotErr
	}
	log.Ctx(ctx).Debug().
		Str("user", user.Hex()).
		Str("utility", event.Utility).
		Uint64("era", shot.Era).
		Msg("recorded era shot")
	return nil
}
