package scripts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/queue/client"
	"github.com/algem/liquid-staking-service/internal/services"
	"github.com/algem/liquid-staking-service/internal/utils"
)

// ConvertAddr writes the SS58 form of every EVM address, one per line.
func ConvertAddr(w io.Writer, addrs []string, prefix uint16) error {
	for _, raw := range addrs {
		addr, err := utils.ParseAddress(raw)
		if err != nil {
			return err
		}
		ss58, err := utils.EvmToSS58(addr, prefix)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s\n", addr.Hex(), ss58)
	}
	return nil
}

// ExportStakers writes every staker, with its SS58 form, to path as JSON.
func ExportStakers(ctx context.Context, svc *services.Services, path string) error {
	stakers, apiErr := svc.Stakers(ctx)
	if apiErr != nil {
		return apiErr
	}
	data, err := json.MarshalIndent(stakers, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Info().Int("stakers", len(stakers)).Str("path", path).Msg("exported stakers")
	return nil
}

// Shoot enqueues one era shot per staker of a file written by
// ExportStakers. Empty utility and dnt default to the liquid staking ones.
func Shoot(ctx context.Context, svc *services.Services, shotQueue client.QueueClient, path, utility, dnt string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var stakers []services.StakerPublic
	if err := json.Unmarshal(data, &stakers); err != nil {
		return fmt.Errorf("decode stakers file: %w", err)
	}

	if utility == "" || dnt == "" {
		status, apiErr := svc.Status(ctx)
		if apiErr != nil {
			return apiErr
		}
		if utility == "" {
			utility = status.UtilityName
		}
		if dnt == "" {
			dnt = status.DntName
		}
	}

	for _, staker := range stakers {
		if _, err := utils.ParseAddress(staker.Address); err != nil {
			return fmt.Errorf("staker %q: %w", staker.Address, err)
		}
		body, err := json.Marshal(client.NewEraShotEvent(staker.Address, utility, dnt))
		if err != nil {
			return err
		}
		if err := shotQueue.SendMessage(ctx, string(body)); err != nil {
			return fmt.Errorf("enqueue era shot of %s: %w", staker.Address, err)
		}
	}
	log.Info().
		Int("stakers", len(stakers)).
		Str("utility", utility).
		Str("dnt", dnt).
		Msg("enqueued era shots")
	return nil
}

func GiveMoney(ctx context.Context, svc *services.Services, rawAddr, rawAmount string) error {
	addr, err := utils.ParseAddress(rawAddr)
	if err != nil {
		return err
	}
	amount, err := utils.ParsePositiveAmount(rawAmount)
	if err != nil {
		return err
	}
	if apiErr := svc.GiveMoney(ctx, addr, amount); apiErr != nil {
		return apiErr
	}
	return nil
}
