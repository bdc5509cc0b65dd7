package poller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/observability/tracing"
	"github.com/algem/liquid-staking-service/internal/queue/client"
	"github.com/algem/liquid-staking-service/internal/services"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
)

// EraPoller watches the staking module for new eras. A simulated module is
// advanced by one era per tick. Otherwise a sync request is enqueued when
// the module is ahead of the ledger, or run inline when there is no queue.
type EraPoller struct {
	services *services.Services
	module   stakingmodule.Module
	syncQ    client.QueueClient
}

func New(svc *services.Services, module stakingmodule.Module, syncQueue client.QueueClient) *EraPoller {
	return &EraPoller{services: svc, module: module, syncQ: syncQueue}
}

func (p *EraPoller) Poll(ctx context.Context) error {
	if _, ok := p.module.(*stakingmodule.Simulated); ok {
		synced, err := p.services.SimulateNextEra(ctx)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Debug().Int("eras", len(synced)).Msg("advanced simulated staking module")
		return nil
	}

	current, err := p.module.CurrentEra(ctx)
	if err != nil {
		return fmt.Errorf("get current era: %w", err)
	}
	last := p.services.LastSyncedEra()
	if current <= last {
		return nil
	}

	if p.syncQ == nil {
		if _, err := p.services.Sync(ctx, p.services.Keeper(), current); err != nil {
			return err
		}
		return nil
	}
	body, err := json.Marshal(client.NewEraSyncEvent(current))
	if err != nil {
		return err
	}
	if err := p.syncQ.SendMessage(ctx, string(body)); err != nil {
		return fmt.Errorf("enqueue era sync: %w", err)
	}
	log.Ctx(ctx).Info().
		Uint64("era", current).
		Uint64("last_synced_era", last).
		Str("queueName", p.syncQ.GetQueueName()).
		Msg("enqueued era sync")
	return nil
}

// StartEraPollerCron runs Poll on spec until ctx is done.
func StartEraPollerCron(ctx context.Context, p *EraPoller, spec string) error {
	c := cron.New()
	log.Info().Str("spec", spec).Msg("Initiated Era Poller Cron")

	_, err := c.AddFunc(spec, func() {
		jobCtx := tracing.AttachTracingIntoContext(ctx, "")
		logger := log.With().Str("job", "era_poller").Str("traceId", tracing.TraceId(jobCtx)).Logger()
		if err := p.Poll(logger.WithContext(jobCtx)); err != nil {
			logger.Error().Err(err).Msg("era poll failed")
		}
	})
	if err != nil {
		return err
	}

	c.Start()

	go func() {
		<-ctx.Done()
		log.Info().Msg("Stopping Era Poller Cron")
		c.Stop()
	}()

	return nil
}
