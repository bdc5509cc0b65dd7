package services

import (
	"context"
	"errors"
	"net/http"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/liquidstaking"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
	"github.com/algem/liquid-staking-service/internal/types"
)

// Sync catches the engine up to era. Zero syncs to the current era of the
// staking module. An era that is already synced is a no-op.
func (s *Services) Sync(ctx context.Context, caller common.Address, era uint64) ([]EraPublic, *types.Error) {
	var synced []liquidstaking.EraInfo
	err := s.mutate(ctx, func(l *Ledger) error {
		target := era
		if target == 0 {
			current, err := s.module.CurrentEra(ctx)
			if err != nil {
				return err
			}
			target = current
		}
		var err error
		synced, err = l.Engine.Sync(ctx, caller, target)
		return err
	})
	if err != nil {
		if errors.Is(err.Err, ledger.ErrStaleEra) {
			log.Ctx(ctx).Debug().Err(err).Msg("era already synced")
			return []EraPublic{}, nil
		}
		return nil, err
	}
	for _, info := range synced {
		log.Ctx(ctx).Info().
			Uint64("era", info.Era).
			Str("reward", info.Reward.String()).
			Str("fee", info.Fee.String()).
			Msg("era synced")
	}
	return fromEraInfos(synced), nil
}

// SimulateNextEra advances an in-process staking module by one era and
// syncs it.
func (s *Services) SimulateNextEra(ctx context.Context) ([]EraPublic, *types.Error) {
	sim, ok := s.module.(*stakingmodule.Simulated)
	if !ok {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.BadRequest, "staking module is not simulated",
		)
	}
	var synced []liquidstaking.EraInfo
	err := s.mutate(ctx, func(l *Ledger) error {
		era := sim.AdvanceEra()
		var err error
		synced, err = l.Engine.Sync(ctx, s.Keeper(), era)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fromEraInfos(synced), nil
}

func (s *Services) EraShot(
	ctx context.Context, caller, user common.Address, utility, dnt string,
) (*EraShotPublic, *types.Error) {
	var shot liquidstaking.EraShot
	err := s.mutate(ctx, func(l *Ledger) error {
		var err error
		shot, err = l.Engine.EraShot(caller, user, utility, dnt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fromEraShot(shot), nil
}

func (s *Services) FillPool(
	ctx context.Context, caller common.Address, pool string, amount sdkmath.Int,
) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.FillPool(caller, liquidstaking.Pool(pool), amount)
	})
}

func (s *Services) WithdrawRevenue(
	ctx context.Context, caller, to common.Address, amount sdkmath.Int,
) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.WithdrawRevenue(caller, to, amount)
	})
}

func (s *Services) AddDapp(ctx context.Context, caller common.Address, name string, addr common.Address) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.AddDapp(caller, name, addr)
	})
}

func (s *Services) SetDappStatus(ctx context.Context, caller common.Address, name string, active bool) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.SetDappStatus(caller, name, active)
	})
}

// SetManager grants or revokes the manager role on the engine.
func (s *Services) SetManager(ctx context.Context, caller, addr common.Address, grant bool) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		if grant {
			return l.Engine.AddManager(caller, addr)
		}
		return l.Engine.RemoveManager(caller, addr)
	})
}

func (s *Services) SetPartner(ctx context.Context, caller, addr common.Address, grant bool) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		if grant {
			return l.Engine.AddPartner(caller, addr)
		}
		return l.Engine.RemovePartner(caller, addr)
	})
}

func (s *Services) SetPartnersLimit(ctx context.Context, caller common.Address, limit uint64) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.SetPartnersLimit(caller, limit)
	})
}

func (s *Services) SetMinStakeAmount(ctx context.Context, caller common.Address, amount sdkmath.Int) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.SetMinStakeAmount(caller, amount)
	})
}

// TokenSnapshot starts a new receipt token snapshot and returns its id.
func (s *Services) TokenSnapshot(ctx context.Context, caller common.Address) (uint64, *types.Error) {
	var id uint64
	err := s.mutate(ctx, func(l *Ledger) error {
		var err error
		id, err = l.Token.Snapshot(caller)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetPaused pauses or resumes every receipt token movement.
func (s *Services) SetPaused(ctx context.Context, caller common.Address, paused bool) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		if paused {
			return l.Token.Pause(caller)
		}
		return l.Token.Unpause(caller)
	})
}

// GiveMoney credits native balance out of thin air. Only available when
// the faucet is enabled.
func (s *Services) GiveMoney(ctx context.Context, to common.Address, amount sdkmath.Int) *types.Error {
	if !s.cfg.Ledger.Faucet {
		return types.NewErrorWithMsg(http.StatusForbidden, types.Forbidden, "faucet is disabled")
	}
	err := s.mutate(ctx, func(l *Ledger) error {
		return l.Bank.Credit(to, amount)
	})
	if err == nil {
		log.Ctx(ctx).Info().Str("to", to.Hex()).Str("amount", amount.String()).Msg("faucet credit")
	}
	return err
}
