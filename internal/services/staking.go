package services

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/types"
)

func (s *Services) Stake(ctx context.Context, user common.Address, amount sdkmath.Int) *types.Error {
	err := s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.Stake(ctx, user, amount)
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user", user.Hex()).Msg("stake rejected")
	}
	return err
}

// StakeTo stakes into several utilities at once. utilities and amounts are
// paired by index.
func (s *Services) StakeTo(
	ctx context.Context, user common.Address, utilities []string, amounts []sdkmath.Int,
) *types.Error {
	err := s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.StakeTo(ctx, user, utilities, amounts)
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user", user.Hex()).Msg("stake rejected")
	}
	return err
}

func (s *Services) Unstake(
	ctx context.Context, user common.Address, utilities []string, amounts []sdkmath.Int, immediate bool,
) *types.Error {
	err := s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.Unstake(ctx, user, utilities, amounts, immediate)
	})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("user", user.Hex()).
			Bool("immediate", immediate).
			Msg("unstake rejected")
	}
	return err
}

func (s *Services) Withdraw(ctx context.Context, user common.Address, id uint64) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.Withdraw(ctx, user, id)
	})
}

// Transfer moves receipt tokens. The allocation of the sender follows the
// tokens across utilities proportionally.
func (s *Services) Transfer(ctx context.Context, from, to common.Address, amount sdkmath.Int) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Token.Transfer(from, to, amount)
	})
}

func (s *Services) Claim(
	ctx context.Context, user common.Address, utilities []string, amounts []sdkmath.Int,
) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.Claim(user, utilities, amounts)
	})
}

// ClaimAll pays every claimable reward of user and returns the amount paid.
func (s *Services) ClaimAll(ctx context.Context, user common.Address) (string, *types.Error) {
	var paid sdkmath.Int
	err := s.mutate(ctx, func(l *Ledger) error {
		var err error
		paid, err = l.Engine.ClaimAll(user)
		return err
	})
	if err != nil {
		return "", err
	}
	return paid.String(), nil
}

// SyncHarvest settles pending rewards of user in utilities so they become
// claimable.
func (s *Services) SyncHarvest(
	ctx context.Context, caller, user common.Address, utilities []string,
) *types.Error {
	return s.mutate(ctx, func(l *Ledger) error {
		return l.Engine.SyncHarvest(caller, user, utilities)
	})
}
