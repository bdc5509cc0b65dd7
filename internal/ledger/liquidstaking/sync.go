package liquidstaking

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

// Sync processes every era after the last synced one up to and including
// era, in order. Syncing an era that is already processed returns
// ErrStaleEra and changes nothing.
func (e *Engine) Sync(ctx context.Context, caller common.Address, era uint64) ([]EraInfo, error) {
	if err := e.requireInitialized(); err != nil {
		return nil, err
	}
	if err := e.requireKeeper(caller); err != nil {
		return nil, err
	}
	if era <= e.lastSyncedEra {
		return nil, errorsmod.Wrapf(ledger.ErrStaleEra, "era %d, last synced %d", era, e.lastSyncedEra)
	}
	current, err := e.module.CurrentEra(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "current era")
	}
	if era > current {
		return nil, errorsmod.Wrapf(ledger.ErrInvalidEra, "era %d is ahead of current era %d", era, current)
	}

	// Pull every reward first so a module failure leaves nothing half synced.
	rewards := make([]sdkmath.Int, 0, era-e.lastSyncedEra)
	for next := e.lastSyncedEra + 1; next <= era; next++ {
		reward, err := e.module.RewardsAccrued(ctx, next)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "rewards of era %d", next)
		}
		if reward.IsNil() || reward.IsNegative() {
			return nil, errorsmod.Wrapf(ledger.ErrInvalidAmount, "era %d reward %s", next, reward)
		}
		rewards = append(rewards, reward)
	}

	synced := make([]EraInfo, 0, len(rewards))
	for i, reward := range rewards {
		info := e.applyEra(e.lastSyncedEra+1+uint64(i), reward)
		synced = append(synced, info)
	}
	return synced, nil
}

func (e *Engine) applyEra(era uint64, reward sdkmath.Int) EraInfo {
	fee := reward.MulRaw(int64(e.params.RevenueFeeBps)).QuoRaw(bpsDenominator)
	net := reward.Sub(fee)
	e.pools.Revenue = e.pools.Revenue.Add(fee)
	e.pools.Reward = e.pools.Reward.Add(net)

	distributable := net.Add(e.dust)
	total := e.distr.TotalDnt(e.params.DntName)
	increment := sdkmath.ZeroInt()
	if total.IsPositive() {
		increment = distributable.Mul(RewardPrecision).Quo(total)
		increment = increment.Quo(e.params.RewardPrecisionOffset).Mul(e.params.RewardPrecisionOffset)
	}
	distributed := increment.Mul(total).Quo(RewardPrecision)
	e.dust = distributable.Sub(distributed)
	e.accRewardPerToken = e.accRewardPerToken.Add(increment)

	e.releaseUnbonding(era)

	info := EraInfo{
		Era:               era,
		Reward:            reward,
		Fee:               fee,
		Distributed:       distributed,
		Dust:              e.dust,
		TotalAllocated:    total,
		AccRewardPerToken: e.accRewardPerToken,
	}
	e.history.Eras = append(e.history.Eras, info)
	e.lastSyncedEra = era
	e.emit(ledger.Event{Type: ledger.EventEraSynced, Era: era, Amount: reward})
	return info
}

// releaseUnbonding moves every chunk matured by era into its target pool.
func (e *Engine) releaseUnbonding(era uint64) {
	pending := e.unbonding[:0]
	for _, chunk := range e.unbonding {
		if chunk.CompletionEra > era {
			pending = append(pending, chunk)
			continue
		}
		e.pools.Unbonding = e.pools.Unbonding.Sub(chunk.Amount)
		switch chunk.Pool {
		case PoolUnstaking:
			e.pools.Unstaking = e.pools.Unstaking.Add(chunk.Amount)
		default:
			e.pools.Unbonded = e.pools.Unbonded.Add(chunk.Amount)
		}
	}
	e.unbonding = pending
}

// EraShot settles the user's reward in utility and records the balance
// held at the last synced era.
func (e *Engine) EraShot(caller, user common.Address, utility, dntName string) (EraShot, error) {
	if err := e.requireInitialized(); err != nil {
		return EraShot{}, err
	}
	if caller != user {
		if err := e.requireKeeper(caller); err != nil {
			return EraShot{}, err
		}
	}
	if err := ledger.ValidateAddress(user); err != nil {
		return EraShot{}, err
	}
	if dntName != e.params.DntName {
		return EraShot{}, errorsmod.Wrapf(ledger.ErrNotFound, "dnt %q", dntName)
	}
	if _, err := e.distr.Utility(utility); err != nil {
		return EraShot{}, err
	}

	pos := e.settle(user, utility)
	shot := EraShot{
		Era:     e.lastSyncedEra,
		Balance: e.distr.GetUserDntBalanceInUtil(user, utility, dntName),
		Rewards: pos.Accrued,
	}
	e.history.EraShots = append(e.history.EraShots, EraShotRecord{User: user, Utility: utility, EraShot: shot})
	return shot, nil
}

// SyncHarvest settles the pending reward of user into claimable for each
// utility.
func (e *Engine) SyncHarvest(caller, user common.Address, utilities []string) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if caller != user {
		if err := e.requireKeeper(caller); err != nil {
			return err
		}
	}
	for _, utility := range utilities {
		if _, err := e.distr.Utility(utility); err != nil {
			return err
		}
	}
	for _, utility := range utilities {
		e.settle(user, utility)
	}
	return nil
}
