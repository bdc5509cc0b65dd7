package liquidstaking

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

// Claim pays the listed reward amounts out of the reward pool. Each amount
// must not exceed what the user can claim in that utility.
func (e *Engine) Claim(user common.Address, utilities []string, amounts []sdkmath.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	allocs, total, err := e.aggregate(utilities, amounts)
	if err != nil {
		return err
	}
	for _, a := range allocs {
		if _, err := e.distr.Utility(a.utility); err != nil {
			return err
		}
		if claimable := e.claimable(user, a.utility); claimable.LT(a.amount) {
			return errorsmod.Wrapf(ledger.ErrInsufficientBalance,
				"claimable %s in %q, requested %s", claimable, a.utility, a.amount)
		}
	}
	if e.pools.Reward.LT(total) {
		return errorsmod.Wrapf(ledger.ErrInsufficientPoolLiquidity,
			"reward pool holds %s, needs %s", e.pools.Reward, total)
	}
	e.payRewards(user, allocs, total)
	return nil
}

// ClaimAll pays every claimable reward of user.
func (e *Engine) ClaimAll(user common.Address) (sdkmath.Int, error) {
	if err := e.requireInitialized(); err != nil {
		return sdkmath.Int{}, err
	}
	allocs := make([]allocation, 0)
	total := sdkmath.ZeroInt()
	for _, utility := range e.rewardUtilities(user) {
		claimable := e.claimable(user, utility)
		if claimable.IsPositive() {
			allocs = append(allocs, allocation{utility: utility, amount: claimable})
			total = total.Add(claimable)
		}
	}
	if !total.IsPositive() {
		return sdkmath.Int{}, errorsmod.Wrapf(ledger.ErrInvalidAmount, "%s has nothing to claim", user.Hex())
	}
	if e.pools.Reward.LT(total) {
		return sdkmath.Int{}, errorsmod.Wrapf(ledger.ErrInsufficientPoolLiquidity,
			"reward pool holds %s, needs %s", e.pools.Reward, total)
	}
	e.payRewards(user, allocs, total)
	return total, nil
}

func (e *Engine) payRewards(user common.Address, allocs []allocation, total sdkmath.Int) {
	for _, a := range allocs {
		pos := e.settle(user, a.utility)
		pos.Accrued = pos.Accrued.Sub(a.amount)
		pos.Claimed = pos.Claimed.Add(a.amount)
	}
	e.pools.Reward = e.pools.Reward.Sub(total)
	_ = e.bank.Credit(user, total)
	e.emit(ledger.Event{Type: ledger.EventClaimed, User: user, Amount: total})
}
