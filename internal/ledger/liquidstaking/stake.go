package liquidstaking

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

// Stake deposits amount from the user's wallet and mints the same amount of
// receipt tokens into the default utility.
func (e *Engine) Stake(ctx context.Context, user common.Address, amount sdkmath.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	return e.StakeTo(ctx, user, []string{e.params.UtilityName}, []sdkmath.Int{amount})
}

// StakeTo deposits the sum of amounts and mints receipt tokens into each
// listed utility.
func (e *Engine) StakeTo(ctx context.Context, user common.Address, utilities []string, amounts []sdkmath.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	allocs, total, err := e.aggregate(utilities, amounts)
	if err != nil {
		return err
	}
	if total.LT(e.params.MinStakeAmount) {
		return errorsmod.Wrapf(ledger.ErrInvalidAmount,
			"stake %s is below the minimum %s", total, e.params.MinStakeAmount)
	}
	for _, a := range allocs {
		u, err := e.distr.Utility(a.utility)
		if err != nil {
			return err
		}
		if !u.Active {
			return errorsmod.Wrapf(ledger.ErrUtilityInactive, "utility %q", a.utility)
		}
		if err := e.token.ValidateMint(e.address, user, a.utility, a.amount); err != nil {
			return err
		}
	}
	if err := e.bank.CanDebit(user, total); err != nil {
		return err
	}
	if err := e.module.Bond(ctx, total); err != nil {
		return errorsmod.Wrapf(err, "bond %s", total)
	}

	_ = e.bank.Debit(user, total)
	for _, a := range allocs {
		if err := e.token.Mint(e.address, user, a.utility, a.amount); err != nil {
			return err
		}
	}
	e.pools.Bonded = e.pools.Bonded.Add(total)
	e.addStaker(user)
	e.emit(ledger.Event{Type: ledger.EventStaked, User: user, Amount: total})
	return nil
}

type allocation struct {
	utility string
	amount  sdkmath.Int
}

// aggregate validates paired utility and amount lists and merges repeated
// utilities, keeping first-seen order.
func (e *Engine) aggregate(utilities []string, amounts []sdkmath.Int) ([]allocation, sdkmath.Int, error) {
	if len(utilities) == 0 || len(utilities) != len(amounts) {
		return nil, sdkmath.Int{}, errorsmod.Wrapf(ledger.ErrInvalidAmount,
			"got %d utilities and %d amounts", len(utilities), len(amounts))
	}
	out := make([]allocation, 0, len(utilities))
	index := make(map[string]int, len(utilities))
	total := sdkmath.ZeroInt()
	for i, utility := range utilities {
		if err := ledger.ValidateAmount(amounts[i]); err != nil {
			return nil, sdkmath.Int{}, errorsmod.Wrapf(err, "utility %q", utility)
		}
		if idx, ok := index[utility]; ok {
			out[idx].amount = out[idx].amount.Add(amounts[i])
		} else {
			index[utility] = len(out)
			out = append(out, allocation{utility: utility, amount: amounts[i]})
		}
		total = total.Add(amounts[i])
	}
	return out, total, nil
}

// Unstake burns the user's allocation in the listed utilities. An immediate
// unstake pays out of the unstaking pool at once and the unbonded funds
// refill that pool when they mature. A delayed unstake creates a withdrawal
// request that matures after the unbonding period.
func (e *Engine) Unstake(
	ctx context.Context, user common.Address, utilities []string, amounts []sdkmath.Int, immediate bool,
) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	allocs, total, err := e.aggregate(utilities, amounts)
	if err != nil {
		return err
	}
	for _, a := range allocs {
		if err := e.token.ValidateBurn(e.address, user, a.utility, a.amount); err != nil {
			return err
		}
	}
	if immediate && e.pools.Unstaking.LT(total) {
		return errorsmod.Wrapf(ledger.ErrInsufficientPoolLiquidity,
			"unstaking pool holds %s, needs %s", e.pools.Unstaking, total)
	}
	if e.pools.Bonded.LT(total) {
		return errorsmod.Wrapf(ledger.ErrInsufficientPoolLiquidity,
			"bonded %s, needs %s", e.pools.Bonded, total)
	}
	era, err := e.module.CurrentEra(ctx)
	if err != nil {
		return errorsmod.Wrap(err, "current era")
	}
	period, err := e.module.UnbondingPeriod(ctx)
	if err != nil {
		return errorsmod.Wrap(err, "unbonding period")
	}
	if err := e.module.Unbond(ctx, total); err != nil {
		return errorsmod.Wrapf(err, "unbond %s", total)
	}

	for _, a := range allocs {
		if err := e.token.Burn(e.address, user, a.utility, a.amount); err != nil {
			return err
		}
	}
	e.pools.Bonded = e.pools.Bonded.Sub(total)
	e.pools.Unbonding = e.pools.Unbonding.Add(total)
	chunk := unbondingChunk{Amount: total, CompletionEra: era + period}

	ev := ledger.Event{Type: ledger.EventUnstaked, User: user, Amount: total, Immediate: immediate}
	if immediate {
		chunk.Pool = PoolUnstaking
		e.pools.Unstaking = e.pools.Unstaking.Sub(total)
		_ = e.bank.Credit(user, total)
	} else {
		id := uint64(len(e.withdrawals))
		e.withdrawals = append(e.withdrawals, &WithdrawalRequest{
			ID:            id,
			Owner:         user,
			Amount:        total,
			RequestEra:    era,
			CompletionEra: era + period,
		})
		chunk.Pool = PoolUnbonded
		chunk.RequestID = &id
		ev.RequestID = &id
	}
	e.unbonding = append(e.unbonding, chunk)
	e.emit(ev)
	return nil
}

// Withdraw pays a matured withdrawal request out of the unbonded pool.
func (e *Engine) Withdraw(ctx context.Context, user common.Address, id uint64) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if id >= uint64(len(e.withdrawals)) {
		return errorsmod.Wrapf(ledger.ErrNotFound, "withdrawal %d", id)
	}
	w := e.withdrawals[id]
	if w.Owner != user {
		return errorsmod.Wrapf(ledger.ErrUnauthorized, "withdrawal %d belongs to %s", id, w.Owner.Hex())
	}
	if w.Fulfilled {
		return errorsmod.Wrapf(ledger.ErrAlreadyFulfilled, "withdrawal %d", id)
	}
	era, err := e.module.CurrentEra(ctx)
	if err != nil {
		return errorsmod.Wrap(err, "current era")
	}
	if era < w.CompletionEra {
		return errorsmod.Wrapf(ledger.ErrNotMatured,
			"withdrawal %d matures at era %d, current era %d", id, w.CompletionEra, era)
	}
	if e.pools.Unbonded.LT(w.Amount) {
		return errorsmod.Wrapf(ledger.ErrInsufficientPoolLiquidity,
			"unbonded pool holds %s, needs %s", e.pools.Unbonded, w.Amount)
	}

	w.Fulfilled = true
	e.pools.Unbonded = e.pools.Unbonded.Sub(w.Amount)
	_ = e.bank.Credit(user, w.Amount)
	reqID := id
	e.emit(ledger.Event{Type: ledger.EventWithdrawn, User: user, Amount: w.Amount, RequestID: &reqID})
	return nil
}
