package liquidstaking

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

// FillPool tops up one of the payout pools from the caller's wallet.
func (e *Engine) FillPool(caller common.Address, pool Pool, amount sdkmath.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	target, err := e.payoutPool(pool)
	if err != nil {
		return err
	}
	if err := e.bank.Debit(caller, amount); err != nil {
		return err
	}
	*target = target.Add(amount)
	return nil
}

func (e *Engine) FillRewardPool(caller common.Address, amount sdkmath.Int) error {
	return e.FillPool(caller, PoolReward, amount)
}

func (e *Engine) FillUnstakingPool(caller common.Address, amount sdkmath.Int) error {
	return e.FillPool(caller, PoolUnstaking, amount)
}

func (e *Engine) FillUnbondedPool(caller common.Address, amount sdkmath.Int) error {
	return e.FillPool(caller, PoolUnbonded, amount)
}

func (e *Engine) payoutPool(pool Pool) (*sdkmath.Int, error) {
	switch pool {
	case PoolReward:
		return &e.pools.Reward, nil
	case PoolUnstaking:
		return &e.pools.Unstaking, nil
	case PoolUnbonded:
		return &e.pools.Unbonded, nil
	default:
		return nil, errorsmod.Wrapf(ledger.ErrNotFound, "pool %q", pool)
	}
}

// WithdrawRevenue pays collected protocol fees to to.
func (e *Engine) WithdrawRevenue(caller, to common.Address, amount sdkmath.Int) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	if err := ledger.ValidateAddress(to); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	if e.pools.Revenue.LT(amount) {
		return errorsmod.Wrapf(ledger.ErrInsufficientPoolLiquidity,
			"revenue pool holds %s, needs %s", e.pools.Revenue, amount)
	}
	e.pools.Revenue = e.pools.Revenue.Sub(amount)
	_ = e.bank.Credit(to, amount)
	e.emit(ledger.Event{Type: ledger.EventRevenueWithdraw, User: to, Amount: amount})
	return nil
}

func (e *Engine) AddDapp(caller common.Address, name string, addr common.Address) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.acl.Require(caller, ledger.RoleAdmin, ledger.RoleManager); err != nil {
		return err
	}
	if err := ledger.ValidateAddress(addr); err != nil {
		return err
	}
	if _, ok := e.dapps[name]; ok {
		return errorsmod.Wrapf(ledger.ErrAlreadyExists, "dapp %q", name)
	}
	if _, err := e.distr.AddUtility(e.address, name); err != nil {
		return err
	}
	e.dapps[name] = &Dapp{Name: name, Address: addr, Active: true}
	return nil
}

// SetDappStatus activates or deactivates a utility. Inactive utilities
// accept no new stake but keep earning and can be unstaked.
func (e *Engine) SetDappStatus(caller common.Address, name string, active bool) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.acl.Require(caller, ledger.RoleAdmin, ledger.RoleManager); err != nil {
		return err
	}
	if err := e.distr.SetUtilityStatus(e.address, name, active); err != nil {
		return err
	}
	if d, ok := e.dapps[name]; ok {
		d.Active = active
	}
	return nil
}

func (e *Engine) AddManager(caller, addr common.Address) error {
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	return e.acl.Grant(ledger.RoleManager, addr)
}

func (e *Engine) RemoveManager(caller, addr common.Address) error {
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	return e.acl.Revoke(ledger.RoleManager, addr)
}

func (e *Engine) AddPartner(caller, addr common.Address) error {
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	if uint64(e.acl.Count(ledger.RolePartner)) >= e.params.PartnersLimit {
		return errorsmod.Wrapf(ledger.ErrLimitExceeded, "partners limit %d reached", e.params.PartnersLimit)
	}
	return e.acl.Grant(ledger.RolePartner, addr)
}

func (e *Engine) RemovePartner(caller, addr common.Address) error {
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	return e.acl.Revoke(ledger.RolePartner, addr)
}

func (e *Engine) SetPartnersLimit(caller common.Address, limit uint64) error {
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	if limit == 0 || limit < uint64(e.acl.Count(ledger.RolePartner)) {
		return errorsmod.Wrapf(ledger.ErrLimitExceeded,
			"limit %d is below the %d registered partners", limit, e.acl.Count(ledger.RolePartner))
	}
	e.params.PartnersLimit = limit
	return nil
}

func (e *Engine) SetMinStakeAmount(caller common.Address, amount sdkmath.Int) error {
	if err := e.acl.Require(caller, ledger.RoleAdmin); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	e.params.MinStakeAmount = amount
	return nil
}
