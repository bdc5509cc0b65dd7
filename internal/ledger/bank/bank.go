package bank

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/algem/liquid-staking-service/internal/ledger"
)

// Bank holds the native balances of user wallets. Funds taken into the
// staking engine's custody leave the bank through Debit and come back
// through Credit.
type Bank struct {
	balances map[common.Address]sdkmath.Int
}

func New() *Bank {
	return &Bank{balances: make(map[common.Address]sdkmath.Int)}
}

func (b *Bank) BalanceOf(addr common.Address) sdkmath.Int {
	return ledger.OrZero(b.balances[addr])
}

func (b *Bank) Credit(addr common.Address, amount sdkmath.Int) error {
	if err := ledger.ValidateAddress(addr); err != nil {
		return err
	}
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	b.balances[addr] = b.BalanceOf(addr).Add(amount)
	return nil
}

// CanDebit reports why a Debit of amount from addr would fail, if it would.
func (b *Bank) CanDebit(addr common.Address, amount sdkmath.Int) error {
	if err := ledger.ValidateAmount(amount); err != nil {
		return err
	}
	if b.BalanceOf(addr).LT(amount) {
		return errorsmod.Wrapf(ledger.ErrInsufficientBalance,
			"%s holds %s, needs %s", addr.Hex(), b.BalanceOf(addr), amount)
	}
	return nil
}

func (b *Bank) Debit(addr common.Address, amount sdkmath.Int) error {
	if err := b.CanDebit(addr, amount); err != nil {
		return err
	}
	remaining := b.BalanceOf(addr).Sub(amount)
	if remaining.IsZero() {
		delete(b.balances, addr)
		return nil
	}
	b.balances[addr] = remaining
	return nil
}

func (b *Bank) Transfer(from, to common.Address, amount sdkmath.Int) error {
	if err := ledger.ValidateAddress(to); err != nil {
		return err
	}
	if err := b.Debit(from, amount); err != nil {
		return err
	}
	b.balances[to] = b.BalanceOf(to).Add(amount)
	return nil
}

// Total is the sum of every wallet balance.
func (b *Bank) Total() sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, bal := range b.balances {
		total = total.Add(bal)
	}
	return total
}

type State struct {
	Balances map[common.Address]sdkmath.Int `json:"balances"`
}

func (b *Bank) Export() State {
	balances := make(map[common.Address]sdkmath.Int, len(b.balances))
	for addr, bal := range b.balances {
		balances[addr] = bal
	}
	return State{Balances: balances}
}

func Import(state State) *Bank {
	b := New()
	for addr, bal := range state.Balances {
		if bal.IsNil() || bal.IsZero() {
			continue
		}
		b.balances[addr] = bal
	}
	return b
}
