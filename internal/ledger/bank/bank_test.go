package bank_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/bank"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
)

func TestCreditDebit(t *testing.T) {
	b := bank.New()
	require.NoError(t, b.Credit(alice, sdkmath.NewInt(100)))
	assert.ErrorIs(t, b.Credit(alice, sdkmath.ZeroInt()), ledger.ErrInvalidAmount)
	assert.ErrorIs(t, b.Credit(common.Address{}, sdkmath.NewInt(1)), ledger.ErrInvalidAddress)

	assert.ErrorIs(t, b.Debit(alice, sdkmath.NewInt(101)), ledger.ErrInsufficientBalance)
	require.NoError(t, b.Debit(alice, sdkmath.NewInt(40)))
	assert.Equal(t, "60", b.BalanceOf(alice).String())
}

func TestTransfer(t *testing.T) {
	b := bank.New()
	require.NoError(t, b.Credit(alice, sdkmath.NewInt(10)))
	require.NoError(t, b.Transfer(alice, bob, sdkmath.NewInt(10)))
	assert.True(t, b.BalanceOf(alice).IsZero())
	assert.Equal(t, "10", b.BalanceOf(bob).String())
	assert.Equal(t, "10", b.Total().String())

	restored := bank.Import(b.Export())
	assert.Equal(t, "10", restored.BalanceOf(bob).String())
}
