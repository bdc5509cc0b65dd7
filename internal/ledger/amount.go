package ledger

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// ValidateAmount rejects nil, zero and negative amounts.
func ValidateAmount(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return errorsmod.Wrapf(ErrInvalidAmount, "amount must be positive")
	}
	return nil
}

func ValidateAddress(addr common.Address) error {
	if addr == (common.Address{}) {
		return errorsmod.Wrap(ErrInvalidAddress, "zero address")
	}
	return nil
}

// OrZero returns zero for a nil amount.
func OrZero(amount sdkmath.Int) sdkmath.Int {
	if amount.IsNil() {
		return sdkmath.ZeroInt()
	}
	return amount
}
