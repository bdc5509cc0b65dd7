package utils

import (
	"github.com/algem/liquid-staking-service/internal/types"
)

// WithdrawalStateAt returns the state of a withdrawal request at currentEra.
// A request is withdrawable once the era reaches its completion era, even if
// the unbonded pool has not been refilled yet.
func WithdrawalStateAt(fulfilled bool, completionEra, currentEra uint64) types.WithdrawalState {
	switch {
	case fulfilled:
		return types.Withdrawn
	case currentEra >= completionEra:
		return types.Withdrawable
	default:
		return types.Unbonding
	}
}

// QualifiedStatesToWithdraw returns the states a request can be withdrawn from.
func QualifiedStatesToWithdraw() []types.WithdrawalState {
	return []types.WithdrawalState{types.Withdrawable}
}

// List of states to be ignored when filtering open requests
var OutdatedWithdrawalStates = []types.WithdrawalState{types.Withdrawn}
