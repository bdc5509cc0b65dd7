package ledger

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error namespace of every ledger component.
const Codespace = "liquidstaking"

// Code 1 is reserved by the errors registry for internal errors.
var (
	ErrUnauthorized              = errorsmod.Register(Codespace, 2, "unauthorized")
	ErrAlreadyExists             = errorsmod.Register(Codespace, 3, "already exists")
	ErrAlreadyInitialized        = errorsmod.Register(Codespace, 4, "already initialized")
	ErrNotFound                  = errorsmod.Register(Codespace, 5, "not found")
	ErrInsufficientBalance       = errorsmod.Register(Codespace, 6, "insufficient balance")
	ErrInsufficientPoolLiquidity = errorsmod.Register(Codespace, 7, "insufficient pool liquidity")
	ErrInvalidAmount             = errorsmod.Register(Codespace, 8, "invalid amount")
	ErrNotMatured                = errorsmod.Register(Codespace, 9, "withdrawal not matured")
	ErrPaused                    = errorsmod.Register(Codespace, 10, "paused")
	ErrStaleEra                  = errorsmod.Register(Codespace, 11, "era already synced")
	ErrInvalidAddress            = errorsmod.Register(Codespace, 12, "invalid address")
	ErrInvalidEra                = errorsmod.Register(Codespace, 13, "invalid era")
	ErrUtilityInactive           = errorsmod.Register(Codespace, 14, "utility inactive")
	ErrAlreadyFulfilled          = errorsmod.Register(Codespace, 15, "withdrawal already fulfilled")
	ErrLimitExceeded             = errorsmod.Register(Codespace, 16, "limit exceeded")
	ErrImmutable                 = errorsmod.Register(Codespace, 17, "reference already set")
	ErrNotInitialized            = errorsmod.Register(Codespace, 18, "not initialized")
	ErrStakingModule             = errorsmod.Register(Codespace, 19, "staking module failure")
)
