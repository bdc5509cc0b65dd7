package stakingmodule

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// Module is the external staking module the engine bonds funds with and
// pulls era rewards from.
type Module interface {
	CurrentEra(ctx context.Context) (uint64, error)
	UnbondingPeriod(ctx context.Context) (uint64, error)
	Bond(ctx context.Context, amount sdkmath.Int) error
	Unbond(ctx context.Context, amount sdkmath.Int) error
	// RewardsAccrued returns the reward paid to the bonded stake for era.
	RewardsAccrued(ctx context.Context, era uint64) (sdkmath.Int, error)
}
