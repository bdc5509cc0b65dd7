package clients

import (
	"github.com/algem/liquid-staking-service/internal/clients/stakingmodule"
	"github.com/algem/liquid-staking-service/internal/config"
	module "github.com/algem/liquid-staking-service/internal/stakingmodule"
)

type Clients struct {
	// StakingModule is the module the engine bonds with, either the
	// sidecar client or an in-process simulation.
	StakingModule module.Module
}

func New(cfg *config.Config) *Clients {
	if cfg.StakingModule.IsSimulated() {
		return &Clients{StakingModule: module.NewSimulated(
			cfg.StakingModule.StartEra,
			cfg.StakingModule.UnbondingPeriod,
			cfg.StakingModule.RewardRateBps,
		)}
	}

	return &Clients{
		StakingModule: stakingmodule.NewStakingModuleClient(&cfg.StakingModule),
	}
}
