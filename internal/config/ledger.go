package config

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron/v3"
)

type LedgerConfig struct {
	// EraPollCron is the cron spec of the job that syncs new eras.
	// Empty disables the poller.
	EraPollCron string `mapstructure:"era-poll-cron"`
	// Keeper is the manager address used by the poller and queue
	// consumers when they sync.
	Keeper string `mapstructure:"keeper"`
	// Faucet enables crediting native balances through the give-money task.
	Faucet bool `mapstructure:"faucet"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.EraPollCron != "" {
		if _, err := cron.ParseStandard(cfg.EraPollCron); err != nil {
			return errors.New("invalid era-poll-cron: " + err.Error())
		}
	}

	if !common.IsHexAddress(cfg.Keeper) {
		return errors.New("keeper must be a hex address")
	}

	return nil
}

func (cfg *LedgerConfig) KeeperAddress() common.Address {
	return common.HexToAddress(cfg.Keeper)
}
