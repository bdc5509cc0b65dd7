package config

import (
	"errors"
	"net/url"
)

const (
	StakingModuleSimulated = "simulated"
	StakingModuleHTTP      = "http"
)

type StakingModuleConfig struct {
	// Mode selects an in-process simulated module or the HTTP sidecar.
	Mode       string `mapstructure:"mode"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	Timeout    int    `mapstructure:"timeout"`
	MaxRetries uint   `mapstructure:"max-retries"`

	// Simulated module only.
	StartEra        uint64 `mapstructure:"start-era"`
	UnbondingPeriod uint64 `mapstructure:"unbonding-period"`
	RewardRateBps   uint64 `mapstructure:"reward-rate-bps"`
}

func (cfg *StakingModuleConfig) Validate() error {
	switch cfg.Mode {
	case StakingModuleSimulated:
		if cfg.UnbondingPeriod == 0 {
			return errors.New("unbonding-period must be positive for the simulated module")
		}
		return nil
	case StakingModuleHTTP:
	default:
		return errors.New("mode must be either simulated or http")
	}

	if cfg.Host == "" {
		return errors.New("host cannot be empty")
	}

	if cfg.Port == "" {
		return errors.New("port cannot be empty")
	}

	if cfg.Timeout <= 0 {
		return errors.New("timeout cannot be smaller or equal to 0")
	}

	if cfg.MaxRetries == 0 {
		return errors.New("max-retries cannot be 0")
	}

	parsedURL, err := url.ParseRequestURI(cfg.Host)
	if err != nil {
		return errors.New("invalid staking module host")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("host must start with http or https")
	}

	return nil
}

func (cfg *StakingModuleConfig) IsSimulated() bool {
	return cfg.Mode == StakingModuleSimulated
}
