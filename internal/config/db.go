package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

const (
	mongoScheme    = "mongodb"
	mongoSrvScheme = "mongodb+srv"
)

type DbConfig struct {
	DbName             string `mapstructure:"db-name"`
	Address            string `mapstructure:"address"`
	MaxPaginationLimit int64  `mapstructure:"max-pagination-limit"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.DbName == "" {
		return errors.New("missing db name")
	}
	if err := validateMongoAddress(cfg.Address); err != nil {
		return err
	}
	// a page of one would never carry a next token
	if cfg.MaxPaginationLimit < 2 {
		return errors.New("max pagination limit must be greater than 1")
	}
	return nil
}

// validateMongoAddress accepts a plain host:port address or an SRV record,
// which carries no port.
func validateMongoAddress(address string) error {
	if address == "" {
		return errors.New("missing db address")
	}
	u, err := url.Parse(address)
	if err != nil {
		return fmt.Errorf("invalid db address: %w", err)
	}
	if u.Hostname() == "" {
		return errors.New("missing host in db address")
	}

	switch u.Scheme {
	case mongoSrvScheme:
		if u.Port() != "" {
			return errors.New("mongodb+srv address must not carry a port")
		}
		return nil
	case mongoScheme:
	default:
		return fmt.Errorf("unsupported db scheme: %s", u.Scheme)
	}

	port := u.Port()
	if port == "" {
		return errors.New("missing port in db address")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port in db address: %w", err)
	}
	if portNum < 1024 || portNum > 65535 {
		return errors.New("db port must be between 1024 and 65535 (inclusive)")
	}
	return nil
}
