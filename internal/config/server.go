package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// maxSS58Prefix is the first prefix that no longer fits the two-byte
// SS58 encoding.
const maxSS58Prefix = 16384

type ServerConfig struct {
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port"`
	WriteTimeout        time.Duration `mapstructure:"write-timeout"`
	ReadTimeout         time.Duration `mapstructure:"read-timeout"`
	IdleTimeout         time.Duration `mapstructure:"idle-timeout"`
	AllowedOrigins      []string      `mapstructure:"allowed-origins"`
	SS58Prefix          uint16        `mapstructure:"ss58-prefix"`
	LogLevel            string        `mapstructure:"log-level"`
	MaxContentLength    int64         `mapstructure:"max-content-length"`
	HealthCheckInterval int           `mapstructure:"health-check-interval"`
}

func (cfg *ServerConfig) Validate() error {
	if net.ParseIP(cfg.Host) == nil {
		return fmt.Errorf("invalid host: %v", cfg.Host)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return errors.New("invalid port")
	}

	for name, d := range map[string]time.Duration{
		"write": cfg.WriteTimeout,
		"read":  cfg.ReadTimeout,
		"idle":  cfg.IdleTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s timeout cannot be negative", name)
		}
	}

	if cfg.MaxContentLength <= 0 {
		return errors.New("max-content-length must be a positive integer")
	}
	if cfg.HealthCheckInterval <= 0 {
		return errors.New("health-check-interval must be a positive integer")
	}
	if cfg.SS58Prefix >= maxSS58Prefix {
		return fmt.Errorf("ss58-prefix must be below %d", maxSS58Prefix)
	}

	return cfg.validateLogLevel()
}

// validateLogLevel accepts an empty level, which leaves zerolog's default.
func (cfg *ServerConfig) validateLogLevel() error {
	if cfg.LogLevel == "" {
		return nil
	}
	parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if parsedLevel < zerolog.DebugLevel || parsedLevel > zerolog.FatalLevel {
		return errors.New("only log levels from debug to fatal are supported")
	}
	return nil
}

func (cfg *ServerConfig) Address() string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}
