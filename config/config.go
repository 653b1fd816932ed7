// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"

	"github.com/luxfi/auth"
	"github.com/luxfi/auth/utils"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
)

const (
	defaultLogLevel    = "info"
	defaultAPIPort     = uint16(8080)
	defaultMetricsPort = uint16(8081)

	DefaultEpochCacheSize = auth.DefaultEpochCacheSize
)

var (
	errInvalidOwner          = errors.New("owner must be a non-zero hex address")
	errInvalidEpochCacheSize = errors.New("epoch cache size must be positive")
	errPortCollision         = errors.New("api port and metrics port must differ")
	errEmptyRecentOperators  = errors.New("recent operators entry is empty")
)

// Config is the top-level configuration of an authorizer deployment.
type Config struct {
	LogLevel       string `mapstructure:"log-level" json:"log-level"`
	DataDir        string `mapstructure:"data-dir" json:"data-dir"`
	Owner          string `mapstructure:"owner" json:"owner"`
	APIPort        uint16 `mapstructure:"api-port" json:"api-port"`
	MetricsPort    uint16 `mapstructure:"metrics-port" json:"metrics-port"`
	EpochCacheSize int    `mapstructure:"epoch-cache-size" json:"epoch-cache-size"`

	// Hex encoded operator params committed on first deployment, oldest
	// first.
	RecentOperators []string `mapstructure:"recent-operators" json:"recent-operators"`

	// convenience fields, set by Validate
	owner           common.Address
	recentOperators [][]byte
}

// Validate checks the configuration and decodes the owner and the initial
// operator sets.
func (c *Config) Validate() error {
	if _, err := log.ToLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if !common.IsHexAddress(c.Owner) {
		return fmt.Errorf("%w: %q", errInvalidOwner, c.Owner)
	}
	owner := common.HexToAddress(c.Owner)
	if utils.IsEmptyOrZeroes(owner.Bytes()) {
		return fmt.Errorf("%w: %q", errInvalidOwner, c.Owner)
	}
	if c.EpochCacheSize <= 0 {
		return errInvalidEpochCacheSize
	}
	if c.APIPort == c.MetricsPort {
		return errPortCollision
	}

	recentOperators := make([][]byte, len(c.RecentOperators))
	for i, s := range c.RecentOperators {
		b, err := utils.DecodeHexString(s)
		if err != nil {
			return fmt.Errorf("invalid recent operators %d: %w", i, err)
		}
		if utils.IsEmptyOrZeroes(b) {
			return fmt.Errorf("%w: %d", errEmptyRecentOperators, i)
		}
		recentOperators[i] = b
	}

	c.owner = owner
	c.recentOperators = recentOperators
	return nil
}

// OwnerAddress returns the deployer address. Validate must be called first.
func (c *Config) OwnerAddress() common.Address {
	return c.owner
}

// RecentOperatorParams returns the decoded initial operator sets. Validate
// must be called first.
func (c *Config) RecentOperatorParams() [][]byte {
	return c.recentOperators
}

// AuthConfig returns the authorizer configuration for this deployment.
func (c *Config) AuthConfig(logger log.Logger) auth.Config {
	return auth.Config{
		Owner:          c.owner,
		Log:            logger,
		EpochCacheSize: c.EpochCacheSize,
	}
}
