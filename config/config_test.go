// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

const testOwner = "0x00000000000000000000000000000000000000aa"

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestBuildConfigDefaults(t *testing.T) {
	require := require.New(t)

	fs := BuildFlagSet()
	require.NoError(fs.Parse([]string{"--" + OwnerKey, testOwner}))

	v, err := BuildViper(fs)
	require.NoError(err)
	cfg, err := NewConfig(v)
	require.NoError(err)

	require.Equal(defaultLogLevel, cfg.LogLevel)
	require.Equal(defaultAPIPort, cfg.APIPort)
	require.Equal(defaultMetricsPort, cfg.MetricsPort)
	require.Equal(DefaultEpochCacheSize, cfg.EpochCacheSize)
	require.Empty(cfg.DataDir)
	require.Equal(common.HexToAddress(testOwner), cfg.OwnerAddress())
	require.Empty(cfg.RecentOperatorParams())
}

func TestBuildConfigFromFile(t *testing.T) {
	require := require.New(t)

	path := writeConfigFile(t, `{
		"log-level": "debug",
		"data-dir": "/var/lib/auth",
		"owner": "`+testOwner+`",
		"api-port": 9000,
		"metrics-port": 9001,
		"epoch-cache-size": 32,
		"recent-operators": ["0x0102", "ff"]
	}`)

	fs := BuildFlagSet()
	require.NoError(fs.Parse([]string{"--" + ConfigFileKey, path, "--" + APIPortKey, "9100"}))

	v, err := BuildViper(fs)
	require.NoError(err)
	cfg, err := NewConfig(v)
	require.NoError(err)

	require.Equal("debug", cfg.LogLevel)
	require.Equal("/var/lib/auth", cfg.DataDir)
	// Flags win over the file.
	require.Equal(uint16(9100), cfg.APIPort)
	require.Equal(uint16(9001), cfg.MetricsPort)
	require.Equal(32, cfg.EpochCacheSize)
	require.Equal([][]byte{{0x01, 0x02}, {0xff}}, cfg.RecentOperatorParams())

	authCfg := cfg.AuthConfig(nil)
	require.Equal(common.HexToAddress(testOwner), authCfg.Owner)
	require.Equal(32, authCfg.EpochCacheSize)
}

func TestBuildViperMissingFile(t *testing.T) {
	fs := BuildFlagSet()
	require.NoError(t, fs.Parse([]string{"--" + ConfigFileKey, filepath.Join(t.TempDir(), "missing.json")}))

	_, err := BuildViper(fs)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LogLevel:       defaultLogLevel,
			Owner:          testOwner,
			APIPort:        defaultAPIPort,
			MetricsPort:    defaultMetricsPort,
			EpochCacheSize: DefaultEpochCacheSize,
		}
	}

	tests := []struct {
		name        string
		modify      func(*Config)
		expectedErr error
	}{
		{
			name:   "valid",
			modify: func(*Config) {},
		},
		{
			name: "missing owner",
			modify: func(c *Config) {
				c.Owner = ""
			},
			expectedErr: errInvalidOwner,
		},
		{
			name: "zero owner",
			modify: func(c *Config) {
				c.Owner = "0x0000000000000000000000000000000000000000"
			},
			expectedErr: errInvalidOwner,
		},
		{
			name: "zero cache size",
			modify: func(c *Config) {
				c.EpochCacheSize = 0
			},
			expectedErr: errInvalidEpochCacheSize,
		},
		{
			name: "same ports",
			modify: func(c *Config) {
				c.MetricsPort = c.APIPort
			},
			expectedErr: errPortCollision,
		},
		{
			name: "empty recent operators",
			modify: func(c *Config) {
				c.RecentOperators = []string{"0x"}
			},
			expectedErr: errEmptyRecentOperators,
		},
		{
			name: "zeroed recent operators",
			modify: func(c *Config) {
				c.RecentOperators = []string{"0x" + strings.Repeat("00", 96)}
			},
			expectedErr: errEmptyRecentOperators,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), tt.expectedErr)
		})
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	cfg := Config{
		LogLevel:        "loud",
		Owner:           testOwner,
		APIPort:         1,
		MetricsPort:     2,
		EpochCacheSize:  1,
		RecentOperators: []string{"0x01"},
	}
	require.Error(t, cfg.Validate())

	cfg.LogLevel = defaultLogLevel
	require.NoError(t, cfg.Validate())

	cfg.RecentOperators = []string{"0xnothex"}
	require.Error(t, cfg.Validate())
}
