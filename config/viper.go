// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// BuildFlagSet returns the flags understood by BuildViper.
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("auth", pflag.ContinueOnError)
	AddFlags(fs)
	fs.Bool(VersionKey, false, "If true, print version and quit")
	fs.Bool(HelpKey, false, "If true, print usage and quit")
	return fs
}

// AddFlags registers the configuration flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "Specifies the JSON config file")
	fs.String(DataDirKey, "", "Directory of the registry database. Empty keeps the registry in memory")
	fs.String(LogLevelKey, defaultLogLevel, "Log level")
	fs.String(OwnerKey, "", "Address allowed to transfer operatorship")
	fs.Uint16(APIPortKey, defaultAPIPort, "Port of the HTTP API")
	fs.Uint16(MetricsPortKey, defaultMetricsPort, "Port of the prometheus metrics server")
	fs.Int(EpochCacheSizeKey, DefaultEpochCacheSize, "Number of fingerprint to epoch lookups to cache")
	fs.StringSlice(RecentOperatorsKey, nil, "Hex encoded operator params committed on first deployment")
}

// Build the viper instance. The config file may be provided via the command
// line flag or environment variable. All config keys may be provided via
// config file or environment variable.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	// Map flag names to env var names. Flags are capitalized, and hyphens are replaced with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	filename := v.GetString(ConfigFileKey)
	if filename == "" {
		filename = os.Getenv(ConfigFileEnvKey)
	}
	if filename == "" {
		return v, nil
	}
	v.SetConfigFile(filename)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return v, nil
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(APIPortKey, defaultAPIPort)
	v.SetDefault(MetricsPortKey, defaultMetricsPort)
	v.SetDefault(EpochCacheSizeKey, DefaultEpochCacheSize)
}

// BuildConfig constructs the config using Viper.
// The following precedence order is used. Each item takes precedence over the item below it:
//  1. Flags
//  2. Environment
//  3. Config file
//  4. Defaults
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	return cfg, nil
}

// DisplayUsageText prints the usage of the config flags.
func DisplayUsageText() {
	fmt.Printf("Usage: authcli [command] [flags]\n\n")
	fmt.Printf("Configuration may be given as flags, as a JSON file passed with --%s\n", ConfigFileKey)
	fmt.Printf("or the %s environment variable, or as environment variables named\n", ConfigFileEnvKey)
	fmt.Printf("after the flags (e.g. LOG_LEVEL).\n\n")
	BuildFlagSet().PrintDefaults()
}
