// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"
	VersionKey    = "version"
	HelpKey       = "help"

	// Environment variable keys
	ConfigFileEnvKey = "CONFIG_FILE"

	// Top-level configuration keys
	DataDirKey         = "data-dir"
	LogLevelKey        = "log-level"
	OwnerKey           = "owner"
	APIPortKey         = "api-port"
	MetricsPortKey     = "metrics-port"
	EpochCacheSizeKey  = "epoch-cache-size"
	RecentOperatorsKey = "recent-operators"
)
