// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/luxfi/auth/config"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "authcli",
	Short: "Weighted multisig operator authorization",
	Long: `authcli manages a weighted operator set registry and validates quorum
proofs against it.

Registry commands open the registry in --data-dir (in memory when empty).
Tool commands build operator params, signatures and proofs offline.`,
	Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(rotateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(epochCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(proofCmd)
	rootCmd.AddCommand(serveCmd)
}
