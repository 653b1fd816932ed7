// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/luxfi/auth"
	"github.com/luxfi/auth/config"
	"github.com/luxfi/auth/database"
	"github.com/luxfi/auth/utils"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var errInvalidAddress = errors.New("invalid address")

// node is an opened authorizer and the store backing it.
type node struct {
	cfg    config.Config
	log    log.Logger
	db     database.Database
	events *auth.FeedSink
	auth   *auth.AuthWeighted
}

func (n *node) Close() error {
	return n.db.Close()
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("couldn't configure flags: %w", err)
	}
	return config.NewConfig(v)
}

func newLogger(level string) (log.Logger, error) {
	lvl, err := log.ToLevel(level)
	if err != nil {
		return nil, fmt.Errorf("error reading log level from config: %w", err)
	}
	return log.NewLogger(
		"authcli",
		*log.NewWrappedCore(lvl, os.Stderr, log.Plain.ConsoleEncoder()),
	), nil
}

func openNode(cmd *cobra.Command, registerer prometheus.Registerer) (*node, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	events := auth.NewFeedSink()
	authCfg := cfg.AuthConfig(logger)
	authCfg.Registerer = registerer
	authCfg.Events = auth.MultiSink{auth.NewLogSink(logger), events}
	a, err := auth.New(db, authCfg, cfg.RecentOperatorParams())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &node{
		cfg:    cfg,
		log:    logger,
		db:     db,
		events: events,
		auth:   a,
	}, nil
}

// withNode runs fn against the configured registry and closes it afterwards.
func withNode(fn func(cmd *cobra.Command, args []string, n *node) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		n, err := openNode(cmd, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer n.Close()
		return fn(cmd, args, n)
	}
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", errInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

func parseFingerprint(s string) (auth.Fingerprint, error) {
	b, err := utils.DecodeHexString(s)
	if err != nil {
		return auth.Fingerprint{}, fmt.Errorf("invalid operators hash: %w", err)
	}
	return ids.ToID(b)
}

func formatFingerprint(hash auth.Fingerprint) string {
	return common.Hash(hash).Hex()
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Deploy the registry",
	Long: `Open the registry, recording --owner and committing --recent-operators
if the registry is empty, and print its state.`,
	Args: cobra.NoArgs,
	RunE: withNode(func(cmd *cobra.Command, _ []string, n *node) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Owner: %s\n", n.auth.Owner())
		fmt.Fprintf(out, "Current epoch: %d\n", n.auth.CurrentEpoch())
		return nil
	}),
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Transfer operatorship to a new operator set",
	Args:  cobra.NoArgs,
	RunE: withNode(func(cmd *cobra.Command, _ []string, n *node) error {
		callerFlag, _ := cmd.Flags().GetString("caller")
		paramsFlag, _ := cmd.Flags().GetString("params")

		caller, err := parseAddress(callerFlag)
		if err != nil {
			return err
		}
		params, err := utils.DecodeHexString(paramsFlag)
		if err != nil {
			return fmt.Errorf("invalid params hex: %w", err)
		}
		epoch, err := n.auth.TransferOperatorship(caller, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Epoch: %d\nOperators hash: %s\n", epoch, formatFingerprint(auth.HashOperators(params)))
		return nil
	}),
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a proof over a message hash",
	Args:  cobra.NoArgs,
	RunE: withNode(func(cmd *cobra.Command, _ []string, n *node) error {
		hashFlag, _ := cmd.Flags().GetString("message-hash")
		proofFlag, _ := cmd.Flags().GetString("proof")

		digest, err := utils.DecodeHexString(hashFlag)
		if err != nil || len(digest) != common.HashLength {
			return fmt.Errorf("invalid message hash %q", hashFlag)
		}
		proof, err := utils.DecodeHexString(proofFlag)
		if err != nil {
			return fmt.Errorf("invalid proof hex: %w", err)
		}
		valid, err := n.auth.ValidateProof(common.BytesToHash(digest), proof)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %t\n", valid)
		return nil
	}),
}

var epochCmd = &cobra.Command{
	Use:   "epoch",
	Short: "Inspect the epoch registry",
	Long: `Print the current epoch. With --hash, print the epoch an operators hash
was committed at (0 if never). With --at, print the operators hash committed
at an epoch.`,
	Args: cobra.NoArgs,
	RunE: withNode(func(cmd *cobra.Command, _ []string, n *node) error {
		out := cmd.OutOrStdout()
		if cmd.Flags().Changed("hash") {
			hashFlag, _ := cmd.Flags().GetString("hash")
			hash, err := parseFingerprint(hashFlag)
			if err != nil {
				return err
			}
			epoch, err := n.auth.EpochForHash(hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d\n", epoch)
			return nil
		}
		if cmd.Flags().Changed("at") {
			at, _ := cmd.Flags().GetUint64("at")
			hash, ok, err := n.auth.HashForEpoch(at)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no operators committed at epoch %d", at)
			}
			fmt.Fprintln(out, formatFingerprint(hash))
			return nil
		}
		fmt.Fprintf(out, "%d\n", n.auth.CurrentEpoch())
		return nil
	}),
}

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Show or transfer the owner",
	Args:  cobra.NoArgs,
	RunE: withNode(func(cmd *cobra.Command, _ []string, n *node) error {
		if !cmd.Flags().Changed("new-owner") {
			fmt.Fprintln(cmd.OutOrStdout(), n.auth.Owner().Hex())
			return nil
		}
		callerFlag, _ := cmd.Flags().GetString("caller")
		newOwnerFlag, _ := cmd.Flags().GetString("new-owner")
		caller, err := parseAddress(callerFlag)
		if err != nil {
			return err
		}
		newOwner, err := parseAddress(newOwnerFlag)
		if err != nil {
			return err
		}
		if err := n.auth.TransferOwnership(caller, newOwner); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), newOwner.Hex())
		return nil
	}),
}

func init() {
	rotateCmd.Flags().String("caller", "", "Address submitting the transfer")
	rotateCmd.Flags().String("params", "", "Hex encoded operator params")
	_ = rotateCmd.MarkFlagRequired("caller")
	_ = rotateCmd.MarkFlagRequired("params")

	validateCmd.Flags().String("message-hash", "", "32 byte message digest (hex)")
	validateCmd.Flags().String("proof", "", "Hex encoded proof")
	_ = validateCmd.MarkFlagRequired("message-hash")
	_ = validateCmd.MarkFlagRequired("proof")

	epochCmd.Flags().String("hash", "", "Operators hash (hex) to look up")
	epochCmd.Flags().Uint64("at", 0, "Epoch to look up")
	epochCmd.MarkFlagsMutuallyExclusive("hash", "at")

	ownerCmd.Flags().String("caller", "", "Current owner address")
	ownerCmd.Flags().String("new-owner", "", "Address to transfer ownership to")
	ownerCmd.MarkFlagsRequiredTogether("caller", "new-owner")
}
