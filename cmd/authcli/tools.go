// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/luxfi/auth"
	"github.com/luxfi/auth/utils"
	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	errNoOperatorSet   = errors.New("either --params or --operators must be given")
	errWeightOverflow  = errors.New("weight does not fit in 32 bits")
	errNoSignatures    = errors.New("either --keys or --signatures must be given")
	errBothSignatures  = errors.New("--keys and --signatures are mutually exclusive")
	errInvalidMsgHash  = errors.New("message hash must be 32 bytes of hex")
	errInvalidHexParam = errors.New("invalid hex")
)

func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func addOperatorSetFlags(fs *pflag.FlagSet) {
	fs.String("params", "", "Hex encoded operator params")
	fs.StringSlice("operators", nil, "Operator addresses, ascending")
	fs.UintSlice("weights", nil, "Operator weights, aligned with --operators")
	fs.Uint32("threshold", 0, "Signing threshold")
}

// operatorSetFromFlags reads an operator set from --params, or builds one
// from --operators, --weights and --threshold.
func operatorSetFromFlags(fs *pflag.FlagSet) (*auth.OperatorSet, error) {
	if fs.Changed("params") {
		paramsFlag, _ := fs.GetString("params")
		params, err := utils.DecodeHexString(paramsFlag)
		if err != nil {
			return nil, fmt.Errorf("%w: params: %w", errInvalidHexParam, err)
		}
		return auth.ParseOperatorSet(params)
	}
	if !fs.Changed("operators") {
		return nil, errNoOperatorSet
	}

	operatorsFlag, _ := fs.GetStringSlice("operators")
	weightsFlag, _ := fs.GetUintSlice("weights")
	threshold, _ := fs.GetUint32("threshold")

	operators := make([]common.Address, len(operatorsFlag))
	for i, s := range operatorsFlag {
		addr, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		operators[i] = addr
	}
	weights := make([]uint32, len(weightsFlag))
	for i, w := range weightsFlag {
		if w > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %d", errWeightOverflow, w)
		}
		weights[i] = uint32(w)
	}
	return auth.NewOperatorSet(operators, weights, threshold)
}

func messageHashFromFlags(fs *pflag.FlagSet) (common.Hash, error) {
	hashFlag, _ := fs.GetString("message-hash")
	digest, err := utils.DecodeHexString(hashFlag)
	if err != nil || len(digest) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: %q", errInvalidMsgHash, hashFlag)
	}
	return common.BytesToHash(digest), nil
}

func parseSigner(s string) (auth.Signer, error) {
	sk, err := crypto.HexToECDSA(utils.SanitizeHexString(s))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return auth.NewSigner(sk), nil
}

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Encode an operator set and print its operators hash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := operatorSetFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		params, err := s.Bytes()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Params: %s\n", encodeHex(params))
		fmt.Fprintf(out, "Operators hash: %s\n", formatFingerprint(auth.HashOperators(params)))
		fmt.Fprintf(out, "Operators: %s\n", auth.FormatOperators(s.Operators))
		fmt.Fprintf(out, "Weights: %s\n", auth.FormatWeights(s.Weights))
		fmt.Fprintf(out, "Threshold: %d\n", s.Threshold)
		return nil
	},
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a message hash with an operator key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		digest, err := messageHashFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		keyFlag, _ := cmd.Flags().GetString("key")
		signer, err := parseSigner(keyFlag)
		if err != nil {
			return err
		}
		sig, err := signer.Sign(digest)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signer: %s\nSignature: %s\n", signer.Address().Hex(), encodeHex(sig))
		return nil
	},
}

var proofCmd = &cobra.Command{
	Use:   "proof",
	Short: "Assemble a proof for an operator set",
	Long: `Assemble a proof for an operator set. With --keys the message hash is
signed by each key and the signatures are put in operator order. With
--signatures the given signatures are used as is, in the given order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fs := cmd.Flags()
		s, err := operatorSetFromFlags(fs)
		if err != nil {
			return err
		}

		var proof *auth.Proof
		switch {
		case fs.Changed("keys") && fs.Changed("signatures"):
			return errBothSignatures
		case fs.Changed("keys"):
			digest, err := messageHashFromFlags(fs)
			if err != nil {
				return err
			}
			keys, _ := fs.GetStringSlice("keys")
			signers := make([]auth.Signer, len(keys))
			for i, k := range keys {
				if signers[i], err = parseSigner(k); err != nil {
					return err
				}
			}
			if proof, err = auth.SignProof(digest, s, signers); err != nil {
				return err
			}
		case fs.Changed("signatures"):
			sigFlags, _ := fs.GetStringSlice("signatures")
			signatures := make([][]byte, len(sigFlags))
			for i, sig := range sigFlags {
				b, err := utils.DecodeHexString(sig)
				if err != nil {
					return fmt.Errorf("%w: signature %d: %w", errInvalidHexParam, i, err)
				}
				signatures[i] = b
			}
			proof = auth.NewProof(s, signatures)
		default:
			return errNoSignatures
		}

		b, err := proof.Bytes()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), encodeHex(b))
		return nil
	},
}

func init() {
	addOperatorSetFlags(hashCmd.Flags())

	signCmd.Flags().String("key", "", "Hex encoded secp256k1 private key")
	signCmd.Flags().String("message-hash", "", "32 byte message digest (hex)")
	_ = signCmd.MarkFlagRequired("key")
	_ = signCmd.MarkFlagRequired("message-hash")

	addOperatorSetFlags(proofCmd.Flags())
	proofCmd.Flags().String("message-hash", "", "32 byte message digest (hex), required with --keys")
	proofCmd.Flags().StringSlice("keys", nil, "Hex encoded secp256k1 private keys of the signing operators")
	proofCmd.Flags().StringSlice("signatures", nil, "Hex encoded signatures, ordered by signer address")
}
