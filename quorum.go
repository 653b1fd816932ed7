// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// verifySignatures checks that signatures carry at least threshold weight
// of operators. operators must be sorted ascending and signatures must follow
// the same order: the operator cursor only moves forward, so each operator
// backs at most one signature and an out-of-order signer is never matched.
// Matching stops as soon as the threshold is reached.
func verifySignatures(
	recoverer Recoverer,
	digest common.Hash,
	operators []common.Address,
	weights []uint32,
	threshold uint32,
	signatures [][]byte,
) error {
	var (
		operatorIndex int
		weight        uint64
	)
	for i, signature := range signatures {
		signer, err := recoverer.RecoverSigner(digest, signature)
		if err != nil {
			return fmt.Errorf("%w: signature %d: %w", ErrMalformedProof, i, err)
		}

		for operatorIndex < len(operators) && operators[operatorIndex] != signer {
			operatorIndex++
		}
		if operatorIndex >= len(operators) {
			return fmt.Errorf("%w: signature %d from %s", ErrUnmatchedSigner, i, signer)
		}

		weight += uint64(weights[operatorIndex])
		if weight >= uint64(threshold) {
			return nil
		}
		operatorIndex++
	}
	return fmt.Errorf("%w: signed weight %d < threshold %d", ErrInsufficientWeight, weight, threshold)
}
