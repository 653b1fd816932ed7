// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"
)

// Proof is a quorum signature over a message digest together with the
// operator set it claims to come from. Signatures must be ordered by
// ascending signer address.
type Proof struct {
	Operators  []common.Address
	Weights    []*big.Int
	Threshold  *big.Int
	Signatures [][]byte
}

// NewProof creates a proof for an operator set
func NewProof(set *OperatorSet, signatures [][]byte) *Proof {
	p := set.params()
	return &Proof{
		Operators:  p.operators,
		Weights:    p.weights,
		Threshold:  p.threshold,
		Signatures: signatures,
	}
}

// ParseProof decodes a proof. Failures wrap ErrMalformedProof.
func ParseProof(b []byte) (*Proof, error) {
	values, err := ProofSchema.Unpack(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}
	p, err := operatorFields(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}
	signatures, ok := values[3].([][]byte)
	if !ok {
		return nil, fmt.Errorf("%w: signatures field has type %T", ErrMalformedProof, values[3])
	}
	return &Proof{
		Operators:  p.operators,
		Weights:    p.weights,
		Threshold:  p.threshold,
		Signatures: signatures,
	}, nil
}

// Bytes returns the encoding of the proof
func (p *Proof) Bytes() ([]byte, error) {
	return ProofSchema.Pack(p.Operators, p.Weights, p.Threshold, p.Signatures)
}

// OperatorsHash returns the fingerprint of the operator set embedded in the proof.
func (p *Proof) OperatorsHash() (Fingerprint, error) {
	b, err := p.params().encode()
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %w", ErrMalformedProof, err)
	}
	return HashOperators(b), nil
}

func (p *Proof) params() *operatorParams {
	return &operatorParams{
		operators: p.Operators,
		weights:   p.Weights,
		threshold: p.Threshold,
	}
}
