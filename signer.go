// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sort"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/math/set"
)

var (
	_ Signer = (*signer)(nil)

	ErrUnknownSigner   = errors.New("signer is not an operator")
	ErrDuplicateSigner = errors.New("duplicate signer")
	errNoSigners       = errors.New("no signers provided")
)

// Signer signs message digests on behalf of an operator
type Signer interface {
	Address() common.Address
	Sign(digest common.Hash) ([]byte, error)
}

// NewSigner creates a new operator signer
func NewSigner(sk *ecdsa.PrivateKey) Signer {
	return &signer{
		sk:      sk,
		address: common.Address(crypto.PubkeyToAddress(sk.PublicKey)),
	}
}

type signer struct {
	sk      *ecdsa.PrivateKey
	address common.Address
}

func (s *signer) Address() common.Address {
	return s.address
}

func (s *signer) Sign(digest common.Hash) ([]byte, error) {
	return crypto.Sign(digest[:], s.sk)
}

// SignProof signs digest with every signer and assembles a proof for set with
// the signatures in operator order.
func SignProof(digest common.Hash, operatorSet *OperatorSet, signers []Signer) (*Proof, error) {
	if len(signers) == 0 {
		return nil, errNoSigners
	}

	seen := set.NewSet[common.Address](len(signers))
	ordered := make([]Signer, 0, len(signers))
	for _, s := range signers {
		addr := s.Address()
		if seen.Contains(addr) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSigner, addr)
		}
		if operatorSet.Index(addr) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, addr)
		}
		seen.Add(addr)
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i].Address(), ordered[j].Address()
		return bytes.Compare(a[:], b[:]) < 0
	})

	signatures := make([][]byte, len(ordered))
	for i, s := range ordered {
		sig, err := s.Sign(digest)
		if err != nil {
			return nil, fmt.Errorf("failed to sign with %s: %w", s.Address(), err)
		}
		signatures[i] = sig
	}
	return NewProof(operatorSet, signatures), nil
}
