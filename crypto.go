// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
)

// SignatureLen is the length of a recoverable secp256k1 signature [R || S || V].
const SignatureLen = crypto.SignatureLength

var errInvalidSignatureLen = errors.New("invalid signature length")

// Fingerprint identifies the content of an operator set.
type Fingerprint = ids.ID

// HashOperators returns the fingerprint of an operator set encoding.
func HashOperators(encoded []byte) Fingerprint {
	return Fingerprint(crypto.Keccak256Hash(encoded))
}

// Recoverer recovers the address that produced a signature over a digest.
type Recoverer interface {
	RecoverSigner(digest common.Hash, signature []byte) (common.Address, error)
}

var _ Recoverer = ECRecoverer{}

// ECRecoverer recovers secp256k1 signers. Both 0/1 and 27/28 recovery ids
// are accepted.
type ECRecoverer struct{}

func (ECRecoverer) RecoverSigner(digest common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLen {
		return common.Address{}, fmt.Errorf("%w: %d", errInvalidSignatureLen, len(signature))
	}
	sig := make([]byte, SignatureLen)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(digest[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	return common.Address(crypto.PubkeyToAddress(*pub)), nil
}
