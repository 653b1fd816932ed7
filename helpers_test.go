// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"bytes"
	"sort"
	"testing"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/ethdb/memorydb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var (
	testOwner    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testStranger = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	testDigest   = common.Hash(crypto.Keccak256Hash([]byte("gateway command batch")))
)

// newTestSigners returns n signers sorted by address.
func newTestSigners(t *testing.T, n int) []Signer {
	t.Helper()

	signers := make([]Signer, n)
	for i := range signers {
		sk, err := crypto.GenerateKey()
		require.NoError(t, err)
		signers[i] = NewSigner(sk)
	}
	sort.Slice(signers, func(i, j int) bool {
		a, b := signers[i].Address(), signers[j].Address()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return signers
}

func addresses(signers []Signer) []common.Address {
	out := make([]common.Address, len(signers))
	for i, s := range signers {
		out[i] = s.Address()
	}
	return out
}

func newTestOperatorSet(t *testing.T, signers []Signer, weights []uint32, threshold uint32) *OperatorSet {
	t.Helper()

	s, err := NewOperatorSet(addresses(signers), weights, threshold)
	require.NoError(t, err)
	return s
}

func mustBytes(t *testing.T, s *OperatorSet) []byte {
	t.Helper()

	b, err := s.Bytes()
	require.NoError(t, err)
	return b
}

func mustProof(t *testing.T, digest common.Hash, s *OperatorSet, signers ...Signer) []byte {
	t.Helper()

	proof, err := SignProof(digest, s, signers)
	require.NoError(t, err)
	b, err := proof.Bytes()
	require.NoError(t, err)
	return b
}

// newTestAuth deploys an authorizer owned by testOwner with sets committed
// as epochs 1..len(sets).
func newTestAuth(t *testing.T, sets ...*OperatorSet) (*AuthWeighted, *FeedSink) {
	t.Helper()

	params := make([][]byte, len(sets))
	for i, s := range sets {
		params[i] = mustBytes(t, s)
	}
	feed := NewFeedSink()
	a, err := New(memorydb.New(), Config{
		Owner:      testOwner,
		Log:        log.NewNoOpLogger(),
		Events:     feed,
		Registerer: prometheus.NewRegistry(),
	}, params)
	require.NoError(t, err)
	return a, feed
}

// addressRecoverer treats the signature bytes as the signer address.
type addressRecoverer struct{}

func (addressRecoverer) RecoverSigner(_ common.Hash, signature []byte) (common.Address, error) {
	return common.BytesToAddress(signature), nil
}
