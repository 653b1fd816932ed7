// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func packParams(t *testing.T, operators []common.Address, weights []int64, threshold int64) []byte {
	t.Helper()

	w := make([]*big.Int, len(weights))
	for i, weight := range weights {
		w[i] = big.NewInt(weight)
	}
	b, err := ParamsSchema.Pack(operators, w, big.NewInt(threshold))
	require.NoError(t, err)
	return b
}

func TestTransferOperatorshipAssignsSequentialEpochs(t *testing.T) {
	require := require.New(t)

	signers := newTestSigners(t, 3)
	a, _ := newTestAuth(t)
	require.Zero(a.CurrentEpoch())

	for i := uint32(1); i <= 3; i++ {
		s := newTestOperatorSet(t, signers, []uint32{1, 1, 1}, i)
		epoch, err := a.TransferOperatorship(testOwner, mustBytes(t, s))
		require.NoError(err)
		require.Equal(uint64(i), epoch)
		require.Equal(uint64(i), a.CurrentEpoch())

		hash, err := s.Hash()
		require.NoError(err)
		got, err := a.EpochForHash(hash)
		require.NoError(err)
		require.Equal(uint64(i), got)
	}
	require.Equal(3.0, testutil.ToFloat64(a.metrics.rotations))
	require.Equal(3.0, testutil.ToFloat64(a.metrics.currentEpoch))
}

func TestTransferOperatorshipRejected(t *testing.T) {
	var (
		a1 = common.Address{0x01}
		a2 = common.Address{0x02}
		a3 = common.Address{0x03}
	)
	tooWide := new(big.Int).Lsh(big.NewInt(1), 40)

	tests := []struct {
		name        string
		caller      common.Address
		params      func(t *testing.T) []byte
		expectedErr error
	}{
		{
			name:   "not owner",
			caller: testStranger,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{a1, a2}, []int64{1, 1}, 1)
			},
			expectedErr: ErrNotOwner,
		},
		{
			name:   "not owner with garbage params",
			caller: testStranger,
			params: func(*testing.T) []byte {
				return []byte{0xff}
			},
			expectedErr: ErrNotOwner,
		},
		{
			name:   "undecodable params",
			caller: testOwner,
			params: func(*testing.T) []byte {
				return []byte{0x01, 0x02}
			},
			expectedErr: ErrMalformedParams,
		},
		{
			name:   "no operators",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{}, []int64{}, 1)
			},
			expectedErr: ErrInvalidOperators,
		},
		{
			name:   "unsorted operators",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{a3, a1, a2}, []int64{1, 1, 1}, 2)
			},
			expectedErr: ErrInvalidOperators,
		},
		{
			name:   "repeated operator",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{a1, a1, a2}, []int64{1, 1, 1}, 2)
			},
			expectedErr: ErrInvalidOperators,
		},
		{
			name:   "zero address operator",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{{}, a1}, []int64{1, 1}, 1)
			},
			expectedErr: ErrInvalidOperators,
		},
		{
			name:   "weights length mismatch",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{a1, a2, a3}, []int64{1, 1}, 1)
			},
			expectedErr: ErrInvalidWeights,
		},
		{
			name:   "weight above uint32",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				b, err := ParamsSchema.Pack(
					[]common.Address{a1, a2},
					[]*big.Int{big.NewInt(1), tooWide},
					big.NewInt(1),
				)
				require.NoError(t, err)
				return b
			},
			expectedErr: ErrInvalidWeights,
		},
		{
			name:   "zero threshold",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{a1, a2}, []int64{1, 1}, 0)
			},
			expectedErr: ErrInvalidThreshold,
		},
		{
			name:   "threshold above total weight",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{a1, a2}, []int64{2, 3}, 6)
			},
			expectedErr: ErrInvalidThreshold,
		},
		{
			name:   "already committed",
			caller: testOwner,
			params: func(t *testing.T) []byte {
				return packParams(t, []common.Address{a1, a2, a3}, []int64{1, 1, 1}, 2)
			},
			expectedErr: ErrDuplicateOperators,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			initial, err := NewOperatorSet([]common.Address{a1, a2, a3}, []uint32{1, 1, 1}, 2)
			require.NoError(err)
			a, feed := newTestAuth(t, initial)

			events := make(chan Event, 1)
			sub := feed.Subscribe(events)
			defer sub.Unsubscribe()

			epoch, err := a.TransferOperatorship(tt.caller, tt.params(t))
			require.ErrorIs(err, tt.expectedErr)
			require.True(IsFault(err))
			require.Zero(epoch)

			require.Equal(uint64(1), a.CurrentEpoch())
			_, ok, err := a.HashForEpoch(2)
			require.NoError(err)
			require.False(ok)
			require.Len(events, 0)
			require.Equal(1.0, testutil.ToFloat64(a.metrics.rotations))
		})
	}
}

func TestTransferOperatorshipEmitsEvent(t *testing.T) {
	require := require.New(t)

	a, feed := newTestAuth(t)
	events := make(chan Event, 1)
	sub := feed.Subscribe(events)
	defer sub.Unsubscribe()

	s, err := NewOperatorSet(
		[]common.Address{
			common.HexToAddress("0x1000000000000000000000000000000000000001"),
			common.HexToAddress("0x2000000000000000000000000000000000000002"),
		},
		[]uint32{3, 7},
		9,
	)
	require.NoError(err)

	_, err = a.TransferOperatorship(testOwner, mustBytes(t, s))
	require.NoError(err)

	e := <-events
	require.Equal(EventStandard, e.Standard)
	require.Equal(EventVersion, e.Version)
	require.Equal(OperatorshipTransferredEvent, e.Event)
	require.Equal(OperatorshipTransferred{
		NewOperators: `["0x1000000000000000000000000000000000000001","0x2000000000000000000000000000000000000002"]`,
		NewWeights:   "[3,7]",
		NewThreshold: "9",
	}, e.Data)

	var decoded map[string]interface{}
	require.NoError(json.Unmarshal([]byte(e.String()[len(EventLogPrefix):]), &decoded))
	require.Equal("auth_weighted", decoded["standard"])
	require.Equal("operatorship_transferred", decoded["event"])
	data, ok := decoded["data"].(map[string]interface{})
	require.True(ok)
	require.Equal("[3,7]", data["new_weights"])
	require.Equal("9", data["new_threshold"])
}

func TestTransferOperatorshipHashesSubmittedBytes(t *testing.T) {
	require := require.New(t)

	signers := newTestSigners(t, 2)
	s := newTestOperatorSet(t, signers, []uint32{1, 1}, 2)
	params := mustBytes(t, s)

	a, _ := newTestAuth(t)
	_, err := a.TransferOperatorship(testOwner, params)
	require.NoError(err)

	got, ok, err := a.HashForEpoch(1)
	require.NoError(err)
	require.True(ok)
	require.Equal(HashOperators(params), got)
}

func TestTransferOperatorshipAfterOwnershipTransfer(t *testing.T) {
	require := require.New(t)

	signers := newTestSigners(t, 2)
	a, _ := newTestAuth(t)

	require.NoError(a.TransferOwnership(testOwner, testStranger))
	require.Equal(testStranger, a.Owner())

	s := newTestOperatorSet(t, signers, []uint32{1, 1}, 1)
	_, err := a.TransferOperatorship(testOwner, mustBytes(t, s))
	require.ErrorIs(err, ErrNotOwner)

	epoch, err := a.TransferOperatorship(testStranger, mustBytes(t, s))
	require.NoError(err)
	require.Equal(uint64(1), epoch)
}
