// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"testing"

	"github.com/luxfi/geth/ethdb/memorydb"
	"github.com/stretchr/testify/require"
)

func TestRegistryCommitsSequentialEpochs(t *testing.T) {
	require := require.New(t)

	r, err := NewRegistry(memorydb.New(), 0)
	require.NoError(err)
	require.Zero(r.CurrentEpoch())

	hashes := make([]Fingerprint, 5)
	for i := range hashes {
		hashes[i] = HashOperators([]byte{byte(i)})
		epoch, err := r.commit(hashes[i])
		require.NoError(err)
		require.Equal(uint64(i+1), epoch)
		require.Equal(uint64(i+1), r.CurrentEpoch())
	}

	for i, hash := range hashes {
		epoch, err := r.EpochForHash(hash)
		require.NoError(err)
		require.Equal(uint64(i+1), epoch)

		got, ok, err := r.HashForEpoch(uint64(i + 1))
		require.NoError(err)
		require.True(ok)
		require.Equal(hash, got)
	}
}

func TestRegistryUnknownLookups(t *testing.T) {
	require := require.New(t)

	r, err := NewRegistry(memorydb.New(), 0)
	require.NoError(err)

	epoch, err := r.EpochForHash(HashOperators([]byte("never committed")))
	require.NoError(err)
	require.Zero(epoch)

	for _, e := range []uint64{0, 1, 100} {
		_, ok, err := r.HashForEpoch(e)
		require.NoError(err)
		require.False(ok)
	}
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	require := require.New(t)

	r, err := NewRegistry(memorydb.New(), 0)
	require.NoError(err)

	hash := HashOperators([]byte("set"))
	_, err = r.commit(hash)
	require.NoError(err)

	_, err = r.commit(hash)
	require.ErrorIs(err, ErrDuplicateOperators)
	require.Equal(uint64(1), r.CurrentEpoch())

	_, ok, err := r.HashForEpoch(2)
	require.NoError(err)
	require.False(ok)
}

func TestRegistryCommitBatch(t *testing.T) {
	require := require.New(t)

	db := memorydb.New()
	r, err := NewRegistry(db, 0)
	require.NoError(err)

	first := HashOperators([]byte("first"))
	second := HashOperators([]byte("second"))

	// A repeated hash fails the whole batch.
	_, err = r.commitBatch(db.NewBatch(), first, second, first)
	require.ErrorIs(err, ErrDuplicateOperators)
	require.Zero(r.CurrentEpoch())
	require.Zero(db.Len())

	epoch, err := r.commitBatch(db.NewBatch(), first, second)
	require.NoError(err)
	require.Equal(uint64(2), epoch)
	require.Equal(uint64(2), r.CurrentEpoch())

	got, err := r.EpochForHash(second)
	require.NoError(err)
	require.Equal(uint64(2), got)

	reopened, err := NewRegistry(db, 0)
	require.NoError(err)
	require.Equal(uint64(2), reopened.CurrentEpoch())
}

func TestRegistryLookupAfterMissIsNotStale(t *testing.T) {
	require := require.New(t)

	r, err := NewRegistry(memorydb.New(), 0)
	require.NoError(err)

	hash := HashOperators([]byte("late"))
	epoch, err := r.EpochForHash(hash)
	require.NoError(err)
	require.Zero(epoch)

	_, err = r.commit(hash)
	require.NoError(err)

	epoch, err = r.EpochForHash(hash)
	require.NoError(err)
	require.Equal(uint64(1), epoch)
}

func TestRegistryReopen(t *testing.T) {
	require := require.New(t)

	db := memorydb.New()
	r, err := NewRegistry(db, 0)
	require.NoError(err)

	first := HashOperators([]byte("first"))
	second := HashOperators([]byte("second"))
	_, err = r.commit(first)
	require.NoError(err)
	_, err = r.commit(second)
	require.NoError(err)

	reopened, err := NewRegistry(db, 1)
	require.NoError(err)
	require.Equal(uint64(2), reopened.CurrentEpoch())

	epoch, err := reopened.EpochForHash(first)
	require.NoError(err)
	require.Equal(uint64(1), epoch)

	got, ok, err := reopened.HashForEpoch(2)
	require.NoError(err)
	require.True(ok)
	require.Equal(second, got)

	third := HashOperators([]byte("third"))
	epoch, err = reopened.commit(third)
	require.NoError(err)
	require.Equal(uint64(3), epoch)
}

func TestRegistryCorruptCurrentEpoch(t *testing.T) {
	db := memorydb.New()
	require.NoError(t, db.Put(currentEpochKey, []byte{1, 2, 3}))

	_, err := NewRegistry(db, 0)
	require.ErrorIs(t, err, errCorruptEpochData)
}
