// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/geth/ethdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/auth/cache"
)

// OldKeyRetention is the number of rotations after which a superseded
// operator set can no longer back a proof.
const OldKeyRetention = 16

// DefaultEpochCacheSize bounds the fingerprint to epoch lookup cache.
const DefaultEpochCacheSize = 1024

var (
	currentEpochKey     = []byte("current_epoch")
	hashForEpochPrefix  = []byte("hash_for_epoch")
	epochForHashPrefix  = []byte("epoch_for_hash")
	errNotCommitted     = errors.New("operator set not committed")
	errCorruptEpochData = errors.New("corrupt epoch data")
)

// Database is the key-value store backing the registry.
type Database interface {
	ethdb.KeyValueReader
	ethdb.KeyValueWriter
	ethdb.Batcher
}

// Registry maps epochs to operator set fingerprints and back. Entries are
// never removed. commitBatch is the only mutator.
type Registry struct {
	db           Database
	currentEpoch uint64
	epochs       *cache.LRUCache[ids.ID, uint64]
}

// NewRegistry opens the registry stored in db. An empty store yields a
// registry at epoch 0.
func NewRegistry(db Database, cacheSize int) (*Registry, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultEpochCacheSize
	}
	r := &Registry{
		db:     db,
		epochs: cache.NewLRUCache[ids.ID, uint64](cacheSize),
	}
	has, err := db.Has(currentEpochKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read current epoch: %w", err)
	}
	if has {
		b, err := db.Get(currentEpochKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read current epoch: %w", err)
		}
		if r.currentEpoch, err = decodeEpoch(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// CurrentEpoch returns the highest committed epoch
func (r *Registry) CurrentEpoch() uint64 {
	return r.currentEpoch
}

// EpochForHash returns the epoch hash was committed at, or 0 if it never was.
func (r *Registry) EpochForHash(hash Fingerprint) (uint64, error) {
	epoch, err := r.epochs.Get(hash, r.readEpoch, false)
	if errors.Is(err, errNotCommitted) {
		return 0, nil
	}
	return epoch, err
}

// HashForEpoch returns the fingerprint committed at epoch.
func (r *Registry) HashForEpoch(epoch uint64) (Fingerprint, bool, error) {
	if epoch == 0 || epoch > r.currentEpoch {
		return Fingerprint{}, false, nil
	}
	b, err := r.db.Get(hashForEpochKey(epoch))
	if err != nil {
		return Fingerprint{}, false, fmt.Errorf("failed to read hash for epoch %d: %w", epoch, err)
	}
	hash, err := ids.ToID(b)
	if err != nil {
		return Fingerprint{}, false, fmt.Errorf("%w: epoch %d: %w", errCorruptEpochData, epoch, err)
	}
	return hash, true, nil
}

// commit assigns the next epoch to hash.
func (r *Registry) commit(hash Fingerprint) (uint64, error) {
	return r.commitBatch(r.db.NewBatch(), hash)
}

// commitBatch assigns the next epochs to hashes, in order, and writes them
// together with whatever batch already holds. Nothing is written if any hash
// is already committed or repeated.
func (r *Registry) commitBatch(batch ethdb.Batch, hashes ...Fingerprint) (uint64, error) {
	epoch := r.currentEpoch
	pending := make(map[Fingerprint]uint64, len(hashes))
	for _, hash := range hashes {
		existing, err := r.EpochForHash(hash)
		if err != nil {
			return 0, err
		}
		if existing == 0 {
			existing = pending[hash]
		}
		if existing > 0 {
			return 0, fmt.Errorf("%w: %s already committed at epoch %d", ErrDuplicateOperators, hash, existing)
		}

		epoch++
		pending[hash] = epoch
		if err := batch.Put(hashForEpochKey(epoch), hash[:]); err != nil {
			return 0, err
		}
		if err := batch.Put(epochForHashKey(hash), encodeEpoch(epoch)); err != nil {
			return 0, err
		}
	}
	if epoch != r.currentEpoch {
		if err := batch.Put(currentEpochKey, encodeEpoch(epoch)); err != nil {
			return 0, err
		}
	}
	if err := batch.Write(); err != nil {
		return 0, fmt.Errorf("failed to commit epoch %d: %w", epoch, err)
	}

	r.currentEpoch = epoch
	for hash, e := range pending {
		r.epochs.Add(hash, e)
	}
	return epoch, nil
}

func (r *Registry) readEpoch(hash ids.ID) (uint64, error) {
	key := epochForHashKey(hash)
	has, err := r.db.Has(key)
	if err != nil {
		return 0, fmt.Errorf("failed to read epoch for %s: %w", hash, err)
	}
	if !has {
		return 0, errNotCommitted
	}
	b, err := r.db.Get(key)
	if err != nil {
		return 0, fmt.Errorf("failed to read epoch for %s: %w", hash, err)
	}
	return decodeEpoch(b)
}

func hashForEpochKey(epoch uint64) []byte {
	return append(append([]byte{}, hashForEpochPrefix...), encodeEpoch(epoch)...)
}

func epochForHashKey(hash ids.ID) []byte {
	return append(append([]byte{}, epochForHashPrefix...), hash[:]...)
}

func encodeEpoch(epoch uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, epoch)
	return b
}

func decodeEpoch(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: %d bytes", errCorruptEpochData, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
