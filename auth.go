// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auth authorizes cross-chain gateway messages. A message is accepted
// only when it carries signatures from a weighted quorum of the operator set
// registered for the current epoch. Operator sets rotate; every set ever
// committed stays in the registry, indexed by epoch and by fingerprint.
package auth

import (
	"fmt"
	"sync"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Config configures an AuthWeighted instance.
type Config struct {
	// Owner is the deployer. It becomes the owner unless the database
	// already records one, and must then be non-zero.
	Owner common.Address

	Log            log.Logger
	Events         EventSink
	Recoverer      Recoverer
	Registerer     prometheus.Registerer
	EpochCacheSize int
}

// AuthWeighted validates quorum proofs against a rotating operator set.
// Calls are serialized: rotations hold the write lock while committing and
// validations share the read lock. Events are emitted after the write lock
// is released.
type AuthWeighted struct {
	lock sync.RWMutex
	// transferLock is held by a rotation through event delivery, so events
	// are emitted in epoch order.
	transferLock sync.Mutex

	log       log.Logger
	registry  *Registry
	owner     *Owner
	events    EventSink
	recoverer Recoverer
	metrics   *authMetrics
}

// New opens the authorizer stored in db. On a fresh registry each of
// recentOperators is committed, in order, as if transferred by the owner. A
// registry that already holds operators is opened as is.
//
// Deployment is all or nothing: the owner and every initial operator set are
// validated first and written in a single batch.
func New(db Database, cfg Config, recentOperators [][]byte) (*AuthWeighted, error) {
	if cfg.Log == nil {
		cfg.Log = log.NewNoOpLogger()
	}
	if cfg.Events == nil {
		cfg.Events = NewLogSink(cfg.Log)
	}
	if cfg.Recoverer == nil {
		cfg.Recoverer = ECRecoverer{}
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.NewRegistry()
	}

	registry, err := NewRegistry(db, cfg.EpochCacheSize)
	if err != nil {
		return nil, err
	}
	owner, hasOwner, err := loadOwner(db)
	if err != nil {
		return nil, err
	}

	if registry.CurrentEpoch() != 0 && len(recentOperators) != 0 {
		cfg.Log.Info("registry already initialized, skipping initial operators",
			log.Uint64("epoch", registry.CurrentEpoch()),
		)
		recentOperators = nil
	}
	transfers := make([]transfer, len(recentOperators))
	hashes := make([]Fingerprint, len(recentOperators))
	for i, params := range recentOperators {
		t, err := parseTransfer(params)
		if err != nil {
			return nil, fmt.Errorf("invalid initial operators %d: %w", i, err)
		}
		transfers[i] = t
		hashes[i] = t.hash
	}

	// The owner and every initial set are written in one batch.
	first := registry.CurrentEpoch() + 1
	if !hasOwner || len(transfers) != 0 {
		batch := db.NewBatch()
		if !hasOwner {
			if err := owner.stage(batch, cfg.Owner); err != nil {
				return nil, err
			}
		}
		if _, err := registry.commitBatch(batch, hashes...); err != nil {
			return nil, fmt.Errorf("failed to commit initial operators: %w", err)
		}
		if !hasOwner {
			owner.owner = cfg.Owner
		}
	}

	a := &AuthWeighted{
		log:       cfg.Log,
		registry:  registry,
		owner:     owner,
		events:    cfg.Events,
		recoverer: cfg.Recoverer,
		metrics:   newAuthMetrics(cfg.Registerer),
	}
	a.metrics.currentEpoch.Set(float64(registry.CurrentEpoch()))
	for i, t := range transfers {
		a.events.Emit(a.transferred(first+uint64(i), t))
	}
	return a, nil
}

// ValidateProof checks that proof is a quorum signature over messageHash.
//
// It returns false with no error when the proof's operator set is unknown or
// was superseded OldKeyRetention or more epochs ago. A proof from a retained
// but superseded operator set is fully verified and still reported as false:
// only the live operator set authorizes. Malformed proofs, unmatched signers
// and insufficient weight are faults.
func (a *AuthWeighted) ValidateProof(messageHash common.Hash, proof []byte) (bool, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	valid, result, err := a.validateProof(messageHash, proof)
	if err != nil {
		a.metrics.proofsValidated.WithLabelValues(resultFault).Inc()
		a.log.Warn("proof validation fault",
			log.Stringer("messageHash", messageHash),
			log.Err(err),
		)
		return false, err
	}
	a.metrics.proofsValidated.WithLabelValues(result).Inc()
	if !valid {
		a.log.Debug("proof rejected",
			log.Stringer("messageHash", messageHash),
			log.String("result", result),
		)
	}
	return valid, nil
}

func (a *AuthWeighted) validateProof(messageHash common.Hash, b []byte) (bool, string, error) {
	proof, err := ParseProof(b)
	if err != nil {
		return false, "", err
	}
	hash, err := proof.OperatorsHash()
	if err != nil {
		return false, "", err
	}
	operatorsEpoch, err := a.registry.EpochForHash(hash)
	if err != nil {
		return false, "", err
	}

	epoch := a.registry.CurrentEpoch()
	if operatorsEpoch == 0 {
		return false, resultUnknown, nil
	}
	if epoch-operatorsEpoch >= OldKeyRetention {
		return false, resultExpired, nil
	}

	weights, err := toUint32s(proof.Weights)
	if err != nil {
		return false, "", fmt.Errorf("%w: weights: %w", ErrMalformedProof, err)
	}
	threshold, err := toUint32(proof.Threshold)
	if err != nil {
		return false, "", fmt.Errorf("%w: threshold: %w", ErrMalformedProof, err)
	}
	if len(weights) != len(proof.Operators) {
		return false, "", fmt.Errorf("%w: %d weights for %d operators", ErrMalformedProof, len(weights), len(proof.Operators))
	}
	err = verifySignatures(
		a.recoverer,
		messageHash,
		proof.Operators,
		weights,
		threshold,
		proof.Signatures,
	)
	if err != nil {
		return false, "", err
	}

	if operatorsEpoch != epoch {
		return false, resultSuperseded, nil
	}
	return true, resultCurrent, nil
}

// TransferOperatorship commits a new operator set and returns its epoch.
// Only the owner may call it.
func (a *AuthWeighted) TransferOperatorship(caller common.Address, params []byte) (uint64, error) {
	a.transferLock.Lock()
	defer a.transferLock.Unlock()

	epoch, e, err := a.commitTransfer(caller, params)
	if err != nil {
		return 0, err
	}
	a.events.Emit(e)
	return epoch, nil
}

func (a *AuthWeighted) commitTransfer(caller common.Address, params []byte) (uint64, Event, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if err := a.owner.RequireOwner(caller); err != nil {
		a.log.Warn("unauthorized operatorship transfer",
			log.Stringer("caller", caller),
		)
		return 0, Event{}, err
	}
	return a.transferOperatorship(params)
}

// CurrentEpoch returns the epoch of the live operator set
func (a *AuthWeighted) CurrentEpoch() uint64 {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.registry.CurrentEpoch()
}

// EpochForHash returns the epoch an operator set fingerprint was committed
// at, or 0.
func (a *AuthWeighted) EpochForHash(hash Fingerprint) (uint64, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.registry.EpochForHash(hash)
}

// HashForEpoch returns the operator set fingerprint committed at epoch.
func (a *AuthWeighted) HashForEpoch(epoch uint64) (Fingerprint, bool, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.registry.HashForEpoch(epoch)
}

// Owner returns the address allowed to transfer operatorship
func (a *AuthWeighted) Owner() common.Address {
	a.lock.RLock()
	defer a.lock.RUnlock()

	return a.owner.Owner()
}

// TransferOwnership hands the owner capability to newOwner.
func (a *AuthWeighted) TransferOwnership(caller, newOwner common.Address) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if err := a.owner.TransferOwnership(caller, newOwner); err != nil {
		return err
	}
	a.log.Info("ownership transferred",
		log.Stringer("previousOwner", caller),
		log.Stringer("newOwner", newOwner),
	)
	return nil
}
