// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"github.com/luxfi/log"
)

// transfer is a validated operator set waiting to be committed.
type transfer struct {
	operatorSet *OperatorSet
	hash        Fingerprint
}

// parseTransfer validates params. The fingerprint is taken over the bytes as
// submitted. Proofs re-encode the triple, so only canonical encodings are
// ever provable.
func parseTransfer(params []byte) (transfer, error) {
	decoded, err := decodeParams(params)
	if err != nil {
		return transfer{}, err
	}
	operatorSet, err := newOperatorSet(decoded)
	if err != nil {
		return transfer{}, err
	}
	return transfer{
		operatorSet: operatorSet,
		hash:        HashOperators(params),
	}, nil
}

// transferOperatorship validates params and commits them as the next epoch.
// Nothing is written unless every check passes. The returned event is for
// the caller to emit once the lock is released.
func (a *AuthWeighted) transferOperatorship(params []byte) (uint64, Event, error) {
	t, err := parseTransfer(params)
	if err != nil {
		return 0, Event{}, err
	}
	epoch, err := a.registry.commit(t.hash)
	if err != nil {
		return 0, Event{}, err
	}
	return epoch, a.transferred(epoch, t), nil
}

// transferred records a committed transfer.
func (a *AuthWeighted) transferred(epoch uint64, t transfer) Event {
	a.metrics.rotations.Inc()
	a.metrics.currentEpoch.Set(float64(epoch))
	a.log.Info("operatorship transferred",
		log.Uint64("epoch", epoch),
		log.Stringer("operatorsHash", t.hash),
		log.Int("operators", len(t.operatorSet.Operators)),
		log.Uint64("threshold", uint64(t.operatorSet.Threshold)),
	)
	return newOperatorshipTransferred(t.operatorSet)
}
