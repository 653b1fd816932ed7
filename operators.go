// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/luxfi/geth/common"
)

// OperatorSet is a weighted set of operators. Operators are strictly
// ascending by address and Weights is index-aligned with Operators.
type OperatorSet struct {
	Operators []common.Address
	Weights   []uint32
	Threshold uint32
}

// NewOperatorSet creates a verified operator set
func NewOperatorSet(operators []common.Address, weights []uint32, threshold uint32) (*OperatorSet, error) {
	s := &OperatorSet{
		Operators: operators,
		Weights:   weights,
		Threshold: threshold,
	}
	if err := s.Verify(); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseOperatorSet decodes operator params and verifies them the way a
// rotation would, short of the duplicate check.
func ParseOperatorSet(b []byte) (*OperatorSet, error) {
	p, err := decodeParams(b)
	if err != nil {
		return nil, err
	}
	return newOperatorSet(p)
}

// Verify checks the operator set invariants in the order rotation reports them:
// operators, then weights, then threshold.
func (s *OperatorSet) Verify() error {
	if err := verifyOperators(s.Operators); err != nil {
		return err
	}
	if len(s.Weights) != len(s.Operators) {
		return fmt.Errorf("%w: %d weights for %d operators", ErrInvalidWeights, len(s.Weights), len(s.Operators))
	}
	return verifyThreshold(s.TotalWeight(), s.Threshold)
}

// TotalWeight returns the sum of all operator weights
func (s *OperatorSet) TotalWeight() uint64 {
	var total uint64
	for _, w := range s.Weights {
		total += uint64(w)
	}
	return total
}

// Bytes returns the canonical encoding of the operator set
func (s *OperatorSet) Bytes() ([]byte, error) {
	return s.params().encode()
}

// Hash returns the fingerprint the registry knows this operator set by.
func (s *OperatorSet) Hash() (Fingerprint, error) {
	b, err := s.Bytes()
	if err != nil {
		return Fingerprint{}, err
	}
	return HashOperators(b), nil
}

// Index returns the position of operator in the set, or -1.
func (s *OperatorSet) Index(operator common.Address) int {
	lo, hi := 0, len(s.Operators)
	for lo < hi {
		mid := (lo + hi) / 2
		switch bytes.Compare(s.Operators[mid][:], operator[:]) {
		case 0:
			return mid
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return -1
}

func (s *OperatorSet) params() *operatorParams {
	return &operatorParams{
		operators: s.Operators,
		weights:   bigUint32s(s.Weights),
		threshold: new(big.Int).SetUint64(uint64(s.Threshold)),
	}
}

// FormatOperators renders operators as a JSON-style list of quoted hex addresses.
func FormatOperators(operators []common.Address) string {
	parts := make([]string, len(operators))
	for i, op := range operators {
		parts[i] = strconv.Quote(op.Hex())
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// FormatWeights renders weights as a JSON-style list of integers.
func FormatWeights(weights []uint32) string {
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = strconv.FormatUint(uint64(w), 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// newOperatorSet narrows and verifies decoded params. A weight that does not
// fit in 32 bits is an invalid weight; likewise for the threshold.
func newOperatorSet(p *operatorParams) (*OperatorSet, error) {
	if err := verifyOperators(p.operators); err != nil {
		return nil, err
	}
	if len(p.weights) != len(p.operators) {
		return nil, fmt.Errorf("%w: %d weights for %d operators", ErrInvalidWeights, len(p.weights), len(p.operators))
	}
	weights, err := toUint32s(p.weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWeights, err)
	}
	threshold, err := toUint32(p.threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidThreshold, err)
	}
	s := &OperatorSet{
		Operators: p.operators,
		Weights:   weights,
		Threshold: threshold,
	}
	if err := verifyThreshold(s.TotalWeight(), threshold); err != nil {
		return nil, err
	}
	return s, nil
}

func verifyOperators(operators []common.Address) error {
	if len(operators) == 0 {
		return fmt.Errorf("%w: empty operator list", ErrInvalidOperators)
	}
	for i := 0; i < len(operators)-1; i++ {
		if bytes.Compare(operators[i][:], operators[i+1][:]) >= 0 {
			return fmt.Errorf("%w: operator %d (%s) is not below operator %d (%s)",
				ErrInvalidOperators, i, operators[i], i+1, operators[i+1])
		}
	}
	if operators[0] == (common.Address{}) {
		return fmt.Errorf("%w: zero address", ErrInvalidOperators)
	}
	return nil
}

func verifyThreshold(totalWeight uint64, threshold uint32) error {
	if threshold == 0 {
		return fmt.Errorf("%w: threshold is zero", ErrInvalidThreshold)
	}
	if totalWeight < uint64(threshold) {
		return fmt.Errorf("%w: threshold %d exceeds total weight %d", ErrInvalidThreshold, threshold, totalWeight)
	}
	return nil
}
