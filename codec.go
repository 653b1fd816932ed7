// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

// Schema is an ordered list of ABI types a byte string decodes to.
type Schema struct {
	name string
	args abi.Arguments
}

var (
	// ParamsSchema describes an operator set: (address[], uint256[], uint256).
	ParamsSchema = mustSchema("operator params", "address[]", "uint256[]", "uint256")

	// ProofSchema describes a proof: (address[], uint256[], uint256, bytes[]).
	ProofSchema = mustSchema("proof", "address[]", "uint256[]", "uint256", "bytes[]")

	errUint32Overflow = errors.New("value does not fit in uint32")
)

func mustSchema(name string, types ...string) Schema {
	args := make(abi.Arguments, len(types))
	for i, t := range types {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			panic(fmt.Sprintf("invalid abi type %q: %v", t, err))
		}
		args[i] = abi.Argument{Type: typ}
	}
	return Schema{name: name, args: args}
}

// Len returns the number of fields in the schema.
func (s Schema) Len() int {
	return len(s.args)
}

// Pack encodes values in the schema's canonical ABI encoding.
func (s Schema) Pack(values ...interface{}) ([]byte, error) {
	b, err := s.args.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", s.name, err)
	}
	return b, nil
}

// Unpack decodes b into exactly s.Len() values.
func (s Schema) Unpack(b []byte) ([]interface{}, error) {
	values, err := s.args.Unpack(b)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", s.name, err)
	}
	if len(values) != len(s.args) {
		return nil, fmt.Errorf("failed to unpack %s: got %d fields, expected %d", s.name, len(values), len(s.args))
	}
	return values, nil
}

// operatorParams is an operator set as it appears on the wire, with weights
// and threshold still in their 256-bit form.
type operatorParams struct {
	operators []common.Address
	weights   []*big.Int
	threshold *big.Int
}

// encode returns the canonical encoding of the operator triple.
func (p *operatorParams) encode() ([]byte, error) {
	return ParamsSchema.Pack(p.operators, p.weights, p.threshold)
}

// decodeParams decodes an operator set encoding. Failures wrap ErrMalformedParams.
func decodeParams(b []byte) (*operatorParams, error) {
	values, err := ParamsSchema.Unpack(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedParams, err)
	}
	p, err := operatorFields(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedParams, err)
	}
	return p, nil
}

func operatorFields(values []interface{}) (*operatorParams, error) {
	operators, ok := values[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("operators field has type %T", values[0])
	}
	weights, ok := values[1].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("weights field has type %T", values[1])
	}
	threshold, ok := values[2].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("threshold field has type %T", values[2])
	}
	return &operatorParams{
		operators: operators,
		weights:   weights,
		threshold: threshold,
	}, nil
}

// toUint32 narrows an ABI uint256 value.
func toUint32(v *big.Int) (uint32, error) {
	if v == nil {
		return 0, errUint32Overflow
	}
	u, overflow := uint256.FromBig(v)
	if overflow || !u.IsUint64() || u.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s", errUint32Overflow, v)
	}
	return uint32(u.Uint64()), nil
}

func toUint32s(vs []*big.Int) ([]uint32, error) {
	out := make([]uint32, len(vs))
	for i, v := range vs {
		u, err := toUint32(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = u
	}
	return out, nil
}

func bigUint32s(vs []uint32) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = new(big.Int).SetUint64(uint64(v))
	}
	return out
}
