// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/ethdb"
)

var ownerKey = []byte("owner")

// Owner is the capability gating operatorship transfers.
type Owner struct {
	db    Database
	owner common.Address
}

// loadOwner reads the owner recorded in db. ok is false if none is.
func loadOwner(db Database) (o *Owner, ok bool, err error) {
	o = &Owner{db: db}
	has, err := db.Has(ownerKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read owner: %w", err)
	}
	if !has {
		return o, false, nil
	}
	b, err := db.Get(ownerKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read owner: %w", err)
	}
	if len(b) != common.AddressLength {
		return nil, false, fmt.Errorf("failed to read owner: stored value has %d bytes", len(b))
	}
	o.owner = common.BytesToAddress(b)
	return o, true, nil
}

// Owner returns the current owner
func (o *Owner) Owner() common.Address {
	return o.owner
}

// RequireOwner fails with ErrNotOwner unless caller is the owner.
func (o *Owner) RequireOwner(caller common.Address) error {
	if caller != o.owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, caller)
	}
	return nil
}

// TransferOwnership hands the capability to newOwner. Only the owner may call it.
func (o *Owner) TransferOwnership(caller, newOwner common.Address) error {
	if err := o.RequireOwner(caller); err != nil {
		return err
	}
	return o.set(newOwner)
}

func (o *Owner) set(owner common.Address) error {
	if err := o.stage(o.db, owner); err != nil {
		return err
	}
	o.owner = owner
	return nil
}

// stage writes owner to w without updating o.
func (*Owner) stage(w ethdb.KeyValueWriter, owner common.Address) error {
	if owner == (common.Address{}) {
		return ErrZeroOwner
	}
	if err := w.Put(ownerKey, owner.Bytes()); err != nil {
		return fmt.Errorf("failed to write owner: %w", err)
	}
	return nil
}
