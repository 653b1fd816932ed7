// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package database opens the key-value stores the authorizer persists to.
package database

import (
	"fmt"

	"github.com/luxfi/geth/ethdb"
	"github.com/luxfi/geth/ethdb/leveldb"
	"github.com/luxfi/geth/ethdb/memorydb"
)

const (
	// DefaultCacheMB is the leveldb block cache size.
	DefaultCacheMB = 16
	// DefaultHandles is the leveldb open file handle limit.
	DefaultHandles = 64

	namespace = "auth/db/"
)

// Database is a closable key-value store.
type Database interface {
	ethdb.KeyValueReader
	ethdb.KeyValueWriter
	ethdb.Batcher
	Close() error
}

var (
	_ Database = (*memorydb.Database)(nil)
	_ Database = (*leveldb.Database)(nil)
)

// Open returns an in-memory store when dir is empty, otherwise a leveldb
// store rooted at dir.
func Open(dir string) (Database, error) {
	if dir == "" {
		return memorydb.New(), nil
	}
	db, err := leveldb.New(dir, DefaultCacheMB, DefaultHandles, namespace, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", dir, err)
	}
	return db, nil
}
