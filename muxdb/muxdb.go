// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package muxdb implements the storage layer of the state.
// It manages instances of merkle-patricia-trie over a key-value backend.
package muxdb

import (
	"sync"

	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/ethereum/go-ethereum/triedb/hashdb"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/trieview/trieview/log"
)

var logger = log.WithContext("pkg", "muxdb")

const dbNamespace = "trieview/db/"

// Options optional parameters for MuxDB.
type Options struct {
	// TrieCleanCacheMB is the size of the cache for clean trie nodes.
	TrieCleanCacheMB int

	// OpenFilesCacheCapacity is the capacity of open files caching for underlying database.
	OpenFilesCacheCapacity int
	// ReadCacheMB is the size of read cache for underlying database.
	ReadCacheMB int
	// WriteBufferMB is the size of write buffer for underlying database.
	WriteBufferMB int
}

// MuxDB is the database storing state tries.
type MuxDB struct {
	disk      ethdb.Database
	trieDB    *triedb.Database
	closeOnce sync.Once
}

// Open opens or creates DB at the given path.
func Open(path string, options *Options) (*MuxDB, error) {
	if options == nil {
		options = &Options{}
	}
	kv, err := leveldb.NewCustom(path, dbNamespace, func(ldbOpts *opt.Options) {
		if options.OpenFilesCacheCapacity > 0 {
			ldbOpts.OpenFilesCacheCapacity = options.OpenFilesCacheCapacity
		}
		if options.ReadCacheMB > 0 {
			ldbOpts.BlockCacheCapacity = options.ReadCacheMB * opt.MiB
		}
		if options.WriteBufferMB > 0 {
			ldbOpts.WriteBuffer = options.WriteBufferMB * opt.MiB
		}
		ldbOpts.Filter = filter.NewBloomFilter(10)
		ldbOpts.BlockSize = 1024 * 32 // balance performance of point reads and compression ratio.
		ldbOpts.CompactionTableSize = 4 * opt.MiB
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb [%v]", path)
	}
	disk := rawdb.NewDatabase(kv)

	cfg := &triedb.Config{HashDB: &hashdb.Config{
		CleanCacheSize: options.TrieCleanCacheMB * 1024 * 1024,
	}}
	logger.Debug("database opened", "path", path, "trie-cache-mb", options.TrieCleanCacheMB)
	return &MuxDB{
		disk:   disk,
		trieDB: triedb.NewDatabase(disk, cfg),
	}, nil
}

// NewMem creates a memory-backed DB.
func NewMem() *MuxDB {
	disk := rawdb.NewMemoryDatabase()
	return &MuxDB{
		disk:   disk,
		trieDB: triedb.NewDatabase(disk, triedb.HashDefaults),
	}
}

// Close closes the DB.
func (db *MuxDB) Close() (err error) {
	db.closeOnce.Do(func() {
		if e := db.trieDB.Close(); e != nil {
			err = errors.Wrap(e, "close trie database")
		}
		if e := db.disk.Close(); e != nil && err == nil {
			err = errors.Wrap(e, "close disk database")
		}
	})
	return
}
