// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/trieview/trieview/muxdb"
	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/state"
)

// Builder helper to build genesis state.
type Builder struct {
	height       primitives.BlockHeight
	storageUsage params.StorageUsageConfig

	stateProcs []func(su *state.TrieUpdate) error
}

// NewBuilder creates a builder accounting storage with the default config.
func NewBuilder() *Builder {
	return &Builder{storageUsage: params.Default().TransactionCosts.StorageUsageConfig}
}

// Height set the height the state is committed at.
func (b *Builder) Height(h primitives.BlockHeight) *Builder {
	b.height = h
	return b
}

// StorageUsage set the config storage usage is computed with.
func (b *Builder) StorageUsage(cfg params.StorageUsageConfig) *Builder {
	b.storageUsage = cfg
	return b
}

// State add a state process.
func (b *Builder) State(proc func(su *state.TrieUpdate) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Account add an account record. Its storage usage is recomputed on build.
func (b *Builder) Account(id primitives.AccountID, acc state.Account) *Builder {
	return b.State(func(su *state.TrieUpdate) error {
		su.SetAccount(id, &acc)
		return nil
	})
}

// Code deploy a contract and point the account's code hash at it.
func (b *Builder) Code(id primitives.AccountID, code []byte) *Builder {
	return b.State(func(su *state.TrieUpdate) error {
		acc, err := su.GetAccount(id)
		if err != nil {
			return err
		}
		if acc == nil {
			return errors.Errorf("deploy code to missing account %v", id)
		}
		contract := state.NewContractCode(code)
		su.SetCode(id, contract.Code)
		acc.CodeHash = contract.Hash
		su.SetAccount(id, acc)
		return nil
	})
}

// AccessKey add an access key.
func (b *Builder) AccessKey(id primitives.AccountID, pk primitives.PublicKey, key state.AccessKey) *Builder {
	return b.State(func(su *state.TrieUpdate) error {
		su.SetAccessKey(id, pk, &key)
		return nil
	})
}

// Data add a contract storage entry.
func (b *Builder) Data(id primitives.AccountID, key, value []byte) *Builder {
	key, value = bytes.Clone(key), bytes.Clone(value)
	return b.State(func(su *state.TrieUpdate) error {
		su.SetData(id, key, value)
		return nil
	})
}

// Build applies the state processes to an empty state, fixes storage usage of
// every account and commits. It returns the state root.
func (b *Builder) Build(db *muxdb.MuxDB) (primitives.StateRoot, error) {
	su, err := state.New(db, primitives.StateRoot{})
	if err != nil {
		return primitives.StateRoot{}, err
	}

	for _, proc := range b.stateProcs {
		if err := proc(su); err != nil {
			return primitives.StateRoot{}, errors.Wrap(err, "state process")
		}
	}

	if err := b.fixStorageUsage(su); err != nil {
		return primitives.StateRoot{}, errors.Wrap(err, "storage usage")
	}

	root, err := su.Commit(b.height)
	if err != nil {
		return primitives.StateRoot{}, errors.Wrap(err, "commit state")
	}
	return root, nil
}

func (b *Builder) fixStorageUsage(su *state.TrieUpdate) error {
	it, err := su.Iter([]byte{state.ColAccount})
	if err != nil {
		return err
	}
	var ids []primitives.AccountID
	for it.Next() {
		ids = append(ids, primitives.AccountID(it.Key()[1:]))
	}
	if err := it.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		usage, err := b.computeStorageUsage(su, id)
		if err != nil {
			return errors.Wrapf(err, "account %v", id)
		}
		acc, err := su.GetAccount(id)
		if err != nil {
			return err
		}
		acc.StorageUsage = usage
		su.SetAccount(id, acc)
	}
	return nil
}

// computeStorageUsage sums the account record, its code and every access key and
// data record of the account.
func (b *Builder) computeStorageUsage(su *state.TrieUpdate, id primitives.AccountID) (primitives.StorageUsage, error) {
	usage := b.storageUsage.NumBytesAccount

	code, err := su.Get(state.ContractCodeKey(id))
	if err != nil {
		return 0, err
	}
	usage += uint64(len(code))

	for _, prefix := range [][]byte{state.AccessKeyPrefix(id), state.ContractDataPrefix(id)} {
		it, err := su.Iter(prefix)
		if err != nil {
			return 0, err
		}
		for it.Next() {
			usage += uint64(len(it.Key())-len(prefix)) + uint64(len(it.Value())) + b.storageUsage.NumExtraBytesRecord
		}
		if err := it.Err(); err != nil {
			return 0, err
		}
	}
	return usage, nil
}
