// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethtrie "github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/trie/trienode"
	"github.com/pkg/errors"

	"github.com/trieview/trieview/primitives"
)

// Trie is the managed merkle-patricia-trie. Keys are stored as given, so
// iteration follows the raw key order.
//
// Trie is safe for concurrent use. An iterator sees the trie as of its creation
// and must not outlive the next Commit.
type Trie struct {
	db *MuxDB

	mu   sync.Mutex
	trie *gethtrie.Trie
	root common.Hash // last committed
}

// NewTrie opens the trie at root. A zero root denotes the empty trie.
func (db *MuxDB) NewTrie(root primitives.StateRoot) (*Trie, error) {
	rootHash := types.EmptyRootHash
	if !root.IsZero() {
		rootHash = common.Hash(root)
	}
	underlying, err := gethtrie.New(gethtrie.TrieID(rootHash), db.trieDB)
	if err != nil {
		return nil, &MissingRootError{Root: root, err: err}
	}
	return &Trie{
		db:   db,
		trie: underlying,
		root: rootHash,
	}, nil
}

// MissingRootError is returned when the requested root is not in the database.
type MissingRootError struct {
	Root primitives.StateRoot
	err  error
}

func (e *MissingRootError) Error() string {
	return "missing trie root " + e.Root.String() + ": " + e.err.Error()
}

func (e *MissingRootError) Unwrap() error { return e.err }

// Copy returns an independent copy of the trie, including uncommitted changes.
func (t *Trie) Copy() *Trie {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &Trie{
		db:   t.db,
		trie: t.trie.Copy(),
		root: t.root,
	}
}

// Get returns the value of key, nil if not found.
func (t *Trie) Get(key []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trie.Get(key)
}

// Update sets the value of key. An empty value deletes the key.
func (t *Trie) Update(key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(value) == 0 {
		return t.trie.Delete(key)
	}
	return t.trie.Update(key, value)
}

// Delete removes key.
func (t *Trie) Delete(key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trie.Delete(key)
}

// Hash returns the root hash including uncommitted changes.
func (t *Trie) Hash() primitives.StateRoot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return primitives.StateRoot(t.trie.Hash())
}

// Root returns the last committed root.
func (t *Trie) Root() primitives.StateRoot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return primitives.StateRoot(t.root)
}

// Commit writes all changes into the database and returns the new root.
// height is the block height the changes belong to.
func (t *Trie) Commit(height primitives.BlockHeight) (primitives.StateRoot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	newRoot, nodes := t.trie.Commit(false)
	if nodes != nil && newRoot != types.EmptyRootHash {
		merged := trienode.NewMergedNodeSet()
		if err := merged.Merge(nodes); err != nil {
			return primitives.StateRoot{}, errors.Wrap(err, "merge nodes")
		}
		if err := t.db.trieDB.Update(newRoot, t.root, height, merged, nil); err != nil {
			return primitives.StateRoot{}, errors.Wrap(err, "update trie database")
		}
		if err := t.db.trieDB.Commit(newRoot, false); err != nil {
			return primitives.StateRoot{}, errors.Wrap(err, "commit trie database")
		}
		updated, deleted := nodes.Size()
		metricTrieCommittedNodes().AddWithLabel(int64(updated), map[string]string{"event": "updated"})
		metricTrieCommittedNodes().AddWithLabel(int64(deleted), map[string]string{"event": "deleted"})
	}
	// a committed trie is unusable, reopen it
	underlying, err := gethtrie.New(gethtrie.TrieID(newRoot), t.db.trieDB)
	if err != nil {
		return primitives.StateRoot{}, errors.Wrap(err, "reopen trie")
	}
	t.trie = underlying
	t.root = newRoot
	metricTrieCommitDuration().Observe(time.Since(start).Milliseconds())
	return primitives.StateRoot(newRoot), nil
}

// Iterator iterates the key/value pairs of a trie in key order.
type Iterator struct {
	it *gethtrie.Iterator
}

// Iterate returns an iterator starting at the first key not less than start.
func (t *Trie) Iterate(start []byte) (*Iterator, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	nodeIt, err := t.trie.Copy().NodeIterator(start)
	if err != nil {
		return nil, err
	}
	return &Iterator{it: gethtrie.NewIterator(nodeIt)}, nil
}

// Next moves to the next pair. It returns false when exhausted or on error.
func (i *Iterator) Next() bool {
	return i.it.Next()
}

// Key returns the key of the current pair.
func (i *Iterator) Key() []byte {
	return i.it.Key
}

// Value returns the value of the current pair.
func (i *Iterator) Value() []byte {
	return i.it.Value
}

// Err returns the error stopped the iteration, if any.
func (i *Iterator) Err() error {
	return i.it.Err
}
