// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/trieview/trieview/muxdb"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// TrieUpdate is a read/write handle over the state at one root.
// Writes are staged in revisioned layers over the committed trie and become
// visible to reads on the same handle only.
//
// TrieUpdate is not safe for concurrent use.
type TrieUpdate struct {
	db   *muxdb.MuxDB
	trie *muxdb.Trie
	sm   *stackedmap.StackedMap[string, []byte] // nil value marks removal
}

// New opens the state at root. A zero root denotes the empty state.
func New(db *muxdb.MuxDB, root primitives.StateRoot) (*TrieUpdate, error) {
	trie, err := db.NewTrie(root)
	if err != nil {
		return nil, &Error{err}
	}
	return newTrieUpdate(db, trie), nil
}

func newTrieUpdate(db *muxdb.MuxDB, trie *muxdb.Trie) *TrieUpdate {
	u := &TrieUpdate{db: db, trie: trie}
	u.sm = stackedmap.New(func(key string) ([]byte, bool, error) {
		v, err := trie.Get([]byte(key))
		if err != nil {
			return nil, false, err
		}
		return v, v != nil, nil
	})
	return u
}

// Root returns the root of the committed trie the handle reads from.
func (u *TrieUpdate) Root() primitives.StateRoot {
	return u.trie.Root()
}

// Get returns the value of key, nil if absent.
func (u *TrieUpdate) Get(key []byte) ([]byte, error) {
	v, _, err := u.sm.Get(string(key))
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// Set stages a write. An empty value removes the key.
func (u *TrieUpdate) Set(key, value []byte) {
	if len(value) == 0 {
		value = nil
	}
	u.sm.Put(string(key), value)
}

// Remove stages a removal.
func (u *TrieUpdate) Remove(key []byte) {
	u.sm.Put(string(key), nil)
}

// NewCheckpoint makes a checkpoint of staged writes.
// It returns revision of the checkpoint.
func (u *TrieUpdate) NewCheckpoint() int {
	return u.sm.Push()
}

// RevertTo discards staged writes made after the checkpoint of revision.
func (u *TrieUpdate) RevertTo(revision int) {
	u.sm.PopTo(revision)
	if u.sm.Depth() == 0 {
		u.sm.Push()
	}
}

// TrieIterator iterates the committed trie from the first key not less than seek.
// Staged writes are not visible to it.
func (u *TrieUpdate) TrieIterator(seek []byte) (*muxdb.Iterator, error) {
	it, err := u.trie.Iterate(seek)
	if err != nil {
		return nil, &Error{err}
	}
	return it, nil
}

type kv struct {
	key   []byte
	value []byte
}

// Iter iterates all keys with the given prefix in key order, merging staged
// writes over the committed trie. Removed keys are skipped.
func (u *TrieUpdate) Iter(prefix []byte) (*Iterator, error) {
	trieIt, err := u.TrieIterator(prefix)
	if err != nil {
		return nil, err
	}

	var staged []kv
	u.sm.Range(func(key string, value []byte) bool {
		if k := []byte(key); bytes.HasPrefix(k, prefix) {
			staged = append(staged, kv{k, value})
		}
		return true
	})
	sort.Slice(staged, func(i, j int) bool {
		return bytes.Compare(staged[i].key, staged[j].key) < 0
	})
	return &Iterator{prefix: prefix, trieIt: trieIt, staged: staged}, nil
}

// changes returns the latest staged value of every touched key, sorted by key.
func (u *TrieUpdate) changes() []kv {
	var out []kv
	u.sm.Range(func(key string, value []byte) bool {
		out = append(out, kv{[]byte(key), value})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].key, out[j].key) < 0
	})
	return out
}

// Stage applies staged writes on a copy of the trie, to compute the new root
// or to commit. The handle itself is untouched.
func (u *TrieUpdate) Stage() (*Stage, error) {
	cpy := u.trie.Copy()
	for _, c := range u.changes() {
		if err := cpy.Update(c.key, c.value); err != nil {
			return nil, &Error{err}
		}
	}
	return &Stage{trie: cpy}, nil
}

// Commit persists staged writes and moves the handle to the new root.
func (u *TrieUpdate) Commit(height primitives.BlockHeight) (primitives.StateRoot, error) {
	stage, err := u.Stage()
	if err != nil {
		return primitives.StateRoot{}, err
	}
	root, err := stage.Commit(height)
	if err != nil {
		return primitives.StateRoot{}, err
	}
	*u = *newTrieUpdate(u.db, stage.trie)
	return root, nil
}
