// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"

	"github.com/trieview/trieview/muxdb"
)

// Iterator iterates staged writes merged over the committed trie.
type Iterator struct {
	prefix []byte

	trieIt   *muxdb.Iterator
	trieKey  []byte // pending committed pair, nil if not loaded
	trieVal  []byte
	trieDone bool

	staged []kv
	pos    int

	key, value []byte
	err        error
}

func (it *Iterator) loadTrie() {
	if it.trieDone || it.trieKey != nil {
		return
	}
	if it.trieIt.Next() && bytes.HasPrefix(it.trieIt.Key(), it.prefix) {
		it.trieKey = bytes.Clone(it.trieIt.Key())
		it.trieVal = bytes.Clone(it.trieIt.Value())
		return
	}
	it.trieDone = true
	if err := it.trieIt.Err(); err != nil {
		it.err = &Error{err}
	}
}

// Next moves to the next pair. It returns false when exhausted or on error.
func (it *Iterator) Next() bool {
	for {
		it.loadTrie()
		if it.err != nil {
			return false
		}
		hasStaged := it.pos < len(it.staged)
		if it.trieDone && !hasStaged {
			return false
		}

		if !it.trieDone {
			cmp := -1
			if hasStaged {
				cmp = bytes.Compare(it.trieKey, it.staged[it.pos].key)
			}
			if cmp < 0 {
				it.key, it.value = it.trieKey, it.trieVal
				it.trieKey, it.trieVal = nil, nil
				return true
			}
			if cmp == 0 {
				// shadowed by the staged write
				it.trieKey, it.trieVal = nil, nil
			}
		}

		s := it.staged[it.pos]
		it.pos++
		if s.value == nil {
			continue
		}
		it.key, it.value = s.key, s.value
		return true
	}
}

// Key returns the key of the current pair.
func (it *Iterator) Key() []byte { return it.key }

// Value returns the value of the current pair.
func (it *Iterator) Value() []byte { return it.value }

// Err returns the error stopped the iteration, if any.
func (it *Iterator) Err() error { return it.err }
