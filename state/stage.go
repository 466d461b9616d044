// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/trieview/trieview/muxdb"
	"github.com/trieview/trieview/primitives"
)

// Stage abstracts staged changes applied on the state trie.
type Stage struct {
	trie *muxdb.Trie
}

// Hash computes the root of the state trie with the changes applied.
func (s *Stage) Hash() primitives.StateRoot {
	return s.trie.Hash()
}

// Commit persists the changes and returns the new root.
func (s *Stage) Commit(height primitives.BlockHeight) (primitives.StateRoot, error) {
	root, err := s.trie.Commit(height)
	if err != nil {
		return primitives.StateRoot{}, &Error{err}
	}
	return root, nil
}
