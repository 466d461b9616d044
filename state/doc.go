// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides read/write access to the state trie.
//
// All records live in one trie. A key starts with a column byte followed by the
// account id, so all records of one kind of one account share a prefix and can
// be iterated in key order.
package state
