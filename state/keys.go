// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/trieview/trieview/primitives"
)

// Column prefixes of trie keys.
const (
	ColAccount      byte = 0
	ColContractCode byte = 1
	ColAccessKey    byte = 2
	ColContractData byte = 9
)

const (
	// AccessKeySeparator separates the account id from the public key in access key keys.
	AccessKeySeparator byte = ColAccessKey
	// ContractDataSeparator separates the account id from the data key in contract data keys.
	ContractDataSeparator byte = ','
)

func withAccount(col byte, id primitives.AccountID, extra int) []byte {
	key := make([]byte, 0, 1+len(id)+extra)
	key = append(key, col)
	return append(key, id...)
}

// AccountKey returns the trie key of the account record.
func AccountKey(id primitives.AccountID) []byte {
	return withAccount(ColAccount, id, 0)
}

// ContractCodeKey returns the trie key of the account's contract code.
func ContractCodeKey(id primitives.AccountID) []byte {
	return withAccount(ColContractCode, id, 0)
}

// AccessKeyPrefix returns the common prefix of all access keys of the account.
func AccessKeyPrefix(id primitives.AccountID) []byte {
	return append(withAccount(ColAccessKey, id, 1), AccessKeySeparator)
}

// AccessKeyKey returns the trie key of one access key.
func AccessKeyKey(id primitives.AccountID, pk primitives.PublicKey) []byte {
	return append(AccessKeyPrefix(id), pk.Bytes()...)
}

// ParseAccessKeyPublicKey extracts the public key from the trie key of an access key of id.
func ParseAccessKeyPublicKey(key []byte, id primitives.AccountID) (primitives.PublicKey, error) {
	prefix := AccessKeyPrefix(id)
	if !bytes.HasPrefix(key, prefix) {
		return primitives.PublicKey{}, fmt.Errorf("key %x is not an access key of %v", key, id)
	}
	pk, err := primitives.DecodePublicKey(key[len(prefix):])
	if err != nil {
		return primitives.PublicKey{}, fmt.Errorf("access key %x of %v: %w", key, id, err)
	}
	return pk, nil
}

// ContractDataPrefix returns the common prefix of all contract data of the account.
func ContractDataPrefix(id primitives.AccountID) []byte {
	return append(withAccount(ColContractData, id, 1), ContractDataSeparator)
}

// ContractDataKey returns the trie key of one contract data entry.
func ContractDataKey(id primitives.AccountID, key []byte) []byte {
	return append(ContractDataPrefix(id), key...)
}
