// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/trieview/trieview/primitives"
)

// GetAccount returns the account record, nil if the account does not exist.
func (u *TrieUpdate) GetAccount(id primitives.AccountID) (*Account, error) {
	data, err := u.Get(AccountKey(id))
	if err != nil || data == nil {
		return nil, err
	}
	acc, err := DecodeAccount(data)
	if err != nil {
		return nil, &Error{fmt.Errorf("decode account %v: %w", id, err)}
	}
	return acc, nil
}

// SetAccount stages the account record.
func (u *TrieUpdate) SetAccount(id primitives.AccountID, acc *Account) {
	u.Set(AccountKey(id), EncodeAccount(acc))
}

// RemoveAccount stages removal of the account record.
func (u *TrieUpdate) RemoveAccount(id primitives.AccountID) {
	u.Remove(AccountKey(id))
}

// GetCode returns the contract code of the account, nil if none is deployed.
// codeHash is the hash recorded in the account.
func (u *TrieUpdate) GetCode(id primitives.AccountID, codeHash primitives.CryptoHash) (*ContractCode, error) {
	code, err := u.Get(ContractCodeKey(id))
	if err != nil || code == nil {
		return nil, err
	}
	return &ContractCode{Code: code, Hash: codeHash}, nil
}

// SetCode stages the contract code of the account.
func (u *TrieUpdate) SetCode(id primitives.AccountID, code []byte) {
	u.Set(ContractCodeKey(id), code)
}

// GetAccessKeyRaw returns the encoded access key record, nil if absent.
func (u *TrieUpdate) GetAccessKeyRaw(id primitives.AccountID, pk primitives.PublicKey) ([]byte, error) {
	return u.Get(AccessKeyKey(id, pk))
}

// GetAccessKey returns the access key record, nil if absent.
func (u *TrieUpdate) GetAccessKey(id primitives.AccountID, pk primitives.PublicKey) (*AccessKey, error) {
	data, err := u.GetAccessKeyRaw(id, pk)
	if err != nil || data == nil {
		return nil, err
	}
	key, err := DecodeAccessKey(data)
	if err != nil {
		return nil, &Error{fmt.Errorf("decode access key %v of %v: %w", pk, id, err)}
	}
	return key, nil
}

// SetAccessKey stages the access key record.
func (u *TrieUpdate) SetAccessKey(id primitives.AccountID, pk primitives.PublicKey, key *AccessKey) {
	u.Set(AccessKeyKey(id, pk), EncodeAccessKey(key))
}

// RemoveAccessKey stages removal of the access key record.
func (u *TrieUpdate) RemoveAccessKey(id primitives.AccountID, pk primitives.PublicKey) {
	u.Remove(AccessKeyKey(id, pk))
}

// GetData returns the contract data value, nil if absent.
func (u *TrieUpdate) GetData(id primitives.AccountID, key []byte) ([]byte, error) {
	return u.Get(ContractDataKey(id, key))
}

// SetData stages the contract data value.
func (u *TrieUpdate) SetData(id primitives.AccountID, key, value []byte) {
	u.Set(ContractDataKey(id, key), value)
}

// RemoveData stages removal of the contract data value.
func (u *TrieUpdate) RemoveData(id primitives.AccountID, key []byte) {
	u.Remove(ContractDataKey(id, key))
}
