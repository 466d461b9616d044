// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/trieview/trieview/primitives"
)

// Account is the account record. RLP encoded records are stored in the state trie.
type Account struct {
	Amount       primitives.Balance
	Locked       primitives.Balance
	CodeHash     primitives.CryptoHash // zero if no contract is deployed
	StorageUsage primitives.StorageUsage
}

// HasCode returns whether a contract is deployed.
func (a *Account) HasCode() bool {
	return !a.CodeHash.IsZero()
}

// ContractCode is deployed contract code with its hash.
type ContractCode struct {
	Code []byte
	Hash primitives.CryptoHash
}

// NewContractCode creates contract code, computing its hash.
func NewContractCode(code []byte) *ContractCode {
	return &ContractCode{Code: code, Hash: primitives.Blake2b(code)}
}

// FunctionCallPermission restricts a key to calling methods of one receiver.
type FunctionCallPermission struct {
	// Allowance is the balance the key may spend on gas. Nil means unlimited.
	Allowance   *primitives.Balance
	ReceiverID  primitives.AccountID
	MethodNames []string // empty means any method
}

// AccessKeyPermission is either full access or a function call permission.
type AccessKeyPermission struct {
	FunctionCall *FunctionCallPermission // nil for full access
}

// FullAccess returns the full access permission.
func FullAccess() AccessKeyPermission {
	return AccessKeyPermission{}
}

// IsFullAccess returns whether the permission grants full access.
func (p AccessKeyPermission) IsFullAccess() bool {
	return p.FunctionCall == nil
}

const (
	permissionFullAccess   = 0
	permissionFunctionCall = 1
)

type permissionRLP struct {
	Kind         uint8
	HasAllowance bool
	Allowance    primitives.Balance
	ReceiverID   string
	MethodNames  []string
}

// EncodeRLP implements rlp.Encoder.
func (p AccessKeyPermission) EncodeRLP(w io.Writer) error {
	if p.FunctionCall == nil {
		return rlp.Encode(w, &permissionRLP{Kind: permissionFullAccess})
	}
	enc := permissionRLP{
		Kind:        permissionFunctionCall,
		ReceiverID:  string(p.FunctionCall.ReceiverID),
		MethodNames: p.FunctionCall.MethodNames,
	}
	if p.FunctionCall.Allowance != nil {
		enc.HasAllowance = true
		enc.Allowance = *p.FunctionCall.Allowance
	}
	return rlp.Encode(w, &enc)
}

// DecodeRLP implements rlp.Decoder.
func (p *AccessKeyPermission) DecodeRLP(s *rlp.Stream) error {
	var dec permissionRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	switch dec.Kind {
	case permissionFullAccess:
		*p = FullAccess()
	case permissionFunctionCall:
		fc := &FunctionCallPermission{
			ReceiverID:  primitives.AccountID(dec.ReceiverID),
			MethodNames: dec.MethodNames,
		}
		if dec.HasAllowance {
			allowance := dec.Allowance
			fc.Allowance = &allowance
		}
		*p = AccessKeyPermission{FunctionCall: fc}
	default:
		return fmt.Errorf("unknown access key permission %d", dec.Kind)
	}
	return nil
}

// AccessKey is the access key record of one public key of an account.
type AccessKey struct {
	Nonce      primitives.Nonce
	Permission AccessKeyPermission
}

// FullAccessKey returns a full access key with zero nonce.
func FullAccessKey() *AccessKey {
	return &AccessKey{Permission: FullAccess()}
}

func decodeRecord[T any](data []byte) (*T, error) {
	var v T
	if err := rlp.DecodeBytes(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// EncodeAccount returns the RLP encoding of the account.
func EncodeAccount(a *Account) []byte {
	data, err := rlp.EncodeToBytes(a)
	if err != nil {
		panic(err) // records hold no unencodable values
	}
	return data
}

// EncodeAccessKey returns the RLP encoding of the access key.
func EncodeAccessKey(k *AccessKey) []byte {
	data, err := rlp.EncodeToBytes(k)
	if err != nil {
		panic(err)
	}
	return data
}

// DecodeAccount decodes an account record.
func DecodeAccount(data []byte) (*Account, error) {
	return decodeRecord[Account](data)
}

// DecodeAccessKey decodes an access key record.
func DecodeAccessKey(data []byte) (*AccessKey, error) {
	return decodeRecord[AccessKey](data)
}
