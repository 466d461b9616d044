// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package primitives

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

type (
	// Gas is the metered unit of computation.
	Gas = uint64
	// BlockHeight is the height of a block.
	BlockHeight = uint64
	// EpochHeight is the sequence number of an epoch.
	EpochHeight = uint64
	// StorageUsage is the number of bytes an account occupies in state.
	StorageUsage = uint64
	// Nonce is the access key nonce.
	Nonce = uint64
	// EpochID identifies an epoch by the hash of its first block's previous block.
	EpochID = CryptoHash
	// StateRoot is the root hash of a state trie.
	StateRoot = CryptoHash
)

// Balance is an unsigned 128-bit token amount, stored in a 256-bit integer.
// Its text form is a decimal string.
type Balance uint256.Int

var (
	_ json.Marshaler   = (*Balance)(nil)
	_ json.Unmarshaler = (*Balance)(nil)
	_ rlp.Encoder      = (*Balance)(nil)
	_ rlp.Decoder      = (*Balance)(nil)
)

// NewBalance creates balance from uint64.
func NewBalance(v uint64) Balance {
	return Balance(*uint256.NewInt(v))
}

// ParseBalance parses decimal string into balance.
func ParseBalance(s string) (Balance, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return Balance{}, err
	}
	return Balance(*v), nil
}

// MustParseBalance parses decimal string into balance, panic on error.
func MustParseBalance(s string) Balance {
	b, err := ParseBalance(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Int returns the balance as uint256.Int. The returned value is a copy.
func (b Balance) Int() *uint256.Int {
	v := uint256.Int(b)
	return &v
}

// IsZero returns whether the balance is zero.
func (b Balance) IsZero() bool {
	return b.Int().IsZero()
}

// Cmp compares b and other and returns -1, 0 or +1.
func (b Balance) Cmp(other Balance) int {
	return b.Int().Cmp(other.Int())
}

// String implements stringer.
func (b Balance) String() string {
	return b.Int().Dec()
}

// LittleEndian16 returns the balance as 16 little-endian bytes.
func (b Balance) LittleEndian16() []byte {
	be := b.Int().Bytes32()
	out := make([]byte, 16)
	for i := range out {
		out[i] = be[31-i]
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
// Both quoted decimal strings and bare numbers are accepted.
func (b *Balance) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	if s == "" {
		return errors.New("empty balance")
	}
	parsed, err := ParseBalance(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (b Balance) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, b.Int())
}

// DecodeRLP implements rlp.Decoder.
func (b *Balance) DecodeRLP(s *rlp.Stream) error {
	return s.ReadUint256((*uint256.Int)(b))
}
