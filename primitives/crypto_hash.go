// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package primitives

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// CryptoHash array of 32 bytes, the digest of a blake2b-256 hash.
type CryptoHash [32]byte

var (
	_ json.Marshaler   = (*CryptoHash)(nil)
	_ json.Unmarshaler = (*CryptoHash)(nil)
)

// String implements stringer
func (h CryptoHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Base58 returns the base58 presentation, as used by wallets and explorers.
func (h CryptoHash) Base58() string {
	return base58.Encode(h[:])
}

// AbbrevString returns abbrev string presentation.
func (h CryptoHash) AbbrevString() string {
	return fmt.Sprintf("0x%x…%x", h[:4], h[28:])
}

// Bytes returns byte slice form of CryptoHash.
func (h CryptoHash) Bytes() []byte {
	return h[:]
}

// IsZero returns if CryptoHash has all zero bytes.
func (h CryptoHash) IsZero() bool {
	return h == CryptoHash{}
}

// MarshalJSON implements json.Marshaler.
func (h CryptoHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *CryptoHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCryptoHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseCryptoHash converts a hex (optionally 0x prefixed) or base58 string into CryptoHash.
func ParseCryptoHash(s string) (CryptoHash, error) {
	var h CryptoHash
	switch {
	case len(s) == 32*2:
	case len(s) == 32*2+2:
		if strings.ToLower(s[:2]) != "0x" {
			return CryptoHash{}, errors.New("invalid prefix")
		}
		s = s[2:]
	default:
		b := base58.Decode(s)
		if len(b) != len(h) {
			return CryptoHash{}, errors.New("invalid length")
		}
		copy(h[:], b)
		return h, nil
	}

	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return CryptoHash{}, err
	}
	return h, nil
}

// MustParseCryptoHash converts string presented into CryptoHash type, panic on error.
func MustParseCryptoHash(s string) CryptoHash {
	h, err := ParseCryptoHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

// BytesToCryptoHash converts bytes slice into CryptoHash.
// If b is larger than 32 bytes, b will be cropped (from the left).
// If b is smaller than 32 bytes, b will be extended (from the left).
func BytesToCryptoHash(b []byte) (h CryptoHash) {
	if len(b) > len(h) {
		b = b[len(b)-len(h):]
	}
	copy(h[len(h)-len(b):], b)
	return
}
