// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package primitives

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// KeyType is the signature scheme of a public key.
type KeyType uint8

const (
	ED25519   KeyType = 0
	SECP256K1 KeyType = 1
)

// DataLen returns the length of raw public key data for the key type.
func (t KeyType) DataLen() int {
	switch t {
	case ED25519:
		return 32
	case SECP256K1:
		return 64
	}
	return -1
}

func (t KeyType) String() string {
	switch t {
	case ED25519:
		return "ed25519"
	case SECP256K1:
		return "secp256k1"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

func parseKeyType(s string) (KeyType, error) {
	switch strings.ToLower(s) {
	case "ed25519":
		return ED25519, nil
	case "secp256k1":
		return SECP256K1, nil
	}
	return 0, fmt.Errorf("unknown key type %q", s)
}

// PublicKey is a public key tagged with its scheme.
type PublicKey struct {
	Type KeyType
	Data []byte
}

// EmptyPublicKey returns the all-zero public key of the given type.
func EmptyPublicKey(t KeyType) PublicKey {
	return PublicKey{Type: t, Data: make([]byte, t.DataLen())}
}

// Bytes returns the binary form: one byte of key type followed by the raw key data.
func (pk PublicKey) Bytes() []byte {
	out := make([]byte, 0, 1+len(pk.Data))
	out = append(out, byte(pk.Type))
	return append(out, pk.Data...)
}

// Equal returns whether the two keys are identical.
func (pk PublicKey) Equal(other PublicKey) bool {
	return pk.Type == other.Type && bytes.Equal(pk.Data, other.Data)
}

// String returns the "<type>:<base58 data>" form.
func (pk PublicKey) String() string {
	return pk.Type.String() + ":" + base58.Encode(pk.Data)
}

// Validate checks the key data against its scheme.
func (pk PublicKey) Validate() error {
	if n := pk.Type.DataLen(); n < 0 {
		return fmt.Errorf("unknown key type %d", uint8(pk.Type))
	} else if len(pk.Data) != n {
		return fmt.Errorf("invalid %v key length %d", pk.Type, len(pk.Data))
	}
	if pk.Type == SECP256K1 {
		// raw data is the uncompressed point without the 0x04 prefix
		if _, err := secp256k1.ParsePubKey(append([]byte{0x04}, pk.Data...)); err != nil {
			return fmt.Errorf("invalid secp256k1 key: %w", err)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePublicKey(s)
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// DecodePublicKey decodes the binary form produced by PublicKey.Bytes.
// The input must be consumed exactly.
func DecodePublicKey(b []byte) (PublicKey, error) {
	if len(b) == 0 {
		return PublicKey{}, fmt.Errorf("empty public key")
	}
	t := KeyType(b[0])
	n := t.DataLen()
	if n < 0 {
		return PublicKey{}, fmt.Errorf("unknown key type %d", b[0])
	}
	if len(b)-1 != n {
		return PublicKey{}, fmt.Errorf("invalid %v key length %d", t, len(b)-1)
	}
	return PublicKey{Type: t, Data: append([]byte(nil), b[1:]...)}, nil
}

// ParsePublicKey parses "<type>:<base58 data>". A missing type prefix means ed25519.
func ParsePublicKey(s string) (PublicKey, error) {
	t := ED25519
	data := s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		var err error
		if t, err = parseKeyType(s[:i]); err != nil {
			return PublicKey{}, err
		}
		data = s[i+1:]
	}
	pk := PublicKey{Type: t, Data: base58.Decode(data)}
	if err := pk.Validate(); err != nil {
		return PublicKey{}, err
	}
	return pk, nil
}

// MustParsePublicKey parses the key, panic on error.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}
