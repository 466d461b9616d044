// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package primitives

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoHashJSON(t *testing.T) {
	h := Blake2b([]byte("code"))

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `"`+h.String()+`"`, string(data))

	var decoded CryptoHash
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, h, decoded)

	fromBase58, err := ParseCryptoHash(h.Base58())
	require.NoError(t, err)
	assert.Equal(t, h, fromBase58)

	_, err = ParseCryptoHash("0y" + h.String()[2:])
	assert.Error(t, err)
}

func TestBalance(t *testing.T) {
	b := MustParseBalance("100000000000000000000")
	assert.Equal(t, "100000000000000000000", b.String())
	assert.Equal(t, 1, b.Cmp(NewBalance(1)))
	assert.True(t, NewBalance(0).IsZero())

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `"100000000000000000000"`, string(data))

	var fromNumber Balance
	require.NoError(t, json.Unmarshal([]byte(`10000000000000000000`), &fromNumber))
	assert.Equal(t, "10000000000000000000", fromNumber.String())

	enc, err := rlp.EncodeToBytes(b)
	require.NoError(t, err)
	var back Balance
	require.NoError(t, rlp.DecodeBytes(enc, &back))
	assert.Equal(t, b, back)

	le := NewBalance(0x0102).LittleEndian16()
	assert.Equal(t, []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, le)
}

func TestAccountID(t *testing.T) {
	for _, ok := range []string{"aa", "alice.near", "a-b_c.d", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"} {
		_, err := ParseAccountID(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"a", "Alice", "a..b", ".a", "a.", "a b", "-ab"} {
		_, err := ParseAccountID(bad)
		assert.Error(t, err, bad)
	}

	assert.True(t, AccountID("near").IsTopLevel())
	assert.False(t, AccountID("alice.near").IsTopLevel())
	assert.True(t, AccountID("alice.near").IsSubAccountOf("near"))
	assert.False(t, AccountID("bob.alice.near").IsSubAccountOf("near"))
	assert.True(t, AccountID("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef").IsImplicit())
}

func TestPublicKey(t *testing.T) {
	pk := EmptyPublicKey(ED25519)
	pk.Data[0] = 7

	b := pk.Bytes()
	assert.Len(t, b, 33)
	assert.Equal(t, byte(ED25519), b[0])

	decoded, err := DecodePublicKey(b)
	require.NoError(t, err)
	assert.True(t, pk.Equal(decoded))

	_, err = DecodePublicKey(b[:32])
	assert.Error(t, err)
	_, err = DecodePublicKey(append(b, 0))
	assert.Error(t, err)
	_, err = DecodePublicKey([]byte{9, 1, 2})
	assert.Error(t, err)

	parsed, err := ParsePublicKey(pk.String())
	require.NoError(t, err)
	assert.True(t, pk.Equal(parsed))

	// all zero data is not a point on the curve
	assert.Error(t, EmptyPublicKey(SECP256K1).Validate())
}

func TestProtocolVersions(t *testing.T) {
	assert.True(t, LowerStorageCost.Enabled(42))
	assert.False(t, LowerStorageCost.Enabled(41))
	assert.True(t, RestoreReceiptsAfterFix.Enabled(ProtocolVersionLatest))
	assert.Equal(t, "MathExtension", MathExtension.String())

	upper := ProtocolVersion(45)
	r := NewProtocolVersionRange(40, &upper)
	assert.True(t, r.Contains(40))
	assert.True(t, r.Contains(44))
	assert.False(t, r.Contains(45))
	assert.False(t, r.Contains(39))
	assert.True(t, NewProtocolVersionRange(40, nil).Contains(1000))

	assert.False(t, IsImplicitAccountCreationEnabled(34))
	assert.True(t, IsImplicitAccountCreationEnabled(35))
}
