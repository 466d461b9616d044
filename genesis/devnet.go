// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ed25519"
	"sync"

	"github.com/trieview/trieview/primitives"
)

// DevAccount account for development.
type DevAccount struct {
	AccountID  primitives.AccountID
	PrivateKey ed25519.PrivateKey
}

// PublicKey returns the full access key of the account.
func (a DevAccount) PublicKey() primitives.PublicKey {
	return primitives.PublicKey{
		Type: primitives.ED25519,
		Data: a.PrivateKey.Public().(ed25519.PublicKey),
	}
}

// DevAccounts returns pre-alloced accounts for development. Keys derive from the account ids.
var DevAccounts = sync.OnceValue(func() []DevAccount {
	ids := []primitives.AccountID{
		"test.near",
		"alice.near",
		"bob.near",
	}
	accs := make([]DevAccount, 0, len(ids))
	for _, id := range ids {
		seed := primitives.Blake2b([]byte(id))
		accs = append(accs, DevAccount{id, ed25519.NewKeyFromSeed(seed[:])})
	}
	return accs
})

// devBalance is the initial amount of every dev account.
var devBalance = primitives.MustParseBalance("1000000000000000000000000000")

// NewDevnet returns the genesis of a development network funding DevAccounts.
func NewDevnet() *Config {
	cfg := &Config{ProtocolVersion: primitives.ProtocolVersionLatest}
	for _, acc := range DevAccounts() {
		cfg.Accounts = append(cfg.Accounts, Account{
			AccountID:  acc.AccountID,
			Amount:     devBalance,
			AccessKeys: []primitives.PublicKey{acc.PublicKey()},
		})
	}
	return cfg
}
