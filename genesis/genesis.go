// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/trieview/trieview/muxdb"
	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/state"
)

// Config is the genesis file.
type Config struct {
	ProtocolVersion primitives.ProtocolVersion `json:"protocol_version"`
	GenesisHeight   primitives.BlockHeight     `json:"genesis_height"`
	// Overrides the baked-in config of the first protocol versions. Nil keeps them.
	RuntimeConfig *params.RuntimeConfig `json:"runtime_config,omitempty"`
	Accounts      []Account             `json:"accounts"`
}

// Account is an account set up in the genesis state.
type Account struct {
	AccountID  primitives.AccountID   `json:"account_id"`
	Amount     primitives.Balance     `json:"amount"`
	Locked     primitives.Balance     `json:"locked"`
	Code       []byte                 `json:"code,omitempty"` // base64
	AccessKeys []primitives.PublicKey `json:"access_keys,omitempty"`
	Data       []DataRecord           `json:"data,omitempty"`
}

// DataRecord is a contract storage entry. Key and value are base64 encoded.
type DataRecord struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// DecodeConfig decodes a genesis config from JSON. Unknown fields are rejected.
func DecodeConfig(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads a genesis config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	cfg, err := DecodeConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode genesis %v", path)
	}
	return cfg, nil
}

// Validate checks account ids and keys.
func (c *Config) Validate() error {
	if c.ProtocolVersion > primitives.ProtocolVersionLatest {
		return errors.Errorf("unsupported protocol version %d", c.ProtocolVersion)
	}
	seen := make(map[primitives.AccountID]bool, len(c.Accounts))
	for _, acc := range c.Accounts {
		if err := acc.AccountID.Validate(); err != nil {
			return errors.Wrapf(err, "account %q", acc.AccountID)
		}
		if seen[acc.AccountID] {
			return errors.Errorf("duplicated account %v", acc.AccountID)
		}
		seen[acc.AccountID] = true
		for _, pk := range acc.AccessKeys {
			if err := pk.Validate(); err != nil {
				return errors.Wrapf(err, "access key of %v", acc.AccountID)
			}
		}
	}
	return nil
}

// ConfigStore returns the runtime config store of the chain.
func (c *Config) ConfigStore() *params.RuntimeConfigStore {
	return params.NewRuntimeConfigStore(c.RuntimeConfig)
}

// Builder returns a state builder set up with the genesis accounts.
func (c *Config) Builder() *Builder {
	b := NewBuilder().Height(c.GenesisHeight)
	b.StorageUsage(c.ConfigStore().GetConfig(c.ProtocolVersion).TransactionCosts.StorageUsageConfig)

	for _, acc := range c.Accounts {
		b.Account(acc.AccountID, state.Account{Amount: acc.Amount, Locked: acc.Locked})
		if len(acc.Code) > 0 {
			b.Code(acc.AccountID, acc.Code)
		}
		for _, pk := range acc.AccessKeys {
			b.AccessKey(acc.AccountID, pk, *state.FullAccessKey())
		}
		for _, d := range acc.Data {
			b.Data(acc.AccountID, d.Key, d.Value)
		}
	}
	return b
}

// Build builds the genesis state into db and returns its root.
func (c *Config) Build(db *muxdb.MuxDB) (primitives.StateRoot, error) {
	return c.Builder().Build(db)
}
