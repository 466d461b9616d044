// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/trieview/trieview/primitives"
)

//go:embed res/runtime_configs/*.json
var bakedConfigs embed.FS

// AccountCreationConfig controls who may create top-level accounts.
type AccountCreationConfig struct {
	// Top-level accounts shorter than this can only be created by the registrar.
	MinAllowedTopLevelAccountLength uint8                `json:"min_allowed_top_level_account_length"`
	RegistrarAccountID              primitives.AccountID `json:"registrar_account_id"`
}

// RuntimeConfig is the full set of parameters the runtime applies under one protocol version.
// It holds no pointers, so a plain copy is a deep copy.
type RuntimeConfig struct {
	// Amount of yocto tokens locked per byte of account storage.
	StorageAmountPerByte  primitives.Balance    `json:"storage_amount_per_byte"`
	TransactionCosts      RuntimeFeesConfig     `json:"transaction_costs"`
	WasmConfig            VMConfig              `json:"wasm_config"`
	AccountCreationConfig AccountCreationConfig `json:"account_creation_config"`
}

// Clone returns a copy of the config.
func (c *RuntimeConfig) Clone() *RuntimeConfig {
	cpy := *c
	return &cpy
}

// DecodeRuntimeConfig decodes a config from its JSON form. Unknown fields are rejected.
func DecodeRuntimeConfig(data []byte) (*RuntimeConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg RuntimeConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadRuntimeConfigFile reads and decodes a config JSON file.
func ReadRuntimeConfigFile(path string) (*RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeRuntimeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("decode runtime config %v: %w", path, err)
	}
	return cfg, nil
}

func mustLoadBaked(name string) *RuntimeConfig {
	data, err := bakedConfigs.ReadFile("res/runtime_configs/" + name)
	if err != nil {
		panic(fmt.Errorf("read baked runtime config %v: %w", name, err))
	}
	cfg, err := DecodeRuntimeConfig(data)
	if err != nil {
		panic(fmt.Errorf("decode baked runtime config %v: %w", name, err))
	}
	return cfg
}

// Default returns the config of the genesis protocol version.
func Default() *RuntimeConfig {
	return mustLoadBaked("0.json")
}

// Free returns a config with all fees and costs set to zero. Limits are kept.
func Free() *RuntimeConfig {
	cfg := Default()
	cfg.StorageAmountPerByte = primitives.NewBalance(0)
	cfg.TransactionCosts = freeFees(cfg.TransactionCosts)
	cfg.WasmConfig.ExtCosts = ExtCostsConfig{}
	cfg.WasmConfig.GrowMemCost = 0
	cfg.WasmConfig.RegularOpCost = 0
	return cfg
}
