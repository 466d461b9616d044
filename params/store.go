// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"fmt"
	"sort"

	"github.com/trieview/trieview/primitives"
)

// bakedVersions pairs each protocol version at which the runtime config changed
// with the embedded file holding it. The first version is always 0.
var bakedVersions = []struct {
	version primitives.ProtocolVersion
	file    string
}{
	{0, "0.json"},
	{primitives.LowerStorageCost.ProtocolVersion(), "42.json"},
}

// LowerStorageAmountPerByte is the storage price since the LowerStorageCost feature.
var LowerStorageAmountPerByte = primitives.MustParseBalance("10000000000000000000")

type versionedConfig struct {
	version primitives.ProtocolVersion
	config  *RuntimeConfig
}

// RuntimeConfigStore maps protocol versions to the runtime config in force.
// Each stored config applies from its version up to the next stored version.
// Returned configs are shared and must not be modified.
type RuntimeConfigStore struct {
	entries []versionedConfig // sorted by version
}

// NewRuntimeConfigStore creates the store from the embedded configs.
//
// If genesis is not nil, it overrides version 0, and a copy of it with the lowered
// storage price overrides the LowerStorageCost version. This keeps chains that
// started from a custom genesis config on their own parameters.
func NewRuntimeConfigStore(genesis *RuntimeConfig) *RuntimeConfigStore {
	configs := make(map[primitives.ProtocolVersion]*RuntimeConfig, len(bakedVersions))
	for _, b := range bakedVersions {
		configs[b.version] = mustLoadBaked(b.file)
	}

	if genesis != nil {
		configs[0] = genesis.Clone()

		lowered := genesis.Clone()
		lowered.StorageAmountPerByte = LowerStorageAmountPerByte
		configs[primitives.LowerStorageCost.ProtocolVersion()] = lowered
	}
	return newStore(configs)
}

// TestRuntimeConfigStore creates a store holding only the default config.
func TestRuntimeConfigStore() *RuntimeConfigStore {
	return newStore(map[primitives.ProtocolVersion]*RuntimeConfig{0: Default()})
}

// FreeRuntimeConfigStore creates a store holding only the zero cost config.
func FreeRuntimeConfigStore() *RuntimeConfigStore {
	return newStore(map[primitives.ProtocolVersion]*RuntimeConfig{0: Free()})
}

func newStore(configs map[primitives.ProtocolVersion]*RuntimeConfig) *RuntimeConfigStore {
	entries := make([]versionedConfig, 0, len(configs))
	for v, cfg := range configs {
		entries = append(entries, versionedConfig{v, cfg})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].version < entries[j].version
	})
	return &RuntimeConfigStore{entries}
}

// GetConfig returns the config of the greatest stored version not above v.
// It panics if no such version exists, which is impossible while version 0 is stored.
func (s *RuntimeConfigStore) GetConfig(v primitives.ProtocolVersion) *RuntimeConfig {
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].version > v
	})
	if i == 0 {
		panic(fmt.Sprintf("runtime config not found for protocol version %d", v))
	}
	return s.entries[i-1].config
}

// Versions returns the stored protocol versions in ascending order.
func (s *RuntimeConfigStore) Versions() []primitives.ProtocolVersion {
	vs := make([]primitives.ProtocolVersion, 0, len(s.entries))
	for _, e := range s.entries {
		vs = append(vs, e.version)
	}
	return vs
}
