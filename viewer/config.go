// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package viewer

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trieview/trieview/primitives"
)

// Config holds the limits of a TrieViewer. Unset fields take their defaults.
type Config struct {
	// Upper bound of the contract storage size view_state serves. Nil means no limit.
	StateSizeLimit *uint64 `yaml:"state_size_limit"`
	// Gas ceiling of view calls.
	MaxGasBurntView *primitives.Gas `yaml:"max_gas_burnt_view"`
}

// LoadConfig reads a YAML viewer config file. An empty file yields the zero config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read viewer config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrapf(err, "decode viewer config %v", path)
	}
	return cfg, nil
}
