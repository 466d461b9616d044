// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package viewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "state_size_limit: 50000\nmax_gas_burnt_view: 300000000000000\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.StateSizeLimit)
	require.NotNil(t, cfg.MaxGasBurntView)
	assert.Equal(t, uint64(50000), *cfg.StateSizeLimit)
	assert.Equal(t, uint64(300_000_000_000_000), *cfg.MaxGasBurntView)

	cfg, err = LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Nil(t, cfg.StateSizeLimit)
	assert.Nil(t, cfg.MaxGasBurntView)

	_, err = LoadConfig(writeConfig(t, "unknown: 1\n"))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
