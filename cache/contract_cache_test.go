// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/trieview/trieview/primitives"
)

func TestContractCache(t *testing.T) {
	_, err := NewContractCache(0)
	assert.Error(t, err)

	c, err := NewContractCache(2)
	require.NoError(t, err)

	k1 := primitives.Blake2b([]byte("a"))
	k2 := primitives.Blake2b([]byte("b"))
	k3 := primitives.Blake2b([]byte("c"))

	_, ok := c.Get(k1)
	assert.False(t, ok)

	c.Put(k1, "one")
	c.Put(k2, "two")
	v, ok := c.Get(k1)
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	// k2 is the least recently used
	c.Put(k3, "three")
	_, ok = c.Get(k2)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	hit, miss := c.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(2), miss)

	c.Purge()
	assert.Zero(t, c.Len())
}

func TestContractCacheConcurrent(t *testing.T) {
	c, err := NewContractCache(DefaultContractCacheSize)
	require.NoError(t, err)

	var g errgroup.Group
	for i := range 8 {
		g.Go(func() error {
			key := primitives.Blake2b([]byte{byte(i % 2)})
			if _, ok := c.Get(key); !ok {
				c.Put(key, i)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 2, c.Len())
	hit, miss := c.Stats()
	assert.Equal(t, int64(8), hit+miss)
}
