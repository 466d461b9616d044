// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/trieview/trieview/log"
	"github.com/trieview/trieview/metrics"
	"github.com/trieview/trieview/primitives"
)

var (
	logger = log.WithContext("pkg", "cache")

	metricContractCacheLookups = metrics.LazyLoadCounterVec("contract_cache_lookups_count", []string{"result"})
)

// DefaultContractCacheSize is the number of compiled contracts kept by default.
const DefaultContractCacheSize = 128

// ContractCache keeps compiled contracts keyed by the hash of code and sandbox settings.
// It is safe for concurrent use.
type ContractCache struct {
	lru       *lru.Cache
	hit, miss atomic.Int64
	rate      atomic.Int32 // last logged hit rate in per mille
}

// NewContractCache creates a contract cache holding at most size entries.
// size should be > 0, or an error returned.
func NewContractCache(size int) (*ContractCache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ContractCache{lru: l}, nil
}

// Get returns the cached artifact of key.
func (c *ContractCache) Get(key primitives.CryptoHash) (any, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hit.Add(1)
		metricContractCacheLookups().AddWithLabel(1, map[string]string{"result": "hit"})
	} else {
		c.miss.Add(1)
		metricContractCacheLookups().AddWithLabel(1, map[string]string{"result": "miss"})
	}
	if hit, miss := c.Stats(); (hit+miss)%1000 == 0 {
		rate := int32(hit * 1000 / (hit + miss))
		if c.rate.Swap(rate) != rate {
			logger.Debug("contract cache hit rate changed", "hit", hit, "miss", miss, "rate", float64(rate)/1000)
		}
	}
	return v, ok
}

// Stats returns the number of hits and misses so far.
func (c *ContractCache) Stats() (hit, miss int64) {
	return c.hit.Load(), c.miss.Load()
}

// Put stores the artifact of key, evicting the least recently used entry when full.
func (c *ContractCache) Put(key primitives.CryptoHash, artifact any) {
	c.lru.Add(key, artifact)
}

// Len returns the number of cached entries.
func (c *ContractCache) Len() int {
	return c.lru.Len()
}

// Purge drops all entries.
func (c *ContractCache) Purge() {
	c.lru.Purge()
}
