// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"github.com/trieview/trieview/metrics"
)

var (
	metricTrieCommittedNodes = metrics.LazyLoadCounterVec("trie_committed_nodes_count", []string{"event"})
	metricTrieCommitDuration = metrics.LazyLoadHistogram("trie_commit_duration_ms", metrics.BucketQueryDuration)
)
