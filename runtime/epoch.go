// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/holiman/uint256"

	"github.com/trieview/trieview/primitives"
)

// EpochInfoProvider answers questions about validators of an epoch.
type EpochInfoProvider interface {
	// ValidatorStake returns nil if id does not validate in the epoch.
	ValidatorStake(epochID primitives.EpochID, lastBlockHash primitives.CryptoHash, id primitives.AccountID) (*primitives.Balance, error)
	ValidatorTotalStake(epochID primitives.EpochID, lastBlockHash primitives.CryptoHash) (primitives.Balance, error)
	MinimumStake(prevBlockHash primitives.CryptoHash) (primitives.Balance, error)
}

// StaticEpochInfo serves the same validator set for every epoch.
type StaticEpochInfo struct {
	Validators map[primitives.AccountID]primitives.Balance
	MinStake   primitives.Balance
}

var _ EpochInfoProvider = (*StaticEpochInfo)(nil)

// ValidatorStake implements EpochInfoProvider.
func (s *StaticEpochInfo) ValidatorStake(_ primitives.EpochID, _ primitives.CryptoHash, id primitives.AccountID) (*primitives.Balance, error) {
	if stake, ok := s.Validators[id]; ok {
		return &stake, nil
	}
	return nil, nil
}

// ValidatorTotalStake implements EpochInfoProvider.
func (s *StaticEpochInfo) ValidatorTotalStake(primitives.EpochID, primitives.CryptoHash) (primitives.Balance, error) {
	total := new(uint256.Int)
	for _, stake := range s.Validators {
		if _, overflow := total.AddOverflow(total, stake.Int()); overflow {
			return primitives.Balance{}, errOverflow
		}
	}
	return primitives.Balance(*total), nil
}

// MinimumStake implements EpochInfoProvider.
func (s *StaticEpochInfo) MinimumStake(primitives.CryptoHash) (primitives.Balance, error) {
	return s.MinStake, nil
}
