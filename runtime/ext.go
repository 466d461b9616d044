// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/state"
	"github.com/trieview/trieview/vm"
)

var errOverflow = errors.New("stake overflow")

// RuntimeExt gives a contract access to the storage of its account and to epoch info.
type RuntimeExt struct {
	su              *state.TrieUpdate
	accountID       primitives.AccountID
	actionHash      primitives.CryptoHash
	dataCount       uint64
	epochID         primitives.EpochID
	prevBlockHash   primitives.CryptoHash
	lastBlockHash   primitives.CryptoHash
	epochInfo       EpochInfoProvider
	protocolVersion primitives.ProtocolVersion
}

var _ vm.External = (*RuntimeExt)(nil)

// NewRuntimeExt creates the external of a call executed by accountID.
func NewRuntimeExt(
	su *state.TrieUpdate,
	accountID primitives.AccountID,
	actionHash primitives.CryptoHash,
	epochID primitives.EpochID,
	prevBlockHash primitives.CryptoHash,
	lastBlockHash primitives.CryptoHash,
	epochInfo EpochInfoProvider,
	protocolVersion primitives.ProtocolVersion,
) *RuntimeExt {
	return &RuntimeExt{
		su:              su,
		accountID:       accountID,
		actionHash:      actionHash,
		epochID:         epochID,
		prevBlockHash:   prevBlockHash,
		lastBlockHash:   lastBlockHash,
		epochInfo:       epochInfo,
		protocolVersion: protocolVersion,
	}
}

// AccountID returns the account the external is scoped to.
func (e *RuntimeExt) AccountID() primitives.AccountID { return e.accountID }

// State returns the underlying state.
func (e *RuntimeExt) State() *state.TrieUpdate { return e.su }

func (e *RuntimeExt) StorageSet(key, value []byte) error {
	e.su.SetData(e.accountID, key, value)
	return nil
}

func (e *RuntimeExt) StorageGet(key []byte) ([]byte, error) {
	return e.su.GetData(e.accountID, key)
}

func (e *RuntimeExt) StorageRemove(key []byte) error {
	e.su.RemoveData(e.accountID, key)
	return nil
}

func (e *RuntimeExt) StorageHasKey(key []byte) (bool, error) {
	v, err := e.su.GetData(e.accountID, key)
	return v != nil, err
}

func (e *RuntimeExt) ValidatorStake(id primitives.AccountID) (*primitives.Balance, error) {
	return e.epochInfo.ValidatorStake(e.epochID, e.lastBlockHash, id)
}

func (e *RuntimeExt) ValidatorTotalStake() (primitives.Balance, error) {
	return e.epochInfo.ValidatorTotalStake(e.epochID, e.lastBlockHash)
}

// GenerateDataID returns a new data id unique to the action and the block.
func (e *RuntimeExt) GenerateDataID() primitives.CryptoHash {
	blockHash := e.prevBlockHash
	if e.protocolVersion >= primitives.CreateReceiptIDSwitchToCurrentBlockVersion {
		blockHash = e.lastBlockHash
	}
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], e.dataCount)
	e.dataCount++
	return primitives.Blake2b(e.actionHash.Bytes(), blockHash.Bytes(), n[:])
}
