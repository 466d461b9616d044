// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/vm"
)

// ApplyState is the block environment receipts are applied in.
type ApplyState struct {
	BlockIndex    primitives.BlockHeight
	PrevBlockHash primitives.CryptoHash
	BlockHash     primitives.CryptoHash
	EpochID       primitives.EpochID
	EpochHeight   primitives.EpochHeight
	GasPrice      primitives.Balance
	// Nanoseconds since unix epoch.
	BlockTimestamp uint64
	// Nil means no limit.
	GasLimit               *primitives.Gas
	RandomSeed             primitives.CryptoHash
	CurrentProtocolVersion primitives.ProtocolVersion
	Config                 *params.RuntimeConfig
	Cache                  vm.CompiledContractCache
	IsNewChunk             bool
}

// DataReceiver is an account waiting for data produced by a receipt.
type DataReceiver struct {
	DataID     primitives.CryptoHash
	ReceiverID primitives.AccountID
}

// FunctionCallAction calls a contract method.
type FunctionCallAction struct {
	MethodName string
	Args       []byte
	Gas        primitives.Gas
	Deposit    primitives.Balance
}

// ActionReceipt carries actions to be applied to the receiver account.
type ActionReceipt struct {
	SignerID            primitives.AccountID
	SignerPublicKey     primitives.PublicKey
	GasPrice            primitives.Balance
	OutputDataReceivers []DataReceiver
	InputDataIDs        []primitives.CryptoHash
	Actions             []FunctionCallAction
}
