// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"context"

	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/state"
)

// External is what a running contract may do to the world outside its sandbox.
// Keys are contract storage keys of the current account.
type External interface {
	StorageSet(key, value []byte) error
	// StorageGet returns nil if key is absent.
	StorageGet(key []byte) ([]byte, error)
	StorageRemove(key []byte) error
	StorageHasKey(key []byte) (bool, error)

	// ValidatorStake returns nil if id is not a validator of the current epoch.
	ValidatorStake(id primitives.AccountID) (*primitives.Balance, error)
	ValidatorTotalStake() (primitives.Balance, error)

	GenerateDataID() primitives.CryptoHash
}

// CompiledContractCache keeps compiled contracts across calls.
type CompiledContractCache interface {
	Get(key primitives.CryptoHash) (any, bool)
	Put(key primitives.CryptoHash, artifact any)
}

// VM executes contract methods.
//
// Run returns a nil error on success. A failed call returns one of the function call
// errors of this package, together with the partial outcome when execution got far
// enough to produce one. Other errors come from External or from ctx.
type VM interface {
	Run(
		ctx context.Context,
		code *state.ContractCode,
		method string,
		ext External,
		vmContext *Context,
		wasmConfig *params.VMConfig,
		fees *params.RuntimeFeesConfig,
		promiseResults []PromiseResult,
		protocolVersion primitives.ProtocolVersion,
		cache CompiledContractCache,
	) (*Outcome, error)
}
