// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wasmvm

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/trieview/trieview/vm"
)

// hostModule is the name contracts import host functions from.
const hostModule = "env"

type logicKey struct{}

func withLogic(ctx context.Context, l *vm.Logic) context.Context {
	return context.WithValue(ctx, logicKey{}, l)
}

func logicOf(ctx context.Context) *vm.Logic {
	return ctx.Value(logicKey{}).(*vm.Logic)
}

// check stops the contract if err is not nil. The engine recovers the panic and
// the error stays recorded on the logic.
func check(ctx context.Context, err error) {
	if err != nil {
		panic(logicOf(ctx).Fail(err))
	}
}

// result returns a function that checks the error of a host function returning a value.
func result(ctx context.Context) func(uint64, error) uint64 {
	return func(v uint64, err error) uint64 {
		check(ctx, err)
		return v
	}
}

type hostFunction struct {
	name string
	fn   any
}

var hostFunctions = []hostFunction{
	// registers
	{"read_register", func(ctx context.Context, id, ptr uint64) {
		check(ctx, logicOf(ctx).ReadRegister(id, ptr))
	}},
	{"register_len", func(ctx context.Context, id uint64) uint64 {
		return result(ctx)(logicOf(ctx).RegisterLen(id))
	}},
	{"write_register", func(ctx context.Context, id, n, ptr uint64) {
		check(ctx, logicOf(ctx).WriteRegister(id, n, ptr))
	}},

	// context
	{"current_account_id", func(ctx context.Context, register uint64) {
		check(ctx, logicOf(ctx).CurrentAccountID(register))
	}},
	{"signer_account_id", func(ctx context.Context, register uint64) {
		check(ctx, logicOf(ctx).SignerAccountID(register))
	}},
	{"signer_account_pk", func(ctx context.Context, register uint64) {
		check(ctx, logicOf(ctx).SignerAccountPK(register))
	}},
	{"predecessor_account_id", func(ctx context.Context, register uint64) {
		check(ctx, logicOf(ctx).PredecessorAccountID(register))
	}},
	{"input", func(ctx context.Context, register uint64) {
		check(ctx, logicOf(ctx).Input(register))
	}},
	{"block_index", func(ctx context.Context) uint64 {
		return result(ctx)(logicOf(ctx).BlockIndex())
	}},
	{"block_timestamp", func(ctx context.Context) uint64 {
		return result(ctx)(logicOf(ctx).BlockTimestamp())
	}},
	{"epoch_height", func(ctx context.Context) uint64 {
		return result(ctx)(logicOf(ctx).EpochHeight())
	}},
	{"storage_usage", func(ctx context.Context) uint64 {
		return result(ctx)(logicOf(ctx).StorageUsage())
	}},

	// economics
	{"account_balance", func(ctx context.Context, ptr uint64) {
		check(ctx, logicOf(ctx).AccountBalance(ptr))
	}},
	{"account_locked_balance", func(ctx context.Context, ptr uint64) {
		check(ctx, logicOf(ctx).AccountLockedBalance(ptr))
	}},
	{"attached_deposit", func(ctx context.Context, ptr uint64) {
		check(ctx, logicOf(ctx).AttachedDeposit(ptr))
	}},
	{"prepaid_gas", func(ctx context.Context) uint64 {
		return result(ctx)(logicOf(ctx).PrepaidGas())
	}},
	{"used_gas", func(ctx context.Context) uint64 {
		return result(ctx)(logicOf(ctx).UsedGas())
	}},

	// math
	{"random_seed", func(ctx context.Context, register uint64) {
		check(ctx, logicOf(ctx).RandomSeed(register))
	}},
	{"sha256", func(ctx context.Context, n, ptr, register uint64) {
		check(ctx, logicOf(ctx).Sha256(n, ptr, register))
	}},
	{"keccak256", func(ctx context.Context, n, ptr, register uint64) {
		check(ctx, logicOf(ctx).Keccak256(n, ptr, register))
	}},

	// miscellaneous
	{"value_return", func(ctx context.Context, n, ptr uint64) {
		check(ctx, logicOf(ctx).ValueReturn(n, ptr))
	}},
	{"panic", func(ctx context.Context) {
		check(ctx, logicOf(ctx).Panic())
	}},
	{"panic_utf8", func(ctx context.Context, n, ptr uint64) {
		check(ctx, logicOf(ctx).PanicUTF8(n, ptr))
	}},
	{"log_utf8", func(ctx context.Context, n, ptr uint64) {
		check(ctx, logicOf(ctx).LogUTF8(n, ptr))
	}},

	// promises
	{"promise_batch_create", func(ctx context.Context, n, ptr uint64) uint64 {
		return result(ctx)(logicOf(ctx).PromiseBatchCreate(n, ptr))
	}},
	{"promise_return", func(ctx context.Context, idx uint64) {
		check(ctx, logicOf(ctx).PromiseReturn(idx))
	}},
	{"promise_results_count", func(ctx context.Context) uint64 {
		return result(ctx)(logicOf(ctx).PromiseResultsCount())
	}},
	{"promise_result", func(ctx context.Context, idx, register uint64) uint64 {
		return result(ctx)(logicOf(ctx).PromiseResult(idx, register))
	}},

	// storage
	{"storage_write", func(ctx context.Context, keyLen, keyPtr, valueLen, valuePtr, register uint64) uint64 {
		return result(ctx)(logicOf(ctx).StorageWrite(keyLen, keyPtr, valueLen, valuePtr, register))
	}},
	{"storage_read", func(ctx context.Context, keyLen, keyPtr, register uint64) uint64 {
		return result(ctx)(logicOf(ctx).StorageRead(keyLen, keyPtr, register))
	}},
	{"storage_remove", func(ctx context.Context, keyLen, keyPtr, register uint64) uint64 {
		return result(ctx)(logicOf(ctx).StorageRemove(keyLen, keyPtr, register))
	}},
	{"storage_has_key", func(ctx context.Context, keyLen, keyPtr uint64) uint64 {
		return result(ctx)(logicOf(ctx).StorageHasKey(keyLen, keyPtr))
	}},

	// validators
	{"validator_stake", func(ctx context.Context, n, ptr, stakePtr uint64) {
		check(ctx, logicOf(ctx).ValidatorStake(n, ptr, stakePtr))
	}},
	{"validator_total_stake", func(ctx context.Context, stakePtr uint64) {
		check(ctx, logicOf(ctx).ValidatorTotalStake(stakePtr))
	}},

	// metering
	{"gas", func(ctx context.Context, opcodes uint32) {
		check(ctx, logicOf(ctx).Gas(opcodes))
	}},
}

var hostFunctionNames = func() map[string]bool {
	names := make(map[string]bool, len(hostFunctions))
	for _, f := range hostFunctions {
		names[f.name] = true
	}
	return names
}()

func newHostModule(rt wazero.Runtime) wazero.HostModuleBuilder {
	b := rt.NewHostModuleBuilder(hostModule)
	for _, f := range hostFunctions {
		b.NewFunctionBuilder().WithFunc(f.fn).Export(f.name)
	}
	return b
}
