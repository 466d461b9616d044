// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trieview/trieview/muxdb"
	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/state"
	"github.com/trieview/trieview/test/wasmgen"
	"github.com/trieview/trieview/vm"
	"github.com/trieview/trieview/vm/wasmvm"
)

const contractID = primitives.AccountID("contract.near")

func contractCode() []byte {
	i64x2 := []wasmgen.ValType{wasmgen.I64, wasmgen.I64}
	m := &wasmgen.Module{
		Imports: []wasmgen.Import{
			wasmgen.Env("storage_write", []wasmgen.ValType{wasmgen.I64, wasmgen.I64, wasmgen.I64, wasmgen.I64, wasmgen.I64}, wasmgen.I64),
			wasmgen.Env("validator_stake", []wasmgen.ValType{wasmgen.I64, wasmgen.I64, wasmgen.I64}),
			wasmgen.Env("value_return", i64x2),
			wasmgen.Env("input", []wasmgen.ValType{wasmgen.I64}),
			wasmgen.Env("read_register", i64x2),
		},
		MemoryPages: 1,
		Data: []wasmgen.Data{
			{Offset: 0, Bytes: []byte("k")},
			{Offset: 8, Bytes: []byte("v")},
			{Offset: 16, Bytes: []byte("val.near")},
		},
	}
	call := func(name string, args ...int64) []byte {
		var code []byte
		for _, a := range args {
			code = append(code, wasmgen.I64Const(a)...)
		}
		return append(code, wasmgen.Call(m.FuncIndex(name))...)
	}
	m.Funcs = []wasmgen.Func{
		{Export: "put", Body: wasmgen.Code(call("storage_write", 1, 0, 1, 8, 0), wasmgen.Drop())},
		{Export: "stake", Body: wasmgen.Code(call("validator_stake", 8, 16, 32), call("value_return", 16, 32))},
		{Export: "echo", Body: wasmgen.Code(call("input", 0), call("read_register", 0, 64), call("value_return", 4, 64))},
	}
	return m.Encode()
}

type fixture struct {
	rt         *Runtime
	su         *state.TrieUpdate
	account    *state.Account
	applyState *ApplyState
	epochInfo  *StaticEpochInfo
}

func newFixture(t *testing.T, deploy bool) *fixture {
	db := muxdb.NewMem()
	t.Cleanup(func() { db.Close() })
	su, err := state.New(db, primitives.StateRoot{})
	require.NoError(t, err)

	account := &state.Account{Amount: primitives.NewBalance(1000), StorageUsage: 100}
	if deploy {
		code := state.NewContractCode(contractCode())
		su.SetCode(contractID, code.Code)
		account.CodeHash = code.Hash
	}
	su.SetAccount(contractID, account)

	v := wasmvm.New()
	t.Cleanup(func() { v.Close(context.Background()) })

	return &fixture{
		rt:      New(v),
		su:      su,
		account: account,
		applyState: &ApplyState{
			BlockIndex:             5,
			CurrentProtocolVersion: primitives.ProtocolVersionLatest,
			Config:                 params.Default(),
		},
		epochInfo: &StaticEpochInfo{Validators: map[primitives.AccountID]primitives.Balance{
			"val.near":   primitives.NewBalance(42),
			"other.near": primitives.NewBalance(8),
		}},
	}
}

func (f *fixture) call(t *testing.T, method string, args []byte, view bool) (*vm.Outcome, error) {
	ext := NewRuntimeExt(f.su, contractID, primitives.CryptoHash{}, f.applyState.EpochID,
		f.applyState.PrevBlockHash, f.applyState.BlockHash, f.epochInfo, f.applyState.CurrentProtocolVersion)
	limits := f.applyState.Config.WasmConfig.LimitConfig
	action := &FunctionCallAction{MethodName: method, Args: args, Gas: limits.MaxGasBurnt}
	receipt := &ActionReceipt{SignerID: contractID, SignerPublicKey: primitives.EmptyPublicKey(primitives.ED25519)}
	var viewConfig *vm.ViewConfig
	if view {
		viewConfig = &vm.ViewConfig{MaxGasBurnt: limits.MaxGasBurntView}
	}
	return f.rt.ExecuteFunctionCall(context.Background(), f.applyState, ext, f.account, contractID,
		receipt, nil, action, primitives.CryptoHash{}, true, viewConfig)
}

func TestExecuteFunctionCall(t *testing.T) {
	f := newFixture(t, true)

	out, err := f.call(t, "echo", []byte("ping"), true)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), out.ReturnData.Bytes())

	out, err = f.call(t, "put", nil, false)
	require.NoError(t, err)
	v, err := f.su.GetData(contractID, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	assert.Equal(t, f.account.StorageUsage+2+f.applyState.Config.TransactionCosts.StorageUsageConfig.NumExtraBytesRecord,
		out.StorageUsage)

	out, err = f.call(t, "stake", nil, true)
	require.NoError(t, err)
	assert.Equal(t, primitives.NewBalance(42).LittleEndian16(), out.ReturnData.Bytes())
}

func TestExecuteFunctionCallWithoutCode(t *testing.T) {
	f := newFixture(t, false)
	out, err := f.call(t, "echo", nil, true)
	assert.Nil(t, out)

	var compErr *vm.CompilationError
	require.True(t, errors.As(err, &compErr))
	assert.Equal(t, vm.CodeDoesNotExist, compErr.Kind)
	assert.Equal(t, contractID, compErr.AccountID)
	assert.True(t, vm.IsFunctionCallError(err))
}

func TestGenerateDataID(t *testing.T) {
	prev := primitives.Blake2b([]byte("prev"))
	last := primitives.Blake2b([]byte("last"))
	newExt := func(v primitives.ProtocolVersion) *RuntimeExt {
		return NewRuntimeExt(nil, contractID, primitives.Blake2b([]byte("action")), primitives.EpochID{},
			prev, last, &StaticEpochInfo{}, v)
	}

	a := newExt(primitives.ProtocolVersionLatest)
	id1, id2 := a.GenerateDataID(), a.GenerateDataID()
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, id1, newExt(primitives.ProtocolVersionLatest).GenerateDataID())
	assert.NotEqual(t, id1, newExt(primitives.CreateReceiptIDSwitchToCurrentBlockVersion-1).GenerateDataID())
}

func TestStaticEpochInfo(t *testing.T) {
	info := &StaticEpochInfo{
		Validators: map[primitives.AccountID]primitives.Balance{"a.near": primitives.NewBalance(3), "b.near": primitives.NewBalance(4)},
		MinStake:   primitives.NewBalance(1),
	}
	stake, err := info.ValidatorStake(primitives.EpochID{}, primitives.CryptoHash{}, "a.near")
	require.NoError(t, err)
	assert.Equal(t, primitives.NewBalance(3), *stake)

	stake, err = info.ValidatorStake(primitives.EpochID{}, primitives.CryptoHash{}, "c.near")
	require.NoError(t, err)
	assert.Nil(t, stake)

	total, err := info.ValidatorTotalStake(primitives.EpochID{}, primitives.CryptoHash{})
	require.NoError(t, err)
	assert.Equal(t, primitives.NewBalance(7), total)

	minStake, err := info.MinimumStake(primitives.CryptoHash{})
	require.NoError(t, err)
	assert.Equal(t, primitives.NewBalance(1), minStake)
}
