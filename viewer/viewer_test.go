// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package viewer

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/trieview/trieview/cache"
	"github.com/trieview/trieview/muxdb"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/runtime"
	"github.com/trieview/trieview/state"
	"github.com/trieview/trieview/test/wasmgen"
)

const (
	contractID = primitives.AccountID("test.contract")
	aliceID    = primitives.AccountID("alice.near")
	missingID  = primitives.AccountID("bad.account")
)

var (
	i64   = wasmgen.I64
	i64x1 = []wasmgen.ValType{i64}
	i64x2 = []wasmgen.ValType{i64, i64}
	i64x3 = []wasmgen.ValType{i64, i64, i64}
	i64x5 = []wasmgen.ValType{i64, i64, i64, i64, i64}
)

func contractCode() []byte {
	m := &wasmgen.Module{
		Imports: []wasmgen.Import{
			wasmgen.Env("log_utf8", i64x2),
			wasmgen.Env("value_return", i64x2),
			wasmgen.Env("signer_account_id", i64x1),
			wasmgen.Env("random_seed", i64x1),
			wasmgen.Env("read_register", i64x2),
			wasmgen.Env("storage_read", i64x3, i64),
			wasmgen.Env("storage_write", i64x5, i64),
			wasmgen.Env("gas", []wasmgen.ValType{wasmgen.I32}),
		},
		MemoryPages: 1,
		Data: []wasmgen.Data{
			{Offset: 0, Bytes: []byte("hello")},
			{Offset: 16, Bytes: []byte("a")},
			{Offset: 24, Bytes: []byte("fresh")},
			{Offset: 32, Bytes: []byte("value")},
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
		{Export: "hello", Body: wasmgen.Code(call("log_utf8", 5, 0), call("value_return", 5, 0))},
		{Export: "fail", Body: wasmgen.Code(call("log_utf8", 5, 0), wasmgen.Unreachable())},
		{Export: "noop"},
		{Export: "signer", Body: call("signer_account_id", 0)},
		{Export: "seed", Body: wasmgen.Code(call("random_seed", 0), call("read_register", 0, 64), call("value_return", 32, 64))},
		{Export: "get_a", Body: wasmgen.Code(
			call("storage_read", 1, 16, 1), wasmgen.Drop(),
			call("read_register", 1, 64),
			call("value_return", 1, 64),
		)},
		{Export: "put", Body: wasmgen.Code(call("storage_write", 5, 24, 5, 32, 0), wasmgen.Drop())},
		{Export: "put_fail", Body: wasmgen.Code(call("storage_write", 5, 24, 5, 32, 0), wasmgen.Drop(), wasmgen.Unreachable())},
		{Export: "burn", Body: wasmgen.Loop(wasmgen.I32Const(1_000_000), wasmgen.Call(m.FuncIndex("gas")))},
		{Export: "spin", Body: wasmgen.Loop()},
	}
	return m.Encode()
}

func testKey(b byte) primitives.PublicKey {
	data := make([]byte, 32)
	data[0] = b
	return primitives.PublicKey{Type: primitives.ED25519, Data: data}
}

type fixture struct {
	db   *muxdb.MuxDB
	root primitives.StateRoot
	code []byte
}

func newFixture(t *testing.T) *fixture {
	db := muxdb.NewMem()
	t.Cleanup(func() { db.Close() })

	su, err := state.New(db, primitives.StateRoot{})
	require.NoError(t, err)

	code := state.NewContractCode(contractCode())
	su.SetCode(contractID, code.Code)
	su.SetAccount(contractID, &state.Account{
		Amount:       primitives.NewBalance(100),
		CodeHash:     code.Hash,
		StorageUsage: uint64(len(code.Code)) + 10,
	})
	su.SetData(contractID, []byte("a"), []byte("1"))
	su.SetData(contractID, []byte("ab"), []byte("2"))
	su.SetData(contractID, []byte("b"), []byte("3"))
	su.SetData(contractID+"x", []byte("a"), []byte("4"))
	su.SetAccessKey(contractID, testKey(2), &state.AccessKey{Nonce: 7, Permission: state.FullAccess()})
	su.SetAccessKey(contractID, testKey(1), state.FullAccessKey())

	su.SetAccount(aliceID, &state.Account{Amount: primitives.NewBalance(5)})

	root, err := su.Commit(1)
	require.NoError(t, err)
	return &fixture{db: db, root: root, code: code.Code}
}

func (f *fixture) state(t *testing.T) *state.TrieUpdate {
	su, err := state.New(f.db, f.root)
	require.NoError(t, err)
	return su
}

func (f *fixture) call(t *testing.T, v *TrieViewer, su *state.TrieUpdate, id primitives.AccountID, method string) ([]byte, []string, error) {
	viewState := &ViewApplyState{
		BlockHeight:            1,
		CurrentProtocolVersion: primitives.ProtocolVersionLatest,
	}
	return v.CallFunction(context.Background(), su, viewState, id, method, nil, &runtime.StaticEpochInfo{})
}

func TestViewAccount(t *testing.T) {
	f := newFixture(t)
	v := Default()

	acc, err := v.ViewAccount(f.state(t), aliceID)
	require.NoError(t, err)
	assert.Equal(t, primitives.NewBalance(5), acc.Amount)

	_, err = v.ViewAccount(f.state(t), missingID)
	var notExist *AccountDoesNotExistError
	require.ErrorAs(t, err, &notExist)
	assert.Equal(t, missingID, notExist.RequestedAccountID)
	assert.True(t, IsNotFound(err))
}

func TestViewAccountRepeatable(t *testing.T) {
	f := newFixture(t)
	v := Default()

	su := f.state(t)
	first, err := v.ViewAccount(su, contractID)
	require.NoError(t, err)
	second, err := v.ViewAccount(su, contractID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, f.root, su.Root())
}

func TestViewContractCode(t *testing.T) {
	f := newFixture(t)
	v := Default()

	code, err := v.ViewContractCode(f.state(t), contractID)
	require.NoError(t, err)
	assert.Equal(t, f.code, code.Code)

	_, err = v.ViewContractCode(f.state(t), aliceID)
	var noCode *NoContractCodeError
	require.ErrorAs(t, err, &noCode)
	assert.Equal(t, aliceID, noCode.ContractAccountID)

	_, err = v.ViewContractCode(f.state(t), missingID)
	assert.IsType(t, &AccountDoesNotExistError{}, err)
}

func TestViewAccessKey(t *testing.T) {
	f := newFixture(t)
	v := Default()

	key, err := v.ViewAccessKey(f.state(t), contractID, testKey(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), key.Nonce)
	assert.True(t, key.Permission.IsFullAccess())

	_, err = v.ViewAccessKey(f.state(t), contractID, testKey(3))
	var notExist *AccessKeyDoesNotExistError
	require.ErrorAs(t, err, &notExist)
	assert.True(t, notExist.PublicKey.Equal(testKey(3)))
	assert.True(t, IsNotFound(err))
}

func TestViewAccessKeys(t *testing.T) {
	f := newFixture(t)
	v := Default()

	keys, err := v.ViewAccessKeys(f.state(t), contractID)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.True(t, keys[0].PublicKey.Equal(testKey(1)))
	assert.True(t, keys[1].PublicKey.Equal(testKey(2)))
	assert.Equal(t, uint64(7), keys[1].AccessKey.Nonce)

	keys, err = v.ViewAccessKeys(f.state(t), aliceID)
	require.NoError(t, err)
	assert.Empty(t, keys)

	t.Run("staged keys are visible", func(t *testing.T) {
		su := f.state(t)
		su.SetAccessKey(aliceID, testKey(9), state.FullAccessKey())
		keys, err := v.ViewAccessKeys(su, aliceID)
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.True(t, keys[0].PublicKey.Equal(testKey(9)))
	})

	t.Run("corrupt public key", func(t *testing.T) {
		su := f.state(t)
		su.Set(append(state.AccessKeyPrefix(contractID), 0xff), state.EncodeAccessKey(state.FullAccessKey()))
		_, err := v.ViewAccessKeys(su, contractID)
		var internal *InternalError
		require.ErrorAs(t, err, &internal)
		kind, ok := KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, Internal, kind)
	})

	t.Run("corrupt record", func(t *testing.T) {
		su := f.state(t)
		su.Set(state.AccessKeyKey(contractID, testKey(5)), []byte{0x01, 0x02})
		_, err := v.ViewAccessKeys(su, contractID)
		assert.IsType(t, &InternalError{}, err)
	})
}

func decodeItems(t *testing.T, res *ViewStateResult) map[string]string {
	items := make(map[string]string)
	for _, item := range res.Values {
		k, err := base64.StdEncoding.DecodeString(item.Key)
		require.NoError(t, err)
		v, err := base64.StdEncoding.DecodeString(item.Value)
		require.NoError(t, err)
		assert.Empty(t, item.Proof)
		items[string(k)] = string(v)
	}
	return items
}

func TestViewState(t *testing.T) {
	f := newFixture(t)
	v := Default()

	res, err := v.ViewState(f.state(t), contractID, []byte("a"))
	require.NoError(t, err)
	require.Len(t, res.Values, 2)
	assert.Equal(t, map[string]string{"a": "1", "ab": "2"}, decodeItems(t, res))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("a")), res.Values[0].Key)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ab")), res.Values[1].Key)
	assert.NotNil(t, res.Proof)
	assert.Empty(t, res.Proof)

	res, err = v.ViewState(f.state(t), contractID, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "ab": "2", "b": "3"}, decodeItems(t, res))

	res, err = v.ViewState(f.state(t), contractID, []byte("c"))
	require.NoError(t, err)
	assert.Empty(t, res.Values)

	_, err = v.ViewState(f.state(t), missingID, nil)
	assert.IsType(t, &AccountDoesNotExistError{}, err)
}

func TestViewStateSizeLimit(t *testing.T) {
	f := newFixture(t)

	var zero uint64
	_, err := New(&zero, nil).ViewState(f.state(t), contractID, nil)
	var tooLarge *AccountStateTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, contractID, tooLarge.RequestedAccountID)
	kind, _ := KindOf(err)
	assert.Equal(t, ResourceExceeded, kind)

	// code bytes do not count
	limit := uint64(10)
	_, err = New(&limit, nil).ViewState(f.state(t), contractID, nil)
	assert.NoError(t, err)

	_, err = Default().ViewState(f.state(t), contractID, nil)
	assert.NoError(t, err)
}

func TestCallFunction(t *testing.T) {
	f := newFixture(t)
	v := Default()

	result, logs, err := f.call(t, v, f.state(t), contractID, "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), result)
	assert.Equal(t, []string{"hello"}, logs)

	result, logs, err = f.call(t, v, f.state(t), contractID, "noop")
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
	assert.Empty(t, logs)

	result, _, err = f.call(t, v, f.state(t), contractID, "get_a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), result)

	result, _, err = f.call(t, v, f.state(t), contractID, "seed")
	require.NoError(t, err)
	assert.Equal(t, f.root.Bytes(), result)
}

func TestCallFunctionErrors(t *testing.T) {
	f := newFixture(t)
	v := Default()

	_, _, err := f.call(t, v, f.state(t), missingID, "hello")
	assert.IsType(t, &AccountDoesNotExistError{}, err)

	_, logs, err := f.call(t, v, f.state(t), contractID, "fail")
	var vmErr *VMError
	require.ErrorAs(t, err, &vmErr)
	assert.Contains(t, vmErr.Message, "wasm execution failed with error: ")
	assert.Contains(t, vmErr.Message, "unreachable")
	assert.Equal(t, []string{"hello"}, logs)

	_, _, err = f.call(t, v, f.state(t), contractID, "signer")
	require.ErrorAs(t, err, &vmErr)
	assert.Contains(t, vmErr.Message, "prohibited in view: signer_account_id")

	_, _, err = f.call(t, v, f.state(t), contractID, "missing")
	require.ErrorAs(t, err, &vmErr)
	assert.Contains(t, vmErr.Message, "method not found")

	_, _, err = f.call(t, v, f.state(t), aliceID, "hello")
	require.ErrorAs(t, err, &vmErr)
	assert.Contains(t, vmErr.Message, "code does not exist")
	kind, _ := KindOf(err)
	assert.Equal(t, VM, kind)
}

func TestCallFunctionGasCeiling(t *testing.T) {
	f := newFixture(t)

	gas := primitives.Gas(5_000_000_000_000)
	v := New(nil, &gas)
	assert.Equal(t, gas, v.MaxGasBurntView())

	_, _, err := f.call(t, v, f.state(t), contractID, "burn")
	var vmErr *VMError
	require.ErrorAs(t, err, &vmErr)
	assert.Contains(t, vmErr.Message, "gas limit exceeded")
}

func TestCallFunctionInfiniteLoop(t *testing.T) {
	f := newFixture(t)

	gas := primitives.Gas(5_000_000_000_000)
	v := New(nil, &gas)

	// the loop makes no explicit gas calls
	_, _, err := f.call(t, v, f.state(t), contractID, "spin")
	var vmErr *VMError
	require.ErrorAs(t, err, &vmErr)
	assert.Contains(t, vmErr.Message, "gas limit exceeded")
}

func TestCallFunctionContextDone(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	viewState := &ViewApplyState{CurrentProtocolVersion: primitives.ProtocolVersionLatest}
	_, _, err := Default().CallFunction(ctx, f.state(t), viewState, contractID, "hello", nil, &runtime.StaticEpochInfo{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorAs(t, err, new(*VMError))
}

func TestCallFunctionFailureDiscardsWrites(t *testing.T) {
	f := newFixture(t)
	v := Default()

	su := f.state(t)
	_, _, err := f.call(t, v, su, contractID, "put_fail")
	var vmErr *VMError
	require.ErrorAs(t, err, &vmErr)

	value, err := su.GetData(contractID, []byte("fresh"))
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = f.state(t).GetData(contractID, []byte("fresh"))
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestCallFunctionDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	v := Default()

	su := f.state(t)
	_, _, err := f.call(t, v, su, contractID, "put")
	require.NoError(t, err)

	value, err := su.GetData(contractID, []byte("fresh"))
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.Equal(t, f.root, su.Root())

	value, err = f.state(t).GetData(contractID, []byte("fresh"))
	require.NoError(t, err)
	assert.Nil(t, value)

	res, err := v.ViewState(su, contractID, []byte("fresh"))
	require.NoError(t, err)
	assert.Empty(t, res.Values)
}

func TestCallFunctionWithCache(t *testing.T) {
	f := newFixture(t)
	v := Default()

	c, err := cache.NewContractCache(4)
	require.NoError(t, err)
	viewState := &ViewApplyState{CurrentProtocolVersion: primitives.ProtocolVersionLatest, Cache: c}

	for range 3 {
		result, _, err := v.CallFunction(context.Background(), f.state(t), viewState, contractID, "hello", nil, &runtime.StaticEpochInfo{})
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), result)
	}
	hit, miss := c.Stats()
	assert.Equal(t, int64(1), miss)
	assert.Equal(t, int64(2), hit)
}

func TestConcurrentQueries(t *testing.T) {
	f := newFixture(t)
	v := Default()

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			su, err := state.New(f.db, f.root)
			if err != nil {
				return err
			}
			if _, err := v.ViewAccount(su, contractID); err != nil {
				return err
			}
			if _, err := v.ViewState(su, contractID, []byte("a")); err != nil {
				return err
			}
			_, _, err = f.call(t, v, su, contractID, "hello")
			return err
		})
	}
	assert.NoError(t, g.Wait())
}

func TestNewFromConfig(t *testing.T) {
	limit := uint64(42)
	gas := primitives.Gas(1000)
	v := NewFromConfig(Config{StateSizeLimit: &limit, MaxGasBurntView: &gas})
	require.NotNil(t, v.StateSizeLimit())
	assert.Equal(t, limit, *v.StateSizeLimit())
	assert.Equal(t, gas, v.MaxGasBurntView())

	v = Default()
	assert.Nil(t, v.StateSizeLimit())
	assert.Equal(t, defaultConfig().WasmConfig.LimitConfig.MaxGasBurnt, v.MaxGasBurntView())
}
