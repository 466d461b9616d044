// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wasmvm

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/trieview/trieview/cache"
	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/state"
	"github.com/trieview/trieview/test/wasmgen"
	"github.com/trieview/trieview/vm"
)

type memExternal map[string][]byte

func (e memExternal) StorageSet(key, value []byte) error {
	e[string(key)] = append([]byte(nil), value...)
	return nil
}

func (e memExternal) StorageGet(key []byte) ([]byte, error) { return e[string(key)], nil }

func (e memExternal) StorageRemove(key []byte) error {
	delete(e, string(key))
	return nil
}

func (e memExternal) StorageHasKey(key []byte) (bool, error) {
	_, ok := e[string(key)]
	return ok, nil
}

func (e memExternal) ValidatorStake(primitives.AccountID) (*primitives.Balance, error) {
	return nil, nil
}

func (e memExternal) ValidatorTotalStake() (primitives.Balance, error) {
	return primitives.NewBalance(0), nil
}

func (e memExternal) GenerateDataID() primitives.CryptoHash { return primitives.CryptoHash{} }

var (
	i64   = wasmgen.I64
	i64x1 = []wasmgen.ValType{i64}
	i64x2 = []wasmgen.ValType{i64, i64}
	i64x3 = []wasmgen.ValType{i64, i64, i64}
	i64x5 = []wasmgen.ValType{i64, i64, i64, i64, i64}
)

func testContract() *state.ContractCode {
	m := &wasmgen.Module{
		Imports: []wasmgen.Import{
			wasmgen.Env("log_utf8", i64x2),
			wasmgen.Env("value_return", i64x2),
			wasmgen.Env("signer_account_id", i64x1),
			wasmgen.Env("gas", []wasmgen.ValType{wasmgen.I32}),
			wasmgen.Env("storage_write", i64x5, i64),
			wasmgen.Env("storage_read", i64x3, i64),
			wasmgen.Env("read_register", i64x2),
		},
		MemoryPages: 1,
		Data: []wasmgen.Data{
			{Offset: 0, Bytes: []byte("hello")},
			{Offset: 16, Bytes: []byte("key")},
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
		{Export: "trap", Body: wasmgen.Code(call("log_utf8", 5, 0), wasmgen.Unreachable())},
		{Export: "div", Body: wasmgen.I32DivByZero()},
		{Export: "oob", Body: wasmgen.Code(wasmgen.I32Load8(1<<20), wasmgen.Drop())},
		{Export: "burn", Body: wasmgen.Loop(wasmgen.I32Const(1_000_000), wasmgen.Call(m.FuncIndex("gas")))},
		{Export: "spin", Body: wasmgen.Loop()},
		{Export: "signer", Body: call("signer_account_id", 0)},
		{Export: "with_params", Type: wasmgen.FuncType{Params: []wasmgen.ValType{wasmgen.I32}}},
		{Export: "write", Body: wasmgen.Code(call("storage_write", 3, 16, 5, 0, 0), wasmgen.Drop())},
		{Export: "read", Body: wasmgen.Code(
			call("storage_read", 3, 16, 1), wasmgen.Drop(),
			call("read_register", 1, 32),
			call("value_return", 5, 32),
		)},
	}
	return state.NewContractCode(m.Encode())
}

type runner struct {
	vm     *VM
	code   *state.ContractCode
	config *params.RuntimeConfig
	cache  vm.CompiledContractCache
}

func newRunner(t *testing.T) *runner {
	v := New()
	t.Cleanup(func() { v.Close(context.Background()) })
	c, err := cache.NewContractCache(8)
	require.NoError(t, err)
	return &runner{vm: v, code: testContract(), config: params.Default(), cache: c}
}

func (r *runner) context(view bool) *vm.Context {
	ctx := &vm.Context{
		CurrentAccountID:     "contract.near",
		SignerAccountID:      "contract.near",
		PredecessorAccountID: "contract.near",
		PrepaidGas:           r.config.WasmConfig.LimitConfig.MaxGasBurnt,
	}
	if view {
		ctx.ViewConfig = &vm.ViewConfig{MaxGasBurnt: r.config.WasmConfig.LimitConfig.MaxGasBurntView}
	}
	return ctx
}

func (r *runner) run(ctx context.Context, method string, vmCtx *vm.Context, ext vm.External) (*vm.Outcome, error) {
	return r.vm.Run(ctx, r.code, method, ext, vmCtx, &r.config.WasmConfig,
		&r.config.TransactionCosts, nil, primitives.ProtocolVersionLatest, r.cache)
}

func TestRunReturnsValueAndLogs(t *testing.T) {
	r := newRunner(t)
	out, err := r.run(context.Background(), "hello", r.context(true), memExternal{})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out.ReturnData.Bytes())
	assert.Equal(t, []string{"hello"}, out.Logs)
	assert.True(t, out.BurntGas > 0)
}

func TestMethodResolution(t *testing.T) {
	r := newRunner(t)
	tests := []struct {
		method string
		kind   vm.MethodResolveErrorKind
	}{
		{"", vm.MethodEmptyName},
		{"missing", vm.MethodNotFound},
		{"with_params", vm.MethodInvalidSignature},
	}
	for _, tt := range tests {
		out, err := r.run(context.Background(), tt.method, r.context(true), memExternal{})
		var resolveErr *vm.MethodResolveError
		require.True(t, errors.As(err, &resolveErr), tt.method)
		assert.Equal(t, tt.kind, resolveErr.Kind)
		assert.Nil(t, out)
	}
}

func TestTraps(t *testing.T) {
	r := newRunner(t)
	tests := []struct {
		method string
		kind   vm.WasmTrapKind
	}{
		{"trap", vm.TrapUnreachable},
		{"div", vm.TrapIllegalArithmetic},
		{"oob", vm.TrapMemoryOutOfBounds},
	}
	for _, tt := range tests {
		out, err := r.run(context.Background(), tt.method, r.context(true), memExternal{})
		var trap *vm.WasmTrap
		require.True(t, errors.As(err, &trap), "%v: %v", tt.method, err)
		assert.Equal(t, tt.kind, trap.Kind, tt.method)
		require.NotNil(t, out)
	}

	// logs written before the trap are kept
	out, _ := r.run(context.Background(), "trap", r.context(true), memExternal{})
	assert.Equal(t, []string{"hello"}, out.Logs)
}

func TestGasLimit(t *testing.T) {
	r := newRunner(t)
	vmCtx := r.context(true)
	vmCtx.ViewConfig.MaxGasBurnt = 10_000_000_000_000

	out, err := r.run(context.Background(), "burn", vmCtx, memExternal{})
	var hostErr *vm.HostError
	require.True(t, errors.As(err, &hostErr))
	assert.Equal(t, vm.GasLimitExceeded, hostErr.Kind)
	assert.Equal(t, vmCtx.ViewConfig.MaxGasBurnt, out.BurntGas)

	// the compile fee alone exceeds a tiny ceiling
	vmCtx.ViewConfig.MaxGasBurnt = 1
	out, err = r.run(context.Background(), "hello", vmCtx, memExternal{})
	require.True(t, errors.As(err, &hostErr))
	assert.Equal(t, vm.GasLimitExceeded, hostErr.Kind)
	require.NotNil(t, out)
	assert.Empty(t, out.Logs)
}

func TestProhibitedInView(t *testing.T) {
	r := newRunner(t)
	_, err := r.run(context.Background(), "signer", r.context(true), memExternal{})
	var hostErr *vm.HostError
	require.True(t, errors.As(err, &hostErr))
	assert.Equal(t, vm.ProhibitedInView, hostErr.Kind)
	assert.Equal(t, "signer_account_id", hostErr.Method)

	_, err = r.run(context.Background(), "signer", r.context(false), memExternal{})
	assert.NoError(t, err)
}

func TestStorage(t *testing.T) {
	r := newRunner(t)
	ext := memExternal{}
	out, err := r.run(context.Background(), "write", r.context(false), ext)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), ext["key"])
	assert.True(t, out.StorageUsage > 0)

	out, err = r.run(context.Background(), "read", r.context(false), ext)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out.ReturnData.Bytes())
}

func TestCompilationErrors(t *testing.T) {
	r := newRunner(t)
	r.code = state.NewContractCode([]byte("not wasm"))
	_, err := r.run(context.Background(), "hello", r.context(true), memExternal{})
	var compErr *vm.CompilationError
	require.True(t, errors.As(err, &compErr))
	assert.Equal(t, vm.WasmCompileError, compErr.Kind)

	m := &wasmgen.Module{Imports: []wasmgen.Import{{Module: "wasi", Name: "fd_write", Type: wasmgen.FuncType{}}}}
	m.Funcs = []wasmgen.Func{{Export: "main"}}
	r.code = state.NewContractCode(m.Encode())
	_, err = r.run(context.Background(), "main", r.context(true), memExternal{})
	require.True(t, errors.As(err, &compErr))
	assert.Equal(t, vm.PrepareError, compErr.Kind)
}

func TestCompiledContractCache(t *testing.T) {
	r := newRunner(t)
	c := r.cache.(*cache.ContractCache)

	for range 2 {
		_, err := r.run(context.Background(), "hello", r.context(true), memExternal{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.Len())
	hit, miss := c.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	// another VM does not reuse artifacts compiled for a different runtime
	other := New()
	defer other.Close(context.Background())
	out, err := other.Run(context.Background(), r.code, "hello", memExternal{}, r.context(true),
		&r.config.WasmConfig, &r.config.TransactionCosts, nil, primitives.ProtocolVersionLatest, r.cache)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out.ReturnData.Bytes())
}

func TestLoopWithoutGasCallsIsMetered(t *testing.T) {
	r := newRunner(t)
	vmCtx := r.context(true)

	out, err := r.run(context.Background(), "spin", vmCtx, memExternal{})
	var hostErr *vm.HostError
	require.True(t, errors.As(err, &hostErr), "%v", err)
	assert.Equal(t, vm.GasLimitExceeded, hostErr.Kind)
	assert.Equal(t, vmCtx.ViewConfig.MaxGasBurnt, out.BurntGas)
}

func TestContextCancel(t *testing.T) {
	r := newRunner(t)
	// free ops never exhaust gas, so only the deadline stops the loop
	r.config = params.Free()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.run(ctx, "spin", r.context(true), memExternal{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentRuns(t *testing.T) {
	r := newRunner(t)
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			out, err := r.run(context.Background(), "hello", r.context(true), memExternal{})
			if err != nil {
				return err
			}
			if string(out.ReturnData.Bytes()) != "hello" {
				return errors.New("unexpected result")
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}
