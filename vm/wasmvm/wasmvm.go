// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package wasmvm runs contracts in the wazero sandbox.
package wasmvm

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tetratelabs/wazero"

	"github.com/trieview/trieview/log"
	"github.com/trieview/trieview/metrics"
	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/state"
	"github.com/trieview/trieview/vm"
)

var (
	logger = log.WithContext("pkg", "wasmvm")

	metricCompileDuration = metrics.LazyLoadHistogram("vm_compile_duration_ms", metrics.BucketCompile)
	metricCalls           = metrics.LazyLoadCounterVec("vm_call_count", []string{"result"})
)

// compilerVersion is mixed into cache keys. Bump it when preparation rules change.
const compilerVersion = 2

// maxMemoryPages is the page limit of wasm32.
const maxMemoryPages = 65536

// VM executes contracts with wazero. It is safe for concurrent use.
type VM struct {
	mu       sync.Mutex
	runtimes map[uint32]wazero.Runtime // by memory page limit
	closed   bool
}

var _ vm.VM = (*VM)(nil)

// New creates a VM.
func New() *VM {
	return &VM{runtimes: make(map[uint32]wazero.Runtime)}
}

// Close releases all runtimes and the compiled contracts they hold.
func (v *VM) Close(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	var firstErr error
	for pages, rt := range v.runtimes {
		if err := rt.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(v.runtimes, pages)
	}
	return firstErr
}

func (v *VM) runtime(pages uint32) (wazero.Runtime, error) {
	if pages == 0 || pages > maxMemoryPages {
		pages = maxMemoryPages
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, errors.New("wasmvm: closed")
	}
	if rt, ok := v.runtimes[pages]; ok {
		return rt, nil
	}
	// runtimes outlive the call creating them
	bg := context.Background()
	rt := wazero.NewRuntimeWithConfig(bg, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(pages).
		WithCloseOnContextDone(true))
	if _, err := newHostModule(rt).Instantiate(bg); err != nil {
		_ = rt.Close(bg)
		return nil, errors.Wrap(err, "instantiate host module")
	}
	v.runtimes[pages] = rt
	logger.Debug("wasm runtime created", "memoryPages", pages)
	return rt, nil
}

type compiledContract struct {
	runtime wazero.Runtime
	module  wazero.CompiledModule
}

func cacheKey(codeHash primitives.CryptoHash, config *params.VMConfig) primitives.CryptoHash {
	var settings [12]byte
	binary.BigEndian.PutUint32(settings[0:], compilerVersion)
	binary.BigEndian.PutUint32(settings[4:], config.LimitConfig.MaxMemoryPages)
	binary.BigEndian.PutUint32(settings[8:], config.LimitConfig.MaxStackHeight)
	return primitives.Blake2b(codeHash.Bytes(), settings[:])
}

func (v *VM) compile(
	ctx context.Context,
	code *state.ContractCode,
	config *params.VMConfig,
	cache vm.CompiledContractCache,
) (wazero.Runtime, wazero.CompiledModule, error) {
	rt, err := v.runtime(config.LimitConfig.MaxMemoryPages)
	if err != nil {
		return nil, nil, err
	}

	key := cacheKey(code.Hash, config)
	if cache != nil {
		if artifact, ok := cache.Get(key); ok {
			// artifacts of another VM are compiled for its runtime
			if c, ok := artifact.(*compiledContract); ok && c.runtime == rt {
				return rt, c.module, nil
			}
		}
	}

	if limit := config.LimitConfig.MaxContractSize; uint64(len(code.Code)) > limit {
		return nil, nil, &vm.CompilationError{
			Kind: vm.PrepareError,
			Msg:  fmt.Sprintf("code size %d exceeds %d", len(code.Code), limit),
		}
	}

	start := time.Now()
	metered, err := instrumentGas(code.Code)
	if err != nil {
		var compileErr *vm.CompilationError
		if errors.As(err, &compileErr) {
			return nil, nil, compileErr
		}
		return nil, nil, &vm.CompilationError{Kind: vm.WasmCompileError, Msg: err.Error()}
	}
	module, err := rt.CompileModule(ctx, metered)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, &vm.CompilationError{Kind: vm.WasmCompileError, Msg: err.Error()}
	}
	if err := prepare(module); err != nil {
		_ = module.Close(ctx)
		return nil, nil, err
	}
	metricCompileDuration().Observe(time.Since(start).Milliseconds())

	if cache != nil {
		cache.Put(key, &compiledContract{runtime: rt, module: module})
	}
	return rt, module, nil
}

// prepare rejects modules that can not run in the sandbox.
func prepare(module wazero.CompiledModule) error {
	for _, fn := range module.ImportedFunctions() {
		moduleName, name, _ := fn.Import()
		if moduleName != hostModule || !hostFunctionNames[name] {
			return &vm.CompilationError{
				Kind: vm.PrepareError,
				Msg:  fmt.Sprintf("unknown import %v.%v", moduleName, name),
			}
		}
	}
	if len(module.ImportedMemories()) > 0 {
		return &vm.CompilationError{Kind: vm.PrepareError, Msg: "memory must not be imported"}
	}
	return nil
}

func resolveMethod(module wazero.CompiledModule, method string) error {
	fn, ok := module.ExportedFunctions()[method]
	if !ok {
		return &vm.MethodResolveError{Kind: vm.MethodNotFound}
	}
	if len(fn.ParamTypes()) != 0 || len(fn.ResultTypes()) != 0 {
		return &vm.MethodResolveError{Kind: vm.MethodInvalidSignature}
	}
	return nil
}

// Run implements vm.VM.
func (v *VM) Run(
	ctx context.Context,
	code *state.ContractCode,
	method string,
	ext vm.External,
	vmContext *vm.Context,
	wasmConfig *params.VMConfig,
	fees *params.RuntimeFeesConfig,
	promiseResults []vm.PromiseResult,
	protocolVersion primitives.ProtocolVersion,
	cache vm.CompiledContractCache,
) (outcome *vm.Outcome, err error) {
	defer func() {
		switch {
		case err == nil:
			metricCalls().AddWithLabel(1, map[string]string{"result": "ok"})
		case vm.IsFunctionCallError(err):
			metricCalls().AddWithLabel(1, map[string]string{"result": "failed"})
		default:
			metricCalls().AddWithLabel(1, map[string]string{"result": "error"})
		}
	}()

	if method == "" {
		return nil, &vm.MethodResolveError{Kind: vm.MethodEmptyName}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logic := vm.NewLogic(ext, vmContext, wasmConfig, fees, promiseResults, nil, protocolVersion)
	if err := logic.AddContractCompileFee(uint64(len(code.Code))); err != nil {
		return logic.Outcome(), err
	}

	rt, module, err := v.compile(ctx, code, wasmConfig, cache)
	if err != nil {
		return nil, err
	}
	if err := resolveMethod(module, method); err != nil {
		return nil, err
	}

	instance, err := rt.InstantiateModule(ctx, module, wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &vm.CompilationError{Kind: vm.PrepareError, Msg: err.Error()}
	}
	defer instance.Close(ctx)

	logic.SetMemory(instance.Memory())
	_, callErr := instance.ExportedFunction(method).Call(withLogic(ctx, logic))
	outcome = logic.Outcome()
	if callErr == nil {
		return outcome, nil
	}
	if hostErr := logic.Err(); hostErr != nil {
		return outcome, hostErr
	}
	if ctx.Err() != nil {
		return outcome, ctx.Err()
	}
	return outcome, classifyTrap(callErr)
}

var trapMessages = []struct {
	msg  string
	kind vm.WasmTrapKind
}{
	{"unreachable", vm.TrapUnreachable},
	{"out of bounds memory access", vm.TrapMemoryOutOfBounds},
	{"integer divide by zero", vm.TrapIllegalArithmetic},
	{"integer overflow", vm.TrapIllegalArithmetic},
	{"invalid conversion to integer", vm.TrapIllegalArithmetic},
	{"stack overflow", vm.TrapStackOverflow},
	{"indirect call type mismatch", vm.TrapIncorrectCallIndirectSignature},
	{"invalid table access", vm.TrapCallIndirectOOB},
}

func classifyTrap(err error) *vm.WasmTrap {
	msg, _, _ := strings.Cut(err.Error(), "\n")
	msg = strings.TrimPrefix(msg, "wasm error: ")
	for _, t := range trapMessages {
		if msg == t.msg {
			return &vm.WasmTrap{Kind: t.kind}
		}
	}
	return &vm.WasmTrap{Kind: vm.TrapGeneric, Msg: msg}
}
