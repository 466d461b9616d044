// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package viewer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trieview/trieview/log"
	"github.com/trieview/trieview/metrics"
	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/runtime"
	"github.com/trieview/trieview/state"
	"github.com/trieview/trieview/vm"
	"github.com/trieview/trieview/vm/wasmvm"
)

var (
	logger = log.WithContext("pkg", "viewer")

	metricQueryCount   = metrics.LazyLoadCounterVec("view_query_count", []string{"op", "result"})
	metricCallDuration = metrics.LazyLoadHistogram("view_call_duration_ms", metrics.BucketQueryDuration)

	defaultConfig = sync.OnceValue(params.Default)
	defaultVM     = sync.OnceValue(func() vm.VM { return wasmvm.New() })
)

// view calls running longer are logged as warnings
const slowCallThreshold = time.Second

// ViewApplyState is the block environment of a view call.
type ViewApplyState struct {
	BlockHeight            primitives.BlockHeight
	PrevBlockHash          primitives.CryptoHash
	BlockHash              primitives.CryptoHash
	EpochID                primitives.EpochID
	EpochHeight            primitives.EpochHeight
	BlockTimestamp         uint64
	CurrentProtocolVersion primitives.ProtocolVersion
	// Config applied to the call. Nil means params.Default().
	Config *params.RuntimeConfig
	// Cache of compiled contracts. May be nil.
	Cache vm.CompiledContractCache
}

// StateItem is one contract storage entry. Key and value are base64 encoded.
type StateItem struct {
	Key   string   `json:"key"`
	Value string   `json:"value"`
	Proof []string `json:"proof"`
}

// ViewStateResult is the result of ViewState.
// Proofs are not generated yet and are always empty.
type ViewStateResult struct {
	Values []StateItem `json:"values"`
	Proof  []string    `json:"proof"`
}

// AccessKeyInfo is an access key with its public key.
type AccessKeyInfo struct {
	PublicKey primitives.PublicKey `json:"public_key"`
	AccessKey *state.AccessKey     `json:"access_key"`
}

// TrieViewer answers read-only queries against a state snapshot.
// It is immutable and safe for concurrent use.
type TrieViewer struct {
	// Upper bound of the byte size of contract state that is still viewable. Nil is no limit.
	stateSizeLimit *uint64
	// Gas limit of call_function queries.
	maxGasBurntView primitives.Gas
	runtime         *runtime.Runtime
}

// New creates a viewer. A nil maxGasBurntView takes the max gas burnt of the default config.
func New(stateSizeLimit *uint64, maxGasBurntView *primitives.Gas) *TrieViewer {
	gas := defaultConfig().WasmConfig.LimitConfig.MaxGasBurnt
	if maxGasBurntView != nil {
		gas = *maxGasBurntView
	}
	var limit *uint64
	if stateSizeLimit != nil {
		l := *stateSizeLimit
		limit = &l
	}
	return &TrieViewer{
		stateSizeLimit:  limit,
		maxGasBurntView: gas,
		runtime:         runtime.New(defaultVM()),
	}
}

// Default creates a viewer without state size limit and with the default gas ceiling.
func Default() *TrieViewer {
	return New(nil, nil)
}

// NewFromConfig creates a viewer from a config.
func NewFromConfig(cfg Config) *TrieViewer {
	return New(cfg.StateSizeLimit, cfg.MaxGasBurntView)
}

// WithVM returns a copy of the viewer executing contracts with v.
func (v *TrieViewer) WithVM(machine vm.VM) *TrieViewer {
	cpy := *v
	cpy.runtime = runtime.New(machine)
	return &cpy
}

// StateSizeLimit returns the state size limit, nil if unlimited.
func (v *TrieViewer) StateSizeLimit() *uint64 {
	if v.stateSizeLimit == nil {
		return nil
	}
	l := *v.stateSizeLimit
	return &l
}

// MaxGasBurntView returns the gas ceiling of view calls.
func (v *TrieViewer) MaxGasBurntView() primitives.Gas {
	return v.maxGasBurntView
}

func observe(op string, err error) {
	result := "ok"
	if kind, ok := KindOf(err); ok {
		result = kind.String()
	} else if err != nil {
		result = "error"
	}
	metricQueryCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
}

// ViewAccount returns the account record.
func (v *TrieViewer) ViewAccount(su *state.TrieUpdate, id primitives.AccountID) (acc *state.Account, err error) {
	defer func() { observe("view_account", err) }()
	return v.viewAccount(su, id)
}

func (v *TrieViewer) viewAccount(su *state.TrieUpdate, id primitives.AccountID) (*state.Account, error) {
	acc, err := su.GetAccount(id)
	if err != nil {
		return nil, &StorageError{err}
	}
	if acc == nil {
		return nil, &AccountDoesNotExistError{RequestedAccountID: id}
	}
	return acc, nil
}

// ViewContractCode returns the contract deployed to the account.
func (v *TrieViewer) ViewContractCode(su *state.TrieUpdate, id primitives.AccountID) (code *state.ContractCode, err error) {
	defer func() { observe("view_contract_code", err) }()

	acc, err := v.viewAccount(su, id)
	if err != nil {
		return nil, err
	}
	code, err = su.GetCode(id, acc.CodeHash)
	if err != nil {
		return nil, &StorageError{err}
	}
	if code == nil {
		return nil, &NoContractCodeError{ContractAccountID: id}
	}
	return code, nil
}

// ViewAccessKey returns one access key of the account.
func (v *TrieViewer) ViewAccessKey(su *state.TrieUpdate, id primitives.AccountID, pk primitives.PublicKey) (key *state.AccessKey, err error) {
	defer func() { observe("view_access_key", err) }()

	key, err = su.GetAccessKey(id, pk)
	if err != nil {
		return nil, &StorageError{err}
	}
	if key == nil {
		return nil, &AccessKeyDoesNotExistError{PublicKey: pk}
	}
	return key, nil
}

// ViewAccessKeys returns all access keys of the account in key order.
func (v *TrieViewer) ViewAccessKeys(su *state.TrieUpdate, id primitives.AccountID) (keys []AccessKeyInfo, err error) {
	defer func() { observe("view_access_keys", err) }()

	it, err := su.Iter(state.AccessKeyPrefix(id))
	if err != nil {
		return nil, &StorageError{err}
	}
	keys = []AccessKeyInfo{}
	for it.Next() {
		pk, err := state.ParseAccessKeyPublicKey(it.Key(), id)
		if err != nil {
			return nil, &InternalError{fmt.Sprintf("unexpected invalid public key %x received from store", it.Key())}
		}
		raw, err := su.Get(it.Key())
		if err != nil {
			return nil, &StorageError{err}
		}
		if raw == nil {
			return nil, &InternalError{"unexpected missing key from iterator"}
		}
		key, err := state.DecodeAccessKey(raw)
		if err != nil {
			return nil, &InternalError{fmt.Sprintf("unexpected invalid access key of %v: %v", pk, err)}
		}
		keys = append(keys, AccessKeyInfo{PublicKey: pk, AccessKey: key})
	}
	if err := it.Err(); err != nil {
		return nil, &StorageError{err}
	}
	return keys, nil
}

// ViewState returns the contract storage entries of the account whose keys start with prefix.
// Keys are relative to the account.
func (v *TrieViewer) ViewState(su *state.TrieUpdate, id primitives.AccountID, prefix []byte) (res *ViewStateResult, err error) {
	defer func() { observe("view_state", err) }()

	acc, err := v.viewAccount(su, id)
	if err != nil {
		return nil, err
	}
	code, err := su.GetCode(id, acc.CodeHash)
	if err != nil {
		return nil, &StorageError{err}
	}
	var codeLen uint64
	if code != nil {
		codeLen = uint64(len(code.Code))
	}
	if v.stateSizeLimit != nil {
		usage := acc.StorageUsage - min(acc.StorageUsage, codeLen)
		if usage > *v.stateSizeLimit {
			return nil, &AccountStateTooLargeError{RequestedAccountID: id}
		}
	}

	query := state.ContractDataKey(id, prefix)
	accSepLen := len(query) - len(prefix)
	it, err := su.TrieIterator(query)
	if err != nil {
		return nil, &StorageError{err}
	}
	values := []StateItem{}
	for it.Next() {
		key := it.Key()
		if !bytes.HasPrefix(key, query) {
			break
		}
		values = append(values, StateItem{
			Key:   base64.StdEncoding.EncodeToString(key[accSepLen:]),
			Value: base64.StdEncoding.EncodeToString(it.Value()),
			Proof: []string{},
		})
	}
	if err := it.Err(); err != nil {
		return nil, &StorageError{err}
	}
	return &ViewStateResult{Values: values, Proof: []string{}}, nil
}

// CallFunction executes a contract method in view mode and returns its result and logs.
// Logs are returned on failure too. Writes of the contract are discarded.
// A cancelled or expired ctx is returned as context.Canceled or
// context.DeadlineExceeded, not wrapped in a VMError.
func (v *TrieViewer) CallFunction(
	ctx context.Context,
	su *state.TrieUpdate,
	viewState *ViewApplyState,
	contractID primitives.AccountID,
	method string,
	args []byte,
	epochInfo runtime.EpochInfoProvider,
) (result []byte, logs []string, err error) {
	defer func() { observe("call_function", err) }()

	start := time.Now()
	root := su.Root()
	account, err := v.viewAccount(su, contractID)
	if err != nil {
		return nil, nil, err
	}

	checkpoint := su.NewCheckpoint()
	defer su.RevertTo(checkpoint)

	config := viewState.Config
	if config == nil {
		config = defaultConfig()
	}
	// views can not impersonate another account
	originatorID := contractID
	publicKey := primitives.EmptyPublicKey(primitives.ED25519)
	var emptyHash primitives.CryptoHash

	ext := runtime.NewRuntimeExt(
		su,
		contractID,
		emptyHash,
		viewState.EpochID,
		viewState.PrevBlockHash,
		viewState.BlockHash,
		epochInfo,
		viewState.CurrentProtocolVersion,
	)
	// the seed is deterministic, not a source of secure randomness
	applyState := &runtime.ApplyState{
		BlockIndex:             viewState.BlockHeight,
		PrevBlockHash:          viewState.PrevBlockHash,
		BlockHash:              viewState.BlockHash,
		EpochID:                viewState.EpochID,
		EpochHeight:            viewState.EpochHeight,
		GasPrice:               primitives.NewBalance(0),
		BlockTimestamp:         viewState.BlockTimestamp,
		RandomSeed:             root,
		CurrentProtocolVersion: viewState.CurrentProtocolVersion,
		Config:                 config,
		Cache:                  viewState.Cache,
	}
	receipt := &runtime.ActionReceipt{
		SignerID:        originatorID,
		SignerPublicKey: publicKey,
		GasPrice:        primitives.NewBalance(0),
	}
	action := &runtime.FunctionCallAction{
		MethodName: method,
		Args:       args,
		Gas:        v.maxGasBurntView,
		Deposit:    primitives.NewBalance(0),
	}
	outcome, err := v.runtime.ExecuteFunctionCall(
		ctx,
		applyState,
		ext,
		account,
		originatorID,
		receipt,
		nil,
		action,
		emptyHash,
		true,
		&vm.ViewConfig{MaxGasBurnt: v.maxGasBurntView},
	)

	elapsed := time.Since(start)
	metricCallDuration().Observe(elapsed.Milliseconds())
	if elapsed >= slowCallThreshold {
		logger.Warn("slow view call", "contract", contractID, "method", method, "elapsed", elapsed)
	}

	if outcome != nil {
		logs = outcome.Logs
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, logs, err
		}
		message := fmt.Sprintf("wasm execution failed with error: %v", err)
		logger.Debug(message, "elapsed", elapsed)
		return nil, logs, &VMError{Message: message}
	}
	logger.Debug("result of execution", "elapsed", elapsed, "outcome", outcome)
	if data := outcome.ReturnData.Bytes(); data != nil {
		return data, logs, nil
	}
	return []byte{}, logs, nil
}
