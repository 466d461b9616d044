// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes actions of receipts against the state.
package runtime

import (
	"context"

	"github.com/trieview/trieview/log"
	"github.com/trieview/trieview/primitives"
	"github.com/trieview/trieview/state"
	"github.com/trieview/trieview/vm"
)

var logger = log.WithContext("pkg", "runtime")

// Runtime executes function calls with a VM.
type Runtime struct {
	vm vm.VM
}

// New creates a runtime running contracts with the given VM.
func New(v vm.VM) *Runtime {
	return &Runtime{vm: v}
}

// ExecuteFunctionCall runs the method of a function call action on the contract of
// the external's account. It serves both receipt application and view calls, which
// pass a non-nil viewConfig.
//
// Errors are those of vm.VM.Run. A missing contract fails with a CompilationError.
func (rt *Runtime) ExecuteFunctionCall(
	ctx context.Context,
	applyState *ApplyState,
	ext *RuntimeExt,
	account *state.Account,
	predecessorID primitives.AccountID,
	receipt *ActionReceipt,
	promiseResults []vm.PromiseResult,
	action *FunctionCallAction,
	actionHash primitives.CryptoHash,
	isLastAction bool,
	viewConfig *vm.ViewConfig,
) (*vm.Outcome, error) {
	accountID := ext.AccountID()
	code, err := ext.State().GetCode(accountID, account.CodeHash)
	if err != nil {
		return nil, &vm.ExternalError{Cause: err}
	}
	if code == nil {
		return nil, &vm.CompilationError{Kind: vm.CodeDoesNotExist, AccountID: accountID}
	}

	// only the last action's result goes to the receivers
	var outputDataReceivers []primitives.AccountID
	if isLastAction {
		for _, r := range receipt.OutputDataReceivers {
			outputDataReceivers = append(outputDataReceivers, r.ReceiverID)
		}
	}

	vmContext := &vm.Context{
		CurrentAccountID:     accountID,
		SignerAccountID:      receipt.SignerID,
		SignerAccountPK:      receipt.SignerPublicKey.Bytes(),
		PredecessorAccountID: predecessorID,
		Input:                action.Args,
		BlockIndex:           applyState.BlockIndex,
		BlockTimestamp:       applyState.BlockTimestamp,
		EpochHeight:          applyState.EpochHeight,
		AccountBalance:       account.Amount,
		AccountLockedBalance: account.Locked,
		StorageUsage:         account.StorageUsage,
		AttachedDeposit:      action.Deposit,
		PrepaidGas:           action.Gas,
		RandomSeed:           applyState.RandomSeed.Bytes(),
		ViewConfig:           viewConfig,
		OutputDataReceivers:  outputDataReceivers,
	}

	logger.Trace("execute function call",
		"account", accountID,
		"method", action.MethodName,
		"actionHash", actionHash.AbbrevString(),
		"view", viewConfig != nil)

	return rt.vm.Run(
		ctx,
		code,
		action.MethodName,
		ext,
		vmContext,
		&applyState.Config.WasmConfig,
		&applyState.Config.TransactionCosts,
		promiseResults,
		applyState.CurrentProtocolVersion,
		applyState.Cache,
	)
}
