// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"fmt"

	"github.com/trieview/trieview/primitives"
)

// ReturnDataKind distinguishes what a call returned.
type ReturnDataKind int

const (
	ReturnNone ReturnDataKind = iota
	ReturnValue
	ReturnReceiptIndex
)

// ReturnData is the result of a call: a value, the index of a receipt whose
// result becomes the call's result, or nothing.
type ReturnData struct {
	Kind         ReturnDataKind
	Value        []byte
	ReceiptIndex uint64
}

// Bytes returns the returned value, or nil unless the call returned one.
func (r ReturnData) Bytes() []byte {
	if r.Kind == ReturnValue {
		return r.Value
	}
	return nil
}

func (r ReturnData) String() string {
	switch r.Kind {
	case ReturnValue:
		return fmt.Sprintf("Value(%x)", r.Value)
	case ReturnReceiptIndex:
		return fmt.Sprintf("ReceiptIndex(%d)", r.ReceiptIndex)
	default:
		return "None"
	}
}

// Receipt is an action receipt created by the contract.
type Receipt struct {
	ReceiverID primitives.AccountID
}

// PromiseStatus is the state of a promise result handed to a callback.
type PromiseStatus int

const (
	PromiseNotReady PromiseStatus = iota
	PromiseSuccessful
	PromiseFailed
)

// PromiseResult is the result of a promise the call depends on.
type PromiseResult struct {
	Status PromiseStatus
	Data   []byte
}

// Outcome is what a contract call produced.
type Outcome struct {
	Balance      primitives.Balance
	StorageUsage primitives.StorageUsage
	ReturnData   ReturnData
	BurntGas     primitives.Gas
	UsedGas      primitives.Gas
	Logs         []string
	Receipts     []Receipt
}

func (o *Outcome) String() string {
	return fmt.Sprintf("Outcome{return=%v burnt=%d used=%d logs=%d receipts=%d}",
		o.ReturnData, o.BurntGas, o.UsedGas, len(o.Logs), len(o.Receipts))
}
