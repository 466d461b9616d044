// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trieview/trieview/primitives"
)

// CompilationErrorKind tells why a contract could not be prepared for execution.
type CompilationErrorKind int

const (
	CodeDoesNotExist CompilationErrorKind = iota
	PrepareError
	WasmCompileError
)

// CompilationError is returned when the contract cannot be loaded or compiled.
type CompilationError struct {
	Kind      CompilationErrorKind
	AccountID primitives.AccountID // set for CodeDoesNotExist
	Msg       string
}

func (e *CompilationError) Error() string {
	switch e.Kind {
	case CodeDoesNotExist:
		return fmt.Sprintf("compilation error: code does not exist: account %v", e.AccountID)
	case PrepareError:
		return "compilation error: prepare: " + e.Msg
	default:
		return "compilation error: " + e.Msg
	}
}

// MethodResolveErrorKind tells why the called method could not be resolved.
type MethodResolveErrorKind int

const (
	MethodEmptyName MethodResolveErrorKind = iota
	MethodNotFound
	MethodInvalidSignature
)

// MethodResolveError is returned when the method is not a callable export.
type MethodResolveError struct {
	Kind MethodResolveErrorKind
}

func (e *MethodResolveError) Error() string {
	switch e.Kind {
	case MethodEmptyName:
		return "method resolve error: empty method name"
	case MethodNotFound:
		return "method resolve error: method not found"
	default:
		return "method resolve error: invalid method signature"
	}
}

// WasmTrapKind classifies traps raised by the wasm engine.
type WasmTrapKind int

const (
	TrapUnreachable WasmTrapKind = iota
	TrapIncorrectCallIndirectSignature
	TrapMemoryOutOfBounds
	TrapCallIndirectOOB
	TrapIllegalArithmetic
	TrapStackOverflow
	TrapGeneric
)

var trapNames = [...]string{
	"unreachable",
	"incorrect call indirect signature",
	"memory out of bounds",
	"call indirect out of bounds",
	"illegal arithmetic",
	"stack overflow",
	"generic trap",
}

// WasmTrap is returned when contract execution traps.
type WasmTrap struct {
	Kind WasmTrapKind
	Msg  string
}

func (e *WasmTrap) Error() string {
	if e.Msg == "" {
		return "wasm trap: " + trapNames[e.Kind]
	}
	return "wasm trap: " + trapNames[e.Kind] + ": " + e.Msg
}

// HostErrorKind enumerates failures raised by host functions.
type HostErrorKind int

const (
	GuestPanic HostErrorKind = iota
	BadUTF8
	GasExceeded
	GasLimitExceeded
	IntegerOverflow
	MemoryAccessViolation
	InvalidRegisterID
	InvalidPromiseIndex
	InvalidPromiseResultIndex
	InvalidAccountID
	ProhibitedInView
	NumberOfLogsExceeded
	TotalLogLengthExceeded
	KeyLengthExceeded
	ValueLengthExceeded
	ReturnedValueLengthExceeded
	NumberPromisesExceeded
)

var hostErrorNames = [...]string{
	"guest panic",
	"bad utf8",
	"gas exceeded",
	"gas limit exceeded",
	"integer overflow",
	"memory access violation",
	"invalid register id",
	"invalid promise index",
	"invalid promise result index",
	"invalid account id",
	"prohibited in view",
	"number of logs exceeded",
	"total log length exceeded",
	"key length exceeded",
	"value length exceeded",
	"returned value length exceeded",
	"number of promises exceeded",
}

func (k HostErrorKind) String() string {
	if k >= 0 && int(k) < len(hostErrorNames) {
		return hostErrorNames[k]
	}
	return fmt.Sprintf("HostErrorKind(%d)", int(k))
}

// HostError is returned when a host function rejects a contract request.
type HostError struct {
	Kind HostErrorKind
	// Method is the host function for ProhibitedInView.
	Method string
	// Msg is the panic message for GuestPanic.
	Msg string
	// Length and Limit are set for the size limit kinds.
	Length, Limit uint64
}

func newHostError(kind HostErrorKind) *HostError {
	return &HostError{Kind: kind}
}

func (e *HostError) Error() string {
	switch e.Kind {
	case GuestPanic:
		return "host error: guest panic: " + e.Msg
	case ProhibitedInView:
		return "host error: prohibited in view: " + e.Method
	case NumberOfLogsExceeded, TotalLogLengthExceeded, KeyLengthExceeded,
		ValueLengthExceeded, ReturnedValueLengthExceeded, NumberPromisesExceeded:
		return fmt.Sprintf("host error: %v: %d > %d", e.Kind, e.Length, e.Limit)
	default:
		return "host error: " + e.Kind.String()
	}
}

// ExternalError wraps a failure of External, typically a storage read.
type ExternalError struct {
	Cause error
}

func (e *ExternalError) Error() string {
	return "external: " + e.Cause.Error()
}

func (e *ExternalError) Unwrap() error {
	return e.Cause
}

// IsFunctionCallError returns whether err is a contract level failure rather
// than a failure of the node.
func IsFunctionCallError(err error) bool {
	var (
		compErr    *CompilationError
		resolveErr *MethodResolveError
		trap       *WasmTrap
		hostErr    *HostError
	)
	return errors.As(err, &compErr) ||
		errors.As(err, &resolveErr) ||
		errors.As(err, &trap) ||
		errors.As(err, &hostErr)
}
