// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package viewer

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trieview/trieview/primitives"
)

// ErrorKind classifies viewer errors.
type ErrorKind int

const (
	// NotFound means the requested entity is absent.
	NotFound ErrorKind = iota
	// ResourceExceeded means the query was refused for its cost.
	ResourceExceeded
	// Internal means storage holds data violating the state layout.
	Internal
	// VM means contract execution failed.
	VM
	// Storage means the state could not be read.
	Storage
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case ResourceExceeded:
		return "resource_exceeded"
	case Internal:
		return "internal"
	case VM:
		return "vm"
	case Storage:
		return "storage"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is implemented by all errors returned by TrieViewer.
type Error interface {
	error
	Kind() ErrorKind
}

// AccountDoesNotExistError is returned when the requested account is absent.
type AccountDoesNotExistError struct {
	RequestedAccountID primitives.AccountID
}

func (e *AccountDoesNotExistError) Error() string {
	return fmt.Sprintf("account %q does not exist while viewing", e.RequestedAccountID)
}

func (e *AccountDoesNotExistError) Kind() ErrorKind { return NotFound }

// NoContractCodeError is returned when the account has no contract deployed.
type NoContractCodeError struct {
	ContractAccountID primitives.AccountID
}

func (e *NoContractCodeError) Error() string {
	return fmt.Sprintf("contract code for contract ID %q has never been observed on the node", e.ContractAccountID)
}

func (e *NoContractCodeError) Kind() ErrorKind { return NotFound }

// AccessKeyDoesNotExistError is returned when the requested access key is absent.
type AccessKeyDoesNotExistError struct {
	PublicKey primitives.PublicKey
}

func (e *AccessKeyDoesNotExistError) Error() string {
	return fmt.Sprintf("access key for public key %v does not exist while viewing", e.PublicKey)
}

func (e *AccessKeyDoesNotExistError) Kind() ErrorKind { return NotFound }

// AccountStateTooLargeError is returned when the contract storage exceeds the viewable size.
type AccountStateTooLargeError struct {
	RequestedAccountID primitives.AccountID
}

func (e *AccountStateTooLargeError) Error() string {
	return fmt.Sprintf("state of contract %q is too large to be viewed", e.RequestedAccountID)
}

func (e *AccountStateTooLargeError) Kind() ErrorKind { return ResourceExceeded }

// InternalError is returned when the state contradicts its own layout.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}

func (e *InternalError) Kind() ErrorKind { return Internal }

// VMError is returned when a view call fails to execute.
type VMError struct {
	Message string
}

func (e *VMError) Error() string { return e.Message }

func (e *VMError) Kind() ErrorKind { return VM }

// StorageError is returned when the state can not be read.
type StorageError struct {
	cause error
}

func (e *StorageError) Error() string {
	return "storage error: " + e.cause.Error()
}

func (e *StorageError) Unwrap() error { return e.cause }

func (e *StorageError) Kind() ErrorKind { return Storage }

// KindOf returns the kind of a viewer error.
func KindOf(err error) (ErrorKind, bool) {
	var e Error
	if errors.As(err, &e) {
		return e.Kind(), true
	}
	return 0, false
}

// IsNotFound returns whether err reports an absent entity.
func IsNotFound(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == NotFound
}
