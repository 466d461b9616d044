// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import "github.com/trieview/trieview/primitives"

// ViewConfig marks a call as read-only and caps the gas it may burn.
type ViewConfig struct {
	MaxGasBurnt primitives.Gas
}

// Context is the environment a contract call observes.
type Context struct {
	// The account whose contract is executed.
	CurrentAccountID primitives.AccountID
	// The account that signed the originating transaction.
	SignerAccountID primitives.AccountID
	// Public key of the signer, in its binary form.
	SignerAccountPK []byte
	// The account that issued the receipt being executed.
	PredecessorAccountID primitives.AccountID
	// Arguments of the method.
	Input []byte

	BlockIndex     primitives.BlockHeight
	BlockTimestamp uint64
	EpochHeight    primitives.EpochHeight

	AccountBalance       primitives.Balance
	AccountLockedBalance primitives.Balance
	StorageUsage         primitives.StorageUsage
	AttachedDeposit      primitives.Balance
	PrepaidGas           primitives.Gas

	RandomSeed []byte

	// Non-nil for view calls.
	ViewConfig *ViewConfig

	// Accounts waiting for the value this call returns.
	OutputDataReceivers []primitives.AccountID
}

// IsView returns whether the call is read-only.
func (c *Context) IsView() bool {
	return c.ViewConfig != nil
}
