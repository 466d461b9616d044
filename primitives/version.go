// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package primitives

import "fmt"

// ProtocolVersion identifies a rule set. It never decreases along the canonical chain.
type ProtocolVersion = uint32

const (
	// ProtocolVersionLatest is the latest stable version of the protocol.
	ProtocolVersionLatest ProtocolVersion = 47

	// OldestBackwardCompatibleProtocolVersion is the oldest version supported by this client.
	OldestBackwardCompatibleProtocolVersion ProtocolVersion = 34

	// MinProtocolVersionNEP92 introduced the minimum gas price of NEP 92.
	MinProtocolVersionNEP92 ProtocolVersion = 31
	// MinProtocolVersionNEP92Fix fixed the minimum gas price of NEP 92.
	MinProtocolVersionNEP92Fix ProtocolVersion = 32

	CorrectRandomValueProtocolVersion ProtocolVersion = 33

	// ImplicitAccountCreationProtocolVersion enables implicit account creation (NEP 71).
	ImplicitAccountCreationProtocolVersion ProtocolVersion = 35

	// EnableInflationProtocolVersion enables rewards on mainnet.
	EnableInflationProtocolVersion ProtocolVersion = 36

	// UpgradabilityFixProtocolVersion uses the latest voted version instead of the current
	// epoch version when no upgrade is pending.
	UpgradabilityFixProtocolVersion ProtocolVersion = 37

	// CreateHashProtocolVersion changes how receipt ids, data ids and random seeds are built.
	CreateHashProtocolVersion ProtocolVersion = 38

	// DeleteKeyStorageUsageProtocolVersion fixes the storage usage of the delete key action.
	DeleteKeyStorageUsageProtocolVersion ProtocolVersion = 40

	ShardChunkHeaderUpgradeVersion ProtocolVersion = 41

	// CreateReceiptIDSwitchToCurrentBlockVersion builds receipt ids from the current block hash.
	CreateReceiptIDSwitchToCurrentBlockVersion ProtocolVersion = 42
)

// MinGasPriceNEP92 and MinGasPriceNEP92Fix are the minimum gas prices of NEP 92.
var (
	MinGasPriceNEP92    = NewBalance(1_000_000_000)
	MinGasPriceNEP92Fix = NewBalance(100_000_000)
)

// ProtocolFeature is a protocol change guarded by the version it got enabled at.
type ProtocolFeature int

const (
	ForwardChunkParts ProtocolFeature = iota
	RectifyInflation
	AccessKeyNonceRange
	FixApplyChunks
	LowerStorageCost
	DeleteActionRestriction
	// AccountVersions adds versions to the account record.
	AccountVersions
	TransactionSizeLimit
	// FixStorageUsage fixes storage usage of accounts affected by a historical bug.
	FixStorageUsage
	// CapMaxGasPrice caps the maximum gas price.
	CapMaxGasPrice
	CountRefundReceiptsInGasLimit
	// MathExtension adds ripemd160 and ecrecover host functions.
	MathExtension
	// RestoreReceiptsAfterFix restores receipts stuck by a historical bug.
	RestoreReceiptsAfterFix
)

var featureNames = map[ProtocolFeature]string{
	ForwardChunkParts:             "ForwardChunkParts",
	RectifyInflation:              "RectifyInflation",
	AccessKeyNonceRange:           "AccessKeyNonceRange",
	FixApplyChunks:                "FixApplyChunks",
	LowerStorageCost:              "LowerStorageCost",
	DeleteActionRestriction:       "DeleteActionRestriction",
	AccountVersions:               "AccountVersions",
	TransactionSizeLimit:          "TransactionSizeLimit",
	FixStorageUsage:               "FixStorageUsage",
	CapMaxGasPrice:                "CapMaxGasPrice",
	CountRefundReceiptsInGasLimit: "CountRefundReceiptsInGasLimit",
	MathExtension:                 "MathExtension",
	RestoreReceiptsAfterFix:       "RestoreReceiptsAfterFix",
}

func (f ProtocolFeature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return fmt.Sprintf("ProtocolFeature(%d)", int(f))
}

// ProtocolVersion returns the version the feature got enabled at.
func (f ProtocolFeature) ProtocolVersion() ProtocolVersion {
	switch f {
	case LowerStorageCost:
		return 42
	case DeleteActionRestriction:
		return 43
	case FixApplyChunks:
		return 44
	case ForwardChunkParts, RectifyInflation, AccessKeyNonceRange:
		return 45
	case AccountVersions, TransactionSizeLimit, FixStorageUsage, CapMaxGasPrice,
		CountRefundReceiptsInGasLimit, MathExtension:
		return 46
	case RestoreReceiptsAfterFix:
		return 47
	}
	panic(fmt.Errorf("unknown protocol feature %d", int(f)))
}

// Enabled returns whether the feature is active at the given version.
func (f ProtocolFeature) Enabled(v ProtocolVersion) bool {
	return f.ProtocolVersion() <= v
}

// ProtocolVersionRange is the half-open range [Lower, Upper). A nil Upper is unbounded.
type ProtocolVersionRange struct {
	Lower ProtocolVersion
	Upper *ProtocolVersion
}

// NewProtocolVersionRange creates a range.
func NewProtocolVersionRange(lower ProtocolVersion, upper *ProtocolVersion) ProtocolVersionRange {
	return ProtocolVersionRange{Lower: lower, Upper: upper}
}

// Contains returns whether v falls into the range.
func (r ProtocolVersionRange) Contains(v ProtocolVersion) bool {
	return r.Lower <= v && (r.Upper == nil || v < *r.Upper)
}

// IsImplicitAccountCreationEnabled returns whether implicit accounts can be created at v.
func IsImplicitAccountCreationEnabled(v ProtocolVersion) bool {
	return v >= ImplicitAccountCreationProtocolVersion
}
