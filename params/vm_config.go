// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"fmt"

	"github.com/trieview/trieview/primitives"
)

// VMConfig is the configuration of the contract sandbox.
type VMConfig struct {
	ExtCosts      ExtCostsConfig `json:"ext_costs"`
	GrowMemCost   uint32         `json:"grow_mem_cost"`   // gas per grown memory page
	RegularOpCost uint32         `json:"regular_op_cost"` // gas per instrumented op
	LimitConfig   VMLimitConfig  `json:"limit_config"`
}

// VMLimitConfig bounds what a single contract call may consume.
type VMLimitConfig struct {
	MaxGasBurnt                      primitives.Gas `json:"max_gas_burnt"`
	MaxGasBurntView                  primitives.Gas `json:"max_gas_burnt_view"`
	MaxStackHeight                   uint32         `json:"max_stack_height"`
	InitialMemoryPages               uint32         `json:"initial_memory_pages"`
	MaxMemoryPages                   uint32         `json:"max_memory_pages"`
	RegistersMemoryLimit             uint64         `json:"registers_memory_limit"`
	MaxRegisterSize                  uint64         `json:"max_register_size"`
	MaxNumberRegisters               uint64         `json:"max_number_registers"`
	MaxNumberLogs                    uint64         `json:"max_number_logs"`
	MaxTotalLogLength                uint64         `json:"max_total_log_length"`
	MaxTotalPrepaidGas               primitives.Gas `json:"max_total_prepaid_gas"`
	MaxActionsPerReceipt             uint64         `json:"max_actions_per_receipt"`
	MaxNumberBytesMethodNames        uint64         `json:"max_number_bytes_method_names"`
	MaxLengthMethodName              uint64         `json:"max_length_method_name"`
	MaxArgumentsLength               uint64         `json:"max_arguments_length"`
	MaxLengthReturnedData            uint64         `json:"max_length_returned_data"`
	MaxContractSize                  uint64         `json:"max_contract_size"`
	MaxLengthStorageKey              uint64         `json:"max_length_storage_key"`
	MaxLengthStorageValue            uint64         `json:"max_length_storage_value"`
	MaxPromisesPerFunctionCallAction uint64         `json:"max_promises_per_function_call_action"`
	MaxNumberInputDataDependencies   uint64         `json:"max_number_input_data_dependencies"`
}

// ExtCostsConfig is the gas cost of each host function step.
type ExtCostsConfig struct {
	Base                      primitives.Gas `json:"base"`
	ContractCompileBase       primitives.Gas `json:"contract_compile_base"`
	ContractCompileBytes      primitives.Gas `json:"contract_compile_bytes"`
	ReadMemoryBase            primitives.Gas `json:"read_memory_base"`
	ReadMemoryByte            primitives.Gas `json:"read_memory_byte"`
	WriteMemoryBase           primitives.Gas `json:"write_memory_base"`
	WriteMemoryByte           primitives.Gas `json:"write_memory_byte"`
	ReadRegisterBase          primitives.Gas `json:"read_register_base"`
	ReadRegisterByte          primitives.Gas `json:"read_register_byte"`
	WriteRegisterBase         primitives.Gas `json:"write_register_base"`
	WriteRegisterByte         primitives.Gas `json:"write_register_byte"`
	Utf8DecodingBase          primitives.Gas `json:"utf8_decoding_base"`
	Utf8DecodingByte          primitives.Gas `json:"utf8_decoding_byte"`
	Utf16DecodingBase         primitives.Gas `json:"utf16_decoding_base"`
	Utf16DecodingByte         primitives.Gas `json:"utf16_decoding_byte"`
	Sha256Base                primitives.Gas `json:"sha256_base"`
	Sha256Byte                primitives.Gas `json:"sha256_byte"`
	Keccak256Base             primitives.Gas `json:"keccak256_base"`
	Keccak256Byte             primitives.Gas `json:"keccak256_byte"`
	Keccak512Base             primitives.Gas `json:"keccak512_base"`
	Keccak512Byte             primitives.Gas `json:"keccak512_byte"`
	LogBase                   primitives.Gas `json:"log_base"`
	LogByte                   primitives.Gas `json:"log_byte"`
	StorageWriteBase          primitives.Gas `json:"storage_write_base"`
	StorageWriteKeyByte       primitives.Gas `json:"storage_write_key_byte"`
	StorageWriteValueByte     primitives.Gas `json:"storage_write_value_byte"`
	StorageWriteEvictedByte   primitives.Gas `json:"storage_write_evicted_byte"`
	StorageReadBase           primitives.Gas `json:"storage_read_base"`
	StorageReadKeyByte        primitives.Gas `json:"storage_read_key_byte"`
	StorageReadValueByte      primitives.Gas `json:"storage_read_value_byte"`
	StorageRemoveBase         primitives.Gas `json:"storage_remove_base"`
	StorageRemoveKeyByte      primitives.Gas `json:"storage_remove_key_byte"`
	StorageRemoveRetValueByte primitives.Gas `json:"storage_remove_ret_value_byte"`
	StorageHasKeyBase         primitives.Gas `json:"storage_has_key_base"`
	StorageHasKeyByte         primitives.Gas `json:"storage_has_key_byte"`
	TouchingTrieNode          primitives.Gas `json:"touching_trie_node"`
	PromiseAndBase            primitives.Gas `json:"promise_and_base"`
	PromiseAndPerPromise      primitives.Gas `json:"promise_and_per_promise"`
	PromiseReturn             primitives.Gas `json:"promise_return"`
	ValidatorStakeBase        primitives.Gas `json:"validator_stake_base"`
	ValidatorTotalStakeBase   primitives.Gas `json:"validator_total_stake_base"`
}

// ExtCost enumerates the metered host function steps.
type ExtCost int

const (
	Base ExtCost = iota
	ContractCompileBase
	ContractCompileBytes
	ReadMemoryBase
	ReadMemoryByte
	WriteMemoryBase
	WriteMemoryByte
	ReadRegisterBase
	ReadRegisterByte
	WriteRegisterBase
	WriteRegisterByte
	Utf8DecodingBase
	Utf8DecodingByte
	Utf16DecodingBase
	Utf16DecodingByte
	Sha256Base
	Sha256Byte
	Keccak256Base
	Keccak256Byte
	Keccak512Base
	Keccak512Byte
	LogBase
	LogByte
	StorageWriteBase
	StorageWriteKeyByte
	StorageWriteValueByte
	StorageWriteEvictedByte
	StorageReadBase
	StorageReadKeyByte
	StorageReadValueByte
	StorageRemoveBase
	StorageRemoveKeyByte
	StorageRemoveRetValueByte
	StorageHasKeyBase
	StorageHasKeyByte
	TouchingTrieNode
	PromiseAndBase
	PromiseAndPerPromise
	PromiseReturn
	ValidatorStakeBase
	ValidatorTotalStakeBase

	numExtCosts
)

var extCostNames = [numExtCosts]string{
	"base",
	"contract_compile_base",
	"contract_compile_bytes",
	"read_memory_base",
	"read_memory_byte",
	"write_memory_base",
	"write_memory_byte",
	"read_register_base",
	"read_register_byte",
	"write_register_base",
	"write_register_byte",
	"utf8_decoding_base",
	"utf8_decoding_byte",
	"utf16_decoding_base",
	"utf16_decoding_byte",
	"sha256_base",
	"sha256_byte",
	"keccak256_base",
	"keccak256_byte",
	"keccak512_base",
	"keccak512_byte",
	"log_base",
	"log_byte",
	"storage_write_base",
	"storage_write_key_byte",
	"storage_write_value_byte",
	"storage_write_evicted_byte",
	"storage_read_base",
	"storage_read_key_byte",
	"storage_read_value_byte",
	"storage_remove_base",
	"storage_remove_key_byte",
	"storage_remove_ret_value_byte",
	"storage_has_key_base",
	"storage_has_key_byte",
	"touching_trie_node",
	"promise_and_base",
	"promise_and_per_promise",
	"promise_return",
	"validator_stake_base",
	"validator_total_stake_base",
}

func (c ExtCost) String() string {
	if c >= 0 && c < numExtCosts {
		return extCostNames[c]
	}
	return fmt.Sprintf("ExtCost(%d)", int(c))
}

// Cost returns the configured gas of the given step.
func (c *ExtCostsConfig) Cost(cost ExtCost) primitives.Gas {
	switch cost {
	case Base:
		return c.Base
	case ContractCompileBase:
		return c.ContractCompileBase
	case ContractCompileBytes:
		return c.ContractCompileBytes
	case ReadMemoryBase:
		return c.ReadMemoryBase
	case ReadMemoryByte:
		return c.ReadMemoryByte
	case WriteMemoryBase:
		return c.WriteMemoryBase
	case WriteMemoryByte:
		return c.WriteMemoryByte
	case ReadRegisterBase:
		return c.ReadRegisterBase
	case ReadRegisterByte:
		return c.ReadRegisterByte
	case WriteRegisterBase:
		return c.WriteRegisterBase
	case WriteRegisterByte:
		return c.WriteRegisterByte
	case Utf8DecodingBase:
		return c.Utf8DecodingBase
	case Utf8DecodingByte:
		return c.Utf8DecodingByte
	case Utf16DecodingBase:
		return c.Utf16DecodingBase
	case Utf16DecodingByte:
		return c.Utf16DecodingByte
	case Sha256Base:
		return c.Sha256Base
	case Sha256Byte:
		return c.Sha256Byte
	case Keccak256Base:
		return c.Keccak256Base
	case Keccak256Byte:
		return c.Keccak256Byte
	case Keccak512Base:
		return c.Keccak512Base
	case Keccak512Byte:
		return c.Keccak512Byte
	case LogBase:
		return c.LogBase
	case LogByte:
		return c.LogByte
	case StorageWriteBase:
		return c.StorageWriteBase
	case StorageWriteKeyByte:
		return c.StorageWriteKeyByte
	case StorageWriteValueByte:
		return c.StorageWriteValueByte
	case StorageWriteEvictedByte:
		return c.StorageWriteEvictedByte
	case StorageReadBase:
		return c.StorageReadBase
	case StorageReadKeyByte:
		return c.StorageReadKeyByte
	case StorageReadValueByte:
		return c.StorageReadValueByte
	case StorageRemoveBase:
		return c.StorageRemoveBase
	case StorageRemoveKeyByte:
		return c.StorageRemoveKeyByte
	case StorageRemoveRetValueByte:
		return c.StorageRemoveRetValueByte
	case StorageHasKeyBase:
		return c.StorageHasKeyBase
	case StorageHasKeyByte:
		return c.StorageHasKeyByte
	case TouchingTrieNode:
		return c.TouchingTrieNode
	case PromiseAndBase:
		return c.PromiseAndBase
	case PromiseAndPerPromise:
		return c.PromiseAndPerPromise
	case PromiseReturn:
		return c.PromiseReturn
	case ValidatorStakeBase:
		return c.ValidatorStakeBase
	case ValidatorTotalStakeBase:
		return c.ValidatorTotalStakeBase
	}
	panic(fmt.Errorf("unknown ext cost %d", int(cost)))
}
