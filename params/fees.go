// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"encoding/json"
	"fmt"

	"github.com/trieview/trieview/primitives"
)

// Fraction is a rational number, presented as [numerator, denominator] in JSON.
type Fraction struct {
	Numerator   uint64
	Denominator uint64
}

// MarshalJSON implements json.Marshaler.
func (f Fraction) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]uint64{f.Numerator, f.Denominator})
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fraction) UnmarshalJSON(data []byte) error {
	var pair [2]uint64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if pair[1] == 0 {
		return fmt.Errorf("fraction %d/%d has zero denominator", pair[0], pair[1])
	}
	f.Numerator, f.Denominator = pair[0], pair[1]
	return nil
}

// Fee is the cost of an action split into the send part and the execution part.
// Sending to the same shard (sir) and to another shard may cost differently.
type Fee struct {
	SendSir    primitives.Gas `json:"send_sir"`
	SendNotSir primitives.Gas `json:"send_not_sir"`
	Execution  primitives.Gas `json:"execution"`
}

// SendFee returns the send part of the fee.
func (f Fee) SendFee(sir bool) primitives.Gas {
	if sir {
		return f.SendSir
	}
	return f.SendNotSir
}

// ExecFee returns the execution part of the fee.
func (f Fee) ExecFee() primitives.Gas {
	return f.Execution
}

// MinSendAndExecFee returns the cheapest send fee plus the execution fee.
func (f Fee) MinSendAndExecFee() primitives.Gas {
	return min(f.SendSir, f.SendNotSir) + f.Execution
}

// DataReceiptCreationConfig describes the cost of creating a data receipt.
type DataReceiptCreationConfig struct {
	BaseCost    Fee `json:"base_cost"`
	CostPerByte Fee `json:"cost_per_byte"`
}

// AccessKeyCreationConfig describes the cost of adding an access key.
type AccessKeyCreationConfig struct {
	FullAccessCost          Fee `json:"full_access_cost"`
	FunctionCallCost        Fee `json:"function_call_cost"`
	FunctionCallCostPerByte Fee `json:"function_call_cost_per_byte"`
}

// ActionCreationConfig describes the cost of each action kind.
type ActionCreationConfig struct {
	CreateAccountCost         Fee                     `json:"create_account_cost"`
	DeployContractCost        Fee                     `json:"deploy_contract_cost"`
	DeployContractCostPerByte Fee                     `json:"deploy_contract_cost_per_byte"`
	FunctionCallCost          Fee                     `json:"function_call_cost"`
	FunctionCallCostPerByte   Fee                     `json:"function_call_cost_per_byte"`
	TransferCost              Fee                     `json:"transfer_cost"`
	StakeCost                 Fee                     `json:"stake_cost"`
	AddKeyCost                AccessKeyCreationConfig `json:"add_key_cost"`
	DeleteKeyCost             Fee                     `json:"delete_key_cost"`
	DeleteAccountCost         Fee                     `json:"delete_account_cost"`
}

// StorageUsageConfig describes the storage accounted per record beyond its raw bytes.
type StorageUsageConfig struct {
	NumBytesAccount     uint64 `json:"num_bytes_account"`
	NumExtraBytesRecord uint64 `json:"num_extra_bytes_record"`
}

// RuntimeFeesConfig is the gas cost of transactions and actions.
type RuntimeFeesConfig struct {
	ActionReceiptCreationConfig       Fee                       `json:"action_receipt_creation_config"`
	DataReceiptCreationConfig         DataReceiptCreationConfig `json:"data_receipt_creation_config"`
	ActionCreationConfig              ActionCreationConfig      `json:"action_creation_config"`
	StorageUsageConfig                StorageUsageConfig        `json:"storage_usage_config"`
	BurntGasReward                    Fraction                  `json:"burnt_gas_reward"`
	PessimisticGasPriceInflationRatio Fraction                  `json:"pessimistic_gas_price_inflation_ratio"`
}

// MinReceiptWithFunctionCallGas returns the least gas a receipt carrying one function call costs.
func (c *RuntimeFeesConfig) MinReceiptWithFunctionCallGas() primitives.Gas {
	return c.ActionReceiptCreationConfig.MinSendAndExecFee() +
		c.ActionCreationConfig.FunctionCallCost.MinSendAndExecFee()
}

func freeFees(c RuntimeFeesConfig) RuntimeFeesConfig {
	return RuntimeFeesConfig{
		StorageUsageConfig:                c.StorageUsageConfig,
		BurntGasReward:                    Fraction{0, 1},
		PessimisticGasPriceInflationRatio: Fraction{1, 1},
	}
}
