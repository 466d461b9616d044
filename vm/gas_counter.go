// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"math/bits"

	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
)

// GasCounter accounts the gas burnt and used by one contract call.
//
// Burnt gas is spent for good. Used gas additionally includes gas attached to
// receipts the call creates. Burnt gas is capped by maxBurnt, used gas by the
// prepaid gas unless the call is a view.
type GasCounter struct {
	burnt    primitives.Gas
	used     primitives.Gas
	maxBurnt primitives.Gas
	prepaid  primitives.Gas
	isView   bool
	opCost   uint32
	extCosts *params.ExtCostsConfig
}

// NewGasCounter creates a gas counter.
func NewGasCounter(
	extCosts *params.ExtCostsConfig,
	maxBurnt primitives.Gas,
	opCost uint32,
	prepaid primitives.Gas,
	isView bool,
) *GasCounter {
	return &GasCounter{
		maxBurnt: maxBurnt,
		prepaid:  prepaid,
		isView:   isView,
		opCost:   opCost,
		extCosts: extCosts,
	}
}

// Deduct burns burn gas and uses use gas. On failure the counters are clamped to their limits.
func (g *GasCounter) Deduct(burn, use primitives.Gas) error {
	newBurnt, c1 := bits.Add64(g.burnt, burn, 0)
	newUsed, c2 := bits.Add64(g.used, use, 0)
	if c1 != 0 || c2 != 0 {
		return newHostError(IntegerOverflow)
	}
	if newBurnt <= g.maxBurnt && (g.isView || newUsed <= g.prepaid) {
		g.burnt, g.used = newBurnt, newUsed
		return nil
	}

	var err error
	if newBurnt > g.maxBurnt {
		err = newHostError(GasLimitExceeded)
	} else {
		err = newHostError(GasExceeded)
	}
	maxBurnt := g.maxBurnt
	if !g.isView {
		maxBurnt = min(maxBurnt, g.prepaid)
		g.used = min(newUsed, g.prepaid)
	} else {
		g.used = min(newUsed, maxBurnt)
	}
	g.burnt = min(newBurnt, maxBurnt)
	return err
}

// Pay burns and uses amount.
func (g *GasCounter) Pay(amount primitives.Gas) error {
	return g.Deduct(amount, amount)
}

// PayBase pays the configured cost of one step.
func (g *GasCounter) PayBase(cost params.ExtCost) error {
	return g.Pay(g.extCosts.Cost(cost))
}

// PayPerByte pays the configured cost of a step n times.
func (g *GasCounter) PayPerByte(cost params.ExtCost, n uint64) error {
	hi, amount := bits.Mul64(g.extCosts.Cost(cost), n)
	if hi != 0 {
		return newHostError(IntegerOverflow)
	}
	return g.Pay(amount)
}

// PayWasmGas pays for instrumented wasm instructions.
func (g *GasCounter) PayWasmGas(opcodes uint32) error {
	return g.Pay(primitives.Gas(opcodes) * primitives.Gas(g.opCost))
}

// PayActionBase pays a fee where only the send part is burnt now and the
// execution part is attached to the created receipt.
func (g *GasCounter) PayActionBase(fee params.Fee, sir bool) error {
	burn := fee.SendFee(sir)
	use, c := bits.Add64(burn, fee.ExecFee(), 0)
	if c != 0 {
		return newHostError(IntegerOverflow)
	}
	return g.Deduct(burn, use)
}

// Burnt returns the gas burnt so far.
func (g *GasCounter) Burnt() primitives.Gas { return g.burnt }

// Used returns the gas used so far.
func (g *GasCounter) Used() primitives.Gas { return g.used }

// PayPerByteFee pays a per byte action fee for n bytes, burning the send part.
func (g *GasCounter) PayPerByteFee(fee params.Fee, sir bool, n uint64) error {
	hi1, burn := bits.Mul64(fee.SendFee(sir), n)
	hi2, exec := bits.Mul64(fee.ExecFee(), n)
	use, c := bits.Add64(burn, exec, 0)
	if hi1 != 0 || hi2 != 0 || c != 0 {
		return newHostError(IntegerOverflow)
	}
	return g.Deduct(burn, use)
}
