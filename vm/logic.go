// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vm

import (
	"crypto/sha256"
	"math"
	"unicode/utf8"

	"github.com/trieview/trieview/params"
	"github.com/trieview/trieview/primitives"
)

// Memory is the linear memory of a contract instance.
type Memory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
}

// Logic implements the host functions a contract may import. One Logic serves
// exactly one call and is not safe for concurrent use.
type Logic struct {
	ext            External
	ctx            *Context
	config         *params.VMConfig
	fees           *params.RuntimeFeesConfig
	promiseResults []PromiseResult
	memory         Memory
	gas            *GasCounter

	protocolVersion primitives.ProtocolVersion

	registers      map[uint64][]byte
	registersUsage uint64

	logs           []string
	totalLogLength uint64

	returnData   ReturnData
	receipts     []Receipt
	balance      primitives.Balance
	storageUsage primitives.StorageUsage

	// the first error raised by a host function, kept across the engine boundary
	err error
}

// NewLogic creates the host state of one contract call.
func NewLogic(
	ext External,
	ctx *Context,
	config *params.VMConfig,
	fees *params.RuntimeFeesConfig,
	promiseResults []PromiseResult,
	memory Memory,
	protocolVersion primitives.ProtocolVersion,
) *Logic {
	maxBurnt := config.LimitConfig.MaxGasBurnt
	if ctx.IsView() {
		maxBurnt = ctx.ViewConfig.MaxGasBurnt
	}
	return &Logic{
		ext:             ext,
		ctx:             ctx,
		config:          config,
		fees:            fees,
		promiseResults:  promiseResults,
		memory:          memory,
		gas:             NewGasCounter(&config.ExtCosts, maxBurnt, config.RegularOpCost, ctx.PrepaidGas, ctx.IsView()),
		protocolVersion: protocolVersion,
		registers:       make(map[uint64][]byte),
		balance:         ctx.AccountBalance,
		storageUsage:    ctx.StorageUsage,
	}
}

// SetMemory binds the logic to the memory of the instantiated contract.
func (l *Logic) SetMemory(m Memory) {
	l.memory = m
}

// GasCounter returns the gas counter of the call.
func (l *Logic) GasCounter() *GasCounter {
	return l.gas
}

// Fail records err as the reason the call stopped, unless one is already recorded.
// It returns the recorded error.
func (l *Logic) Fail(err error) error {
	if l.err == nil {
		l.err = err
	}
	return l.err
}

// Err returns the recorded failure.
func (l *Logic) Err() error {
	return l.err
}

// AddContractCompileFee charges for compiling code of the given size.
func (l *Logic) AddContractCompileFee(codeLen uint64) error {
	if err := l.gas.PayPerByte(params.ContractCompileBytes, codeLen); err != nil {
		return err
	}
	return l.gas.PayBase(params.ContractCompileBase)
}

// Outcome returns what the call has produced so far.
func (l *Logic) Outcome() *Outcome {
	logs := make([]string, len(l.logs))
	copy(logs, l.logs)
	return &Outcome{
		Balance:      l.balance,
		StorageUsage: l.storageUsage,
		ReturnData:   l.returnData,
		BurntGas:     l.gas.Burnt(),
		UsedGas:      l.gas.Used(),
		Logs:         logs,
		Receipts:     l.receipts,
	}
}

func (l *Logic) limits() *params.VMLimitConfig {
	return &l.config.LimitConfig
}

func (l *Logic) payBase() error {
	return l.gas.PayBase(params.Base)
}

func (l *Logic) prohibitedInView(method string) error {
	if l.ctx.IsView() {
		return &HostError{Kind: ProhibitedInView, Method: method}
	}
	return nil
}

// memory helpers

func memRange(ptr, n uint64) (uint32, uint32, error) {
	if ptr > math.MaxUint32 || n > math.MaxUint32 || ptr+n > math.MaxUint32+1 {
		return 0, 0, newHostError(MemoryAccessViolation)
	}
	return uint32(ptr), uint32(n), nil
}

func (l *Logic) memoryGet(ptr, n uint64) ([]byte, error) {
	if err := l.gas.PayBase(params.ReadMemoryBase); err != nil {
		return nil, err
	}
	if err := l.gas.PayPerByte(params.ReadMemoryByte, n); err != nil {
		return nil, err
	}
	off, cnt, err := memRange(ptr, n)
	if err != nil {
		return nil, err
	}
	if l.memory == nil {
		return nil, newHostError(MemoryAccessViolation)
	}
	view, ok := l.memory.Read(off, cnt)
	if !ok {
		return nil, newHostError(MemoryAccessViolation)
	}
	// the view aliases contract memory
	buf := make([]byte, len(view))
	copy(buf, view)
	return buf, nil
}

func (l *Logic) memorySet(ptr uint64, data []byte) error {
	if err := l.gas.PayBase(params.WriteMemoryBase); err != nil {
		return err
	}
	if err := l.gas.PayPerByte(params.WriteMemoryByte, uint64(len(data))); err != nil {
		return err
	}
	off, _, err := memRange(ptr, uint64(len(data)))
	if err != nil {
		return err
	}
	if l.memory == nil || !l.memory.Write(off, data) {
		return newHostError(MemoryAccessViolation)
	}
	return nil
}

// registers

func (l *Logic) internalReadRegister(id uint64) ([]byte, error) {
	data, ok := l.registers[id]
	if !ok {
		return nil, newHostError(InvalidRegisterID)
	}
	if err := l.gas.PayBase(params.ReadRegisterBase); err != nil {
		return nil, err
	}
	if err := l.gas.PayPerByte(params.ReadRegisterByte, uint64(len(data))); err != nil {
		return nil, err
	}
	return data, nil
}

func (l *Logic) internalWriteRegister(id uint64, data []byte) error {
	if err := l.gas.PayBase(params.WriteRegisterBase); err != nil {
		return err
	}
	if err := l.gas.PayPerByte(params.WriteRegisterByte, uint64(len(data))); err != nil {
		return err
	}
	lim := l.limits()
	if uint64(len(data)) > lim.MaxRegisterSize {
		return newHostError(MemoryAccessViolation)
	}
	old, exists := l.registers[id]
	if !exists && uint64(len(l.registers)) >= lim.MaxNumberRegisters {
		return newHostError(MemoryAccessViolation)
	}
	usage := l.registersUsage - uint64(len(old)) + uint64(len(data))
	if usage > lim.RegistersMemoryLimit {
		return newHostError(MemoryAccessViolation)
	}
	l.registers[id] = append([]byte(nil), data...)
	l.registersUsage = usage
	return nil
}

// vecFromMemoryOrRegister reads n bytes at ptr, or the register ptr if n is MaxUint64.
func (l *Logic) vecFromMemoryOrRegister(ptr, n uint64) ([]byte, error) {
	if n == math.MaxUint64 {
		return l.internalReadRegister(ptr)
	}
	return l.memoryGet(ptr, n)
}

// utf8String reads a string of n bytes at ptr, or a nul terminated one if n is MaxUint64.
// The length counts against the total log length limit.
func (l *Logic) utf8String(n, ptr uint64) (string, error) {
	if err := l.gas.PayBase(params.Utf8DecodingBase); err != nil {
		return "", err
	}
	maxLen := l.limits().MaxTotalLogLength - min(l.totalLogLength, l.limits().MaxTotalLogLength)
	var buf []byte
	if n != math.MaxUint64 {
		if n > maxLen {
			return "", l.logLengthExceeded(n)
		}
		b, err := l.memoryGet(ptr, n)
		if err != nil {
			return "", err
		}
		buf = b
	} else {
		for i := uint64(0); ; i++ {
			if i > maxLen {
				return "", l.logLengthExceeded(i)
			}
			b, err := l.memoryGet(ptr+i, 1)
			if err != nil {
				return "", err
			}
			if b[0] == 0 {
				break
			}
			buf = append(buf, b[0])
		}
	}
	if err := l.gas.PayPerByte(params.Utf8DecodingByte, uint64(len(buf))); err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", newHostError(BadUTF8)
	}
	return string(buf), nil
}

func (l *Logic) logLengthExceeded(n uint64) error {
	return &HostError{
		Kind:   TotalLogLengthExceeded,
		Length: l.totalLogLength + n,
		Limit:  l.limits().MaxTotalLogLength,
	}
}

func (l *Logic) readAccountID(n, ptr uint64) (primitives.AccountID, error) {
	buf, err := l.vecFromMemoryOrRegister(ptr, n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", newHostError(BadUTF8)
	}
	id, err := primitives.ParseAccountID(string(buf))
	if err != nil {
		return "", newHostError(InvalidAccountID)
	}
	return id, nil
}

// ReadRegister copies register id into memory at ptr.
func (l *Logic) ReadRegister(id, ptr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	data, err := l.internalReadRegister(id)
	if err != nil {
		return err
	}
	return l.memorySet(ptr, data)
}

// RegisterLen returns the length of register id, or MaxUint64 if it is unset.
func (l *Logic) RegisterLen(id uint64) (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	if data, ok := l.registers[id]; ok {
		return uint64(len(data)), nil
	}
	return math.MaxUint64, nil
}

// WriteRegister copies n bytes at ptr into register id.
func (l *Logic) WriteRegister(id, n, ptr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	data, err := l.memoryGet(ptr, n)
	if err != nil {
		return err
	}
	return l.internalWriteRegister(id, data)
}

// context getters

// CurrentAccountID writes the id of the executed account into a register.
func (l *Logic) CurrentAccountID(register uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	return l.internalWriteRegister(register, []byte(l.ctx.CurrentAccountID))
}

// SignerAccountID writes the id of the transaction signer into a register.
func (l *Logic) SignerAccountID(register uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	if err := l.prohibitedInView("signer_account_id"); err != nil {
		return err
	}
	return l.internalWriteRegister(register, []byte(l.ctx.SignerAccountID))
}

// SignerAccountPK writes the public key of the transaction signer into a register.
func (l *Logic) SignerAccountPK(register uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	if err := l.prohibitedInView("signer_account_pk"); err != nil {
		return err
	}
	return l.internalWriteRegister(register, l.ctx.SignerAccountPK)
}

// PredecessorAccountID writes the id of the receipt predecessor into a register.
func (l *Logic) PredecessorAccountID(register uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	if err := l.prohibitedInView("predecessor_account_id"); err != nil {
		return err
	}
	return l.internalWriteRegister(register, []byte(l.ctx.PredecessorAccountID))
}

// Input writes the method arguments into a register.
func (l *Logic) Input(register uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	return l.internalWriteRegister(register, l.ctx.Input)
}

// BlockIndex returns the current block height.
func (l *Logic) BlockIndex() (uint64, error) {
	return l.ctx.BlockIndex, l.payBase()
}

// BlockTimestamp returns the current block timestamp in nanoseconds.
func (l *Logic) BlockTimestamp() (uint64, error) {
	return l.ctx.BlockTimestamp, l.payBase()
}

// EpochHeight returns the current epoch height.
func (l *Logic) EpochHeight() (uint64, error) {
	return l.ctx.EpochHeight, l.payBase()
}

// StorageUsage returns the current storage usage of the account.
func (l *Logic) StorageUsage() (uint64, error) {
	return l.storageUsage, l.payBase()
}

// AccountBalance writes the account balance as a little endian u128 at ptr.
func (l *Logic) AccountBalance(ptr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	return l.memorySet(ptr, l.balance.LittleEndian16())
}

// AccountLockedBalance writes the locked balance as a little endian u128 at ptr.
func (l *Logic) AccountLockedBalance(ptr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	return l.memorySet(ptr, l.ctx.AccountLockedBalance.LittleEndian16())
}

// AttachedDeposit writes the attached deposit as a little endian u128 at ptr.
func (l *Logic) AttachedDeposit(ptr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	if err := l.prohibitedInView("attached_deposit"); err != nil {
		return err
	}
	return l.memorySet(ptr, l.ctx.AttachedDeposit.LittleEndian16())
}

// PrepaidGas returns the gas attached to the call.
func (l *Logic) PrepaidGas() (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	if err := l.prohibitedInView("prepaid_gas"); err != nil {
		return 0, err
	}
	return l.ctx.PrepaidGas, nil
}

// UsedGas returns the gas used so far.
func (l *Logic) UsedGas() (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	if err := l.prohibitedInView("used_gas"); err != nil {
		return 0, err
	}
	return l.gas.Used(), nil
}

// RandomSeed writes the random seed into a register.
func (l *Logic) RandomSeed(register uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	return l.internalWriteRegister(register, l.ctx.RandomSeed)
}

// Sha256 hashes the value and writes the digest into a register.
func (l *Logic) Sha256(n, ptr, register uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	value, err := l.vecFromMemoryOrRegister(ptr, n)
	if err != nil {
		return err
	}
	if err := l.gas.PayBase(params.Sha256Base); err != nil {
		return err
	}
	if err := l.gas.PayPerByte(params.Sha256Byte, uint64(len(value))); err != nil {
		return err
	}
	sum := sha256.Sum256(value)
	return l.internalWriteRegister(register, sum[:])
}

// Keccak256 hashes the value and writes the digest into a register.
func (l *Logic) Keccak256(n, ptr, register uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	value, err := l.vecFromMemoryOrRegister(ptr, n)
	if err != nil {
		return err
	}
	if err := l.gas.PayBase(params.Keccak256Base); err != nil {
		return err
	}
	if err := l.gas.PayPerByte(params.Keccak256Byte, uint64(len(value))); err != nil {
		return err
	}
	return l.internalWriteRegister(register, primitives.Keccak256(value).Bytes())
}

// ValidatorStake writes the stake of a validator as a little endian u128 at stakePtr.
// Accounts that do not validate have zero stake.
func (l *Logic) ValidatorStake(n, ptr, stakePtr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	id, err := l.readAccountID(n, ptr)
	if err != nil {
		return err
	}
	if err := l.gas.PayBase(params.ValidatorStakeBase); err != nil {
		return err
	}
	stake, err := l.ext.ValidatorStake(id)
	if err != nil {
		return &ExternalError{err}
	}
	var b primitives.Balance
	if stake != nil {
		b = *stake
	}
	return l.memorySet(stakePtr, b.LittleEndian16())
}

// ValidatorTotalStake writes the total stake of the epoch as a little endian u128 at stakePtr.
func (l *Logic) ValidatorTotalStake(stakePtr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	if err := l.gas.PayBase(params.ValidatorTotalStakeBase); err != nil {
		return err
	}
	total, err := l.ext.ValidatorTotalStake()
	if err != nil {
		return &ExternalError{err}
	}
	return l.memorySet(stakePtr, total.LittleEndian16())
}

// Gas charges for opcodes instrumented instructions.
func (l *Logic) Gas(opcodes uint32) error {
	return l.gas.PayWasmGas(opcodes)
}

// ValueReturn sets the result of the call.
func (l *Logic) ValueReturn(n, ptr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	value, err := l.vecFromMemoryOrRegister(ptr, n)
	if err != nil {
		return err
	}
	if limit := l.limits().MaxLengthReturnedData; uint64(len(value)) > limit {
		return &HostError{Kind: ReturnedValueLengthExceeded, Length: uint64(len(value)), Limit: limit}
	}
	for _, receiver := range l.ctx.OutputDataReceivers {
		sir := receiver == l.ctx.CurrentAccountID
		fee := l.fees.DataReceiptCreationConfig.CostPerByte
		if err := l.gas.PayPerByteFee(fee, sir, uint64(len(value))); err != nil {
			return err
		}
	}
	l.returnData = ReturnData{Kind: ReturnValue, Value: value}
	return nil
}

// Panic aborts the call.
func (l *Logic) Panic() error {
	if err := l.payBase(); err != nil {
		return err
	}
	return &HostError{Kind: GuestPanic, Msg: "explicit guest panic"}
}

// PanicUTF8 aborts the call with a message.
func (l *Logic) PanicUTF8(n, ptr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	msg, err := l.utf8String(n, ptr)
	if err != nil {
		return err
	}
	return &HostError{Kind: GuestPanic, Msg: msg}
}

// LogUTF8 appends a log message.
func (l *Logic) LogUTF8(n, ptr uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	if limit := l.limits().MaxNumberLogs; uint64(len(l.logs)) >= limit {
		return &HostError{Kind: NumberOfLogsExceeded, Length: uint64(len(l.logs)) + 1, Limit: limit}
	}
	msg, err := l.utf8String(n, ptr)
	if err != nil {
		return err
	}
	if err := l.gas.PayBase(params.LogBase); err != nil {
		return err
	}
	if err := l.gas.PayPerByte(params.LogByte, uint64(len(msg))); err != nil {
		return err
	}
	l.totalLogLength += uint64(len(msg))
	l.logs = append(l.logs, msg)
	return nil
}

// promises

// PromiseBatchCreate creates an action receipt for accountID and returns its index.
func (l *Logic) PromiseBatchCreate(n, ptr uint64) (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	if err := l.prohibitedInView("promise_batch_create"); err != nil {
		return 0, err
	}
	id, err := l.readAccountID(n, ptr)
	if err != nil {
		return 0, err
	}
	if limit := l.limits().MaxPromisesPerFunctionCallAction; uint64(len(l.receipts)) >= limit {
		return 0, &HostError{Kind: NumberPromisesExceeded, Length: uint64(len(l.receipts)) + 1, Limit: limit}
	}
	sir := id == l.ctx.CurrentAccountID
	if err := l.gas.PayActionBase(l.fees.ActionReceiptCreationConfig, sir); err != nil {
		return 0, err
	}
	l.receipts = append(l.receipts, Receipt{ReceiverID: id})
	return uint64(len(l.receipts) - 1), nil
}

// PromiseReturn makes the result of the promise the result of the call.
func (l *Logic) PromiseReturn(idx uint64) error {
	if err := l.payBase(); err != nil {
		return err
	}
	if err := l.prohibitedInView("promise_return"); err != nil {
		return err
	}
	if err := l.gas.PayBase(params.PromiseReturn); err != nil {
		return err
	}
	if idx >= uint64(len(l.receipts)) {
		return newHostError(InvalidPromiseIndex)
	}
	l.returnData = ReturnData{Kind: ReturnReceiptIndex, ReceiptIndex: idx}
	return nil
}

// PromiseResultsCount returns the number of promise results available to the call.
func (l *Logic) PromiseResultsCount() (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	if err := l.prohibitedInView("promise_results_count"); err != nil {
		return 0, err
	}
	return uint64(len(l.promiseResults)), nil
}

// PromiseResult writes the data of a successful promise result into a register and
// returns the status of the result.
func (l *Logic) PromiseResult(idx, register uint64) (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	if err := l.prohibitedInView("promise_result"); err != nil {
		return 0, err
	}
	if idx >= uint64(len(l.promiseResults)) {
		return 0, newHostError(InvalidPromiseResultIndex)
	}
	res := l.promiseResults[idx]
	if res.Status == PromiseSuccessful {
		if err := l.internalWriteRegister(register, res.Data); err != nil {
			return 0, err
		}
	}
	return uint64(res.Status), nil
}

// storage

func (l *Logic) checkKeyLen(n uint64) error {
	if limit := l.limits().MaxLengthStorageKey; n != math.MaxUint64 && n > limit {
		return &HostError{Kind: KeyLengthExceeded, Length: n, Limit: limit}
	}
	return nil
}

func (l *Logic) readKey(n, ptr uint64) ([]byte, error) {
	if err := l.checkKeyLen(n); err != nil {
		return nil, err
	}
	key, err := l.vecFromMemoryOrRegister(ptr, n)
	if err != nil {
		return nil, err
	}
	// a key read from a register is only known after reading
	if err := l.checkKeyLen(uint64(len(key))); err != nil {
		return nil, err
	}
	return key, nil
}

func (l *Logic) recordSize(key, value []byte) uint64 {
	return uint64(len(key)) + uint64(len(value)) + l.fees.StorageUsageConfig.NumExtraBytesRecord
}

// StorageWrite writes a key value pair. If the key held a value, the old value is
// written into a register and 1 is returned.
func (l *Logic) StorageWrite(keyLen, keyPtr, valueLen, valuePtr, register uint64) (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	key, err := l.readKey(keyLen, keyPtr)
	if err != nil {
		return 0, err
	}
	lim := l.limits().MaxLengthStorageValue
	if valueLen != math.MaxUint64 && valueLen > lim {
		return 0, &HostError{Kind: ValueLengthExceeded, Length: valueLen, Limit: lim}
	}
	value, err := l.vecFromMemoryOrRegister(valuePtr, valueLen)
	if err != nil {
		return 0, err
	}
	if uint64(len(value)) > lim {
		return 0, &HostError{Kind: ValueLengthExceeded, Length: uint64(len(value)), Limit: lim}
	}
	if err := l.gas.PayBase(params.StorageWriteBase); err != nil {
		return 0, err
	}
	if err := l.gas.PayPerByte(params.StorageWriteKeyByte, uint64(len(key))); err != nil {
		return 0, err
	}
	if err := l.gas.PayPerByte(params.StorageWriteValueByte, uint64(len(value))); err != nil {
		return 0, err
	}
	if err := l.gas.PayBase(params.TouchingTrieNode); err != nil {
		return 0, err
	}
	evicted, err := l.ext.StorageGet(key)
	if err != nil {
		return 0, &ExternalError{err}
	}
	if err := l.ext.StorageSet(key, value); err != nil {
		return 0, &ExternalError{err}
	}
	if evicted == nil {
		l.storageUsage += l.recordSize(key, value)
		return 0, nil
	}
	l.storageUsage = l.storageUsage - uint64(len(evicted)) + uint64(len(value))
	if err := l.gas.PayPerByte(params.StorageWriteEvictedByte, uint64(len(evicted))); err != nil {
		return 0, err
	}
	if err := l.internalWriteRegister(register, evicted); err != nil {
		return 0, err
	}
	return 1, nil
}

// StorageRead reads the value of a key into a register. It returns 1 if the key exists.
func (l *Logic) StorageRead(keyLen, keyPtr, register uint64) (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	key, err := l.readKey(keyLen, keyPtr)
	if err != nil {
		return 0, err
	}
	if err := l.gas.PayBase(params.StorageReadBase); err != nil {
		return 0, err
	}
	if err := l.gas.PayPerByte(params.StorageReadKeyByte, uint64(len(key))); err != nil {
		return 0, err
	}
	if err := l.gas.PayBase(params.TouchingTrieNode); err != nil {
		return 0, err
	}
	value, err := l.ext.StorageGet(key)
	if err != nil {
		return 0, &ExternalError{err}
	}
	if value == nil {
		return 0, nil
	}
	if err := l.gas.PayPerByte(params.StorageReadValueByte, uint64(len(value))); err != nil {
		return 0, err
	}
	if err := l.internalWriteRegister(register, value); err != nil {
		return 0, err
	}
	return 1, nil
}

// StorageRemove removes a key. If the key existed, its value is written into a
// register and 1 is returned.
func (l *Logic) StorageRemove(keyLen, keyPtr, register uint64) (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	key, err := l.readKey(keyLen, keyPtr)
	if err != nil {
		return 0, err
	}
	if err := l.gas.PayBase(params.StorageRemoveBase); err != nil {
		return 0, err
	}
	if err := l.gas.PayPerByte(params.StorageRemoveKeyByte, uint64(len(key))); err != nil {
		return 0, err
	}
	if err := l.gas.PayBase(params.TouchingTrieNode); err != nil {
		return 0, err
	}
	removed, err := l.ext.StorageGet(key)
	if err != nil {
		return 0, &ExternalError{err}
	}
	if removed == nil {
		return 0, nil
	}
	if err := l.ext.StorageRemove(key); err != nil {
		return 0, &ExternalError{err}
	}
	if err := l.gas.PayPerByte(params.StorageRemoveRetValueByte, uint64(len(removed))); err != nil {
		return 0, err
	}
	l.storageUsage -= min(l.storageUsage, l.recordSize(key, removed))
	if err := l.internalWriteRegister(register, removed); err != nil {
		return 0, err
	}
	return 1, nil
}

// StorageHasKey returns 1 if the key exists.
func (l *Logic) StorageHasKey(keyLen, keyPtr uint64) (uint64, error) {
	if err := l.payBase(); err != nil {
		return 0, err
	}
	key, err := l.readKey(keyLen, keyPtr)
	if err != nil {
		return 0, err
	}
	if err := l.gas.PayBase(params.StorageHasKeyBase); err != nil {
		return 0, err
	}
	if err := l.gas.PayPerByte(params.StorageHasKeyByte, uint64(len(key))); err != nil {
		return 0, err
	}
	if err := l.gas.PayBase(params.TouchingTrieNode); err != nil {
		return 0, err
	}
	ok, err := l.ext.StorageHasKey(key)
	if err != nil {
		return 0, &ExternalError{err}
	}
	if ok {
		return 1, nil
	}
	return 0, nil
}
