// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wasmvm

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trieview/trieview/vm"
)

// Gas metering by code injection.
//
// Every metered block of a function body starts with
//
//	i32.const <instructions in block>
//	call $env.gas
//
// A metered block ends after each control instruction, so loop bodies pay on
// every iteration. The gas import is appended to the import section when the
// module does not declare it, shifting the index of every defined function by one.

const (
	sectionCustom  = 0
	sectionType    = 1
	sectionImport  = 2
	sectionGlobal  = 6
	sectionExport  = 7
	sectionStart   = 8
	sectionElement = 9
	sectionCode    = 10
	sectionData    = 11
	sectionDataCnt = 12
)

const (
	opUnreachable  = 0x00
	opBlock        = 0x02
	opLoop         = 0x03
	opIf           = 0x04
	opElse         = 0x05
	opEnd          = 0x0b
	opBr           = 0x0c
	opBrIf         = 0x0d
	opBrTable      = 0x0e
	opReturn       = 0x0f
	opCall         = 0x10
	opCallIndirect = 0x11
	opI32Const     = 0x41
	opRefFunc      = 0xd2
	opPrefixMisc   = 0xfc
)

var wasmHeader = []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

// gasFuncType is the encoded type (i32) -> ().
var gasFuncType = []byte{0x60, 0x01, 0x7f, 0x00}

type section struct {
	id      byte
	payload []byte
}

// order returns the position of a known section in a module.
func (s section) order() int {
	switch s.id {
	case sectionDataCnt:
		return 10
	case sectionCode:
		return 11
	case sectionData:
		return 12
	}
	return int(s.id)
}

type reader struct {
	b   []byte
	pos int
	err error
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = errors.Errorf(format, args...)
	}
}

func (r *reader) done() bool { return r.err != nil || r.pos >= len(r.b) }

func (r *reader) byte() byte {
	if r.err != nil {
		return 0
	}
	if r.pos >= len(r.b) {
		r.fail("unexpected end at %d", r.pos)
		return 0
	}
	c := r.b[r.pos]
	r.pos++
	return c
}

func (r *reader) bytes(n uint32) []byte {
	if r.err != nil {
		return nil
	}
	if uint64(len(r.b)-r.pos) < uint64(n) {
		r.fail("unexpected end at %d", r.pos)
		return nil
	}
	out := r.b[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return out
}

func (r *reader) u32() uint32 {
	var v uint32
	for shift := 0; shift < 35; shift += 7 {
		c := r.byte()
		if r.err != nil {
			return 0
		}
		v |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return v
		}
	}
	r.fail("malformed integer at %d", r.pos)
	return 0
}

// skipLEB skips a signed integer of up to 64 bits.
func (r *reader) skipLEB() {
	for i := 0; i < 10; i++ {
		if r.byte()&0x80 == 0 {
			return
		}
	}
	r.fail("malformed integer at %d", r.pos)
}

func appendU32(dst []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, c)
		}
		dst = append(dst, c|0x80)
	}
}

func appendI32(dst []byte, v int32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(dst, c)
		}
		dst = append(dst, c|0x80)
	}
}

// instrumenter rewrites one module.
type instrumenter struct {
	gasIndex uint32
	// defined functions move up by one from firstDefined when the gas import is added
	firstDefined uint32
	shift        uint32
}

func (in *instrumenter) remap(idx uint32) uint32 {
	if idx >= in.firstDefined {
		return idx + in.shift
	}
	return idx
}

// instrumentGas returns the module with gas metering injected. Malformed input
// yields a plain error; modules that decode but can not be metered yield a
// PrepareError.
func instrumentGas(code []byte) ([]byte, error) {
	if !bytes.HasPrefix(code, wasmHeader) {
		return nil, errors.New("invalid wasm header")
	}
	r := &reader{b: code, pos: len(wasmHeader)}
	var sections []section
	for !r.done() {
		id := r.byte()
		size := r.u32()
		sections = append(sections, section{id, r.bytes(size)})
	}
	if r.err != nil {
		return nil, r.err
	}

	var (
		in                   instrumenter
		types, imports       *section
		gasType              = -1
		numTypes, numImports uint32
		typesAt, importsAt   int
		funcImports          uint32
		gasImported          bool
	)
	for i := range sections {
		switch sections[i].id {
		case sectionType:
			types = &sections[i]
		case sectionImport:
			imports = &sections[i]
		}
	}

	var typeSigs [][]byte
	if types != nil {
		tr := &reader{b: types.payload}
		numTypes = tr.u32()
		typesAt = tr.pos
		for i := uint32(0); i < numTypes && tr.err == nil; i++ {
			start := tr.pos
			if form := tr.byte(); form != 0x60 {
				tr.fail("unsupported type form 0x%x", form)
			}
			tr.bytes(tr.u32())
			tr.bytes(tr.u32())
			sig := tr.b[start:tr.pos]
			typeSigs = append(typeSigs, sig)
			if gasType < 0 && bytes.Equal(sig, gasFuncType) {
				gasType = int(i)
			}
		}
		if tr.err != nil {
			return nil, errors.WithMessage(tr.err, "type section")
		}
	}

	if imports != nil {
		ir := &reader{b: imports.payload}
		numImports = ir.u32()
		importsAt = ir.pos
		for i := uint32(0); i < numImports && ir.err == nil; i++ {
			module := string(ir.bytes(ir.u32()))
			name := string(ir.bytes(ir.u32()))
			switch kind := ir.byte(); kind {
			case 0x00:
				typeIdx := ir.u32()
				if module == hostModule && name == "gas" {
					if typeIdx >= uint32(len(typeSigs)) || !bytes.Equal(typeSigs[typeIdx], gasFuncType) {
						return nil, &vm.CompilationError{Kind: vm.PrepareError, Msg: "gas import has invalid signature"}
					}
					in.gasIndex, gasImported = funcImports, true
				}
				funcImports++
			case 0x01:
				ir.byte()
				readLimits(ir)
			case 0x02:
				readLimits(ir)
			case 0x03:
				ir.bytes(2)
			default:
				ir.fail("unknown import kind 0x%x", kind)
			}
		}
		if ir.err != nil {
			return nil, errors.WithMessage(ir.err, "import section")
		}
	}

	in.firstDefined = funcImports
	var newTypes, newImports []byte
	if !gasImported {
		if gasType < 0 {
			gasType = int(numTypes)
			newTypes = appendU32(nil, numTypes+1)
			if types != nil {
				newTypes = append(newTypes, types.payload[typesAt:]...)
			}
			newTypes = append(newTypes, gasFuncType...)
		}
		newImports = appendU32(nil, numImports+1)
		if imports != nil {
			newImports = append(newImports, imports.payload[importsAt:]...)
		}
		newImports = appendName(newImports, hostModule)
		newImports = appendName(newImports, "gas")
		newImports = append(newImports, 0x00)
		newImports = appendU32(newImports, uint32(gasType))
		in.gasIndex, in.shift = funcImports, 1
	}

	out := bytes.NewBuffer(append([]byte(nil), wasmHeader...))
	typesDone, importsDone := newTypes == nil, newImports == nil
	emitPending := func(order int) {
		if !typesDone && order > sectionType {
			writeSection(out, sectionType, newTypes)
			typesDone = true
		}
		if !importsDone && order > sectionImport {
			writeSection(out, sectionImport, newImports)
			importsDone = true
		}
	}
	for _, s := range sections {
		if s.id == sectionCustom {
			if nameOf(s.payload) == "name" {
				// function indices in the name section would be stale
				continue
			}
			out.WriteByte(s.id)
			out.Write(appendU32(nil, uint32(len(s.payload))))
			out.Write(s.payload)
			continue
		}
		emitPending(s.order())

		payload := s.payload
		var err error
		switch s.id {
		case sectionType:
			if newTypes != nil {
				payload, typesDone = newTypes, true
			}
		case sectionImport:
			if newImports != nil {
				payload, importsDone = newImports, true
			}
		case sectionGlobal:
			payload, err = in.rewriteGlobals(payload)
		case sectionExport:
			payload, err = in.rewriteExports(payload)
		case sectionStart:
			sr := &reader{b: payload}
			payload, err = appendU32(nil, in.remap(sr.u32())), sr.err
		case sectionElement:
			payload, err = in.rewriteElements(payload)
		case sectionCode:
			payload, err = in.rewriteCode(payload)
		}
		if err != nil {
			return nil, err
		}
		writeSection(out, s.id, payload)
	}
	emitPending(sectionDataCnt + 100)
	return out.Bytes(), nil
}

func readLimits(r *reader) {
	flags := r.byte()
	r.u32()
	if flags&0x01 != 0 {
		r.u32()
	}
}

func appendName(dst []byte, name string) []byte {
	return append(appendU32(dst, uint32(len(name))), name...)
}

func nameOf(payload []byte) string {
	r := &reader{b: payload}
	name := r.bytes(r.u32())
	if r.err != nil {
		return ""
	}
	return string(name)
}

func writeSection(out *bytes.Buffer, id byte, payload []byte) {
	out.WriteByte(id)
	out.Write(appendU32(nil, uint32(len(payload))))
	out.Write(payload)
}

func (in *instrumenter) rewriteGlobals(payload []byte) ([]byte, error) {
	r := &reader{b: payload}
	n := r.u32()
	out := appendU32(nil, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		out = append(out, r.bytes(2)...)
		out = in.copyExpr(r, out)
	}
	return out, errors.WithMessage(r.err, "global section")
}

func (in *instrumenter) rewriteExports(payload []byte) ([]byte, error) {
	r := &reader{b: payload}
	n := r.u32()
	out := appendU32(nil, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		name := r.bytes(r.u32())
		kind := r.byte()
		idx := r.u32()
		if kind == 0x00 {
			idx = in.remap(idx)
		}
		out = appendU32(out, uint32(len(name)))
		out = append(out, name...)
		out = append(out, kind)
		out = appendU32(out, idx)
	}
	return out, errors.WithMessage(r.err, "export section")
}

func (in *instrumenter) rewriteElements(payload []byte) ([]byte, error) {
	r := &reader{b: payload}
	n := r.u32()
	out := appendU32(nil, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		flags := r.u32()
		out = appendU32(out, flags)
		switch flags {
		case 0:
			out = in.copyExpr(r, out)
			out = in.copyFuncIndices(r, out)
		case 1, 3:
			out = append(out, r.byte())
			out = in.copyFuncIndices(r, out)
		case 2:
			out = appendU32(out, r.u32())
			out = in.copyExpr(r, out)
			out = append(out, r.byte())
			out = in.copyFuncIndices(r, out)
		case 4:
			out = in.copyExpr(r, out)
			out = in.copyExprs(r, out)
		case 5, 7:
			out = append(out, r.byte())
			out = in.copyExprs(r, out)
		case 6:
			out = appendU32(out, r.u32())
			out = in.copyExpr(r, out)
			out = append(out, r.byte())
			out = in.copyExprs(r, out)
		default:
			r.fail("unknown element segment flags %d", flags)
		}
	}
	return out, errors.WithMessage(r.err, "element section")
}

func (in *instrumenter) copyFuncIndices(r *reader, out []byte) []byte {
	n := r.u32()
	out = appendU32(out, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		out = appendU32(out, in.remap(r.u32()))
	}
	return out
}

func (in *instrumenter) copyExprs(r *reader, out []byte) []byte {
	n := r.u32()
	out = appendU32(out, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		out = in.copyExpr(r, out)
	}
	return out
}

// copyExpr copies a constant expression up to and including its end.
func (in *instrumenter) copyExpr(r *reader, out []byte) []byte {
	for r.err == nil {
		var op byte
		out, op = in.copyInstr(r, out)
		if op == opEnd {
			break
		}
	}
	return out
}

func (in *instrumenter) rewriteCode(payload []byte) ([]byte, error) {
	r := &reader{b: payload}
	n := r.u32()
	out := appendU32(nil, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		body := r.bytes(r.u32())
		if r.err != nil {
			break
		}
		metered, err := in.meterBody(body)
		if err != nil {
			return nil, errors.WithMessagef(err, "function %d", i)
		}
		out = appendU32(out, uint32(len(metered)))
		out = append(out, metered...)
	}
	return out, errors.WithMessage(r.err, "code section")
}

// meterBody injects a gas charge at the start of every metered block of a function body.
func (in *instrumenter) meterBody(body []byte) ([]byte, error) {
	r := &reader{b: body}
	out := make([]byte, 0, len(body)+len(body)/2)

	// locals
	n := r.u32()
	out = appendU32(out, n)
	for i := uint32(0); i < n && r.err == nil; i++ {
		out = appendU32(out, r.u32())
		out = append(out, r.byte())
	}

	var (
		block []byte
		count int32
		depth = 1
	)
	flush := func() {
		if count > 0 {
			out = appendI32(append(out, opI32Const), count)
			out = appendU32(append(out, opCall), in.gasIndex)
		}
		out = append(out, block...)
		block, count = block[:0], 0
	}
	for depth > 0 && r.err == nil {
		var op byte
		block, op = in.copyInstr(r, block)
		if r.err != nil {
			break
		}
		count++
		switch op {
		case opBlock, opLoop, opIf:
			depth++
			flush()
		case opEnd:
			depth--
			flush()
		case opElse, opBr, opBrIf, opBrTable, opReturn, opUnreachable:
			flush()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.pos != len(body) {
		return nil, errors.New("trailing bytes after function end")
	}
	return out, nil
}

// copyInstr copies one instruction to out, remapping function indices.
// Unsupported instructions set the reader error.
func (in *instrumenter) copyInstr(r *reader, out []byte) ([]byte, byte) {
	start := r.pos
	op := r.byte()
	switch {
	case op == opCall || op == opRefFunc:
		idx := r.u32()
		return appendU32(append(out, op), in.remap(idx)), op
	case op == opBlock || op == opLoop || op == opIf:
		readBlockType(r)
	case op == opBr || op == opBrIf:
		r.u32()
	case op == opBrTable:
		n := r.u32()
		for i := uint32(0); i <= n && r.err == nil; i++ {
			r.u32()
		}
	case op == opCallIndirect:
		r.u32()
		r.u32()
	case op == 0x1c: // select t*
		r.bytes(r.u32())
	case op >= 0x20 && op <= 0x26: // locals, globals, table get/set
		r.u32()
	case op >= 0x28 && op <= 0x3e: // loads and stores
		r.u32()
		r.u32()
	case op == 0x3f || op == 0x40: // memory.size, memory.grow
		r.u32()
	case op == opI32Const || op == 0x42:
		r.skipLEB()
	case op == 0x43:
		r.bytes(4)
	case op == 0x44:
		r.bytes(8)
	case op == 0xd0: // ref.null
		r.byte()
	case op == opPrefixMisc:
		copyMisc(r)
	case op <= 0x01, op == opElse, op == opEnd, op == opReturn,
		op == 0x1a, op == 0x1b, op >= 0x45 && op <= 0xc4, op == 0xd1:
	default:
		if r.err == nil {
			r.err = &vm.CompilationError{
				Kind: vm.PrepareError,
				Msg:  fmt.Sprintf("unsupported instruction 0x%x at %d", op, start),
			}
		}
	}
	return append(out, r.b[start:r.pos]...), op
}

func copyMisc(r *reader) {
	switch sub := r.u32(); {
	case sub <= 7: // saturating truncation
	case sub == 8: // memory.init
		r.u32()
		r.byte()
	case sub == 9, sub == 13, sub >= 15 && sub <= 17: // data.drop, elem.drop, table.grow/size/fill
		r.u32()
	case sub == 10: // memory.copy
		r.bytes(2)
	case sub == 11: // memory.fill
		r.byte()
	case sub == 12, sub == 14: // table.init, table.copy
		r.u32()
		r.u32()
	default:
		if r.err == nil {
			r.err = &vm.CompilationError{
				Kind: vm.PrepareError,
				Msg:  fmt.Sprintf("unsupported instruction 0xfc %d", sub),
			}
		}
	}
}

func readBlockType(r *reader) {
	if r.pos >= len(r.b) {
		r.byte()
		return
	}
	switch r.b[r.pos] {
	case 0x40, 0x7f, 0x7e, 0x7d, 0x7c, 0x7b, 0x70, 0x6f:
		r.pos++
	default:
		r.skipLEB()
	}
}
