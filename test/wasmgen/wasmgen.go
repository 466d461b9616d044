// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package wasmgen assembles small wasm binaries for tests.
package wasmgen

import "bytes"

// ValType is a wasm value type.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
)

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (t FuncType) encode(buf *bytes.Buffer) {
	buf.WriteByte(0x60)
	writeU32(buf, uint32(len(t.Params)))
	for _, p := range t.Params {
		buf.WriteByte(byte(p))
	}
	writeU32(buf, uint32(len(t.Results)))
	for _, r := range t.Results {
		buf.WriteByte(byte(r))
	}
}

// Import is an imported function.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a function defined by the module.
type Func struct {
	Type   FuncType
	Locals []ValType
	Body   []byte // instructions without the final end
	Export string // exported under this name if not empty
}

// Data is an active data segment of memory 0.
type Data struct {
	Offset uint32
	Bytes  []byte
}

// Module describes a wasm module.
type Module struct {
	Imports     []Import
	Funcs       []Func
	MemoryPages uint32 // no memory if zero
	Data        []Data
}

// Env returns an import of a host function of module env.
func Env(name string, params []ValType, results ...ValType) Import {
	return Import{Module: "env", Name: name, Type: FuncType{Params: params, Results: results}}
}

// FuncIndex returns the index of the import or function named name, or panics.
func (m *Module) FuncIndex(name string) uint32 {
	for i, imp := range m.Imports {
		if imp.Name == name {
			return uint32(i)
		}
	}
	for i, f := range m.Funcs {
		if f.Export == name {
			return uint32(len(m.Imports) + i)
		}
	}
	panic("wasmgen: no function " + name)
}

// Encode returns the binary form of the module.
func (m *Module) Encode() []byte {
	var (
		types   []FuncType
		typeIdx = func(t FuncType) uint32 {
			for i, have := range types {
				if bytes.Equal(valTypes(have.Params), valTypes(t.Params)) &&
					bytes.Equal(valTypes(have.Results), valTypes(t.Results)) {
					return uint32(i)
				}
			}
			types = append(types, t)
			return uint32(len(types) - 1)
		}
		importTypes = make([]uint32, len(m.Imports))
		funcTypes   = make([]uint32, len(m.Funcs))
	)
	for i, imp := range m.Imports {
		importTypes[i] = typeIdx(imp.Type)
	}
	for i, f := range m.Funcs {
		funcTypes[i] = typeIdx(f.Type)
	}

	var out bytes.Buffer
	out.Write([]byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00})

	section(&out, 1, func(b *bytes.Buffer) {
		writeU32(b, uint32(len(types)))
		for _, t := range types {
			t.encode(b)
		}
	})
	if len(m.Imports) > 0 {
		section(&out, 2, func(b *bytes.Buffer) {
			writeU32(b, uint32(len(m.Imports)))
			for i, imp := range m.Imports {
				writeName(b, imp.Module)
				writeName(b, imp.Name)
				b.WriteByte(0x00)
				writeU32(b, importTypes[i])
			}
		})
	}
	section(&out, 3, func(b *bytes.Buffer) {
		writeU32(b, uint32(len(m.Funcs)))
		for _, idx := range funcTypes {
			writeU32(b, idx)
		}
	})
	if m.MemoryPages > 0 {
		section(&out, 5, func(b *bytes.Buffer) {
			writeU32(b, 1)
			b.WriteByte(0x00)
			writeU32(b, m.MemoryPages)
		})
	}
	section(&out, 7, func(b *bytes.Buffer) {
		var n uint32
		for _, f := range m.Funcs {
			if f.Export != "" {
				n++
			}
		}
		if m.MemoryPages > 0 {
			n++
		}
		writeU32(b, n)
		for i, f := range m.Funcs {
			if f.Export != "" {
				writeName(b, f.Export)
				b.WriteByte(0x00)
				writeU32(b, uint32(len(m.Imports)+i))
			}
		}
		if m.MemoryPages > 0 {
			writeName(b, "memory")
			b.WriteByte(0x02)
			writeU32(b, 0)
		}
	})
	section(&out, 10, func(b *bytes.Buffer) {
		writeU32(b, uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			var body bytes.Buffer
			writeU32(&body, uint32(len(f.Locals)))
			for _, l := range f.Locals {
				writeU32(&body, 1)
				body.WriteByte(byte(l))
			}
			body.Write(f.Body)
			body.WriteByte(0x0b)
			writeU32(b, uint32(body.Len()))
			b.Write(body.Bytes())
		}
	})
	if len(m.Data) > 0 {
		section(&out, 11, func(b *bytes.Buffer) {
			writeU32(b, uint32(len(m.Data)))
			for _, d := range m.Data {
				b.WriteByte(0x00)
				b.Write(I32Const(int32(d.Offset)))
				b.WriteByte(0x0b)
				writeU32(b, uint32(len(d.Bytes)))
				b.Write(d.Bytes)
			}
		})
	}
	return out.Bytes()
}

func valTypes(v []ValType) []byte {
	b := make([]byte, len(v))
	for i, t := range v {
		b[i] = byte(t)
	}
	return b
}

func section(out *bytes.Buffer, id byte, fill func(*bytes.Buffer)) {
	var content bytes.Buffer
	fill(&content)
	out.WriteByte(id)
	writeU32(out, uint32(content.Len()))
	out.Write(content.Bytes())
}

func writeName(b *bytes.Buffer, s string) {
	writeU32(b, uint32(len(s)))
	b.WriteString(s)
}

func writeU32(b *bytes.Buffer, v uint32) {
	b.Write(appendULEB(nil, uint64(v)))
}

func appendULEB(dst []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		dst = append(dst, c)
		if v == 0 {
			return dst
		}
	}
}

func appendSLEB(dst []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(dst, c)
		}
		dst = append(dst, c|0x80)
	}
}
