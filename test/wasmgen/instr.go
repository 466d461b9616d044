// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wasmgen

// Code concatenates instructions.
func Code(instrs ...[]byte) []byte {
	var out []byte
	for _, in := range instrs {
		out = append(out, in...)
	}
	return out
}

func I32Const(v int32) []byte { return appendSLEB([]byte{0x41}, int64(v)) }
func I64Const(v int64) []byte { return appendSLEB([]byte{0x42}, v) }
func Call(idx uint32) []byte  { return appendULEB([]byte{0x10}, uint64(idx)) }
func LocalGet(idx uint32) []byte {
	return appendULEB([]byte{0x20}, uint64(idx))
}

func LocalSet(idx uint32) []byte {
	return appendULEB([]byte{0x21}, uint64(idx))
}

func Unreachable() []byte { return []byte{0x00} }
func Drop() []byte        { return []byte{0x1a} }

// Loop wraps body in a loop that branches back forever.
func Loop(body ...[]byte) []byte {
	out := []byte{0x03, 0x40}
	out = append(out, Code(body...)...)
	return append(out, 0x0c, 0x00, 0x0b)
}

// I32DivByZero traps with an arithmetic error.
func I32DivByZero() []byte {
	return Code(I32Const(1), I32Const(0), []byte{0x6d}, Drop())
}

// I32Load8 loads a byte from memory at the given address.
func I32Load8(addr int32) []byte {
	return Code(I32Const(addr), []byte{0x2d, 0x00, 0x00})
}
