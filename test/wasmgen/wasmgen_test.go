// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package wasmgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLEB128(t *testing.T) {
	assert.Equal(t, []byte{0x00}, appendULEB(nil, 0))
	assert.Equal(t, []byte{0xe5, 0x8e, 0x26}, appendULEB(nil, 624485))
	assert.Equal(t, []byte{0x7f}, appendSLEB(nil, -1))
	assert.Equal(t, []byte{0xc0, 0xbb, 0x78}, appendSLEB(nil, -123456))
	assert.Equal(t, []byte{0x3f}, appendSLEB(nil, 63))
	assert.Equal(t, []byte{0xc0, 0x00}, appendSLEB(nil, 64))
}

func TestEncodeEmptyFunction(t *testing.T) {
	m := &Module{Funcs: []Func{{Export: "f"}}}
	want := []byte{
		0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00,
		0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section
		0x03, 0x02, 0x01, 0x00, // function section
		0x07, 0x05, 0x01, 0x01, 'f', 0x00, 0x00, // export section
		0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b, // code section
	}
	assert.Equal(t, want, m.Encode())
}

func TestFuncIndex(t *testing.T) {
	m := &Module{
		Imports: []Import{Env("a", nil), Env("b", []ValType{I64}, I64)},
		Funcs:   []Func{{Export: "main"}},
	}
	assert.Equal(t, uint32(1), m.FuncIndex("b"))
	assert.Equal(t, uint32(2), m.FuncIndex("main"))
	assert.Panics(t, func() { m.FuncIndex("missing") })
}
