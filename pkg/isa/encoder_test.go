// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gorisc/pkg/isa"
)

type testCase struct {
	Name        string
	Instruction isa.Instruction
	Output      uint32
	Fields      string
}

type failCase struct {
	Name        string
	Instruction isa.Instruction
	Error       error
}

func testEncoderSuccess(t *testing.T, test *testCase) {
	enc := isa.NewEncoder(nil)

	result, err := enc.Encode(&test.Instruction)
	require.NoError(t, err)

	assert.Equal(
		t, test.Output, result.Word,
		"want:%#08x have:%#08x", test.Output, result.Word,
	)

	if test.Fields != "" {
		assert.Equal(t, test.Fields, result.Fields.String())
	}

	decoded := isa.Decode(result.Word)
	assert.Equal(t, result.Fields, decoded, "decode(encode(x)) != x")
	assert.Equal(t, test.Instruction.Imm, decoded.Immediate())

	entry, ok := enc.Table.Match(decoded)
	require.True(t, ok)
	assert.Equal(t, test.Instruction.Mnemonic, entry.Mnemonic)

	assert.NoError(t, enc.Verify(&result))
}

func testEncoderFailure(t *testing.T, test *failCase) {
	result, err := isa.NewEncoder(nil).Encode(&test.Instruction)

	assert.ErrorIs(t, err, test.Error)
	assert.Zero(t, result.Word)
}

func TestEncodeR(t *testing.T) {
	tests := []testCase{
		{
			Name:        "add",
			Instruction: isa.Instruction{Mnemonic: "add", Rd: "x2", Rs1: "x0", Rs2: "x0"},
			Output:      0x00000133,
			Fields:      "0110011-000-0000000-00010-00000-00000-NULL",
		},
		{
			Name:        "sub",
			Instruction: isa.Instruction{Mnemonic: "sub", Rd: "x3", Rs1: "x1", Rs2: "x2"},
			Output:      0x402081B3,
		},
		{
			Name:        "mul",
			Instruction: isa.Instruction{Mnemonic: "mul", Rd: "x5", Rs1: "x6", Rs2: "x7"},
			Output:      0x027302B3,
		},
		{
			Name:        "sra",
			Instruction: isa.Instruction{Mnemonic: "sra", Rd: "x31", Rs1: "x31", Rs2: "x31"},
			Output:      0x41FFDFB3,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) { testEncoderSuccess(t, &test) })
	}
}

func TestEncodeI(t *testing.T) {
	tests := []testCase{
		{
			Name:        "addi",
			Instruction: isa.Instruction{Mnemonic: "addi", Rd: "x1", Rs1: "x0", Imm: 5},
			Output:      0x00500093,
			Fields:      "0010011-000-NULL-00001-00000-NULL-000000000101",
		},
		{
			Name:        "addi negative",
			Instruction: isa.Instruction{Mnemonic: "addi", Rd: "x1", Rs1: "x1", Imm: -1},
			Output:      0xFFF08093,
		},
		{
			Name:        "addi minimum",
			Instruction: isa.Instruction{Mnemonic: "addi", Rd: "x1", Rs1: "x1", Imm: -2048},
			Output:      0x80008093,
		},
		{
			Name:        "lw",
			Instruction: isa.Instruction{Mnemonic: "lw", Rd: "x5", Rs1: "x2", Imm: 8},
			Output:      0x00812283,
		},
		{
			Name:        "ld",
			Instruction: isa.Instruction{Mnemonic: "ld", Rd: "x6", Rs1: "x2", Imm: -8},
			Output:      0xFF813303,
		},
		{
			Name:        "lb",
			Instruction: isa.Instruction{Mnemonic: "lb", Rd: "x1", Rs1: "x2", Imm: 0},
			Output:      0x00010083,
		},
		{
			Name:        "jalr",
			Instruction: isa.Instruction{Mnemonic: "jalr", Rd: "x1", Rs1: "x5", Imm: 0},
			Output:      0x000280E7,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) { testEncoderSuccess(t, &test) })
	}
}

func TestEncodeS(t *testing.T) {
	tests := []testCase{
		{
			Name:        "sw",
			Instruction: isa.Instruction{Mnemonic: "sw", Rs2: "x5", Rs1: "x2", Imm: 8},
			Output:      0x00512423,
			Fields:      "0100011-010-NULL-NULL-00010-00101-000000001000",
		},
		{
			Name:        "sd negative",
			Instruction: isa.Instruction{Mnemonic: "sd", Rs2: "x1", Rs1: "x2", Imm: -16},
			Output:      0xFE113823,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) { testEncoderSuccess(t, &test) })
	}
}

func TestEncodeSB(t *testing.T) {
	tests := []testCase{
		{
			Name:        "bne backward",
			Instruction: isa.Instruction{Mnemonic: "bne", Rs1: "x1", Rs2: "x0", Imm: -4},
			Output:      0xFE009EE3,
			Fields:      "1100011-001-NULL-NULL-00001-00000-1111111111100",
		},
		{
			Name:        "beq forward",
			Instruction: isa.Instruction{Mnemonic: "beq", Rs1: "x1", Rs2: "x2", Imm: 8},
			Output:      0x00208463,
		},
		{
			Name:        "bge bit 11",
			Instruction: isa.Instruction{Mnemonic: "bge", Rs1: "x0", Rs2: "x0", Imm: 2048},
			Output:      0x000050E3,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) { testEncoderSuccess(t, &test) })
	}
}

func TestEncodeU(t *testing.T) {
	tests := []testCase{
		{
			Name:        "lui",
			Instruction: isa.Instruction{Mnemonic: "lui", Rd: "x5", Imm: 0x12345},
			Output:      0x123452B7,
			Fields:      "0110111-NULL-NULL-00101-NULL-NULL-00010010001101000101",
		},
		{
			Name:        "auipc",
			Instruction: isa.Instruction{Mnemonic: "auipc", Rd: "x5", Imm: 9},
			Output:      0x00009297,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) { testEncoderSuccess(t, &test) })
	}
}

func TestEncodeUJ(t *testing.T) {
	tests := []testCase{
		{
			Name:        "jal forward",
			Instruction: isa.Instruction{Mnemonic: "jal", Rd: "x1", Imm: 4},
			Output:      0x002000EF,
			Fields:      "1101111-NULL-NULL-00001-NULL-NULL-00000000000000000001",
		},
		{
			Name:        "jal backward",
			Instruction: isa.Instruction{Mnemonic: "jal", Rd: "x0", Imm: -8},
			Output:      0xFFDFF06F,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) { testEncoderSuccess(t, &test) })
	}
}

func TestEncodeFailure(t *testing.T) {
	tests := []failCase{
		{
			Name:        "unknown mnemonic",
			Instruction: isa.Instruction{Mnemonic: "nop"},
			Error:       isa.ErrUnknownInstruction,
		},
		{
			Name:        "register x32",
			Instruction: isa.Instruction{Mnemonic: "add", Rd: "x32", Rs1: "x0", Rs2: "x0"},
			Error:       isa.ErrInvalidRegister,
		},
		{
			Name:        "register name",
			Instruction: isa.Instruction{Mnemonic: "add", Rd: "x1", Rs1: "sp", Rs2: "x0"},
			Error:       isa.ErrInvalidRegister,
		},
		{
			Name:        "missing register",
			Instruction: isa.Instruction{Mnemonic: "sw", Rs1: "x1"},
			Error:       isa.ErrInvalidRegister,
		},
		{
			Name:        "i immediate",
			Instruction: isa.Instruction{Mnemonic: "addi", Rd: "x1", Rs1: "x0", Imm: 2048},
			Error:       isa.ErrImmediateRange,
		},
		{
			Name:        "s immediate",
			Instruction: isa.Instruction{Mnemonic: "sw", Rs2: "x1", Rs1: "x0", Imm: -2049},
			Error:       isa.ErrImmediateRange,
		},
		{
			Name:        "branch too far",
			Instruction: isa.Instruction{Mnemonic: "beq", Rs1: "x1", Rs2: "x0", Imm: 4096},
			Error:       isa.ErrImmediateRange,
		},
		{
			Name:        "odd branch",
			Instruction: isa.Instruction{Mnemonic: "beq", Rs1: "x1", Rs2: "x0", Imm: 3},
			Error:       isa.ErrMisaligned,
		},
		{
			Name:        "upper immediate",
			Instruction: isa.Instruction{Mnemonic: "lui", Rd: "x1", Imm: 0x100000},
			Error:       isa.ErrImmediateRange,
		},
		{
			Name:        "unaligned jump",
			Instruction: isa.Instruction{Mnemonic: "jal", Rd: "x1", Imm: 6},
			Error:       isa.ErrMisaligned,
		},
		{
			Name:        "jump too far",
			Instruction: isa.Instruction{Mnemonic: "jal", Rd: "x1", Imm: 4 << 19},
			Error:       isa.ErrImmediateRange,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) { testEncoderFailure(t, &test) })
	}
}

func TestRFormatFields(t *testing.T) {
	enc := isa.NewEncoder(nil)

	for _, name := range enc.Table.Mnemonics() {
		entry, _ := enc.Table.Lookup(name)

		if entry.Format != isa.FORMAT_R {
			continue
		}

		result, err := enc.Encode(&isa.Instruction{
			Mnemonic: name, Rd: "x7", Rs1: "x12", Rs2: "x29",
		})
		require.NoError(t, err, name)

		w := result.Word
		assert.Equal(t, isa.OP_REG, w&0x7F, name)
		assert.Equal(t, entry.Func3, (w>>12)&0x7, name)
		assert.Equal(t, entry.Func7, (w>>25)&0x7F, name)
	}
}

func TestEncodeIdempotent(t *testing.T) {
	enc := isa.NewEncoder(nil)
	inst := isa.Instruction{Mnemonic: "bne", Rs1: "x1", Rs2: "x0", Imm: -4}

	first, err := enc.Encode(&inst)
	require.NoError(t, err)

	second, err := enc.Encode(&inst)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "bne", inst.Mnemonic, "record must not be rewritten")
}

func TestTableCounts(t *testing.T) {
	counts := map[isa.Format]int{}
	table := isa.DefaultTable()

	for _, name := range table.Mnemonics() {
		entry, ok := table.Lookup(name)
		require.True(t, ok)
		counts[entry.Format]++
	}

	assert.Equal(t, map[isa.Format]int{
		isa.FORMAT_R:  12,
		isa.FORMAT_I:  8,
		isa.FORMAT_S:  4,
		isa.FORMAT_SB: 4,
		isa.FORMAT_U:  2,
		isa.FORMAT_UJ: 1,
	}, counts)

	_, ok := table.Lookup("ADDI")
	assert.True(t, ok)
}

func TestParseRegister(t *testing.T) {
	for i := 0; i < isa.REGISTER_COUNT; i++ {
		index, err := isa.ParseRegister("x" + string(rune('0'+i/10)) + string(rune('0'+i%10)))
		require.NoError(t, err)
		assert.Equal(t, uint32(i), index)
	}

	for _, name := range []string{"", "x", "x32", "x-1", "r1", "x1a", "x100", "zero"} {
		_, err := isa.ParseRegister(name)
		assert.ErrorIs(t, err, isa.ErrInvalidRegister, name)
	}
}

func TestVerify(t *testing.T) {
	enc := isa.NewEncoder(nil)

	lui, err := enc.Encode(&isa.Instruction{Mnemonic: "lui", Rd: "x5", Imm: -1})
	require.NoError(t, err)
	assert.NoError(t, enc.Verify(&lui), "negative upper immediates verify as 20-bit values")

	good, err := enc.Encode(&isa.Instruction{
		Mnemonic: "bne", Rs1: "x1", Rs2: "x0", Imm: -4,
	})
	require.NoError(t, err)
	require.NoError(t, enc.Verify(&good))

	flipped := good
	flipped.Word ^= 1 << 12
	assert.ErrorIs(t, enc.Verify(&flipped), isa.ErrVerify, "func3 bit flipped")

	renamed := good
	renamed.Mnemonic = "beq"
	assert.ErrorIs(t, enc.Verify(&renamed), isa.ErrVerify, "record names another mnemonic")

	moved := good
	moved.Imm = -8
	assert.ErrorIs(t, enc.Verify(&moved), isa.ErrVerify, "record holds another offset")
}
