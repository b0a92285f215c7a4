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

package isa

import (
	"strconv"
	"strings"
)

type Format uint
type Syntax uint

func (f Format) String() string {
	switch f {
	case FORMAT_R:
		return "R"
	case FORMAT_I:
		return "I"
	case FORMAT_S:
		return "S"
	case FORMAT_SB:
		return "SB"
	case FORMAT_U:
		return "U"
	case FORMAT_UJ:
		return "UJ"
	}

	return "<invalid>"
}

// Width of the immediate field of the format in bits.
func (f Format) ImmWidth() uint {
	switch f {
	case FORMAT_I:
		return WIDTH_IMM_I
	case FORMAT_S:
		return WIDTH_IMM_S
	case FORMAT_SB:
		return WIDTH_IMM_SB
	case FORMAT_U:
		return WIDTH_IMM_U
	case FORMAT_UJ:
		return WIDTH_IMM_UJ
	}

	return 0
}

// Reports whether the immediate of the format is relative to the
// instruction address.
func (f Format) PCRelative() bool {
	return f == FORMAT_SB || f == FORMAT_UJ
}

// Entry is one row of the instruction map.
type Entry struct {
	Mnemonic string
	Format   Format
	Syntax   Syntax
	Opcode   uint32
	Func3    uint32
	Func7    uint32
	HasFunc3 bool
	HasFunc7 bool
}

// Instruction is a parsed assembly statement. The driver fills Imm, and
// Target for label operands, once every label is known.
type Instruction struct {
	Mnemonic string
	Format   Format
	Rd       string
	Rs1      string
	Rs2      string
	ImmText  string
	Imm      int64
	Target   string
	Address  uint32
	Line     int
	Source   string
}

// Fields is the numeric field breakdown of an encoded word.
type Fields struct {
	Format Format
	Opcode uint32
	Func3  uint32
	Func7  uint32
	Rd     uint32
	Rs1    uint32
	Rs2    uint32
	Imm    uint32

	HasFunc3 bool
	HasFunc7 bool
	HasRd    bool
	HasRs1   bool
	HasRs2   bool
}

type Encoded struct {
	Instruction
	Word   uint32
	Fields Fields
}

func bits(value uint32, width uint) string {
	s := strconv.FormatUint(uint64(value), 2)

	if pad := int(width) - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}

	return s
}

// String renders the fields as opcode-func3-func7-rd-rs1-rs2-imm binary
// strings, with NULL for fields the format does not use.
func (f Fields) String() string {
	field := func(ok bool, value uint32, width uint) string {
		if !ok {
			return "NULL"
		}

		return bits(value, width)
	}

	imm := "NULL"
	if f.Format != FORMAT_R && f.Format != FORMAT_INVALID {
		imm = bits(f.Imm, f.Format.ImmWidth())
	}

	return strings.Join([]string{
		bits(f.Opcode, WIDTH_OPCODE),
		field(f.HasFunc3, f.Func3, WIDTH_FUNC3),
		field(f.HasFunc7, f.Func7, WIDTH_FUNC7),
		field(f.HasRd, f.Rd, WIDTH_REGISTER),
		field(f.HasRs1, f.Rs1, WIDTH_REGISTER),
		field(f.HasRs2, f.Rs2, WIDTH_REGISTER),
		imm,
	}, "-")
}
