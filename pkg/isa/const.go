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

const (
	FORMAT_INVALID Format = iota
	FORMAT_R
	FORMAT_I
	FORMAT_S
	FORMAT_SB
	FORMAT_U
	FORMAT_UJ
)

// Operand shapes, used by the parser to split operand text
const (
	SYNTAX_INVALID Syntax = iota
	SYNTAX_REG3           // rd, rs1, rs2
	SYNTAX_REG2IMM        // rd, rs1, imm
	SYNTAX_LOAD           // rd, imm(rs1)
	SYNTAX_STORE          // rs2, imm(rs1)
	SYNTAX_BRANCH         // rs1, rs2, target
	SYNTAX_UPPER          // rd, imm
	SYNTAX_JUMP           // rd, target
)

const (
	OP_REG    uint32 = 0b0110011
	OP_IMM    uint32 = 0b0010011
	OP_LOAD   uint32 = 0b0000011
	OP_JALR   uint32 = 0b1100111
	OP_STORE  uint32 = 0b0100011
	OP_BRANCH uint32 = 0b1100011
	OP_LUI    uint32 = 0b0110111
	OP_AUIPC  uint32 = 0b0010111
	OP_JAL    uint32 = 0b1101111
)

// Field widths in bits
const (
	WIDTH_OPCODE   uint = 7
	WIDTH_FUNC3    uint = 3
	WIDTH_FUNC7    uint = 7
	WIDTH_REGISTER uint = 5
	WIDTH_IMM_I    uint = 12
	WIDTH_IMM_S    uint = 12
	WIDTH_IMM_SB   uint = 13
	WIDTH_IMM_U    uint = 20
	WIDTH_IMM_UJ   uint = 20
)

const (
	INSTRUCTION_SIZE = 4
	REGISTER_COUNT   = 32
)
