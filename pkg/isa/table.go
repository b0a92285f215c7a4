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
	"slices"
	"strings"
	"sync"
)

// Table maps mnemonics to their instruction map entries. A Table is never
// modified after construction and may be shared between goroutines.
type Table struct {
	entries map[string]Entry
}

func NewTable(entries []Entry) *Table {
	table := &Table{entries: make(map[string]Entry, len(entries))}

	for _, entry := range entries {
		table.entries[strings.ToLower(entry.Mnemonic)] = entry
	}

	return table
}

// Lookup is case insensitive.
func (t *Table) Lookup(mnemonic string) (Entry, bool) {
	entry, ok := t.entries[strings.ToLower(mnemonic)]
	return entry, ok
}

func (t *Table) Mnemonics() []string {
	names := make([]string, 0, len(t.entries))

	for name := range t.entries {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func rtype(mnemonic string, func3, func7 uint32) Entry {
	return Entry{
		Mnemonic: mnemonic,
		Format:   FORMAT_R,
		Syntax:   SYNTAX_REG3,
		Opcode:   OP_REG,
		Func3:    func3,
		Func7:    func7,
		HasFunc3: true,
		HasFunc7: true,
	}
}

func itype(mnemonic string, syntax Syntax, opcode, func3 uint32) Entry {
	return Entry{
		Mnemonic: mnemonic,
		Format:   FORMAT_I,
		Syntax:   syntax,
		Opcode:   opcode,
		Func3:    func3,
		HasFunc3: true,
	}
}

func stype(mnemonic string, func3 uint32) Entry {
	return Entry{
		Mnemonic: mnemonic,
		Format:   FORMAT_S,
		Syntax:   SYNTAX_STORE,
		Opcode:   OP_STORE,
		Func3:    func3,
		HasFunc3: true,
	}
}

func sbtype(mnemonic string, func3 uint32) Entry {
	return Entry{
		Mnemonic: mnemonic,
		Format:   FORMAT_SB,
		Syntax:   SYNTAX_BRANCH,
		Opcode:   OP_BRANCH,
		Func3:    func3,
		HasFunc3: true,
	}
}

// DefaultTable returns the shared table of the supported RV32I/M subset.
var DefaultTable = sync.OnceValue(func() *Table {
	return NewTable([]Entry{
		// R   |func7  |rs2  |rs1  |f3 |rd   |opcode |
		rtype("add", 0b000, 0b0000000),
		rtype("sub", 0b000, 0b0100000),
		rtype("xor", 0b100, 0b0000000),
		rtype("or", 0b110, 0b0000000),
		rtype("and", 0b111, 0b0000000),
		rtype("sll", 0b001, 0b0000000),
		rtype("slt", 0b010, 0b0000000),
		rtype("sra", 0b101, 0b0100000),
		rtype("srl", 0b101, 0b0000000),
		rtype("mul", 0b000, 0b0000001),
		rtype("div", 0b100, 0b0000001),
		rtype("rem", 0b110, 0b0000001),

		// I   |imm[11:0]    |rs1  |f3 |rd   |opcode |
		itype("addi", SYNTAX_REG2IMM, OP_IMM, 0b000),
		itype("andi", SYNTAX_REG2IMM, OP_IMM, 0b111),
		itype("ori", SYNTAX_REG2IMM, OP_IMM, 0b110),
		itype("lb", SYNTAX_LOAD, OP_LOAD, 0b000),
		itype("lh", SYNTAX_LOAD, OP_LOAD, 0b001),
		itype("lw", SYNTAX_LOAD, OP_LOAD, 0b010),
		itype("ld", SYNTAX_LOAD, OP_LOAD, 0b011),
		itype("jalr", SYNTAX_LOAD, OP_JALR, 0b000),

		// S   |imm[11:5]|rs2  |rs1  |f3 |imm[4:0]|opcode |
		stype("sb", 0b000),
		stype("sh", 0b001),
		stype("sw", 0b010),
		stype("sd", 0b011),

		// SB  |i12|imm[10:5]|rs2|rs1|f3 |imm[4:1]|i11|opcode |
		sbtype("beq", 0b000),
		sbtype("bne", 0b001),
		sbtype("blt", 0b100),
		sbtype("bge", 0b101),

		// U   |imm[31:12]          |rd   |opcode |
		{Mnemonic: "lui", Format: FORMAT_U, Syntax: SYNTAX_UPPER, Opcode: OP_LUI},
		{Mnemonic: "auipc", Format: FORMAT_U, Syntax: SYNTAX_UPPER, Opcode: OP_AUIPC},

		// UJ  |i20|imm[10:1]|i11|imm[19:12]|rd   |opcode |
		{Mnemonic: "jal", Format: FORMAT_UJ, Syntax: SYNTAX_JUMP, Opcode: OP_JAL},
	})
})
