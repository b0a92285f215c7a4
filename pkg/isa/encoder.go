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
	"fmt"

	"tlog.app/go/errors"

	"github.com/lassandro/gorisc/pkg/encoding"
)

// Encoder turns resolved instructions into machine words. It holds no state
// besides the instruction map, so one Encoder may serve many goroutines.
type Encoder struct {
	Table *Table
}

func NewEncoder(table *Table) *Encoder {
	if table == nil {
		table = DefaultTable()
	}

	return &Encoder{Table: table}
}

type slot struct {
	value uint32
	width uint
}

// pack concatenates slots from the most significant bit down. Slots wider
// than their width, or a layout that does not add up to 32 bits, are
// programming errors in the layout tables.
func pack(slots ...slot) uint32 {
	var word uint32
	var total uint

	for _, s := range slots {
		if s.width < 32 && s.value>>s.width != 0 {
			panic(fmt.Sprintf("isa: field %#x exceeds %d bits", s.value, s.width))
		}

		word = word<<s.width | s.value
		total += s.width
	}

	if total != 32 {
		panic(fmt.Sprintf("isa: layout is %d bits wide", total))
	}

	return word
}

func signedImmediate(value int64, bitcount uint) (uint32, error) {
	if !encoding.FitsSigned(value, bitcount) {
		return 0, errors.Wrap(
			ErrImmediateRange, "%d does not fit in %d bits", value, bitcount,
		)
	}

	return encoding.TwosComplement(value, bitcount), nil
}

// Encode produces the machine word for inst. On error the returned word is
// zero and Fields holds whatever was decoded before the failure.
func (e *Encoder) Encode(inst *Instruction) (Encoded, error) {
	result := Encoded{Instruction: *inst}

	entry, ok := e.Table.Lookup(inst.Mnemonic)

	if !ok {
		return result, errors.Wrap(ErrUnknownInstruction, "%q", inst.Mnemonic)
	}

	fields := Fields{
		Format:   entry.Format,
		Opcode:   entry.Opcode,
		Func3:    entry.Func3,
		Func7:    entry.Func7,
		HasFunc3: entry.HasFunc3,
		HasFunc7: entry.HasFunc7,
	}

	var err error

	register := func(name string, dst *uint32, has *bool) {
		if err != nil {
			return
		}

		*dst, err = ParseRegister(name)
		*has = err == nil
	}

	switch entry.Format {
	case FORMAT_R:
		register(inst.Rd, &fields.Rd, &fields.HasRd)
		register(inst.Rs1, &fields.Rs1, &fields.HasRs1)
		register(inst.Rs2, &fields.Rs2, &fields.HasRs2)

	case FORMAT_I:
		register(inst.Rd, &fields.Rd, &fields.HasRd)
		register(inst.Rs1, &fields.Rs1, &fields.HasRs1)

		if err == nil {
			fields.Imm, err = signedImmediate(inst.Imm, WIDTH_IMM_I)
		}

	case FORMAT_S:
		register(inst.Rs2, &fields.Rs2, &fields.HasRs2)
		register(inst.Rs1, &fields.Rs1, &fields.HasRs1)

		if err == nil {
			fields.Imm, err = signedImmediate(inst.Imm, WIDTH_IMM_S)
		}

	case FORMAT_SB:
		register(inst.Rs1, &fields.Rs1, &fields.HasRs1)
		register(inst.Rs2, &fields.Rs2, &fields.HasRs2)

		if err == nil && inst.Imm%2 != 0 {
			err = errors.Wrap(ErrMisaligned, "branch offset %d is odd", inst.Imm)
		}

		if err == nil {
			fields.Imm, err = signedImmediate(inst.Imm, WIDTH_IMM_SB)
		}

	case FORMAT_U:
		register(inst.Rd, &fields.Rd, &fields.HasRd)

		// Both 0xFFFFF and -1 name the same upper immediate
		if err == nil {
			if inst.Imm < -(1<<(WIDTH_IMM_U-1)) || inst.Imm >= 1<<WIDTH_IMM_U {
				err = errors.Wrap(
					ErrImmediateRange, "%d does not fit in %d bits",
					inst.Imm, WIDTH_IMM_U,
				)
			} else {
				fields.Imm = encoding.TwosComplement(inst.Imm, WIDTH_IMM_U)
			}
		}

	case FORMAT_UJ:
		register(inst.Rd, &fields.Rd, &fields.HasRd)

		if err == nil && inst.Imm%INSTRUCTION_SIZE != 0 {
			err = errors.Wrap(
				ErrMisaligned, "jump offset %d is not a multiple of %d",
				inst.Imm, INSTRUCTION_SIZE,
			)
		}

		if err == nil {
			fields.Imm, err = signedImmediate(
				inst.Imm/INSTRUCTION_SIZE, WIDTH_IMM_UJ,
			)
		}
	}

	result.Fields = fields

	if err != nil {
		return result, err
	}

	result.Word = fields.Pack()

	return result, nil
}

// Pack lays the fields out in the 32-bit word of their format.
func (f Fields) Pack() uint32 {
	switch f.Format {
	case FORMAT_R:
		return pack(
			slot{f.Func7, WIDTH_FUNC7},
			slot{f.Rs2, WIDTH_REGISTER},
			slot{f.Rs1, WIDTH_REGISTER},
			slot{f.Func3, WIDTH_FUNC3},
			slot{f.Rd, WIDTH_REGISTER},
			slot{f.Opcode, WIDTH_OPCODE},
		)

	case FORMAT_I:
		return pack(
			slot{f.Imm, WIDTH_IMM_I},
			slot{f.Rs1, WIDTH_REGISTER},
			slot{f.Func3, WIDTH_FUNC3},
			slot{f.Rd, WIDTH_REGISTER},
			slot{f.Opcode, WIDTH_OPCODE},
		)

	case FORMAT_S:
		return pack(
			slot{f.Imm >> 5, 7},
			slot{f.Rs2, WIDTH_REGISTER},
			slot{f.Rs1, WIDTH_REGISTER},
			slot{f.Func3, WIDTH_FUNC3},
			slot{f.Imm & 0x1F, 5},
			slot{f.Opcode, WIDTH_OPCODE},
		)

	// imm[12] | imm[10:5] | rs2 | rs1 | func3 | imm[4:1] | imm[11] | opcode
	case FORMAT_SB:
		return pack(
			slot{(f.Imm >> 12) & 0x1, 1},
			slot{(f.Imm >> 5) & 0x3F, 6},
			slot{f.Rs2, WIDTH_REGISTER},
			slot{f.Rs1, WIDTH_REGISTER},
			slot{f.Func3, WIDTH_FUNC3},
			slot{(f.Imm >> 1) & 0xF, 4},
			slot{(f.Imm >> 11) & 0x1, 1},
			slot{f.Opcode, WIDTH_OPCODE},
		)

	case FORMAT_U:
		return pack(
			slot{f.Imm, WIDTH_IMM_U},
			slot{f.Rd, WIDTH_REGISTER},
			slot{f.Opcode, WIDTH_OPCODE},
		)

	// Imm holds offset/4, so bit n of Imm lands where imm[n+1] goes:
	// imm[20] | imm[10:1] | imm[11] | imm[19:12] | rd | opcode
	case FORMAT_UJ:
		return pack(
			slot{(f.Imm >> 19) & 0x1, 1},
			slot{f.Imm & 0x3FF, 10},
			slot{(f.Imm >> 10) & 0x1, 1},
			slot{(f.Imm >> 11) & 0xFF, 8},
			slot{f.Rd, WIDTH_REGISTER},
			slot{f.Opcode, WIDTH_OPCODE},
		)
	}

	panic(fmt.Sprintf("isa: cannot pack format %v", f.Format))
}
