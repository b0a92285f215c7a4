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
	"tlog.app/go/errors"

	"github.com/lassandro/gorisc/pkg/encoding"
)

var ErrVerify = errors.New("word does not decode to its instruction")

// Decode splits a machine word back into its fields. Words with an opcode
// outside the supported set decode with FORMAT_INVALID.
func Decode(word uint32) Fields {
	f := Fields{
		Opcode: word & 0x7F,
		Rd:     (word >> 7) & 0x1F,
		Func3:  (word >> 12) & 0x7,
		Rs1:    (word >> 15) & 0x1F,
		Rs2:    (word >> 20) & 0x1F,
		Func7:  (word >> 25) & 0x7F,
	}

	switch f.Opcode {
	case OP_REG:
		f.Format = FORMAT_R
		f.HasFunc3, f.HasFunc7 = true, true
		f.HasRd, f.HasRs1, f.HasRs2 = true, true, true

	case OP_IMM, OP_LOAD, OP_JALR:
		f.Format = FORMAT_I
		f.HasFunc3 = true
		f.HasRd, f.HasRs1 = true, true
		f.Imm = word >> 20

	case OP_STORE:
		f.Format = FORMAT_S
		f.HasFunc3 = true
		f.HasRs1, f.HasRs2 = true, true
		f.Imm = (word>>25)<<5 | (word>>7)&0x1F

	case OP_BRANCH:
		f.Format = FORMAT_SB
		f.HasFunc3 = true
		f.HasRs1, f.HasRs2 = true, true
		f.Imm = ((word>>31)&0x1)<<12 |
			((word>>7)&0x1)<<11 |
			((word>>25)&0x3F)<<5 |
			((word>>8)&0xF)<<1

	case OP_LUI, OP_AUIPC:
		f.Format = FORMAT_U
		f.HasRd = true
		f.Imm = word >> 12

	case OP_JAL:
		f.Format = FORMAT_UJ
		f.HasRd = true
		f.Imm = ((word>>31)&0x1)<<19 |
			((word>>12)&0xFF)<<11 |
			((word>>20)&0x1)<<10 |
			(word>>21)&0x3FF
	}

	if !f.HasFunc3 {
		f.Func3 = 0
	}

	if !f.HasFunc7 {
		f.Func7 = 0
	}

	if !f.HasRd {
		f.Rd = 0
	}

	if !f.HasRs1 {
		f.Rs1 = 0
	}

	if !f.HasRs2 {
		f.Rs2 = 0
	}

	return f
}

// Immediate returns the signed value of the immediate field: the byte
// displacement for SB and UJ, the raw 20-bit value for U.
func (f Fields) Immediate() int64 {
	switch f.Format {
	case FORMAT_I, FORMAT_S:
		return encoding.SignExtend(f.Imm, WIDTH_IMM_I)
	case FORMAT_SB:
		return encoding.SignExtend(f.Imm, WIDTH_IMM_SB)
	case FORMAT_U:
		return int64(encoding.ZeroExtend(f.Imm, WIDTH_IMM_U))
	case FORMAT_UJ:
		return encoding.SignExtend(f.Imm, WIDTH_IMM_UJ) * INSTRUCTION_SIZE
	}

	return 0
}

// Match finds the table entry that encodes to the opcode/func3/func7
// combination of f.
func (t *Table) Match(f Fields) (Entry, bool) {
	for _, name := range t.Mnemonics() {
		entry := t.entries[name]

		if entry.Opcode != f.Opcode {
			continue
		}

		if entry.HasFunc3 && entry.Func3 != f.Func3 {
			continue
		}

		if entry.HasFunc7 && entry.Func7 != f.Func7 {
			continue
		}

		return entry, true
	}

	return Entry{}, false
}

// Verify decodes enc.Word again and checks it against the fields, mnemonic
// and immediate it was encoded from.
func (e *Encoder) Verify(enc *Encoded) error {
	fields := Decode(enc.Word)

	if fields != enc.Fields {
		return errors.Wrap(ErrVerify, "%#08x: fields %v, want %v", enc.Word, fields, enc.Fields)
	}

	entry, ok := e.Table.Match(fields)

	if !ok || entry.Mnemonic != enc.Mnemonic {
		return errors.Wrap(ErrVerify, "%#08x: mnemonic %q, want %q", enc.Word, entry.Mnemonic, enc.Mnemonic)
	}

	want := enc.Imm

	switch fields.Format {
	case FORMAT_R:
		return nil
	case FORMAT_U:
		want = int64(encoding.TwosComplement(want, WIDTH_IMM_U))
	}

	if have := fields.Immediate(); have != want {
		return errors.Wrap(ErrVerify, "%#08x: immediate %d, want %d", enc.Word, have, want)
	}

	return nil
}
