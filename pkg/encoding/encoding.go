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

package encoding

import (
	"math"
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

var ErrInvalidLiteral = errors.New("invalid numeric literal")

// Decodes an integer literal in the formats: 42, -42, +42, 0x2A, -0x2A
func DecodeInt(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidLiteral
	}

	var neg bool

	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	base := 10

	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	// ParseUint rejects a second sign, so "--1" and "-+1" fail here
	result, err := strconv.ParseUint(s, base, 64)

	if err != nil {
		return 0, errors.Wrap(ErrInvalidLiteral, "%q", s)
	}

	if neg {
		if result > 1<<63 {
			return 0, errors.Wrap(ErrInvalidLiteral, "%q overflows", s)
		}

		return -int64(result), nil
	}

	if result > math.MaxInt64 {
		return 0, errors.Wrap(ErrInvalidLiteral, "%q overflows", s)
	}

	return int64(result), nil
}

// Reports whether s reads as a numeric literal rather than a symbol name.
func IsLiteral(s string) bool {
	_, err := DecodeInt(s)
	return err == nil
}

// Splits a directive operand list on commas and whitespace.
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// Returns the low bits of the 64-bit two's complement pattern of value.
func TwosComplement(value int64, bitcount uint) uint32 {
	return uint32(uint64(value) & (1<<bitcount - 1))
}

// Interprets the low bitcount bits of value as a signed two's complement
// number.
func SignExtend(value uint32, bitcount uint) int64 {
	value &= 1<<bitcount - 1

	if (value>>(bitcount-1))&0x1 == 1 {
		return int64(value) - int64(1)<<bitcount
	}

	return int64(value)
}

func ZeroExtend(value uint32, bitcount uint) uint32 {
	return value & (1<<bitcount - 1)
}

// Reports whether value lies in [-2^(bits-1), 2^(bits-1)-1].
func FitsSigned(value int64, bitcount uint) bool {
	limit := int64(1) << (bitcount - 1)
	return value >= -limit && value < limit
}

// Truncates value to width bytes, keeping the raw bit pattern.
func Truncate(value int64, width int) uint64 {
	if width >= 8 {
		return uint64(value)
	}

	return uint64(value) & (1<<(8*uint(width)) - 1)
}
