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

	"tlog.app/go/errors"
)

var (
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidRegister    = errors.New("invalid register")
	ErrImmediateRange     = errors.New("immediate out of range")
	ErrMisaligned         = errors.New("misaligned offset")
)

// Parses a register name in the form x0..x31.
func ParseRegister(name string) (uint32, error) {
	if len(name) < 2 || len(name) > 3 || (name[0] != 'x' && name[0] != 'X') {
		return 0, errors.Wrap(ErrInvalidRegister, "%q", name)
	}

	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return 0, errors.Wrap(ErrInvalidRegister, "%q", name)
		}
	}

	index, err := strconv.ParseUint(name[1:], 10, 8)

	if err != nil || index >= REGISTER_COUNT {
		return 0, errors.Wrap(ErrInvalidRegister, "%q", name)
	}

	return uint32(index), nil
}
