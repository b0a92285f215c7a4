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

// Package listing writes assembled programs in the .mc text format: one
// line per data value, then one line per instruction with its source and
// field breakdown.
package listing

import (
	"bufio"
	"fmt"
	"io"

	"tlog.app/go/errors"

	"github.com/lassandro/gorisc/pkg/assembler"
)

func Write(w io.Writer, prog *assembler.Program) error {
	out := bufio.NewWriter(w)

	for addr, datum := range prog.Data() {
		digits := 8
		if datum.Width > 4 {
			digits = 16
		}

		if _, err := fmt.Fprintf(
			out, "0x%x 0x%0*x # Data\n", addr, digits, datum.Value,
		); err != nil {
			return errors.Wrap(err, "data %#x", addr)
		}
	}

	for _, inst := range prog.Instructions {
		if _, err := fmt.Fprintf(
			out, "0x%x 0x%08x , %s # %s\n",
			inst.Address, inst.Word, inst.Source, inst.Fields,
		); err != nil {
			return errors.Wrap(err, "text %#x", inst.Address)
		}
	}

	if err := out.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}

	return nil
}
