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

package symtab

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Datum is one value of the data image, already truncated to Width bytes.
type Datum struct {
	Value uint64
	Width int
}

// Table holds everything the assembler learns about names and data while
// walking the source. It is filled by the passes and only read afterwards.
type Table struct {
	labels    map[string]uint32
	data      map[uint32]Datum
	globals   map[string]struct{}
	constants map[string]int64
}

func New() *Table {
	return &Table{
		labels:    make(map[string]uint32),
		data:      make(map[uint32]Datum),
		globals:   make(map[string]struct{}),
		constants: make(map[string]int64),
	}
}

// AddLabel binds label to address, replacing any earlier binding. It
// reports whether an earlier binding existed.
func (t *Table) AddLabel(label string, address uint32) (redefined bool) {
	_, redefined = t.labels[label]
	t.labels[label] = address
	return
}

func (t *Table) Address(label string) (uint32, bool) {
	addr, ok := t.labels[label]
	return addr, ok
}

// Labels yields label bindings ordered by address, then name.
func (t *Table) Labels() iter.Seq2[string, uint32] {
	names := slices.SortedFunc(maps.Keys(t.labels), func(a, b string) int {
		return cmp.Or(cmp.Compare(t.labels[a], t.labels[b]), cmp.Compare(a, b))
	})

	return func(yield func(string, uint32) bool) {
		for _, name := range names {
			if !yield(name, t.labels[name]) {
				return
			}
		}
	}
}

func (t *Table) AddData(address uint32, datum Datum) {
	t.data[address] = datum
}

func (t *Table) Datum(address uint32) (Datum, bool) {
	datum, ok := t.data[address]
	return datum, ok
}

func (t *Table) DataLen() int {
	return len(t.data)
}

// Data yields every written data address with its value in ascending
// address order. The address set is snapshotted when iteration starts.
func (t *Table) Data() iter.Seq2[uint32, Datum] {
	return func(yield func(uint32, Datum) bool) {
		for _, addr := range slices.Sorted(maps.Keys(t.data)) {
			if !yield(addr, t.data[addr]) {
				return
			}
		}
	}
}

func (t *Table) AddGlobal(symbol string) {
	t.globals[symbol] = struct{}{}
}

func (t *Table) IsGlobal(symbol string) bool {
	_, ok := t.globals[symbol]
	return ok
}

func (t *Table) Globals() []string {
	return slices.Sorted(maps.Keys(t.globals))
}

func (t *Table) AddConstant(name string, value int64) {
	t.constants[name] = value
}

func (t *Table) Constant(name string) (int64, bool) {
	value, ok := t.constants[name]
	return value, ok
}
