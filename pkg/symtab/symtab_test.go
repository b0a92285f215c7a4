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

package symtab_test

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gorisc/pkg/symtab"
)

func TestLabels(t *testing.T) {
	table := symtab.New()

	assert.False(t, table.AddLabel("loop", 4))
	assert.False(t, table.AddLabel("main", 0))
	assert.False(t, table.AddLabel("alias", 4))

	addr, ok := table.Address("loop")
	require.True(t, ok)
	assert.Equal(t, uint32(4), addr)

	_, ok = table.Address("missing")
	assert.False(t, ok)

	assert.True(t, table.AddLabel("loop", 12), "redefinition overwrites")
	addr, _ = table.Address("loop")
	assert.Equal(t, uint32(12), addr)

	var names []string
	for name := range table.Labels() {
		names = append(names, name)
	}

	assert.Equal(t, []string{"main", "alias", "loop"}, names)
}

func TestDataOrdering(t *testing.T) {
	table := symtab.New()

	table.AddData(0x10000008, symtab.Datum{Value: 3, Width: 1})
	table.AddData(0x10000000, symtab.Datum{Value: 1, Width: 4})
	table.AddData(0x10000004, symtab.Datum{Value: 2, Width: 4})
	table.AddData(0x10000004, symtab.Datum{Value: 2, Width: 4})

	assert.Equal(t, 3, table.DataLen())

	var addrs []uint32
	var values []uint64

	for addr, datum := range table.Data() {
		addrs = append(addrs, addr)
		values = append(values, datum.Value)
	}

	assert.Equal(t, []uint32{0x10000000, 0x10000004, 0x10000008}, addrs)
	assert.Equal(t, []uint64{1, 2, 3}, values)

	_, ok := table.Datum(0x10000001)
	assert.False(t, ok, "sparse image has no implicit entries")

	for addr := range table.Data() {
		assert.Equal(t, uint32(0x10000000), addr, "early break")
		break
	}
}

func TestGlobalsAndConstants(t *testing.T) {
	table := symtab.New()

	table.AddGlobal("main")
	table.AddGlobal("main")
	table.AddGlobal("_start")

	assert.True(t, table.IsGlobal("main"))
	assert.False(t, table.IsGlobal("loop"))
	assert.Equal(t, []string{"_start", "main"}, table.Globals())

	table.AddConstant("SIZE", 16)
	table.AddConstant("SIZE", 32)

	value, ok := table.Constant("SIZE")
	require.True(t, ok)
	assert.Equal(t, int64(32), value)

	_, ok = table.Constant("OTHER")
	assert.False(t, ok)

	labels := maps.Collect(table.Labels())
	assert.Empty(t, labels)
}
