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

package main

import (
	"bytes"
	"context"
	"encoding/gob"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gorisc/pkg/assembler"
)

func TestDebugPath(t *testing.T) {
	assert.Equal(t, "out.rvdb", debugPath("out.mc"))
	assert.Equal(t, filepath.Join("build", "loop.rvdb"), debugPath("build/loop.mc"))
	assert.Equal(t, "noext.rvdb", debugPath("noext"))
}

func TestOutputFiles(t *testing.T) {
	dir := t.TempDir()

	opts := assembler.DefaultOptions()
	opts.Debug = assembler.NewDebugTable("loop.s")

	prog, errs := assembler.Assemble(
		context.Background(),
		strings.NewReader("loop: addi x1, x1, -1\nbne x1, x0, loop\n"),
		opts,
	)
	require.Empty(t, errs)

	out := filepath.Join(dir, "loop.mc")
	require.NoError(t, writeListing(out, prog))
	require.NoError(t, writeDebugTable(debugPath(out), opts.Debug))

	listing, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(listing, []byte("\n")))

	file, err := os.Open(filepath.Join(dir, "loop.rvdb"))
	require.NoError(t, err)
	defer file.Close()

	var table assembler.DebugTable
	require.NoError(t, gob.NewDecoder(file).Decode(&table))

	assert.Equal(t, *opts.Debug, table)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer

	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	colors = false

	for _, source := range []string{
		"addi x1, x0, 1\nadd x32, x0, x0\n",
		"addi x1, x0, 1\r\nadd x32, x0, x0\r\n",
	} {
		buf.Reset()

		_, errs := assembler.Assemble(context.Background(), strings.NewReader(source), nil)
		require.Len(t, errs, 1)

		report(strings.NewReader(source), "", errs[0])

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		require.Len(t, lines, 3, "%q", source)

		assert.Equal(t, "add x32, x0, x0", lines[1], "%q", source)
		assert.Equal(t, "    ^~~", lines[2], "%q", source)
	}
}
