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
	"bufio"
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/xyproto/env/v2"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/lassandro/gorisc/pkg/assembler"
	"github.com/lassandro/gorisc/pkg/encoding"
	"github.com/lassandro/gorisc/pkg/listing"
)

const (
	ANSI_BOLD   = "1"
	ANSI_RED    = "31"
	ANSI_YELLOW = "33"
)

var errAssembly = errors.New("assembly failed")

// colors is set when stderr is a terminal.
var colors bool

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	colors = isTerminal(os.Stderr.Fd())
}

func main() {
	app := &cli.Command{
		Name:        "gorisc-asm",
		Description: "gorisc-asm assembles RISC-V source into a .mc listing",
		Action:      assembleAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("out,o", "",
				"output file, defaults to the source name with extension '.mc'"),
			cli.NewFlag("debug", false,
				"write a debug symbol table next to the output with extension '.rvdb'"),
			cli.NewFlag("lenient", env.Bool("GORISC_LENIENT"),
				"emit zero words for unknown instructions instead of failing"),
			cli.NewFlag("jobs,j", env.Int("GORISC_JOBS", runtime.NumCPU()),
				"number of concurrent encoders"),
			cli.NewFlag("data-base", env.Str("GORISC_DATA_BASE", "0x10000000"),
				"address of the first data directive value"),
			cli.NewFlag("verify", env.Bool("GORISC_VERIFY"),
				"decode every encoded word again and check it against its source"),
			cli.NewFlag("v", env.Bool("GORISC_VERBOSE"),
				"trace both passes to stderr"),
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func paint(code, text string) string {
	if !colors {
		return text
	}

	return "\033[" + code + "m" + text + "\033[0m"
}

func assembleAct(c *cli.Command) error {
	ctx := context.Background()

	if c.Bool("v") {
		ctx = tlog.ContextWithSpan(ctx, tlog.Root())
	}

	opts := assembler.DefaultOptions()
	opts.Lenient = c.Bool("lenient")
	opts.Jobs = c.Int("jobs")
	opts.Verify = c.Bool("verify")

	base, err := encoding.DecodeInt(c.String("data-base"))
	if err != nil || base < 0 || base > 0xFFFFFFFF {
		return errors.New("invalid data base %q", c.String("data-base"))
	}

	opts.DataBase = uint32(base)

	var infile string
	var outfile = c.String("out")
	var source []byte

	switch {
	case len(c.Args) == 0 && !isTerminal(os.Stdin.Fd()):
		// Pipes cannot seek, and both passes and the diagnostics reread
		// the source
		source, err = io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "read stdin")
		}

		log.SetPrefix(paint(ANSI_BOLD, "<stdin>:"))

		if outfile == "" {
			outfile = "out.mc"
		}

	case len(c.Args) == 1:
		infile = c.Args[0]

		stat, err := os.Stat(infile)
		if err != nil {
			return errors.Wrap(err, "open source")
		}

		if stat.IsDir() {
			return errors.New("%s is not a valid assembly file", infile)
		}

		source, err = os.ReadFile(infile)
		if err != nil {
			return errors.Wrap(err, "read %v", infile)
		}

		filename := filepath.Base(infile)
		log.SetPrefix(paint(ANSI_BOLD, filename+":"))

		if outfile == "" {
			outfile = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".mc"
		}

	default:
		return errors.New("usage: gorisc-asm [flags] file.s")
	}

	if c.Bool("debug") {
		abs := ""

		if infile != "" {
			if abs, err = filepath.Abs(infile); err != nil {
				log.Println(err)
				abs = ""
			}
		}

		opts.Debug = assembler.NewDebugTable(abs)
	}

	input := bytes.NewReader(source)

	prog, errs := assembler.Assemble(ctx, input, opts)

	if len(errs) > 0 {
		for _, err := range errs {
			report(input, paint(ANSI_RED, "error: "), err)
		}

		return errors.Wrap(errAssembly, "%d errors", len(errs))
	}

	for _, warning := range prog.Warnings {
		report(input, paint(ANSI_YELLOW, "warning: "), warning)
	}

	if err := writeListing(outfile, prog); err != nil {
		return err
	}

	if opts.Debug != nil {
		if err := writeDebugTable(debugPath(outfile), opts.Debug); err != nil {
			return err
		}
	}

	return nil
}

// report prints err with the offending source line and a caret underline
// beneath the token.
func report(input io.ReadSeeker, prefix string, err error) {
	var tokenErr assembler.TokenError

	if !errors.As(err, &tokenErr) {
		log.Println(prefix + err.Error())
		return
	}

	cursor := tokenErr.GetPosition()

	if _, err := input.Seek(cursor.LineByte, io.SeekStart); err != nil {
		panic(err)
	}

	line, _ := bufio.NewReader(input).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")

	underlinefmt := fmt.Sprintf(
		"%% %ds%s",
		int(cursor.Byte-cursor.LineByte)+1,
		strings.Repeat("~", max(int(cursor.Size)-1, 0)),
	)

	log.Printf(
		"%s%s\n%s\n%s",
		prefix,
		err,
		line,
		paint(ANSI_RED, fmt.Sprintf(underlinefmt, "^")),
	)
}

func writeListing(name string, prog *assembler.Program) (err error) {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}

	defer func() {
		if e := file.Close(); err == nil && e != nil {
			err = errors.Wrap(e, "close output file")
		}
	}()

	if err := listing.Write(file, prog); err != nil {
		return errors.Wrap(err, "write output file")
	}

	return nil
}

func debugPath(outfile string) string {
	base := filepath.Base(outfile)

	return filepath.Join(
		filepath.Dir(outfile),
		strings.TrimSuffix(base, filepath.Ext(base))+".rvdb",
	)
}

func writeDebugTable(name string, table *assembler.DebugTable) (err error) {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create symbol table")
	}

	defer func() {
		if e := file.Close(); err == nil && e != nil {
			err = errors.Wrap(e, "close symbol table")
		}
	}()

	if err := gob.NewEncoder(file).Encode(table); err != nil {
		return errors.Wrap(err, "write symbol table")
	}

	return nil
}
