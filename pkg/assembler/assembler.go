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

package assembler

import (
	"bufio"
	"cmp"
	"context"
	"io"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/lassandro/gorisc/pkg/encoding"
	"github.com/lassandro/gorisc/pkg/isa"
	"github.com/lassandro/gorisc/pkg/symtab"
)

type state struct {
	opts    *Options
	symbols *symtab.Table

	pass    int
	address uint32
	data    uint32

	instructions []isa.Instruction
	lines        []sourceLine

	errs     []error
	warnings []error
}

func normalize(opts *Options) *Options {
	defaults := DefaultOptions()

	if opts == nil {
		return defaults
	}

	// Zero is a valid data base, so DataBase is taken as given
	o := *opts

	if o.Jobs <= 0 {
		o.Jobs = defaults.Jobs
	}

	if o.Table == nil {
		o.Table = defaults.Table
	}

	return &o
}

// Assemble runs both passes over input, resolves every label reference and
// encodes the instructions. Either a program or at least one error is
// returned, never a program built from erroneous statements.
func Assemble(
	ctx context.Context, input io.ReadSeeker, opts *Options,
) (*Program, []error) {
	opts = normalize(opts)

	tr := tlog.SpawnFromContext(ctx, "assemble", "lenient", opts.Lenient, "jobs", opts.Jobs)
	defer tr.Finish()

	ctx = tlog.ContextWithSpan(ctx, tr)

	resolved, errs := Resolve(ctx, input, opts)

	if len(errs) > 0 {
		return nil, errs
	}

	return Encode(ctx, resolved, opts)
}

// Resolve is the two-pass driver. Pass 1 binds labels, pass 2 parses
// instructions, and a final step turns every immediate operand into a
// number.
func Resolve(
	ctx context.Context, input io.ReadSeeker, opts *Options,
) (*Resolved, []error) {
	opts = normalize(opts)

	s := &state{
		opts:    opts,
		symbols: symtab.New(),
	}

	for pass := 1; pass <= 2; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, []error{errors.Wrap(err, "pass %d", pass)}
		}

		if _, err := input.Seek(0, io.SeekStart); err != nil {
			return nil, []error{&IOError{err}}
		}

		// Labels and file structure must be sound before anything else
		// can be trusted
		if err := s.walk(ctx, input, pass); err != nil {
			return nil, []error{err}
		}
	}

	s.debugLabels()
	s.resolve(ctx)

	if len(s.errs) > 0 {
		slices.SortStableFunc(s.errs, func(a, b error) int {
			return cmp.Compare(lineOf(a), lineOf(b))
		})

		return nil, s.errs
	}

	return &Resolved{
		Instructions: s.instructions,
		Symbols:      s.symbols,
		Warnings:     s.warnings,
		lines:        s.lines,
	}, nil
}

// walk performs one pass. The returned error aborts assembly; errors in
// individual pass 2 statements are collected instead.
func (s *state) walk(ctx context.Context, input io.Reader, pass int) error {
	s.pass = pass
	s.address = TEXT_SEGMENT_BASE
	s.data = s.opts.DataBase

	var reader = bufio.NewReader(input)
	var offset int64
	var number int

	for {
		chunk, readErr := reader.ReadString('\n')

		if readErr != nil && readErr != io.EOF {
			return &IOError{readErr}
		}

		if len(chunk) == 0 {
			break
		}

		number++

		// Offsets count the terminator actually read, LF or CRLF
		raw := strings.TrimSuffix(strings.TrimSuffix(chunk, "\n"), "\r")
		line := sourceLine{Number: number, Offset: offset, Raw: raw}
		offset += int64(len(chunk))

		if err := s.statement(ctx, &line); err != nil {
			if pass == 1 {
				return err
			}

			s.errs = append(s.errs, err)
		}

		if readErr == io.EOF {
			break
		}
	}

	tlog.SpanFromContext(ctx).Printw("pass done",
		"pass", pass,
		"lines", number,
		"text_end", s.address,
		"data_end", s.data,
		"errors", len(s.errs),
	)

	return nil
}

// statement handles one physical line. The text address advances once per
// line that holds anything besides a bare label.
func (s *state) statement(ctx context.Context, line *sourceLine) error {
	text := strings.TrimSpace(stripComment(line.Raw))

	if text == "" {
		return nil
	}

	if label, rest, ok := splitLabel(text); ok {
		if !validLabel(label) {
			return &InvalidLabelError{line.cursor(label), label}
		}

		if s.pass == 1 {
			s.bindLabel(ctx, line, label)
		}

		if rest == "" {
			return nil
		}

		text = rest
	}

	var err error

	if text[0] == '.' {
		err = s.directive(ctx, line, text)
	} else if s.pass == 2 {
		err = s.instruction(line, text)
	}

	s.address += isa.INSTRUCTION_SIZE

	return err
}

func lineOf(err error) int {
	var tokenErr TokenError

	if errors.As(err, &tokenErr) {
		return tokenErr.GetPosition().Line
	}

	return 0
}

func (s *state) bindLabel(ctx context.Context, line *sourceLine, label string) {
	if prev, ok := s.symbols.Address(label); ok {
		s.warnings = append(s.warnings, &RedeclaredLabelError{
			line.cursor(label), label, prev,
		})
	}

	s.symbols.AddLabel(label, s.address)

	tlog.SpanFromContext(ctx).Printw("label", "name", label, "addr", s.address, "line", line.Number)
}

// debugLabels names each labelled address once, with the first label in
// symtab.Table.Labels order. Redefined labels only appear at their final
// address.
func (s *state) debugLabels() {
	if s.opts.Debug == nil {
		return
	}

	for name, addr := range s.symbols.Labels() {
		if _, ok := s.opts.Debug.Labels[addr]; !ok {
			s.opts.Debug.Labels[addr] = name
		}
	}
}

func (s *state) instruction(line *sourceLine, text string) error {
	inst, err := parseInstruction(s.opts.Table, line, text)

	var unknown *UnknownInstructionError

	// Lenient runs keep a placeholder so the encoder emits a zero word in
	// its place
	if err != nil && !(s.opts.Lenient && errors.As(err, &unknown)) {
		return err
	}

	inst.Address = s.address

	s.instructions = append(s.instructions, inst)
	s.lines = append(s.lines, *line)

	if s.opts.Debug != nil {
		s.opts.Debug.Lines[s.address] = line.Offset
	}

	return nil
}

// resolve turns ImmText into Imm for every instruction. PC-relative
// formats take label operands as byte offsets from the instruction, other
// formats take named constants. auipc is biased by its own address.
func (s *state) resolve(ctx context.Context) {
	tr := tlog.SpanFromContext(ctx)

	for i := range s.instructions {
		inst := &s.instructions[i]
		line := &s.lines[i]

		if inst.Format == isa.FORMAT_INVALID || inst.ImmText == "" {
			continue
		}

		value, err := encoding.DecodeInt(inst.ImmText)

		switch {
		case err == nil:
			inst.Imm = value

		case !validLabel(inst.ImmText):
			s.errs = append(s.errs, &InvalidLiteralError{
				line.cursor(inst.ImmText), inst.ImmText,
			})

			continue

		case inst.Format.PCRelative():
			target, ok := s.symbols.Address(inst.ImmText)

			if !ok {
				s.errs = append(s.errs, &UnresolvedLabelError{
					line.cursor(inst.ImmText), inst.ImmText,
				})

				continue
			}

			inst.Target = inst.ImmText
			inst.Imm = int64(target) - int64(inst.Address)

			tr.Printw("branch", "addr", inst.Address, "target", inst.Target, "offset", inst.Imm)

		default:
			constant, ok := s.symbols.Constant(inst.ImmText)

			if !ok {
				s.errs = append(s.errs, &UnresolvedLabelError{
					line.cursor(inst.ImmText), inst.ImmText,
				})

				continue
			}

			inst.Imm = constant
		}

		if inst.Mnemonic == "auipc" {
			inst.Imm += int64(inst.Address)
		}
	}
}

// Encode encodes every resolved instruction, at most opts.Jobs at a time.
// Output order matches source order.
func Encode(
	ctx context.Context, resolved *Resolved, opts *Options,
) (*Program, []error) {
	opts = normalize(opts)

	encoder := isa.NewEncoder(opts.Table)
	count := len(resolved.Instructions)

	encoded := make([]isa.Encoded, count)
	failures := make([]error, count)

	chunk := (count + opts.Jobs - 1) / opts.Jobs
	chunk = max(chunk, 1)

	var g errgroup.Group
	g.SetLimit(opts.Jobs)

	for start := 0; start < count; start += chunk {
		end := min(start+chunk, count)

		g.Go(func() error {
			for i := start; i < end; i++ {
				encoded[i], failures[i] = encoder.Encode(&resolved.Instructions[i])

				if opts.Verify && failures[i] == nil {
					failures[i] = encoder.Verify(&encoded[i])
				}
			}

			return nil
		})
	}

	_ = g.Wait()

	tlog.SpanFromContext(ctx).Printw("encoded", "instructions", count, "chunk", chunk, "verify", opts.Verify)

	var errs []error
	warnings := append([]error(nil), resolved.Warnings...)

	for i, err := range failures {
		if err == nil {
			continue
		}

		inst := &resolved.Instructions[i]
		keyword, _ := splitKeyword(inst.Source)

		if opts.Lenient && errors.Is(err, isa.ErrUnknownInstruction) {
			warnings = append(warnings, &UnknownInstructionError{
				resolved.cursor(i, keyword), keyword,
			})

			continue
		}

		errs = append(errs, &EncodeError{resolved.cursor(i, inst.Source), err})
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Program{
		Instructions: encoded,
		Symbols:      resolved.Symbols,
		Warnings:     warnings,
	}, nil
}

// cursor locates token in the source line of instruction i. Resolved values
// built outside Resolve carry no source lines and get line-only positions.
func (r *Resolved) cursor(i int, token string) Cursor {
	if i < len(r.lines) {
		return r.lines[i].cursor(token)
	}

	return Cursor{Line: r.Instructions[i].Line, Column: 1}
}
