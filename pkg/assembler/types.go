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
	"fmt"
	"iter"
	"runtime"
	"strings"

	"tlog.app/go/errors"

	"github.com/lassandro/gorisc/pkg/isa"
	"github.com/lassandro/gorisc/pkg/symtab"
)

type ErrorKind uint
type DirectiveType uint

func (k ErrorKind) String() string {
	switch k {
	case ERROR_INVALID_LABEL:
		return "InvalidLabel"
	case ERROR_UNRESOLVED_LABEL:
		return "UnresolvedLabel"
	case ERROR_UNKNOWN_INSTRUCTION:
		return "UnknownInstruction"
	case ERROR_INVALID_REGISTER:
		return "InvalidRegister"
	case ERROR_MALFORMED_OPERAND:
		return "MalformedOperand"
	case ERROR_IO_UNAVAILABLE:
		return "IOUnavailable"
	}

	return "<none>"
}

type Cursor struct {
	Line     int
	Column   int
	Byte     int64
	Size     int64
	LineByte int64
}

// Options controls a single assembly run. A nil *Options means
// DefaultOptions().
type Options struct {
	// Start of the data cursor in both passes. Zero is honoured; start
	// from DefaultOptions for the usual 0x10000000.
	DataBase uint32

	// Decode every encoded word again and check it against its record
	Verify bool

	// Emit zero words for unknown mnemonics and report them as warnings
	// instead of failing
	Lenient bool

	// Upper bound on concurrent encoders
	Jobs int

	Table *isa.Table

	// Filled with source offsets and labels when non-nil
	Debug *DebugTable
}

func DefaultOptions() *Options {
	return &Options{
		DataBase: DATA_SEGMENT_BASE,
		Jobs:     runtime.NumCPU(),
		Table:    isa.DefaultTable(),
	}
}

// DebugTable maps text addresses back to the source for tooling.
type DebugTable struct {
	Source string
	Lines  map[uint32]int64
	// One label per address, the first in symtab.Table.Labels order
	Labels map[uint32]string
}

func NewDebugTable(source string) *DebugTable {
	return &DebugTable{
		Source: source,
		Lines:  make(map[uint32]int64),
		Labels: make(map[uint32]string),
	}
}

// Resolved is the driver output: every instruction parsed, addressed and
// with its immediate resolved, in source order.
type Resolved struct {
	Instructions []isa.Instruction
	Symbols      *symtab.Table
	Warnings     []error

	lines []sourceLine
}

type Program struct {
	Instructions []isa.Encoded
	Symbols      *symtab.Table
	Warnings     []error
}

// Data yields the data image in ascending address order.
func (p *Program) Data() iter.Seq2[uint32, symtab.Datum] {
	return p.Symbols.Data()
}

func (p *Program) Words() []uint32 {
	words := make([]uint32, len(p.Instructions))

	for i, inst := range p.Instructions {
		words[i] = inst.Word
	}

	return words
}

type TokenError interface {
	GetPosition() Cursor
}

type KindError interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first typed error in the chain of err.
func KindOf(err error) ErrorKind {
	var kinded KindError

	if errors.As(err, &kinded) {
		return kinded.Kind()
	}

	return ERROR_NONE
}

type InvalidLabelError struct {
	Position Cursor
	Received string
}

func (err *InvalidLabelError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidLabelError) Kind() ErrorKind {
	return ERROR_INVALID_LABEL
}

func (err *InvalidLabelError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid label '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type RedeclaredLabelError struct {
	Position Cursor
	Received string
	Previous uint32
}

func (err *RedeclaredLabelError) GetPosition() Cursor {
	return err.Position
}

func (err *RedeclaredLabelError) Kind() ErrorKind {
	return ERROR_INVALID_LABEL
}

func (err *RedeclaredLabelError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Redeclaration of label '%s'\n\tprevious:%#08x",
		err.Position.Line,
		err.Position.Column,
		err.Received,
		err.Previous,
	)
}

type UnresolvedLabelError struct {
	Position Cursor
	Received string
}

func (err *UnresolvedLabelError) GetPosition() Cursor {
	return err.Position
}

func (err *UnresolvedLabelError) Kind() ErrorKind {
	return ERROR_UNRESOLVED_LABEL
}

func (err *UnresolvedLabelError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Unknown label '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type UnknownInstructionError struct {
	Position Cursor
	Received string
}

func (err *UnknownInstructionError) GetPosition() Cursor {
	return err.Position
}

func (err *UnknownInstructionError) Kind() ErrorKind {
	return ERROR_UNKNOWN_INSTRUCTION
}

func (err *UnknownInstructionError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Unknown instruction '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type UnknownDirectiveError struct {
	Position Cursor
	Received string
}

func (err *UnknownDirectiveError) GetPosition() Cursor {
	return err.Position
}

func (err *UnknownDirectiveError) Kind() ErrorKind {
	return ERROR_UNKNOWN_INSTRUCTION
}

func (err *UnknownDirectiveError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Unknown directive '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type InvalidRegisterError struct {
	Position Cursor
	Received string
}

func (err *InvalidRegisterError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidRegisterError) Kind() ErrorKind {
	return ERROR_INVALID_REGISTER
}

func (err *InvalidRegisterError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid register identifier '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type MalformedOperandError struct {
	Position Cursor
	Received string
	Expected string
}

func (err *MalformedOperandError) GetPosition() Cursor {
	return err.Position
}

func (err *MalformedOperandError) Kind() ErrorKind {
	return ERROR_MALFORMED_OPERAND
}

func (err *MalformedOperandError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid operand\n\twant:%s\n\thave:%s",
		err.Position.Line,
		err.Position.Column,
		err.Expected,
		err.Received,
	)
}

type InvalidNumArgumentsError struct {
	Position Cursor
	Required int
	Received int
}

func (err *InvalidNumArgumentsError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidNumArgumentsError) Kind() ErrorKind {
	return ERROR_MALFORMED_OPERAND
}

func (err *InvalidNumArgumentsError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid number of arguments\n\twant:%d\n\thave:%v",
		err.Position.Line,
		err.Position.Column,
		err.Required,
		err.Received,
	)
}

type InvalidLiteralError struct {
	Position Cursor
	Received string
}

func (err *InvalidLiteralError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidLiteralError) Kind() ErrorKind {
	return ERROR_MALFORMED_OPERAND
}

func (err *InvalidLiteralError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid numeric literal '%s'",
		err.Position.Line,
		err.Position.Column,
		err.Received,
	)
}

type InvalidStringError struct {
	Position Cursor
}

func (err *InvalidStringError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidStringError) Kind() ErrorKind {
	return ERROR_MALFORMED_OPERAND
}

func (err *InvalidStringError) Error() string {
	return fmt.Sprintf(
		"%02d:%02d: Invalid string literal",
		err.Position.Line,
		err.Position.Column,
	)
}

// EncodeError wraps an encoder failure with the position of the statement.
type EncodeError struct {
	Position Cursor
	Err      error
}

func (err *EncodeError) GetPosition() Cursor {
	return err.Position
}

func (err *EncodeError) Kind() ErrorKind {
	switch {
	case errors.Is(err.Err, isa.ErrUnknownInstruction):
		return ERROR_UNKNOWN_INSTRUCTION
	case errors.Is(err.Err, isa.ErrInvalidRegister):
		return ERROR_INVALID_REGISTER
	}

	return ERROR_MALFORMED_OPERAND
}

func (err *EncodeError) Error() string {
	msg := err.Err.Error()

	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return fmt.Sprintf(
		"%02d:%02d: %s",
		err.Position.Line,
		err.Position.Column,
		msg,
	)
}

func (err *EncodeError) Unwrap() error {
	return err.Err
}

type IOError struct {
	Err error
}

func (err *IOError) Kind() ErrorKind {
	return ERROR_IO_UNAVAILABLE
}

func (err *IOError) Error() string {
	return "Source unavailable: " + err.Err.Error()
}

func (err *IOError) Unwrap() error {
	return err.Err
}
