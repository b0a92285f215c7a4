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
	"context"
	"strconv"

	"tlog.app/go/tlog"

	"github.com/lassandro/gorisc/pkg/encoding"
	"github.com/lassandro/gorisc/pkg/symtab"
)

func directiveWidth(directive DirectiveType) int {
	switch directive {
	case DIRECTIVE_BYTE:
		return 1
	case DIRECTIVE_HALF:
		return 2
	case DIRECTIVE_WORD:
		return 4
	case DIRECTIVE_DWORD:
		return 8
	}

	return 0
}

// directive executes one directive statement. Every directive is safe to
// run in both passes: data lands on the same addresses each time.
func (s *state) directive(ctx context.Context, line *sourceLine, text string) error {
	keyword, rest := splitKeyword(text)
	directive := parseDirective(keyword)

	switch directive {
	// .text / .data
	case DIRECTIVE_TEXT, DIRECTIVE_DATA:
		if rest != "" {
			return &InvalidNumArgumentsError{
				line.cursor(keyword), 0, len(encoding.SplitList(rest)),
			}
		}

	// .word 1, 2, 3
	case DIRECTIVE_WORD, DIRECTIVE_HALF, DIRECTIVE_BYTE, DIRECTIVE_DWORD:
		width := directiveWidth(directive)
		values := encoding.SplitList(rest)

		if len(values) == 0 {
			return &InvalidNumArgumentsError{line.cursor(keyword), 1, 0}
		}

		for _, value := range values {
			literal, err := encoding.DecodeInt(value)

			if err != nil {
				return &InvalidLiteralError{line.cursor(value), value}
			}

			s.symbols.AddData(s.data, symtab.Datum{
				Value: encoding.Truncate(literal, width),
				Width: width,
			})

			s.data += uint32(width)
		}

	// .asciiz "..."
	case DIRECTIVE_ASCIIZ:
		if len(rest) < 2 || rest[0] != QUOTE_CHAR {
			return &InvalidStringError{line.cursor(rest)}
		}

		str, err := strconv.Unquote(rest)

		if err != nil {
			return &InvalidStringError{line.cursor(rest)}
		}

		for i := 0; i < len(str); i++ {
			s.symbols.AddData(s.data, symtab.Datum{Value: uint64(str[i]), Width: 1})
			s.data++
		}

		s.symbols.AddData(s.data, symtab.Datum{Value: 0, Width: 1})
		s.data++

	// .globl name
	case DIRECTIVE_GLOBL:
		names := encoding.SplitList(rest)

		if count := len(names); count != 1 {
			return &InvalidNumArgumentsError{line.cursor(keyword), 1, count}
		}

		s.symbols.AddGlobal(names[0])

	// .equ name, value
	case DIRECTIVE_EQU:
		operands := encoding.SplitList(rest)

		if count := len(operands); count != 2 {
			return &InvalidNumArgumentsError{line.cursor(keyword), 2, count}
		}

		if !validLabel(operands[0]) {
			return &InvalidLabelError{line.cursor(operands[0]), operands[0]}
		}

		value, err := encoding.DecodeInt(operands[1])

		if err != nil {
			return &InvalidLiteralError{line.cursor(operands[1]), operands[1]}
		}

		s.symbols.AddConstant(operands[0], value)

		if s.pass == 1 {
			tlog.SpanFromContext(ctx).Printw("constant", "name", operands[0], "value", value)
		}

	default:
		return &UnknownDirectiveError{line.cursor(keyword), keyword}
	}

	return nil
}
