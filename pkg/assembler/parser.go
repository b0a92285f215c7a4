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
	"strings"
	"unicode"

	"github.com/lassandro/gorisc/pkg/encoding"
	"github.com/lassandro/gorisc/pkg/isa"
)

type sourceLine struct {
	Number int
	Offset int64
	Raw    string
}

// cursor locates token within the raw line, falling back to the whole line
// when the token cannot be found.
func (l *sourceLine) cursor(token string) Cursor {
	column := 0
	size := len(l.Raw)

	if i := strings.Index(l.Raw, token); token != "" && i >= 0 {
		column = i
		size = len(token)
	} else if trimmed := strings.TrimLeftFunc(l.Raw, unicode.IsSpace); len(trimmed) > 0 {
		column = len(l.Raw) - len(trimmed)
		size = len(trimmed)
	}

	return Cursor{
		Line:     l.Number,
		Column:   column + 1,
		Byte:     l.Offset + int64(column),
		Size:     int64(max(size, 1)),
		LineByte: l.Offset,
	}
}

// stripComment removes a # comment from a line, respecting quoted strings.
func stripComment(line string) string {
	inString := false
	escaped := false

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == QUOTE_CHAR:
			inString = !inString
		case c == COMMENT_CHAR && !inString:
			return line[:i]
		}
	}

	return line
}

// splitLabel splits "label: rest". A colon only marks a label when it comes
// before any string literal.
func splitLabel(line string) (label, rest string, ok bool) {
	colon := strings.IndexByte(line, LABEL_CHAR)

	if colon < 0 {
		return "", line, false
	}

	if quote := strings.IndexByte(line, QUOTE_CHAR); quote >= 0 && quote < colon {
		return "", line, false
	}

	label = strings.TrimSpace(line[:colon])
	rest = strings.TrimSpace(line[colon+1:])

	return label, rest, true
}

func validLabel(label string) bool {
	if label == "" || unicode.IsDigit(rune(label[0])) {
		return false
	}

	return !strings.ContainsFunc(label, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '(' || r == ')' || r == '"'
	})
}

// splitKeyword returns the first whitespace-delimited token and the trimmed
// remainder.
func splitKeyword(text string) (keyword, rest string) {
	i := strings.IndexFunc(text, unicode.IsSpace)

	if i < 0 {
		return text, ""
	}

	return text[:i], strings.TrimSpace(text[i:])
}

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, ".TEXT") {
		return DIRECTIVE_TEXT
	} else if strings.EqualFold(ident, ".DATA") {
		return DIRECTIVE_DATA
	} else if strings.EqualFold(ident, ".WORD") {
		return DIRECTIVE_WORD
	} else if strings.EqualFold(ident, ".HALF") {
		return DIRECTIVE_HALF
	} else if strings.EqualFold(ident, ".BYTE") {
		return DIRECTIVE_BYTE
	} else if strings.EqualFold(ident, ".DWORD") {
		return DIRECTIVE_DWORD
	} else if strings.EqualFold(ident, ".ASCIIZ") {
		return DIRECTIVE_ASCIIZ
	} else if strings.EqualFold(ident, ".GLOBL") {
		return DIRECTIVE_GLOBL
	} else if strings.EqualFold(ident, ".EQU") || strings.EqualFold(ident, ".SET") {
		return DIRECTIVE_EQU
	}

	return DIRECTIVE_INVALID
}

// splitMemory splits a memory operand "imm(reg)".
func splitMemory(operand string) (imm, reg string, ok bool) {
	lparen := strings.IndexByte(operand, '(')
	rparen := strings.LastIndexByte(operand, ')')

	if lparen <= 0 || rparen != len(operand)-1 || rparen <= lparen+1 {
		return "", "", false
	}

	if strings.ContainsAny(operand[lparen+1:rparen], "()") {
		return "", "", false
	}

	return operand[:lparen], operand[lparen+1 : rparen], true
}

var operandCount = map[isa.Syntax]int{
	isa.SYNTAX_REG3:    3,
	isa.SYNTAX_REG2IMM: 3,
	isa.SYNTAX_LOAD:    2,
	isa.SYNTAX_STORE:   2,
	isa.SYNTAX_BRANCH:  3,
	isa.SYNTAX_UPPER:   2,
	isa.SYNTAX_JUMP:    2,
}

// ParseInstruction decomposes a single instruction statement, without
// label or comment, using the default instruction map. Immediates are left
// unresolved in ImmText.
func ParseInstruction(text string) (isa.Instruction, error) {
	line := sourceLine{Number: 1, Raw: text}
	return parseInstruction(isa.DefaultTable(), &line, strings.TrimSpace(text))
}

func parseInstruction(
	table *isa.Table, line *sourceLine, text string,
) (isa.Instruction, error) {
	keyword, rest := splitKeyword(text)
	mnemonic := strings.ToLower(keyword)

	inst := isa.Instruction{
		Mnemonic: mnemonic,
		Line:     line.Number,
		Source:   text,
	}

	entry, ok := table.Lookup(mnemonic)

	if !ok {
		return inst, &UnknownInstructionError{line.cursor(keyword), keyword}
	}

	inst.Format = entry.Format
	operands := encoding.SplitList(rest)

	if count := len(operands); count != operandCount[entry.Syntax] {
		return inst, &InvalidNumArgumentsError{
			line.cursor(keyword), operandCount[entry.Syntax], count,
		}
	}

	registers := make([]*string, 0, 3)

	switch entry.Syntax {
	case isa.SYNTAX_REG3:
		inst.Rd, inst.Rs1, inst.Rs2 = operands[0], operands[1], operands[2]
		registers = append(registers, &inst.Rd, &inst.Rs1, &inst.Rs2)

	case isa.SYNTAX_REG2IMM:
		inst.Rd, inst.Rs1, inst.ImmText = operands[0], operands[1], operands[2]
		registers = append(registers, &inst.Rd, &inst.Rs1)

	case isa.SYNTAX_LOAD, isa.SYNTAX_STORE:
		imm, base, ok := splitMemory(operands[1])

		if !ok {
			return inst, &MalformedOperandError{
				line.cursor(operands[1]), operands[1], "imm(reg)",
			}
		}

		inst.ImmText, inst.Rs1 = imm, base

		if entry.Syntax == isa.SYNTAX_LOAD {
			inst.Rd = operands[0]
			registers = append(registers, &inst.Rd, &inst.Rs1)
		} else {
			inst.Rs2 = operands[0]
			registers = append(registers, &inst.Rs2, &inst.Rs1)
		}

	case isa.SYNTAX_BRANCH:
		inst.Rs1, inst.Rs2, inst.ImmText = operands[0], operands[1], operands[2]
		registers = append(registers, &inst.Rs1, &inst.Rs2)

	case isa.SYNTAX_UPPER, isa.SYNTAX_JUMP:
		inst.Rd, inst.ImmText = operands[0], operands[1]
		registers = append(registers, &inst.Rd)
	}

	for _, reg := range registers {
		if _, err := isa.ParseRegister(*reg); err != nil {
			return inst, &InvalidRegisterError{line.cursor(*reg), *reg}
		}
	}

	return inst, nil
}
