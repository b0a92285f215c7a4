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

const (
	ERROR_NONE ErrorKind = iota
	ERROR_INVALID_LABEL
	ERROR_UNRESOLVED_LABEL
	ERROR_UNKNOWN_INSTRUCTION
	ERROR_INVALID_REGISTER
	ERROR_MALFORMED_OPERAND
	ERROR_IO_UNAVAILABLE
)

const (
	DIRECTIVE_INVALID DirectiveType = iota
	DIRECTIVE_TEXT
	DIRECTIVE_DATA
	DIRECTIVE_WORD
	DIRECTIVE_HALF
	DIRECTIVE_BYTE
	DIRECTIVE_DWORD
	DIRECTIVE_ASCIIZ
	DIRECTIVE_GLOBL
	DIRECTIVE_EQU
)

const (
	DATA_SEGMENT_BASE uint32 = 0x10000000
	TEXT_SEGMENT_BASE uint32 = 0x00000000
)

const (
	COMMENT_CHAR = '#'
	LABEL_CHAR   = ':'
	QUOTE_CHAR   = '"'
)
