package lox

import (
	"fmt"
	"strings"

	"github.com/adamdb5/lox/ascii"
)

type AsmFormatToken int

const (
	AsmFormatToken_None AsmFormatToken = iota
	AsmFormatToken_Comment
	AsmFormatToken_Opcode
	AsmFormatToken_Operand
	AsmFormatToken_Literal
)

type FormatFunc[T any] func(input string, token T) string

// asmPrinterTheme is a map from the tokens available for pretty
// printing bytecode listings to an ASCII color.  These colors are
// supposed to fair well on both dark and light terminal settings
var asmPrinterTheme = map[AsmFormatToken]string{
	AsmFormatToken_None:    ascii.Reset,
	AsmFormatToken_Comment: ascii.DefaultTheme.Comment,
	AsmFormatToken_Opcode:  ascii.DefaultTheme.Opcode,
	AsmFormatToken_Operand: ascii.DefaultTheme.Operand,
	AsmFormatToken_Literal: ascii.DefaultTheme.Literal,
}

func plainFormat(input string, _ AsmFormatToken) string {
	return input
}

func highlightFormat(input string, token AsmFormatToken) string {
	return asmPrinterTheme[token] + input + asmPrinterTheme[AsmFormatToken_None]
}

// disassembleChunk renders a whole chunk under a `== name ==` header.
func disassembleChunk(c *Chunk, name string) string {
	return renderChunk(c, name, plainFormat)
}

func renderChunk(c *Chunk, name string, format FormatFunc[AsmFormatToken]) string {
	var s strings.Builder
	s.WriteString(format(fmt.Sprintf("== %s ==\n", name), AsmFormatToken_Comment))
	for offset := 0; offset < len(c.code); {
		var line string
		line, offset = disassembleInstruction(c, offset, format)
		s.WriteString(line)
	}
	return s.String()
}

// disassembleInstruction renders the instruction at offset and
// returns the listing plus the offset of the next instruction.  A
// `|` in the line column marks an instruction on the same source
// line as its predecessor.
func disassembleInstruction(c *Chunk, offset int, format FormatFunc[AsmFormatToken]) (string, int) {
	var s strings.Builder
	s.WriteString(format(fmt.Sprintf("%04d ", offset), AsmFormatToken_Comment))
	if offset > 0 && c.lines[offset] == c.lines[offset-1] {
		s.WriteString(format("   | ", AsmFormatToken_Comment))
	} else {
		s.WriteString(format(fmt.Sprintf("%4d ", c.lines[offset]), AsmFormatToken_Comment))
	}

	op := c.code[offset]
	name, known := opNames[op]
	if !known {
		s.WriteString(fmt.Sprintf("unknown opcode %d\n", op))
		return s.String(), offset + 1
	}

	writeOp := func() {
		s.WriteString(format(fmt.Sprintf("%-16s", name), AsmFormatToken_Opcode))
	}

	switch op {
	case opConstant, opGetGlobal, opDefineGlobal, opSetGlobal,
		opGetProperty, opSetProperty, opGetSuper, opClass, opMethod:
		constant := c.code[offset+1]
		writeOp()
		s.WriteString(format(fmt.Sprintf(" %4d ", constant), AsmFormatToken_Operand))
		s.WriteString(format(fmt.Sprintf("'%s'", formatValue(c.constants[constant])), AsmFormatToken_Literal))
		s.WriteString("\n")
		return s.String(), offset + 2

	case opGetLocal, opSetLocal, opGetUpvalue, opSetUpvalue, opCall:
		slot := c.code[offset+1]
		writeOp()
		s.WriteString(format(fmt.Sprintf(" %4d", slot), AsmFormatToken_Operand))
		s.WriteString("\n")
		return s.String(), offset + 2

	case opJump, opJumpIfFalse, opLoop:
		jump := int(c.code[offset+1])<<8 | int(c.code[offset+2])
		target := offset + 3 + jump
		if op == opLoop {
			target = offset + 3 - jump
		}
		writeOp()
		s.WriteString(format(fmt.Sprintf(" %4d -> %d", offset, target), AsmFormatToken_Operand))
		s.WriteString("\n")
		return s.String(), offset + 3

	case opInvoke, opSuperInvoke:
		constant := c.code[offset+1]
		argCount := c.code[offset+2]
		writeOp()
		s.WriteString(format(fmt.Sprintf(" (%d args) %4d ", argCount, constant), AsmFormatToken_Operand))
		s.WriteString(format(fmt.Sprintf("'%s'", formatValue(c.constants[constant])), AsmFormatToken_Literal))
		s.WriteString("\n")
		return s.String(), offset + 3

	case opClosure:
		next := offset + 1
		constant := c.code[next]
		next++
		writeOp()
		s.WriteString(format(fmt.Sprintf(" %4d ", constant), AsmFormatToken_Operand))
		s.WriteString(format(formatValue(c.constants[constant]), AsmFormatToken_Literal))
		s.WriteString("\n")

		function := asFunction(c.constants[constant])
		for i := 0; i < function.upvalueCount; i++ {
			isLocal := c.code[next]
			index := c.code[next+1]
			kind := "upvalue"
			if isLocal == 1 {
				kind = "local"
			}
			s.WriteString(format(
				fmt.Sprintf("%04d      |                     %s %d\n", next, kind, index),
				AsmFormatToken_Comment))
			next += 2
		}
		return s.String(), next

	default:
		// Everything else is a bare single-byte instruction.
		writeOp()
		s.WriteString("\n")
		return s.String(), offset + 1
	}
}
