package lox

import (
	"strings"

	"github.com/pkg/errors"
)

// Exit codes shared with the command line driver, following the BSD
// sysexits convention.
const (
	ExitOK           = 0
	ExitUsage        = 64
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitIOError      = 74
)

// ExitCode maps an error from Interpret to the process exit code the
// driver should use.  Wrapped errors are unwound to their cause
// first.
func ExitCode(err error) int {
	switch errors.Cause(err).(type) {
	case nil:
		return ExitOK
	case *CompileError:
		return ExitCompileError
	case *RuntimeError:
		return ExitRuntimeError
	default:
		return ExitIOError
	}
}

// Disassemble compiles a source string and returns the plain
// bytecode listing of the script and every function it contains,
// without executing anything.
func (vm *VM) Disassemble(source string) (string, error) {
	function, err := vm.compile(source)
	if err != nil {
		return "", errors.Wrap(err, "disassemble")
	}

	var s strings.Builder
	renderFunctions(&s, function)
	return s.String(), nil
}

// HighlightDisassemble is Disassemble with the ANSI color theme.
func (vm *VM) HighlightDisassemble(source string) (string, error) {
	function, err := vm.compile(source)
	if err != nil {
		return "", errors.Wrap(err, "disassemble")
	}

	var s strings.Builder
	renderFunctionsWith(&s, function, highlightFormat)
	return s.String(), nil
}

func renderFunctions(s *strings.Builder, function *objFunction) {
	renderFunctionsWith(s, function, plainFormat)
}

// renderFunctionsWith walks the constant pools depth first so nested
// function bodies are listed after their container.
func renderFunctionsWith(s *strings.Builder, function *objFunction, format FormatFunc[AsmFormatToken]) {
	name := "<script>"
	if function.name != nil {
		name = function.name.chars
	}
	s.WriteString(renderChunk(&function.chunk, name, format))

	for _, constant := range function.chunk.constants {
		if isFunction(constant) {
			s.WriteString("\n")
			renderFunctionsWith(s, asFunction(constant), format)
		}
	}
}
