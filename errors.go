package lox

import (
	"fmt"
	"strings"
)

// CompileError is the error returned when the source can't be
// compiled.  The individual diagnostics have already been written to
// the VM's error stream by the time this value surfaces.
type CompileError struct {
	Errors int
}

func (e *CompileError) Error() string {
	if e.Errors == 1 {
		return "compilation failed with 1 error"
	}
	return fmt.Sprintf("compilation failed with %d errors", e.Errors)
}

// RuntimeError is the error returned when the virtual machine aborts
// execution.  Trace holds one `[line N] in <fn>` entry per call
// frame, innermost first.
type RuntimeError struct {
	Message string
	Line    int
	Trace   []string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Backtrace returns the stack trace in the same shape it was written
// to the error stream.
func (e *RuntimeError) Backtrace() string {
	return strings.Join(e.Trace, "\n")
}
