package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/adamdb5/lox"
)

type args struct {
	trace     *bool
	printCode *bool
	stressGC  *bool
	logGC     *bool

	disassemble *bool
}

func readArgs() *args {
	a := &args{
		// Debugging Options

		trace:       flag.Bool("trace", false, "Trace each executed instruction and the value stack"),
		printCode:   flag.Bool("print-code", false, "Disassemble each function as it is compiled"),
		disassemble: flag.Bool("disassemble", false, "Compile the script, print its bytecode and exit"),

		// Garbage Collector Options

		stressGC: flag.Bool("stress-gc", false, "Collect on every allocation"),
		logGC:    flag.Bool("log-gc", false, "Log allocations, marks and sweeps"),
	}

	flag.Parse()

	return a
}

func main() {
	a := readArgs()

	cfg := lox.NewConfig()
	cfg.TraceExecution = *a.trace
	cfg.PrintCode = *a.printCode
	cfg.StressGC = *a.stressGC
	cfg.LogGC = *a.logGC

	vm, err := lox.NewVM(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(lox.ExitIOError)
	}

	switch flag.NArg() {
	case 0:
		repl(vm)
	case 1:
		runFile(vm, flag.Arg(0), *a.disassemble)
	default:
		fmt.Fprintln(os.Stderr, "Usage: lox [path]")
		os.Exit(lox.ExitUsage)
	}
}

// repl reads lines until EOF.  Globals persist between lines and
// both compile and runtime errors drop back to the prompt.
func repl(vm *lox.VM) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, errors.Wrap(err, "can't read input"))
			os.Exit(lox.ExitIOError)
		}
		if line == "\n" {
			continue
		}

		_ = vm.Interpret(line)
	}
}

func runFile(vm *lox.VM, path string, disassemble bool) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrapf(err, "can't open script %q", path))
		os.Exit(lox.ExitIOError)
	}

	if disassemble {
		listing, err := vm.HighlightDisassemble(string(source))
		if err != nil {
			os.Exit(lox.ExitCode(err))
		}
		fmt.Print(listing)
		return
	}

	if err := vm.Interpret(string(source)); err != nil {
		os.Exit(lox.ExitCode(err))
	}
}
