package lox

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	uint8Count = 256
	framesMax  = 64
	stackMax   = framesMax * uint8Count
)

// callFrame is the per-invocation record: the executing closure, its
// instruction pointer, and the base of its window into the value
// stack.
type callFrame struct {
	closure *objClosure
	ip      int
	slots   int
}

// VM executes compiled chunks.  One VM owns the whole object graph:
// the sweep list, the intern table, the globals, and (while a
// compilation is in flight) the compiler chain all hang off it, which
// is what makes the collector's root set well defined.
type VM struct {
	cfg    *Config
	stdout io.Writer
	stderr io.Writer

	frames     [framesMax]callFrame
	frameCount int

	stack    [stackMax]Value
	stackTop int

	globals      table
	strings      table
	initString   *objString
	openUpvalues *objUpvalue

	objects        *obj
	bytesAllocated int
	nextGC         int
	greyStack      []*obj

	// parser is non-nil only while compile() runs; it exposes the
	// compiler chain to the collector.
	parser *parser
}

// Option configures a VM during NewVM.
type Option func(*VM) error

// Stdout sets the writer that `print` and the disassembler write to.
func Stdout(w io.Writer) Option {
	return func(vm *VM) error {
		if w == nil {
			return errors.New("stdout writer must not be nil")
		}
		vm.stdout = w
		return nil
	}
}

// Stderr sets the writer that diagnostics and GC logs write to.
func Stderr(w io.Writer) Option {
	return func(vm *VM) error {
		if w == nil {
			return errors.New("stderr writer must not be nil")
		}
		vm.stderr = w
		return nil
	}
}

// NewVM creates a virtual machine with the `clock` native installed.
// A nil cfg uses the defaults from NewConfig.
func NewVM(cfg *Config, opts ...Option) (*VM, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	vm := &VM{
		cfg:    cfg,
		stdout: os.Stdout,
		stderr: os.Stderr,
		nextGC: 1024 * 1024,
	}
	for _, opt := range opts {
		if err := opt(vm); err != nil {
			return nil, err
		}
	}

	vm.initString = vm.internString("init")
	vm.defineNative("clock", 0, clockNative)
	return vm, nil
}

// Stack primitives.

func (vm *VM) push(v Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// defineNative parks both the name and the function on the stack
// while the other is allocated, so a collection triggered in between
// can't sweep either.
func (vm *VM) defineNative(name string, arity int, fn NativeFn) {
	vm.push(objVal(&vm.internString(name).obj))
	vm.push(objVal(&vm.newNative(arity, fn).obj))
	vm.globals.set(asString(vm.stack[0]), vm.stack[1])
	vm.pop()
	vm.pop()
}

// Interpret compiles and runs a source string.  It returns nil on
// success, a *CompileError if the source didn't compile (diagnostics
// were already written to the error stream), or a *RuntimeError if
// execution aborted.
func (vm *VM) Interpret(source string) error {
	function, err := vm.compile(source)
	if err != nil {
		return err
	}

	vm.push(objVal(&function.obj))
	closure := vm.newClosure(function)
	vm.pop()
	vm.push(objVal(&closure.obj))
	if err := vm.call(closure, 0); err != nil {
		return err
	}

	return vm.run()
}

// run is the dispatch loop.  It only ever exits through an explicit
// return: success when the last frame pops, failure through
// runtimeError.
func (vm *VM) run() error {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.function.chunk.code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := frame.closure.function.chunk.code[frame.ip]
		lo := frame.closure.function.chunk.code[frame.ip+1]
		frame.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() Value {
		return frame.closure.function.chunk.constants[readByte()]
	}
	readString := func() *objString {
		return asString(readConstant())
	}

	trace := vm.cfg.TraceExecution

	for {
		if trace {
			vm.traceInstruction(frame)
		}

		switch op := readByte(); op {
		case opConstant:
			vm.push(readConstant())

		case opNil:
			vm.push(nilVal())

		case opTrue:
			vm.push(boolVal(true))

		case opFalse:
			vm.push(boolVal(false))

		case opPop:
			vm.pop()

		case opGetLocal:
			slot := readByte()
			vm.push(vm.stack[frame.slots+int(slot)])

		case opSetLocal:
			slot := readByte()
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case opGetGlobal:
			name := readString()
			value, ok := vm.globals.get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.chars)
			}
			vm.push(value)

		case opDefineGlobal:
			name := readString()
			vm.globals.set(name, vm.peek(0))
			vm.pop()

		case opSetGlobal:
			name := readString()
			// Assignment must not create the variable; undo the
			// insertion the probe just made and report.
			if vm.globals.set(name, vm.peek(0)) {
				vm.globals.delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.chars)
			}

		case opGetUpvalue:
			slot := readByte()
			vm.push(*frame.closure.upvalues[slot].location)

		case opSetUpvalue:
			slot := readByte()
			*frame.closure.upvalues[slot].location = vm.peek(0)

		case opGetProperty:
			if !isInstance(vm.peek(0)) {
				return vm.runtimeError("Only instances have properties.")
			}
			instance := asInstance(vm.peek(0))
			name := readString()

			if value, ok := instance.fields.get(name); ok {
				vm.pop() // instance
				vm.push(value)
				break
			}
			if err := vm.bindMethod(instance.class, name); err != nil {
				return err
			}

		case opSetProperty:
			if !isInstance(vm.peek(1)) {
				return vm.runtimeError("Only instances have fields.")
			}
			instance := asInstance(vm.peek(1))
			instance.fields.set(readString(), vm.peek(0))
			value := vm.pop()
			vm.pop() // instance
			vm.push(value)

		case opGetSuper:
			name := readString()
			superclass := asClass(vm.pop())
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case opEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(boolVal(valuesEqual(a, b)))

		case opGreater:
			if !vm.peek(0).isNumber() || !vm.peek(1).isNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().asNumber()
			a := vm.pop().asNumber()
			vm.push(boolVal(a > b))

		case opLess:
			if !vm.peek(0).isNumber() || !vm.peek(1).isNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().asNumber()
			a := vm.pop().asNumber()
			vm.push(boolVal(a < b))

		case opAdd:
			switch {
			case isString(vm.peek(0)) && isString(vm.peek(1)):
				vm.concatenate()
			case vm.peek(0).isNumber() && vm.peek(1).isNumber():
				b := vm.pop().asNumber()
				a := vm.pop().asNumber()
				vm.push(numberVal(a + b))
			default:
				return vm.runtimeError("Operands must be two numbers or two strings.")
			}

		case opSubtract:
			if !vm.peek(0).isNumber() || !vm.peek(1).isNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().asNumber()
			a := vm.pop().asNumber()
			vm.push(numberVal(a - b))

		case opMultiply:
			if !vm.peek(0).isNumber() || !vm.peek(1).isNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().asNumber()
			a := vm.pop().asNumber()
			vm.push(numberVal(a * b))

		case opDivide:
			if !vm.peek(0).isNumber() || !vm.peek(1).isNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().asNumber()
			a := vm.pop().asNumber()
			vm.push(numberVal(a / b))

		case opNot:
			vm.push(boolVal(isFalsey(vm.pop())))

		case opNegate:
			if !vm.peek(0).isNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(numberVal(-vm.pop().asNumber()))

		case opPrint:
			fmt.Fprintf(vm.stdout, "%s\n", formatValue(vm.pop()))

		case opJump:
			offset := readShort()
			frame.ip += offset

		case opJumpIfFalse:
			offset := readShort()
			if isFalsey(vm.peek(0)) {
				frame.ip += offset
			}

		case opLoop:
			offset := readShort()
			frame.ip -= offset

		case opCall:
			argCount := int(readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case opInvoke:
			method := readString()
			argCount := int(readByte())
			if err := vm.invoke(method, argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case opSuperInvoke:
			method := readString()
			argCount := int(readByte())
			superclass := asClass(vm.pop())
			if err := vm.invokeFromClass(superclass, method, argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case opClosure:
			function := asFunction(readConstant())
			closure := vm.newClosure(function)
			vm.push(objVal(&closure.obj))
			for i := 0; i < function.upvalueCount; i++ {
				isLocal := readByte()
				index := int(readByte())
				if isLocal == 1 {
					closure.upvalues[i] = vm.captureUpvalue(frame.slots + index)
				} else {
					closure.upvalues[i] = frame.closure.upvalues[index]
				}
			}

		case opCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case opReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case opClass:
			vm.push(objVal(&vm.newClass(readString()).obj))

		case opInherit:
			superclass := vm.peek(1)
			if !isClass(superclass) {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := asClass(vm.peek(0))
			subclass.methods.addAll(&asClass(superclass).methods)
			vm.pop() // subclass

		case opMethod:
			name := readString()
			method := vm.peek(0)
			class := asClass(vm.peek(1))
			class.methods.set(name, method)
			vm.pop()

		default:
			return vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}

// Calls.

func (vm *VM) callValue(callee Value, argCount int) error {
	if callee.isObj() {
		switch callee.asObj().typ {
		case objType_Closure:
			return vm.call(asClosure(callee), argCount)

		case objType_Native:
			native := asNative(callee)
			if argCount != native.arity {
				return vm.runtimeError("Expected %d arguments but got %d.", native.arity, argCount)
			}
			result := native.fn(vm.stack[vm.stackTop-argCount : vm.stackTop])
			vm.stackTop -= argCount + 1
			vm.push(result)
			return nil

		case objType_Class:
			class := asClass(callee)
			instance := vm.newInstance(class)
			vm.stack[vm.stackTop-argCount-1] = objVal(&instance.obj)
			if initializer, ok := class.methods.get(vm.initString); ok {
				return vm.call(asClosure(initializer), argCount)
			}
			if argCount != 0 {
				return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
			}
			return nil

		case objType_BoundMethod:
			bound := asBoundMethod(callee)
			vm.stack[vm.stackTop-argCount-1] = bound.receiver
			return vm.call(bound.method, argCount)
		}
	}
	return vm.runtimeError("Can only call functions and classes.")
}

func (vm *VM) call(closure *objClosure, argCount int) error {
	if argCount != closure.function.arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.function.arity, argCount)
	}
	if vm.frameCount == framesMax {
		return vm.runtimeError("Stack overflow.")
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	return nil
}

func (vm *VM) invoke(name *objString, argCount int) error {
	receiver := vm.peek(argCount)
	if !isInstance(receiver) {
		return vm.runtimeError("Only instances have methods.")
	}
	instance := asInstance(receiver)

	// A field holding a callable shadows any method of the same name.
	if value, ok := instance.fields.get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = value
		return vm.callValue(value, argCount)
	}
	return vm.invokeFromClass(instance.class, name, argCount)
}

func (vm *VM) invokeFromClass(class *objClass, name *objString, argCount int) error {
	method, ok := class.methods.get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.chars)
	}
	return vm.call(asClosure(method), argCount)
}

func (vm *VM) bindMethod(class *objClass, name *objString) error {
	method, ok := class.methods.get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.chars)
	}
	bound := vm.newBoundMethod(vm.peek(0), asClosure(method))
	vm.pop()
	vm.push(objVal(&bound.obj))
	return nil
}

// Upvalues.

// captureUpvalue returns the open upvalue for a stack slot, creating
// it in address order if none exists.  The open list is sorted by
// descending slot so sibling closures capturing the same variable
// share one upvalue.
func (vm *VM) captureUpvalue(slot int) *objUpvalue {
	var prev *objUpvalue
	upvalue := vm.openUpvalues
	for upvalue != nil && upvalue.slot > slot {
		prev = upvalue
		upvalue = upvalue.nextOpen
	}
	if upvalue != nil && upvalue.slot == slot {
		return upvalue
	}

	created := vm.newUpvalue(slot)
	created.nextOpen = upvalue
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.nextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above the given
// stack slot: the stack value moves into the upvalue and the
// location is redirected at the object's own storage.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.slot >= last {
		upvalue := vm.openUpvalues
		upvalue.closed = *upvalue.location
		upvalue.location = &upvalue.closed
		upvalue.slot = -1
		vm.openUpvalues = upvalue.nextOpen
		upvalue.nextOpen = nil
	}
}

// concatenate interns the joined string.  Operands stay on the stack
// until the result exists, because the interner may collect.
func (vm *VM) concatenate() {
	b := asString(vm.peek(0))
	a := asString(vm.peek(1))
	result := vm.internString(a.chars + b.chars)
	vm.pop()
	vm.pop()
	vm.push(objVal(&result.obj))
}

// runtimeError writes the message and the stack trace to the error
// stream, resets the stacks and returns the error for the dispatch
// loop to surface.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(vm.stderr, "%s\n", message)

	var (
		trace []string
		line  int
	)
	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		function := frame.closure.function
		at := function.chunk.lines[frame.ip-1]
		if i == vm.frameCount-1 {
			line = at
		}

		var where string
		if function.name == nil {
			where = "script"
		} else {
			where = function.name.chars + "()"
		}
		entry := fmt.Sprintf("[line %d] in %s", at, where)
		trace = append(trace, entry)
		fmt.Fprintf(vm.stderr, "%s\n", entry)
	}

	vm.resetStack()
	return &RuntimeError{Message: message, Line: line, Trace: trace}
}

// traceInstruction dumps the stack and the next instruction, for the
// TraceExecution knob.
func (vm *VM) traceInstruction(frame *callFrame) {
	var s strings.Builder
	s.WriteString("          ")
	for i := 0; i < vm.stackTop; i++ {
		s.WriteString("[ ")
		s.WriteString(formatValue(vm.stack[i]))
		s.WriteString(" ]")
	}
	s.WriteString("\n")
	fmt.Fprint(vm.stdout, s.String())

	listing, _ := disassembleInstruction(&frame.closure.function.chunk, frame.ip, plainFormat)
	fmt.Fprint(vm.stdout, listing)
}
