package lox

import (
	"fmt"
	"unsafe"
)

// The collector is a stop-the-world tri-color mark-sweep.  Every
// object constructor below funds its allocation through adjustBytes
// first, which is the single safepoint: with StressGC on it
// collects every time, otherwise whenever the accounted heap crosses
// nextGC.  Anything live at that moment must be reachable from the
// VM roots (stack, frames, globals, open upvalues) or from the
// compiler chain under construction.

func (vm *VM) adjustBytes(delta int) {
	vm.bytesAllocated += delta
	if delta <= 0 {
		return
	}
	if vm.cfg.StressGC || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}
}

// registerObject links a freshly built object into the sweep list.
// The caller funds the allocation through adjustBytes before
// constructing the object, so a collection triggered by that
// safepoint can't see (and can't sweep) the newcomer.
func (vm *VM) registerObject(o *obj, typ objType) {
	o.typ = typ
	o.next = vm.objects
	vm.objects = o

	if vm.cfg.LogGC {
		fmt.Fprintf(vm.stderr, "%p allocate %d bytes\n", o, objSize(o))
	}
}

// objSize mirrors exactly what the constructor charged to the heap
// accounting, so sweeping an object refunds what allocating it cost.
func objSize(o *obj) int {
	switch o.typ {
	case objType_String:
		s := o.asString()
		return int(unsafe.Sizeof(objString{})) + len(s.chars)
	case objType_Function:
		return int(unsafe.Sizeof(objFunction{}))
	case objType_Native:
		return int(unsafe.Sizeof(objNative{}))
	case objType_Closure:
		c := o.asClosure()
		return int(unsafe.Sizeof(objClosure{})) + 8*len(c.upvalues)
	case objType_Upvalue:
		return int(unsafe.Sizeof(objUpvalue{}))
	case objType_Class:
		return int(unsafe.Sizeof(objClass{}))
	case objType_Instance:
		return int(unsafe.Sizeof(objInstance{}))
	case objType_BoundMethod:
		return int(unsafe.Sizeof(objBoundMethod{}))
	default:
		return 0
	}
}

// Object constructors.  Each one is an allocation safepoint.

func (vm *VM) allocateString(chars string, hash uint32) *objString {
	vm.adjustBytes(int(unsafe.Sizeof(objString{})) + len(chars))
	s := &objString{hash: hash, chars: chars}
	vm.registerString(s)
	return s
}

func (vm *VM) registerString(s *objString) {
	s.typ = objType_String
	s.next = vm.objects
	vm.objects = &s.obj

	if vm.cfg.LogGC {
		fmt.Fprintf(vm.stderr, "%p allocate string %q\n", &s.obj, s.chars)
	}

	// Intern right away.  The table insertion does not allocate
	// through the managed path, so the new string can't be collected
	// out from under it.
	vm.strings.set(s, nilVal())
}

// internString is the `copy` entry point of the interner: it probes
// the intern table by content and only allocates on a miss.  Go
// strings are immutable, so the `take` flavor collapses into this
// one as well.
func (vm *VM) internString(chars string) *objString {
	hash := hashString(chars)
	if interned := vm.strings.findString(chars, hash); interned != nil {
		return interned
	}
	return vm.allocateString(chars, hash)
}

func (vm *VM) newFunction() *objFunction {
	vm.adjustBytes(int(unsafe.Sizeof(objFunction{})))
	f := &objFunction{}
	vm.registerObject(&f.obj, objType_Function)
	return f
}

func (vm *VM) newNative(arity int, fn NativeFn) *objNative {
	vm.adjustBytes(int(unsafe.Sizeof(objNative{})))
	n := &objNative{arity: arity, fn: fn}
	vm.registerObject(&n.obj, objType_Native)
	return n
}

func (vm *VM) newClosure(function *objFunction) *objClosure {
	vm.adjustBytes(int(unsafe.Sizeof(objClosure{})) + 8*function.upvalueCount)
	c := &objClosure{
		function: function,
		upvalues: make([]*objUpvalue, function.upvalueCount),
	}
	vm.registerObject(&c.obj, objType_Closure)
	return c
}

func (vm *VM) newUpvalue(slot int) *objUpvalue {
	vm.adjustBytes(int(unsafe.Sizeof(objUpvalue{})))
	u := &objUpvalue{location: &vm.stack[slot], slot: slot, closed: nilVal()}
	vm.registerObject(&u.obj, objType_Upvalue)
	return u
}

func (vm *VM) newClass(name *objString) *objClass {
	vm.adjustBytes(int(unsafe.Sizeof(objClass{})))
	c := &objClass{name: name}
	vm.registerObject(&c.obj, objType_Class)
	return c
}

func (vm *VM) newInstance(class *objClass) *objInstance {
	vm.adjustBytes(int(unsafe.Sizeof(objInstance{})))
	i := &objInstance{class: class}
	vm.registerObject(&i.obj, objType_Instance)
	return i
}

func (vm *VM) newBoundMethod(receiver Value, method *objClosure) *objBoundMethod {
	vm.adjustBytes(int(unsafe.Sizeof(objBoundMethod{})))
	b := &objBoundMethod{receiver: receiver, method: method}
	vm.registerObject(&b.obj, objType_BoundMethod)
	return b
}

// Collection.

func (vm *VM) collectGarbage() {
	logging := vm.cfg.LogGC
	var before int
	if logging {
		before = vm.bytesAllocated
		fmt.Fprintf(vm.stderr, "-- gc begin\n")
	}

	vm.markRoots()
	vm.traceReferences()
	vm.removeWhiteStrings()
	vm.sweep(logging)

	vm.nextGC = vm.bytesAllocated * vm.cfg.HeapGrowFactor

	if logging {
		fmt.Fprintf(vm.stderr, "-- gc end\n")
		fmt.Fprintf(vm.stderr, "   collected %d bytes (from %d to %d) next at %d\n",
			before-vm.bytesAllocated, before, vm.bytesAllocated, vm.nextGC)
	}
}

func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}

	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(&vm.frames[i].closure.obj)
	}

	for u := vm.openUpvalues; u != nil; u = u.nextOpen {
		vm.markObject(&u.obj)
	}

	vm.markTable(&vm.globals)
	vm.markCompilerRoots()
	if vm.initString != nil {
		vm.markObject(&vm.initString.obj)
	}
}

// markCompilerRoots walks the chain of in-progress function
// compilations, from the innermost frame up through its enclosers.
func (vm *VM) markCompilerRoots() {
	if vm.parser == nil {
		return
	}
	for c := vm.parser.compiler; c != nil; c = c.enclosing {
		// function is nil for the instant between pushing a frame
		// and allocating its function.
		if c.function != nil {
			vm.markObject(&c.function.obj)
		}
	}
}

func (vm *VM) markValue(v Value) {
	if v.isObj() {
		vm.markObject(v.asObj())
	}
}

func (vm *VM) markObject(o *obj) {
	if o == nil || o.marked {
		return
	}
	if vm.cfg.LogGC {
		fmt.Fprintf(vm.stderr, "%p mark %s\n", o, formatObject(o))
	}
	o.marked = true
	vm.greyStack = append(vm.greyStack, o)
}

func (vm *VM) markTable(t *table) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			vm.markObject(&e.key.obj)
		}
		vm.markValue(e.value)
	}
}

func (vm *VM) traceReferences() {
	for len(vm.greyStack) > 0 {
		o := vm.greyStack[len(vm.greyStack)-1]
		vm.greyStack = vm.greyStack[:len(vm.greyStack)-1]
		vm.blackenObject(o)
	}
}

func (vm *VM) blackenObject(o *obj) {
	if vm.cfg.LogGC {
		fmt.Fprintf(vm.stderr, "%p blacken %s\n", o, formatObject(o))
	}

	switch o.typ {
	case objType_Native, objType_String:
		// Leaves: nothing to trace.
	case objType_Upvalue:
		vm.markValue(o.asUpvalue().closed)
	case objType_Function:
		f := o.asFunction()
		if f.name != nil {
			vm.markObject(&f.name.obj)
		}
		for _, c := range f.chunk.constants {
			vm.markValue(c)
		}
	case objType_Closure:
		c := o.asClosure()
		vm.markObject(&c.function.obj)
		for _, u := range c.upvalues {
			if u != nil {
				vm.markObject(&u.obj)
			}
		}
	case objType_Class:
		c := o.asClass()
		vm.markObject(&c.name.obj)
		vm.markTable(&c.methods)
	case objType_Instance:
		i := o.asInstance()
		vm.markObject(&i.class.obj)
		vm.markTable(&i.fields)
	case objType_BoundMethod:
		b := o.asBoundMethod()
		vm.markValue(b.receiver)
		vm.markObject(&b.method.obj)
	}
}

// removeWhiteStrings drops unreachable strings from the intern table
// before the sweep frees them, so the table never holds a dangling
// key.
func (vm *VM) removeWhiteStrings() {
	for i := range vm.strings.entries {
		e := &vm.strings.entries[i]
		if e.key != nil && !e.key.marked {
			vm.strings.delete(e.key)
		}
	}
}

func (vm *VM) sweep(logging bool) {
	var previous *obj
	o := vm.objects
	for o != nil {
		if o.marked {
			o.marked = false
			previous = o
			o = o.next
			continue
		}

		unreached := o
		o = o.next
		if previous != nil {
			previous.next = o
		} else {
			vm.objects = o
		}

		if logging {
			fmt.Fprintf(vm.stderr, "%p free %s\n", unreached, formatObject(unreached))
		}
		vm.bytesAllocated -= objSize(unreached)
		unreached.next = nil
	}
}
