package lox

// NOTE: changing the order of these variants will break bytecode ABI
const (
	opConstant byte = iota
	opNil
	opTrue
	opFalse
	opPop
	opGetLocal
	opSetLocal
	opGetGlobal
	opDefineGlobal
	opSetGlobal
	opGetUpvalue
	opSetUpvalue
	opGetProperty
	opSetProperty
	opGetSuper
	opEqual
	opGreater
	opLess
	opAdd
	opSubtract
	opMultiply
	opDivide
	opNot
	opNegate
	opPrint
	opJump
	opJumpIfFalse
	opLoop
	opCall
	opInvoke
	opSuperInvoke
	opClosure
	opCloseUpvalue
	opReturn
	opClass
	opInherit
	opMethod
)

var opNames = map[byte]string{
	opConstant:     "constant",
	opNil:          "nil",
	opTrue:         "true",
	opFalse:        "false",
	opPop:          "pop",
	opGetLocal:     "get_local",
	opSetLocal:     "set_local",
	opGetGlobal:    "get_global",
	opDefineGlobal: "define_global",
	opSetGlobal:    "set_global",
	opGetUpvalue:   "get_upvalue",
	opSetUpvalue:   "set_upvalue",
	opGetProperty:  "get_property",
	opSetProperty:  "set_property",
	opGetSuper:     "get_super",
	opEqual:        "equal",
	opGreater:      "greater",
	opLess:         "less",
	opAdd:          "add",
	opSubtract:     "subtract",
	opMultiply:     "multiply",
	opDivide:       "divide",
	opNot:          "not",
	opNegate:       "negate",
	opPrint:        "print",
	opJump:         "jump",
	opJumpIfFalse:  "jump_if_false",
	opLoop:         "loop",
	opCall:         "call",
	opInvoke:       "invoke",
	opSuperInvoke:  "super_invoke",
	opClosure:      "closure",
	opCloseUpvalue: "close_upvalue",
	opReturn:       "return",
	opClass:        "class",
	opInherit:      "inherit",
	opMethod:       "method",
}

// Chunk is a bytecode sequence plus its constant pool and a source
// line map parallel to the code bytes.
type Chunk struct {
	code      []byte
	lines     []int
	constants []Value
}

func (c *Chunk) write(b byte, line int) {
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// addConstant returns the pool index of the appended value.  The
// 8-bit operand overflow check belongs to the compiler, which is the
// one holding the token to blame.
func (c *Chunk) addConstant(v Value) int {
	c.constants = append(c.constants, v)
	return len(c.constants) - 1
}
