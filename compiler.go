package lox

import (
	"fmt"
	"strconv"
)

type precedence int

const (
	prec_None       precedence = iota
	prec_Assignment            // =
	prec_Or                    // or
	prec_And                   // and
	prec_Equality              // == !=
	prec_Comparison            // < > <= >=
	prec_Term                  // + -
	prec_Factor                // * /
	prec_Unary                 // ! -
	prec_Call                  // . ()
	prec_Primary
)

type parseFn func(p *parser, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

type funcType int

const (
	funcType_Script funcType = iota
	funcType_Function
	funcType_Method
	funcType_Initializer
)

type local struct {
	name       token
	depth      int
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// compiler holds the per-function compilation state.  Frames nest
// through enclosing; slot 0 of locals is reserved for the callee (or
// `this` inside methods).
type compiler struct {
	enclosing *compiler
	function  *objFunction
	typ       funcType

	locals     [uint8Count]local
	localCount int
	upvalues   [uint8Count]upvalueRef
	scopeDepth int
}

type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}

// parser drives the single-pass compilation: it owns the scanner,
// the token window, the panic-mode flag and the compiler chain.
type parser struct {
	vm      *VM
	scanner *scanner

	current  token
	previous token

	hadError  bool
	panicMode bool
	errCount  int

	compiler      *compiler
	classCompiler *classCompiler
}

// compile turns a source string into the top-level script function,
// or a *CompileError if anything was reported along the way.  While
// it runs, the parser is hooked onto the VM so the collector can see
// the functions under construction.
func (vm *VM) compile(source string) (*objFunction, error) {
	p := &parser{vm: vm, scanner: newScanner(source)}
	vm.parser = p
	defer func() { vm.parser = nil }()

	p.beginCompiler(funcType_Script)

	p.advance()
	for !p.match(tokenType_EOF) {
		p.declaration()
	}
	function := p.endCompiler()

	if p.hadError {
		return nil, &CompileError{Errors: p.errCount}
	}
	return function, nil
}

func (p *parser) beginCompiler(typ funcType) {
	c := &compiler{enclosing: p.compiler, typ: typ}
	p.compiler = c
	c.function = p.vm.newFunction()
	if typ != funcType_Script {
		c.function.name = p.vm.internString(p.previous.lexeme)
	}

	// Slot 0 belongs to the callee, or to `this` inside methods.
	slot := &c.locals[0]
	c.localCount = 1
	slot.depth = 0
	if typ != funcType_Function {
		slot.name.lexeme = "this"
	}
}

func (p *parser) endCompiler() *objFunction {
	p.emitReturn()
	function := p.compiler.function

	if p.vm.cfg.PrintCode && !p.hadError {
		name := "<script>"
		if function.name != nil {
			name = function.name.chars
		}
		fmt.Fprint(p.vm.stdout, disassembleChunk(&function.chunk, name))
	}

	p.compiler = p.compiler.enclosing
	return function
}

func (p *parser) currentChunk() *Chunk {
	return &p.compiler.function.chunk
}

// Token plumbing.

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.scanToken()
		if p.current.typ != tokenType_Error {
			break
		}
		p.errorAtCurrent(p.current.lexeme)
	}
}

func (p *parser) consume(typ tokenType, message string) {
	if p.current.typ == typ {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *parser) check(typ tokenType) bool {
	return p.current.typ == typ
}

func (p *parser) match(typ tokenType) bool {
	if !p.check(typ) {
		return false
	}
	p.advance()
	return true
}

// Error reporting.

func (p *parser) errorAtCurrent(message string) {
	p.errorAt(&p.current, message)
}

func (p *parser) error(message string) {
	p.errorAt(&p.previous, message)
}

func (p *parser) errorAt(tok *token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	fmt.Fprintf(p.vm.stderr, "[line %d] Error", tok.line)
	switch tok.typ {
	case tokenType_EOF:
		fmt.Fprintf(p.vm.stderr, " at end")
	case tokenType_Error:
		// Nothing: the lexeme is the message itself.
	default:
		fmt.Fprintf(p.vm.stderr, " at '%s'", tok.lexeme)
	}
	fmt.Fprintf(p.vm.stderr, ": %s\n", message)

	p.hadError = true
	p.errCount++
}

// synchronize skips tokens until a statement boundary so one mistake
// doesn't cascade into a wall of diagnostics.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.typ != tokenType_EOF {
		if p.previous.typ == tokenType_Semicolon {
			return
		}
		switch p.current.typ {
		case tokenType_Class, tokenType_Fun, tokenType_Var, tokenType_For,
			tokenType_If, tokenType_While, tokenType_Print, tokenType_Return:
			return
		}
		p.advance()
	}
}

// Emission helpers.

func (p *parser) emitByte(b byte) {
	p.currentChunk().write(b, p.previous.line)
}

func (p *parser) emitBytes(b1, b2 byte) {
	p.emitByte(b1)
	p.emitByte(b2)
}

func (p *parser) emitLoop(loopStart int) {
	p.emitByte(opLoop)

	offset := len(p.currentChunk().code) - loopStart + 2
	if offset > 0xffff {
		p.error("Loop body too large.")
	}

	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset & 0xff))
}

// emitJump writes a placeholder 16-bit operand and returns its
// offset for patchJump.
func (p *parser) emitJump(instruction byte) int {
	p.emitByte(instruction)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.currentChunk().code) - 2
}

func (p *parser) patchJump(offset int) {
	// -2 adjusts for the operand itself.
	jump := len(p.currentChunk().code) - offset - 2
	if jump > 0xffff {
		p.error("Too much code to jump over.")
	}
	p.currentChunk().code[offset] = byte(jump >> 8)
	p.currentChunk().code[offset+1] = byte(jump & 0xff)
}

func (p *parser) emitReturn() {
	if p.compiler.typ == funcType_Initializer {
		p.emitBytes(opGetLocal, 0)
	} else {
		p.emitByte(opNil)
	}
	p.emitByte(opReturn)
}

func (p *parser) makeConstant(v Value) byte {
	constant := p.currentChunk().addConstant(v)
	if constant > 0xff {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(constant)
}

func (p *parser) emitConstant(v Value) {
	p.emitBytes(opConstant, p.makeConstant(v))
}

// Declarations and statements.

func (p *parser) declaration() {
	switch {
	case p.match(tokenType_Class):
		p.classDeclaration()
	case p.match(tokenType_Fun):
		p.funDeclaration()
	case p.match(tokenType_Var):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(tokenType_Print):
		p.printStatement()
	case p.match(tokenType_For):
		p.forStatement()
	case p.match(tokenType_If):
		p.ifStatement()
	case p.match(tokenType_Return):
		p.returnStatement()
	case p.match(tokenType_While):
		p.whileStatement()
	case p.match(tokenType_LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) classDeclaration() {
	p.consume(tokenType_Identifier, "Expect class name.")
	className := p.previous
	nameConstant := p.identifierConstant(p.previous)
	p.declareVariable()

	p.emitBytes(opClass, nameConstant)
	p.defineVariable(nameConstant)

	cc := &classCompiler{enclosing: p.classCompiler}
	p.classCompiler = cc

	if p.match(tokenType_Less) {
		p.consume(tokenType_Identifier, "Expect superclass name.")
		p.variable(false)

		if identifiersEqual(className, p.previous) {
			p.error("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal(syntheticToken("super"))
		p.defineVariable(0)

		p.namedVariable(className, false)
		p.emitByte(opInherit)
		cc.hasSuperclass = true
	}

	p.namedVariable(className, false)
	p.consume(tokenType_LeftBrace, "Expect '{' before class body.")
	for !p.check(tokenType_RightBrace) && !p.check(tokenType_EOF) {
		p.method()
	}
	p.consume(tokenType_RightBrace, "Expect '}' after class body.")
	p.emitByte(opPop)

	if cc.hasSuperclass {
		p.endScope()
	}

	p.classCompiler = cc.enclosing
}

func (p *parser) method() {
	p.consume(tokenType_Identifier, "Expect method name.")
	constant := p.identifierConstant(p.previous)

	typ := funcType_Method
	if p.previous.lexeme == "init" {
		typ = funcType_Initializer
	}
	p.function(typ)
	p.emitBytes(opMethod, constant)
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(funcType_Function)
	p.defineVariable(global)
}

// function compiles a function body into its own compiler frame and
// emits the closure that materializes it at runtime, followed by one
// (isLocal, index) pair per upvalue.
func (p *parser) function(typ funcType) {
	p.beginCompiler(typ)
	p.beginScope()

	p.consume(tokenType_LeftParen, "Expect '(' after function name.")
	if !p.check(tokenType_RightParen) {
		for {
			p.compiler.function.arity++
			if p.compiler.function.arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(tokenType_Comma) {
				break
			}
		}
	}
	p.consume(tokenType_RightParen, "Expect ')' after parameters.")
	p.consume(tokenType_LeftBrace, "Expect '{' before function body.")
	p.block()

	// No endScope: the whole frame is discarded with the compiler.
	upvalues := p.compiler.upvalues
	function := p.endCompiler()
	p.emitBytes(opClosure, p.makeConstant(objVal(&function.obj)))

	for i := 0; i < function.upvalueCount; i++ {
		if upvalues[i].isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(upvalues[i].index)
	}
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(tokenType_Equal) {
		p.expression()
	} else {
		p.emitByte(opNil)
	}
	p.consume(tokenType_Semicolon, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(tokenType_Semicolon, "Expect ';' after expression.")
	p.emitByte(opPop)
}

// forStatement desugars in place: initializer, condition guarding an
// exit jump, a jump over the increment into the body, and a loop
// from the body back to the increment.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(tokenType_LeftParen, "Expect '(' after 'for'.")

	switch {
	case p.match(tokenType_Semicolon):
		// No initializer.
	case p.match(tokenType_Var):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().code)
	exitJump := -1
	if !p.match(tokenType_Semicolon) {
		p.expression()
		p.consume(tokenType_Semicolon, "Expect ';' after loop condition.")

		exitJump = p.emitJump(opJumpIfFalse)
		p.emitByte(opPop) // condition
	}

	if !p.match(tokenType_RightParen) {
		bodyJump := p.emitJump(opJump)
		incrementStart := len(p.currentChunk().code)
		p.expression()
		p.emitByte(opPop)
		p.consume(tokenType_RightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitByte(opPop) // condition
	}

	p.endScope()
}

func (p *parser) ifStatement() {
	p.consume(tokenType_LeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(tokenType_RightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(opJumpIfFalse)
	p.emitByte(opPop)
	p.statement()

	elseJump := p.emitJump(opJump)
	p.patchJump(thenJump)
	p.emitByte(opPop)

	if p.match(tokenType_Else) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(tokenType_Semicolon, "Expect ';' after value.")
	p.emitByte(opPrint)
}

func (p *parser) returnStatement() {
	if p.compiler.typ == funcType_Script {
		p.error("Can't return from top-level code.")
	}

	if p.match(tokenType_Semicolon) {
		p.emitReturn()
		return
	}

	if p.compiler.typ == funcType_Initializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(tokenType_Semicolon, "Expect ';' after return value.")
	p.emitByte(opReturn)
}

func (p *parser) whileStatement() {
	loopStart := len(p.currentChunk().code)
	p.consume(tokenType_LeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(tokenType_RightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(opJumpIfFalse)
	p.emitByte(opPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitByte(opPop)
}

func (p *parser) block() {
	for !p.check(tokenType_RightBrace) && !p.check(tokenType_EOF) {
		p.declaration()
	}
	p.consume(tokenType_RightBrace, "Expect '}' after block.")
}

// Scopes and variables.

func (p *parser) beginScope() {
	p.compiler.scopeDepth++
}

func (p *parser) endScope() {
	c := p.compiler
	c.scopeDepth--

	for c.localCount > 0 && c.locals[c.localCount-1].depth > c.scopeDepth {
		if c.locals[c.localCount-1].isCaptured {
			p.emitByte(opCloseUpvalue)
		} else {
			p.emitByte(opPop)
		}
		c.localCount--
	}
}

func (p *parser) parseVariable(errorMessage string) byte {
	p.consume(tokenType_Identifier, errorMessage)

	p.declareVariable()
	if p.compiler.scopeDepth > 0 {
		return 0
	}

	return p.identifierConstant(p.previous)
}

func (p *parser) identifierConstant(name token) byte {
	return p.makeConstant(objVal(&p.vm.internString(name.lexeme).obj))
}

// declareVariable registers a local in the current scope, still
// marked uninitialized (depth -1) so its own initializer can't read
// it.  Globals are late bound and don't go through here.
func (p *parser) declareVariable() {
	if p.compiler.scopeDepth == 0 {
		return
	}

	name := p.previous
	for i := p.compiler.localCount - 1; i >= 0; i-- {
		l := &p.compiler.locals[i]
		if l.depth != -1 && l.depth < p.compiler.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			p.error("Already a variable with this name in this scope.")
		}
	}

	p.addLocal(name)
}

func (p *parser) addLocal(name token) {
	if p.compiler.localCount == uint8Count {
		p.error("Too many local variables in function.")
		return
	}
	l := &p.compiler.locals[p.compiler.localCount]
	p.compiler.localCount++
	l.name = name
	l.depth = -1
	l.isCaptured = false
}

func (p *parser) markInitialized() {
	if p.compiler.scopeDepth == 0 {
		return
	}
	p.compiler.locals[p.compiler.localCount-1].depth = p.compiler.scopeDepth
}

func (p *parser) defineVariable(global byte) {
	if p.compiler.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitBytes(opDefineGlobal, global)
}

func (p *parser) resolveLocal(c *compiler, name token) int {
	for i := c.localCount - 1; i >= 0; i-- {
		l := &c.locals[i]
		if identifiersEqual(name, l.name) {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue looks the name up in the enclosing frames.  A hit
// on an enclosing local marks it captured and records a local
// upvalue; a hit further out chains through the intermediate frames
// as non-local upvalues.
func (p *parser) resolveUpvalue(c *compiler, name token) int {
	if c.enclosing == nil {
		return -1
	}

	if local := p.resolveLocal(c.enclosing, name); local != -1 {
		c.enclosing.locals[local].isCaptured = true
		return p.addUpvalue(c, byte(local), true)
	}

	if upvalue := p.resolveUpvalue(c.enclosing, name); upvalue != -1 {
		return p.addUpvalue(c, byte(upvalue), false)
	}

	return -1
}

func (p *parser) addUpvalue(c *compiler, index byte, isLocal bool) int {
	count := c.function.upvalueCount

	for i := 0; i < count; i++ {
		u := &c.upvalues[i]
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}

	if count == uint8Count {
		p.error("Too many closure variables in function.")
		return 0
	}

	c.upvalues[count] = upvalueRef{index: index, isLocal: isLocal}
	c.function.upvalueCount++
	return count
}

func (p *parser) namedVariable(name token, canAssign bool) {
	var getOp, setOp byte
	arg := p.resolveLocal(p.compiler, name)

	switch {
	case arg != -1:
		getOp, setOp = opGetLocal, opSetLocal
	default:
		if arg = p.resolveUpvalue(p.compiler, name); arg != -1 {
			getOp, setOp = opGetUpvalue, opSetUpvalue
		} else {
			arg = int(p.identifierConstant(name))
			getOp, setOp = opGetGlobal, opSetGlobal
		}
	}

	if canAssign && p.match(tokenType_Equal) {
		p.expression()
		p.emitBytes(setOp, byte(arg))
	} else {
		p.emitBytes(getOp, byte(arg))
	}
}

func identifiersEqual(a, b token) bool {
	return a.lexeme == b.lexeme
}

func syntheticToken(text string) token {
	return token{typ: tokenType_Identifier, lexeme: text}
}

// Expressions.

func (p *parser) expression() {
	p.parsePrecedence(prec_Assignment)
}

// parsePrecedence is the heart of the Pratt parser: consume a prefix
// for the current token, then keep folding infixes while their
// binding power is at least the requested one.
func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := rules[p.previous.typ].prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := prec <= prec_Assignment
	prefix(p, canAssign)

	for prec <= rules[p.current.typ].precedence {
		p.advance()
		rules[p.previous.typ].infix(p, canAssign)
	}

	if canAssign && p.match(tokenType_Equal) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) grouping(bool) {
	p.expression()
	p.consume(tokenType_RightParen, "Expect ')' after expression.")
}

func (p *parser) number(bool) {
	value, _ := strconv.ParseFloat(p.previous.lexeme, 64)
	p.emitConstant(numberVal(value))
}

func (p *parser) stringLiteral(bool) {
	chars := p.previous.lexeme[1 : len(p.previous.lexeme)-1]
	p.emitConstant(objVal(&p.vm.internString(chars).obj))
}

func (p *parser) literal(bool) {
	switch p.previous.typ {
	case tokenType_False:
		p.emitByte(opFalse)
	case tokenType_Nil:
		p.emitByte(opNil)
	case tokenType_True:
		p.emitByte(opTrue)
	}
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *parser) this_(bool) {
	if p.classCompiler == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	p.variable(false)
}

func (p *parser) super_(bool) {
	switch {
	case p.classCompiler == nil:
		p.error("Can't use 'super' outside of a class.")
	case !p.classCompiler.hasSuperclass:
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(tokenType_Dot, "Expect '.' after 'super'.")
	p.consume(tokenType_Identifier, "Expect superclass method name.")
	name := p.identifierConstant(p.previous)

	p.namedVariable(syntheticToken("this"), false)
	if p.match(tokenType_LeftParen) {
		argCount := p.argumentList()
		p.namedVariable(syntheticToken("super"), false)
		p.emitBytes(opSuperInvoke, name)
		p.emitByte(argCount)
	} else {
		p.namedVariable(syntheticToken("super"), false)
		p.emitBytes(opGetSuper, name)
	}
}

func (p *parser) unary(bool) {
	operator := p.previous.typ
	p.parsePrecedence(prec_Unary)

	switch operator {
	case tokenType_Bang:
		p.emitByte(opNot)
	case tokenType_Minus:
		p.emitByte(opNegate)
	}
}

func (p *parser) binary(bool) {
	operator := p.previous.typ
	p.parsePrecedence(rules[operator].precedence + 1)

	switch operator {
	case tokenType_BangEqual:
		p.emitBytes(opEqual, opNot)
	case tokenType_EqualEqual:
		p.emitByte(opEqual)
	case tokenType_Greater:
		p.emitByte(opGreater)
	case tokenType_GreaterEqual:
		p.emitBytes(opLess, opNot)
	case tokenType_Less:
		p.emitByte(opLess)
	case tokenType_LessEqual:
		p.emitBytes(opGreater, opNot)
	case tokenType_Plus:
		p.emitByte(opAdd)
	case tokenType_Minus:
		p.emitByte(opSubtract)
	case tokenType_Star:
		p.emitByte(opMultiply)
	case tokenType_Slash:
		p.emitByte(opDivide)
	}
}

// and_ and or_ compile to short-circuit jumps; the left operand is
// left on the stack for the taken branch and popped otherwise.
func (p *parser) and_(bool) {
	endJump := p.emitJump(opJumpIfFalse)
	p.emitByte(opPop)
	p.parsePrecedence(prec_And)
	p.patchJump(endJump)
}

func (p *parser) or_(bool) {
	elseJump := p.emitJump(opJumpIfFalse)
	endJump := p.emitJump(opJump)

	p.patchJump(elseJump)
	p.emitByte(opPop)

	p.parsePrecedence(prec_Or)
	p.patchJump(endJump)
}

func (p *parser) call(bool) {
	argCount := p.argumentList()
	p.emitBytes(opCall, argCount)
}

// dot compiles property access, assignment, or — when a call follows
// directly — the fused invoke.
func (p *parser) dot(canAssign bool) {
	p.consume(tokenType_Identifier, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous)

	switch {
	case canAssign && p.match(tokenType_Equal):
		p.expression()
		p.emitBytes(opSetProperty, name)
	case p.match(tokenType_LeftParen):
		argCount := p.argumentList()
		p.emitBytes(opInvoke, name)
		p.emitByte(argCount)
	default:
		p.emitBytes(opGetProperty, name)
	}
}

func (p *parser) argumentList() byte {
	var argCount int
	if !p.check(tokenType_RightParen) {
		for {
			p.expression()
			if argCount == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !p.match(tokenType_Comma) {
				break
			}
		}
	}
	p.consume(tokenType_RightParen, "Expect ')' after arguments.")
	return byte(argCount)
}

// rules is the Pratt table: one row per token kind with its optional
// prefix and infix handlers and infix binding power.  Filled in init
// because the handlers refer back to parsePrecedence.
var rules [tokenTypeCount]parseRule

func init() {
	rules = [tokenTypeCount]parseRule{
		tokenType_LeftParen:    {(*parser).grouping, (*parser).call, prec_Call},
		tokenType_Dot:          {nil, (*parser).dot, prec_Call},
		tokenType_Minus:        {(*parser).unary, (*parser).binary, prec_Term},
		tokenType_Plus:         {nil, (*parser).binary, prec_Term},
		tokenType_Slash:        {nil, (*parser).binary, prec_Factor},
		tokenType_Star:         {nil, (*parser).binary, prec_Factor},
		tokenType_Bang:         {(*parser).unary, nil, prec_None},
		tokenType_BangEqual:    {nil, (*parser).binary, prec_Equality},
		tokenType_EqualEqual:   {nil, (*parser).binary, prec_Equality},
		tokenType_Greater:      {nil, (*parser).binary, prec_Comparison},
		tokenType_GreaterEqual: {nil, (*parser).binary, prec_Comparison},
		tokenType_Less:         {nil, (*parser).binary, prec_Comparison},
		tokenType_LessEqual:    {nil, (*parser).binary, prec_Comparison},
		tokenType_Identifier:   {(*parser).variable, nil, prec_None},
		tokenType_String:       {(*parser).stringLiteral, nil, prec_None},
		tokenType_Number:       {(*parser).number, nil, prec_None},
		tokenType_And:          {nil, (*parser).and_, prec_And},
		tokenType_Or:           {nil, (*parser).or_, prec_Or},
		tokenType_False:        {(*parser).literal, nil, prec_None},
		tokenType_Nil:          {(*parser).literal, nil, prec_None},
		tokenType_True:         {(*parser).literal, nil, prec_None},
		tokenType_Super:        {(*parser).super_, nil, prec_None},
		tokenType_This:         {(*parser).this_, nil, prec_None},
	}
}
