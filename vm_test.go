package lox

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVM(t *testing.T) *VM {
	t.Helper()
	vm, err := NewVM(NewConfig(), Stdout(io.Discard), Stderr(io.Discard))
	require.NoError(t, err)
	return vm
}

// interpretSource runs a program on a fresh VM and returns what it
// wrote to both streams alongside the interpreter's verdict.
func interpretSource(t *testing.T, cfg *Config, source string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	vm, err := NewVM(cfg, Stdout(&stdout), Stderr(&stderr))
	require.NoError(t, err)
	err = vm.Interpret(source)
	return stdout.String(), stderr.String(), err
}

func TestInterpret_Expressions(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"precedence", "print 1 + 2 * 3;", "7\n"},
		{"grouping", "print (1 + 2) * 3;", "9\n"},
		{"unary minus", "print -4 + 6;", "2\n"},
		{"division", "print 10 / 4;", "2.5\n"},
		{"not", "print !true; print !nil; print !0;", "false\ntrue\nfalse\n"},
		{"equality", "print 1 == 1; print 1 != 2; print nil == nil;", "true\ntrue\ntrue\n"},
		{"mixed kinds never equal", `print 0 == false; print "" == nil;`, "false\nfalse\n"},
		{"comparisons", "print 1 < 2; print 2 <= 2; print 3 > 4; print 4 >= 4;", "true\ntrue\nfalse\ntrue\n"},
		{"string concatenation", `var a = "a"; var b = "b"; print a + b;`, "ab\n"},
		{"string equality is structural", `print "lo" + "x" == "lox";`, "true\n"},
		{"and short-circuits", "print false and 1; print true and 2;", "false\n2\n"},
		{"or short-circuits", "print 1 or 2; print false or 3; print nil or false;", "1\n3\nfalse\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := interpretSource(t, nil, tt.source)
			require.NoError(t, err)
			assert.Empty(t, stderr)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestInterpret_Statements(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			"var default is nil",
			"var x; print x;",
			"nil\n",
		},
		{
			"block scoping shadows",
			`var a = "outer"; { var a = "inner"; print a; } print a;`,
			"inner\nouter\n",
		},
		{
			"if else",
			"if (1 < 2) print \"then\"; else print \"else\";\nif (1 > 2) print \"then\"; else print \"else\";",
			"then\nelse\n",
		},
		{
			"while",
			"var i = 0; while (i < 3) { print i; i = i + 1; }",
			"0\n1\n2\n",
		},
		{
			"for with all clauses",
			"for (var i = 0; i < 3; i = i + 1) print i;",
			"0\n1\n2\n",
		},
		{
			"for without increment",
			"for (var i = 0; i < 2;) { print i; i = i + 1; }",
			"0\n1\n",
		},
		{
			"for condition defaults to true",
			"fun f() { for (var i = 0;; i = i + 1) { if (i == 2) return; print i; } } f();",
			"0\n1\n",
		},
		{
			"assignment is an expression",
			"var a; var b; a = b = 2; print a; print b;",
			"2\n2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, _ := interpretSource(t, nil, tt.source)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestInterpret_Functions(t *testing.T) {
	t.Run("declaration and call", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
fun greet(name) { print "hi " + name; }
greet("lox");
print greet;
`)
		require.NoError(t, err)
		assert.Equal(t, "hi lox\n<fn greet>\n", stdout)
	})

	t.Run("return value", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
fun add(a, b) { return a + b; }
print add(1, 2);
`)
		require.NoError(t, err)
		assert.Equal(t, "3\n", stdout)
	})

	t.Run("implicit return is nil", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
fun noop() {}
print noop();
`)
		require.NoError(t, err)
		assert.Equal(t, "nil\n", stdout)
	})

	t.Run("recursion", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
print fib(10);
`)
		require.NoError(t, err)
		assert.Equal(t, "55\n", stdout)
	})

	t.Run("clock native", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
var before = clock();
var after = clock();
print after >= before;
print clock;
`)
		require.NoError(t, err)
		assert.Equal(t, "true\n<native fn>\n", stdout)
	})
}

func TestInterpret_Closures(t *testing.T) {
	t.Run("counter captures by reference", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
fun makeCounter() { var i = 0; fun c() { i = i + 1; return i; } return c; }
var c = makeCounter();
print c(); print c(); print c();
`)
		require.NoError(t, err)
		assert.Equal(t, "1\n2\n3\n", stdout)
	})

	t.Run("siblings share the captured variable", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
var get; var set;
fun make() {
  var x = "initial";
  fun g() { return x; }
  fun s(v) { x = v; }
  get = g; set = s;
}
make();
print get();
set("updated");
print get();
`)
		require.NoError(t, err)
		assert.Equal(t, "initial\nupdated\n", stdout)
	})

	t.Run("upvalue closes when the scope ends", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
var f;
{
  var a = "kept";
  fun g() { print a; }
  f = g;
}
f();
`)
		require.NoError(t, err)
		assert.Equal(t, "kept\n", stdout)
	})

	t.Run("each call gets fresh locals", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
fun makeCounter() { var i = 0; fun c() { i = i + 1; return i; } return c; }
var a = makeCounter();
var b = makeCounter();
print a(); print a(); print b();
`)
		require.NoError(t, err)
		assert.Equal(t, "1\n2\n1\n", stdout)
	})

	t.Run("loop variable capture through chained upvalues", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
fun outer() {
  var x = 1;
  fun middle() {
    fun inner() { return x; }
    return inner;
  }
  return middle();
}
print outer()();
`)
		require.NoError(t, err)
		assert.Equal(t, "1\n", stdout)
	})
}

func TestInterpret_Classes(t *testing.T) {
	t.Run("init and method", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class Greeter { init(n) { this.n = n; } hi() { print "hi " + this.n; } }
Greeter("lox").hi();
`)
		require.NoError(t, err)
		assert.Equal(t, "hi lox\n", stdout)
	})

	t.Run("fields", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class Bag {}
var bag = Bag();
bag.item = "apple";
print bag.item;
print bag;
print Bag;
`)
		require.NoError(t, err)
		assert.Equal(t, "apple\nBag instance\nBag\n", stdout)
	})

	t.Run("methods bind this", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class Speaker { say() { print this.word; } }
var s = Speaker();
s.word = "bound";
var m = s.say;
m();
`)
		require.NoError(t, err)
		assert.Equal(t, "bound\n", stdout)
	})

	t.Run("init returns the instance", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class Thing { init() { this.v = 1; } }
print Thing().v;
`)
		require.NoError(t, err)
		assert.Equal(t, "1\n", stdout)
	})

	t.Run("field shadows method on invoke", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class C { m() { print "method"; } }
var c = C();
fun f() { print "field"; }
c.m = f;
c.m();
`)
		require.NoError(t, err)
		assert.Equal(t, "field\n", stdout)
	})
}

func TestInterpret_Inheritance(t *testing.T) {
	t.Run("override calls through super", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class A { say() { print "A"; } }
class B < A { say() { super.say(); print "B"; } }
B().say();
`)
		require.NoError(t, err)
		assert.Equal(t, "A\nB\n", stdout)
	})

	t.Run("inherited method without override", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class A { hello() { print "hello"; } }
class B < A {}
B().hello();
`)
		require.NoError(t, err)
		assert.Equal(t, "hello\n", stdout)
	})

	t.Run("super skips the override", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class A { m() { print "A.m"; } }
class B < A { m() { print "B.m"; } test() { super.m(); } }
B().test();
`)
		require.NoError(t, err)
		assert.Equal(t, "A.m\n", stdout)
	})

	t.Run("super as a bound value", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class A { m() { print "A.m"; } }
class B < A { grab() { var m = super.m; return m; } }
B().grab()();
`)
		require.NoError(t, err)
		assert.Equal(t, "A.m\n", stdout)
	})

	t.Run("inherited init", func(t *testing.T) {
		stdout, _, err := interpretSource(t, nil, `
class A { init(v) { this.v = v; } }
class B < A {}
print B(3).v;
`)
		require.NoError(t, err)
		assert.Equal(t, "3\n", stdout)
	})
}

func TestInterpret_RuntimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"undefined variable", "print x;", "Undefined variable 'x'."},
		{"assignment does not define", "x = 1;", "Undefined variable 'x'."},
		{"add mixes kinds", `print 1 + "a";`, "Operands must be two numbers or two strings."},
		{"arithmetic wants numbers", "print true * 2;", "Operands must be numbers."},
		{"comparison wants numbers", `print "a" < "b";`, "Operands must be numbers."},
		{"negate wants a number", "print -nil;", "Operand must be a number."},
		{"call non-callable", "var x = 3; x();", "Can only call functions and classes."},
		{"arity mismatch", "fun f(a, b) {} f(1);", "Expected 2 arguments but got 1."},
		{"class arity without init", "class C {} C(1);", "Expected 0 arguments but got 1."},
		{"property on non-instance", "var s = 1; print s.field;", "Only instances have properties."},
		{"field write on non-instance", "true.x = 1;", "Only instances have fields."},
		{"undefined property", "class C {} print C().missing;", "Undefined property 'missing'."},
		{"method on non-instance", `"str".size();`, "Only instances have methods."},
		{"superclass must be a class", "var NotClass = 1; class C < NotClass {}", "Superclass must be a class."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := interpretSource(t, nil, tt.source)
			var runtimeErr *RuntimeError
			require.ErrorAs(t, err, &runtimeErr)
			assert.Equal(t, tt.message, runtimeErr.Message)
			assert.Contains(t, stderr, tt.message)
			assert.Contains(t, stderr, "[line ")
		})
	}
}

func TestInterpret_RuntimeErrorTrace(t *testing.T) {
	_, stderr, err := interpretSource(t, nil, `fun a() { b(); }
fun b() { c(); }
fun c() { d; }
a();
`)
	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	assert.Equal(t, "Undefined variable 'd'.", runtimeErr.Message)
	assert.Equal(t, 3, runtimeErr.Line)

	require.Len(t, runtimeErr.Trace, 4)
	assert.Equal(t, "[line 3] in c()", runtimeErr.Trace[0])
	assert.Equal(t, "[line 2] in b()", runtimeErr.Trace[1])
	assert.Equal(t, "[line 1] in a()", runtimeErr.Trace[2])
	assert.Equal(t, "[line 4] in script", runtimeErr.Trace[3])

	assert.Contains(t, stderr, runtimeErr.Backtrace())
}

func TestInterpret_UndefinedVariableScenario(t *testing.T) {
	_, stderr, err := interpretSource(t, nil, "print x;")
	require.Error(t, err)
	assert.Equal(t, ExitRuntimeError, ExitCode(err))
	assert.Contains(t, stderr, "Undefined variable 'x'.")
	assert.Contains(t, stderr, "[line 1]")
}

func TestInterpret_StackOverflow(t *testing.T) {
	_, stderr, err := interpretSource(t, nil, "fun loop() { loop(); } loop();")
	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	assert.Equal(t, "Stack overflow.", runtimeErr.Message)
	assert.Contains(t, stderr, "Stack overflow.")
}

func TestInterpret_GlobalsPersistAcrossRuns(t *testing.T) {
	var stdout bytes.Buffer
	vm, err := NewVM(nil, Stdout(&stdout), Stderr(io.Discard))
	require.NoError(t, err)

	require.NoError(t, vm.Interpret("var x = 1;"))
	require.NoError(t, vm.Interpret("x = x + 1;"))
	require.NoError(t, vm.Interpret("print x;"))
	assert.Equal(t, "2\n", stdout.String())
}

func TestInterpret_RecoversAfterRuntimeError(t *testing.T) {
	var stdout bytes.Buffer
	vm, err := NewVM(nil, Stdout(&stdout), Stderr(io.Discard))
	require.NoError(t, err)

	require.Error(t, vm.Interpret("print missing;"))
	require.NoError(t, vm.Interpret("print 1 + 1;"))
	assert.Equal(t, "2\n", stdout.String())
}

func TestInterpret_TraceExecution(t *testing.T) {
	cfg := NewConfig()
	cfg.TraceExecution = true
	stdout, _, err := interpretSource(t, cfg, "print 1;")
	require.NoError(t, err)
	assert.Contains(t, stdout, "constant")
	assert.Contains(t, stdout, "[ 1 ]")
	assert.Contains(t, stdout, "1\n")
}
