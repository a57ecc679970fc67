//go:build !lox_nanbox

package lox

// Value is a tagged union over nil, booleans, numbers and heap
// objects.  The NaN-boxed single-word layout lives in
// value_nanbox.go behind the `lox_nanbox` build tag; both expose the
// same accessors and nothing else in the package can tell which one
// is compiled in.
type Value struct {
	typ valueType
	b   bool
	num float64
	o   *obj
}

func nilVal() Value             { return Value{typ: valueType_Nil} }
func boolVal(b bool) Value      { return Value{typ: valueType_Bool, b: b} }
func numberVal(n float64) Value { return Value{typ: valueType_Number, num: n} }
func objVal(o *obj) Value       { return Value{typ: valueType_Obj, o: o} }

func (v Value) kind() valueType { return v.typ }

func (v Value) isNil() bool    { return v.typ == valueType_Nil }
func (v Value) isBool() bool   { return v.typ == valueType_Bool }
func (v Value) isNumber() bool { return v.typ == valueType_Number }
func (v Value) isObj() bool    { return v.typ == valueType_Obj }

func (v Value) asBool() bool      { return v.b }
func (v Value) asNumber() float64 { return v.num }
func (v Value) asObj() *obj       { return v.o }
