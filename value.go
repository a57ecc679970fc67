package lox

import "strconv"

type valueType int

const (
	valueType_Nil valueType = iota
	valueType_Bool
	valueType_Number
	valueType_Obj
)

// isFalsey implements the language's truthiness rule: nil and false
// are falsy, every other value is truthy.
func isFalsey(v Value) bool {
	return v.isNil() || (v.isBool() && !v.asBool())
}

// valuesEqual compares two values without observing the underlying
// layout.  Numbers compare by IEEE equality, strings by pointer
// (which is safe because they're interned), every other object kind
// by identity.
func valuesEqual(a, b Value) bool {
	if a.isNumber() && b.isNumber() {
		return a.asNumber() == b.asNumber()
	}
	if a.kind() != b.kind() {
		return false
	}
	switch a.kind() {
	case valueType_Nil:
		return true
	case valueType_Bool:
		return a.asBool() == b.asBool()
	case valueType_Obj:
		return a.asObj() == b.asObj()
	default:
		return false
	}
}

// formatValue renders a value the way `print` shows it.  Numbers use
// the shortest decimal that round-trips, so integral doubles print
// without a trailing fraction.
func formatValue(v Value) string {
	switch v.kind() {
	case valueType_Nil:
		return "nil"
	case valueType_Bool:
		if v.asBool() {
			return "true"
		}
		return "false"
	case valueType_Number:
		return strconv.FormatFloat(v.asNumber(), 'g', -1, 64)
	case valueType_Obj:
		return formatObject(v.asObj())
	default:
		return "<?>"
	}
}
