package resp

import (
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindNull is the null bulk string. It is the zero Kind.
	KindNull Kind = iota
	KindSimpleString
	KindBulkString
	KindArray
	// KindError is only produced for replies; Decode never returns it.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindSimpleString:
		return "simple-string"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	case KindError:
		return "error"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a decoded protocol value. Values are treated as immutable once built.
type Value struct {
	Kind  Kind
	Str   string
	Elems []Value
}

// SimpleString returns a simple string value. s must not contain CR or LF.
func SimpleString(s string) Value {
	return Value{Kind: KindSimpleString, Str: s}
}

// BulkString returns a bulk string value.
func BulkString(s string) Value {
	return Value{Kind: KindBulkString, Str: s}
}

// Null returns the null bulk string.
func Null() Value {
	return Value{Kind: KindNull}
}

// Array returns an array holding elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, Elems: elems}
}

// Error returns an error reply value.
func Error(msg string) Value {
	return Value{Kind: KindError, Str: msg}
}

// Command builds a request: an array of bulk strings.
func Command(args ...string) Value {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = BulkString(a)
	}
	return Value{Kind: KindArray, Elems: elems}
}

// IsNull reports whether v is the null bulk string.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindArray:
		if len(v.Elems) != len(o.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return v.Str == o.Str
	}
}

// String renders v for logs and test failures, not for the wire.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "(nil)"
	case KindSimpleString:
		return v.Str
	case KindBulkString:
		return strconv.Quote(v.Str)
	case KindError:
		return "(error) " + v.Str
	case KindArray:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return v.Kind.String()
	}
}
