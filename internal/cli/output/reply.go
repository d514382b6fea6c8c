package output

import "github.com/yndnr/kvmesh-go/pkg/resp"

// Reply types.
const (
	TypeStatus = "status"
	TypeString = "string"
	TypeNil    = "nil"
	TypeArray  = "array"
	TypeError  = "error"
)

// Reply is a protocol value in a shape the encoders can render. Value is a
// string, nil, or []Reply for arrays.
type Reply struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// FromValue converts a decoded value.
func FromValue(v resp.Value) Reply {
	switch v.Kind {
	case resp.KindSimpleString:
		return Reply{Type: TypeStatus, Value: v.Str}
	case resp.KindBulkString:
		return Reply{Type: TypeString, Value: v.Str}
	case resp.KindError:
		return Reply{Type: TypeError, Value: v.Str}
	case resp.KindArray:
		elems := make([]Reply, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = FromValue(e)
		}
		return Reply{Type: TypeArray, Value: elems}
	default:
		return Reply{Type: TypeNil}
	}
}
