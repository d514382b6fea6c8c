package resp

import "strconv"

// Encode returns the wire form of v.
func Encode(v Value) []byte {
	return AppendEncode(make([]byte, 0, encodedSizeHint(v)), v)
}

// AppendEncode appends the wire form of v to dst and returns the extended
// buffer. Reusing dst across replies avoids a fresh allocation per reply.
func AppendEncode(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Elems)), 10)
		dst = append(dst, crlf...)
		for _, e := range v.Elems {
			dst = AppendEncode(dst, e)
		}
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		dst = append(dst, crlf...)
	case KindBulkString:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Str)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.Str...)
		dst = append(dst, crlf...)
	case KindError:
		dst = append(dst, '-')
		dst = append(dst, v.Str...)
		dst = append(dst, crlf...)
	default:
		dst = append(dst, "$-1\r\n"...)
	}
	return dst
}

func encodedSizeHint(v Value) int {
	switch v.Kind {
	case KindArray:
		n := 16
		for _, e := range v.Elems {
			n += encodedSizeHint(e)
		}
		return n
	default:
		return len(v.Str) + 16
	}
}
