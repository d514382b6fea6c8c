package resp

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Protocol limits. A header announcing more than this is rejected before any
// allocation happens.
const (
	// MaxArrayLen limits the number of elements in one array.
	MaxArrayLen = 1 << 20

	// MaxBulkLen limits the size of a single bulk string (512MB, as Redis does).
	MaxBulkLen = 512 << 20
)

// NullLength is the only negative bulk length that is accepted.
const NullLength = -1

var crlf = []byte{'\r', '\n'}

// Decode decodes exactly one value from buf starting at pos.
//
// On success it returns the value and the cursor just past it. On failure the
// returned cursor is the position decoding stopped at; it is never past the
// end of buf.
func Decode(buf []byte, pos int) (Value, int, error) {
	if pos >= len(buf) {
		return Value{}, pos, &OutOfBoundsError{Pos: pos}
	}
	switch buf[pos] {
	case '+':
		return decodeSimpleString(buf, pos)
	case '$':
		return decodeBulkString(buf, pos)
	case '*':
		return decodeArray(buf, pos)
	default:
		return Value{}, pos, ErrUnknownType
	}
}

// DecodeReply is Decode plus top-level error frames ("-ERR ...\r\n"), which
// only a client ever needs to read.
func DecodeReply(buf []byte, pos int) (Value, int, error) {
	if pos < len(buf) && buf[pos] == '-' {
		line, next, err := readLine(buf, pos+1)
		if err != nil {
			return Value{}, next, err
		}
		return Error(string(line)), next, nil
	}
	return Decode(buf, pos)
}

func expectType(buf []byte, pos int, prefix byte) (int, error) {
	if pos >= len(buf) {
		return pos, &OutOfBoundsError{Pos: pos}
	}
	if buf[pos] != prefix {
		return pos, ErrWrongType
	}
	return pos + 1, nil
}

// readLine returns the bytes between pos and the next CRLF, and the cursor
// just past that CRLF. The returned slice aliases buf.
func readLine(buf []byte, pos int) ([]byte, int, error) {
	if pos >= len(buf) {
		return nil, pos, &OutOfBoundsError{Pos: pos}
	}
	if len(buf)-pos < len(crlf) {
		return nil, len(buf), &OutOfBoundsError{Pos: len(buf)}
	}
	i := bytes.Index(buf[pos:], crlf)
	if i < 0 {
		return nil, len(buf), &OutOfBoundsError{Pos: len(buf)}
	}
	return buf[pos : pos+i], pos + i + len(crlf), nil
}

func readLength(buf []byte, pos int) (int, int, error) {
	line, next, err := readLine(buf, pos)
	if err != nil {
		return 0, next, err
	}
	n, err := strconv.ParseInt(string(line), 10, 32)
	if err != nil {
		return 0, next, fmt.Errorf("%w: %q", ErrParseInt, line)
	}
	return int(n), next, nil
}

func decodeSimpleString(buf []byte, pos int) (Value, int, error) {
	pos, err := expectType(buf, pos, '+')
	if err != nil {
		return Value{}, pos, err
	}
	line, next, err := readLine(buf, pos)
	if err != nil {
		return Value{}, next, err
	}
	if !utf8.Valid(line) {
		return Value{}, next, ErrInvalidUTF8
	}
	return SimpleString(string(line)), next, nil
}

func decodeBulkString(buf []byte, pos int) (Value, int, error) {
	pos, err := expectType(buf, pos, '$')
	if err != nil {
		return Value{}, pos, err
	}
	n, pos, err := readLength(buf, pos)
	if err != nil {
		return Value{}, pos, err
	}
	switch {
	case n == NullLength:
		return Null(), pos, nil
	case n < 0:
		return Value{}, pos, &IncorrectLengthError{Length: n}
	case n > MaxBulkLen:
		return Value{}, pos, fmt.Errorf("%w: bulk length %d exceeds %d", ErrLimitExceeded, n, MaxBulkLen)
	}

	end := pos + n
	if end+len(crlf) > len(buf) {
		return Value{}, pos, &OutOfBoundsError{Pos: len(buf)}
	}
	// The declared length must land exactly on the terminator.
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return Value{}, pos, &IncorrectLengthError{Length: n}
	}
	payload := buf[pos:end]
	if !utf8.Valid(payload) {
		return Value{}, pos, ErrInvalidUTF8
	}
	return BulkString(string(payload)), end + len(crlf), nil
}

func decodeArray(buf []byte, pos int) (Value, int, error) {
	pos, err := expectType(buf, pos, '*')
	if err != nil {
		return Value{}, pos, err
	}
	n, pos, err := readLength(buf, pos)
	if err != nil {
		return Value{}, pos, err
	}
	if n < 0 {
		return Value{}, pos, &IncorrectLengthError{Length: n}
	}
	if n > MaxArrayLen {
		return Value{}, pos, fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, n, MaxArrayLen)
	}

	// Every element needs at least three bytes, so a short buffer caps the
	// up-front allocation no matter what the header claims.
	elems := make([]Value, 0, min(n, (len(buf)-pos)/3+1))
	for i := 0; i < n; i++ {
		var v Value
		v, pos, err = Decode(buf, pos)
		if err != nil {
			return Value{}, pos, err
		}
		elems = append(elems, v)
	}
	return Value{Kind: KindArray, Elems: elems}, pos, nil
}
