package resp

import (
	"errors"
	"fmt"
)

// Decode failures. Every failure is local to the frame being decoded.
var (
	ErrWrongType     = errors.New("resp: wrong prefix for type")
	ErrUnknownType   = errors.New("resp: unknown type prefix")
	ErrInvalidUTF8   = errors.New("resp: bulk string is not valid UTF-8")
	ErrParseInt      = errors.New("resp: cannot parse integer")
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// OutOfBoundsError reports that decoding ran past the end of the buffer.
// Pos is the scan position that was reached.
type OutOfBoundsError struct {
	Pos int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("resp: out of bounds at index %d", e.Pos)
}

// IncorrectLengthError reports a length header that cannot describe a value
// of the type being decoded.
type IncorrectLengthError struct {
	Length int
}

func (e *IncorrectLengthError) Error() string {
	return fmt.Sprintf("resp: incorrect length %d", e.Length)
}

// IsIncomplete reports whether err means the buffer ended before the frame
// did. Appending more bytes and decoding again from the same cursor may succeed.
func IsIncomplete(err error) bool {
	var oob *OutOfBoundsError
	return errors.As(err, &oob)
}
