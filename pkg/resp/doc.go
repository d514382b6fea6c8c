// Package resp implements the RESP2 subset spoken by kvmesh.
//
// The codec works on a byte buffer and a cursor instead of an io.Reader:
//
//   - Decode consumes exactly one complete value starting at the cursor and
//     returns the advanced cursor.
//   - A frame that is cut short fails with *OutOfBoundsError, so a caller that
//     accumulates socket reads can retry once more bytes arrive (IsIncomplete).
//   - Encode and AppendEncode are total: every Value has a wire form.
//
// Supported types:
//
//	+<text>\r\n                simple string
//	$<len>\r\n<bytes>\r\n      bulk string ($-1\r\n is the null bulk string)
//	*<count>\r\n<values...>    array
//	-<text>\r\n                error (replies only, see DecodeReply)
package resp
