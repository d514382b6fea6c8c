package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yndnr/kvmesh-go/pkg/resp"
)

// TextFormatter prints replies the way redis-cli does. Other data is
// printed with fmt.
type TextFormatter struct{}

// Format writes data followed by a newline.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	switch d := data.(type) {
	case resp.Value:
		return f.writeReply(w, FromValue(d))
	case Reply:
		return f.writeReply(w, d)
	default:
		_, err := fmt.Fprintln(w, data)
		return err
	}
}

func (f *TextFormatter) writeReply(w io.Writer, r Reply) error {
	var b strings.Builder
	writeText(&b, r, "")
	_, err := io.WriteString(w, b.String())
	return err
}

// writeText renders r. Array elements are numbered and nested arrays are
// indented under their index.
func writeText(b *strings.Builder, r Reply, indent string) {
	switch r.Type {
	case TypeStatus:
		b.WriteString(r.Value.(string))
	case TypeString:
		b.WriteString(strconv.Quote(r.Value.(string)))
	case TypeError:
		b.WriteString("(error) ")
		b.WriteString(r.Value.(string))
	case TypeArray:
		elems := r.Value.([]Reply)
		if len(elems) == 0 {
			b.WriteString("(empty array)\n")
			return
		}
		width := len(strconv.Itoa(len(elems)))
		for i, e := range elems {
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			if i > 0 {
				b.WriteString(indent)
			}
			b.WriteString(prefix)
			if e.Type == TypeArray {
				writeText(b, e, indent+strings.Repeat(" ", len(prefix)))
				continue
			}
			writeText(b, e, "")
		}
		return
	default:
		b.WriteString("(nil)")
	}
	b.WriteByte('\n')
}
