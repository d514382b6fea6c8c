package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/kvmesh-go/pkg/resp"
)

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format formats data as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	if v, ok := data.(resp.Value); ok {
		data = FromValue(v)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
