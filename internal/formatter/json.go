package formatter

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes any result as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format writes v as two-space indented JSON with a trailing newline
func (f *JSONFormatter) Format(v any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
