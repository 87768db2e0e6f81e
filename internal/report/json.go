package report

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSONWriter encodes the attendance report as one JSON document.
type JSONWriter struct {
	baseWriter
	prefix string
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents nested values. prefix starts every line after the first.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.prefix = prefix
		w.indent = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter on output. Output is compact unless an
// indent option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes report followed by a newline. Delegate names are written
// as-is, without HTML escaping.
func (w *JSONWriter) Write(report *Attendance) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.prefix != "" || w.indent != "" {
		enc.SetIndent(w.prefix, w.indent)
	}
	if err := enc.Encode(report); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
