package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hamba/avro/v2"
)

// AvroFormatter writes schemas as Avro JSON
type AvroFormatter struct {
	writer  io.Writer
	compact bool
}

// NewAvroFormatter creates a new Avro formatter. Compact output puts every
// schema on a single line.
func NewAvroFormatter(w io.Writer, compact bool) *AvroFormatter {
	return &AvroFormatter{writer: w, compact: compact}
}

// Format writes all schemas as one JSON array
func (f *AvroFormatter) Format(schemas []*avro.RecordSchema) error {
	if schemas == nil {
		schemas = []*avro.RecordSchema{}
	}
	return f.write(schemas)
}

// FormatSchema writes a single schema (exported for use by multifile formatter)
func (f *AvroFormatter) FormatSchema(s *avro.RecordSchema) error {
	return f.write(s)
}

func (f *AvroFormatter) write(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !f.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	if _, err := f.writer.Write(unescapeHTML(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}

// htmlEscapes are the \u sequences hamba's schema encoder writes for <, > and &.
var htmlEscapes = map[string]byte{"003c": '<', "003e": '>', "0026": '&'}

// unescapeHTML restores <, > and & inside JSON strings. Escape pairs are
// consumed whole so an escaped backslash is never mistaken for an escape.
func unescapeHTML(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 == len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) {
			if c, ok := htmlEscapes[strings.ToLower(string(data[i+2:i+6]))]; ok {
				out = append(out, c)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}
