package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hamba/avro/v2"

	"github.com/tordrt/spanneravro/internal/converter"
)

// MarkdownFormatter summarizes converted schemas as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schemas in markdown format
func (f *MarkdownFormatter) Format(schemas []*avro.RecordSchema) error {
	_, _ = fmt.Fprintln(f.writer, "# Avro Schemas")
	_, _ = fmt.Fprintln(f.writer)

	for _, s := range schemas {
		if err := f.FormatSchema(s); err != nil {
			return err
		}
	}
	return nil
}

// FormatSchema formats a single schema (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatSchema(s *avro.RecordSchema) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", s.Name())
	_, _ = fmt.Fprintf(f.writer, "- **Entity:** %s\n", converter.Kind(s))
	if name, ok := s.Prop(converter.SpannerName).(string); ok {
		_, _ = fmt.Fprintf(f.writer, "- **Spanner name:** %s\n", name)
	}
	_, _ = fmt.Fprintf(f.writer, "- **Avro name:** %s\n", s.FullName())
	_, _ = fmt.Fprintln(f.writer)

	if len(s.Fields()) > 0 {
		f.FormatFields(f.writer, s.Fields(), primaryKeyColumns(s))
	}

	f.formatAnnotations(f.writer, s.Props())
	return nil
}

// FormatFields writes the field list (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatFields(w io.Writer, fields []*avro.Field, primaryKey []string) {
	_, _ = fmt.Fprintln(w, "### Fields")
	_, _ = fmt.Fprintln(w)

	for _, field := range fields {
		typeStr := describeType(field.Type())
		if sqlType, ok := field.Prop(converter.SQLType).(string); ok {
			typeStr = fmt.Sprintf("%s `%s`", typeStr, sqlType)
		}

		constraintStr := f.formatConstraints(field, primaryKey)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(w, "- **%s:** %s, %s\n", field.Name(), typeStr, constraintStr)
		} else {
			_, _ = fmt.Fprintf(w, "- **%s:** %s\n", field.Name(), typeStr)
		}
	}
	_, _ = fmt.Fprintln(w)
}

func (f *MarkdownFormatter) formatAnnotations(w io.Writer, props map[string]any) {
	keys := make([]string, 0, len(props))
	for k := range props {
		switch k {
		case converter.GoogleFormatVersion, converter.GoogleStorage, converter.SpannerName, converter.SpannerEntity:
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	_, _ = fmt.Fprintln(w, "### Annotations")
	_, _ = fmt.Fprintln(w)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "- `%s`: %v\n", k, props[k])
	}
	_, _ = fmt.Fprintln(w)
}

func (f *MarkdownFormatter) formatConstraints(field *avro.Field, primaryKey []string) string {
	var constraints []string

	for _, pk := range primaryKey {
		if pk == field.Name() {
			constraints = append(constraints, "PK")
			break
		}
	}

	if expr, ok := field.Prop(converter.GenerationExpression).(string); ok {
		if field.Prop(converter.Stored) == "true" {
			constraints = append(constraints, fmt.Sprintf("GENERATED AS (%s) STORED", expr))
		} else {
			constraints = append(constraints, fmt.Sprintf("GENERATED AS (%s)", expr))
		}
		if field.Prop(converter.NotNull) == "true" {
			constraints = append(constraints, "NOT NULL")
		}
	} else if !isNullable(field.Type()) && field.Type().Type() != avro.Null {
		constraints = append(constraints, "NOT NULL")
	}

	if def, ok := field.Prop(converter.DefaultExpression).(string); ok {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", def))
	}
	if field.Prop(converter.IdentityColumn) == "true" {
		constraints = append(constraints, "IDENTITY")
	}
	if field.Prop(converter.Hidden) == "true" {
		constraints = append(constraints, "HIDDEN")
	}
	if field.Prop(converter.PlacementKey) == "true" {
		constraints = append(constraints, "PLACEMENT KEY")
	}

	return strings.Join(constraints, ", ")
}

// describeType renders an Avro type for humans, e.g. long (timestamp-micros)
// or array<string>.
func describeType(s avro.Schema) string {
	switch t := s.(type) {
	case *avro.UnionSchema:
		types := t.Types()
		parts := make([]string, 0, len(types))
		for _, member := range types {
			if member.Type() == avro.Null && len(types) == 2 {
				continue
			}
			parts = append(parts, describeType(member))
		}
		return strings.Join(parts, " | ")
	case *avro.ArraySchema:
		return "array<" + describeType(t.Items()) + ">"
	case *avro.RecordSchema:
		return "record " + t.Name()
	case *avro.PrimitiveSchema:
		if l := t.Logical(); l != nil {
			return fmt.Sprintf("%s (%s)", t.Type(), l.Type())
		}
		return string(t.Type())
	default:
		return string(s.Type())
	}
}

func isNullable(s avro.Schema) bool {
	u, ok := s.(*avro.UnionSchema)
	return ok && u.Nullable()
}

// primaryKeyColumns reads the column names back from the primary key
// annotations, which render as `name` ASC.
func primaryKeyColumns(s *avro.RecordSchema) []string {
	var cols []string
	for i := 0; ; i++ {
		v, ok := s.Prop(fmt.Sprintf("%s%d", converter.PrimaryKey, i)).(string)
		if !ok {
			return cols
		}
		name := v
		if idx := strings.LastIndex(v, " "); idx > 0 {
			name = v[:idx]
		}
		cols = append(cols, strings.Trim(name, "`\""))
	}
}
