package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hamba/avro/v2"

	"github.com/tordrt/spanneravro/internal/converter"
)

const (
	FormatAvro     = "avsc"
	FormatMarkdown = "markdown"
)

// MultiFileFormatter writes one file per schema into a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "avsc" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the schemas to multiple files
func (f *MultiFileFormatter) Format(schemas []*avro.RecordSchema) error {
	if f.OutputFormat != FormatAvro && f.OutputFormat != FormatMarkdown {
		return fmt.Errorf("unsupported output format %q", f.OutputFormat)
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(schemas); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, s := range schemas {
		if err := f.writeSchemaFile(s, schemas); err != nil {
			return fmt.Errorf("failed to write schema file for %s: %w", s.Name(), err)
		}
	}

	return nil
}

// writeOverview writes _overview.md, listing the schemas grouped by entity kind
func (f *MultiFileFormatter) writeOverview(schemas []*avro.RecordSchema) error {
	file, err := os.Create(filepath.Join(f.OutputDir, "_overview.md"))
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(file, "Each schema has a corresponding file: `<schema_name>%s`\n\n", f.getFileExtension())

	byKind := make(map[string][]*avro.RecordSchema)
	for _, s := range schemas {
		kind := converter.Kind(s)
		byKind[kind] = append(byKind[kind], s)
	}
	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		_, _ = fmt.Fprintf(file, "## %s\n\n", kind)

		sorted := byKind[kind]
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Name() < sorted[j].Name()
		})
		for _, s := range sorted {
			_, _ = fmt.Fprintf(file, "- **%s**", s.Name())
			if parent, ok := s.Prop(converter.Parent).(string); ok {
				_, _ = fmt.Fprintf(file, " (interleaved in: %s)", parent)
			}
			_, _ = fmt.Fprintf(file, "\n")
		}
		_, _ = fmt.Fprintln(file)
	}

	return file.Close()
}

// writeSchemaFile writes a single schema to its own file
func (f *MultiFileFormatter) writeSchemaFile(s *avro.RecordSchema, all []*avro.RecordSchema) error {
	filename := filepath.Join(f.OutputDir, s.Name()+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == FormatAvro {
		if err := NewAvroFormatter(file, false).FormatSchema(s); err != nil {
			return err
		}
		return file.Close()
	}

	if err := NewMarkdownFormatter(file).FormatSchema(s); err != nil {
		return err
	}

	// Add interleaved children
	children := f.findChildren(s, all)
	if len(children) > 0 {
		_, _ = fmt.Fprintf(file, "### Interleaved tables\n\n")
		for _, child := range children {
			_, _ = fmt.Fprintf(file, "- %s (on delete: %v)\n", child.Name(), child.Prop(converter.OnDeleteAction))
		}
		_, _ = fmt.Fprintln(file)
	}

	return file.Close()
}

// findChildren finds all tables interleaved in the table s describes
func (f *MultiFileFormatter) findChildren(s *avro.RecordSchema, all []*avro.RecordSchema) []*avro.RecordSchema {
	name, ok := s.Prop(converter.SpannerName).(string)
	if !ok {
		return nil
	}

	var children []*avro.RecordSchema
	for _, candidate := range all {
		if parent, ok := candidate.Prop(converter.Parent).(string); ok && strings.EqualFold(parent, name) {
			children = append(children, candidate)
		}
	}
	return children
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".avsc"
}
