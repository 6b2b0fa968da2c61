package formatter

import (
	"io"

	"github.com/tordrt/spanneravro/internal/ddl"
)

// TextFormatter formats a schema model as DDL
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new DDL formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every entity of the database as DDL statements
func (f *TextFormatter) Format(db *ddl.Database) error {
	return db.PrettyPrint(f.writer)
}

// FormatTable writes a single CREATE TABLE statement, followed by its indexes
// and foreign keys
func (f *TextFormatter) FormatTable(t ddl.Table) error {
	if err := t.PrettyPrint(f.writer, true, true); err != nil {
		return err
	}
	_, err := io.WriteString(f.writer, "\n")
	return err
}
