// Package converter turns a Spanner schema model into Avro record schemas.
//
// Every table, view, function, sequence, change stream, placement, property
// graph and model becomes one record schema. Spanner semantics that Avro
// cannot express natively (generated columns, keys, interleaving, options,
// graph structure) travel as string props on the schema and its fields, so
// an importer can rebuild the original DDL from the schemas alone.
//
// A Converter holds only immutable configuration and may be shared between
// goroutines.
package converter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hamba/avro/v2"
	"go.uber.org/zap"

	"github.com/tordrt/spanneravro/internal/ddl"
)

// ErrDuplicateSchema is returned when two entities map to the same Avro name.
var ErrDuplicateSchema = errors.New("converter: duplicate schema name")

// Config is fixed at construction and stamped onto every schema.
type Config struct {
	// Namespace of every generated schema.
	Namespace string
	// FormatVersion is written to the googleFormatVersion prop.
	FormatVersion string
	// LogicalTimestamps encodes timestamps as timestamp-micros longs instead
	// of strings.
	LogicalTimestamps bool
}

// Converter converts schema models to Avro.
type Converter struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a converter. A nil logger discards output.
func New(cfg Config, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{cfg: cfg, logger: logger}
}

// Convert returns one record schema per entity in db. Tables come first in
// parent-before-child order, followed by views, functions, sequences, change
// streams, placements, property graphs and models, each in declaration order.
// An empty database yields an empty slice.
func (c *Converter) Convert(db *ddl.Database) ([]*avro.RecordSchema, error) {
	if err := db.Dialect.Validate(); err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	d := db.Dialect

	w := &walk{logger: c.logger, schemas: []*avro.RecordSchema{}, seen: make(map[string]string)}
	for _, t := range db.AllTables() {
		s, err := c.convertTable(t, d)
		if err = w.add("table", t.Name, s, err); err != nil {
			return nil, err
		}
	}
	for _, v := range db.Views {
		s, err := c.convertView(v)
		if err = w.add("view", v.Name, s, err); err != nil {
			return nil, err
		}
	}
	for _, u := range db.Udfs {
		s, err := c.convertUdf(u, d)
		if err = w.add("function", u.QualifiedName(), s, err); err != nil {
			return nil, err
		}
	}
	for _, seq := range db.Sequences {
		s, err := c.convertSequence(seq)
		if err = w.add("sequence", seq.Name, s, err); err != nil {
			return nil, err
		}
	}
	for _, cs := range db.ChangeStreams {
		s, err := c.convertChangeStream(cs)
		if err = w.add("change stream", cs.Name, s, err); err != nil {
			return nil, err
		}
	}
	for _, pl := range db.Placements {
		s, err := c.convertPlacement(pl)
		if err = w.add("placement", pl.Name, s, err); err != nil {
			return nil, err
		}
	}
	for _, g := range db.PropertyGraphs {
		s, err := c.convertPropertyGraph(g)
		if err = w.add("property graph", g.Name, s, err); err != nil {
			return nil, err
		}
	}
	for _, m := range db.Models {
		s, err := c.convertModel(m)
		if err = w.add("model", m.Name, s, err); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("converted database",
		zap.String("dialect", d.String()),
		zap.Int("schemas", len(w.schemas)))
	return w.schemas, nil
}

// walk collects converted schemas and rejects name collisions.
type walk struct {
	logger  *zap.Logger
	schemas []*avro.RecordSchema
	seen    map[string]string
}

func (w *walk) add(kind, name string, s *avro.RecordSchema, err error) error {
	if err != nil {
		return fmt.Errorf("convert %s %s: %w", kind, name, err)
	}
	if prev, ok := w.seen[s.FullName()]; ok {
		return fmt.Errorf("%w: %s %s and %s both map to %s", ErrDuplicateSchema, kind, name, prev, s.FullName())
	}
	w.seen[s.FullName()] = kind + " " + name
	w.schemas = append(w.schemas, s)
	w.logger.Debug("converted entity",
		zap.String("kind", kind),
		zap.String("entity", name),
		zap.Int("fields", len(s.Fields())))
	return nil
}

// avroName makes a Spanner name usable as an Avro name: the dot of a
// qualified name such as spanner.Foo becomes an underscore.
func avroName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
