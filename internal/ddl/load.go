package ddl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a model file. Entities whose fields are
// all plain strings decode straight into the model types; tables and models
// carry type signatures that are parsed once the dialect is known.
type document struct {
	Dialect        Dialect         `yaml:"dialect"`
	Tables         []tableDoc      `yaml:"tables"`
	Views          []View          `yaml:"views"`
	Udfs           []Udf           `yaml:"udfs"`
	Sequences      []Sequence      `yaml:"sequences"`
	ChangeStreams  []ChangeStream  `yaml:"change_streams"`
	Placements     []Placement     `yaml:"placements"`
	PropertyGraphs []PropertyGraph `yaml:"property_graphs"`
	Models         []modelDoc      `yaml:"models"`
}

type tableDoc struct {
	Name             string         `yaml:"name"`
	Parent           string         `yaml:"parent"`
	InterleaveType   InterleaveType `yaml:"interleave_type"`
	OnDeleteCascade  bool           `yaml:"on_delete_cascade"`
	PrimaryKey       []IndexColumn  `yaml:"primary_key"`
	Columns          []columnDoc    `yaml:"columns"`
	Indexes          []string       `yaml:"indexes"`
	ForeignKeys      []ForeignKey   `yaml:"foreign_keys"`
	CheckConstraints []string       `yaml:"check_constraints"`
}

type columnDoc struct {
	Name         string       `yaml:"name"`
	Type         string       `yaml:"type"`
	NotNull      bool         `yaml:"not_null"`
	Default      string       `yaml:"default"`
	GeneratedAs  string       `yaml:"generated_as"`
	Stored       bool         `yaml:"stored"`
	Hidden       bool         `yaml:"hidden"`
	Identity     *identityDoc `yaml:"identity"`
	PlacementKey bool         `yaml:"placement_key"`
	Options      []string     `yaml:"options"`
}

type identityDoc struct {
	SequenceKind      string `yaml:"sequence_kind"`
	CounterStartValue *int64 `yaml:"counter_start_value"`
	SkipRangeMin      *int64 `yaml:"skip_range_min"`
	SkipRangeMax      *int64 `yaml:"skip_range_max"`
}

type modelDoc struct {
	Name    string           `yaml:"name"`
	Input   []modelColumnDoc `yaml:"input"`
	Output  []modelColumnDoc `yaml:"output"`
	Remote  bool             `yaml:"remote"`
	Options []string         `yaml:"options"`
}

type modelColumnDoc struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Options []string `yaml:"options"`
}

// LoadFile reads a model document from path.
func LoadFile(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	db, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return db, nil
}

// Load decodes a YAML (or JSON) model document and checks it for consistency.
// An empty document is an empty database.
func Load(r io.Reader) (*Database, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	db := &Database{
		Dialect:        doc.Dialect,
		Views:          doc.Views,
		Udfs:           doc.Udfs,
		Sequences:      doc.Sequences,
		ChangeStreams:  doc.ChangeStreams,
		Placements:     doc.Placements,
		PropertyGraphs: doc.PropertyGraphs,
	}

	for _, td := range doc.Tables {
		t, err := td.build(doc.Dialect)
		if err != nil {
			return nil, err
		}
		db.Tables = append(db.Tables, t)
	}
	for _, md := range doc.Models {
		m, err := md.build(doc.Dialect)
		if err != nil {
			return nil, err
		}
		db.Models = append(db.Models, m)
	}

	if err := validate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func (td tableDoc) build(d Dialect) (Table, error) {
	t := Table{
		Name:               td.Name,
		Dialect:            d,
		InterleavingParent: td.Parent,
		InterleaveType:     td.InterleaveType,
		OnDeleteCascade:    td.OnDeleteCascade,
		PrimaryKeys:        td.PrimaryKey,
		Indexes:            td.Indexes,
		CheckConstraints:   td.CheckConstraints,
	}
	for _, fk := range td.ForeignKeys {
		if fk.Table == "" {
			fk.Table = td.Name
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	for _, cd := range td.Columns {
		pt, err := ParseType(cd.Type, d)
		if err != nil {
			return Table{}, fmt.Errorf("table %s column %s: %w", td.Name, cd.Name, err)
		}
		c := Column{
			Name:                 cd.Name,
			Type:                 pt.Type,
			Size:                 pt.Size,
			ArrayLength:          pt.ArrayLength,
			NotNull:              cd.NotNull,
			DefaultExpression:    cd.Default,
			GenerationExpression: cd.GeneratedAs,
			IsStored:             cd.Stored,
			IsHidden:             cd.Hidden,
			IsPlacementKey:       cd.PlacementKey,
			Options:              cd.Options,
		}
		if cd.Identity != nil {
			c.IsIdentityColumn = true
			c.SequenceKind = cd.Identity.SequenceKind
			c.CounterStartValue = cd.Identity.CounterStartValue
			c.SkipRangeMin = cd.Identity.SkipRangeMin
			c.SkipRangeMax = cd.Identity.SkipRangeMax
		}
		t.Columns = append(t.Columns, c)
	}
	return t, nil
}

func (md modelDoc) build(d Dialect) (Model, error) {
	m := Model{Name: md.Name, Remote: md.Remote, Options: md.Options}
	var err error
	if m.InputColumns, err = buildModelColumns(md.Name, md.Input, d); err != nil {
		return Model{}, err
	}
	if m.OutputColumns, err = buildModelColumns(md.Name, md.Output, d); err != nil {
		return Model{}, err
	}
	return m, nil
}

func buildModelColumns(model string, docs []modelColumnDoc, d Dialect) ([]ModelColumn, error) {
	columns := make([]ModelColumn, 0, len(docs))
	for _, cd := range docs {
		pt, err := ParseType(cd.Type, d)
		if err != nil {
			return nil, fmt.Errorf("model %s column %s: %w", model, cd.Name, err)
		}
		columns = append(columns, ModelColumn{Name: cd.Name, Type: pt.Type, Size: pt.Size, Options: cd.Options})
	}
	return columns, nil
}

// validate enforces the structural invariants the converter relies on.
func validate(db *Database) error {
	seen := make(map[string]bool)
	for _, t := range db.Tables {
		if t.Name == "" {
			return fmt.Errorf("%w: table without a name", ErrInvalidModel)
		}
		key := strings.ToLower(t.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate table %s", ErrInvalidModel, t.Name)
		}
		seen[key] = true

		columns := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == "" {
				return fmt.Errorf("%w: table %s has a column without a name", ErrInvalidModel, t.Name)
			}
			ckey := strings.ToLower(c.Name)
			if columns[ckey] {
				return fmt.Errorf("%w: table %s declares column %s twice", ErrInvalidModel, t.Name, c.Name)
			}
			columns[ckey] = true
		}
		for _, pk := range t.PrimaryKeys {
			if !columns[strings.ToLower(pk.Name)] {
				return fmt.Errorf("%w: table %s primary key references unknown column %s", ErrInvalidModel, t.Name, pk.Name)
			}
		}
	}

	names := func(kind string, list []string) error {
		for _, n := range list {
			if n == "" {
				return fmt.Errorf("%w: %s without a name", ErrInvalidModel, kind)
			}
		}
		return nil
	}
	checks := []struct {
		kind  string
		names []string
	}{
		{"view", collect(db.Views, func(v View) string { return v.Name })},
		{"function", collect(db.Udfs, func(u Udf) string { return u.QualifiedName() })},
		{"sequence", collect(db.Sequences, func(s Sequence) string { return s.Name })},
		{"change stream", collect(db.ChangeStreams, func(c ChangeStream) string { return c.Name })},
		{"placement", collect(db.Placements, func(p Placement) string { return p.Name })},
		{"property graph", collect(db.PropertyGraphs, func(g PropertyGraph) string { return g.Name })},
		{"model", collect(db.Models, func(m Model) string { return m.Name })},
	}
	for _, c := range checks {
		if err := names(c.kind, c.names); err != nil {
			return err
		}
	}
	return nil
}

func collect[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}
