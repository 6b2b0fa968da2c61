package ddl

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParsedType is a type signature broken into the parts a Column stores.
type ParsedType struct {
	Type        *Type
	Size        int
	ArrayLength *int
}

// ParseType parses a DDL type signature such as STRING(10),
// ARRAY<FLOAT32>(vector_length=>128), STRUCT<a INT64> or, in the PostgreSQL
// dialect, character varying(10) and bigint[].
func ParseType(sig string, d Dialect) (ParsedType, error) {
	if err := d.Validate(); err != nil {
		return ParsedType{}, err
	}
	s := strings.TrimSpace(sig)
	if d == PostgreSQL {
		ast, err := pgParser.ParseString("", s)
		if err != nil {
			return ParsedType{}, fmt.Errorf("%w: %q: %s", ErrUnknownType, s, err.Error())
		}
		return ast.build(s)
	}
	ast, err := gsqlParser.ParseString("", s)
	if err != nil {
		return ParsedType{}, fmt.Errorf("%w: %q: %s", ErrUnknownType, s, err.Error())
	}
	t, size, length, err := ast.build(s)
	if err != nil {
		return ParsedType{}, err
	}
	return ParsedType{Type: t, Size: size, ArrayLength: length}, nil
}

// Negative numbers have no token, so they fail in the lexer.
var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Arrow", Pattern: `=>`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[<>(),.\[\]]`},
})

var (
	gsqlParser = participle.MustBuild[gsqlType](
		participle.Lexer(typeLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Ident"),
	)
	pgParser = participle.MustBuild[pgType](
		participle.Lexer(typeLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Ident"),
	)
)

// gsqlType is one GoogleSQL type. Named covers scalars and STRING(n)/BYTES(n).
type gsqlType struct {
	Array  *gsqlArray  `parser:"  @@"`
	Struct *gsqlStruct `parser:"| @@"`
	Proto  *qualified  `parser:"| \"PROTO\" \"<\" @@ \">\""`
	Enum   *qualified  `parser:"| \"ENUM\" \"<\" @@ \">\""`
	Named  *gsqlNamed  `parser:"| @@"`
}

type gsqlArray struct {
	Elem         *gsqlType `parser:"\"ARRAY\" \"<\" @@ \">\""`
	VectorLength *int      `parser:"( \"(\" \"vector_length\" \"=>\" @Int \")\" )?"`
}

type gsqlStruct struct {
	Fields []*gsqlField `parser:"\"STRUCT\" \"<\" ( @@ ( \",\" @@ )* )? \">\""`
}

type gsqlField struct {
	Name string    `parser:"@Ident"`
	Type *gsqlType `parser:"@@"`
}

type qualified struct {
	Parts []string `parser:"@Ident ( \".\" @Ident )*"`
}

type gsqlNamed struct {
	Name string    `parser:"@Ident"`
	Size *typeSize `parser:"( \"(\" @@ \")\" )?"`
}

type typeSize struct {
	Max    bool `parser:"  @\"MAX\""`
	Length *int `parser:"| @Int"`
}

var gsqlScalars = map[string]Code{
	"BOOL":      CodeBool,
	"INT64":     CodeInt64,
	"FLOAT32":   CodeFloat32,
	"FLOAT64":   CodeFloat64,
	"STRING":    CodeString,
	"BYTES":     CodeBytes,
	"TIMESTAMP": CodeTimestamp,
	"DATE":      CodeDate,
	"NUMERIC":   CodeNumeric,
	"JSON":      CodeJSON,
	"UUID":      CodeUUID,
	"TOKENLIST": CodeTokenlist,
}

// build returns the type with the length and vector length it was declared
// with. sig is the whole signature, used in errors.
func (g *gsqlType) build(sig string) (*Type, int, *int, error) {
	switch {
	case g.Array != nil:
		elem, size, length, err := g.Array.Elem.build(sig)
		if err != nil {
			return nil, 0, nil, err
		}
		if length != nil {
			return nil, 0, nil, unknownType(sig)
		}
		if l := g.Array.VectorLength; l != nil && *l <= 0 {
			return nil, 0, nil, unknownType(sig)
		}
		return Array(elem), size, g.Array.VectorLength, nil

	case g.Struct != nil:
		var fields []StructField
		for _, f := range g.Struct.Fields {
			ft, size, length, err := f.Type.build(sig)
			if err != nil {
				return nil, 0, nil, err
			}
			if length != nil {
				return nil, 0, nil, unknownType(sig)
			}
			fields = append(fields, SizedField(f.Name, ft, size))
		}
		return Struct(fields...), 0, nil, nil

	case g.Proto != nil:
		return Proto(strings.Join(g.Proto.Parts, ".")), 0, nil, nil

	case g.Enum != nil:
		return Enum(strings.Join(g.Enum.Parts, ".")), 0, nil, nil

	case g.Named != nil:
		code, ok := gsqlScalars[strings.ToUpper(g.Named.Name)]
		if !ok {
			return nil, 0, nil, unknownType(sig)
		}
		if g.Named.Size == nil {
			return scalar(code), 0, nil, nil
		}
		if code != CodeString && code != CodeBytes {
			return nil, 0, nil, unknownType(sig)
		}
		if g.Named.Size.Max {
			return scalar(code), MaxLength, nil, nil
		}
		if n := g.Named.Size.Length; n != nil && *n > 0 {
			return scalar(code), *n, nil, nil
		}
		return nil, 0, nil, unknownType(sig)
	}
	return nil, 0, nil, unknownType(sig)
}

// pgType is one PostgreSQL type. Names may span several words
// (double precision) or be schema qualified (spanner.commit_timestamp).
type pgType struct {
	Words        []string `parser:"( @Ident | @\".\" )+"`
	Length       *int     `parser:"( \"(\" @Int \")\" )?"`
	Array        bool     `parser:"( @\"[\" \"]\" )?"`
	VectorLength *int     `parser:"( \"vector\" \"length\" @Int )?"`
}

var pgScalars = map[string]Code{
	"boolean":                  CodePgBool,
	"bool":                     CodePgBool,
	"bigint":                   CodePgInt8,
	"int8":                     CodePgInt8,
	"real":                     CodePgFloat4,
	"float4":                   CodePgFloat4,
	"double precision":         CodePgFloat8,
	"float8":                   CodePgFloat8,
	"character varying":        CodePgVarchar,
	"varchar":                  CodePgVarchar,
	"text":                     CodePgText,
	"bytea":                    CodePgBytea,
	"timestamp with time zone": CodePgTimestamptz,
	"timestamptz":              CodePgTimestamptz,
	"date":                     CodePgDate,
	"numeric":                  CodePgNumeric,
	"decimal":                  CodePgNumeric,
	"jsonb":                    CodePgJSONB,
	"spanner.commit_timestamp": CodePgCommitTimestamp,
	"spanner.tokenlist":        CodePgTokenlist,
	"uuid":                     CodePgUUID,
}

func (p *pgType) build(sig string) (ParsedType, error) {
	code, ok := pgScalars[p.name()]
	if !ok {
		return ParsedType{}, unknownType(sig)
	}

	pt := ParsedType{Type: scalar(code)}
	if p.Length != nil {
		if code != CodePgVarchar || *p.Length <= 0 {
			return ParsedType{}, unknownType(sig)
		}
		pt.Size = *p.Length
	}
	if p.Array {
		pt.Type = PgArray(pt.Type)
	}
	if p.VectorLength != nil {
		if !p.Array || *p.VectorLength <= 0 {
			return ParsedType{}, unknownType(sig)
		}
		pt.ArrayLength = p.VectorLength
	}
	return pt, nil
}

// name joins the words of the type name, keeping dots unspaced.
func (p *pgType) name() string {
	var b strings.Builder
	for i, w := range p.Words {
		if i > 0 && w != "." && p.Words[i-1] != "." {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToLower(w))
	}
	return b.String()
}

func unknownType(s string) error {
	return fmt.Errorf("%w: %q", ErrUnknownType, s)
}
