package ddl

import (
	"fmt"
	"strings"
)

// Dialect is the SQL variant a schema is written in.
type Dialect int

const (
	// GoogleStandardSQL is the default Spanner dialect.
	GoogleStandardSQL Dialect = iota
	// PostgreSQL is the PostgreSQL interface dialect.
	PostgreSQL
)

func (d Dialect) String() string {
	switch d {
	case GoogleStandardSQL:
		return "GOOGLE_STANDARD_SQL"
	case PostgreSQL:
		return "POSTGRESQL"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// Validate reports ErrUnrecognizedDialect for values outside the known set.
func (d Dialect) Validate() error {
	switch d {
	case GoogleStandardSQL, PostgreSQL:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnrecognizedDialect, d)
	}
}

// Quote returns the identifier quote character of the dialect.
func (d Dialect) Quote() string {
	if d == PostgreSQL {
		return `"`
	}
	return "`"
}

// QuoteIdentifier wraps name in the dialect's identifier quotes.
func (d Dialect) QuoteIdentifier(name string) string {
	q := d.Quote()
	return q + name + q
}

// ParseDialect maps a dialect name to a Dialect. An empty name selects
// GoogleStandardSQL.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "GOOGLE_STANDARD_SQL", "GOOGLESQL", "GSQL":
		return GoogleStandardSQL, nil
	case "POSTGRESQL", "POSTGRES", "PG":
		return PostgreSQL, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedDialect, name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dialect) UnmarshalText(text []byte) error {
	parsed, err := ParseDialect(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
