package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tordrt/spanneravro/internal/ddl"
)

// DefaultSchema is the schema user tables live in on a PostgreSQL-dialect
// database.
const DefaultSchema = "public"

const (
	tablesQuery = `
		SELECT t.table_name, t.parent_table_name, t.on_delete_action, t.interleave_type
		FROM information_schema.tables AS t
		WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name
	`

	columnsQuery = `
		SELECT c.table_name, c.column_name, c.spanner_type, c.is_nullable,
			c.column_default, c.generation_expression, c.is_stored
		FROM information_schema.columns AS c
		WHERE c.table_schema = $1
		ORDER BY c.table_name, c.ordinal_position
	`

	primaryKeysQuery = `
		SELECT ic.table_name, ic.column_name, ic.column_ordering
		FROM information_schema.index_columns AS ic
		WHERE ic.table_schema = $1 AND ic.index_type = 'PRIMARY_KEY'
		ORDER BY ic.table_name, ic.ordinal_position
	`

	indexesQuery = `
		SELECT ic.table_name, ic.index_name, i.is_unique, ic.column_name,
			ic.ordinal_position, ic.column_ordering
		FROM information_schema.index_columns AS ic
		JOIN information_schema.indexes AS i
			ON i.table_schema = ic.table_schema
			AND i.table_name = ic.table_name
			AND i.index_name = ic.index_name
		WHERE ic.table_schema = $1 AND i.index_type = 'INDEX'
		ORDER BY ic.table_name, ic.index_name, ic.ordinal_position
	`

	foreignKeysQuery = `
		SELECT rc.constraint_name, kcu.table_name, kcu.column_name,
			pk.table_name, pk.column_name, rc.delete_rule
		FROM information_schema.referential_constraints AS rc
		JOIN information_schema.key_column_usage AS kcu
			ON kcu.constraint_schema = rc.constraint_schema
			AND kcu.constraint_name = rc.constraint_name
		JOIN information_schema.key_column_usage AS pk
			ON pk.constraint_schema = rc.unique_constraint_schema
			AND pk.constraint_name = rc.unique_constraint_name
			AND pk.ordinal_position = kcu.position_in_unique_constraint
		WHERE rc.constraint_schema = $1
		ORDER BY rc.constraint_name, kcu.ordinal_position
	`

	checksQuery = `
		SELECT tc.table_name, cc.constraint_name, cc.check_clause
		FROM information_schema.check_constraints AS cc
		JOIN information_schema.table_constraints AS tc
			ON tc.constraint_schema = cc.constraint_schema
			AND tc.constraint_name = cc.constraint_name
		WHERE cc.constraint_schema = $1
			AND cc.constraint_name NOT LIKE 'CK_IS_NOT_NULL_%'
		ORDER BY tc.table_name, cc.constraint_name
	`

	viewsQuery = `
		SELECT v.table_name, v.view_definition, v.security_type
		FROM information_schema.views AS v
		WHERE v.table_schema = $1
		ORDER BY v.table_name
	`

	sequencesQuery = `
		SELECT s.sequence_name, s.sequence_kind, s.counter_start_value,
			s.skip_range_min, s.skip_range_max
		FROM information_schema.sequences AS s
		WHERE s.sequence_schema = $1
		ORDER BY s.sequence_name
	`
)

// Extractor reads the schema of a PostgreSQL-dialect Spanner database from
// its information_schema
type Extractor struct {
	client *PostgresClient
	schema string
	logger *zap.Logger
}

// NewExtractor creates a new schema extractor. An empty schemaName selects
// DefaultSchema.
func NewExtractor(client *PostgresClient, schemaName string, logger *zap.Logger) *Extractor {
	if schemaName == "" {
		schemaName = DefaultSchema
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client: client,
		schema: schemaName,
		logger: logger,
	}
}

// ExtractDatabase extracts the schema model of the database.
// If tables is non-empty, only those tables are kept.
func (e *Extractor) ExtractDatabase(ctx context.Context, tables []string) (*ddl.Database, error) {
	var (
		r   catalogRows
		err error
	)
	conn := e.client.GetConnection()

	if r.tables, err = queryRows[tableRow](ctx, conn, tablesQuery, e.schema); err != nil {
		return nil, fmt.Errorf("failed to extract tables: %w", err)
	}
	if r.columns, err = queryRows[columnRow](ctx, conn, columnsQuery, e.schema); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if r.keys, err = queryRows[keyColumnRow](ctx, conn, primaryKeysQuery, e.schema); err != nil {
		return nil, fmt.Errorf("failed to extract primary keys: %w", err)
	}
	if r.indexes, err = queryRows[indexColumnRow](ctx, conn, indexesQuery, e.schema); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	if r.foreignKeys, err = queryRows[foreignKeyRow](ctx, conn, foreignKeysQuery, e.schema); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	if r.checks, err = queryRows[checkRow](ctx, conn, checksQuery, e.schema); err != nil {
		return nil, fmt.Errorf("failed to extract check constraints: %w", err)
	}
	if r.views, err = queryRows[viewRow](ctx, conn, viewsQuery, e.schema); err != nil {
		return nil, fmt.Errorf("failed to extract views: %w", err)
	}
	if r.sequences, err = queryRows[sequenceRow](ctx, conn, sequencesQuery, e.schema); err != nil {
		return nil, fmt.Errorf("failed to extract sequences: %w", err)
	}

	e.logger.Debug("read information schema",
		zap.String("schema", e.schema),
		zap.Strings("tables", tableNames(r.tables)),
		zap.Int("columns", len(r.columns)),
		zap.Int("views", len(r.views)),
		zap.Int("sequences", len(r.sequences)))

	db, err := buildDatabase(r, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema model: %w", err)
	}
	return db, nil
}
