package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hamba/avro/v2"
	"go.uber.org/zap"
)

// Catalog drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// ErrRunNotFound is returned by Schemas for an unknown run id.
var ErrRunNotFound = errors.New("catalog: run not found")

// Export is one conversion run to record.
type Export struct {
	Namespace string
	// Source is the model file or database the schemas were read from.
	Source  string
	Schemas []*avro.RecordSchema
}

// Run summarizes a recorded export.
type Run struct {
	ID        string
	Namespace string
	Source    string
	Schemas   int
	CreatedAt time.Time
}

// StoredSchema is one schema of a run, as Avro JSON.
type StoredSchema struct {
	Name string
	JSON string
}

// Catalog records export runs in a SQL database, one row per schema.
type Catalog struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
	now    func() time.Time
	close  func() error
}

// NewCatalog wraps an open database. driver selects the column types used by
// Init.
func NewCatalog(db *sql.DB, driver string, logger *zap.Logger) (*Catalog, error) {
	switch driver {
	case DriverSQLite, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{db: db, driver: driver, logger: logger, now: time.Now, close: func() error { return nil }}, nil
}

// OpenCatalog connects to the catalog database and creates its table.
func OpenCatalog(ctx context.Context, driver, dsn string, logger *zap.Logger) (*Catalog, error) {
	var (
		db      *sql.DB
		closeDB func() error
	)
	switch driver {
	case DriverSQLite:
		client, err := NewSQLiteClient(ctx, dsn)
		if err != nil {
			return nil, err
		}
		db, closeDB = client.GetDB(), client.Close
	case DriverMySQL:
		client, err := NewMySQLClient(ctx, dsn)
		if err != nil {
			return nil, err
		}
		db, closeDB = client.GetDB(), client.Close
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	c, err := NewCatalog(db, driver, logger)
	if err != nil {
		_ = closeDB()
		return nil, err
	}
	c.close = closeDB
	if err := c.Init(ctx); err != nil {
		_ = closeDB()
		return nil, err
	}
	return c, nil
}

// Close releases a connection opened by OpenCatalog.
func (c *Catalog) Close() error {
	return c.close()
}

// Init creates the avro_exports table if it does not exist.
func (c *Catalog) Init(ctx context.Context) error {
	jsonType := "TEXT"
	if c.driver == DriverMySQL {
		jsonType = "MEDIUMTEXT"
	}
	stmt := `
		CREATE TABLE IF NOT EXISTS avro_exports (
			run_id VARCHAR(36) NOT NULL,
			position INTEGER NOT NULL,
			namespace VARCHAR(255) NOT NULL,
			source VARCHAR(1024) NOT NULL,
			schema_name VARCHAR(255) NOT NULL,
			schema_json ` + jsonType + ` NOT NULL,
			created_at BIGINT NOT NULL,
			PRIMARY KEY (run_id, position)
		)
	`
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create catalog table: %w", err)
	}
	return nil
}

// Record stores every schema of e under a new run id and returns the id.
// A run only exists through its schemas, so an empty export is not listed.
func (c *Catalog) Record(ctx context.Context, e Export) (string, error) {
	runID := uuid.NewString()
	createdAt := c.now().UTC().UnixMicro()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO avro_exports (run_id, position, namespace, source, schema_name, schema_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, s := range e.Schemas {
		data, err := json.Marshal(s)
		if err != nil {
			return "", fmt.Errorf("failed to encode schema %s: %w", s.FullName(), err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, e.Namespace, e.Source, s.FullName(), string(data), createdAt); err != nil {
			return "", fmt.Errorf("failed to record schema %s: %w", s.FullName(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit export: %w", err)
	}

	c.logger.Info("recorded export",
		zap.String("run_id", runID),
		zap.String("source", e.Source),
		zap.Int("schemas", len(e.Schemas)))
	return runID, nil
}

// Runs lists recorded runs, newest first.
func (c *Catalog) Runs(ctx context.Context) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT run_id, MIN(namespace), MIN(source), COUNT(*), MIN(created_at)
		FROM avro_exports
		GROUP BY run_id
		ORDER BY MIN(created_at) DESC, run_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.Namespace, &r.Source, &r.Schemas, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMicro(createdAt).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Schemas returns the schemas of one run in their recorded order.
func (c *Catalog) Schemas(ctx context.Context, runID string) ([]StoredSchema, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT schema_name, schema_json
		FROM avro_exports
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var schemas []StoredSchema
	for rows.Next() {
		var s StoredSchema
		if err := rows.Scan(&s.Name, &s.JSON); err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return schemas, nil
}
