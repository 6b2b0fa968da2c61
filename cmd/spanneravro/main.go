package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tordrt/spanneravro"
	"github.com/tordrt/spanneravro/internal/config"
	"github.com/tordrt/spanneravro/internal/db"
)

var (
	configPath string
	verbose    bool

	modelPath  string
	dbURL      string
	schemaName string
	tables     string
	exclude    string
	outputFile string
	outputDir  string
	format     string
	compact    bool

	runID string
)

var rootCmd = &cobra.Command{
	Use:           "spanneravro",
	Short:         "Convert Cloud Spanner schemas to Avro",
	Long:          `spanneravro reads a Cloud Spanner schema from a model file or a PostgreSQL-dialect database and writes one Avro record schema per table, view, function, sequence, change stream, placement, property graph and model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write Avro schemas for a Spanner schema",
	RunE:  runExport,
}

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Pretty-print a Spanner schema as DDL",
	RunE:  runDDL,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded export runs, or print the schemas of one run",
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file (environment variables override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, cmd := range []*cobra.Command{exportCmd, ddlCmd} {
		cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Schema model file (YAML or JSON)")
		cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL-dialect connection string (PGAdapter or emulator)")
		cmd.Flags().StringVarP(&schemaName, "schema", "s", db.DefaultSchema, "information_schema schema name for --db-url")
		cmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
		cmd.Flags().StringVarP(&exclude, "exclude", "x", "", "Tables to skip (comma-separated, optional)")
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	}

	exportCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for one file per schema")
	exportCmd.Flags().StringVarP(&format, "format", "f", "avsc", "Output format: avsc or markdown")
	exportCmd.Flags().BoolVar(&compact, "compact", false, "Write single-file JSON without indentation")

	historyCmd.Flags().StringVar(&runID, "run", "", "Print the schemas recorded for this run id")

	rootCmd.AddCommand(exportCmd, ddlCmd, historyCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	source, err := resolveSource(modelPath, dbURL)
	if err != nil {
		return err
	}

	// --output wins over the configured output_dir, not over --output-dir.
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}
	dir := outputDir
	if dir == "" && outputFile == "" {
		dir = cfg.OutputDir
	}
	if format != "avsc" && format != "markdown" {
		return fmt.Errorf("invalid format: %s (must be 'avsc' or 'markdown')", format)
	}

	opts := &spanneravro.Options{
		Tables:            parseTableList(tables),
		ExcludeTables:     parseTableList(exclude),
		SchemaName:        schemaName,
		Namespace:         cfg.Namespace,
		FormatVersion:     cfg.FormatVersion,
		LogicalTimestamps: cfg.LogicalTimestamps,
		Logger:            logger,
	}

	database, err := spanneravro.LoadDatabase(ctx, source, opts)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	schemas, err := spanneravro.ConvertDatabase(database, opts)
	if err != nil {
		return fmt.Errorf("failed to convert schema: %w", err)
	}
	logger.Debug("converted schema", zap.Int("schemas", len(schemas)))

	outOpts := &spanneravro.OutputOptions{OutputDir: dir, Format: format, Compact: compact}
	if dir == "" {
		writer, closeOutput, err := openOutput(outputFile, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeOutput()
		outOpts.Writer = writer
	}
	if err := spanneravro.WriteSchemas(schemas, outOpts); err != nil {
		return fmt.Errorf("failed to write schemas: %w", err)
	}

	if !cfg.Catalog.Enabled() {
		return nil
	}

	catalog, err := db.OpenCatalog(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN, logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.Warn("failed to close catalog", zap.Error(err))
		}
	}()

	if _, err := catalog.Record(ctx, db.Export{
		Namespace: cfg.Namespace,
		Source:    redactSource(source),
		Schemas:   schemas,
	}); err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

func runDDL(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	source, err := resolveSource(modelPath, dbURL)
	if err != nil {
		return err
	}

	database, err := spanneravro.LoadDatabase(ctx, source, &spanneravro.Options{
		Tables:        parseTableList(tables),
		ExcludeTables: parseTableList(exclude),
		SchemaName:    schemaName,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	writer, closeOutput, err := openOutput(outputFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := spanneravro.WriteDDL(database, writer); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Catalog.Enabled() {
		return fmt.Errorf("no catalog configured (set catalog.dsn or SPANNERAVRO_CATALOG_DSN)")
	}

	catalog, err := db.OpenCatalog(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN, logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = catalog.Close() }()

	out := cmd.OutOrStdout()

	if runID != "" {
		schemas, err := catalog.Schemas(ctx, runID)
		if err != nil {
			return err
		}
		for _, s := range schemas {
			_, _ = fmt.Fprintln(out, s.JSON)
		}
		return nil
	}

	runs, err := catalog.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "no recorded exports")
		return nil
	}
	for _, r := range runs {
		_, _ = fmt.Fprintf(out, "%s  %s  %s  %d schemas  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02T15:04:05Z"), r.Namespace, r.Schemas, r.Source)
	}
	return nil
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

// resolveSource returns the one schema source the flags name.
func resolveSource(model, connString string) (string, error) {
	switch {
	case model == "" && connString == "":
		return "", fmt.Errorf("one of --model or --db-url must be specified")
	case model != "" && connString != "":
		return "", fmt.Errorf("only one of --model or --db-url can be specified")
	case connString != "":
		return connString, nil
	default:
		return model, nil
	}
}

// redactSource hides the password of a connection URL before it is stored.
func redactSource(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || u.User == nil {
		return source
	}
	return u.Redacted()
}

func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	list := strings.Split(s, ",")
	for i, t := range list {
		list[i] = strings.TrimSpace(t)
	}
	return list
}

// openOutput creates the file at path, or returns stdout when path is empty.
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
		}
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
