// CLAUDE:SUMMARY CLI entry point for adoctext — batch conversion of AsciiDoc documentation to plain text.
// Command adoctext converts AsciiDoc documentation trees to Markdown text
// files ready for an embedding pipeline.
//
// Usage:
//
//	adoctext -input-dir docs/ -output-dir out/              # convert guides
//	adoctext -relnotes-dir notes/ -output-dir out/          # convert release notes
//	adoctext -config adoctext.yaml -input-dir docs/ -output-dir out/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/adoctext/audit"
	"github.com/hazyhaar/adoctext/convert"
	"github.com/hazyhaar/adoctext/docsource"
)

// Config holds all adoctext configuration.
type Config struct {
	Source  docsource.Config `yaml:"source"`
	Convert convert.Config   `yaml:"convert"`
	Workers int              `yaml:"workers"`
	AuditDB string           `yaml:"audit_db"`
}

func (c *Config) defaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "path to adoctext.yaml config file")
	inputDir := flag.String("input-dir", "", "directory with master.adoc guides")
	relnotesDir := flag.String("relnotes-dir", "", "directory with release-information assemblies")
	outputDir := flag.String("output-dir", "", "directory for converted text files")
	docsVersion := flag.String("docs-version", "", "documentation version to convert (default 18.0)")
	attributesFile := flag.String("attributes-file", "", "asciidoctor attributes file, one key=value per line")
	workers := flag.Int("workers", 0, "parallel conversions (default 4)")
	auditDB := flag.String("audit-db", "", "SQLite ledger for run summaries (optional)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := resolveConfig(*configPath, *inputDir, *relnotesDir, *outputDir,
		*docsVersion, *attributesFile, *workers, *auditDB)
	if err != nil {
		logger.Error("adoctext: bad configuration", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, logger, cfg, *relnotesDir != ""); err != nil {
		logger.Error("adoctext: fatal", "error", err)
		os.Exit(1)
	}
}

func resolveConfig(configPath, inputDir, relnotesDir, outputDir, docsVersion,
	attributesFile string, workers int, auditDB string) (*Config, error) {

	cfg := &Config{}
	if configPath != "" {
		loaded, err := LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags override the file.
	if inputDir != "" && relnotesDir != "" {
		return nil, fmt.Errorf("-input-dir and -relnotes-dir are mutually exclusive")
	}
	if inputDir != "" {
		cfg.Source.InputDir = inputDir
	}
	if relnotesDir != "" {
		cfg.Source.InputDir = relnotesDir
	}
	if outputDir != "" {
		cfg.Source.OutputDir = outputDir
	}
	if docsVersion != "" {
		cfg.Source.DocsVersion = docsVersion
	}
	if attributesFile != "" {
		cfg.Convert.AttributesFile = attributesFile
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if auditDB != "" {
		cfg.AuditDB = auditDB
	}
	cfg.defaults()

	if cfg.Source.InputDir == "" || cfg.Source.OutputDir == "" {
		return nil, fmt.Errorf("an input directory and -output-dir are required")
	}
	return cfg, nil
}

func run(ctx context.Context, logger *slog.Logger, cfg *Config, relnotes bool) error {
	cfg.Source.Logger = logger
	cfg.Convert.Logger = logger

	var (
		docs []docsource.Descriptor
		err  error
	)
	if relnotes {
		docs, err = docsource.EnumerateRelnotes(cfg.Source)
	} else {
		docs, err = docsource.EnumerateDocs(cfg.Source)
	}
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no convertible documents under %s", cfg.Source.InputDir)
	}
	logger.Info("adoctext: starting batch", "documents", len(docs), "workers", cfg.Workers)

	conv := convert.New(cfg.Convert)
	sum := conv.Batch(ctx, docs, cfg.Workers)

	if cfg.AuditDB != "" {
		store, err := audit.Open(cfg.AuditDB)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.RecordRun(sum); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		return err
	}

	if len(sum.Failed) > 0 {
		return fmt.Errorf("%d of %d documents failed", len(sum.Failed), len(docs))
	}
	return nil
}
