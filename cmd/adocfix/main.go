// CLAUDE:SUMMARY CLI entry point for adocfix — apply AsciiDoc source fixes in place or report them.
// Command adocfix repairs AsciiDoc source files in place: link bracket
// escaping, callout renumbering and placement, source block designations,
// and table layout.
//
// Usage:
//
//	adocfix guide/master.adoc                 # fix the document and its includes
//	adocfix -dry-run guide/master.adoc        # report fixes without writing
//	adocfix docs/                             # fix every .adoc under docs/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hazyhaar/adoctext/adocfix"
)

func main() {
	baseDir := flag.String("base-dir", "", "base directory for include resolution (default: entry file's directory)")
	dryRun := flag.Bool("dry-run", false, "report fixes without modifying files")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: adocfix [-base-dir <dir>] [-dry-run] <file.adoc | directory>")
		os.Exit(1)
	}

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

	if err := run(ctx, logger, flag.Arg(0), *baseDir, *dryRun); err != nil {
		logger.Error("adocfix: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, target, baseDir string, dryRun bool) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	var fixes []adocfix.Fix
	switch {
	case info.IsDir():
		fixes, err = fixDirectory(ctx, logger, target, dryRun)
	default:
		if baseDir == "" {
			baseDir = filepath.Dir(target)
		}
		if dryRun {
			fixes, err = reportFile(target)
		} else {
			fixes, err = adocfix.FixTree(ctx, target, baseDir, adocfix.Config{Logger: logger})
		}
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fixes); err != nil {
		return err
	}
	logger.Info("adocfix: done", "fixes", len(fixes), "dry_run", dryRun)
	return nil
}

// fixDirectory applies the fixer to every .adoc file under root.
func fixDirectory(ctx context.Context, logger *slog.Logger, root string, dryRun bool) ([]adocfix.Fix, error) {
	var all []adocfix.Fix
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("adocfix: unreadable entry, skipping", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".adoc") {
			return nil
		}

		var fixes []adocfix.Fix
		var ferr error
		if dryRun {
			fixes, ferr = reportFile(path)
		} else {
			fixes, ferr = adocfix.FixFile(ctx, path, adocfix.Config{Logger: logger})
		}
		if ferr != nil {
			logger.Warn("adocfix: skipping file", "path", path, "error", ferr)
			return nil
		}
		all = append(all, fixes...)
		return nil
	})
	return all, err
}

// reportFile computes a file's fixes without writing anything back.
func reportFile(path string) ([]adocfix.Fix, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, fixes := adocfix.FixText(string(raw))
	for i := range fixes {
		if fixes[i].Location == "" {
			fixes[i].Location = path
			continue
		}
		fixes[i].Location = path + ":" + fixes[i].Location
	}
	return fixes, nil
}
