// CLAUDE:SUMMARY Ordered pipeline of AsciiDoc repair passes (links, callouts, source designation, tables) with lock-guarded in-place fixing.
// Package adocfix repairs non-conformant AsciiDoc source before it is handed
// to the asciidoctor compiler.
//
// The fixer is a fixed, ordered sequence of independent text-rewrite passes.
// Each pass scans the document and repairs one class of defect, returning a
// new line buffer plus a record of every change. Order matters: callout
// placement relies on renumbering having run, and callout spacing relies on
// placement. A pass that finds nothing to repair returns its input unchanged
// and no fix records.
//
// FixFile serializes in-place edits through an advisory file lock so that
// concurrent converter processes sharing an include graph never interleave
// read-fix-write cycles on the same file.
package adocfix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/adoctext/filelock"
	"github.com/hazyhaar/adoctext/includes"
)

// Fix describes a single applied repair. Purely observational: it drives
// logging and the end-of-run summary, nothing downstream consumes it.
type Fix struct {
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Pass rewrites a line buffer and reports what it changed.
type Pass func(lines []string) ([]string, []Fix)

// Config tunes the fixer.
type Config struct {
	// LockTimeout bounds how long FixFile waits for exclusive access.
	LockTimeout time.Duration `yaml:"lock_timeout"`
	// LockPoll is the retry interval while waiting for the lock.
	LockPoll time.Duration `yaml:"lock_poll"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.LockTimeout <= 0 {
		c.LockTimeout = filelock.DefaultTimeout
	}
	if c.LockPoll <= 0 {
		c.LockPoll = filelock.DefaultPoll
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// lineLoc formats a 0-based line index as a 1-based location string.
func lineLoc(i int) string {
	return "line " + strconv.Itoa(i+1)
}

// Passes returns the fixer pipeline in required order.
func Passes() []Pass {
	return []Pass{
		EscapeLinkBrackets,
		RenumberCallouts,
		PlaceCalloutDefinitions,
		SpaceCalloutDefinitions,
		InsertSourceDesignation,
		FixTables,
	}
}

// FixLines runs every pass in order over one document's lines.
func FixLines(lines []string) ([]string, []Fix) {
	var all []Fix
	for _, pass := range Passes() {
		var fixes []Fix
		lines, fixes = pass(lines)
		all = append(all, fixes...)
	}
	return lines, all
}

// FixText is FixLines over a whole string.
func FixText(text string) (string, []Fix) {
	lines, fixes := FixLines(strings.Split(text, "\n"))
	return strings.Join(lines, "\n"), fixes
}

// FixFile acquires the file lock for path, applies all passes, and writes
// the result back only when the content changed. Returns the applied fixes;
// an empty list means the file was already clean.
func FixFile(ctx context.Context, path string, cfg Config) ([]Fix, error) {
	cfg.defaults()

	lock, err := filelock.Acquire(ctx, path, cfg.LockTimeout, cfg.LockPoll)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("adocfix: read %s: %w", path, err)
	}

	original := string(data)
	fixed, fixes := FixText(original)
	if fixed == original {
		return nil, nil
	}

	if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
		// Fixes not persisted; the caller's batch carries on.
		return nil, fmt.Errorf("adocfix: write %s: %w", path, err)
	}

	for i := range fixes {
		if fixes[i].Location == "" {
			fixes[i].Location = path
		} else {
			fixes[i].Location = path + ":" + fixes[i].Location
		}
	}
	return fixes, nil
}

// FixTree applies FixFile to entry and to every file reachable from it
// through include:: directives. Per-file failures are logged and skipped so
// one unreadable fragment cannot abandon the rest of the tree.
func FixTree(ctx context.Context, entry, baseDir string, cfg Config) ([]Fix, error) {
	cfg.defaults()

	targets, err := includes.FindIncludedFiles(entry, baseDir, cfg.Logger)
	if err != nil {
		return nil, err
	}
	targets = append([]string{entry}, targets...)

	var all []Fix
	for _, path := range targets {
		fixes, err := FixFile(ctx, path, cfg)
		if err != nil {
			// A lock timeout means another converter owns the file and the
			// whole document conversion must be retried, not half-fixed.
			if errors.Is(err, filelock.ErrTimeout) {
				return all, err
			}
			cfg.Logger.Warn("adocfix: fix failed, skipping file", "path", path, "error", err)
			continue
		}
		all = append(all, fixes...)
	}
	return all, nil
}
