// CLAUDE:SUMMARY Discovers and optionally inlines include:: directives across an AsciiDoc document graph.
// Package includes walks the include:: graph of an AsciiDoc document.
//
// Discovery is a worklist traversal with a visited set keyed on resolved
// absolute paths, so cyclic graphs terminate and deep graphs never exhaust
// the stack. Include paths resolve relative to the configured base directory
// first, falling back to the directory of the file containing the directive.
// An include that resolves to no readable file is logged and skipped; a
// missing fragment is a per-entry defect, never a reason to abandon the walk.
package includes

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// includeRe matches an include directive at the start of a line:
// include::some/path.adoc[optional,attrs].
var includeRe = regexp.MustCompile(`^include::([^\[]+)\[[^\]]*\]`)

// FindIncludedFiles returns the absolute paths of every file reachable from
// entry through include:: directives, entry excluded. Order follows the
// worklist, not document order; callers that need determinism should sort.
func FindIncludedFiles(entry, baseDir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entryAbs, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("includes: resolve entry %s: %w", entry, err)
	}

	visited := map[string]bool{entryAbs: true}
	worklist := []string{entryAbs}
	var found []string

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]

		data, err := os.ReadFile(current)
		if err != nil {
			logger.Warn("includes: unreadable file, skipping", "path", current, "error", err)
			continue
		}

		for _, line := range strings.Split(string(data), "\n") {
			target, ok := parseDirective(line)
			if !ok {
				continue
			}
			resolved := resolve(target, baseDir, filepath.Dir(current))
			if resolved == "" {
				logger.Warn("includes: unresolvable include, skipping",
					"directive", target, "in", current)
				continue
			}
			if visited[resolved] {
				continue
			}
			visited[resolved] = true
			found = append(found, resolved)
			worklist = append(worklist, resolved)
		}
	}
	return found, nil
}

// Resolve inlines every include:: directive reachable from entry and returns
// the materialized document. Each inclusion is wrapped in begin/end marker
// comments so block boundaries survive whole-tree preprocessing. Cycles and
// unresolvable includes degrade to the directive line left in place.
func Resolve(entry, baseDir string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entryAbs, err := filepath.Abs(entry)
	if err != nil {
		return "", fmt.Errorf("includes: resolve entry %s: %w", entry, err)
	}
	data, err := os.ReadFile(entryAbs)
	if err != nil {
		return "", fmt.Errorf("includes: read entry: %w", err)
	}

	visited := map[string]bool{entryAbs: true}
	return inline(string(data), entryAbs, baseDir, visited, logger), nil
}

// frame is one partially-emitted file on the inlining stack.
type frame struct {
	lines []string
	next  int
	path  string
	end   string // end marker emitted when the frame is exhausted, "" for entry
}

// inline materializes the include graph with an explicit stack instead of
// recursion, so documentation trees nesting includes thousands deep cannot
// exhaust the goroutine stack.
func inline(content, entryPath, baseDir string, visited map[string]bool, logger *slog.Logger) string {
	var sb strings.Builder
	stack := []*frame{{lines: strings.Split(content, "\n"), path: entryPath}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.next >= len(f.lines) {
			stack = stack[:len(stack)-1]
			if f.end != "" {
				sb.WriteString(f.end)
				sb.WriteByte('\n')
			}
			continue
		}
		line := f.lines[f.next]
		f.next++

		target, ok := parseDirective(line)
		if !ok {
			sb.WriteString(line)
			sb.WriteByte('\n')
			continue
		}

		resolved := resolve(target, baseDir, filepath.Dir(f.path))
		if resolved == "" || visited[resolved] {
			if resolved == "" {
				logger.Warn("includes: unresolvable include, leaving directive",
					"directive", target, "in", f.path)
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
			continue
		}
		visited[resolved] = true

		data, err := os.ReadFile(resolved)
		if err != nil {
			logger.Warn("includes: unreadable include, leaving directive",
				"path", resolved, "error", err)
			sb.WriteString(line)
			sb.WriteByte('\n')
			continue
		}

		sb.WriteString("// include-begin: " + target + "\n")
		stack = append(stack, &frame{
			lines: strings.Split(strings.TrimRight(string(data), "\n"), "\n"),
			path:  resolved,
			end:   "// include-end: " + target,
		})
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// parseDirective extracts the include target from a line, if any.
func parseDirective(line string) (string, bool) {
	m := includeRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// resolve tries baseDir first, then the including file's directory. Returns
// "" when neither candidate exists.
func resolve(target, baseDir, currentDir string) string {
	candidates := []string{}
	if baseDir != "" {
		candidates = append(candidates, filepath.Join(baseDir, target))
	}
	candidates = append(candidates, filepath.Join(currentDir, target))

	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return abs
		}
	}
	return ""
}
