// CLAUDE:SUMMARY Orchestrates one document's conversion: fix AsciiDoc, asciidoctor to DocBook, repair XML, pandoc to Markdown, fix tables.
// Package convert drives the document conversion pipeline.
//
// One document travels: AsciiDoc fixes over its include graph, asciidoctor
// to DocBook5 XML, XML repairs, pandoc to Markdown, Markdown table fixes,
// final write. The external tools run behind a Runner so the pipeline is
// testable without asciidoctor and pandoc installed.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazyhaar/adoctext/adocfix"
	"github.com/hazyhaar/adoctext/docbookfix"
	"github.com/hazyhaar/adoctext/mdfix"
)

// Runner executes an external tool and captures its output streams.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs tools via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// ToolError reports an external tool failure with enough context to
// reproduce the invocation.
type ToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s %s: %v: %s",
		e.Tool, strings.Join(e.Args, " "), e.Err, strings.TrimSpace(e.Stderr))
}

func (e *ToolError) Unwrap() error { return e.Err }

// FixRecord is one applied fix, tagged with the pipeline stage it came from.
type FixRecord struct {
	File        string `json:"file"`
	Stage       string `json:"stage"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Result describes one successful conversion.
type Result struct {
	Input  string      `json:"input"`
	Output string      `json:"output"`
	Fixes  []FixRecord `json:"fixes"`
}

// Config holds converter settings.
type Config struct {
	AsciidoctorBin string `yaml:"asciidoctor_bin"`
	PandocBin      string `yaml:"pandoc_bin"`

	// AttributesFile lists asciidoctor attributes, one key=value per line;
	// blank lines and #-comments are ignored.
	AttributesFile string `yaml:"attributes_file"`

	// Filters names pandoc filter scripts run during the DocBook to
	// Markdown step, in order.
	Filters []string `yaml:"filters"`

	LockTimeout time.Duration `yaml:"lock_timeout"`
	LockPoll    time.Duration `yaml:"lock_poll"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.AsciidoctorBin == "" {
		c.AsciidoctorBin = "asciidoctor"
	}
	if c.PandocBin == "" {
		c.PandocBin = "pandoc"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter converts AsciiDoc documents to plain Markdown text.
type Converter struct {
	cfg Config

	// Runner defaults to ExecRunner; tests substitute a fake.
	Runner Runner
}

// New returns a Converter using the real external tools.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{cfg: cfg, Runner: ExecRunner{}}
}

// attributeArgs reads the attributes file into asciidoctor -a arguments.
func (c *Converter) attributeArgs() ([]string, error) {
	if c.cfg.AttributesFile == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(c.cfg.AttributesFile)
	if err != nil {
		return nil, fmt.Errorf("read attributes file: %w", err)
	}
	var args []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args = append(args, "-a", line)
	}
	return args, nil
}

// Convert runs the full pipeline for one document. The returned Result
// carries every fix applied along the way. On a pandoc failure the repaired
// intermediate XML is dumped beside the intended output for inspection.
func (c *Converter) Convert(ctx context.Context, input, output string) (Result, error) {
	res := Result{Input: input, Output: output}
	log := c.cfg.Logger
	baseDir := filepath.Dir(input)

	adocFixes, err := adocfix.FixTree(ctx, input, baseDir, adocfix.Config{
		LockTimeout: c.cfg.LockTimeout,
		LockPoll:    c.cfg.LockPoll,
		Logger:      log,
	})
	for _, f := range adocFixes {
		res.Fixes = append(res.Fixes, FixRecord{
			File: input, Stage: "adoc", Location: f.Location, Description: f.Description,
		})
	}
	if err != nil {
		return res, fmt.Errorf("fix %s: %w", input, err)
	}

	tmp, err := os.MkdirTemp("", "adoctext-*")
	if err != nil {
		return res, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)
	xmlPath := filepath.Join(tmp, "doc.xml")

	// Private footnotes leak reviewer annotations into published text.
	args := []string{"-b", "docbook5", "-B", baseDir, "-a", "private-footnotes!"}
	attrs, err := c.attributeArgs()
	if err != nil {
		return res, err
	}
	args = append(args, attrs...)
	args = append(args, "-o", xmlPath, input)
	if _, stderr, err := c.Runner.Run(ctx, c.cfg.AsciidoctorBin, args...); err != nil {
		return res, &ToolError{Tool: c.cfg.AsciidoctorBin, Args: args, Stderr: stderr, Err: err}
	}

	rawXML, err := os.ReadFile(xmlPath)
	if err != nil {
		return res, fmt.Errorf("read intermediate XML: %w", err)
	}
	repaired, xmlFixes := docbookfix.Repair(string(rawXML), log)
	for _, f := range xmlFixes {
		res.Fixes = append(res.Fixes, FixRecord{
			File: input, Stage: "docbook", Location: f.Location, Description: f.Description,
		})
	}
	if err := os.WriteFile(xmlPath, []byte(repaired), 0o644); err != nil {
		return res, fmt.Errorf("write repaired XML: %w", err)
	}

	pandocArgs := []string{"-f", "docbook", "-t", "markdown_strict+pipe_tables", "--wrap=preserve"}
	for _, f := range c.cfg.Filters {
		pandocArgs = append(pandocArgs, "--filter", f)
	}
	pandocArgs = append(pandocArgs, xmlPath)
	markdown, stderr, err := c.Runner.Run(ctx, c.cfg.PandocBin, pandocArgs...)
	if err != nil {
		c.dumpDebugXML(output, repaired)
		return res, &ToolError{Tool: c.cfg.PandocBin, Args: pandocArgs, Stderr: stderr, Err: err}
	}

	fixed, mdFixes := mdfix.FixHTMLTables(markdown, log)
	for _, f := range mdFixes {
		res.Fixes = append(res.Fixes, FixRecord{
			File: input, Stage: "markdown", Location: f.Location, Description: f.Description,
		})
	}

	if err := writeAtomic(output, []byte(fixed)); err != nil {
		return res, fmt.Errorf("write %s: %w", output, err)
	}
	log.Info("converted document", "input", input, "output", output, "fixes", len(res.Fixes))
	return res, nil
}

// dumpDebugXML leaves the repaired intermediate XML next to the intended
// output so a failed pandoc run can be replayed by hand. Best effort.
func (c *Converter) dumpDebugXML(output, xml string) {
	stem := strings.TrimSuffix(output, filepath.Ext(output))
	path := stem + "_debug.xml"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		c.cfg.Logger.Warn("could not write debug XML", "path", path, "error", err)
		return
	}
	c.cfg.Logger.Warn("pandoc failed, intermediate XML kept", "path", path)
}

// writeAtomic writes via a temp file and rename so readers never see a
// partial output.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
