// CLAUDE:SUMMARY Enumerates convertible documentation sources: versioned guides and release notes.
// Package docsource walks a documentation checkout and decides which
// documents belong in a conversion run.
//
// Guides are rooted at master.adoc files. The sibling docinfo.xml carries the
// product version and the guide title; the title, lowercased with spaces
// replaced by underscores, becomes the output directory so converted files
// land at the same path suffix the published documentation uses. Release
// notes follow their own naming scheme and are enumerated separately.
package docsource

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// Descriptor pairs one source document with its conversion target.
type Descriptor struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Title  string `yaml:"title"`
}

// Config controls enumeration. Zero values fall back to the shipped
// defaults, matching how the published RHOSO 18 documentation is laid out.
type Config struct {
	InputDir    string `yaml:"input_dir"`
	OutputDir   string `yaml:"output_dir"`
	DocsVersion string `yaml:"docs_version"`

	// ExcludeTitles drops guides that were replaced, stubbed, or do not
	// apply to the requested version. RemapTitles renames guides whose
	// docinfo title differs from their published URL.
	ExcludeTitles []string          `yaml:"exclude_titles"`
	RemapTitles   map[string]string `yaml:"remap_titles"`

	// ExcludeDirs prunes directory names wherever they appear under
	// InputDir; backup and archival copies hold stale duplicates of
	// current guides.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	Logger *slog.Logger `yaml:"-"`
}

func (c *Config) defaults() {
	if c.DocsVersion == "" {
		c.DocsVersion = "18.0"
	}
	if c.ExcludeTitles == nil {
		c.ExcludeTitles = DefaultExcludeTitles
	}
	if c.RemapTitles == nil {
		c.RemapTitles = DefaultRemapTitles
	}
	if c.ExcludeDirs == nil {
		c.ExcludeDirs = DefaultExcludeDirs
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// DefaultExcludeTitles lists guides that are superseded, empty, or not
// applicable to version 18.
var DefaultExcludeTitles = []string{
	"hardening_red_hat_openstack_services_on_openshift",
	"integrating_openstack_identity_with_external_user_management_services",
	"firewall_rules_for_red_hat_openstack_platform",
	"managing_overcloud_observability",
	"network_planning_(sandbox)",
	"managing_secrets_with_the_key_manager_service",
	"migrating_to_the_ovn_mechanism_driver",
	"deploying_red_hat_openstack_platform_at_scale",
	"deploying_distributed_compute_nodes_with_separate_heat_stacks",
	"installing_ember-csi_on_openshift_container_platform",
	"introduction_to_red_hat_openstack_platform",
	"red_hat_openstack_platform_benchmarking_service",
	"backing_up_and_restoring_the_undercloud_and_control_plane_nodes",
	"configuring_dns_as_a_service",
}

// DefaultRemapTitles renames guides whose docinfo title does not match
// their published URL path.
var DefaultRemapTitles = map[string]string{
	"command_line_interface_(cli)_reference": "command_line_interface_reference",
}

// DefaultExcludeDirs names backup and archival directories whose contents
// duplicate current guides.
var DefaultExcludeDirs = []string{"backup", "backups", "archive", "archived"}

// pruneDir reports whether the walk should skip a directory entirely.
func pruneDir(name string, excluded []string) bool {
	for _, ex := range excluded {
		if name == ex {
			return true
		}
	}
	return false
}

// docinfo holds the fields we need from docinfo.xml. The file has no single
// root element, so callers wrap it before unmarshalling.
type docinfo struct {
	ProductNumber string `xml:"productnumber"`
	Title         string `xml:"title"`
}

// parseDocinfo reads a docinfo.xml, wrapping the content in a synthetic
// root element because the raw file has several top-level elements.
func parseDocinfo(path string) (docinfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return docinfo{}, err
	}
	var d docinfo
	if err := xml.Unmarshal([]byte("<root>"+string(raw)+"</root>"), &d); err != nil {
		return docinfo{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}

// versionsEqual compares product versions semantically, so "18.0" matches
// "18.0.0". Strings semver cannot parse fall back to exact comparison.
func versionsEqual(a, b string) bool {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb) == 0
	}
	return a == b
}

// normalizeTitle turns a docinfo title into its published URL segment.
func normalizeTitle(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// EnumerateDocs walks cfg.InputDir for master.adoc guides and returns the
// ones matching cfg.DocsVersion. Individual defective guides are skipped
// with a warning; only a failure to walk the root is an error.
func EnumerateDocs(cfg Config) ([]Descriptor, error) {
	cfg.defaults()
	log := cfg.Logger

	var docs []Descriptor
	err := filepath.WalkDir(cfg.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == cfg.InputDir {
				return err
			}
			log.Warn("docsource: unreadable entry, skipping", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != cfg.InputDir && pruneDir(d.Name(), cfg.ExcludeDirs) {
				log.Info("docsource: excluded directory, skipping", "path", path)
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() != "master.adoc" {
			return nil
		}

		info := filepath.Join(filepath.Dir(path), "docinfo.xml")
		di, perr := parseDocinfo(info)
		if perr != nil {
			log.Warn("docsource: no usable docinfo.xml, skipping", "doc", path, "error", perr)
			return nil
		}

		if !versionsEqual(di.ProductNumber, cfg.DocsVersion) {
			log.Warn("docsource: version mismatch, skipping",
				"doc", path, "productnumber", di.ProductNumber, "want", cfg.DocsVersion)
			return nil
		}
		if strings.TrimSpace(di.Title) == "" {
			log.Warn("docsource: blank title, skipping", "doc", path)
			return nil
		}

		title := normalizeTitle(di.Title)
		for _, ex := range cfg.ExcludeTitles {
			if title == ex {
				log.Info("docsource: excluded title, skipping", "title", title)
				return nil
			}
		}
		if to, ok := cfg.RemapTitles[title]; ok {
			log.Info("docsource: remapping title", "from", title, "to", to)
			title = to
		}

		docs = append(docs, Descriptor{
			Input:  path,
			Output: filepath.Join(cfg.OutputDir, title, "master.txt"),
			Title:  title,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate docs under %s: %w", cfg.InputDir, err)
	}
	return docs, nil
}

// EnumerateRelnotes finds release-information assemblies for cfg.DocsVersion
// anywhere under cfg.InputDir. Files whose minor version the name pattern
// cannot yield are skipped with a warning.
func EnumerateRelnotes(cfg Config) ([]Descriptor, error) {
	cfg.defaults()
	log := cfg.Logger

	ver := strings.ReplaceAll(cfg.DocsVersion, ".", "-")
	dirPat := ver + "-[0-9]*"
	filePat := "assembly_release-information-" + ver + "-[0-9]*.adoc"
	minorRe := regexp.MustCompile(regexp.QuoteMeta(ver) + `-\d+/.*-(\d+)\.adoc$`)

	var docs []Descriptor
	err := filepath.WalkDir(cfg.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == cfg.InputDir {
				return err
			}
			log.Warn("docsource: unreadable entry, skipping", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != cfg.InputDir && pruneDir(d.Name(), cfg.ExcludeDirs) {
				log.Info("docsource: excluded directory, skipping", "path", path)
				return fs.SkipDir
			}
			return nil
		}
		if ok, _ := filepath.Match(filePat, d.Name()); !ok {
			return nil
		}
		if ok, _ := filepath.Match(dirPat, filepath.Base(filepath.Dir(path))); !ok {
			return nil
		}

		m := minorRe.FindStringSubmatch(filepath.ToSlash(path))
		if m == nil {
			log.Warn("docsource: cannot extract minor version, skipping", "path", path)
			return nil
		}
		name := ver + "-" + m[1]
		docs = append(docs, Descriptor{
			Input:  path,
			Output: filepath.Join(cfg.OutputDir, "release-notes", name+".txt"),
			Title:  name,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate release notes under %s: %w", cfg.InputDir, err)
	}
	return docs, nil
}
