// CLAUDE:SUMMARY Text-level XML repairs: angle-bracket placeholder escaping and entity normalization.
package docbookfix

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// placeholderRe matches key=value-shaped placeholder text in angle brackets,
// e.g. <region=us-east> or <controller-0=up>. It is deliberately narrow:
// real XML tags carry whitespace before any attribute, and attribute values
// are quoted, so requiring an unquoted, unspaced key=value body keeps actual
// markup out of reach.
var placeholderRe = regexp.MustCompile(`<([A-Za-z_][\w.-]*=[^<>"'\s]+)>`)

// EscapeAnglePlaceholders escapes literal <key=value> placeholders that
// asciidoctor passed through verbatim and that would otherwise make the XML
// unparseable.
func EscapeAnglePlaceholders(xml string, _ *slog.Logger) (string, []Fix) {
	var fixes []Fix
	out := placeholderRe.ReplaceAllStringFunc(xml, func(m string) string {
		body := m[1 : len(m)-1]
		fixes = append(fixes, Fix{
			Description: fmt.Sprintf("escaped angle-bracket placeholder %q", m),
		})
		return "&lt;" + body + "&gt;"
	})
	return out, fixes
}

// namedEntities maps HTML-named entities that XML parsers reject onto their
// numeric character references. Pandoc and asciidoctor both emit these.
var namedEntities = map[string]string{
	"&nbsp;":   "&#160;",
	"&verbar;": "&#124;",
	"&lsqb;":   "&#91;",
	"&rsqb;":   "&#93;",
	"&plus;":   "&#43;",
	"&num;":    "&#35;",
	"&ast;":    "&#42;",
	"&sol;":    "&#47;",
	"&bsol;":   "&#92;",
	"&lcub;":   "&#123;",
	"&rcub;":   "&#125;",
	"&mdash;":  "&#8212;",
	"&ndash;":  "&#8211;",
	"&hellip;": "&#8230;",
	"&copy;":   "&#169;",
	"&reg;":    "&#174;",
	"&trade;":  "&#8482;",
}

// bareEntityRe finds named entities whose trailing semicolon was lost. The
// alternation lists only names that cannot be a prefix of ordinary prose
// following an ampersand, so the repair is unambiguous.
var bareEntityRe = regexp.MustCompile(`&(nbsp|verbar|lsqb|rsqb|mdash|ndash|hellip|copy|reg|trade)([^;a-zA-Z0-9]|$)`)

// ReplaceEntities rewrites HTML-named entities as numeric character
// references and restores missing entity semicolons.
func ReplaceEntities(xml string, _ *slog.Logger) (string, []Fix) {
	var fixes []Fix

	out := bareEntityRe.ReplaceAllString(xml, "&$1;$2")
	if out != xml {
		fixes = append(fixes, Fix{Description: "restored missing entity semicolons"})
	}

	names := make([]string, 0, len(namedEntities))
	for name := range namedEntities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !strings.Contains(out, name) {
			continue
		}
		numeric := namedEntities[name]
		out = strings.ReplaceAll(out, name, numeric)
		fixes = append(fixes, Fix{
			Description: fmt.Sprintf("replaced entity %s with %s", name, numeric),
		})
	}
	return out, fixes
}
