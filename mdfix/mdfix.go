// CLAUDE:SUMMARY Rewrites raw HTML tables left in pandoc's Markdown output as pipe tables.
// Package mdfix cleans up the Markdown that pandoc emits. Pandoc falls back
// to raw HTML for tables it cannot express as pipe tables (after the DocBook
// repairs that is rare, but spanned or deeply nested tables still trigger
// it), and raw HTML is noise for an embedding pipeline.
package mdfix

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"golang.org/x/net/html"
)

// Fix describes one applied Markdown repair.
type Fix struct {
	Location    string `json:"location"`
	Description string `json:"description"`
}

// tableRe locates raw HTML table blocks. Non-greedy, so nested tables are
// not handled; pandoc does not emit them.
var tableRe = regexp.MustCompile(`(?is)<table\b.*?</table>`)

// tagRe strips markup when the Markdown converter cannot handle a cell.
var tagRe = regexp.MustCompile(`<[^>]*>`)

var cellConv = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// FixHTMLTables replaces every raw HTML table in md with an equivalent
// Markdown pipe table. Tables that fail to parse are left in place with a
// warning; the rest of the document is never touched.
func FixHTMLTables(md string, logger *slog.Logger) (string, []Fix) {
	if logger == nil {
		logger = slog.Default()
	}

	var fixes []Fix
	n := 0
	out := tableRe.ReplaceAllStringFunc(md, func(block string) string {
		n++
		rows, err := parseHTMLTable(block)
		if err != nil || len(rows) == 0 {
			logger.Warn("mdfix: leaving unparseable HTML table in place",
				"table", n, "error", err)
			return block
		}
		fixes = append(fixes, Fix{
			Location:    fmt.Sprintf("table %d", n),
			Description: fmt.Sprintf("converted HTML table to pipe table (%d rows)", len(rows)),
		})
		return renderPipeTable(rows)
	})
	return out, fixes
}

// parseHTMLTable walks the table's tags, collecting cell contents row by
// row. Rows found inside a thead sort before body rows regardless of their
// position in the source, so the pipe-table header always comes out first.
func parseHTMLTable(block string) ([][]string, error) {
	z := html.NewTokenizer(strings.NewReader(block))

	var headRows, bodyRows [][]string
	var row []string
	var cell strings.Builder
	inCell := false
	inHead := false

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			return nil, z.Err()
		}
		raw := string(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "thead":
				inHead = true
			case "tr":
				row = []string{}
			case "td", "th":
				inCell = true
				cell.Reset()
			default:
				if inCell {
					cell.WriteString(raw)
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "td", "th":
				if inCell {
					row = append(row, renderCell(cell.String()))
					inCell = false
				}
			case "tr":
				if row != nil {
					if inHead {
						headRows = append(headRows, row)
					} else {
						bodyRows = append(bodyRows, row)
					}
					row = nil
				}
			case "thead":
				inHead = false
			default:
				if inCell {
					cell.WriteString(raw)
				}
			}
		case html.TextToken:
			if inCell {
				cell.WriteString(raw)
			}
		}
	}
	return append(headRows, bodyRows...), nil
}

// renderCell converts one cell's inner HTML to inline Markdown.
func renderCell(inner string) string {
	text, err := cellConv.ConvertString(inner)
	if err != nil {
		text = tagRe.ReplaceAllString(inner, " ")
	}
	// Pipe tables are single-line per row.
	text = strings.Join(strings.Fields(text), " ")
	return strings.ReplaceAll(text, "|", `\|`)
}

// renderPipeTable serializes rows as a Markdown pipe table. Pipe tables
// require exactly one header row, so the first row serves as the header
// whether or not the HTML marked one.
func renderPipeTable(rows [][]string) string {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}

	var b strings.Builder
	writeRow := func(r []string) {
		b.WriteString("|")
		for c := 0; c < cols; c++ {
			v := ""
			if c < len(r) {
				v = r[c]
			}
			b.WriteString(" " + v + " |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for c := 0; c < cols; c++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range rows[1:] {
		writeRow(r)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
