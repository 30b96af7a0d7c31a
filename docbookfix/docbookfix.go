// CLAUDE:SUMMARY Repairs DocBook5 XML produced by asciidoctor: placeholder escaping, entity fixes, cell flattening, list-title hoisting.
// Package docbookfix repairs the intermediate DocBook5 XML between the
// asciidoctor and pandoc conversion steps.
//
// It is a short pipeline of independent passes. The first two operate on the
// raw text (they exist precisely because the input may not parse yet); the
// last two rewrite the parsed tree. Every pass degrades non-fatally: on any
// parse failure it returns its input unchanged and logs a warning.
package docbookfix

import (
	"log/slog"
	"strings"

	"github.com/beevik/etree"
)

// Fix describes one applied XML repair.
type Fix struct {
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Repair runs all passes in order over one document's XML text.
func Repair(xml string, logger *slog.Logger) (string, []Fix) {
	if logger == nil {
		logger = slog.Default()
	}

	var all []Fix
	for _, pass := range []func(string, *slog.Logger) (string, []Fix){
		EscapeAnglePlaceholders,
		ReplaceEntities,
		FlattenCellParagraphs,
		HoistListTitles,
	} {
		var fixes []Fix
		xml, fixes = pass(xml, logger)
		all = append(all, fixes...)
	}
	return xml, all
}

// parseTree parses XML into an etree document, nil on failure.
func parseTree(xml string) *etree.Document {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		return nil
	}
	return doc
}

// treeString serializes a document back to text; empty string on failure.
func treeString(doc *etree.Document) string {
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

// FlattenCellParagraphs unwraps a table cell's sole paragraph child into the
// cell itself. Pandoc renders a cell whose only content is one para as a
// block, which breaks pipe-table output; flattened cells convert inline.
// Paragraphs nested deeper (inside lists within the cell) are untouched.
func FlattenCellParagraphs(xml string, logger *slog.Logger) (string, []Fix) {
	doc := parseTree(xml)
	if doc == nil {
		logger.Warn("docbookfix: flatten: XML does not parse, leaving input unchanged")
		return xml, nil
	}

	var fixes []Fix
	for _, entry := range doc.FindElements("//entry") {
		kids := entry.ChildElements()
		if len(kids) != 1 {
			continue
		}
		para := kids[0]
		if para.Tag != "simpara" && para.Tag != "para" {
			continue
		}
		if strings.TrimSpace(entry.Text()) != "" {
			continue
		}

		entry.RemoveChild(para)
		for _, tok := range append([]etree.Token(nil), para.Child...) {
			entry.AddChild(tok)
		}
		fixes = append(fixes, Fix{
			Location:    "entry",
			Description: "flattened sole paragraph inside table cell",
		})
	}
	if len(fixes) == 0 {
		return xml, nil
	}

	out := treeString(doc)
	if out == "" {
		logger.Warn("docbookfix: flatten: serialization failed, leaving input unchanged")
		return xml, nil
	}
	return out, fixes
}

// listTags are the DocBook list elements whose titles pandoc drops.
var listTags = []string{"itemizedlist", "orderedlist", "variablelist"}

// HoistListTitles moves a list's title into a formalpara-shaped sibling
// directly before the list, because the Markdown converter otherwise drops
// list titles entirely.
func HoistListTitles(xml string, logger *slog.Logger) (string, []Fix) {
	doc := parseTree(xml)
	if doc == nil {
		logger.Warn("docbookfix: hoist: XML does not parse, leaving input unchanged")
		return xml, nil
	}

	var fixes []Fix
	for _, tag := range listTags {
		for _, list := range doc.FindElements("//" + tag) {
			title := list.SelectElement("title")
			if title == nil {
				continue
			}
			parent := list.Parent()
			if parent == nil {
				continue
			}

			list.RemoveChild(title)

			formal := etree.NewElement("formalpara")
			formal.AddChild(title)
			formal.CreateElement("para")
			parent.InsertChildAt(list.Index(), formal)

			fixes = append(fixes, Fix{
				Location:    tag,
				Description: "hoisted list title into preceding formalpara",
			})
		}
	}
	if len(fixes) == 0 {
		return xml, nil
	}

	out := treeString(doc)
	if out == "" {
		logger.Warn("docbookfix: hoist: serialization failed, leaving input unchanged")
		return xml, nil
	}
	return out, fixes
}
