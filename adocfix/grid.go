// CLAUDE:SUMMARY Logical 2D grid model for pipe tables: cell extraction, span placement, validation, canonical serialization.
package adocfix

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is one logical table cell. Colspan and Rowspan describe how many grid
// positions the cell occupies starting at its anchor.
type Cell struct {
	Content string
	Colspan int
	Rowspan int
	Format  string // single-letter cell style, "" if none
	Line    int    // source line index the cell was extracted from
}

// slot is one grid position: an anchor Cell, a placeholder covered by a
// spanning Cell, or empty.
type slot struct {
	cell   *Cell
	anchor bool
}

// formatChars are the single-letter AsciiDoc cell styles recognized in a
// boundary prefix.
const formatChars = "adehlmsv"

// cellBoundary describes one recognized boundary in a raw table line.
type cellBoundary struct {
	start, end int // [start,end) covers the whole prefix + pipe
	colspan    int
	rowspan    int
	format     string
}

// findBoundaries scans a raw table line for cell boundaries: plain |, N+|
// (colspan) and N.M+| (colspan.rowspan), each optionally followed by a
// single-letter style. A boundary must sit at line start or after
// whitespace; escaped pipes are content.
func findBoundaries(line string) []cellBoundary {
	var bounds []cellBoundary
	for i := 0; i < len(line); i++ {
		if line[i] != '|' {
			continue
		}
		if i > 0 && line[i-1] == '\\' {
			continue
		}

		start := i
		format := ""
		if start > 0 && strings.IndexByte(formatChars, line[start-1]) >= 0 {
			// Tentative style letter; confirmed only if the rest of the
			// prefix validates below.
			format = string(line[start-1])
			start--
		}

		colspan, rowspan := 1, 1
		if start > 0 && line[start-1] == '+' {
			spanEnd := start - 1
			p := spanEnd
			for p > 0 && (isDigit(line[p-1]) || line[p-1] == '.') {
				p--
			}
			cs, rs, ok := parseSpan(line[p:spanEnd])
			if ok {
				colspan, rowspan = cs, rs
				start = p
			} else if format != "" {
				// N+x| with a bad span: the letter was content, not style.
				format = ""
				start = i
			}
		}

		if start > 0 {
			prev := line[start-1]
			// A boundary sits at line start, after whitespace, or — for a
			// bare pipe only — directly after the previous boundary (empty
			// cell). Anything else is a mid-word pipe, i.e. content.
			if prev != ' ' && prev != '\t' && !(prev == '|' && start == i) {
				continue
			}
		}

		bounds = append(bounds, cellBoundary{
			start: start, end: i + 1,
			colspan: colspan, rowspan: rowspan, format: format,
		})
	}
	return bounds
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseSpan parses "N" or "N.M" span digits (the part before the +).
func parseSpan(s string) (colspan, rowspan int, ok bool) {
	if s == "" {
		return 0, 0, false
	}
	colPart, rowPart, hasRow := strings.Cut(s, ".")
	colspan, rowspan = 1, 1
	if colPart != "" {
		n, err := strconv.Atoi(colPart)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		colspan = n
	}
	if hasRow {
		n, err := strconv.Atoi(rowPart)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		rowspan = n
	}
	return colspan, rowspan, colPart != "" || hasRow
}

// extractCells converts raw table body lines into a flat stream of cells in
// document order. A line with no boundary continues the previous cell's
// content.
func extractCells(body []string, baseLine int) []*Cell {
	var cells []*Cell
	for li, line := range body {
		if strings.TrimSpace(line) == "" {
			continue
		}
		bounds := findBoundaries(line)
		if len(bounds) == 0 {
			if n := len(cells); n > 0 {
				prev := cells[n-1]
				if prev.Content != "" {
					prev.Content += " "
				}
				prev.Content += strings.TrimSpace(line)
			}
			continue
		}
		for bi, b := range bounds {
			contentEnd := len(line)
			if bi+1 < len(bounds) {
				contentEnd = bounds[bi+1].start
			}
			cells = append(cells, &Cell{
				Content: strings.TrimSpace(line[b.end:contentEnd]),
				Colspan: b.colspan,
				Rowspan: b.rowspan,
				Format:  b.format,
				Line:    baseLine + li,
			})
		}
	}
	return cells
}

// placeCells lays a cell stream into a rows × expectedCols grid in row-major
// order. A cell whose span would exceed the remaining row width advances to
// the next row and is placed there in full; spans are never truncated.
func placeCells(cells []*Cell, expectedCols int) ([][]slot, []Fix) {
	var rows [][]slot
	var fixes []Fix

	ensureRow := func(r int) {
		for len(rows) <= r {
			rows = append(rows, make([]slot, expectedCols))
		}
	}

	r, c := 0, 0
	for _, cell := range cells {
		if cell.Colspan > expectedCols {
			fixes = append(fixes, Fix{
				Location:    lineLoc(cell.Line),
				Description: fmt.Sprintf("clamped colspan %d to table width %d", cell.Colspan, expectedCols),
			})
			cell.Colspan = expectedCols
		}

		// Find the anchor position.
		for {
			ensureRow(r)
			if c >= expectedCols {
				r, c = r+1, 0
				continue
			}
			if rows[r][c].cell != nil {
				c++
				continue
			}
			if c+cell.Colspan > expectedCols {
				r, c = r+1, 0
				continue
			}
			break
		}

		for dr := 0; dr < cell.Rowspan; dr++ {
			ensureRow(r + dr)
			for dc := 0; dc < cell.Colspan; dc++ {
				rows[r+dr][c+dc] = slot{cell: cell, anchor: dr == 0 && dc == 0}
			}
		}
		c += cell.Colspan
	}

	// Trim trailing fully-empty rows.
	for len(rows) > 0 {
		last := rows[len(rows)-1]
		empty := true
		for _, s := range last {
			if s.cell != nil {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		rows = rows[:len(rows)-1]
	}

	return rows, fixes
}

// validateGrid fills every remaining empty position with a synthetic 1×1
// empty cell so the grid is fully populated.
func validateGrid(rows [][]slot) []Fix {
	filled := 0
	for r := range rows {
		for c := range rows[r] {
			if rows[r][c].cell == nil {
				rows[r][c] = slot{
					cell:   &Cell{Colspan: 1, Rowspan: 1},
					anchor: true,
				}
				filled++
			}
		}
	}
	if filled == 0 {
		return nil
	}
	return []Fix{{Description: fmt.Sprintf("filled %d missing table cell(s)", filled)}}
}

// spanPrefix re-synthesizes the boundary prefix for a cell.
func spanPrefix(cell *Cell) string {
	var p string
	switch {
	case cell.Colspan > 1 && cell.Rowspan > 1:
		p = fmt.Sprintf("%d.%d+", cell.Colspan, cell.Rowspan)
	case cell.Colspan > 1:
		p = fmt.Sprintf("%d+", cell.Colspan)
	case cell.Rowspan > 1:
		p = fmt.Sprintf("1.%d+", cell.Rowspan)
	}
	return p + cell.Format
}

// serializeGrid emits canonical markup, one row per line. Placeholder
// positions produce no output; content is emitted verbatim, never re-escaped.
func serializeGrid(rows [][]slot) []string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var parts []string
		for _, s := range row {
			if s.cell == nil || !s.anchor {
				continue
			}
			part := spanPrefix(s.cell) + "|"
			if s.cell.Content != "" {
				part += s.cell.Content
			}
			parts = append(parts, part)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}

// reconstructTable runs the full extract → place → validate → serialize
// cycle over one table body.
func reconstructTable(body []string, expectedCols, baseLine int) ([]string, []Fix) {
	cells := extractCells(body, baseLine)
	if len(cells) == 0 {
		return body, nil
	}

	if expectedCols <= 0 {
		// Infer from the first row: the colspan sum of cells sharing the
		// first cell's source line.
		expectedCols = 0
		first := cells[0].Line
		for _, cell := range cells {
			if cell.Line != first {
				break
			}
			expectedCols += cell.Colspan
		}
	}
	if expectedCols <= 0 {
		return body, nil
	}

	rows, fixes := placeCells(cells, expectedCols)
	fixes = append(fixes, validateGrid(rows)...)
	return serializeGrid(rows), fixes
}
