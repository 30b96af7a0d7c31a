// CLAUDE:SUMMARY Table repair pass: line-level pre-repairs plus grid reconstruction for every |=== table.
package adocfix

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	tableDelimRe = regexp.MustCompile(`^\|={3,}$`)
	colsAttrRe   = regexp.MustCompile(`\[[^\]]*cols=(?:"([^"]*)"|'([^']*)'|([^,\]]+))`)
	colSpecRe    = regexp.MustCompile(`^(\d+)\*`)
)

func isTableDelim(line string) bool {
	return tableDelimRe.MatchString(strings.TrimSpace(line))
}

// colsFromAttr derives the declared column count from an attribute line such
// as [cols="1,2a,3"] or [cols=3*,options="header"]. Returns 0 when the line
// declares nothing.
func colsFromAttr(line string) int {
	m := colsAttrRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0
	}
	spec := m[1]
	if spec == "" {
		spec = m[2]
	}
	if spec == "" {
		spec = m[3]
	}
	if spec == "" {
		return 0
	}

	count := 0
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if rep := colSpecRe.FindStringSubmatch(part); rep != nil {
			n, _ := strconv.Atoi(rep[1])
			count += n
			continue
		}
		count++
	}
	return count
}

// FixTables repairs every |=== table in the document: line-level pre-repairs
// (stray pipes, lost leading pipes, split rows, empty and unclosed tables)
// followed by grid reconstruction with span resolution.
func FixTables(lines []string) ([]string, []Fix) {
	var out []string
	var fixes []Fix

	i := 0
	for i < len(lines) {
		line := lines[i]
		if !isTableDelim(line) {
			out = append(out, line)
			i++
			continue
		}

		// Find the closing delimiter.
		j := i + 1
		for j < len(lines) && !isTableDelim(lines[j]) {
			j++
		}
		closed := j < len(lines)

		attr := ""
		if len(out) > 0 {
			attr = out[len(out)-1]
		}
		expectedCols := colsFromAttr(attr)

		body := lines[i+1 : j]
		newBody, bodyFixes := repairTableBody(body, expectedCols, i+1)

		out = append(out, line)
		out = append(out, newBody...)
		if closed {
			out = append(out, lines[j])
		} else {
			out = append(out, strings.TrimSpace(line))
			fixes = append(fixes, Fix{
				Location:    lineLoc(len(lines) - 1),
				Description: "closed unclosed table",
			})
		}
		fixes = append(fixes, bodyFixes...)

		if closed {
			i = j + 1
		} else {
			i = j
		}
	}

	return out, fixes
}

// repairTableBody applies the pre-pass line repairs and then reconstructs
// the body through the grid model. baseLine is the document index of the
// first body line, for fix locations.
func repairTableBody(body []string, expectedCols, baseLine int) ([]string, []Fix) {
	var fixes []Fix
	work := make([]string, len(body))
	copy(work, body)

	// Strip stray lone pipes and blank lines directly before the closing
	// delimiter.
	for len(work) > 0 {
		last := strings.TrimSpace(work[len(work)-1])
		if last != "" && last != "|" {
			break
		}
		if last == "|" {
			fixes = append(fixes, Fix{
				Location:    lineLoc(baseLine + len(work) - 1),
				Description: "removed stray | before table end",
			})
		}
		work = work[:len(work)-1]
	}

	// Empty table: synthesize one placeholder row.
	if len(work) == 0 {
		return []string{"|"}, append(fixes, Fix{
			Location:    lineLoc(baseLine),
			Description: "inserted placeholder row into empty table",
		})
	}

	// Restore a leading | lost from a row-start line after a blank line.
	for k := 1; k < len(work); k++ {
		if strings.TrimSpace(work[k-1]) != "" {
			continue
		}
		t := strings.TrimSpace(work[k])
		if t == "" || strings.HasPrefix(t, "|") || strings.HasPrefix(t, "//") {
			continue
		}
		if b := findBoundaries(t); len(b) > 0 && b[0].start == 0 {
			continue // proper row start with a span prefix, e.g. "2+|..."
		}
		work[k] = "|" + work[k]
		fixes = append(fixes, Fix{
			Location:    lineLoc(baseLine + k),
			Description: "restored missing leading | on table row",
		})
	}

	// Merge a run of exactly two single-cell lines when the table declares
	// two columns; longer runs are separate rows, not a split row.
	if expectedCols == 2 {
		work, fixes = mergeSplitRows(work, fixes, baseLine)
	}

	// Header convention: first row followed by a blank line.
	headerGap := len(work) >= 2 && strings.TrimSpace(work[0]) != "" && strings.TrimSpace(work[1]) == ""

	rebuilt, gridFixes := reconstructTable(work, expectedCols, baseLine)
	fixes = append(fixes, gridFixes...)

	if headerGap && len(rebuilt) >= 2 {
		rebuilt = append([]string{rebuilt[0], ""}, rebuilt[1:]...)
	}

	if !equalLines(rebuilt, body) && len(fixes) == 0 {
		fixes = append(fixes, Fix{
			Location:    lineLoc(baseLine),
			Description: "normalized table layout",
		})
	}
	return rebuilt, fixes
}

// mergeSplitRows joins two consecutive single-cell lines into one row. Only
// a run of exactly two is merged: longer runs are the one-cell-per-line
// style, not a broken row.
func mergeSplitRows(work []string, fixes []Fix, baseLine int) ([]string, []Fix) {
	isSingleCell := func(line string) bool {
		t := strings.TrimSpace(line)
		return strings.HasPrefix(t, "|") && len(findBoundaries(t)) == 1
	}

	var out []string
	k := 0
	for k < len(work) {
		if !isSingleCell(work[k]) {
			out = append(out, work[k])
			k++
			continue
		}
		run := 1
		for k+run < len(work) && isSingleCell(work[k+run]) {
			run++
		}
		if run == 2 {
			merged := strings.TrimSpace(work[k]) + " " + strings.TrimSpace(work[k+1])
			out = append(out, merged)
			fixes = append(fixes, Fix{
				Location:    lineLoc(baseLine + k),
				Description: "merged split table row",
			})
			k += 2
			continue
		}
		out = append(out, work[k:k+run]...)
		k += run
	}
	return out, fixes
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
