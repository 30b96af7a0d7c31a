// CLAUDE:SUMMARY Renumbers, relocates, and spaces callout markers and their definition lines around listing blocks.
package adocfix

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	calloutMarkerRe = regexp.MustCompile(`<(\d+)>`)
	calloutDefRe    = regexp.MustCompile(`^<(\d+)>\s`)
)

// isBlockDelim reports whether line is a listing-block delimiter.
func isBlockDelim(line string) bool {
	return strings.TrimRight(line, " \t") == "----"
}

// isConditional reports whether line opens or closes a conditional section
// that may wrap callout definitions.
func isConditional(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "ifeval::") || strings.HasPrefix(t, "endif::")
}

// RenumberCallouts renumbers <N> markers inside each ----‑delimited listing
// block sequentially from 1 in order of first appearance, each block starting
// fresh. Definition lines outside blocks are remapped positionally: the i-th
// definition belonging to a block takes that block's i-th new number,
// regardless of its original label.
func RenumberCallouts(lines []string) ([]string, []Fix) {
	out := slices.Clone(lines)
	var fixes []Fix

	// In-block markers first; remember how many distinct callouts each
	// block declared so definitions can be matched up afterwards.
	var blockCounts []int
	inBlock := false
	var mapping map[string]int

	for i, line := range out {
		if isBlockDelim(line) {
			if inBlock {
				blockCounts = append(blockCounts, len(mapping))
			} else {
				mapping = make(map[string]int)
			}
			inBlock = !inBlock
			continue
		}
		if !inBlock {
			continue
		}
		renumbered := calloutMarkerRe.ReplaceAllStringFunc(line, func(m string) string {
			orig := m[1 : len(m)-1]
			n, seen := mapping[orig]
			if !seen {
				n = len(mapping) + 1
				mapping[orig] = n
			}
			return "<" + strconv.Itoa(n) + ">"
		})
		if renumbered != line {
			out[i] = renumbered
			fixes = append(fixes, Fix{
				Location:    lineLoc(i),
				Description: "renumbered callout markers in listing block",
			})
		}
	}
	if inBlock {
		// Unterminated block still counts; its definitions follow at EOF.
		blockCounts = append(blockCounts, len(mapping))
	}

	// Definitions, positionally: one block's worth per block in file order.
	var queue []int
	for _, n := range blockCounts {
		for j := 1; j <= n; j++ {
			queue = append(queue, j)
		}
	}

	inBlock = false
	for i, line := range out {
		if isBlockDelim(line) {
			inBlock = !inBlock
			continue
		}
		if inBlock || len(queue) == 0 {
			continue
		}
		m := calloutDefRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		want := queue[0]
		queue = queue[1:]
		if m[1] == strconv.Itoa(want) {
			continue
		}
		out[i] = "<" + strconv.Itoa(want) + ">" + line[len(m[1])+2:]
		fixes = append(fixes, Fix{
			Location:    lineLoc(i),
			Description: fmt.Sprintf("renumbered callout definition <%s> to <%d>", m[1], want),
		})
	}

	return out, fixes
}

// defUnit is a contiguous run of callout definition lines, conditional
// wrapper lines included.
type defUnit struct {
	start, end int // inclusive line range
}

// findDefUnits locates definition runs outside listing blocks. A run starts
// at a definition line (or at an ifeval:: line directly wrapping one) and
// extends over consecutive definition and conditional lines.
func findDefUnits(lines []string) []defUnit {
	var units []defUnit
	inBlock := false
	i := 0
	for i < len(lines) {
		line := lines[i]
		if isBlockDelim(line) {
			inBlock = !inBlock
			i++
			continue
		}
		if inBlock {
			i++
			continue
		}

		isStart := calloutDefRe.MatchString(line) ||
			(isConditional(line) && i+1 < len(lines) && calloutDefRe.MatchString(lines[i+1]))
		if !isStart {
			i++
			continue
		}

		start := i
		hasDef := false
		for i < len(lines) && (calloutDefRe.MatchString(lines[i]) || isConditional(lines[i])) {
			if calloutDefRe.MatchString(lines[i]) {
				hasDef = true
			}
			i++
		}
		if hasDef {
			units = append(units, defUnit{start: start, end: i - 1})
		}
	}
	return units
}

// calloutBlockEnds returns the closing-delimiter index of every listing
// block that contains at least one callout marker, in file order.
func calloutBlockEnds(lines []string) []int {
	var ends []int
	inBlock := false
	hasCallout := false
	for i, line := range lines {
		if isBlockDelim(line) {
			if inBlock && hasCallout {
				ends = append(ends, i)
			}
			inBlock = !inBlock
			hasCallout = false
			continue
		}
		if inBlock && calloutMarkerRe.MatchString(line) {
			hasCallout = true
		}
	}
	return ends
}

// PlaceCalloutDefinitions moves each block's definition run to directly
// after the block, followed by a blank line. Conditional wrapper lines move
// with their definitions. Exactly one definition run is consumed per callout
// block, matched in file order.
func PlaceCalloutDefinitions(lines []string) ([]string, []Fix) {
	ends := calloutBlockEnds(lines)
	units := findDefUnits(lines)
	if len(ends) == 0 || len(units) == 0 {
		return lines, nil
	}

	skip := make(map[int]bool)
	insertAfter := make(map[int][]string)
	var fixes []Fix

	for k, end := range ends {
		if k >= len(units) {
			break
		}
		u := units[k]
		if u.start == end+1 {
			continue // already adjacent
		}
		moved := make([]string, 0, u.end-u.start+1)
		for i := u.start; i <= u.end; i++ {
			skip[i] = true
			moved = append(moved, lines[i])
		}
		insertAfter[end] = moved
		fixes = append(fixes, Fix{
			Location:    lineLoc(u.start),
			Description: fmt.Sprintf("moved %d callout definition line(s) after their listing block", len(moved)),
		})
	}
	if len(fixes) == 0 {
		return lines, nil
	}

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if skip[i] {
			continue
		}
		out = append(out, line)
		if moved, ok := insertAfter[i]; ok {
			out = append(out, moved...)
			out = append(out, "")
		}
	}
	return out, fixes
}

// SpaceCalloutDefinitions inserts a blank line after every definition run
// that is not already followed by one.
func SpaceCalloutDefinitions(lines []string) ([]string, []Fix) {
	units := findDefUnits(lines)
	if len(units) == 0 {
		return lines, nil
	}

	needBlank := make(map[int]bool)
	var fixes []Fix
	for _, u := range units {
		next := u.end + 1
		if next < len(lines) && strings.TrimSpace(lines[next]) != "" {
			needBlank[u.end] = true
			fixes = append(fixes, Fix{
				Location:    lineLoc(u.end),
				Description: "inserted blank line after callout definitions",
			})
		}
	}
	if len(fixes) == 0 {
		return lines, nil
	}

	out := make([]string, 0, len(lines)+len(needBlank))
	for i, line := range lines {
		out = append(out, line)
		if needBlank[i] {
			out = append(out, "")
		}
	}
	return out, fixes
}
