// CLAUDE:SUMMARY Synthesizes a [source,<lang>] attribute line for callout-bearing listing blocks that lack one.
package adocfix

import (
	"fmt"
	"sort"
	"strings"
)

// InsertSourceDesignation gives every ----‑delimited block that contains a
// callout marker but no [source,...] or [listing...] attribute line a
// synthesized [source,<lang>] line, with the language guessed from the block
// body. When a [subs=...] line already precedes the block it is rewritten in
// place to [source,<lang>,subs=...] instead of adding a second attribute line.
func InsertSourceDesignation(lines []string) ([]string, []Fix) {
	type edit struct {
		idx     int
		replace string // non-empty: rewrite line idx
		insert  string // non-empty: insert before line idx
		fix     Fix
	}
	var edits []edit

	inBlock := false
	blockStart := -1
	var body []string

	for i, line := range lines {
		if !isBlockDelim(line) {
			if inBlock {
				body = append(body, line)
			}
			continue
		}
		if !inBlock {
			inBlock = true
			blockStart = i
			body = body[:0]
			continue
		}
		inBlock = false

		hasCallout := false
		for _, b := range body {
			if calloutMarkerRe.MatchString(b) {
				hasCallout = true
				break
			}
		}
		if !hasCallout {
			continue
		}

		var prev string
		if blockStart > 0 {
			prev = strings.TrimSpace(lines[blockStart-1])
		}
		switch {
		case strings.HasPrefix(prev, "[source") || strings.HasPrefix(prev, "[listing"):
			// Already designated.
		case strings.HasPrefix(prev, "[subs="):
			lang := GuessLanguage(body)
			rewritten := "[source," + lang + "," + strings.TrimPrefix(prev, "[")
			edits = append(edits, edit{
				idx:     blockStart - 1,
				replace: rewritten,
				fix: Fix{
					Location:    lineLoc(blockStart - 1),
					Description: fmt.Sprintf("rewrote subs attribute to source designation (%s)", lang),
				},
			})
		default:
			lang := GuessLanguage(body)
			edits = append(edits, edit{
				idx:    blockStart,
				insert: "[source," + lang + "]",
				fix: Fix{
					Location:    lineLoc(blockStart),
					Description: fmt.Sprintf("inserted source designation (%s) for callout block", lang),
				},
			})
		}
	}

	if len(edits) == 0 {
		return lines, nil
	}

	sort.Slice(edits, func(a, b int) bool { return edits[a].idx < edits[b].idx })

	out := make([]string, 0, len(lines)+len(edits))
	var fixes []Fix
	e := 0
	for i, line := range lines {
		for e < len(edits) && edits[e].idx == i {
			if edits[e].insert != "" {
				out = append(out, edits[e].insert)
			} else {
				line = edits[e].replace
			}
			fixes = append(fixes, edits[e].fix)
			e++
		}
		out = append(out, line)
	}
	return out, fixes
}
