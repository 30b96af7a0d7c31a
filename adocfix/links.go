// CLAUDE:SUMMARY Wraps bracket-containing link text in pass:[] so asciidoctor does not misparse nested brackets.
package adocfix

import "strings"

// EscapeLinkBrackets rewrites link:URL[text] constructs whose text contains
// a literal [ or ] into link:URL[pass:[text]]. Without the pass macro the
// compiler cuts the link text at the first inner bracket. Scanning is
// non-overlapping, left to right; already-wrapped text is left alone.
func EscapeLinkBrackets(lines []string) ([]string, []Fix) {
	var fixes []Fix
	out := make([]string, len(lines))
	for i, line := range lines {
		fixed, changed := escapeLinkLine(line)
		out[i] = fixed
		if changed {
			fixes = append(fixes, Fix{
				Location:    lineLoc(i),
				Description: "escaped brackets in link text with pass:[]",
			})
		}
	}
	return out, fixes
}

func escapeLinkLine(line string) (string, bool) {
	changed := false
	var sb strings.Builder
	rest := line

	for {
		idx := strings.Index(rest, "link:")
		if idx < 0 {
			sb.WriteString(rest)
			break
		}
		open := strings.IndexByte(rest[idx:], '[')
		if open < 0 {
			sb.WriteString(rest)
			break
		}
		open += idx
		// URL must be non-empty and unbroken between "link:" and "[".
		url := rest[idx+len("link:") : open]
		if url == "" || strings.ContainsAny(url, " \t") {
			sb.WriteString(rest[:open+1])
			rest = rest[open+1:]
			continue
		}

		close := matchBracket(rest, open)
		if close < 0 {
			sb.WriteString(rest)
			break
		}

		text := rest[open+1 : close]
		if strings.ContainsAny(text, "[]") && !strings.HasPrefix(text, "pass:[") {
			sb.WriteString(rest[:open+1])
			sb.WriteString("pass:[")
			sb.WriteString(text)
			sb.WriteString("]]")
			changed = true
		} else {
			sb.WriteString(rest[:close+1])
		}
		rest = rest[close+1:]
	}

	return sb.String(), changed
}

// matchBracket returns the index of the ] balancing the [ at open, or -1 if
// the brackets never balance before end of line.
func matchBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
