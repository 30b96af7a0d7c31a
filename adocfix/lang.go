// CLAUDE:SUMMARY Scores six signature families to guess the source language of an unmarked listing block.
package adocfix

import (
	"regexp"
	"strings"
)

// langSignatures maps a language name to the regex signatures that are
// characteristic for it. Every signature that matches anywhere in the block
// scores one point; the strictly highest total wins. Ties and a zero score
// fall back to YAML, the dominant format in this documentation corpus.
var langSignatures = []struct {
	name string
	sigs []*regexp.Regexp
}{
	{"yaml", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*[\w./-]+:\s+\S`),
		regexp.MustCompile(`(?m)^\s*[\w./-]+:\s*$`),
		regexp.MustCompile(`(?m)^\s*-\s+\w`),
		regexp.MustCompile(`(?m)^---\s*$`),
		regexp.MustCompile(`(?m)^(apiVersion|kind|metadata|spec):`),
	}},
	{"bash", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*\$\s+\S`),
		regexp.MustCompile(`(?m)^\s*(sudo|oc|openstack|podman|dnf|systemctl|ssh|cd|export)\s`),
		regexp.MustCompile(`\$\{?[A-Z_][A-Z0-9_]*\}?`),
		regexp.MustCompile(`(?m)^#!/bin/(ba)?sh`),
		regexp.MustCompile(`\s--?[a-z][\w-]+`),
		regexp.MustCompile(`\|\s*(grep|awk|sed|tee)\b`),
	}},
	{"ini", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\[[\w.:/-]+\]\s*$`),
		regexp.MustCompile(`(?m)^\w[\w.-]*\s*=`),
		regexp.MustCompile(`(?m)^;`),
	}},
	{"python", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*def\s+\w+\(`),
		regexp.MustCompile(`(?m)^\s*import\s+\w`),
		regexp.MustCompile(`(?m)^\s*from\s+[\w.]+\s+import\s`),
		regexp.MustCompile(`(?m)^\s*class\s+\w+[(:]`),
		regexp.MustCompile(`print\(`),
	}},
	{"xml", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*<\?xml`),
		regexp.MustCompile(`(?m)^\s*</?[\w:-]+[^>]*>\s*$`),
		regexp.MustCompile(`xmlns(:\w+)?=`),
	}},
	{"json", []*regexp.Regexp{
		regexp.MustCompile(`(?m)^\s*\{\s*$`),
		regexp.MustCompile(`(?m)^\s*"[^"]+"\s*:`),
		regexp.MustCompile(`(?m)^\s*[}\]]\s*,?\s*$`),
		regexp.MustCompile(`(?m)^\s*\[\s*$`),
	}},
}

// GuessLanguage picks a source language for an unmarked listing block. This
// is a scoring heuristic, not a parser: the only guarantee is a
// deterministic, reproducible choice for identical input.
func GuessLanguage(block []string) string {
	text := strings.Join(block, "\n")

	best := "yaml"
	bestScore, tied := 0, false
	for _, family := range langSignatures {
		score := 0
		for _, sig := range family.sigs {
			if sig.MatchString(text) {
				score++
			}
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = family.name, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	// Only a strict winner overrides the corpus default.
	if bestScore == 0 || tied {
		return "yaml"
	}
	return best
}
